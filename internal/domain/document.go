package domain

// MatchStatus is the outcome of assigning a discovered document to an
// entity. Every discovered document carries exactly one of these in the
// run artifact; none is ever dropped silently.
type MatchStatus string

const (
	// MatchAssigned means exactly one entity's alias set matched.
	MatchAssigned MatchStatus = "matched"
	// MatchAmbiguous means more than one entity matched; the document is
	// assigned to none of them and surfaced for review.
	MatchAmbiguous MatchStatus = "ambiguous"
	// MatchMissing means no entity matched.
	MatchMissing MatchStatus = "unmatched"
)

// Document is a discovered file reference, before and after matching.
type Document struct {
	Name string `json:"name"`
	Path string `json:"path"`
	// Entity is the assigned entity alias when Status is MatchAssigned.
	Entity string      `json:"entity,omitempty"`
	Status MatchStatus `json:"status,omitempty"`
	// Candidates lists the colliding entity aliases for ambiguous matches.
	Candidates []string `json:"candidates,omitempty"`
}
