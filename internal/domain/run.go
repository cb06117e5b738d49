package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateSource tags where the run's exchange rate came from.
type RateSource string

const (
	RateScraped  RateSource = "scraped"
	RateOverride RateSource = "override"
	RateFallback RateSource = "fallback"
)

// RateQuote is the single authoritative exchange rate for a run. Every
// ProposedAmount derives from it.
type RateQuote struct {
	Value      decimal.Decimal            `json:"value"`
	Source     RateSource                 `json:"source"`
	ResolvedAt time.Time                  `json:"resolved_at"`
	// Prices carries the market breakdown behind a scraped or fallback
	// quote. Empty for overrides.
	Prices map[string]decimal.Decimal `json:"prices,omitempty"`
}

// StepKind labels the side effect one ExecutionStep attempts.
type StepKind string

const (
	StepLedger      StepKind = "ledger_row"
	StepDocument    StepKind = "document"
	StepTransaction StepKind = "transaction"
	StepMessage     StepKind = "message"
)

// StepStatus is the terminal status of one attempted step. No step is
// retried within a run.
type StepStatus string

const (
	// StatusLiveOK: the live write succeeded and returned its locator.
	StatusLiveOK StepStatus = "live_ok"
	// StatusPartial: a two-place write succeeded on the first write but
	// returned no locator for the second; the missing locator is carried
	// explicitly in the payload.
	StatusPartial StepStatus = "partial"
	// StatusPending: no live path was configured; the payload holds the
	// full data that would have been written.
	StatusPending StepStatus = "pending_payload"
	// StatusBlocked: the change guard stopped this entity before the step.
	StatusBlocked StepStatus = "blocked"
	// StatusError: the live attempt failed; Detail holds the collaborator
	// status. Terminal for the step only, never for the run.
	StatusError StepStatus = "error"
)

// StepOutcome is the tagged result of one step attempt:
// live, partial, pending, blocked or error. Exactly one constructor applies.
type StepOutcome struct {
	Status  StepStatus     `json:"status"`
	Ref     string         `json:"ref,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
	Detail  string         `json:"detail,omitempty"`
}

// Live marks a successful live write identified by ref.
func Live(ref string) StepOutcome {
	return StepOutcome{Status: StatusLiveOK, Ref: ref}
}

// Partial marks a live write that completed without returning a locator.
func Partial(payload map[string]any, detail string) StepOutcome {
	return StepOutcome{Status: StatusPartial, Payload: payload, Detail: detail}
}

// Pending wraps the payload of a write that was staged instead of sent.
func Pending(payload map[string]any) StepOutcome {
	return StepOutcome{Status: StatusPending, Payload: payload}
}

// BlockedOutcome records a step suppressed by the change guard.
func BlockedOutcome(reason string) StepOutcome {
	return StepOutcome{Status: StatusBlocked, Detail: reason}
}

// ErrorOutcome records a failed live attempt.
func ErrorOutcome(detail string) StepOutcome {
	return StepOutcome{Status: StatusError, Detail: detail}
}

// ExecutionStep is one attempted side effect for one entity.
type ExecutionStep struct {
	Entity string   `json:"entity"`
	Kind   StepKind `json:"kind"`
	// Document is the filename for document steps.
	Document string `json:"document,omitempty"`
	StepOutcome
}

// BlockedReason records why an entity's steps were suppressed, with both
// values for human review.
type BlockedReason struct {
	Entity    string           `json:"entity"`
	Reason    string           `json:"reason"`
	LastKnown *decimal.Decimal `json:"last_known,omitempty"`
	Proposed  *decimal.Decimal `json:"proposed,omitempty"`
}

// ChecklistStatus is the short verdict preceding the detailed report.
type ChecklistStatus string

const (
	CheckOK     ChecklistStatus = "OK"
	CheckReview ChecklistStatus = "Review"
)

// ChecklistItem is one line of the OK/Review summary.
type ChecklistItem struct {
	Item   string          `json:"item"`
	Status ChecklistStatus `json:"status"`
	Detail string          `json:"detail,omitempty"`
}

// GateDecision records the business-day gate verdict for a run.
type GateDecision struct {
	Allowed    bool   `json:"allowed"`
	Reason     string `json:"reason"`
	Overridden bool   `json:"overridden,omitempty"`
}

// RunArtifact is the immutable audit record for one orchestration run. It
// is created at run start, appended to in step order, and never mutated
// after being emitted.
type RunArtifact struct {
	RunID      string    `json:"run_id"`
	Period     Period    `json:"period"`
	Timezone   string    `json:"timezone"`
	Mode       string    `json:"mode"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`

	Gate      GateDecision     `json:"gate"`
	Rate      *RateQuote       `json:"rate,omitempty"`
	Amounts   []ProposedAmount `json:"amounts,omitempty"`
	Documents []Document       `json:"documents,omitempty"`
	Steps     []ExecutionStep  `json:"steps,omitempty"`
	Blocked   []BlockedReason  `json:"blocked,omitempty"`
	Messages  map[string]string `json:"messages,omitempty"`

	Checklist   []ChecklistItem `json:"checklist,omitempty"`
	ManualSteps []string        `json:"manual_steps,omitempty"`
}

// AppendStep records one step result in run order.
func (a *RunArtifact) AppendStep(entity string, kind StepKind, document string, out StepOutcome) {
	a.Steps = append(a.Steps, ExecutionStep{
		Entity:      entity,
		Kind:        kind,
		Document:    document,
		StepOutcome: out,
	})
}

// AppendBlocked records an entity-level block.
func (a *RunArtifact) AppendBlocked(b BlockedReason) {
	a.Blocked = append(a.Blocked, b)
}

// NeedsReview reports whether any checklist item is non-OK. Downstream
// "proceed to manual steps" guidance must be withheld while this is true.
func (a *RunArtifact) NeedsReview() bool {
	for _, item := range a.Checklist {
		if item.Status != CheckOK {
			return true
		}
	}
	return false
}
