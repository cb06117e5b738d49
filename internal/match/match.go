// Package match assigns discovered documents to entities by filename.
//
// Matching uses only the entities' configured alias sets, never a token
// derived from the entity identifier itself, which collides between
// entities whose identifiers share a suffix. A document matching several
// entities is surfaced as ambiguous and assigned to none.
package match

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/santif/monthly-close/internal/domain"
)

// Discover lists the PDF documents in dir, sorted by name. A missing or
// empty directory yields an empty set, not an error.
func Discover(dir string) ([]domain.Document, error) {
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var docs []domain.Document
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		docs = append(docs, domain.Document{
			Name: entry.Name(),
			Path: filepath.Join(dir, entry.Name()),
		})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })
	return docs, nil
}

// Assign matches each document against the entities' alias sets with
// case-insensitive substring matching. Every input document appears in the
// result with an explicit status: matched, ambiguous or unmatched. The
// assignment is deterministic: running it twice over the same inputs
// yields identical results.
func Assign(docs []domain.Document, entities []domain.Entity) []domain.Document {
	out := make([]domain.Document, len(docs))
	for i, doc := range docs {
		out[i] = assignOne(doc, entities)
	}
	return out
}

func assignOne(doc domain.Document, entities []domain.Entity) domain.Document {
	name := strings.ToLower(doc.Name)

	var candidates []string
	for _, entity := range entities {
		if matchesAny(name, entity.FilenameAliases) {
			candidates = append(candidates, entity.Alias)
		}
	}

	switch len(candidates) {
	case 0:
		doc.Status = domain.MatchMissing
	case 1:
		doc.Status = domain.MatchAssigned
		doc.Entity = candidates[0]
	default:
		// More than one alias set matched: assigning to whichever entity
		// is listed first would be silent guessing.
		doc.Status = domain.MatchAmbiguous
		doc.Candidates = candidates
	}
	return doc
}

func matchesAny(lowerName string, aliases []string) bool {
	for _, alias := range aliases {
		token := strings.ToLower(strings.TrimSpace(alias))
		if token != "" && strings.Contains(lowerName, token) {
			return true
		}
	}
	return false
}
