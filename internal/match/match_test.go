package match

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santif/monthly-close/internal/domain"
)

func entity(alias string, tokens ...string) domain.Entity {
	return domain.Entity{Alias: alias, FilenameAliases: tokens}
}

func TestAssign(t *testing.T) {
	entities := []domain.Entity{
		entity("santi-favelukes", "fave"),
		entity("santi-olivieri", "olivieri"),
	}

	tests := []struct {
		name       string
		doc        string
		wantStatus domain.MatchStatus
		wantEntity string
	}{
		{"single match", "factura_fave_2026-02.pdf", domain.MatchAssigned, "santi-favelukes"},
		{"case insensitive", "FACTURA_OLIVIERI_FEB2026.PDF", domain.MatchAssigned, "santi-olivieri"},
		{"no match", "factura_unknown_2026-02.pdf", domain.MatchMissing, ""},
		{"both match is ambiguous", "invoice-fave-olivieri.pdf", domain.MatchAmbiguous, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Assign([]domain.Document{{Name: tt.doc}}, entities)
			require.Len(t, got, 1)
			assert.Equal(t, tt.wantStatus, got[0].Status)
			assert.Equal(t, tt.wantEntity, got[0].Entity)
		})
	}
}

func TestAssignAmbiguousListsCandidates(t *testing.T) {
	entities := []domain.Entity{
		entity("santi-favelukes", "fave"),
		entity("santi-olivieri", "olivieri"),
	}

	got := Assign([]domain.Document{{Name: "invoice-fave-olivieri.pdf"}}, entities)

	require.Len(t, got, 1)
	assert.Equal(t, []string{"santi-favelukes", "santi-olivieri"}, got[0].Candidates)
}

func TestAssignNeverUsesAliasIdentifierFallback(t *testing.T) {
	// An entity without filename aliases matches nothing, even when the
	// filename contains its identifier.
	entities := []domain.Entity{entity("juan-perez")}

	got := Assign([]domain.Document{{Name: "factura_perez_2026-02.pdf"}}, entities)

	require.Len(t, got, 1)
	assert.Equal(t, domain.MatchMissing, got[0].Status)
}

func TestAssignCoversEveryDocument(t *testing.T) {
	entities := []domain.Entity{entity("a", "alpha"), entity("b", "beta")}
	docs := []domain.Document{
		{Name: "alpha-1.pdf"},
		{Name: "beta-1.pdf"},
		{Name: "alpha-beta.pdf"},
		{Name: "gamma.pdf"},
	}

	got := Assign(docs, entities)

	require.Len(t, got, len(docs), "no document may be dropped")
	statuses := map[domain.MatchStatus]int{}
	for _, d := range got {
		statuses[d.Status]++
	}
	assert.Equal(t, 2, statuses[domain.MatchAssigned])
	assert.Equal(t, 1, statuses[domain.MatchAmbiguous])
	assert.Equal(t, 1, statuses[domain.MatchMissing])
}

func TestAssignIsIdempotent(t *testing.T) {
	entities := []domain.Entity{entity("a", "alpha"), entity("b", "beta")}
	docs := []domain.Document{{Name: "alpha-1.pdf"}, {Name: "alpha-beta.pdf"}}

	first := Assign(docs, entities)
	second := Assign(docs, entities)

	assert.Equal(t, first, second)
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.pdf", "a.PDF", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.pdf"), 0o755))

	docs, err := Discover(dir)

	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a.PDF", docs[0].Name)
	assert.Equal(t, "b.pdf", docs[1].Name)
}

func TestDiscoverMissingDirIsEmpty(t *testing.T) {
	docs, err := Discover(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, docs)
}
