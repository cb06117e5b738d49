package artifact

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santif/monthly-close/internal/domain"
)

func TestFilename(t *testing.T) {
	p := domain.Period{Year: 2026, Month: time.February}
	assert.Equal(t, "monthly-close-2026-02.json", Filename(p))
}

func TestWriteAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := &Store{Dir: filepath.Join(dir, "artifacts")}

	rate := domain.RateQuote{
		Value:  decimal.RequireFromString("1234.50"),
		Source: domain.RateFallback,
	}
	run := &domain.RunArtifact{
		RunID:    "6f1c2a34-0000-0000-0000-000000000000",
		Period:   domain.Period{Year: 2026, Month: time.February},
		Timezone: "America/Argentina/Buenos_Aires",
		Mode:     "live",
		Gate:     domain.GateDecision{Allowed: true},
		Rate:     &rate,
	}
	run.AppendStep("santi", domain.StepLedger, "", domain.Live("Deuda!A7:E7"))

	path, err := store.Write(context.Background(), run)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "artifacts", "monthly-close-2026-02.json"), path)

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, run.RunID, got.RunID)
	assert.Equal(t, run.Period, got.Period)
	require.NotNil(t, got.Rate)
	assert.True(t, rate.Value.Equal(got.Rate.Value))
	require.Len(t, got.Steps, 1)
	assert.Equal(t, domain.StatusLiveOK, got.Steps[0].Status)
}

func TestWriteOverwritesSamePeriod(t *testing.T) {
	store := &Store{Dir: t.TempDir()}
	run := &domain.RunArtifact{RunID: "first", Period: domain.Period{Year: 2026, Month: time.March}}

	_, err := store.Write(context.Background(), run)
	require.NoError(t, err)

	run.RunID = "second"
	path, err := store.Write(context.Background(), run)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "second", got.RunID)
}
