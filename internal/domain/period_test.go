package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in      string
		want    Period
		wantErr bool
	}{
		{in: "2026-02", want: Period{Year: 2026, Month: time.February}},
		{in: "2025-12", want: Period{Year: 2025, Month: time.December}},
		{in: "2026-13", wantErr: true},
		{in: "2026-2", wantErr: true},
		{in: "feb 2026", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range tests {
		got, err := ParsePeriod(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}
}

func TestPeriodBounds(t *testing.T) {
	loc := time.UTC
	p := Period{Year: 2026, Month: time.February}
	assert.Equal(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, loc), p.Start(loc))
	assert.Equal(t, time.Date(2026, time.February, 28, 0, 0, 0, 0, loc), p.End(loc))

	leap := Period{Year: 2028, Month: time.February}
	assert.Equal(t, 29, leap.End(loc).Day())
}

func TestPeriodJSONRoundTrip(t *testing.T) {
	p := Period{Year: 2026, Month: time.February}
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, `"2026-02"`, string(data))

	var got Period
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, p, got)
}
