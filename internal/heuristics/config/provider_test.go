package config

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"opsdesk/internal/heuristics"
	dErrors "opsdesk/pkg/domain-errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseEmptyDocumentGivesDefaults(t *testing.T) {
	got, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, heuristics.DefaultSettings(), got)
}

func TestParseMergesOntoDefaults(t *testing.T) {
	got, err := Parse([]byte(`
sla:
  response_hours: 8
weights:
  delay_per_day: 12
negative_keywords: ["  lost ", "lost", "broken"]
compliance:
  high_risk_regions: [VENEZUELA]
  heavy_cargo_limit_kg: 30000
`))
	require.NoError(t, err)

	defaults := heuristics.DefaultSettings()
	assert.Equal(t, 8, got.SLA.ResponseHours)
	assert.Equal(t, defaults.SLA.DealFollowUpDays, got.SLA.DealFollowUpDays)
	assert.Equal(t, 12, got.Weights.DelayPerDay)
	assert.Equal(t, defaults.Weights.QuoteSent, got.Weights.QuoteSent)
	assert.Equal(t, []string{"lost", "broken"}, got.NegativeKeywords)
	assert.Equal(t, []string{"VENEZUELA"}, got.Compliance.HighRiskRegions)
	assert.InDelta(t, 30000, got.Compliance.HeavyCargoLimitKg, 0.001)
	assert.Equal(t, defaults.Compliance.USPorts, got.Compliance.USPorts)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"negative threshold", "sla:\n  max_delay_days: -1\n"},
		{"negative weight", "weights:\n  quote_sent: -5\n"},
		{"negative hs length", "compliance:\n  min_hs_code_length: -2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}

	_, err := Parse([]byte("slas:\n  response_hours: 1\n"))
	assert.Error(t, err, "unknown keys are rejected")

	_, err = Parse([]byte("sla: [1, 2"))
	assert.Error(t, err)
}

func TestNewWithoutPathServesDefaults(t *testing.T) {
	p, err := New("")
	require.NoError(t, err)
	assert.Equal(t, heuristics.DefaultSettings(), p.Current())
	require.NoError(t, p.Reload())
}

func TestNewMissingFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestCurrentIsACopy(t *testing.T) {
	p, err := New("")
	require.NoError(t, err)
	s := p.Current()
	s.NegativeKeywords[0] = "mutated"
	assert.NotEqual(t, "mutated", p.Current().NegativeKeywords[0])
}

func TestReloadKeepsPreviousOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heuristics.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sla:\n  response_hours: 6\n"), 0o600))

	p, err := New(path, WithLogger(quietLogger()))
	require.NoError(t, err)

	var notified []int
	p.OnChange(func(s heuristics.Settings) { notified = append(notified, s.SLA.ResponseHours) })

	require.NoError(t, os.WriteFile(path, []byte("sla:\n  response_hours: -6\n"), 0o600))
	require.Error(t, p.Reload())
	assert.Equal(t, 6, p.Current().SLA.ResponseHours)

	require.NoError(t, os.WriteFile(path, []byte("sla:\n  response_hours: 9\n"), 0o600))
	require.NoError(t, p.Reload())
	assert.Equal(t, 9, p.Current().SLA.ResponseHours)
	assert.Equal(t, []int{9}, notified)
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heuristics.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sla:\n  response_hours: 6\n"), 0o600))

	p, err := New(path, WithLogger(quietLogger()), WithDebounce(20*time.Millisecond))
	require.NoError(t, err)

	changed := make(chan int, 4)
	p.OnChange(func(s heuristics.Settings) { changed <- s.SLA.ResponseHours })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Watch(ctx) }()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("sla:\n  response_hours: 3\n"), 0o600))

	select {
	case got := <-changed:
		assert.Equal(t, 3, got)
	case <-time.After(5 * time.Second):
		t.Fatal("settings were not reloaded")
	}
	assert.Equal(t, 3, p.Current().SLA.ResponseHours)

	cancel()
	require.NoError(t, <-done)
}

func TestWatchWithoutPathBlocksUntilCancel(t *testing.T) {
	p, err := New("")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Watch(ctx) }()
	cancel()
	assert.NoError(t, <-done)
}
