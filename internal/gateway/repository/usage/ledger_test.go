package usage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codemorph/internal/llm"
)

var day1 = time.Date(2025, 3, 1, 23, 59, 0, 0, time.UTC)
var day2 = time.Date(2025, 3, 2, 0, 1, 0, 0, time.UTC)

func records() []llm.UsageRecord {
	return []llm.UsageRecord{
		{At: day1, Model: "Gemini:gemini-2.5-flash", Phase: llm.PhaseTransform, PromptBytes: 100, ResponseBytes: 80, Latency: time.Second},
		{At: day1, Model: "Gemini:gemini-2.5-flash", Phase: llm.PhaseAnalyze, PromptBytes: 50, ResponseBytes: 0, Failed: true},
		{At: day1, Model: "OpenAI:gpt-4o-mini", Phase: llm.PhaseTransform, PromptBytes: 10, ResponseBytes: 5},
		{At: day2, Model: "Gemini:gemini-2.5-flash", Phase: llm.PhaseTransform, PromptBytes: 1, ResponseBytes: 2},
	}
}

var wantDaily = []DayStat{
	{Day: "2025-03-01", Model: "Gemini:gemini-2.5-flash", Requests: 2, Errors: 1, PromptBytes: 150, ResponseBytes: 80},
	{Day: "2025-03-01", Model: "OpenAI:gpt-4o-mini", Requests: 1, PromptBytes: 10, ResponseBytes: 5},
	{Day: "2025-03-02", Model: "Gemini:gemini-2.5-flash", Requests: 1, PromptBytes: 1, ResponseBytes: 2},
}

func TestFileLedgerAggregatesAndPersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "llm_usage.json")
	l := NewFileLedger(path)
	for _, rec := range records() {
		require.NoError(t, l.Record(ctx, rec))
	}

	got, err := l.Daily(ctx)
	require.NoError(t, err)
	assert.Equal(t, wantDaily, got)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var f ledgerFile
	require.NoError(t, json.Unmarshal(raw, &f))
	assert.Equal(t, int64(3), f.Days["2025-03-01"].Requests)
	assert.Equal(t, int64(1), f.Days["2025-03-01"].Errors)
	assert.NotEmpty(t, f.UpdatedAt)

	reopened := NewFileLedger(path)
	got, err = reopened.Daily(ctx)
	require.NoError(t, err)
	assert.Equal(t, wantDaily, got)
}

func TestFileLedgerEmpty(t *testing.T) {
	l := NewFileLedger(filepath.Join(t.TempDir(), "none.json"))
	got, err := l.Daily(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFileLedgerCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	l := NewFileLedger(path)
	assert.Error(t, l.Record(context.Background(), llm.UsageRecord{Model: "m"}))
}

func TestSQLiteLedger(t *testing.T) {
	ctx := context.Background()
	l, err := Open(ctx, SQLite, "file::memory:")
	require.NoError(t, err)
	defer l.Close()

	for _, rec := range records() {
		require.NoError(t, l.Record(ctx, rec))
	}
	got, err := l.Daily(ctx)
	require.NoError(t, err)
	assert.Equal(t, wantDaily, got)
}

func TestOpenRequiresDSN(t *testing.T) {
	_, err := Open(context.Background(), Postgres, " ")
	assert.Error(t, err)
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "$1, $2, $3", Postgres.placeholders(3))
	assert.Equal(t, "?, ?", SQLite.placeholders(2))
	assert.Equal(t, "pgx", Postgres.driverName())
	assert.Equal(t, "sqlite", SQLite.driverName())
}

var (
	_ Ledger = (*FileLedger)(nil)
	_ Ledger = (*SQLLedger)(nil)
)
