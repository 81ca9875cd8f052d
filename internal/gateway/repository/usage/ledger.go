// Package usage persists per-call LLM usage and aggregates it by day.
package usage

import (
	"context"
	"sort"

	"codemorph/internal/llm"
)

// Ledger records model calls and reports daily totals.
type Ledger interface {
	llm.UsageRecorder
	Daily(ctx context.Context) ([]DayStat, error)
	Close() error
}

// DayStat aggregates one model's calls on one UTC day.
type DayStat struct {
	Day           string `json:"day" yaml:"day"`
	Model         string `json:"model" yaml:"model"`
	Requests      int64  `json:"requests" yaml:"requests"`
	Errors        int64  `json:"errors" yaml:"errors"`
	PromptBytes   int64  `json:"prompt_bytes" yaml:"prompt_bytes"`
	ResponseBytes int64  `json:"response_bytes" yaml:"response_bytes"`
}

const dayLayout = "2006-01-02"

func sortStats(stats []DayStat) {
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Day != stats[j].Day {
			return stats[i].Day < stats[j].Day
		}
		return stats[i].Model < stats[j].Model
	})
}
