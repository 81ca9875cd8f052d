package goal

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Goal is a code-quality objective that steers the rewrite.
type Goal int

const (
	PerformanceBoost Goal = iota + 1
	SecurityHardening
	Accessibility
	MobileFirst
	ModernStack
	BestPractices
)

// All lists every goal in catalog order.
var All = []Goal{PerformanceBoost, SecurityHardening, Accessibility, MobileFirst, ModernStack, BestPractices}

// ID returns the stable identifier, which is also the display name.
func (g Goal) ID() string {
	switch g {
	case PerformanceBoost:
		return "Performance Boost"
	case SecurityHardening:
		return "Security Hardening"
	case Accessibility:
		return "Accessibility"
	case MobileFirst:
		return "Mobile-First"
	case ModernStack:
		return "Modern Stack"
	case BestPractices:
		return "Best Practices"
	}
	return ""
}

func (g Goal) String() string {
	if id := g.ID(); id != "" {
		return id
	}
	return fmt.Sprintf("Goal(%d)", int(g))
}

// Valid reports whether g belongs to the closed set.
func (g Goal) Valid() bool { return g.ID() != "" }

// Parse resolves an identifier. Matching ignores case and surrounding space.
func Parse(id string) (Goal, bool) {
	id = strings.TrimSpace(id)
	for _, g := range All {
		if strings.EqualFold(g.ID(), id) {
			return g, true
		}
	}
	return 0, false
}

// ParseAll resolves ids in order, skipping unknown ones. The skipped ids are
// returned so callers can log them.
func ParseAll(ids []string) (goals []Goal, unknown []string) {
	for _, id := range ids {
		g, ok := Parse(id)
		if !ok {
			unknown = append(unknown, id)
			continue
		}
		goals = append(goals, g)
	}
	return goals, unknown
}

// Dedup keeps the first occurrence of every goal.
func Dedup(goals []Goal) []Goal {
	seen := make(map[Goal]bool, len(goals))
	out := make([]Goal, 0, len(goals))
	for _, g := range goals {
		if seen[g] {
			continue
		}
		seen[g] = true
		out = append(out, g)
	}
	return out
}

// IDs maps goals to their identifiers.
func IDs(goals []Goal) []string {
	out := make([]string, 0, len(goals))
	for _, g := range goals {
		out = append(out, g.String())
	}
	return out
}

// Toggle adds g when absent and removes it when present.
func Toggle(goals []Goal, g Goal) []Goal {
	out := make([]Goal, 0, len(goals)+1)
	found := false
	for _, cur := range goals {
		if cur == g {
			found = true
			continue
		}
		out = append(out, cur)
	}
	if !found {
		out = append(out, g)
	}
	return out
}

func (g Goal) MarshalJSON() ([]byte, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("goal: invalid value %d", int(g))
	}
	return json.Marshal(g.ID())
}

func (g *Goal) UnmarshalJSON(b []byte) error {
	var id string
	if err := json.Unmarshal(b, &id); err != nil {
		return err
	}
	parsed, ok := Parse(id)
	if !ok {
		return fmt.Errorf("goal: unknown identifier %q", id)
	}
	*g = parsed
	return nil
}
