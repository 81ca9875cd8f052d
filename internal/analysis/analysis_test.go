package analysis

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const valid = `{
  "summaryStats": {
    "performance": {"value": "+40%", "description": "Faster filtering"},
    "issuesFixed": {"value": "3", "description": "Issues Fixed"},
    "bundleSize": {"value": "-2%", "description": "Bundle Size"},
    "qualityGrade": {"value": "A", "description": "Code Quality"}
  },
  "detailedChanges": [{"icon": "⚡", "description": "Memoized the filter"}],
  "explanation": "The list no longer re-filters on every render."
}`

func TestDecodeValid(t *testing.T) {
	a, err := Decode(valid)
	require.NoError(t, err)
	assert.Equal(t, "+40%", a.SummaryStats.Performance.Value)
	assert.Equal(t, "A", a.SummaryStats.QualityGrade.Value)
	require.Len(t, a.DetailedChanges, 1)
	assert.Equal(t, "⚡", a.DetailedChanges[0].Icon)
	assert.False(t, IsFallback(a))
	assert.Equal(t, a, Parse(valid, func(err error) { t.Fatalf("valid analysis rejected: %v", err) }))
}

func TestParseFallsBack(t *testing.T) {
	cases := map[string]string{
		"empty":             "",
		"not json":          "sorry, I cannot do that",
		"truncated":         valid[:40],
		"array":             `[1,2]`,
		"missing stat":      `{"summaryStats":{"performance":{"value":"1","description":"d"}},"detailedChanges":[{"icon":"a","description":"b"}],"explanation":"e"}`,
		"no changes":        `{"summaryStats":{"performance":{"value":"1","description":"d"},"issuesFixed":{"value":"1","description":"d"},"bundleSize":{"value":"1","description":"d"},"qualityGrade":{"value":"1","description":"d"}},"detailedChanges":[],"explanation":"e"}`,
		"blank explanation": `{"summaryStats":{"performance":{"value":"1","description":"d"},"issuesFixed":{"value":"1","description":"d"},"bundleSize":{"value":"1","description":"d"},"qualityGrade":{"value":"1","description":"d"}},"detailedChanges":[{"icon":"a","description":"b"}],"explanation":""}`,
		"wrong type":        `{"summaryStats":"good","detailedChanges":[],"explanation":"e"}`,
		"trailing garbage":  valid + ` {"again":true}`,
		"null":              `null`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(raw)
			assert.ErrorIs(t, err, ErrInvalid)
			var rejected error
			got := Parse(raw, func(err error) { rejected = err })
			assert.True(t, IsFallback(got))
			assert.ErrorIs(t, rejected, ErrInvalid)
			assert.True(t, IsFallback(Parse(raw, nil)))
		})
	}
}

func TestFallbackShape(t *testing.T) {
	fb := Fallback()
	for _, s := range fb.SummaryStats.Ordered() {
		assert.Equal(t, "N/A", s.Value)
		assert.NotEmpty(t, s.Description)
	}
	assert.Equal(t, []string{"Performance", "Issues Fixed", "Bundle Size", "Code Quality"}, []string{
		fb.SummaryStats.Performance.Description,
		fb.SummaryStats.IssuesFixed.Description,
		fb.SummaryStats.BundleSize.Description,
		fb.SummaryStats.QualityGrade.Description,
	})
	require.Len(t, fb.DetailedChanges, 1)
	assert.Equal(t, "Failed to generate AI analysis.", fb.DetailedChanges[0].Description)
	assert.Contains(t, fb.Explanation, "check the transformed code manually")

	// The fallback must itself be an acceptable analysis for downstream consumers.
	b, err := json.Marshal(fb)
	require.NoError(t, err)
	again, err := Decode(string(b))
	require.NoError(t, err)
	assert.True(t, IsFallback(again))

	// Fresh value per call.
	fb.DetailedChanges[0].Description = "mutated"
	assert.Equal(t, "Failed to generate AI analysis.", Fallback().DetailedChanges[0].Description)
}

func TestSchemaRequiresEveryField(t *testing.T) {
	s := Schema()
	assert.Equal(t, []string{"summaryStats", "detailedChanges", "explanation"}, s.Required)
	stats := s.Properties["summaryStats"]
	require.NotNil(t, stats)
	assert.ElementsMatch(t, []string{"performance", "issuesFixed", "bundleSize", "qualityGrade"}, stats.Required)
	assert.Equal(t, []string{"icon", "description"}, s.Properties["detailedChanges"].Items.Required)
}
