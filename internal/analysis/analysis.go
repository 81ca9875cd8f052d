// Package analysis holds the structured diff analysis returned by the model
// and the rules for accepting it.
package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"

	llmclient "codemorph/internal/llmClient"
)

type SummaryStat struct {
	Value       string `json:"value" yaml:"value" validate:"required"`
	Description string `json:"description" yaml:"description" validate:"required"`
}

type SummaryStats struct {
	Performance  SummaryStat `json:"performance" yaml:"performance"`
	IssuesFixed  SummaryStat `json:"issuesFixed" yaml:"issuesFixed"`
	BundleSize   SummaryStat `json:"bundleSize" yaml:"bundleSize"`
	QualityGrade SummaryStat `json:"qualityGrade" yaml:"qualityGrade"`
}

// Ordered returns the four stats in display order.
func (s SummaryStats) Ordered() []SummaryStat {
	return []SummaryStat{s.Performance, s.IssuesFixed, s.BundleSize, s.QualityGrade}
}

type Change struct {
	Icon        string `json:"icon" yaml:"icon" validate:"required"`
	Description string `json:"description" yaml:"description" validate:"required"`
}

type Analysis struct {
	SummaryStats    SummaryStats `json:"summaryStats" yaml:"summaryStats"`
	DetailedChanges []Change     `json:"detailedChanges" yaml:"detailedChanges" validate:"required,min=1,dive"`
	Explanation     string       `json:"explanation" yaml:"explanation" validate:"required"`
}

var ErrInvalid = errors.New("analysis: response does not match schema")

var validate = validator.New()

// Decode parses raw strictly: a single JSON object matching the schema with
// every field present. Nothing is salvaged from a partial response.
func Decode(raw string) (Analysis, error) {
	dec := json.NewDecoder(strings.NewReader(strings.TrimSpace(raw)))
	var a Analysis
	if err := dec.Decode(&a); err != nil {
		return Analysis{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Analysis{}, fmt.Errorf("%w: trailing data after object", ErrInvalid)
	}
	if err := validate.Struct(a); err != nil {
		return Analysis{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return a, nil
}

// Parse never fails: anything Decode rejects becomes the Fallback analysis.
// onReject, when not nil, receives the Decode error before the fallback is
// returned.
func Parse(raw string, onReject func(error)) Analysis {
	a, err := Decode(raw)
	if err != nil {
		if onReject != nil {
			onReject(err)
		}
		return Fallback()
	}
	return a
}

// Fallback is the analysis shown when the model's analysis is unusable.
// Each call returns a fresh value.
func Fallback() Analysis {
	return Analysis{
		SummaryStats: SummaryStats{
			Performance:  SummaryStat{Value: "N/A", Description: "Performance"},
			IssuesFixed:  SummaryStat{Value: "N/A", Description: "Issues Fixed"},
			BundleSize:   SummaryStat{Value: "N/A", Description: "Bundle Size"},
			QualityGrade: SummaryStat{Value: "N/A", Description: "Code Quality"},
		},
		DetailedChanges: []Change{{Icon: "❌", Description: "Failed to generate AI analysis."}},
		Explanation:     "Could not generate an explanation due to an API error. Please check the transformed code manually.",
	}
}

// IsFallback reports whether a is the fallback analysis.
func IsFallback(a Analysis) bool {
	fb := Fallback()
	return a.SummaryStats == fb.SummaryStats &&
		a.Explanation == fb.Explanation &&
		len(a.DetailedChanges) == 1 && a.DetailedChanges[0] == fb.DetailedChanges[0]
}

// Schema is the response shape requested from the model.
func Schema() *llmclient.Schema {
	stat := func() *llmclient.Schema {
		return llmclient.Object(map[string]*llmclient.Schema{
			"value":       llmclient.String(""),
			"description": llmclient.String(""),
		}, "value", "description")
	}
	return llmclient.Object(map[string]*llmclient.Schema{
		"summaryStats": llmclient.Object(map[string]*llmclient.Schema{
			"performance":  stat(),
			"issuesFixed":  stat(),
			"bundleSize":   stat(),
			"qualityGrade": stat(),
		}, "performance", "issuesFixed", "bundleSize", "qualityGrade"),
		"detailedChanges": llmclient.Array(llmclient.Object(map[string]*llmclient.Schema{
			"icon":        llmclient.String("a single emoji"),
			"description": llmclient.String(""),
		}, "icon", "description")),
		"explanation": llmclient.String(""),
	}, "summaryStats", "detailedChanges", "explanation")
}
