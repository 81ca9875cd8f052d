// Package session keeps CodeMorph editing sessions in memory.
package session

import (
	"time"

	"codemorph/internal/analysis"
	"codemorph/internal/goal"
	"codemorph/internal/language"
	"codemorph/internal/sandbox"
)

// Session is everything one user edits between transformations.
type Session struct {
	ID          string             `json:"id"`
	InputCode   string             `json:"inputCode"`
	OutputCode  string             `json:"outputCode"`
	Language    language.Tag       `json:"language"`
	Goals       []goal.Goal        `json:"goals"`
	Loading     bool               `json:"loading"`
	Analysis    *analysis.Analysis `json:"analysis,omitempty"`
	Error       string             `json:"error,omitempty"`
	InputRun    *sandbox.Outcome   `json:"inputRun,omitempty"`
	OutputRun   *sandbox.Outcome   `json:"outputRun,omitempty"`
	SampleIndex int                `json:"sampleIndex"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// Clone returns a copy that shares no slices or pointers with s.
func (s Session) Clone() Session {
	out := s
	out.Goals = append([]goal.Goal(nil), s.Goals...)
	if s.Analysis != nil {
		a := *s.Analysis
		a.DetailedChanges = append([]analysis.Change(nil), s.Analysis.DetailedChanges...)
		out.Analysis = &a
	}
	out.InputRun = cloneOutcome(s.InputRun)
	out.OutputRun = cloneOutcome(s.OutputRun)
	return out
}

func cloneOutcome(o *sandbox.Outcome) *sandbox.Outcome {
	if o == nil {
		return nil
	}
	c := *o
	c.Lines = append([]string(nil), o.Lines...)
	return &c
}
