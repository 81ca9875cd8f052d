package rpc

import (
	"codemorph/internal/gateway/repository/session"
	"codemorph/internal/goal"
)

type SessionRef struct {
	SessionID string `json:"sessionId"`
}

type CreateSessionRequest struct{}

type GetSessionRequest = SessionRef

// UpdateSessionRequest changes only the fields that are set. Unknown goal
// identifiers are ignored.
type UpdateSessionRequest struct {
	SessionID string    `json:"sessionId"`
	Input     *string   `json:"input,omitempty"`
	Language  *string   `json:"language,omitempty"`
	Goals     *[]string `json:"goals,omitempty"`
}

type ToggleGoalRequest struct {
	SessionID string `json:"sessionId"`
	Goal      string `json:"goal"`
}

type LoadSampleRequest = SessionRef

type TransformRequest = SessionRef

type RunCodeRequest struct {
	SessionID string `json:"sessionId"`
	Target    string `json:"target"`
}

type ClearRunRequest = RunCodeRequest

type ExportOutputRequest = SessionRef

// ExportOutputResponse describes one export. Object is the name accepted by
// GET /files/export.
type ExportOutputResponse struct {
	Key    string `json:"key"`
	Object string `json:"object"`
	Name   string `json:"name"`
	URL    string `json:"url,omitempty"`
}

type ListExportsRequest = SessionRef

type ListExportsResponse struct {
	Exports []ExportOutputResponse `json:"exports"`
}

type SessionResponse struct {
	Session session.Session `json:"session"`
}

type ListGoalsRequest struct{}

type ListGoalsResponse struct {
	Goals []goal.Option `json:"goals"`
}

type DetectLanguageRequest struct {
	Code     string `json:"code"`
	Filename string `json:"filename,omitempty"`
}

type DetectLanguageResponse struct {
	Language string `json:"language"`
	// FromFilename is the hint derived from Filename, when one was given.
	FromFilename string `json:"fromFilename,omitempty"`
}
