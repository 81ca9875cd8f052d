package rpc

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// MorphClient calls a remote MorphService over the JSON codec.
type MorphClient struct {
	createSession  *connect.Client[CreateSessionRequest, SessionResponse]
	getSession     *connect.Client[GetSessionRequest, SessionResponse]
	updateSession  *connect.Client[UpdateSessionRequest, SessionResponse]
	toggleGoal     *connect.Client[ToggleGoalRequest, SessionResponse]
	loadSample     *connect.Client[LoadSampleRequest, SessionResponse]
	transform      *connect.Client[TransformRequest, SessionResponse]
	runCode        *connect.Client[RunCodeRequest, SessionResponse]
	clearRun       *connect.Client[ClearRunRequest, SessionResponse]
	exportOutput   *connect.Client[ExportOutputRequest, ExportOutputResponse]
	listExports    *connect.Client[ListExportsRequest, ListExportsResponse]
	listGoals      *connect.Client[ListGoalsRequest, ListGoalsResponse]
	detectLanguage *connect.Client[DetectLanguageRequest, DetectLanguageResponse]
}

func NewMorphClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *MorphClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{Codec()}, opts...)
	return &MorphClient{
		createSession:  connect.NewClient[CreateSessionRequest, SessionResponse](httpClient, baseURL+CreateSessionProcedure, opts...),
		getSession:     connect.NewClient[GetSessionRequest, SessionResponse](httpClient, baseURL+GetSessionProcedure, opts...),
		updateSession:  connect.NewClient[UpdateSessionRequest, SessionResponse](httpClient, baseURL+UpdateSessionProcedure, opts...),
		toggleGoal:     connect.NewClient[ToggleGoalRequest, SessionResponse](httpClient, baseURL+ToggleGoalProcedure, opts...),
		loadSample:     connect.NewClient[LoadSampleRequest, SessionResponse](httpClient, baseURL+LoadSampleProcedure, opts...),
		transform:      connect.NewClient[TransformRequest, SessionResponse](httpClient, baseURL+TransformProcedure, opts...),
		runCode:        connect.NewClient[RunCodeRequest, SessionResponse](httpClient, baseURL+RunCodeProcedure, opts...),
		clearRun:       connect.NewClient[ClearRunRequest, SessionResponse](httpClient, baseURL+ClearRunProcedure, opts...),
		exportOutput:   connect.NewClient[ExportOutputRequest, ExportOutputResponse](httpClient, baseURL+ExportOutputProcedure, opts...),
		listExports:    connect.NewClient[ListExportsRequest, ListExportsResponse](httpClient, baseURL+ListExportsProcedure, opts...),
		listGoals:      connect.NewClient[ListGoalsRequest, ListGoalsResponse](httpClient, baseURL+ListGoalsProcedure, opts...),
		detectLanguage: connect.NewClient[DetectLanguageRequest, DetectLanguageResponse](httpClient, baseURL+DetectLanguageProcedure, opts...),
	}
}

func call[Req, Res any](ctx context.Context, c *connect.Client[Req, Res], msg *Req) (*Res, error) {
	resp, err := c.CallUnary(ctx, connect.NewRequest(msg))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func (c *MorphClient) CreateSession(ctx context.Context) (*SessionResponse, error) {
	return call(ctx, c.createSession, &CreateSessionRequest{})
}

func (c *MorphClient) GetSession(ctx context.Context, req *GetSessionRequest) (*SessionResponse, error) {
	return call(ctx, c.getSession, req)
}

func (c *MorphClient) UpdateSession(ctx context.Context, req *UpdateSessionRequest) (*SessionResponse, error) {
	return call(ctx, c.updateSession, req)
}

func (c *MorphClient) ToggleGoal(ctx context.Context, req *ToggleGoalRequest) (*SessionResponse, error) {
	return call(ctx, c.toggleGoal, req)
}

func (c *MorphClient) LoadSample(ctx context.Context, req *LoadSampleRequest) (*SessionResponse, error) {
	return call(ctx, c.loadSample, req)
}

func (c *MorphClient) Transform(ctx context.Context, req *TransformRequest) (*SessionResponse, error) {
	return call(ctx, c.transform, req)
}

func (c *MorphClient) RunCode(ctx context.Context, req *RunCodeRequest) (*SessionResponse, error) {
	return call(ctx, c.runCode, req)
}

func (c *MorphClient) ClearRun(ctx context.Context, req *ClearRunRequest) (*SessionResponse, error) {
	return call(ctx, c.clearRun, req)
}

func (c *MorphClient) ExportOutput(ctx context.Context, req *ExportOutputRequest) (*ExportOutputResponse, error) {
	return call(ctx, c.exportOutput, req)
}

func (c *MorphClient) ListExports(ctx context.Context, req *ListExportsRequest) (*ListExportsResponse, error) {
	return call(ctx, c.listExports, req)
}

func (c *MorphClient) ListGoals(ctx context.Context) (*ListGoalsResponse, error) {
	return call(ctx, c.listGoals, &ListGoalsRequest{})
}

func (c *MorphClient) DetectLanguage(ctx context.Context, req *DetectLanguageRequest) (*DetectLanguageResponse, error) {
	return call(ctx, c.detectLanguage, req)
}
