package rpc

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"codemorph/internal/gateway/service/morph"
	"codemorph/internal/goal"
	"codemorph/internal/language"
)

// MorphHandler serves codemorph.v1.MorphService.
type MorphHandler struct {
	svc *morph.Service
}

func NewMorphHandler(svc *morph.Service) *MorphHandler {
	return &MorphHandler{svc: svc}
}

// NewMorphServiceHandler mounts every procedure and returns the path prefix
// to register on a mux.
func NewMorphServiceHandler(h *MorphHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{Codec()}, opts...)
	mux := http.NewServeMux()
	mux.Handle(CreateSessionProcedure, connect.NewUnaryHandler(CreateSessionProcedure, h.CreateSession, opts...))
	mux.Handle(GetSessionProcedure, connect.NewUnaryHandler(GetSessionProcedure, h.GetSession, opts...))
	mux.Handle(UpdateSessionProcedure, connect.NewUnaryHandler(UpdateSessionProcedure, h.UpdateSession, opts...))
	mux.Handle(ToggleGoalProcedure, connect.NewUnaryHandler(ToggleGoalProcedure, h.ToggleGoal, opts...))
	mux.Handle(LoadSampleProcedure, connect.NewUnaryHandler(LoadSampleProcedure, h.LoadSample, opts...))
	mux.Handle(TransformProcedure, connect.NewUnaryHandler(TransformProcedure, h.Transform, opts...))
	mux.Handle(RunCodeProcedure, connect.NewUnaryHandler(RunCodeProcedure, h.RunCode, opts...))
	mux.Handle(ClearRunProcedure, connect.NewUnaryHandler(ClearRunProcedure, h.ClearRun, opts...))
	mux.Handle(ExportOutputProcedure, connect.NewUnaryHandler(ExportOutputProcedure, h.ExportOutput, opts...))
	mux.Handle(ListExportsProcedure, connect.NewUnaryHandler(ListExportsProcedure, h.ListExports, opts...))
	mux.Handle(ListGoalsProcedure, connect.NewUnaryHandler(ListGoalsProcedure, h.ListGoals, opts...))
	mux.Handle(DetectLanguageProcedure, connect.NewUnaryHandler(DetectLanguageProcedure, h.DetectLanguage, opts...))
	return "/" + MorphServiceName + "/", mux
}

func (h *MorphHandler) CreateSession(ctx context.Context, _ *connect.Request[CreateSessionRequest]) (*connect.Response[SessionResponse], error) {
	return connect.NewResponse(&SessionResponse{Session: h.svc.Create(ctx)}), nil
}

func (h *MorphHandler) GetSession(ctx context.Context, req *connect.Request[GetSessionRequest]) (*connect.Response[SessionResponse], error) {
	sess, err := h.svc.Get(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&SessionResponse{Session: sess}), nil
}

func (h *MorphHandler) UpdateSession(ctx context.Context, req *connect.Request[UpdateSessionRequest]) (*connect.Response[SessionResponse], error) {
	var p morph.Patch
	p.Input = req.Msg.Input
	if req.Msg.Language != nil {
		tag, ok := language.Parse(*req.Msg.Language)
		if !ok {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%w: %q", morph.ErrInvalidLanguage, *req.Msg.Language))
		}
		p.Language = &tag
	}
	if req.Msg.Goals != nil {
		p.Goals, _ = goal.ParseAll(*req.Msg.Goals)
		p.SetGoals = true
	}
	sess, err := h.svc.Update(ctx, req.Msg.SessionID, p)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&SessionResponse{Session: sess}), nil
}

func (h *MorphHandler) ToggleGoal(ctx context.Context, req *connect.Request[ToggleGoalRequest]) (*connect.Response[SessionResponse], error) {
	g, ok := goal.Parse(req.Msg.Goal)
	if !ok {
		// Unknown goals are ignored, as everywhere else.
		return h.GetSession(ctx, connect.NewRequest(&GetSessionRequest{SessionID: req.Msg.SessionID}))
	}
	sess, err := h.svc.ToggleGoal(ctx, req.Msg.SessionID, g)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&SessionResponse{Session: sess}), nil
}

func (h *MorphHandler) LoadSample(ctx context.Context, req *connect.Request[LoadSampleRequest]) (*connect.Response[SessionResponse], error) {
	sess, err := h.svc.LoadSample(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&SessionResponse{Session: sess}), nil
}

func (h *MorphHandler) Transform(ctx context.Context, req *connect.Request[TransformRequest]) (*connect.Response[SessionResponse], error) {
	sess, err := h.svc.Transform(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&SessionResponse{Session: sess}), nil
}

func (h *MorphHandler) RunCode(ctx context.Context, req *connect.Request[RunCodeRequest]) (*connect.Response[SessionResponse], error) {
	target, err := morph.ParseTarget(strings.ToLower(strings.TrimSpace(req.Msg.Target)))
	if err != nil {
		return nil, toConnectError(err)
	}
	sess, err := h.svc.Run(ctx, req.Msg.SessionID, target)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&SessionResponse{Session: sess}), nil
}

func (h *MorphHandler) ClearRun(ctx context.Context, req *connect.Request[ClearRunRequest]) (*connect.Response[SessionResponse], error) {
	target, err := morph.ParseTarget(strings.ToLower(strings.TrimSpace(req.Msg.Target)))
	if err != nil {
		return nil, toConnectError(err)
	}
	sess, err := h.svc.ClearRun(ctx, req.Msg.SessionID, target)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&SessionResponse{Session: sess}), nil
}

func (h *MorphHandler) ExportOutput(ctx context.Context, req *connect.Request[ExportOutputRequest]) (*connect.Response[ExportOutputResponse], error) {
	exp, err := h.svc.Export(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(toExportResponse(exp)), nil
}

func (h *MorphHandler) ListExports(ctx context.Context, req *connect.Request[ListExportsRequest]) (*connect.Response[ListExportsResponse], error) {
	exps, err := h.svc.ListExports(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, toConnectError(err)
	}
	out := &ListExportsResponse{Exports: make([]ExportOutputResponse, 0, len(exps))}
	for _, exp := range exps {
		out.Exports = append(out.Exports, *toExportResponse(exp))
	}
	return connect.NewResponse(out), nil
}

func toExportResponse(exp morph.Export) *ExportOutputResponse {
	return &ExportOutputResponse{Key: exp.Key, Object: exp.Object, Name: exp.Name, URL: exp.URL}
}

func (h *MorphHandler) ListGoals(context.Context, *connect.Request[ListGoalsRequest]) (*connect.Response[ListGoalsResponse], error) {
	return connect.NewResponse(&ListGoalsResponse{Goals: goal.Catalog()}), nil
}

func (h *MorphHandler) DetectLanguage(_ context.Context, req *connect.Request[DetectLanguageRequest]) (*connect.Response[DetectLanguageResponse], error) {
	out := &DetectLanguageResponse{Language: language.Detect(req.Msg.Code).String()}
	if name := strings.TrimSpace(req.Msg.Filename); name != "" {
		if tag, ok := language.FromFilename(name); ok {
			out.FromFilename = tag.String()
		}
	}
	return connect.NewResponse(out), nil
}
