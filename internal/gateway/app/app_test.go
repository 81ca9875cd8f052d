package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codemorph/internal/analysis"
	"codemorph/internal/gateway/config"
	"codemorph/internal/gateway/handler/rpc"
)

func newTestServer(t *testing.T, overrides ...config.Override) (*httptest.Server, *rpc.MorphClient) {
	t.Helper()
	cfg := config.Defaults()
	cfg.LLM.Provider = "fake"
	cfg.Usage.Driver = "none"
	for _, o := range overrides {
		o(&cfg)
	}

	a, err := New(context.Background(), &cfg, zerolog.Nop())
	require.NoError(t, err)
	srv := httptest.NewServer(a.Handler())
	t.Cleanup(func() {
		srv.Close()
		_ = a.Shutdown(context.Background())
	})
	return srv, rpc.NewMorphClient(srv.Client(), srv.URL)
}

func strPtr(s string) *string { return &s }

func TestMorphServiceEndToEnd(t *testing.T) {
	_, client := newTestServer(t)
	ctx := context.Background()

	created, err := client.CreateSession(ctx)
	require.NoError(t, err)
	id := created.Session.ID
	require.NotEmpty(t, id)
	assert.Equal(t, "javascript", created.Session.Language.String())

	goals := []string{"Performance Boost", "Not A Goal"}
	updated, err := client.UpdateSession(ctx, &rpc.UpdateSessionRequest{
		SessionID: id,
		Input:     strPtr("console.log(1,2)"),
		Goals:     &goals,
	})
	require.NoError(t, err)
	require.Len(t, updated.Session.Goals, 1, "unknown goal ids are dropped")

	transformed, err := client.Transform(ctx, &rpc.TransformRequest{SessionID: id})
	require.NoError(t, err)
	assert.Equal(t, "console.log(1,2)", transformed.Session.OutputCode)
	require.NotNil(t, transformed.Session.Analysis)
	assert.False(t, analysis.IsFallback(*transformed.Session.Analysis))
	assert.False(t, transformed.Session.Loading)

	ran, err := client.RunCode(ctx, &rpc.RunCodeRequest{SessionID: id, Target: "output"})
	require.NoError(t, err)
	require.NotNil(t, ran.Session.OutputRun)
	assert.Equal(t, []string{"1 2"}, ran.Session.OutputRun.Lines)

	cleared, err := client.ClearRun(ctx, &rpc.ClearRunRequest{SessionID: id, Target: "output"})
	require.NoError(t, err)
	assert.Nil(t, cleared.Session.OutputRun)

	exp, err := client.ExportOutput(ctx, &rpc.ExportOutputRequest{SessionID: id})
	require.NoError(t, err)
	assert.Equal(t, "codemorph-ai-output.js", exp.Name)
	assert.True(t, strings.HasPrefix(exp.Key, id+"/"))

	toggled, err := client.ToggleGoal(ctx, &rpc.ToggleGoalRequest{SessionID: id, Goal: "Performance Boost"})
	require.NoError(t, err)
	assert.Empty(t, toggled.Session.Goals)

	sample, err := client.LoadSample(ctx, &rpc.LoadSampleRequest{SessionID: id})
	require.NoError(t, err)
	assert.Contains(t, sample.Session.InputCode, "ProductList")
}

func TestMorphServiceStatelessProcedures(t *testing.T) {
	_, client := newTestServer(t)
	ctx := context.Background()

	goals, err := client.ListGoals(ctx)
	require.NoError(t, err)
	require.Len(t, goals.Goals, 6)
	assert.Equal(t, "Most Popular", goals.Goals[0].Badge)

	det, err := client.DetectLanguage(ctx, &rpc.DetectLanguageRequest{Code: "package main\nfunc main() {}", Filename: "main.go"})
	require.NoError(t, err)
	assert.Equal(t, "go", det.Language)
	assert.Equal(t, "go", det.FromFilename)
}

func TestMorphServiceErrorCodes(t *testing.T) {
	_, client := newTestServer(t)
	ctx := context.Background()

	_, err := client.GetSession(ctx, &rpc.GetSessionRequest{SessionID: "missing"})
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	created, err := client.CreateSession(ctx)
	require.NoError(t, err)
	_, err = client.Transform(ctx, &rpc.TransformRequest{SessionID: created.Session.ID})
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
	assert.Contains(t, err.Error(), "Please provide code and select at least one transformation.")

	_, err = client.RunCode(ctx, &rpc.RunCodeRequest{SessionID: created.Session.ID, Target: "sideways"})
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	_, err = client.UpdateSession(ctx, &rpc.UpdateSessionRequest{SessionID: created.Session.ID, Language: strPtr("cobol")})
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestUploadAndDownload(t *testing.T) {
	srv, client := newTestServer(t)
	ctx := context.Background()
	created, err := client.CreateSession(ctx)
	require.NoError(t, err)
	id := created.Session.ID

	upload := func(name, content string) *http.Response {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		fw, err := mw.CreateFormFile("file", name)
		require.NoError(t, err)
		_, _ = io.WriteString(fw, content)
		require.NoError(t, mw.Close())
		resp, err := http.Post(srv.URL+"/files/upload?session_id="+id, mw.FormDataContentType(), &body)
		require.NoError(t, err)
		return resp
	}

	resp := upload("notes.md", "# hi")
	resp.Body.Close()
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)

	resp = upload("users.py", "def f():\n    return 1\n")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Session struct {
			Language  string `json:"language"`
			InputCode string `json:"inputCode"`
		} `json:"session"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "python", out.Session.Language)

	goals := []string{"Best Practices"}
	_, err = client.UpdateSession(ctx, &rpc.UpdateSessionRequest{SessionID: id, Goals: &goals})
	require.NoError(t, err)
	_, err = client.Transform(ctx, &rpc.TransformRequest{SessionID: id})
	require.NoError(t, err)

	dl, err := http.Get(srv.URL + "/files/download?session_id=" + id)
	require.NoError(t, err)
	defer dl.Body.Close()
	assert.Equal(t, http.StatusOK, dl.StatusCode)
	assert.Equal(t, `attachment; filename="codemorph-ai-output.py"`, dl.Header.Get("Content-Disposition"))
	body, _ := io.ReadAll(dl.Body)
	assert.Equal(t, "def f():\n    return 1", string(body))

	missing, err := http.Get(srv.URL + "/files/download?session_id=nope")
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestExportsAreRetrievable(t *testing.T) {
	srv, client := newTestServer(t)
	ctx := context.Background()
	created, err := client.CreateSession(ctx)
	require.NoError(t, err)
	id := created.Session.ID

	goals := []string{"Modern Stack"}
	_, err = client.UpdateSession(ctx, &rpc.UpdateSessionRequest{SessionID: id, Input: strPtr("var a = 1;"), Goals: &goals})
	require.NoError(t, err)
	_, err = client.Transform(ctx, &rpc.TransformRequest{SessionID: id})
	require.NoError(t, err)

	exp, err := client.ExportOutput(ctx, &rpc.ExportOutputRequest{SessionID: id})
	require.NoError(t, err)
	require.NotEmpty(t, exp.Object)
	assert.Empty(t, exp.URL, "the default in-memory store has no links")

	listed, err := client.ListExports(ctx, &rpc.ListExportsRequest{SessionID: id})
	require.NoError(t, err)
	require.Len(t, listed.Exports, 1)
	assert.Equal(t, exp.Object, listed.Exports[0].Object)
	assert.Equal(t, "codemorph-ai-output.js", listed.Exports[0].Name)

	get := func(sessionID, object string) *http.Response {
		q := url.Values{"session_id": {sessionID}, "name": {object}}
		resp, err := http.Get(srv.URL + "/files/export?" + q.Encode())
		require.NoError(t, err)
		return resp
	}

	resp := get(id, exp.Object)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "var a = 1;", string(body))
	assert.Equal(t, `attachment; filename="codemorph-ai-output.js"`, resp.Header.Get("Content-Disposition"))

	resp = get(id, "missing/codemorph-ai-output.js")
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = get(id, "../x")
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = get("nope", exp.Object)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, err = client.ListExports(ctx, &rpc.ListExportsRequest{SessionID: "nope"})
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "ok", out["status"])
	assert.Equal(t, "FakeLLM", out["model"])
}

func TestSessionWebsocket(t *testing.T) {
	srv, client := newTestServer(t)
	ctx := context.Background()
	created, err := client.CreateSession(ctx)
	require.NoError(t, err)
	id := created.Session.ID

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/session?session_id=" + id
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	type msg struct {
		Type    string `json:"type"`
		Session *struct {
			InputCode string `json:"inputCode"`
		} `json:"session"`
	}
	read := func() msg {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var m msg
		require.NoError(t, conn.ReadJSON(&m))
		return m
	}

	first := read()
	assert.Equal(t, "snapshot", first.Type)

	_, err = client.UpdateSession(ctx, &rpc.UpdateSessionRequest{SessionID: id, Input: strPtr("let x = 1")})
	require.NoError(t, err)
	for {
		m := read()
		if m.Type == "snapshot" && m.Session != nil && m.Session.InputCode == "let x = 1" {
			break
		}
	}

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	for {
		if read().Type == "pong" {
			break
		}
	}

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/session?session_id=nope", nil)
	require.Error(t, err)
	if resp != nil {
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	}
}

func TestSessionWebsocketHonorsOriginAllowList(t *testing.T) {
	srv, client := newTestServer(t, func(c *config.Config) {
		c.CORSOrigins = []string{"https://app.example.com"}
	})
	created, err := client.CreateSession(context.Background())
	require.NoError(t, err)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/session?session_id=" + created.Session.ID

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Origin": {"https://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Origin": {"https://app.example.com"}})
	require.NoError(t, err)
	conn.Close()
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger("production", "warn", &buf)
	log.Info().Msg("hidden")
	log.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"shown"`)
}

func TestOpenUsageLedger(t *testing.T) {
	ctx := context.Background()
	l, err := OpenUsageLedger(ctx, config.UsageConfig{Driver: "none"})
	require.NoError(t, err)
	assert.Nil(t, l)

	l, err = OpenUsageLedger(ctx, config.UsageConfig{Driver: "sqlite", DSN: "file::memory:"})
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.NoError(t, l.Close())

	_, err = OpenUsageLedger(ctx, config.UsageConfig{Driver: "mongo"})
	assert.Error(t, err)
}
