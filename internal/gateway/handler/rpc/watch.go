package rpc

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"codemorph/internal/gateway/middleware"
	"codemorph/internal/gateway/repository/session"
	"codemorph/internal/gateway/service/morph"
)

// WatchHandler streams session snapshots over a websocket.
type WatchHandler struct {
	svc      *morph.Service
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWatchHandler accepts upgrades from the same origins as the CORS
// middleware. An empty list accepts every origin.
func NewWatchHandler(svc *morph.Service, logger zerolog.Logger, allowedOrigins ...string) *WatchHandler {
	return &WatchHandler{
		svc: svc,
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return middleware.OriginAllowed(allowedOrigins, r.Header.Get("Origin"))
			},
		},
	}
}

const (
	watchWSWriteWait = 10 * time.Second
	watchWSPongWait  = 60 * time.Second
	watchWSPingEvery = (watchWSPongWait * 9) / 10
)

type watchWSInbound struct {
	Type string `json:"type"`
}

type watchWSOutbound struct {
	Type      string           `json:"type"`
	SessionID string           `json:"sessionId,omitempty"`
	Session   *session.Session `json:"session,omitempty"`
	Code      string           `json:"code,omitempty"`
	Message   string           `json:"message,omitempty"`
}

func (h *WatchHandler) HandleSessionWS(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}
	if _, err := h.svc.Get(r.Context(), sessionID); errors.Is(err, session.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	log := h.log.With().Str("session_id", sessionID).Logger()
	if err := conn.SetReadDeadline(time.Now().Add(watchWSPongWait)); err != nil {
		log.Warn().Err(err).Msg("session ws set read deadline failed")
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(watchWSPongWait))
	})

	snapshots, err := h.svc.Watch(ctx, sessionID)
	if err != nil {
		_ = conn.SetWriteDeadline(time.Now().Add(watchWSWriteWait))
		_ = conn.WriteJSON(watchWSOutbound{Type: "error", Code: "not_found", Message: err.Error()})
		return
	}

	writeCh := make(chan watchWSOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(watchWSPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(watchWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(watchWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	log.Debug().Msg("session ws subscribed")

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case snap, ok := <-snapshots:
				if !ok {
					pushWatchWS(writeCh, watchWSOutbound{Type: "expired", SessionID: sessionID})
					return
				}
				pushWatchWS(writeCh, watchWSOutbound{Type: "snapshot", SessionID: sessionID, Session: &snap})
			}
		}
	}()

	for {
		var in watchWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			return
		}
		switch strings.ToLower(strings.TrimSpace(in.Type)) {
		case "ping":
			pushWatchWS(writeCh, watchWSOutbound{Type: "pong"})
		case "":
			pushWatchWS(writeCh, watchWSOutbound{Type: "error", Code: "invalid_argument", Message: "type is required"})
		default:
			pushWatchWS(writeCh, watchWSOutbound{Type: "error", Code: "invalid_argument", Message: "unsupported type: " + in.Type})
		}
	}
}

// pushWatchWS drops the oldest queued message when the writer falls behind.
func pushWatchWS(writeCh chan watchWSOutbound, out watchWSOutbound) {
	select {
	case writeCh <- out:
		return
	default:
	}
	select {
	case <-writeCh:
	default:
	}
	select {
	case writeCh <- out:
	default:
	}
}
