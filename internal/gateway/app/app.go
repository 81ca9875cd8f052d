package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/rs/zerolog"

	"codemorph/internal/gateway/config"
	"codemorph/internal/gateway/handler"
	"codemorph/internal/gateway/handler/rpc"
	"codemorph/internal/gateway/repository/session"
	"codemorph/internal/gateway/repository/usage"
	"codemorph/internal/gateway/server"
	"codemorph/internal/gateway/service/morph"
	"codemorph/internal/llm"
	"codemorph/internal/sandbox"
)

type App struct {
	server  *server.Server
	handler http.Handler
	model   *llm.Gateway
	ledger  usage.Ledger
	log     zerolog.Logger
}

func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	// Dependencies
	ledger, err := OpenUsageLedger(ctx, cfg.Usage)
	if err != nil {
		return nil, fmt.Errorf("failed to open usage ledger: %w", err)
	}
	model, err := NewModel(ctx, cfg.LLM, logger, ledger)
	if err != nil {
		closeLedger(ledger)
		return nil, err
	}
	exports, err := newExportStore(cfg.Artifact, logger)
	if err != nil {
		closeLedger(ledger)
		_ = model.Close()
		return nil, err
	}

	sessions := session.NewStore(cfg.Session.Max, cfg.Session.TTL)
	runner := sandbox.New(sandbox.WithTimeout(cfg.Sandbox.Timeout), sandbox.WithLogger(logger))
	morphSvc := morph.New(sessions, morph.NewPipeline(model, logger), runner, exports, logger)

	morphHandler := rpc.NewMorphHandler(morphSvc)
	watchHandler := rpc.NewWatchHandler(morphSvc, logger, cfg.CORSOrigins...)
	fileHandler := handler.NewFileHandler(morphSvc, logger)

	// Routing & Server
	mux := server.NewMux(morphHandler, watchHandler, fileHandler, model.Name(), cfg.CORSOrigins)
	srv := server.New(cfg.Port, mux, logger)

	return &App{
		server:  srv,
		handler: mux,
		model:   model,
		ledger:  ledger,
		log:     logger,
	}, nil
}

// Handler exposes the routed handler without the h2c wrapper.
func (a *App) Handler() http.Handler { return a.handler }

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Serve(ln net.Listener) error {
	return a.server.Serve(ln)
}

// Shutdown stops the server and releases the model client and usage ledger.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	if cerr := a.model.Close(); cerr != nil {
		a.log.Warn().Err(cerr).Msg("closing llm client")
	}
	closeLedger(a.ledger)
	return err
}

func closeLedger(l usage.Ledger) {
	if l != nil {
		_ = l.Close()
	}
}
