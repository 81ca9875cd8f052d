package server

import (
	"net/http"

	"codemorph/internal/gateway/handler"
	"codemorph/internal/gateway/handler/rpc"
	"codemorph/internal/gateway/middleware"
)

func NewMux(
	morphHandler *rpc.MorphHandler,
	watchHandler *rpc.WatchHandler,
	fileHandler *handler.FileHandler,
	model string,
	allowedOrigins []string,
) http.Handler {
	mux := http.NewServeMux()

	// RPC Handlers
	mux.Handle(rpc.NewMorphServiceHandler(morphHandler))

	// Streaming & file transfer
	mux.HandleFunc("/ws/session", watchHandler.HandleSessionWS)
	mux.HandleFunc("/files/upload", fileHandler.HandleUpload)
	mux.HandleFunc("/files/download", fileHandler.HandleDownload)
	mux.HandleFunc("/files/export", fileHandler.HandleExport)
	mux.HandleFunc("/healthz", handler.HandleHealth(model))

	// Middleware
	return middleware.CORS(allowedOrigins...)(mux)
}
