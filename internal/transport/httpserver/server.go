package httpserver

import (
	"net/http"
	"time"

	"recipe-share-go/internal/config"
)

// New builds the HTTP server. Read timeouts cover headers only so that
// slow media uploads are not cut off mid-body; handler time is bounded
// by the router's timeout middleware.
func New(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}
