// Package httpserver builds the API's *http.Server.
package httpserver

import (
	"log/slog"
	"net/http"
	"time"
)

// New returns a server for handler on addr. Its error log goes to logger at
// warn level. The write timeout covers the daily brief over a full snapshot.
func New(addr string, handler http.Handler, logger *slog.Logger) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
