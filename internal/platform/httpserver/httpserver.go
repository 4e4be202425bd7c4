// Package httpserver builds the competition API server. Timeouts are sized
// for the submission path: a flag submission is a small JSON body bounded by
// the gateway deadline, so nothing legitimate holds a connection for long.
package httpserver

import (
	"net/http"
	"time"
)

func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
