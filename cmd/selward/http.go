package main

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
)

// serveHTTP runs an HTTP/1.1 server on ln exposing read-only JSON views of
// the daemon state. It shares the TCP port with the raw protocol via cmux.
func (d *daemon) serveHTTP(ln net.Listener) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.HandleFunc("GET /v1/selection", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, d.selectionMsg())
	})
	mux.HandleFunc("GET /v1/status", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, d.status())
	})

	srv := &http.Server{Handler: mux}
	if err := srv.Serve(ln); err != nil {
		slog.Debug("http serve ended", "err", err)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		slog.Debug("http response encode", "err", err)
	}
}
