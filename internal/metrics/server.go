package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultBind = "127.0.0.1:9464"

// NewHTTPServer creates an HTTP server that exposes Prometheus metrics at
// /metrics and a liveness probe at /healthz.
func NewHTTPServer(bind string) *http.Server {
	bind = strings.TrimSpace(bind)
	if bind == "" {
		bind = defaultBind
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	return &http.Server{
		Addr:              bind,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
