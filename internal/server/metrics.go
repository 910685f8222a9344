package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"keygrid/internal/logger"
	"keygrid/internal/stats"
)

// MetricsHandler serves st in Prometheus text format.
func MetricsHandler(st *stats.Stats) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		st.WritePrometheus(w)
	})
}

// ServeMetrics exposes /metrics on addr until ctx ends.
func ServeMetrics(ctx context.Context, addr string, st *stats.Stats) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(st))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Infof("Metrics listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
