package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/realmwatch/salesbot/internal/sales"
	"go.uber.org/zap"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

type StatusResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
}

type CollectionStatus struct {
	Name          string `json:"name"`
	Market        string `json:"market"`
	LastTimestamp int64  `json:"lastTimestamp"`
	SeenTxCount   int    `json:"seenTxCount"`
}

// StartRPCServer exposes read-only tracker state for operators. Returns a
// close function performing graceful shutdown.
func StartRPCServer(port int, version string, trackers []*sales.CollectionTracker, ctx context.Context) func() {
	zap.L().Info("Starting RPC server on port", zap.Int("port", port))
	startedAt := time.Now()

	mux := newMux(version, startedAt, trackers)

	addr := fmt.Sprintf(":%d", port)
	server := &http.Server{
		Addr:    addr,
		Handler: loggingMiddleware(mux),
	}
	go func() {
		if err := server.ListenAndServe(); err != nil {
			if err == http.ErrServerClosed {
				zap.L().Info("RPC server closed")
			} else {
				zap.L().Fatal("starting RPC server failed", zap.Error(err))
			}
		}
	}()
	closeFunc := func() {
		zap.L().Info("Closing RPC server...")
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zap.L().Error("server shutdown failed", zap.Error(err))
		}
	}
	return closeFunc
}

func newMux(version string, startedAt time.Time, trackers []*sales.CollectionTracker) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/status", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, StatusResponse{
			Status:        "OK",
			Version:       version,
			UptimeSeconds: int64(time.Since(startedAt).Seconds()),
		})
	})
	mux.HandleFunc("/api/v1/collections", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		statuses := make([]CollectionStatus, 0, len(trackers))
		for _, t := range trackers {
			statuses = append(statuses, CollectionStatus{
				Name:          t.Name,
				Market:        string(t.Market),
				LastTimestamp: t.LastTimestamp(),
				SeenTxCount:   t.SeenCount(),
			})
		}
		writeJSON(w, statuses)
	})
	return mux
}

func writeJSON(w http.ResponseWriter, resp any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		zap.L().Error("failed to encode response", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := &responseWriter{w, http.StatusOK}
		next.ServeHTTP(rw, r)

		zap.L().Info("Request",
			zap.String("ip", r.RemoteAddr),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rw.statusCode),
		)
	})
}
