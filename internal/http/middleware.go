package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/andreasstove999/ecommerce-system/cart-manager-go/internal/correlation"
)

func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cid := r.Header.Get(correlation.Header)
		if cid == "" {
			cid = uuid.NewString()
		}

		// expose to client + propagate downstream
		w.Header().Set(correlation.Header, cid)

		ctx := correlation.WithID(r.Context(), cid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func Recover(logger logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					cid := correlation.ID(r.Context())
					logger.WithFields(logrus.Fields{
						"panic":         rec,
						"correlationId": cid,
					}).Error("panic while serving request")
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(errorResponse{
						Error:         "internal server error",
						CorrelationID: cid,
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func Logging(logger logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.WithFields(logrus.Fields{
				"method":        r.Method,
				"path":          r.URL.Path,
				"status":        ww.Status(),
				"bytes":         ww.BytesWritten(),
				"durationMs":    time.Since(start).Milliseconds(),
				"correlationId": correlation.ID(r.Context()),
				"requestId":     middleware.GetReqID(r.Context()),
			}).Info("request")
		})
	}
}
