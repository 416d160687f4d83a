package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

// requestMiddleware tags each request with an id and records its outcome in
// the log and metrics.
func (s *Server) requestMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		rec := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		elapsed := time.Since(start)
		s.metrics.ObserveHTTP(r.Method, route, rec.statusCode, elapsed)

		fields := []zap.Field{
			zap.String("request_id", id),
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", rec.statusCode),
			zap.Duration("duration", elapsed),
		}
		switch {
		case rec.statusCode >= 500:
			s.log.Error("request", fields...)
		case rec.statusCode >= 400:
			s.log.Warn("request", fields...)
		default:
			s.log.Debug("request", fields...)
		}
	})
}

// responseRecorder tracks the status written through it and, when capture is
// set, keeps a copy of the body.
type responseRecorder struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
	capture     bool
	body        []byte
}

func (r *responseRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.statusCode = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	if r.capture {
		r.body = append(r.body, b...)
	}
	return r.ResponseWriter.Write(b)
}
