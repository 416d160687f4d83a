package api

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/idempotency"
)

const idempotencyHeader = "Idempotency-Key"

// idempotentHandler replays the stored response for a repeated
// Idempotency-Key. Only 2xx responses are stored. Requests without the
// header pass straight through.
func (s *Server) idempotentHandler(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimSpace(r.Header.Get(idempotencyHeader))
		if key == "" {
			handler(w, r)
			return
		}

		entry, ok, err := s.idem.Get(r.Context(), key)
		if err != nil {
			s.log.Warn("idempotency lookup failed", zap.Error(err))
		}
		s.metrics.Idempotency(ok)
		if ok {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Cache", "HIT")
			w.WriteHeader(entry.Status)
			w.Write(entry.Body)
			return
		}

		rec := &responseRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			capture:        true,
		}
		handler(rec, r)

		if rec.statusCode >= 200 && rec.statusCode < 300 && len(rec.body) > 0 {
			e := idempotency.Entry{Status: rec.statusCode, Body: rec.body}
			if err := s.idem.Set(r.Context(), key, e, s.idemTTL); err != nil {
				s.log.Warn("idempotency store failed", zap.Error(err))
			}
		}
	}
}
