package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/config"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.metrics == nil {
		promhttp.Handler().ServeHTTP(w, r)
		return
	}
	s.metrics.Handler().ServeHTTP(w, r)
}

type networksResponse struct {
	OK             bool             `json:"ok"`
	DefaultNetwork string           `json:"defaultNetwork"`
	Networks       []config.Network `json:"networks"`
}

func (s *Server) handleNetworks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, networksResponse{
		OK:             true,
		DefaultNetwork: s.cfg.DefaultNetwork,
		Networks:       s.cfg.Networks,
	})
}
