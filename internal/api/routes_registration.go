package api

import "github.com/gorilla/mux"

func registerBaseRoutes(r *mux.Router, s *Server) {
	r.HandleFunc("/health", s.handleHealth).Methods("GET", "OPTIONS")
	r.HandleFunc("/metrics", s.handleMetrics).Methods("GET", "OPTIONS")
}

func registerAPIRoutes(r *mux.Router, s *Server) {
	r.HandleFunc("/api/networks", s.handleNetworks).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/check-ip-assets", s.idempotentHandler(s.handleCheckIPAssets)).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/balance/{address}", s.handleBalance).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/portfolio", s.handlePortfolio).Methods("POST", "OPTIONS")
}
