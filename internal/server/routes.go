package server

import "net/http"

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Sector pipeline
	mux.HandleFunc("/api/sectors", s.handleSectors)
	mux.HandleFunc("/api/refresh", s.handleRefresh)
	mux.HandleFunc("/api/refresh/status", s.handleRefreshStatus)
}
