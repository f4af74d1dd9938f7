package server

import (
	"net/http"
	"time"

	"github.com/jyang/sectorwatch/internal/common"
)

// handleHealth handles GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"service":   "sectorwatch",
		"version":   common.GetVersion(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleVersion handles GET /api/version.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

// handleSectors handles GET /api/sectors. The optional refresh=true query
// parameter bypasses the snapshot cache. The read degrades instead of
// failing, so the handler only ever reports storage-level errors.
func (s *Server) handleSectors(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	forceRefresh := r.URL.Query().Get("refresh") == "true"

	comp, err := s.app.Sectors.GetComparison(r.Context(), forceRefresh)
	if err != nil {
		s.logger.Error().Err(err).Msg("Sector comparison failed")
		WriteError(w, http.StatusInternalServerError, "Failed to load sector data")
		return
	}

	WriteJSON(w, http.StatusOK, comp)
}

// handleRefresh handles POST /api/refresh. The refresh runs in the
// background; the response only acknowledges the trigger.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	started := s.app.Sectors.TriggerRefresh()
	if !started {
		s.logger.Info().Msg("Refresh already in progress, trigger ignored")
	}

	WriteJSON(w, http.StatusAccepted, map[string]interface{}{
		"started": started,
		"message": refreshMessage(started),
	})
}

func refreshMessage(started bool) string {
	if started {
		return "Refresh started"
	}
	return "Refresh already in progress"
}

// handleRefreshStatus handles GET /api/refresh/status.
func (s *Server) handleRefreshStatus(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, s.app.Sectors.Status(r.Context()))
}
