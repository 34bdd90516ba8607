package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleNavigationStats(w http.ResponseWriter, r *http.Request) {
	st := s.views.Stats()
	if st == nil {
		jsonError(w, "navigation stats unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"open_views": len(s.views.List()),
		"stats":      st.Snapshot(),
	})
}
