package server

import (
	"net/http"
)

// handleListTemplates returns the catalog of available templates.
func (s *Server) handleListTemplates(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{"templates": s.catalog.List()})
}

// handleGetTemplate returns a single template definition.
func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	tmpl, err := s.catalog.Get(r.PathValue("id"))
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, tmpl)
}
