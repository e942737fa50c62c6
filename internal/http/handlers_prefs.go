package http

import (
	"net/http"

	"fintrack/internal/core"
)

type preferencesRequest struct {
	ThemeMode   *core.ThemeMode   `json:"themeMode,omitempty"`
	ColorScheme *core.ColorScheme `json:"colorScheme,omitempty"`
	// SystemDark forwards the browser's prefers-color-scheme signal.
	SystemDark *bool `json:"systemDark,omitempty"`
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(s.prefs.State()).Write(w)
}

// handlePutPreferences validates every field before applying any of them.
func (s *Server) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	var req preferencesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.ThemeMode != nil && !req.ThemeMode.Valid() {
		UnprocessableEntityError(core.ErrInvalidTheme.Error()).Write(w)
		return
	}
	if req.ColorScheme != nil && !req.ColorScheme.Valid() {
		UnprocessableEntityError(core.ErrInvalidScheme.Error()).Write(w)
		return
	}

	if req.SystemDark != nil {
		s.prefs.SetSystemDark(*req.SystemDark)
	}
	if req.ThemeMode != nil {
		if err := s.prefs.SetThemeMode(r.Context(), *req.ThemeMode); err != nil {
			writeError(w, r, err)
			return
		}
	}
	if req.ColorScheme != nil {
		if err := s.prefs.SetColorScheme(r.Context(), *req.ColorScheme); err != nil {
			writeError(w, r, err)
			return
		}
	}
	NewJSONResponse().Data(s.prefs.State()).Write(w)
}

func (s *Server) handleTogglePreferences(w http.ResponseWriter, r *http.Request) {
	if _, err := s.prefs.Toggle(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(s.prefs.State()).Write(w)
}
