package handler

import (
	"log/slog"
	"net/http"

	"github.com/snipvault/snipvault/internal/service"
)

type LanguageHandler struct {
	languages *service.LanguageService
	logger    *slog.Logger
}

func NewLanguageHandler(languages *service.LanguageService, logger *slog.Logger) *LanguageHandler {
	return &LanguageHandler{languages: languages, logger: logger}
}

// HandleList returns the seeded languages. GET /api/languages
func (h *LanguageHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	languages, err := h.languages.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, languages)
}
