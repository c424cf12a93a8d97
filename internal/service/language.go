package service

import (
	"context"

	"github.com/snipvault/snipvault/internal/model"
	"github.com/snipvault/snipvault/internal/repository"
)

// LanguageService exposes the seeded language reference data.
type LanguageService struct {
	languages repository.LanguageRepository
}

func NewLanguageService(languages repository.LanguageRepository) *LanguageService {
	return &LanguageService{languages: languages}
}

func (s *LanguageService) List(ctx context.Context) ([]model.Language, error) {
	return s.languages.ListLanguages(ctx)
}
