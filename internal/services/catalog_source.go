package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/diagnosis-service/internal/cache"
	"github.com/SAP-F-2025/diagnosis-service/internal/models"
	"github.com/SAP-F-2025/diagnosis-service/internal/questionnaire"
)

// cachedQuestion is the cache form of a question. The answer type travels as its
// wire code.
type cachedQuestion struct {
	ID        models.QuestionID `json:"id"`
	Text      string            `json:"text"`
	Section   string            `json:"section,omitempty"`
	Domain    string            `json:"domain"`
	Subdomain string            `json:"subdomain"`
	Type      string            `json:"type"`
}

// cachedCatalogSource is a cache-aside decorator over the catalog collaborator.
type cachedCatalogSource struct {
	source questionnaire.CatalogSource
	cache  cache.CacheService
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedCatalogSource wraps source with c. A nil cache or a non-positive ttl
// disables caching.
func NewCachedCatalogSource(source questionnaire.CatalogSource, c cache.CacheService, ttl time.Duration, logger *slog.Logger) questionnaire.CatalogSource {
	if c == nil || ttl <= 0 {
		return source
	}
	return &cachedCatalogSource{source: source, cache: c, ttl: ttl, logger: logger}
}

func (s *cachedCatalogSource) FetchQuestions(ctx context.Context) ([]models.Question, error) {
	var entries []cachedQuestion
	err := s.cache.Get(ctx, cache.CatalogKey, &entries)
	switch {
	case err == nil:
		questions, decodeErr := fromCache(entries)
		if decodeErr == nil {
			s.logger.DebugContext(ctx, "Catalog served from cache", "questions", len(questions))
			return questions, nil
		}
		s.logger.WarnContext(ctx, "Dropping unusable cached catalog", "error", decodeErr)
		_ = s.cache.Delete(ctx, cache.CatalogKey)
	case !errors.Is(err, cache.ErrCacheMiss):
		s.logger.WarnContext(ctx, "Catalog cache read failed", "error", err)
	}

	questions, err := s.source.FetchQuestions(ctx)
	if err != nil {
		return nil, err
	}
	if len(questions) > 0 {
		if err := s.cache.Set(ctx, cache.CatalogKey, toCache(questions), s.ttl); err != nil {
			s.logger.WarnContext(ctx, "Catalog cache write failed", "error", err)
		}
	}
	return questions, nil
}

func toCache(questions []models.Question) []cachedQuestion {
	entries := make([]cachedQuestion, len(questions))
	for i, q := range questions {
		entries[i] = cachedQuestion{
			ID:        q.ID,
			Text:      q.Text,
			Section:   q.Section,
			Domain:    q.Domain,
			Subdomain: q.Subdomain,
			Type:      q.TypeCode(),
		}
	}
	return entries
}

func fromCache(entries []cachedQuestion) ([]models.Question, error) {
	if len(entries) == 0 {
		return nil, errors.New("empty catalog entry")
	}
	questions := make([]models.Question, len(entries))
	for i, e := range entries {
		t, err := models.ParseAnswerType(e.Type)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", e.ID, err)
		}
		questions[i] = models.Question{
			ID:         e.ID,
			Text:       e.Text,
			Section:    e.Section,
			Domain:     e.Domain,
			Subdomain:  e.Subdomain,
			AnswerType: t,
		}
	}
	return questions, nil
}
