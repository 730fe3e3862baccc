package service

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/model"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/repository"
)

// NewsService handles news article business logic.
type NewsService struct {
	newsRepo *repository.NewsRepository
	log      zerolog.Logger
}

// NewNewsService creates a new NewsService.
func NewNewsService(newsRepo *repository.NewsRepository, log zerolog.Logger) *NewsService {
	return &NewsService{
		newsRepo: newsRepo,
		log:      log.With().Str("component", "news_service").Logger(),
	}
}

// GetByID retrieves an active article.
func (s *NewsService) GetByID(ctx context.Context, id int) (*model.NewsArticle, error) {
	return s.newsRepo.GetByID(ctx, id)
}

// List retrieves active articles matching the filter with pagination.
func (s *NewsService) List(ctx context.Context, f repository.NewsFilter, limit, offset int) ([]model.NewsArticle, int, error) {
	return s.newsRepo.ListPaginated(ctx, f, limit, offset)
}

// Create publishes or drafts a new article.
func (s *NewsService) Create(ctx context.Context, a *model.NewsArticle) error {
	if a.Status == "" {
		a.Status = model.NewsStatusDraft
	}
	return s.newsRepo.Create(ctx, a)
}

// Update rewrites an article's mutable fields.
func (s *NewsService) Update(ctx context.Context, a *model.NewsArticle) error {
	return s.newsRepo.Update(ctx, a)
}

// Delete archives an article (soft delete: is_active off, status archived).
func (s *NewsService) Delete(ctx context.Context, id int) error {
	if err := s.newsRepo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Int("article_id", id).Msg("news article archived")
	return nil
}
