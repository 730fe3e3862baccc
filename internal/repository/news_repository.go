package repository

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/model"
)

// ErrNewsNotFound is returned when an article ID matches no active row.
var ErrNewsNotFound = errors.New("news article not found")

// NewsFilter selects articles for listing.
type NewsFilter struct {
	Category *string
	Search   *string
}

// NewsRepository handles news article data access.
type NewsRepository struct {
	pool *pgxpool.Pool
}

// NewNewsRepository creates a new NewsRepository.
func NewNewsRepository(pool *pgxpool.Pool) *NewsRepository {
	return &NewsRepository{pool: pool}
}

const newsColumns = `id, title, summary, content, category, tags, author_id, status,
	is_active, published_at, created_at, updated_at`

func scanNews(row pgx.Row) (*model.NewsArticle, error) {
	a := &model.NewsArticle{}
	err := row.Scan(&a.ID, &a.Title, &a.Summary, &a.Content, &a.Category, &a.Tags,
		&a.AuthorID, &a.Status, &a.IsActive, &a.PublishedAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetByID retrieves an active article by ID.
func (r *NewsRepository) GetByID(ctx context.Context, id int) (*model.NewsArticle, error) {
	a, err := scanNews(r.pool.QueryRow(ctx,
		`SELECT `+newsColumns+` FROM news_articles WHERE id = $1 AND is_active = TRUE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNewsNotFound
	}
	return a, err
}

// ListPaginated retrieves active articles with optional category and
// case-insensitive title/content search, newest first.
func (r *NewsRepository) ListPaginated(ctx context.Context, f NewsFilter, limit, offset int) ([]model.NewsArticle, int, error) {
	where := ` WHERE is_active = TRUE`
	var args []interface{}

	if f.Category != nil {
		args = append(args, *f.Category)
		where += ` AND category = $` + strconv.Itoa(len(args))
	}
	if f.Search != nil {
		args = append(args, "%"+*f.Search+"%")
		idx := strconv.Itoa(len(args))
		where += ` AND (title ILIKE $` + idx + ` OR content ILIKE $` + idx + `)`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM news_articles`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := `SELECT ` + newsColumns + ` FROM news_articles` + where +
		` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)-1) +
		` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var articles []model.NewsArticle
	for rows.Next() {
		a, err := scanNews(rows)
		if err != nil {
			return nil, 0, err
		}
		articles = append(articles, *a)
	}
	return articles, total, rows.Err()
}

// Create inserts a new article.
func (r *NewsRepository) Create(ctx context.Context, a *model.NewsArticle) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO news_articles (title, summary, content, category, tags, author_id, status, is_active, published_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE,
		         CASE WHEN $7 = 'published' THEN NOW() END)
		 RETURNING id, published_at, created_at, updated_at`,
		a.Title, a.Summary, a.Content, a.Category, a.Tags, a.AuthorID, a.Status,
	).Scan(&a.ID, &a.PublishedAt, &a.CreatedAt, &a.UpdatedAt)
	if err == nil {
		a.IsActive = true
	}
	return err
}

// Update rewrites an article's mutable fields. Publishing stamps
// published_at once; republishing keeps the original timestamp.
func (r *NewsRepository) Update(ctx context.Context, a *model.NewsArticle) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE news_articles
		 SET title = $1, summary = $2, content = $3, category = $4, tags = $5, status = $6,
		     published_at = CASE WHEN $6 = 'published' THEN COALESCE(published_at, NOW()) ELSE published_at END,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = $7 AND is_active = TRUE`,
		a.Title, a.Summary, a.Content, a.Category, a.Tags, a.Status, a.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNewsNotFound
	}
	return nil
}

// SoftDelete archives an article; rows are never removed.
func (r *NewsRepository) SoftDelete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE news_articles
		 SET is_active = FALSE, status = 'archived', updated_at = CURRENT_TIMESTAMP
		 WHERE id = $1 AND is_active = TRUE`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNewsNotFound
	}
	return nil
}
