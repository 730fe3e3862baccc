package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/model"
)

// ErrPromotionNotFound is returned when a promotion ID matches no row.
var ErrPromotionNotFound = errors.New("promotion not found")

// PromotionRepository handles promotion (cohort) data access.
type PromotionRepository struct {
	pool *pgxpool.Pool
}

// NewPromotionRepository creates a new PromotionRepository.
func NewPromotionRepository(pool *pgxpool.Pool) *PromotionRepository {
	return &PromotionRepository{pool: pool}
}

const promotionColumns = `p.id, p.name, p.code, p.start_year, p.end_year, p.coordinator_id,
	p.status, p.capacity, p.created_at, p.updated_at,
	COALESCE((SELECT array_agg(ps.student_id ORDER BY ps.student_id)
	          FROM promotion_students ps WHERE ps.promotion_id = p.id), '{}'),
	COALESCE((SELECT array_agg(pc.course_id ORDER BY pc.course_id)
	          FROM promotion_courses pc WHERE pc.promotion_id = p.id), '{}')`

func scanPromotion(row pgx.Row) (*model.Promotion, error) {
	p := &model.Promotion{}
	err := row.Scan(&p.ID, &p.Name, &p.Code, &p.StartYear, &p.EndYear, &p.CoordinatorID,
		&p.Status, &p.Capacity, &p.CreatedAt, &p.UpdatedAt, &p.StudentIDs, &p.CourseIDs)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetByID retrieves a promotion with its membership sets.
func (r *PromotionRepository) GetByID(ctx context.Context, id int) (*model.Promotion, error) {
	p, err := scanPromotion(r.pool.QueryRow(ctx,
		`SELECT `+promotionColumns+` FROM promotions p WHERE p.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPromotionNotFound
	}
	return p, err
}

// List retrieves all promotions ordered by code.
func (r *PromotionRepository) List(ctx context.Context) ([]model.Promotion, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+promotionColumns+` FROM promotions p ORDER BY p.code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var promotions []model.Promotion
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, err
		}
		promotions = append(promotions, *p)
	}
	return promotions, rows.Err()
}

// ListActive retrieves the promotions the attendance rule engine scans.
func (r *PromotionRepository) ListActive(ctx context.Context) ([]model.Promotion, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+promotionColumns+` FROM promotions p WHERE p.status = 'active' ORDER BY p.code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var promotions []model.Promotion
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, err
		}
		promotions = append(promotions, *p)
	}
	return promotions, rows.Err()
}

// Create inserts a new promotion. The code's unique constraint surfaces as a
// pgconn 23505 error for the handler to map.
func (r *PromotionRepository) Create(ctx context.Context, p *model.Promotion) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO promotions (name, code, start_year, end_year, coordinator_id, status, capacity)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		p.Name, p.Code, p.StartYear, p.EndYear, p.CoordinatorID, p.Status, p.Capacity,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// Update modifies a promotion's scalar fields.
func (r *PromotionRepository) Update(ctx context.Context, p *model.Promotion) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE promotions
		 SET name = $1, code = $2, start_year = $3, end_year = $4, coordinator_id = $5,
		     status = $6, capacity = $7, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $8`,
		p.Name, p.Code, p.StartYear, p.EndYear, p.CoordinatorID, p.Status, p.Capacity, p.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPromotionNotFound
	}
	return nil
}

// AddStudent enrolls a student. Returns false when the student was already
// enrolled. The capacity guard runs in the same statement as the insert so a
// full promotion never over-enrolls; the caller distinguishes the two cases
// by re-reading the promotion.
func (r *PromotionRepository) AddStudent(ctx context.Context, promotionID, studentID, capacity int) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO promotion_students (promotion_id, student_id)
		 SELECT $1, $2
		 WHERE (SELECT COUNT(*) FROM promotion_students WHERE promotion_id = $1) < $3
		 ON CONFLICT DO NOTHING`,
		promotionID, studentID, capacity)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// RemoveStudent withdraws a student. Returns false when the student was not
// enrolled.
func (r *PromotionRepository) RemoveStudent(ctx context.Context, promotionID, studentID int) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM promotion_students WHERE promotion_id = $1 AND student_id = $2`,
		promotionID, studentID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// AddCourse attaches a course. Returns false on duplicate.
func (r *PromotionRepository) AddCourse(ctx context.Context, promotionID, courseID int) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO promotion_courses (promotion_id, course_id)
		 VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		promotionID, courseID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// RemoveCourse detaches a course. Returns false when it was not attached.
func (r *PromotionRepository) RemoveCourse(ctx context.Context, promotionID, courseID int) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM promotion_courses WHERE promotion_id = $1 AND course_id = $2`,
		promotionID, courseID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
