package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/model"
)

// ErrScheduleNotFound means the user has no schedule configured. Availability
// requests fail on this instead of assuming the user is always free.
var ErrScheduleNotFound = errors.New("no schedule configured for user")

// ScheduleRepository handles user schedule definitions. Working blocks and
// blocked periods are stored as JSONB documents; they are read and written
// whole, never queried into.
type ScheduleRepository struct {
	pool *pgxpool.Pool
}

// NewScheduleRepository creates a new ScheduleRepository.
func NewScheduleRepository(pool *pgxpool.Pool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

// GetByUser retrieves a user's schedule definition.
func (r *ScheduleRepository) GetByUser(ctx context.Context, userID int) (*model.UserSchedule, error) {
	s := &model.UserSchedule{UserID: userID}
	var working, blocked []byte
	err := r.pool.QueryRow(ctx,
		`SELECT working_blocks, blocked_periods, updated_at
		 FROM user_schedules WHERE user_id = $1`, userID,
	).Scan(&working, &blocked, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrScheduleNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(working, &s.WorkingBlocks); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(blocked, &s.BlockedPeriods); err != nil {
		return nil, err
	}
	return s, nil
}

// Upsert stores a user's schedule definition, replacing any previous one.
func (r *ScheduleRepository) Upsert(ctx context.Context, s *model.UserSchedule) error {
	working, err := json.Marshal(s.WorkingBlocks)
	if err != nil {
		return err
	}
	blocked, err := json.Marshal(s.BlockedPeriods)
	if err != nil {
		return err
	}

	return r.pool.QueryRow(ctx,
		`INSERT INTO user_schedules (user_id, working_blocks, blocked_periods)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE
		 SET working_blocks = EXCLUDED.working_blocks,
		     blocked_periods = EXCLUDED.blocked_periods,
		     updated_at = CURRENT_TIMESTAMP
		 RETURNING updated_at`,
		s.UserID, working, blocked,
	).Scan(&s.UpdatedAt)
}
