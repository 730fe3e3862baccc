package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/config"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/model"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/repository"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/schedule"
)

// ErrNoSchedule mirrors the repository sentinel for handler mapping.
var ErrNoSchedule = repository.ErrScheduleNotFound

// AvailabilityService computes free slots from a user's schedule definition
// and their existing events. Schedule definitions are cached in Redis since
// they change rarely and every availability request needs one.
type AvailabilityService struct {
	scheduleRepo *repository.ScheduleRepository
	eventRepo    *repository.EventRepository
	rdb          *redis.Client
	cacheTTL     time.Duration
	log          zerolog.Logger
}

// NewAvailabilityService creates a new AvailabilityService.
func NewAvailabilityService(
	scheduleRepo *repository.ScheduleRepository,
	eventRepo *repository.EventRepository,
	rdb *redis.Client,
	cacheTTL time.Duration,
	log zerolog.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		scheduleRepo: scheduleRepo,
		eventRepo:    eventRepo,
		rdb:          rdb,
		cacheTTL:     cacheTTL,
		log:          log.With().Str("component", "availability_service").Logger(),
	}
}

// GetAvailability returns the user's free slots of the requested duration
// inside the window. Fails with ErrNoSchedule when the user has no schedule
// definition rather than assuming full availability.
func (s *AvailabilityService) GetAvailability(ctx context.Context, userID int, window schedule.Range, slotDuration time.Duration) ([]schedule.Slot, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}
	if slotDuration <= 0 {
		return nil, schedule.ErrInvalidRange
	}

	sched, err := s.getSchedule(ctx, userID)
	if err != nil {
		return nil, err
	}

	busy, err := s.eventRepo.FindBusy(ctx, userID, window.Start, window.End)
	if err != nil {
		return nil, err
	}

	return schedule.FreeSlots(*sched, busy, window, slotDuration)
}

// GetSchedule returns the user's schedule definition.
func (s *AvailabilityService) GetSchedule(ctx context.Context, userID int) (*model.UserSchedule, error) {
	return s.getSchedule(ctx, userID)
}

// UpsertSchedule stores a user's schedule definition and invalidates the
// cached copy.
func (s *AvailabilityService) UpsertSchedule(ctx context.Context, sched *model.UserSchedule) error {
	if err := s.scheduleRepo.Upsert(ctx, sched); err != nil {
		return err
	}
	if err := s.rdb.Del(ctx, config.CacheKey.UserScheduleKey(sched.UserID)).Err(); err != nil {
		// Stale cache self-heals at TTL expiry; log and move on.
		s.log.Warn().Err(err).Int("user_id", sched.UserID).Msg("schedule cache invalidation failed")
	}
	return nil
}

func (s *AvailabilityService) getSchedule(ctx context.Context, userID int) (*model.UserSchedule, error) {
	key := config.CacheKey.UserScheduleKey(userID)

	cached, err := s.rdb.Get(ctx, key).Result()
	if err == nil {
		sched := &model.UserSchedule{}
		if err := json.Unmarshal([]byte(cached), sched); err == nil {
			return sched, nil
		}
		// Corrupt cache entry: fall through to Postgres.
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Int("user_id", userID).Msg("schedule cache read failed")
	}

	sched, err := s.scheduleRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(sched); err == nil {
		if err := s.rdb.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
			s.log.Warn().Err(err).Int("user_id", userID).Msg("schedule cache write failed")
		}
	}
	return sched, nil
}
