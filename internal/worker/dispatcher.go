package worker

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/config"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/model"
)

// Dispatcher hands alerts off for delivery. Actual delivery (mail, push) is
// an external consumer's job; implementations here only queue or log.
type Dispatcher interface {
	Dispatch(ctx context.Context, alert model.Alert) error
}

// RedisDispatcher pushes alerts as JSON onto a Redis list consumed by the
// delivery worker. With a non-zero dedup TTL it suppresses re-notification
// for the same alert key until the TTL lapses; at zero every engine run
// re-notifies still-failing conditions.
type RedisDispatcher struct {
	rdb      *redis.Client
	dedupTTL time.Duration
	log      zerolog.Logger
}

// NewRedisDispatcher creates a RedisDispatcher.
func NewRedisDispatcher(rdb *redis.Client, dedupTTL time.Duration, log zerolog.Logger) *RedisDispatcher {
	return &RedisDispatcher{
		rdb:      rdb,
		dedupTTL: dedupTTL,
		log:      log.With().Str("component", "dispatcher").Logger(),
	}
}

// Dispatch queues one alert.
func (d *RedisDispatcher) Dispatch(ctx context.Context, alert model.Alert) error {
	if d.dedupTTL > 0 {
		ref := ""
		if alert.EventID != nil {
			ref = alert.EventID.String()
		}
		key := config.CacheKey.AlertSeenKey(string(alert.Type), alert.PromotionID, alert.StudentID, ref)
		set, err := d.rdb.SetNX(ctx, key, strconv.FormatInt(alert.DetectedAt.Unix(), 10), d.dedupTTL).Result()
		if err != nil {
			d.log.Warn().Err(err).Msg("alert dedup check failed, dispatching anyway")
		} else if !set {
			d.log.Debug().
				Str("type", string(alert.Type)).
				Int("student_id", alert.StudentID).
				Msg("alert suppressed by dedup window")
			return nil
		}
	}

	raw, err := json.Marshal(alert)
	if err != nil {
		return err
	}
	if err := d.rdb.LPush(ctx, config.CacheKey.NotificationQueue(), raw).Err(); err != nil {
		return err
	}

	d.log.Info().
		Str("type", string(alert.Type)).
		Str("severity", string(alert.Severity)).
		Int("promotion_id", alert.PromotionID).
		Int("student_id", alert.StudentID).
		Msg("alert queued")
	return nil
}

// LogDispatcher only logs alerts. Used when Redis is unavailable or in tests.
type LogDispatcher struct {
	log zerolog.Logger
}

// NewLogDispatcher creates a LogDispatcher.
func NewLogDispatcher(log zerolog.Logger) *LogDispatcher {
	return &LogDispatcher{log: log.With().Str("component", "dispatcher").Logger()}
}

// Dispatch logs one alert.
func (d *LogDispatcher) Dispatch(_ context.Context, alert model.Alert) error {
	d.log.Info().
		Str("type", string(alert.Type)).
		Str("severity", string(alert.Severity)).
		Int("promotion_id", alert.PromotionID).
		Int("student_id", alert.StudentID).
		Str("message", alert.Message).
		Msg("alert")
	return nil
}
