package config

import (
	"fmt"
	"strconv"
)

// cacheKeyBuilder centralizes all Redis key construction so key formats
// live in one place.
type cacheKeyBuilder struct{}

// CacheKey is the singleton Redis key builder.
var CacheKey = cacheKeyBuilder{}

// UserScheduleKey caches a user's schedule definition for availability lookups.
func (cacheKeyBuilder) UserScheduleKey(userID int) string {
	return "yggdrasil:schedule:user:" + strconv.Itoa(userID)
}

// NotificationQueue is the outbound notification list consumed by the
// (external) delivery worker.
func (cacheKeyBuilder) NotificationQueue() string {
	return "yggdrasil:notifications:queue"
}

// AlertSeenKey marks an alert as already dispatched, used for optional
// re-notify suppression between rule engine runs.
func (cacheKeyBuilder) AlertSeenKey(alertType string, promotionID, studentID int, ref string) string {
	return fmt.Sprintf("yggdrasil:alerts:seen:%s:%d:%d:%s", alertType, promotionID, studentID, ref)
}
