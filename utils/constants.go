// File: utils/constants.go
package utils

import "time"

// ReadinessKeyPrefix is the prefix used for Redis readiness state keys.
const ReadinessKeyPrefix = "readiness:"

// NotifyDedupeKeyPrefix is the prefix for notification idempotency keys.
const NotifyDedupeKeyPrefix = "notified:"

// NotifyDedupeTTL is the time-to-live for notification idempotency keys.
const NotifyDedupeTTL = 24 * time.Hour

// DateLayout is the canonical calendar-date format used across the engine.
const DateLayout = "2006-01-02"
