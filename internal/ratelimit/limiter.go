package ratelimit

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/BharatBattles/edurank-glow/internal/logging"
)

const (
	// HourWindow is the trailing short window.
	HourWindow = time.Hour
	// DayWindow is the trailing long window.
	DayWindow = 24 * time.Hour
)

// Counter answers window queries over the request log: how many entries
// exist for exactly (userID, operation) after since, and the earliest such
// timestamp (nil when the window is empty). Implementations are read-only
// and surface storage errors unswallowed; the Limiter owns fail-open.
type Counter interface {
	CountSince(ctx context.Context, userID, operation string, since time.Time) (count int64, oldest *time.Time, err error)
}

// Result is the outcome of one quota evaluation. It is computed, never
// persisted.
type Result struct {
	Allowed     bool      `json:"allowed"`
	Remaining   int       `json:"remaining"`
	ResetAtHour time.Time `json:"resetAtHour"`
	ResetAtDay  time.Time `json:"resetAtDay"`
	Message     string    `json:"message,omitempty"`
}

// Limiter is the policy decision point for gated operations.
type Limiter struct {
	counter Counter
	logger  *zap.Logger
	now     func() time.Time // injectable clock
}

// NewLimiter builds a Limiter over a Counter.
func NewLimiter(counter Counter, logger *zap.Logger) *Limiter {
	return &Limiter{counter: counter, logger: logger, now: time.Now}
}

// Check decides whether userID may perform the operation in cfg right now.
//
// The hourly window is evaluated strictly before the daily one, and a
// hourly denial short-circuits the daily query. Thresholds are inclusive:
// a count equal to the limit denies the next request. Storage faults never
// block the user: the check fails open, allowing the request and saying so
// in the message. Availability is deliberately prioritized over strict
// enforcement here; do not flip this to fail-closed.
func (l *Limiter) Check(ctx context.Context, cfg Config, userID string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("rate limit evaluation panicked, allowing request",
				zap.Any("panic", r),
				zap.String("operation", cfg.Operation),
				zap.String("userId", userID),
				logging.RequestIDField(ctx))
			result = l.failOpen(cfg, fmt.Sprintf("Rate limit check failed for %s; request allowed.", cfg.Operation))
		}
	}()

	now := l.now().UTC()

	hourlyCount, hourlyOldest, err := l.counter.CountSince(ctx, userID, cfg.Operation, now.Add(-HourWindow))
	if err != nil {
		l.logger.Warn("hourly rate limit query failed, allowing request",
			zap.Error(err),
			zap.String("operation", cfg.Operation),
			zap.String("userId", userID),
			logging.RequestIDField(ctx))
		return l.failOpen(cfg, fmt.Sprintf("Rate limit check failed for %s (hourly limit %d not verified); request allowed.", cfg.Operation, cfg.LimitPerHour))
	}

	if hourlyCount >= int64(cfg.LimitPerHour) {
		return Result{
			Allowed:     false,
			Remaining:   0,
			ResetAtHour: resetAt(hourlyOldest, HourWindow, now),
			// The daily window was never queried (short-circuit), so only a
			// conservative estimate is available for it.
			ResetAtDay: now.Add(DayWindow),
			Message:    fmt.Sprintf("You have reached the limit of %d %s requests per hour. Try again later.", cfg.LimitPerHour, cfg.Operation),
		}
	}

	dailyCount, dailyOldest, err := l.counter.CountSince(ctx, userID, cfg.Operation, now.Add(-DayWindow))
	if err != nil {
		l.logger.Warn("daily rate limit query failed, allowing request",
			zap.Error(err),
			zap.String("operation", cfg.Operation),
			zap.String("userId", userID),
			logging.RequestIDField(ctx))
		return l.failOpen(cfg, fmt.Sprintf("Rate limit check failed for %s (daily limit %d not verified); request allowed.", cfg.Operation, cfg.LimitPerDay))
	}

	if dailyCount >= int64(cfg.LimitPerDay) {
		return Result{
			Allowed:     false,
			Remaining:   0,
			ResetAtHour: resetAt(hourlyOldest, HourWindow, now),
			ResetAtDay:  resetAt(dailyOldest, DayWindow, now),
			Message:     fmt.Sprintf("You have reached the limit of %d %s requests per day. Try again tomorrow.", cfg.LimitPerDay, cfg.Operation),
		}
	}

	// hourlyCount < LimitPerHour here, so Remaining cannot go negative.
	// The -1 accounts for the request about to be logged.
	return Result{
		Allowed:     true,
		Remaining:   cfg.LimitPerHour - int(hourlyCount) - 1,
		ResetAtHour: resetAt(hourlyOldest, HourWindow, now),
		ResetAtDay:  resetAt(dailyOldest, DayWindow, now),
	}
}

// failOpen is the degraded-evaluation result: allow the request, report a
// full hourly budget, and carry a message noting the check did not run.
func (l *Limiter) failOpen(cfg Config, message string) Result {
	now := l.now().UTC()
	return Result{
		Allowed:     true,
		Remaining:   cfg.LimitPerHour,
		ResetAtHour: now.Add(HourWindow),
		ResetAtDay:  now.Add(DayWindow),
		Message:     message,
	}
}

// resetAt computes when a window's oldest counted entry expires. With no
// entries the window imposes no wait, so now + window is reported.
func resetAt(oldest *time.Time, window time.Duration, now time.Time) time.Time {
	if oldest != nil {
		return oldest.Add(window)
	}
	return now.Add(window)
}
