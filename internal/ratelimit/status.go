package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Usage is a user's current standing against one operation's windows.
// Reset times come from the true oldest entry in each window
// (oldest + window), nil when the window is empty.
type Usage struct {
	RequestsThisHour int64      `json:"requestsThisHour"`
	RequestsThisDay  int64      `json:"requestsThisDay"`
	HourResetsAt     *time.Time `json:"hourResetsAt"`
	DayResetsAt      *time.Time `json:"dayResetsAt"`
}

// Status reports userID's usage for operation. Callers may only inspect
// themselves: callerID must equal userID, checked before any data access.
// Unlike Check, storage faults here are real errors; this is a read API,
// not a gate.
func (l *Limiter) Status(ctx context.Context, callerID, userID, operation string) (Usage, error) {
	if callerID != userID {
		return Usage{}, fmt.Errorf("caller %q cannot read status of user %q: %w", callerID, userID, ErrPermissionDenied)
	}

	now := l.now().UTC()

	hourCount, hourOldest, err := l.counter.CountSince(ctx, userID, operation, now.Add(-HourWindow))
	if err != nil {
		return Usage{}, fmt.Errorf("hourly usage: %w", err)
	}
	dayCount, dayOldest, err := l.counter.CountSince(ctx, userID, operation, now.Add(-DayWindow))
	if err != nil {
		return Usage{}, fmt.Errorf("daily usage: %w", err)
	}

	usage := Usage{
		RequestsThisHour: hourCount,
		RequestsThisDay:  dayCount,
	}
	if hourOldest != nil {
		t := hourOldest.Add(HourWindow)
		usage.HourResetsAt = &t
	}
	if dayOldest != nil {
		t := dayOldest.Add(DayWindow)
		usage.DayResetsAt = &t
	}
	return usage, nil
}
