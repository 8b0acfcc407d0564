// Package ratelimit implements the sliding-window quota core that gates
// expensive AI-backed operations per user.
package ratelimit

import "errors"

// ErrPermissionDenied indicates a caller asked for another user's status.
var ErrPermissionDenied = errors.New("permission denied")

// ErrUnknownOperation indicates an operation with no configured quota.
var ErrUnknownOperation = errors.New("unknown operation")
