package util

import "fmt"

// TruncateLog truncates long strings for storage and verbose logging,
// keeping metadata payloads and log lines bounded.
func TruncateLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + fmt.Sprintf("... [truncated, %d bytes total]", len(s))
}
