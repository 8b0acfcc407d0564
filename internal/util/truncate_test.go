package util

import (
	"strings"
	"testing"
)

func TestTruncateLog_FitsWithinLimit(t *testing.T) {
	payload := `{"denied":true,"operation":"generate-notes"}`
	if got := TruncateLog(payload, 4096); got != payload {
		t.Errorf("TruncateLog() altered a payload under the limit: %q", got)
	}
	if got := TruncateLog(payload, len(payload)); got != payload {
		t.Errorf("TruncateLog() altered a payload at exactly the limit: %q", got)
	}
}

func TestTruncateLog_OversizedPayload(t *testing.T) {
	payload := `{"transcript":"` + strings.Repeat("a", 50) + `"}`
	got := TruncateLog(payload, 16)

	if !strings.HasPrefix(got, payload[:16]) {
		t.Errorf("TruncateLog() = %q, want the first 16 bytes preserved", got)
	}
	if !strings.HasSuffix(got, "[truncated, 67 bytes total]") {
		t.Errorf("TruncateLog() = %q, want a suffix reporting the original size", got)
	}
}

func TestTruncateLog_EmptyInput(t *testing.T) {
	if got := TruncateLog("", 16); got != "" {
		t.Errorf("TruncateLog(\"\") = %q, want empty", got)
	}
}
