package obs

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestFormatEntryStampsService(t *testing.T) {
	line := formatEntry(map[string]any{"msg": "request_complete", "status": 200})
	var got map[string]any
	if err := json.Unmarshal([]byte(line), &got); err != nil {
		t.Fatalf("line is not JSON: %v", err)
	}
	if got["service"] != "bonum-api" || got["msg"] != "request_complete" {
		t.Fatalf("line = %s", line)
	}
}

func TestFormatEntryKeepsExplicitService(t *testing.T) {
	line := formatEntry(map[string]any{"service": "bonum-import", "msg": "done"})
	if !strings.Contains(line, `"service":"bonum-import"`) {
		t.Fatalf("line = %s", line)
	}
}

func TestFormatEntryUnserializable(t *testing.T) {
	line := formatEntry(map[string]any{"bad": func() {}})
	var got map[string]any
	if err := json.Unmarshal([]byte(line), &got); err != nil {
		t.Fatalf("fallback line is not JSON: %v", err)
	}
	if got["level"] != "error" || got["service"] != "bonum-api" {
		t.Fatalf("line = %s", line)
	}
}
