package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestInfoWritesFlatJSONLine(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	Info("resume.uploaded", map[string]any{
		"document_id": "doc-1",
		"parts":       3,
		"error":       errors.New("boom"),
	})

	var payload map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &payload); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if payload["msg"] != "resume.uploaded" || payload["level"] != "info" {
		t.Fatalf("unexpected header fields: %v", payload)
	}
	if payload["document_id"] != "doc-1" || payload["parts"] != float64(3) || payload["error"] != "boom" {
		t.Fatalf("unexpected fields: %v", payload)
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("missing ts")
	}
}
