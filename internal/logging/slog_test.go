package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_DebugLevel(t *testing.T) {
	var buf bytes.Buffer

	New(&buf, false).Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug record written at info level: %s", buf.String())
	}

	New(&buf, true).Debug("shown", RequestID("req-1"))
	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if record[KeyRequestID] != "req-1" {
		t.Errorf("request_id = %v, want req-1", record[KeyRequestID])
	}
}

func TestAttrs(t *testing.T) {
	tests := []struct {
		name      string
		attr      slog.Attr
		wantKey   string
		wantValue string
	}{
		{name: "service", attr: Service("gmail"), wantKey: KeyService, wantValue: "gmail"},
		{name: "account", attr: Account("work"), wantKey: KeyAccount, wantValue: "work"},
		{name: "tool", attr: Tool("get_free_slots"), wantKey: KeyTool, wantValue: "get_free_slots"},
		{name: "status", attr: Status(StatusSuccess), wantKey: KeyStatus, wantValue: "success"},
		{name: "request id", attr: RequestID("abc"), wantKey: KeyRequestID, wantValue: "abc"},
		{name: "slot index", attr: SlotIndex(3), wantKey: KeySlotIndex, wantValue: "3"},
		{name: "slots", attr: Slots(10), wantKey: KeySlots, wantValue: "10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.attr.Key != tt.wantKey {
				t.Errorf("key = %q, want %q", tt.attr.Key, tt.wantKey)
			}
			if tt.attr.Value.String() != tt.wantValue {
				t.Errorf("value = %q, want %q", tt.attr.Value.String(), tt.wantValue)
			}
		})
	}
}

func TestErr(t *testing.T) {
	attr := Err(errors.New("boom"))
	if attr.Key != KeyError || attr.Value.String() != "boom" {
		t.Errorf("Err = %v, want error=boom", attr)
	}

	var buf bytes.Buffer
	New(&buf, false).Info("ok", Err(nil))
	if strings.Contains(buf.String(), KeyError) {
		t.Errorf("nil error should be omitted: %s", buf.String())
	}
}

func TestAnonymizeEmail(t *testing.T) {
	if got := AnonymizeEmail(""); got != "" {
		t.Errorf("AnonymizeEmail(\"\") = %q, want empty", got)
	}

	a := AnonymizeEmail("Alice@Example.com")
	b := AnonymizeEmail(" alice@example.com ")
	if a != b {
		t.Errorf("hash should ignore case and whitespace: %q != %q", a, b)
	}
	if !strings.HasPrefix(a, "user:") || len(a) != len("user:")+16 {
		t.Errorf("unexpected hash format %q", a)
	}
	if strings.Contains(a, "alice") {
		t.Errorf("hash leaks the address: %q", a)
	}
	if a == AnonymizeEmail("bob@example.com") {
		t.Error("different addresses should hash differently")
	}
}

func TestUserHash(t *testing.T) {
	attr := UserHash("alice@example.com")
	if attr.Key != KeyUserHash {
		t.Errorf("key = %q, want %q", attr.Key, KeyUserHash)
	}
	if attr.Value.String() != AnonymizeEmail("alice@example.com") {
		t.Errorf("value = %q", attr.Value.String())
	}
}

func TestSanitizeToken(t *testing.T) {
	if got := SanitizeToken(""); got != "<empty>" {
		t.Errorf("SanitizeToken(\"\") = %q", got)
	}
	if got := SanitizeToken("ya29.secret"); got != "[token:11 chars]" {
		t.Errorf("SanitizeToken = %q", got)
	}
}

func TestWithHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false)

	WithAccount(WithService(WithTool(logger, "get_contacts"), "people"), "default").Info("done")

	out := buf.String()
	for _, want := range []string{`"tool":"get_contacts"`, `"service":"people"`, `"account":"default"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output %s missing %s", out, want)
		}
	}
}
