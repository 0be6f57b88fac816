package common

import (
	"testing"
	"time"
)

func TestIntArg(t *testing.T) {
	tests := []struct {
		name    string
		args    map[string]interface{}
		want    int
		wantErr bool
	}{
		{name: "missing uses default", args: map[string]interface{}{}, want: 7},
		{name: "json number", args: map[string]interface{}{"n": float64(3)}, want: 3},
		{name: "int", args: map[string]interface{}{"n": 5}, want: 5},
		{name: "fraction", args: map[string]interface{}{"n": 1.5}, wantErr: true},
		{name: "string", args: map[string]interface{}{"n": "3"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IntArg(tt.args, "n", 7)
			if (err != nil) != tt.wantErr {
				t.Fatalf("IntArg() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("IntArg() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBoolAndStringArg(t *testing.T) {
	args := map[string]interface{}{"flag": false, "name": "  Ada  ", "other": 1}

	if BoolArg(args, "flag", true) {
		t.Error("BoolArg() should return the provided false")
	}
	if !BoolArg(args, "missing", true) {
		t.Error("BoolArg() should fall back to the default")
	}
	if got := StringArg(args, "name"); got != "Ada" {
		t.Errorf("StringArg() = %q, want %q", got, "Ada")
	}
	if got := StringArg(args, "other"); got != "" {
		t.Errorf("StringArg() on a number = %q, want empty", got)
	}
}

func TestSlotsArg(t *testing.T) {
	start := time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC)

	t.Run("array", func(t *testing.T) {
		args := map[string]interface{}{"slots": []interface{}{
			map[string]interface{}{"start": "2025-03-11T09:00:00Z", "end": "2025-03-11T10:00:00Z"},
		}}
		got, err := SlotsArg(args, "slots")
		if err != nil {
			t.Fatalf("SlotsArg() error = %v", err)
		}
		if len(got) != 1 || !got[0].Start.Equal(start) || !got[0].End.Equal(start.Add(time.Hour)) {
			t.Errorf("SlotsArg() = %v", got)
		}
	})

	t.Run("json string", func(t *testing.T) {
		args := map[string]interface{}{"slots": `[{"start":"2025-03-11T09:00:00Z","end":"2025-03-11T10:00:00Z"}]`}
		got, err := SlotsArg(args, "slots")
		if err != nil {
			t.Fatalf("SlotsArg() error = %v", err)
		}
		if len(got) != 1 {
			t.Errorf("SlotsArg() returned %d slots, want 1", len(got))
		}
	})

	errorCases := map[string]map[string]interface{}{
		"missing":      {},
		"not an array": {"slots": map[string]interface{}{"start": "x"}},
		"bad time":     {"slots": `[{"start":"tomorrow","end":"2025-03-11T10:00:00Z"}]`},
		"end before start": {"slots": []interface{}{
			map[string]interface{}{"start": "2025-03-11T10:00:00Z", "end": "2025-03-11T09:00:00Z"},
		}},
	}
	for name, args := range errorCases {
		t.Run(name, func(t *testing.T) {
			if _, err := SlotsArg(args, "slots"); err == nil {
				t.Error("SlotsArg() expected an error")
			}
		})
	}
}
