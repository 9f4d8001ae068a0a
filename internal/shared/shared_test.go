package shared

import "testing"

func TestFormatDuration(t *testing.T) {
	tc := []struct {
		name string
		ms   int
		want string
	}{
		{name: "typical track", ms: 214000, want: "3:34"},
		{name: "zero padded seconds", ms: 125000, want: "2:05"},
		{name: "under a minute", ms: 42000, want: "0:42"},
		{name: "unknown duration", ms: 0, want: "?:??"},
		{name: "negative duration", ms: -5, want: "?:??"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDuration(tt.ms); got != tt.want {
				t.Errorf("FormatDuration(%d) = %v, want %v", tt.ms, got, tt.want)
			}
		})
	}
}

func TestGenerateState(t *testing.T) {
	first, err := GenerateState()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != 32 {
		t.Errorf("expected 32 hex characters, got %d", len(first))
	}

	second, err := GenerateState()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first == second {
		t.Error("expected distinct state tokens")
	}
}

func TestVisibilityString(t *testing.T) {
	if VisibilityString(true) != "public" {
		t.Error("expected public")
	}
	if VisibilityString(false) != "private" {
		t.Error("expected private")
	}
}
