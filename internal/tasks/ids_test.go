package tasks

import (
	"strings"
	"testing"
)

func TestNewJobID_Shape(t *testing.T) {
	id := NewJobID("Ship the quarterly report")
	if !strings.HasPrefix(id, "LT-SHIP-THE") {
		t.Errorf("job id = %q, want an LT-prefixed slug", id)
	}
	parts := strings.Split(id, "-")
	suffix := parts[len(parts)-1]
	if len(suffix) != 4 {
		t.Errorf("suffix %q, want 4 characters", suffix)
	}
	if suffix != strings.ToUpper(suffix) {
		t.Errorf("suffix %q is not uppercase", suffix)
	}
}

func TestNewJobID_Unique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewJobID("Same title")
		if seen[id] {
			t.Fatalf("duplicate job id %q", id)
		}
		seen[id] = true
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Ship report", "SHIP-REPORT"},
		{"  spaces   everywhere  ", "SPACES-EVERYWHERE"},
		{"Résumé für Zoë", "RESUME-FUR-ZOE"},
		{"fix: crash (#42)", "FIX-CRASH-42"},
		{"a very long title that keeps going and going", "A-VERY-LONG"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		if got := slugify(tt.title); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestNewJobID_EmptySlugFallsBack(t *testing.T) {
	id := NewJobID("!!!")
	if !strings.HasPrefix(id, "LT-TASK-") {
		t.Errorf("job id = %q, want the TASK fallback slug", id)
	}
}
