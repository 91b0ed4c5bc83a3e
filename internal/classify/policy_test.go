package classify

import (
	"testing"

	"github.com/greenloop-ai/ecoscan/internal/model"
)

func TestThresholdFor(t *testing.T) {
	p := DefaultPolicy()
	tests := []struct {
		category string
		want     float64
	}{
		{"recycle", 0.7},
		{"compost", 0.8},
		{"landfill", 0.6},
		{"hazardous", 0.9},
		{"trash", 0.6}, // legacy alias of landfill
		{"mixed", defaultThreshold},
		{"", defaultThreshold},
	}
	for _, tt := range tests {
		if got := p.ThresholdFor(tt.category); got != tt.want {
			t.Errorf("ThresholdFor(%q) = %v, want %v", tt.category, got, tt.want)
		}
	}
}

func TestFilterBoundaryInclusive(t *testing.T) {
	p := DefaultPolicy()
	in := []model.RawDetection{
		{Label: "a", Category: "recycle", Confidence: 0.7},
		{Label: "b", Category: "recycle", Confidence: 0.6999},
	}
	out := p.Filter(in, 0)
	if len(out) != 1 || out[0].Label != "a" {
		t.Fatalf("want only the at-threshold detection, got %v", out)
	}
}

func TestFilterStableOrder(t *testing.T) {
	p := DefaultPolicy()
	in := []model.RawDetection{
		{Label: "first", Category: "landfill", Confidence: 0.65},
		{Label: "dropped", Category: "hazardous", Confidence: 0.2},
		{Label: "second", Category: "recycle", Confidence: 0.99},
		{Label: "third", Category: "compost", Confidence: 0.8},
	}
	out := p.Filter(in, 0)
	want := []string{"first", "second", "third"}
	if len(out) != len(want) {
		t.Fatalf("got %d survivors, want %d", len(out), len(want))
	}
	for i, d := range out {
		if d.Label != want[i] {
			t.Errorf("survivor %d = %q, want %q", i, d.Label, want[i])
		}
	}
}

func TestFilterFloorStricterOfTwo(t *testing.T) {
	p := DefaultPolicy()
	in := []model.RawDetection{
		{Label: "a", Category: "landfill", Confidence: 0.65}, // above category, below floor
		{Label: "b", Category: "hazardous", Confidence: 0.85},
	}

	out := p.Filter(in, 0.8)
	if len(out) != 0 {
		t.Fatalf("floor 0.8 and hazardous 0.9 should drop both, got %v", out)
	}

	// A floor looser than the category threshold changes nothing.
	out = p.Filter(in, 0.1)
	if len(out) != 1 || out[0].Label != "a" {
		t.Fatalf("loose floor: got %v, want only a", out)
	}
}

func TestFilterEmptyInput(t *testing.T) {
	out := DefaultPolicy().Filter(nil, 0)
	if len(out) != 0 {
		t.Fatalf("got %v, want empty", out)
	}
}
