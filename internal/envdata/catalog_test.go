package envdata

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/greenloop-ai/ecoscan/internal/model"
)

type failingSource struct{}

func (failingSource) Load() (map[string]model.EnvironmentalFact, error) {
	return nil, errors.New("boom")
}

type staticSource map[string]model.EnvironmentalFact

func (s staticSource) Load() (map[string]model.EnvironmentalFact, error) {
	return s, nil
}

func TestDefaultCoversRequiredItems(t *testing.T) {
	facts := Default()
	for _, key := range []string{"plastic_bottle", "aluminum_can", "food_waste", "paper", "glass_bottle"} {
		if _, ok := facts[key]; !ok {
			t.Errorf("default catalog missing %q", key)
		}
	}
}

func TestNewFallsBackOnError(t *testing.T) {
	c := New(failingSource{}, nil)
	if c.Len() != len(Default()) {
		t.Fatalf("expected default catalog size %d, got %d", len(Default()), c.Len())
	}
	if _, ok := c.Lookup("plastic_bottle"); !ok {
		t.Error("expected plastic_bottle in fallback catalog")
	}
}

func TestNewNormalizesSourceKeys(t *testing.T) {
	c := New(staticSource{"Tin Can": {CO2Footprint: 1.5}}, nil)
	f, ok := c.Lookup("tin_can")
	if !ok {
		t.Fatal("expected tin_can to be present")
	}
	if f.CO2Footprint != 1.5 {
		t.Errorf("CO2Footprint = %v, want 1.5", f.CO2Footprint)
	}
}

func TestLookupUnknown(t *testing.T) {
	c := New(nil, nil)
	f, ok := c.Lookup("warp_core")
	if ok {
		t.Fatal("expected miss for unknown item")
	}
	if !f.Empty() {
		t.Errorf("expected empty fact for miss, got %+v", f)
	}
}

func TestNormalizeKey(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Plastic Bottle", "plastic_bottle"},
		{"  Glass Bottle ", "glass_bottle"},
		{"paper", "paper"},
		{"ALUMINUM CAN", "aluminum_can"},
	}
	for _, tc := range cases {
		if got := NormalizeKey(tc.in); got != tc.want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	data := []byte("steel_can:\n  co2_footprint: 2.8\n  recycling_rate: 0.7\n  recycled_uses: [\"rebar\", \"cans\"]\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	facts, err := FileSource{Path: path}.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f, ok := facts["steel_can"]
	if !ok {
		t.Fatal("expected steel_can entry")
	}
	if f.CO2Footprint != 2.8 || f.RecyclingRate != 0.7 || len(f.RecycledUses) != 2 {
		t.Errorf("unexpected fact: %+v", f)
	}
}

func TestFileSourceMissing(t *testing.T) {
	if _, err := (FileSource{Path: "does/not/exist.yaml"}).Load(); err == nil {
		t.Fatal("expected error for missing file")
	}
}
