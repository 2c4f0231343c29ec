package style

import (
	"path/filepath"
	"testing"
)

func TestLookupDefaultOnMiss(t *testing.T) {
	def := Default()

	for _, id := range []string{"", "no-such-preset"} {
		got := Lookup(id)
		if got.ID != def.ID {
			t.Errorf("Lookup(%q): expected default %q, got %q", id, def.ID, got.ID)
		}
	}

	if got := Lookup("ocean"); got.ID != "ocean" {
		t.Errorf("Lookup(ocean): got %q", got.ID)
	}
}

func TestCatalogRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "styles.yaml")

	in := []Preset{
		{ID: "custom", Name: "Custom", BaseHue: 45, HueCycle: 30, OverlayStrength: 0.5},
	}
	if err := SaveCatalog(in, path); err != nil {
		t.Fatalf("SaveCatalog failed: %v", err)
	}

	out, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}
	if len(out) != 1 || out[0] != in[0] {
		t.Errorf("Round trip mismatch: %+v", out)
	}
}

func TestLoadCatalogClamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "styles.yaml")

	in := []Preset{
		{ID: "wild", BaseHue: 725, HueCycle: -10, OverlayStrength: 1.8},
	}
	if err := SaveCatalog(in, path); err != nil {
		t.Fatalf("SaveCatalog failed: %v", err)
	}

	out, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}

	p := out[0]
	if p.BaseHue != 5 {
		t.Errorf("BaseHue: expected wrap to 5, got %f", p.BaseHue)
	}
	if p.HueCycle != 0 {
		t.Errorf("HueCycle: expected clamp to 0, got %f", p.HueCycle)
	}
	if p.OverlayStrength != 1 {
		t.Errorf("OverlayStrength: expected clamp to 1, got %f", p.OverlayStrength)
	}
}

func TestLoadCatalogEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "styles.yaml")
	if err := SaveCatalog(nil, path); err != nil {
		t.Fatalf("SaveCatalog failed: %v", err)
	}
	if _, err := LoadCatalog(path); err == nil {
		t.Error("Expected error for empty catalog")
	}
}
