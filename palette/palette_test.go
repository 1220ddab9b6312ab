package palette

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func TestAnalysis(t *testing.T) {
	cases := []struct {
		name  string
		pal   Palette
		gray  bool
		alpha bool
	}{
		{"ramp", Gray(16), true, false},
		{"vga", vga16, false, false},
		{"gray with hole", Palette{{0, 0, 0, 0xFF}, {0x80, 0x80, 0x80, 0}}, false, true},
		{"color with hole", Palette{{1, 2, 3, 0xFF}, {4, 5, 6, 0x7F}}, false, true},
		{"web", webSafe(), false, true},
		{"empty", Palette{}, true, false},
	}

	for _, tc := range cases {
		if g := tc.pal.IsGray(); g != tc.gray {
			t.Fatalf("%s: gray expected(%v) != actual(%v)", tc.name, tc.gray, g)
		}
		if a := tc.pal.HasAlpha(); a != tc.alpha {
			t.Fatalf("%s: alpha expected(%v) != actual(%v)", tc.name, tc.alpha, a)
		}
	}
}

func TestGrayRamp(t *testing.T) {
	pal := Gray(256)
	for i, c := range pal {
		if int(c.R) != i {
			t.Fatalf("%d: expected(%d) != actual(%d)", i, i, c.R)
		}
	}

	bw := Gray(2)
	if bw[0].R != 0 || bw[1].R != 0xFF {
		t.Fatalf("unexpected bw palette %v", bw)
	}
}

func TestColorsRoundTrip(t *testing.T) {
	src := color.Palette{color.Gray{Y: 7}, color.NRGBA{1, 2, 3, 4}}
	pal := FromColors(src)
	if pal[0] != (color.NRGBA{7, 7, 7, 0xFF}) {
		t.Fatalf("unexpected entry %v", pal[0])
	}
	if pal[1] != (color.NRGBA{1, 2, 3, 4}) {
		t.Fatalf("unexpected entry %v", pal[1])
	}
	if len(pal.Colors()) != 2 {
		t.Fatal("expected 2 colors")
	}
}

func TestRIFF(t *testing.T) {
	var buf bytes.Buffer
	if _, err := WriteRIFF(&buf, vga16); err != nil {
		t.Fatal(err)
	}

	pal, err := ReadRIFF(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if len(pal) != len(vga16) {
		t.Fatalf("expected(%d) != actual(%d)", len(vga16), len(pal))
	}
	for i := range pal {
		if pal[i] != vga16[i] {
			t.Fatalf("%d: expected(%v) != actual(%v)", i, vga16[i], pal[i])
		}
	}

	if _, err := ReadRIFF(bytes.NewReader([]byte("RIFF\x04\x00\x00\x00WAVE"))); err == nil {
		t.Fatal("expected error for non PAL stream")
	}
}

func TestLoad(t *testing.T) {
	for _, name := range []string{"bw", "gray16", "GRAY256", "vga16", "web"} {
		if _, err := Load(name); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}

	path := filepath.Join(t.TempDir(), "test.pal")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := WriteRIFF(f, Gray(4)); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	pal, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(pal) != 4 || !pal.IsGray() {
		t.Fatalf("unexpected palette %v", pal)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.pal")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
