package palette

import (
	"fmt"
	"image/color"
	"os"
	"strings"
)

// Palette is an ordered list of straight-alpha colors as found in an indexed
// bitmap. It only lives for the duration of a classification or conversion.
type Palette []color.NRGBA

func FromColors(p color.Palette) Palette {
	pal := make(Palette, len(p))
	for i, c := range p {
		pal[i] = color.NRGBAModel.Convert(c).(color.NRGBA)
	}
	return pal
}

func (p Palette) Colors() color.Palette {
	pal := make(color.Palette, len(p))
	for i, c := range p {
		pal[i] = c
	}
	return pal
}

// IsGray reports whether every entry is fully opaque and achromatic.
func (p Palette) IsGray() bool {
	for _, c := range p {
		if c.A != 0xFF {
			return false
		}
		if c.R != c.G || c.R != c.B {
			return false
		}
	}
	return true
}

// HasAlpha reports whether any entry is not fully opaque.
func (p Palette) HasAlpha() bool {
	for _, c := range p {
		if c.A != 0xFF {
			return true
		}
	}
	return false
}

// Gray returns an opaque ramp of n levels from black to white.
func Gray(n int) Palette {
	if n < 2 {
		n = 2
	}
	pal := make(Palette, n)
	for i := range pal {
		y := uint8(i * 0xFF / (n - 1))
		pal[i] = color.NRGBA{y, y, y, 0xFF}
	}
	return pal
}

var vga16 = Palette{
	{0x00, 0x00, 0x00, 0xFF},
	{0x00, 0x00, 0xAA, 0xFF},
	{0x00, 0xAA, 0x00, 0xFF},
	{0x00, 0xAA, 0xAA, 0xFF},
	{0xAA, 0x00, 0x00, 0xFF},
	{0xAA, 0x00, 0xAA, 0xFF},
	{0xAA, 0x55, 0x00, 0xFF},
	{0xAA, 0xAA, 0xAA, 0xFF},
	{0x55, 0x55, 0x55, 0xFF},
	{0x55, 0x55, 0xFF, 0xFF},
	{0x55, 0xFF, 0x55, 0xFF},
	{0x55, 0xFF, 0xFF, 0xFF},
	{0xFF, 0x55, 0x55, 0xFF},
	{0xFF, 0x55, 0xFF, 0xFF},
	{0xFF, 0xFF, 0x55, 0xFF},
	{0xFF, 0xFF, 0xFF, 0xFF},
}

func webSafe() Palette {
	pal := make(Palette, 0, 256)
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				pal = append(pal, color.NRGBA{uint8(r * 0x33), uint8(g * 0x33), uint8(b * 0x33), 0xFF})
			}
		}
	}
	// last slot is reserved for transparency
	for len(pal) < 255 {
		pal = append(pal, color.NRGBA{0, 0, 0, 0xFF})
	}
	return append(pal, color.NRGBA{})
}

// Load returns one of the built-in palettes (bw, gray16, gray256, vga16, web)
// or reads a RIFF PAL file.
func Load(name string) (Palette, error) {
	switch strings.ToLower(name) {
	case "bw":
		return Gray(2), nil
	case "gray16":
		return Gray(16), nil
	case "gray256":
		return Gray(256), nil
	case "vga16":
		return append(Palette(nil), vga16...), nil
	case "web":
		return webSafe(), nil
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("could not open palette %q: %w", name, err)
	}
	defer f.Close()

	pal, err := ReadRIFF(f)
	if err != nil {
		return nil, fmt.Errorf("could not load palette %q: %w", name, err)
	}
	if len(pal) == 0 || len(pal) > 256 {
		return nil, fmt.Errorf("palette %q has unsupported size %d", name, len(pal))
	}
	return pal, nil
}
