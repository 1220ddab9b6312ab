// Package pixconv reduces native bitmaps to one of the canonical pixel
// formats of package pixbuf.
//
// Classify inspects the palette or the pixels of a bitmap and picks the
// narrowest format that loses nothing: Gray8 when every color is achromatic
// and opaque, RGBA32 when some transparency exists, RGB24 otherwise. Convert
// then walks the native scanlines and produces a tightly packed buffer in
// that format.
//
// Inputs breaking the contract (empty bitmaps, unknown layouts, a format the
// layout cannot produce) are programming errors and panic. Building with the
// pixconv_debug tag also checks every pixel written as gray really is gray.
package pixconv

import (
	"fmt"
	"image/color"

	"osimage/native"
	"osimage/palette"
	"osimage/pixbuf"
)

// Source is the view of a native bitmap the classifier and converter need.
type Source interface {
	Width() int
	Height() int
	Layout() native.Layout
	Palette() []color.NRGBA
	LockBits(mode native.LockMode) (*native.BitmapData, error)
}

// Classify picks the canonical format for src. The result only depends on the
// palette and pixel content.
func Classify(src Source) pixbuf.Format {
	switch l := src.Layout(); l {
	case native.Indexed1, native.Indexed4, native.Indexed8:
		return classifyPalette(src.Palette())
	case native.RGB24, native.RGB32:
		if isGray(src) {
			return pixbuf.Gray8
		}
		return pixbuf.RGB24
	case native.ARGB32:
		// transparency is never given up for grayness
		if hasAlpha(src) {
			return pixbuf.RGBA32
		}
		if isGray(src) {
			return pixbuf.Gray8
		}
		return pixbuf.RGB24
	default:
		panic(fmt.Sprintf("pixconv: unsupported layout %s", l))
	}
}

func classifyPalette(pal palette.Palette) pixbuf.Format {
	switch {
	case pal.IsGray():
		return pixbuf.Gray8
	case pal.HasAlpha():
		return pixbuf.RGBA32
	}
	return pixbuf.RGB24
}

func isGray(src Source) bool {
	return all(src, func(p []byte) bool {
		return p[0] == p[1] && p[0] == p[2]
	})
}

func hasAlpha(src Source) bool {
	return !all(src, func(p []byte) bool {
		return p[3] == 0xFF
	})
}

// all reports whether fn holds for every pixel of a direct layout bitmap,
// stopping at the first one it does not.
func all(src Source, fn func(p []byte) bool) bool {
	data := lock(src, native.LockRead)
	defer data.Unlock()

	bpp := data.Layout.BytesPerPixel()
	pad := data.Stride - data.Width*bpp
	s := 0
	for y := 0; y < data.Height; y++ {
		for x := 0; x < data.Width; x++ {
			if !fn(data.Scan0[s : s+bpp]) {
				return false
			}
			s += bpp
		}
		s += pad
	}
	return true
}

func lock(src Source, mode native.LockMode) *native.BitmapData {
	data, err := src.LockBits(mode)
	if err != nil {
		panic(fmt.Sprintf("pixconv: could not lock bitmap: %v", err))
	}
	return data
}

// Info classifies src and, when pixels is set, converts it as well.
func Info(src Source, pixels bool) (pixbuf.Format, *pixbuf.Buffer) {
	f := Classify(src)
	if !pixels {
		return f, nil
	}
	return f, Convert(src, f)
}
