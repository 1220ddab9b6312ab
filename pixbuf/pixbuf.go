package pixbuf

import (
	"fmt"
	"image"
	"image/color"
	"io"
)

type Format uint8

const (
	Gray8 Format = iota + 1
	RGB24
	RGBA32
)

// BytesPerPixel returns the packed size of a single pixel.
func (f Format) BytesPerPixel() int {
	switch f {
	case Gray8:
		return 1
	case RGB24:
		return 3
	case RGBA32:
		return 4
	}
	panic(fmt.Sprintf("pixbuf: unknown format %d", f))
}

func (f Format) String() string {
	switch f {
	case Gray8:
		return "gray8"
	case RGB24:
		return "rgb24"
	case RGBA32:
		return "rgba32"
	}
	return fmt.Sprintf("Format(%d)", uint8(f))
}

func ParseFormat(s string) (Format, error) {
	switch s {
	case "gray8", "gray":
		return Gray8, nil
	case "rgb24", "rgb":
		return RGB24, nil
	case "rgba32", "rgba":
		return RGBA32, nil
	}
	return 0, fmt.Errorf("unsupported pixel format: %q", s)
}

// Buffer is a tightly packed pixel store. The pixel at (x, y) starts at
// Bytes()[(y*Width()+x)*Format().BytesPerPixel()]. There is no row padding.
type Buffer struct {
	width  int
	height int
	format Format
	pix    []byte
}

// Wrap creates a buffer over pix, which it takes ownership of. pix must hold
// exactly width*height pixels of format f; anything else panics.
func Wrap(width, height int, f Format, pix []byte) *Buffer {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("pixbuf: invalid dimensions %dx%d", width, height))
	}
	if n := width * height * f.BytesPerPixel(); len(pix) != n {
		panic(fmt.Sprintf("pixbuf: %d bytes for a %dx%d %s buffer, want %d", len(pix), width, height, f, n))
	}

	return &Buffer{
		width:  width,
		height: height,
		format: f,
		pix:    pix,
	}
}

func (b *Buffer) Width() int     { return b.width }
func (b *Buffer) Height() int    { return b.height }
func (b *Buffer) Format() Format { return b.format }
func (b *Buffer) Len() int       { return len(b.pix) }

// Bytes returns the pixel data. Every call returns the same storage, so the
// slice must be treated as read-only.
func (b *Buffer) Bytes() []byte { return b.pix }

// RowStride is the number of bytes between vertically adjacent pixels.
func (b *Buffer) RowStride() int { return b.width * b.format.BytesPerPixel() }

// FromImage copies img into a new buffer of format f. Gray8 keeps the luma of
// each pixel, RGB24 drops alpha after un-premultiplying.
func FromImage(img image.Image, f Format) *Buffer {
	bounds := img.Bounds()
	bpp := f.BytesPerPixel()
	buf := Wrap(bounds.Dx(), bounds.Dy(), f, make([]byte, bounds.Dx()*bounds.Dy()*bpp))

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			switch f {
			case Gray8:
				buf.pix[i] = color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y
			default:
				c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
				buf.pix[i] = c.R
				buf.pix[i+1] = c.G
				buf.pix[i+2] = c.B
				if f == RGBA32 {
					buf.pix[i+3] = c.A
				}
			}
			i += bpp
		}
	}

	return buf
}

// WriteTo dumps the raw pixel bytes.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.pix)
	if err == nil && n != len(b.pix) {
		err = fmt.Errorf("wrote only %d/%d bytes", n, len(b.pix))
	}
	return int64(n), err
}
