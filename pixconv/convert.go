package pixconv

import (
	"bytes"
	"fmt"

	"osimage/native"
	"osimage/palette"
	"osimage/pixbuf"

	"github.com/32bitkid/bitreader"
)

// Convert copies the pixels of src into a new buffer of format f. The format
// is trusted: it must be one Classify could have returned for src, or at
// least one the layout can produce (direct RGB layouts cannot yield RGBA32).
func Convert(src Source, f pixbuf.Format) *pixbuf.Buffer {
	w, h := src.Width(), src.Height()
	if w <= 0 || h <= 0 {
		panic(fmt.Sprintf("pixconv: invalid dimensions %dx%d", w, h))
	}

	layout := src.Layout()
	var pal palette.Palette
	if layout.Indexed() {
		pal = src.Palette()
	}

	data := lock(src, native.LockRead)
	defer data.Unlock()

	dest := make([]byte, w*h*f.BytesPerPixel())
	switch layout {
	case native.Indexed1, native.Indexed4, native.Indexed8:
		convertIndexed(data, pal, dest, f)
	case native.RGB24, native.RGB32:
		if f == pixbuf.RGBA32 {
			panic(fmt.Sprintf("pixconv: %s cannot produce %s", layout, f))
		}
		convertDirect(data, dest, f)
	case native.ARGB32:
		convertDirect(data, dest, f)
	default:
		panic(fmt.Sprintf("pixconv: unsupported layout %s", layout))
	}
	return pixbuf.Wrap(w, h, f, dest)
}

func convertIndexed(data *native.BitmapData, pal palette.Palette, dest []byte, f pixbuf.Format) {
	bits := uint(data.Layout.Bits())
	d := 0

	for y := 0; y < data.Height; y++ {
		row := data.Scan0[y*data.Stride : (y+1)*data.Stride]
		var br bitreader.BitReader
		if bits < 8 {
			br = bitreader.NewReader(bytes.NewReader(row))
		}

		for x := 0; x < data.Width; x++ {
			var idx uint8
			if bits == 8 {
				idx = row[x]
			} else {
				var err error
				if idx, err = br.Read8(bits); err != nil {
					panic(fmt.Sprintf("pixconv: short row %d: %v", y, err))
				}
			}
			if int(idx) >= len(pal) {
				panic(fmt.Sprintf("pixconv: palette index %d out of range %d", idx, len(pal)))
			}

			c := pal[idx]
			switch f {
			case pixbuf.Gray8:
				if debug && (c.R != c.G || c.R != c.B) {
					panic(fmt.Sprintf("pixconv: palette entry %d is not gray", idx))
				}
				dest[d] = c.R
				d++
			case pixbuf.RGB24:
				dest[d], dest[d+1], dest[d+2] = c.R, c.G, c.B
				d += 3
			case pixbuf.RGBA32:
				dest[d], dest[d+1], dest[d+2], dest[d+3] = c.R, c.G, c.B, c.A
				d += 4
			}
		}
	}
}

// convertDirect handles the B,G,R[,A|X] layouts.
func convertDirect(data *native.BitmapData, dest []byte, f pixbuf.Format) {
	bpp := data.Layout.BytesPerPixel()
	pad := data.Stride - data.Width*bpp
	src := data.Scan0
	s, d := 0, 0

	switch f {
	case pixbuf.Gray8:
		for y := 0; y < data.Height; y++ {
			for x := 0; x < data.Width; x++ {
				if debug && (src[s] != src[s+1] || src[s] != src[s+2]) {
					panic(fmt.Sprintf("pixconv: pixel %d,%d is not gray", x, y))
				}
				dest[d] = src[s]
				s += bpp
				d++
			}
			s += pad
		}
	case pixbuf.RGB24:
		for y := 0; y < data.Height; y++ {
			for x := 0; x < data.Width; x++ {
				dest[d], dest[d+1], dest[d+2] = src[s+2], src[s+1], src[s]
				s += bpp
				d += 3
			}
			s += pad
		}
	case pixbuf.RGBA32:
		for y := 0; y < data.Height; y++ {
			for x := 0; x < data.Width; x++ {
				dest[d], dest[d+1], dest[d+2], dest[d+3] = src[s+2], src[s+1], src[s], src[s+3]
				s += 4
				d += 4
			}
			s += pad
		}
	}
}
