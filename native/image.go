package native

import (
	"image"
	"image/color"

	"osimage/palette"
	"osimage/pixbuf"
)

// FromImage copies a decoded image into a new bitmap, picking the layout a
// platform decoder would: paletted images stay indexed, gray images become
// 8bpp indexed with a gray ramp, opaque images become RGB24 and everything
// else ARGB32.
func FromImage(img image.Image) *Bitmap {
	switch src := img.(type) {
	case *image.Paletted:
		return fromPaletted(src)
	case *image.Gray:
		return fromGray(src)
	}

	layout := ARGB32
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		layout = RGB24
	}
	return fromDirect(img, layout)
}

func fromDirect(img image.Image, layout Layout) *Bitmap {
	r := img.Bounds()
	b := New(r.Dx(), r.Dy(), layout)
	bpp := layout.BytesPerPixel()
	pix := b.frames[0].pix
	for y := 0; y < b.height; y++ {
		row := pix[y*b.stride:]
		for x := 0; x < b.width; x++ {
			c := color.NRGBAModel.Convert(img.At(r.Min.X+x, r.Min.Y+y)).(color.NRGBA)
			p := row[x*bpp:]
			p[0], p[1], p[2] = c.B, c.G, c.R
			if layout == ARGB32 {
				p[3] = c.A
			}
		}
	}
	return b
}

func fromPaletted(src *image.Paletted) *Bitmap {
	r := src.Bounds()
	layout := IndexedFor(len(src.Palette))
	b := New(r.Dx(), r.Dy(), layout)
	b.frames[0].palette = palette.FromColors(src.Palette)

	bits := layout.Bits()
	pix := b.frames[0].pix
	for y := 0; y < b.height; y++ {
		row := pix[y*b.stride:]
		srow := src.Pix[src.PixOffset(r.Min.X, r.Min.Y+y):]
		for x := 0; x < b.width; x++ {
			setIndex(row, x, bits, srow[x])
		}
	}
	return b
}

func fromGray(src *image.Gray) *Bitmap {
	r := src.Bounds()
	b := New(r.Dx(), r.Dy(), Indexed8)
	b.frames[0].palette = palette.Gray(256)

	pix := b.frames[0].pix
	for y := 0; y < b.height; y++ {
		copy(pix[y*b.stride:y*b.stride+b.width], src.Pix[src.PixOffset(r.Min.X, r.Min.Y+y):])
	}
	return b
}

// FromPixels creates a bitmap from a canonical pixel buffer: Gray8 becomes
// 8bpp indexed with a gray palette, RGB24 becomes RGB24 and RGBA32 ARGB32.
func FromPixels(buf *pixbuf.Buffer) *Bitmap {
	var b *Bitmap
	w, h, src, stride := buf.Width(), buf.Height(), buf.Bytes(), buf.RowStride()

	switch buf.Format() {
	case pixbuf.Gray8:
		b = New(w, h, Indexed8)
		b.frames[0].palette = palette.Gray(256)
		for y := 0; y < h; y++ {
			copy(b.frames[0].pix[y*b.stride:], src[y*stride:(y+1)*stride])
		}
	case pixbuf.RGB24:
		b = New(w, h, RGB24)
		for y := 0; y < h; y++ {
			dest, s := b.frames[0].pix[y*b.stride:], src[y*stride:]
			for x := 0; x < w; x++ {
				dest[0], dest[1], dest[2] = s[2], s[1], s[0]
				dest, s = dest[3:], s[3:]
			}
		}
	case pixbuf.RGBA32:
		b = New(w, h, ARGB32)
		for y := 0; y < h; y++ {
			dest, s := b.frames[0].pix[y*b.stride:], src[y*stride:]
			for x := 0; x < w; x++ {
				dest[0], dest[1], dest[2], dest[3] = s[2], s[1], s[0], s[3]
				dest, s = dest[4:], s[4:]
			}
		}
	default:
		panic("native: unsupported pixel format " + buf.Format().String())
	}

	return b
}

// Image returns the active frame as a standard library image sharing no
// memory with the bitmap.
func (b *Bitmap) Image() image.Image {
	f := b.frames[b.active]
	r := image.Rect(0, 0, b.width, b.height)

	if b.layout.Indexed() {
		pal := make(color.Palette, len(f.palette))
		for i, c := range f.palette {
			pal[i] = c
		}
		img := image.NewPaletted(r, pal)
		bits := b.layout.Bits()
		for y := 0; y < b.height; y++ {
			row := f.pix[y*b.stride:]
			for x := 0; x < b.width; x++ {
				img.Pix[y*img.Stride+x] = getIndex(row, x, bits)
			}
		}
		return img
	}

	img := image.NewNRGBA(r)
	bpp := b.layout.BytesPerPixel()
	for y := 0; y < b.height; y++ {
		row, dest := f.pix[y*b.stride:], img.Pix[y*img.Stride:]
		for x := 0; x < b.width; x++ {
			p := row[x*bpp:]
			dest[0], dest[1], dest[2], dest[3] = p[2], p[1], p[0], 0xFF
			if b.layout == ARGB32 {
				dest[3] = p[3]
			}
			dest = dest[4:]
		}
	}
	return img
}
