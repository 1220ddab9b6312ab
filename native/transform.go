package native

import (
	"fmt"
	"image"
	"image/color"

	"osimage/palette"

	"golang.org/x/image/draw"
)

// Scale resamples the active frame to width x height. The result keeps the
// source layout; indexed bitmaps are mapped back onto their own palette.
func (b *Bitmap) Scale(width, height int) *Bitmap {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("native: invalid scale size %dx%d", width, height))
	}

	src := b.Image()
	dr := image.Rect(0, 0, width, height)
	scaled := image.NewNRGBA(dr)
	draw.CatmullRom.Scale(scaled, dr, src, src.Bounds(), draw.Src, nil)

	if b.layout.Indexed() {
		dest := image.NewPaletted(dr, src.(*image.Paletted).Palette)
		draw.Draw(dest, dr, scaled, image.Point{}, draw.Src)
		out := fromPalettedAs(dest, b.layout)
		return out
	}
	return fromDirect(scaled, b.layout)
}

func fromPalettedAs(src *image.Paletted, layout Layout) *Bitmap {
	b := fromPaletted(src)
	if b.layout == layout {
		return b
	}

	// the palette fits a smaller depth than the source used, widen it back
	out := New(b.width, b.height, layout)
	out.frames[0].palette = b.frames[0].palette
	bits, outBits := b.layout.Bits(), layout.Bits()
	for y := 0; y < b.height; y++ {
		row, dest := b.frames[0].pix[y*b.stride:], out.frames[0].pix[y*out.stride:]
		for x := 0; x < b.width; x++ {
			setIndex(dest, x, outBits, getIndex(row, x, bits))
		}
	}
	return out
}

// Quantize maps img onto pal, optionally with Floyd-Steinberg error
// diffusion. The layout is the smallest indexed depth holding the palette.
func Quantize(img image.Image, pal palette.Palette, dither bool) *Bitmap {
	if len(pal) == 0 || len(pal) > 256 {
		panic(fmt.Sprintf("native: palette of %d colors cannot be indexed", len(pal)))
	}

	sr := img.Bounds()
	dr := image.Rect(0, 0, sr.Dx(), sr.Dy())
	dest := image.NewPaletted(dr, pal.Colors())
	if dither {
		draw.FloydSteinberg.Draw(dest, dr, img, sr.Min)
	} else {
		draw.Draw(dest, dr, img, sr.Min, draw.Src)
	}
	return fromPaletted(dest)
}

// Transparent returns a fully transparent ARGB32 bitmap.
func Transparent(width, height int) *Bitmap {
	return New(width, height, ARGB32)
}

// Rec. 601 luma weights, alpha is faded to 40% for disabled looking images.
const (
	grayR     = 0.299
	grayG     = 0.587
	grayB     = 0.114
	grayAlpha = 0.4
)

// Draw renders the active frame scaled into r of dst, composited over what is
// already there. With gray set the colors are reduced to luma and faded.
func (b *Bitmap) Draw(dst draw.Image, r image.Rectangle, gray bool) {
	src := b.Image()
	if gray {
		src = grayed(src)
	}
	draw.CatmullRom.Scale(dst, r, src, src.Bounds(), draw.Over, nil)
}

func grayed(src image.Image) *image.NRGBA {
	r := src.Bounds()
	out := image.NewNRGBA(r)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			l := uint8(grayR*float64(c.R) + grayG*float64(c.G) + grayB*float64(c.B) + 0.5)
			out.SetNRGBA(x, y, color.NRGBA{l, l, l, uint8(grayAlpha*float64(c.A) + 0.5)})
		}
	}
	return out
}
