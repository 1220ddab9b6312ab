package osimage

import (
	"image"

	"osimage/native"
	"osimage/pixbuf"

	"golang.org/x/image/draw"
)

// Context is an offscreen canvas an image can be built from.
type Context struct {
	canvas draw.Image
}

// NewContext returns a blank canvas. Gray8 contexts draw in grayscale, the
// others in straight-alpha RGBA.
func NewContext(width, height int, f pixbuf.Format) *Context {
	r := image.Rect(0, 0, width, height)
	if f == pixbuf.Gray8 {
		return &Context{canvas: image.NewGray(r)}
	}
	return &Context{canvas: image.NewNRGBA(r)}
}

// Canvas is the surface to draw on. It is unusable once the context was
// turned into an image.
func (ctx *Context) Canvas() draw.Image {
	if ctx.canvas == nil {
		panic("osimage: context already consumed")
	}
	return ctx.canvas
}

// FromContext turns what was drawn on ctx into an image and consumes ctx.
func FromContext(ctx *Context, opts ...Option) *Image {
	b := native.FromImage(ctx.Canvas())
	ctx.canvas = nil
	return FromBitmap(b, opts...)
}
