// Package osimage is the image object handed to applications. An Image owns
// one native bitmap and answers questions about it in terms of canonical
// pixel formats.
package osimage

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"

	"osimage/native"
	"osimage/palette"
	"osimage/pixbuf"
	"osimage/pixconv"

	"golang.org/x/image/draw"
)

// Image owns a native bitmap and a cached flattened copy of it. It is not
// safe for concurrent use.
type Image struct {
	bitmap *native.Bitmap
	cache  handleCache
	logger *slog.Logger
}

type Option func(*Image)

// WithLogger sets the logger used for debug traces. slog.Default is used
// otherwise.
func WithLogger(logger *slog.Logger) Option {
	return func(img *Image) {
		img.logger = logger
	}
}

// FromBitmap takes ownership of b.
func FromBitmap(b *native.Bitmap, opts ...Option) *Image {
	img := &Image{
		bitmap: b,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(img)
	}
	return img
}

// FromPixels creates an image holding a copy of buf.
func FromPixels(buf *pixbuf.Buffer, opts ...Option) *Image {
	return FromBitmap(native.FromPixels(buf), opts...)
}

// FromData decodes an encoded image held in memory.
func FromData(data []byte, opts ...Option) (*Image, error) {
	b, err := native.Decode(data)
	if err != nil {
		return nil, err
	}
	return FromBitmap(b, opts...), nil
}

// FromReader decodes an encoded image read from r until EOF.
func FromReader(r io.Reader, opts ...Option) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("could not read image data: %w", err)
	}
	return FromData(data, opts...)
}

// Transparent creates a fully transparent image.
func Transparent(width, height int, opts ...Option) *Image {
	return FromBitmap(native.Transparent(width, height), opts...)
}

// Scaled returns a new image of the given size with the same native layout.
func (img *Image) Scaled(width, height int) *Image {
	img.mustOpen()
	img.logger.Debug("scaling", "from_width", img.bitmap.Width(), "from_height", img.bitmap.Height(),
		"width", width, "height", height)
	return FromBitmap(img.bitmap.Scale(width, height), WithLogger(img.logger))
}

func (img *Image) mustOpen() {
	if img.bitmap == nil {
		panic("osimage: use of closed image")
	}
}

// Close releases the bitmap and the cached handle. Closing twice is a no-op.
func (img *Image) Close() {
	img.cache.release()
	img.bitmap = nil
}

func (img *Image) Width() int {
	img.mustOpen()
	return img.bitmap.Width()
}

func (img *Image) Height() int {
	img.mustOpen()
	return img.bitmap.Height()
}

// Format classifies the pixels of the active frame.
func (img *Image) Format() pixbuf.Format {
	f, _ := img.Info(false)
	return f
}

// Pixels converts the active frame to its canonical format.
func (img *Image) Pixels() *pixbuf.Buffer {
	_, buf := img.Info(true)
	return buf
}

// Info returns the canonical format and, if requested, the pixels.
func (img *Image) Info(pixels bool) (pixbuf.Format, *pixbuf.Buffer) {
	img.mustOpen()
	f, buf := pixconv.Info(img.bitmap, pixels)
	img.logger.Debug("classified", "layout", img.bitmap.Layout(), "format", f, "pixels", pixels)
	return f, buf
}

// Native exposes the owned bitmap. It stays owned by img.
func (img *Image) Native() *native.Bitmap {
	img.mustOpen()
	return img.bitmap
}

// AvailableCodec reports whether Write can produce codec.
func (img *Image) AvailableCodec(codec native.Codec) bool {
	return native.AvailableCodec(codec)
}

// Write encodes the active frame. It fails with native.ErrCodecUnavailable
// when no encoder is registered for codec.
func (img *Image) Write(w io.Writer, codec native.Codec) error {
	img.mustOpen()
	if err := img.bitmap.Encode(w, codec); err != nil {
		img.logger.Debug("encoding failed", "codec", codec, "error", err)
		return err
	}
	return nil
}

func (img *Image) Frames() int {
	img.mustOpen()
	return img.bitmap.Frames()
}

// FrameLength returns how long frame i is displayed, in seconds.
func (img *Image) FrameLength(i int) (float64, error) {
	img.mustOpen()
	return img.bitmap.FrameDelay(i)
}

// Handle returns the image flattened over background together with its size.
// The result is cached until a different background is requested; callers
// must not modify it.
func (img *Image) Handle(background color.Color) (*image.RGBA, image.Point) {
	img.mustOpen()
	key := color.NRGBAModel.Convert(background).(color.NRGBA)
	h := img.cache.getOrBuild(key, img.flatten)
	return h, h.Bounds().Size()
}

func (img *Image) flatten(background color.NRGBA) *image.RGBA {
	img.logger.Debug("building handle", "background", background)
	r := image.Rect(0, 0, img.bitmap.Width(), img.bitmap.Height())
	dst := image.NewRGBA(r)
	draw.Draw(dst, r, image.NewUniform(background), image.Point{}, draw.Src)
	draw.Draw(dst, r, img.bitmap.Image(), image.Point{}, draw.Over)
	return dst
}

// Draw renders frame (or the active frame when frame is negative) into r of
// dst. With gray set the image is drawn desaturated and faded.
func (img *Image) Draw(dst draw.Image, frame int, r image.Rectangle, gray bool) error {
	img.mustOpen()
	if frame >= 0 && frame != img.bitmap.ActiveFrame() {
		if err := img.bitmap.SelectFrame(frame); err != nil {
			return err
		}
		img.cache.release()
	}
	img.bitmap.Draw(dst, r, gray)
	return nil
}

// Quantized returns a copy of img mapped onto pal, in the smallest indexed
// layout that holds it.
func (img *Image) Quantized(pal palette.Palette, dither bool) *Image {
	img.mustOpen()
	img.logger.Debug("quantizing", "colors", len(pal), "dither", dither)
	return FromBitmap(native.Quantize(img.bitmap.Image(), pal, dither), WithLogger(img.logger))
}
