package native

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"sync"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var ErrCodecUnavailable = errors.New("native: codec not available")

type Codec uint8

const (
	JPEG Codec = iota + 1
	PNG
	BMP
	GIF
	TIFF
)

func (c Codec) String() string {
	switch c {
	case JPEG:
		return "jpeg"
	case PNG:
		return "png"
	case BMP:
		return "bmp"
	case GIF:
		return "gif"
	case TIFF:
		return "tiff"
	}
	return fmt.Sprintf("Codec(%d)", uint8(c))
}

// Codecs lists every known codec, available or not.
func Codecs() []Codec {
	return []Codec{JPEG, PNG, BMP, GIF, TIFF}
}

func ParseCodec(s string) (Codec, error) {
	switch s {
	case "jpeg", "jpg":
		return JPEG, nil
	case "png":
		return PNG, nil
	case "bmp":
		return BMP, nil
	case "gif":
		return GIF, nil
	case "tiff", "tif":
		return TIFF, nil
	}
	return 0, fmt.Errorf("unsupported codec: %q", s)
}

// EncodeFunc writes img to w in a codec specific format.
type EncodeFunc func(w io.Writer, img image.Image) error

var encoders = struct {
	sync.RWMutex
	m map[Codec]EncodeFunc
}{
	m: map[Codec]EncodeFunc{
		JPEG: func(w io.Writer, img image.Image) error {
			return jpeg.Encode(w, img, &jpeg.Options{Quality: 100})
		},
		PNG: func(w io.Writer, img image.Image) error {
			enc := png.Encoder{
				CompressionLevel: png.BestCompression,
				BufferPool:       pngPool,
			}
			return enc.Encode(w, img)
		},
		BMP: bmp.Encode,
		GIF: func(w io.Writer, img image.Image) error {
			return gif.Encode(w, img, nil)
		},
		TIFF: func(w io.Writer, img image.Image) error {
			return tiff.Encode(w, img, nil)
		},
	},
}

// RegisterEncoder installs or replaces the encoder for c. A nil fn removes it.
func RegisterEncoder(c Codec, fn EncodeFunc) {
	encoders.Lock()
	defer encoders.Unlock()

	if fn == nil {
		delete(encoders.m, c)
		return
	}
	encoders.m[c] = fn
}

func lookupEncoder(c Codec) (EncodeFunc, bool) {
	encoders.RLock()
	defer encoders.RUnlock()

	fn, ok := encoders.m[c]
	return fn, ok
}

// AvailableCodec reports whether an encoder is registered for c.
func AvailableCodec(c Codec) bool {
	_, ok := lookupEncoder(c)
	return ok
}

var streamPool = sync.Pool{
	New: func() any {
		return new(bytes.Buffer)
	},
}

// Encode writes the active frame to w. Nothing is written unless the whole
// image encodes successfully. A codec without a registered encoder yields
// ErrCodecUnavailable.
func (b *Bitmap) Encode(w io.Writer, c Codec) error {
	fn, ok := lookupEncoder(c)
	if !ok {
		return fmt.Errorf("%w: %s", ErrCodecUnavailable, c)
	}

	stream := streamPool.Get().(*bytes.Buffer)
	stream.Reset()
	defer streamPool.Put(stream)

	if err := fn(stream, b.Image()); err != nil {
		return fmt.Errorf("could not encode %s: %w", c, err)
	}

	n, err := w.Write(stream.Bytes())
	if err != nil {
		return fmt.Errorf("could not write %s stream: %w", c, err)
	} else if n != stream.Len() {
		return fmt.Errorf("wrote only %d/%d bytes", n, stream.Len())
	}
	return nil
}

// Decode parses an encoded image. Every format registered with the image
// package is accepted; GIFs keep all their frames and delays.
func Decode(data []byte) (*Bitmap, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("could not read image header: %w", err)
	}

	if format == "gif" {
		g, err := gif.DecodeAll(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("could not decode gif: %w", err)
		}
		if len(g.Image) > 1 {
			return fromGIF(g), nil
		}
		b := FromImage(g.Image[0])
		if len(g.Delay) > 0 {
			b.frames[0].delay = g.Delay[0]
		}
		return b, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("could not decode %s: %w", format, err)
	}
	return FromImage(img), nil
}

// fromGIF flattens every frame onto the logical screen so each frame of the
// resulting ARGB32 bitmap is a complete picture.
func fromGIF(g *gif.GIF) *Bitmap {
	screen := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if screen.Empty() {
		screen = g.Image[0].Bounds()
	}

	canvas := image.NewNRGBA(screen)
	var b *Bitmap
	for i, frm := range g.Image {
		var previous *image.NRGBA
		if i < len(g.Disposal) && g.Disposal[i] == gif.DisposalPrevious {
			previous = image.NewNRGBA(screen)
			copy(previous.Pix, canvas.Pix)
		}

		draw.Draw(canvas, frm.Bounds(), frm, frm.Bounds().Min, draw.Over)

		snap := fromDirect(canvas, ARGB32)
		f := snap.frames[0]
		if b == nil {
			b = snap
			b.frames = b.frames[:0]
		}
		if i < len(g.Delay) {
			f.delay = g.Delay[i]
		}
		b.frames = append(b.frames, f)

		if i < len(g.Disposal) {
			switch g.Disposal[i] {
			case gif.DisposalBackground:
				draw.Draw(canvas, frm.Bounds(), image.Transparent, image.Point{}, draw.Src)
			case gif.DisposalPrevious:
				copy(canvas.Pix, previous.Pix)
			}
		}
	}
	return b
}

type pngEncoderBufferPool struct {
	pool sync.Pool
}

func (p *pngEncoderBufferPool) Get() *png.EncoderBuffer {
	return p.pool.Get().(*png.EncoderBuffer)
}

func (p *pngEncoderBufferPool) Put(buf *png.EncoderBuffer) {
	p.pool.Put(buf)
}

var pngPool = &pngEncoderBufferPool{
	pool: sync.Pool{
		New: func() any {
			return &png.EncoderBuffer{}
		},
	},
}
