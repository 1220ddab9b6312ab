// Package native implements the bitmap object the image backend is built on.
//
// A Bitmap mirrors what platform imaging libraries hand out: pixels stored in
// blue-first channel order or as packed palette indices, rows padded to a
// stride, and raw access granted only inside a LockBits/Unlock pair.
package native

import (
	"errors"
	"fmt"
	"image/color"
)

var (
	ErrLocked     = errors.New("native: bitmap already locked")
	ErrEmptyData  = errors.New("native: empty image data")
	ErrFrameRange = errors.New("native: frame index out of range")
)

type LockMode uint8

const (
	LockRead LockMode = 1 << iota
	LockWrite
	LockReadWrite = LockRead | LockWrite
)

type frame struct {
	pix     []byte
	palette []color.NRGBA
	delay   int // hundredths of a second
}

// Bitmap is a single- or multi-frame raster. It is not safe for concurrent use.
type Bitmap struct {
	width  int
	height int
	layout Layout
	stride int
	frames []frame
	active int
	locked bool
}

// New allocates a zeroed bitmap with a DIB aligned stride.
func New(width, height int, layout Layout) *Bitmap {
	return NewWithStride(width, height, layout, layout.DIBStride(width))
}

// NewWithStride allocates a zeroed bitmap whose rows are stride bytes apart.
// Invalid dimensions or a stride too small for the row panic.
func NewWithStride(width, height int, layout Layout, stride int) *Bitmap {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("native: invalid dimensions %dx%d", width, height))
	}
	if minStride := layout.MinStride(width); stride < minStride {
		panic(fmt.Sprintf("native: stride %d below minimum %d for %s", stride, minStride, layout))
	}

	b := &Bitmap{
		width:  width,
		height: height,
		layout: layout,
		stride: stride,
	}
	b.frames = []frame{b.newFrame()}
	return b
}

func (b *Bitmap) newFrame() frame {
	f := frame{pix: make([]byte, b.stride*b.height)}
	if b.layout.Indexed() {
		f.palette = make([]color.NRGBA, b.layout.PaletteSize())
		for i := range f.palette {
			f.palette[i].A = 0xFF
		}
	}
	return f
}

func (b *Bitmap) Width() int     { return b.width }
func (b *Bitmap) Height() int    { return b.height }
func (b *Bitmap) Layout() Layout { return b.layout }
func (b *Bitmap) Stride() int    { return b.stride }

// Palette returns a copy of the active frame's palette, nil for direct layouts.
func (b *Bitmap) Palette() []color.NRGBA {
	pal := b.frames[b.active].palette
	if pal == nil {
		return nil
	}
	return append([]color.NRGBA(nil), pal...)
}

// SetPalette replaces the active frame's palette. The palette may be shorter
// than the layout allows but not longer.
func (b *Bitmap) SetPalette(pal []color.NRGBA) error {
	if !b.layout.Indexed() {
		return fmt.Errorf("cannot set palette on %s bitmap", b.layout)
	}
	if len(pal) == 0 || len(pal) > b.layout.PaletteSize() {
		return fmt.Errorf("palette of %d colors does not fit %s", len(pal), b.layout)
	}
	b.frames[b.active].palette = append([]color.NRGBA(nil), pal...)
	return nil
}

// BitmapData is the raw view granted by LockBits. Scan0 is only valid until
// Unlock is called.
type BitmapData struct {
	Width  int
	Height int
	Stride int
	Layout Layout
	Scan0  []byte

	mode   LockMode
	bitmap *Bitmap
}

// LockBits grants access to the active frame's pixel memory. Read locks see
// the bitmap memory directly; write locks work on a copy committed by Unlock.
func (b *Bitmap) LockBits(mode LockMode) (*BitmapData, error) {
	if b.locked {
		return nil, ErrLocked
	}
	if mode&LockReadWrite == 0 {
		return nil, fmt.Errorf("native: invalid lock mode %d", mode)
	}

	b.locked = true
	scan := b.frames[b.active].pix
	if mode&LockWrite != 0 {
		scan = append([]byte(nil), scan...)
	}

	return &BitmapData{
		Width:  b.width,
		Height: b.height,
		Stride: b.stride,
		Layout: b.layout,
		Scan0:  scan,
		mode:   mode,
		bitmap: b,
	}, nil
}

// Unlock releases the lock. Calling it more than once is a no-op.
func (d *BitmapData) Unlock() {
	if d.bitmap == nil {
		return
	}
	if d.mode&LockWrite != 0 {
		copy(d.bitmap.frames[d.bitmap.active].pix, d.Scan0)
	}
	d.bitmap.locked = false
	d.bitmap = nil
	d.Scan0 = nil
}

// Locked reports whether a LockBits call is outstanding.
func (b *Bitmap) Locked() bool { return b.locked }

func (b *Bitmap) mustUnlocked() {
	if b.locked {
		panic("native: bitmap is locked")
	}
}

// SetIndex stores a palette index for an indexed bitmap.
func (b *Bitmap) SetIndex(x, y int, idx uint8) {
	b.mustUnlocked()
	setIndex(b.frames[b.active].pix[y*b.stride:], x, b.layout.Bits(), idx)
}

// SetNRGBA stores a straight-alpha color for a direct bitmap. Alpha is
// ignored by layouts that cannot hold it.
func (b *Bitmap) SetNRGBA(x, y int, c color.NRGBA) {
	b.mustUnlocked()
	bpp := b.layout.BytesPerPixel()
	p := b.frames[b.active].pix[y*b.stride+x*bpp:]
	p[0], p[1], p[2] = c.B, c.G, c.R
	if b.layout == ARGB32 {
		p[3] = c.A
	}
}

func setIndex(row []byte, x, bits int, idx uint8) {
	switch bits {
	case 8:
		row[x] = idx
	case 4:
		shift := uint(4 - (x&1)*4)
		row[x>>1] = row[x>>1]&^(0x0F<<shift) | (idx&0x0F)<<shift
	case 1:
		shift := uint(7 - x&7)
		row[x>>3] = row[x>>3]&^(1<<shift) | (idx&1)<<shift
	default:
		panic(fmt.Sprintf("native: unsupported index depth %d", bits))
	}
}

func getIndex(row []byte, x, bits int) uint8 {
	switch bits {
	case 8:
		return row[x]
	case 4:
		return row[x>>1] >> uint(4-(x&1)*4) & 0x0F
	case 1:
		return row[x>>3] >> uint(7-x&7) & 1
	}
	panic(fmt.Sprintf("native: unsupported index depth %d", bits))
}

// Frames returns the number of frames, 1 for still images.
func (b *Bitmap) Frames() int { return len(b.frames) }

// ActiveFrame is the frame LockBits, Palette and the encoders operate on.
func (b *Bitmap) ActiveFrame() int { return b.active }

func (b *Bitmap) SelectFrame(i int) error {
	if i < 0 || i >= len(b.frames) {
		return fmt.Errorf("%w: %d/%d", ErrFrameRange, i, len(b.frames))
	}
	b.mustUnlocked()
	b.active = i
	return nil
}

// FrameDelay returns how long frame i is shown, in seconds.
func (b *Bitmap) FrameDelay(i int) (float64, error) {
	if i < 0 || i >= len(b.frames) {
		return 0, fmt.Errorf("%w: %d/%d", ErrFrameRange, i, len(b.frames))
	}
	return 0.01 * float64(b.frames[i].delay), nil
}
