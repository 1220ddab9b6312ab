package native

import "fmt"

// Layout is the in-memory encoding of a bitmap's pixels. Direct layouts store
// channels in B, G, R[, A|X] order, indexed layouts pack palette indices most
// significant bit first.
type Layout uint8

const (
	Indexed1 Layout = iota + 1
	Indexed4
	Indexed8
	RGB24
	RGB32 // fourth byte is padding
	ARGB32
)

func (l Layout) Bits() int {
	switch l {
	case Indexed1:
		return 1
	case Indexed4:
		return 4
	case Indexed8:
		return 8
	case RGB24:
		return 24
	case RGB32, ARGB32:
		return 32
	}
	panic(fmt.Sprintf("native: unknown layout %d", l))
}

func (l Layout) Indexed() bool {
	return l == Indexed1 || l == Indexed4 || l == Indexed8
}

// BytesPerPixel is only meaningful for direct layouts.
func (l Layout) BytesPerPixel() int {
	if l.Indexed() {
		panic(fmt.Sprintf("native: %s has no whole-byte pixel size", l))
	}
	return l.Bits() / 8
}

// MinStride is the number of bytes holding pixel data in a row of the given width.
func (l Layout) MinStride(width int) int {
	return (width*l.Bits() + 7) / 8
}

// DIBStride is the 4-byte aligned row size used by device independent bitmaps.
func (l Layout) DIBStride(width int) int {
	return ((width*l.Bits() + 31) / 32) * 4
}

// PaletteSize is the number of entries addressable by an indexed layout.
func (l Layout) PaletteSize() int {
	if !l.Indexed() {
		return 0
	}
	return 1 << l.Bits()
}

// IndexedFor picks the smallest indexed layout able to address n colors.
func IndexedFor(n int) Layout {
	switch {
	case n <= 2:
		return Indexed1
	case n <= 16:
		return Indexed4
	}
	return Indexed8
}

func (l Layout) String() string {
	switch l {
	case Indexed1:
		return "indexed1"
	case Indexed4:
		return "indexed4"
	case Indexed8:
		return "indexed8"
	case RGB24:
		return "rgb24"
	case RGB32:
		return "rgb32"
	case ARGB32:
		return "argb32"
	}
	return fmt.Sprintf("Layout(%d)", uint8(l))
}
