package native

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"io"
	"testing"

	"osimage/palette"
	"osimage/pixbuf"
)

func TestStrides(t *testing.T) {
	cases := []struct {
		layout    Layout
		width     int
		minStride int
		dibStride int
	}{
		{Indexed1, 9, 2, 4},
		{Indexed4, 3, 2, 4},
		{Indexed8, 5, 5, 8},
		{RGB24, 3, 9, 12},
		{RGB32, 3, 12, 12},
		{ARGB32, 1, 4, 4},
	}

	for _, tc := range cases {
		if s := tc.layout.MinStride(tc.width); s != tc.minStride {
			t.Fatalf("%s/%d min: expected(%d) != actual(%d)", tc.layout, tc.width, tc.minStride, s)
		}
		if s := tc.layout.DIBStride(tc.width); s != tc.dibStride {
			t.Fatalf("%s/%d dib: expected(%d) != actual(%d)", tc.layout, tc.width, tc.dibStride, s)
		}
		if s := New(tc.width, 2, tc.layout).Stride(); s != tc.dibStride {
			t.Fatalf("%s/%d bitmap: expected(%d) != actual(%d)", tc.layout, tc.width, tc.dibStride, s)
		}
	}
}

func TestNewWithStrideRejectsShortRows(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	NewWithStride(4, 1, RGB24, 11)
}

func TestLockBits(t *testing.T) {
	b := NewWithStride(2, 2, RGB24, 8)

	data, err := b.LockBits(LockWrite)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.LockBits(LockRead); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if data.Stride != 8 || len(data.Scan0) != 16 {
		t.Fatalf("unexpected lock data %+v", data)
	}
	data.Scan0[8] = 0x42
	data.Unlock()
	data.Unlock()

	if b.Locked() {
		t.Fatal("bitmap still locked")
	}

	data, err = b.LockBits(LockRead)
	if err != nil {
		t.Fatal(err)
	}
	defer data.Unlock()
	if data.Scan0[8] != 0x42 {
		t.Fatalf("write lock was not committed: %v", data.Scan0)
	}
}

func TestIndexPacking(t *testing.T) {
	row := make([]byte, 2)
	for x, idx := range []uint8{1, 0, 1, 1, 0, 0, 0, 0, 1} {
		setIndex(row, x, 1, idx)
	}
	if row[0] != 0b10110000 || row[1] != 0b10000000 {
		t.Fatalf("unexpected 1bpp packing %08b", row)
	}

	row = make([]byte, 2)
	for x, idx := range []uint8{0xA, 0x3, 0xF} {
		setIndex(row, x, 4, idx)
	}
	if row[0] != 0xA3 || row[1] != 0xF0 {
		t.Fatalf("unexpected 4bpp packing %x", row)
	}
	for x, idx := range []uint8{0xA, 0x3, 0xF} {
		if got := getIndex(row, x, 4); got != idx {
			t.Fatalf("%d: expected(%d) != actual(%d)", x, idx, got)
		}
	}
}

func TestFromPixels(t *testing.T) {
	buf := pixbuf.Wrap(2, 1, pixbuf.RGBA32, []byte{10, 20, 30, 40, 50, 60, 70, 80})

	b := FromPixels(buf)
	if b.Layout() != ARGB32 {
		t.Fatalf("unexpected layout %s", b.Layout())
	}
	data, err := b.LockBits(LockRead)
	if err != nil {
		t.Fatal(err)
	}
	got := append([]byte(nil), data.Scan0[:8]...)
	data.Unlock()
	if !bytes.Equal(got, []byte{30, 20, 10, 40, 70, 60, 50, 80}) {
		t.Fatalf("unexpected native bytes %v", got)
	}

	gray := pixbuf.Wrap(3, 1, pixbuf.Gray8, []byte{0, 127, 255})
	g := FromPixels(gray)
	if g.Layout() != Indexed8 || !palette.Palette(g.Palette()).IsGray() {
		t.Fatalf("gray pixels should produce a gray indexed bitmap, got %s", g.Layout())
	}
}

func TestEncodeDecode(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	for i := range src.Pix {
		src.Pix[i] = uint8(i * 5)
	}
	b := FromImage(src)
	if b.Layout() != ARGB32 {
		t.Fatalf("unexpected layout %s", b.Layout())
	}

	var out bytes.Buffer
	if err := b.Encode(&out, PNG); err != nil {
		t.Fatal(err)
	}

	d, err := Decode(out.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if d.Width() != 4 || d.Height() != 3 || d.Frames() != 1 {
		t.Fatalf("unexpected decoded bitmap %dx%d/%d", d.Width(), d.Height(), d.Frames())
	}
	if !bytes.Equal(d.Image().(*image.NRGBA).Pix, src.Pix) {
		t.Fatal("png round trip changed pixels")
	}

	for _, c := range []Codec{JPEG, BMP, GIF, TIFF} {
		out.Reset()
		if err := b.Encode(&out, c); err != nil {
			t.Fatalf("%s: %v", c, err)
		}
		if out.Len() == 0 {
			t.Fatalf("%s: empty output", c)
		}
	}
}

func TestEncodeUnavailable(t *testing.T) {
	b := New(1, 1, RGB24)
	var out bytes.Buffer
	if err := b.Encode(&out, Codec(99)); !errors.Is(err, ErrCodecUnavailable) {
		t.Fatalf("expected ErrCodecUnavailable, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatal("unavailable codec wrote data")
	}

	const fake = Codec(100)
	RegisterEncoder(fake, func(w io.Writer, img image.Image) error {
		_, err := w.Write([]byte("fake"))
		return err
	})
	if !AvailableCodec(fake) {
		t.Fatal("registered codec not available")
	}
	if err := b.Encode(&out, fake); err != nil || out.String() != "fake" {
		t.Fatalf("unexpected fake encode %q %v", out.String(), err)
	}
	RegisterEncoder(fake, nil)
	if AvailableCodec(fake) {
		t.Fatal("removed codec still available")
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := Decode(nil); !errors.Is(err, ErrEmptyData) {
		t.Fatalf("expected ErrEmptyData, got %v", err)
	}
	if _, err := Decode([]byte("not an image")); err == nil {
		t.Fatal("expected error")
	}
}

func TestDecodePaletted(t *testing.T) {
	pal := color.Palette{color.Black, color.White}
	img := image.NewPaletted(image.Rect(0, 0, 9, 2), pal)
	img.SetColorIndex(0, 0, 1)
	img.SetColorIndex(8, 1, 1)

	var out bytes.Buffer
	if err := png.Encode(&out, img); err != nil {
		t.Fatal(err)
	}
	b, err := Decode(out.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if b.Layout() != Indexed1 {
		t.Fatalf("expected indexed1, got %s", b.Layout())
	}
	back := b.Image().(*image.Paletted)
	if back.ColorIndexAt(0, 0) != 1 || back.ColorIndexAt(8, 1) != 1 || back.ColorIndexAt(1, 0) != 0 {
		t.Fatalf("unexpected indices %v", back.Pix)
	}
}

func TestSingleFrameGIF(t *testing.T) {
	pal := color.Palette{color.Black, color.White, color.NRGBA{0, 0, 0xFF, 0xFF}}
	frm := image.NewPaletted(image.Rect(0, 0, 3, 2), pal)
	frm.SetColorIndex(1, 1, 2)

	var out bytes.Buffer
	if err := gif.EncodeAll(&out, &gif.GIF{Image: []*image.Paletted{frm}, Delay: []int{7}}); err != nil {
		t.Fatal(err)
	}
	b, err := Decode(out.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if b.Frames() != 1 || !b.Layout().Indexed() {
		t.Fatalf("unexpected frames %d layout %s", b.Frames(), b.Layout())
	}
	if d, err := b.FrameDelay(0); err != nil || d < 0.07-1e-9 || d > 0.07+1e-9 {
		t.Fatalf("expected(0.07) != actual(%v) %v", d, err)
	}
	back := b.Image().(*image.Paletted)
	if c := color.NRGBAModel.Convert(back.At(1, 1)).(color.NRGBA); c != (color.NRGBA{0, 0, 0xFF, 0xFF}) {
		t.Fatalf("unexpected pixel %v", c)
	}
}

func TestAnimatedGIF(t *testing.T) {
	pal := color.Palette{color.Transparent, color.NRGBA{0xFF, 0, 0, 0xFF}}
	g := &gif.GIF{}
	for i := range 3 {
		frm := image.NewPaletted(image.Rect(0, 0, 4, 4), pal)
		frm.SetColorIndex(i, i, 1)
		g.Image = append(g.Image, frm)
		g.Delay = append(g.Delay, 10*(i+1))
	}

	var out bytes.Buffer
	if err := gif.EncodeAll(&out, g); err != nil {
		t.Fatal(err)
	}
	b, err := Decode(out.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if b.Frames() != 3 || b.Layout() != ARGB32 {
		t.Fatalf("unexpected frames %d layout %s", b.Frames(), b.Layout())
	}

	for i, want := range []float64{0.1, 0.2, 0.3} {
		d, err := b.FrameDelay(i)
		if err != nil {
			t.Fatal(err)
		}
		if d < want-1e-9 || d > want+1e-9 {
			t.Fatalf("%d: expected(%v) != actual(%v)", i, want, d)
		}
	}
	if _, err := b.FrameDelay(3); !errors.Is(err, ErrFrameRange) {
		t.Fatalf("expected ErrFrameRange, got %v", err)
	}

	if err := b.SelectFrame(2); err != nil {
		t.Fatal(err)
	}
	img := b.Image().(*image.NRGBA)
	if img.NRGBAAt(2, 2).R != 0xFF {
		t.Fatalf("frame 2 not selected: %v", img.NRGBAAt(2, 2))
	}
}

func TestScaleKeepsLayout(t *testing.T) {
	for _, layout := range []Layout{Indexed1, Indexed4, Indexed8, RGB24, RGB32, ARGB32} {
		b := New(4, 4, layout)
		s := b.Scale(9, 7)
		if s.Layout() != layout || s.Width() != 9 || s.Height() != 7 {
			t.Fatalf("%s: scaled to %s %dx%d", layout, s.Layout(), s.Width(), s.Height())
		}
	}
}

func TestQuantize(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 3, 3))
	for i := range src.Pix {
		src.Pix[i] = uint8(i * 30)
	}
	b := Quantize(src, palette.Gray(16), true)
	if b.Layout() != Indexed4 || len(b.Palette()) != 16 {
		t.Fatalf("unexpected quantized bitmap %s/%d", b.Layout(), len(b.Palette()))
	}
}

func TestDrawGray(t *testing.T) {
	b := New(1, 1, ARGB32)
	b.SetNRGBA(0, 0, color.NRGBA{0xFF, 0, 0, 0xFF})

	dst := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	b.Draw(dst, dst.Bounds(), true)
	c := dst.NRGBAAt(0, 0)
	if c.R != c.G || c.G != c.B {
		t.Fatalf("gray draw produced color %v", c)
	}
	if c.A < 100 || c.A > 104 {
		t.Fatalf("expected alpha faded to 40%%, got %d", c.A)
	}
}
