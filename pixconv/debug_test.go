//go:build pixconv_debug

package pixconv

import (
	"testing"

	"osimage/native"
	"osimage/pixbuf"
)

func TestDebugAssertions(t *testing.T) {
	b := rawBitmap(t, 1, 1, native.RGB24, 4, [][]byte{{1, 2, 3}}, nil)
	mustPanic(t, "non gray pixel", func() { Convert(b, pixbuf.Gray8) })

	g := rawBitmap(t, 1, 1, native.RGB24, 4, [][]byte{{7, 7, 7}}, nil)
	if buf := Convert(g, pixbuf.Gray8); buf.Bytes()[0] != 7 {
		t.Fatalf("unexpected gray value %d", buf.Bytes()[0])
	}
}
