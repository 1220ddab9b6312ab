package osimage

import (
	"image"
	"image/color"
)

type handle struct {
	key   color.NRGBA
	value *image.RGBA
}

// handleCache keeps at most one flattened copy of the bitmap, keyed by the
// background it was composited on.
type handleCache struct {
	entry  *handle
	builds int
}

func (c *handleCache) getOrBuild(key color.NRGBA, build func(color.NRGBA) *image.RGBA) *image.RGBA {
	if c.entry != nil && c.entry.key != key {
		c.release()
	}

	if c.entry == nil {
		c.entry = &handle{key: key, value: build(key)}
		c.builds++
	}
	return c.entry.value
}

func (c *handleCache) release() {
	c.entry = nil
}
