package export

import (
	"image"
	"math"
)

// fitRect works out the canvas for a source of srcWidth x srcHeight asked to
// be width x height (0 keeps the source side) and where in that canvas the
// scaled source goes. Without crop or fill the canvas shrinks to keep the
// aspect ratio. With fill the source is centered on the full canvas, with crop
// it overflows the canvas and gets clipped.
func fitRect(srcWidth, srcHeight, width, height int, crop, fill bool) (image.Point, image.Rectangle) {
	sw, sh := float64(srcWidth), float64(srcHeight)

	dw := float64(width)
	if dw == 0 {
		dw = sw
	}
	dh := float64(height)
	if dh == 0 {
		dh = sh
	}

	canvas := image.Pt(int(dw), int(dh))
	dr := image.Rectangle{Max: canvas}

	srcAR := sw / sh
	destAR := dw / dh
	switch {
	case srcAR == destAR:
	case crop:
		if srcAR < destAR {
			h := int(math.Round(dw / srcAR))
			dr.Min.Y = (canvas.Y - h) / 2
			dr.Max.Y = dr.Min.Y + h
		} else {
			w := int(math.Round(dh * srcAR))
			dr.Min.X = (canvas.X - w) / 2
			dr.Max.X = dr.Min.X + w
		}
	case srcAR < destAR:
		w := max(int(math.Round(dh*srcAR)), 1)
		if fill {
			dr.Min.X = (canvas.X - w) / 2
			dr.Max.X = dr.Min.X + w
		} else {
			canvas.X = w
			dr.Max.X = w
		}
	default:
		h := max(int(math.Round(dw/srcAR)), 1)
		if fill {
			dr.Min.Y = (canvas.Y - h) / 2
			dr.Max.Y = dr.Min.Y + h
		} else {
			canvas.Y = h
			dr.Max.Y = h
		}
	}

	return canvas, dr
}
