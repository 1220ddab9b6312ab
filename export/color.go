package export

import (
	"fmt"
	"image/color"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
)

// parseHexToColor reads #RGB, #RGBA, #RRGGBB or #RRGGBBAA.
func parseHexToColor(s string) (color.NRGBA, error) {
	rgb, alpha := s, ""
	switch len(s) {
	case 4, 7:
	case 5:
		rgb, alpha = s[:4], s[4:]+s[4:]
	case 9:
		rgb, alpha = s[:7], s[7:]
	default:
		return color.NRGBA{}, fmt.Errorf("invalid color %q, should be #RGB, #RGBA, #RRGGBB or #RRGGBBAA", s)
	}

	c, err := colorful.Hex(rgb)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("could not read color %q: %w", s, err)
	}

	a := uint64(0xFF)
	if alpha != "" {
		if a, err = strconv.ParseUint(alpha, 16, 8); err != nil {
			return color.NRGBA{}, fmt.Errorf("could not read alpha of %q: %w", s, err)
		}
	}

	r, g, b := c.RGB255()
	return color.NRGBA{r, g, b, uint8(a)}, nil
}
