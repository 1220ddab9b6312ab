package export

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"osimage/native"
	"osimage/osimage"
	"osimage/palette"
	"osimage/parallel"
	"osimage/pixbuf"

	"github.com/alecthomas/kong"
	"golang.org/x/image/draw"
)

type CLICmd struct {
	Scan       string `help:"Source folder to scan" default:"."`
	Dest       string `help:"Destination folder for exported pictures. Relative to scan dir if not absolute." default:"exported"`
	Codec      string `help:"Output codec, raw dumps the canonical pixels" enum:"raw,jpeg,png,bmp,gif,tiff" default:"raw"`
	Format     string `help:"Pixel format to write instead of the detected one" enum:"auto,gray8,rgb24,rgba32" default:"auto"`
	Resize     bool   `help:"Resize image" default:"false" group:"resize"`
	Width      int    `help:"Max width" group:"resize"`
	Height     int    `help:"Max height" group:"resize"`
	Crop       bool   `help:"Crop image to maintain requested aspect ratio" default:"false" group:"resize"`
	Fill       bool   `help:"If not cropping, pad to the requested size with the background color" default:"false" group:"resize"`
	Palette    string `help:"Palette name (bw, gray16, gray256, vga16, web) or PAL file in RIFF format to apply" group:"palette"`
	Dither     bool   `help:"Apply dithering" default:"false" group:"palette"`
	Gray       bool   `help:"Render desaturated and faded" default:"false"`
	Background string `help:"Flatten transparent pixels over this color (#RGB, #RGBA, #RRGGBB or #RRGGBBAA)"`

	pal        palette.Palette `kong:"-"`
	background *color.NRGBA    `kong:"-"`
	format     pixbuf.Format   `kong:"-"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	scanDir, err := filepath.Abs(c.Scan)
	var info os.FileInfo
	if err == nil {
		if info, err = os.Stat(scanDir); err == nil && !info.IsDir() {
			err = fmt.Errorf("not a directory")
		}
	}
	if err != nil {
		return fmt.Errorf("invalid scan path %q: %w", c.Scan, err)
	}
	c.Scan = scanDir

	if !filepath.IsAbs(c.Dest) {
		c.Dest = filepath.Join(scanDir, c.Dest)
	}

	if c.Resize {
		switch {
		case (c.Width < 0):
			return fmt.Errorf("invalid resize width: %d", c.Width)
		case (c.Height < 0):
			return fmt.Errorf("invalid resize height: %d", c.Height)
		case (c.Width == 0) && (c.Height == 0):
			return fmt.Errorf("no resize dimensions given")
		}
	}

	if c.Background != "" {
		bg, err := parseHexToColor(c.Background)
		if err != nil {
			return err
		}
		c.background = &bg
	}
	if c.Fill && c.background == nil {
		return fmt.Errorf("fill requires a background color")
	}

	if c.Palette != "" {
		if c.pal, err = palette.Load(c.Palette); err != nil {
			return err
		}
	}

	if c.Format != "" && c.Format != "auto" {
		if c.format, err = pixbuf.ParseFormat(c.Format); err != nil {
			return err
		}
	}

	if c.Codec != rawCodec {
		codec, err := native.ParseCodec(c.Codec)
		if err != nil {
			return err
		}
		if !native.AvailableCodec(codec) {
			return fmt.Errorf("%w: %s", native.ErrCodecUnavailable, codec)
		}
	}

	return nil
}

func (c *CLICmd) Run(worker parallel.WorkerFunc, wait parallel.WaitFunc) error {
	if err := os.MkdirAll(c.Dest, 0o755); err != nil {
		return fmt.Errorf("unable to create destination folder %q: %w", c.Dest, err)
	}

	files, err := os.ReadDir(c.Scan)
	if err != nil {
		return fmt.Errorf("unable to read folder %q: %w", c.Scan, err)
	}

	var processedCount, errCount atomic.Uint64
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		worker(func(fileName string) func() {
			return func() {
				filePath := filepath.Join(c.Scan, fileName)
				logger := slog.Default().With("file", filePath)

				if err := c.export(logger, filePath, fileName); err != nil {
					errCount.Add(1)
					logger.Error("could not export image", "error", err)
					return
				}
				processedCount.Add(1)
			}
		}(file.Name()))
	}

	wait(true)

	processed := processedCount.Load()
	errors := errCount.Load()
	slog.Info("stats", "processed", processed, "errors", errors,
		"total", processed+errors)

	if errors > 0 {
		return fmt.Errorf("error processing %d files", errors)
	}
	return nil
}

func (c *CLICmd) export(logger *slog.Logger, filePath, fileName string) error {
	imgFile, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("could not open image: %w", err)
	}
	img, err := osimage.FromReader(imgFile, osimage.WithLogger(logger))
	if closeErr := imgFile.Close(); closeErr != nil {
		logger.Error("could not close image", "error", closeErr)
	}
	if err != nil {
		return fmt.Errorf("could not decode image: %w", err)
	}

	img, err = c.transform(logger, img)
	if err != nil {
		return err
	}
	defer img.Close()

	name, err := save(img, c.format, c.Codec, c.Dest, fileName)
	if err != nil {
		return fmt.Errorf("could not save image in %q: %w", c.Dest, err)
	}
	logger.Info("exported", "to", name, "width", img.Width(), "height", img.Height(), "format", img.Format())
	return nil
}

// transform applies the requested steps in order: resize and gray rendering,
// flattening, then palette mapping. The image passed in is closed whenever a
// new one replaces it.
func (c *CLICmd) transform(logger *slog.Logger, img *osimage.Image) (*osimage.Image, error) {
	replace := func(next *osimage.Image) {
		img.Close()
		img = next
	}

	canvas := image.Pt(img.Width(), img.Height())
	dr := image.Rectangle{Max: canvas}
	if c.Resize {
		canvas, dr = fitRect(img.Width(), img.Height(), c.Width, c.Height, c.Crop, c.Fill)
		logger.Info("resizing", "width", canvas.X, "height", canvas.Y)
	}

	switch {
	case c.Gray || dr != image.Rectangle{Max: canvas}:
		next, err := c.render(img, canvas, dr)
		if err != nil {
			img.Close()
			return nil, fmt.Errorf("could not render image: %w", err)
		}
		replace(next)
	case canvas != image.Pt(img.Width(), img.Height()):
		replace(img.Scaled(canvas.X, canvas.Y))
	}

	if c.background != nil && img.Format() == pixbuf.RGBA32 {
		h, _ := img.Handle(*c.background)
		replace(osimage.FromBitmap(native.FromImage(h), osimage.WithLogger(logger)))
	}

	if c.pal != nil {
		replace(img.Quantized(c.pal, c.Dither))
	}

	return img, nil
}

// render draws img into dr of a fresh canvas, over the background color when
// one was given.
func (c *CLICmd) render(img *osimage.Image, canvas image.Point, dr image.Rectangle) (*osimage.Image, error) {
	ctx := osimage.NewContext(canvas.X, canvas.Y, pixbuf.RGBA32)
	if c.background != nil {
		dst := ctx.Canvas()
		draw.Draw(dst, dst.Bounds(), image.NewUniform(*c.background), image.Point{}, draw.Src)
	}
	if err := img.Draw(ctx.Canvas(), -1, dr, c.Gray); err != nil {
		return nil, err
	}
	return osimage.FromContext(ctx), nil
}
