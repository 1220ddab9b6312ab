package inspect

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"osimage/native"
	"osimage/osimage"
	"osimage/parallel"

	"github.com/alecthomas/kong"
)

type CLICmd struct {
	Scan   string `help:"Source folder to scan" default:"."`
	Frames bool   `help:"Also report the display time of every frame" default:"false"`
	Codecs bool   `help:"Report which codecs images can be written with and exit" default:"false"`
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
	return nil
}

func (c *CLICmd) Run(worker parallel.WorkerFunc, wait parallel.WaitFunc) error {
	if c.Codecs {
		for _, codec := range native.Codecs() {
			slog.Info("codec", "name", codec, "available", native.AvailableCodec(codec))
		}
		wait(true)
		return nil
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

				if err := c.report(logger, filePath); err != nil {
					errCount.Add(1)
					logger.Error("could not inspect image", "error", err)
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

func (c *CLICmd) report(logger *slog.Logger, filePath string) error {
	img, err := open(logger, filePath)
	if err != nil {
		return err
	}
	defer img.Close()

	logger.Info("image", "width", img.Width(), "height", img.Height(),
		"layout", img.Native().Layout(), "stride", img.Native().Stride(), "format", img.Format(), "frames", img.Frames())

	if c.Frames && img.Frames() > 1 {
		for i := range img.Frames() {
			d, err := img.FrameLength(i)
			if err != nil {
				return fmt.Errorf("could not read frame %d: %w", i, err)
			}
			logger.Info("frame", "index", i, "seconds", d)
		}
	}
	return nil
}

func open(logger *slog.Logger, filePath string) (*osimage.Image, error) {
	imgFile, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("could not open image: %w", err)
	}
	defer func() {
		if closeErr := imgFile.Close(); closeErr != nil {
			logger.Error("could not close image", "error", closeErr)
		}
	}()

	img, err := osimage.FromReader(imgFile, osimage.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("could not decode image: %w", err)
	}
	return img, nil
}
