package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"osimage/native"
	"osimage/osimage"
	"osimage/pixbuf"
)

// rawCodec selects a dump of the canonical pixels instead of an encoded file.
const rawCodec = "raw"

func destName(srcName, ext string) string {
	oldExt := filepath.Ext(srcName)
	return fmt.Sprintf("%s.%s", srcName[:len(srcName)-len(oldExt)], ext)
}

// save writes img into destDir, either as the canonical pixel dump
// (name.gray8, name.rgb24, name.rgba32) or encoded with codec. A non-zero
// format overrides the detected one.
func save(img *osimage.Image, format pixbuf.Format, codec, destDir, srcName string) (string, error) {
	var forced *pixbuf.Buffer
	if format != 0 {
		forced = pixbuf.FromImage(img.Native().Image(), format)
	}

	if codec == rawCodec {
		buf := forced
		if buf == nil {
			buf = img.Pixels()
		}
		name := destName(srcName, buf.Format().String())
		return name, writeAtomic(destDir, name, func(w io.Writer) error {
			_, err := buf.WriteTo(w)
			return err
		})
	}

	if forced != nil {
		img = osimage.FromPixels(forced)
		defer img.Close()
	}

	c, err := native.ParseCodec(codec)
	if err != nil {
		return "", err
	}
	name := destName(srcName, c.String())
	return name, writeAtomic(destDir, name, func(w io.Writer) error {
		return img.Write(w, c)
	})
}

// writeAtomic writes through a temporary file renamed into place once write
// succeeded.
func writeAtomic(destDir, name string, write func(io.Writer) error) (err error) {
	outFile, err := os.CreateTemp(destDir, name)
	if err != nil {
		return fmt.Errorf("could not create temporary destination %q: %w", name, err)
	}
	canRename := false
	defer func() {
		if defErr := outFile.Sync(); defErr != nil && err == nil {
			err = fmt.Errorf("could not flush temporary destination %q: %w", name, defErr)
		}
		if defErr := outFile.Close(); defErr != nil && err == nil {
			err = fmt.Errorf("could not close temporary destination %q: %w", name, defErr)
		}

		if canRename && err == nil {
			if defErr := os.Rename(outFile.Name(), filepath.Join(destDir, name)); defErr != nil {
				err = fmt.Errorf("could not rename destination file %q: %w", name, defErr)
			}
			return
		}
		_ = os.Remove(outFile.Name())
	}()

	if err = write(outFile); err != nil {
		return fmt.Errorf("could not write destination %q: %w", name, err)
	}

	canRename = true
	return nil
}
