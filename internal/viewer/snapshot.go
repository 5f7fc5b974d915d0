package viewer

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/gogpu/sdfplay"
)

// PNGSnapshots returns a SnapshotFunc that writes frame-NNNNNN.png files
// into dir, creating it on first use.
func PNGSnapshots(dir string) SnapshotFunc {
	return func(frame uint64, img *image.RGBA) error {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		path := filepath.Join(dir, fmt.Sprintf("frame-%06d.png", frame))
		if err := SavePNG(path, img); err != nil {
			return err
		}
		sdfplay.Logger().Debug("viewer: snapshot written", "path", path)
		return nil
	}
}

// SavePNG encodes img to path.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
