package sheet

import (
	"bufio"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
)

// Save JPEG-encodes img at quality and places it at path. The image is
// written to a temporary file in the same directory and renamed over path,
// so a failed save never leaves a truncated sheet behind. It returns the
// number of bytes written.
func Save(img image.Image, path string, quality int) (int64, error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrComposition, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err := jpeg.Encode(bw, img, &jpeg.Options{Quality: quality}); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("%w: encode %s: %v", ErrComposition, path, err)
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("%w: write %s: %v", ErrComposition, path, err)
	}
	info, err := tmp.Stat()
	if err != nil {
		tmp.Close()
		return 0, fmt.Errorf("%w: %v", ErrComposition, err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("%w: close %s: %v", ErrComposition, path, err)
	}
	// CreateTemp uses 0600; sheets are ordinary user files.
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrComposition, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrComposition, err)
	}
	committed = true
	return info.Size(), nil
}
