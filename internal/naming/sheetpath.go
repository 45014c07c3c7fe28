package naming

import (
	"path/filepath"
	"strings"
)

// SheetExt is the extension of every generated sheet.
const SheetExt = ".jpg"

// SheetPath returns the sheet path for source. Absolute sources get a
// sibling file; relative sources resolve into cwd, whatever directories the
// relative path names.
//
//	/media/tv/Show.S01E01.mkv, any cwd  → /media/tv/Show.S01E01.jpg
//	clips/holiday.mp4, cwd /home/me     → /home/me/holiday.jpg
func SheetPath(source, cwd string) string {
	dir := cwd
	if filepath.IsAbs(source) {
		dir = filepath.Dir(source)
	}
	return filepath.Join(dir, Stem(source)+SheetExt)
}

// Stem returns the base name of path without its final extension. A
// leading dot does not start an extension.
func Stem(path string) string {
	base := filepath.Base(path)
	if stem := strings.TrimSuffix(base, filepath.Ext(base)); stem != "" {
		return stem
	}
	return base
}
