// Package display holds console presentation helpers: the startup banner,
// human-readable sizes, and the per-video extraction progress bar.
package display

import (
	"fmt"
)

// FormatBytes returns a human-readable size (B, KiB, MiB, GiB).
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit && exp < 2; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), [...]string{"KiB", "MiB", "GiB"}[exp])
}

// FormatGrid renders a grid shape as "ROWSxCOLS".
func FormatGrid(rows, cols int) string {
	return fmt.Sprintf("%dx%d", rows, cols)
}
