package naming

import (
	"fmt"
	"path/filepath"
	"sync"
)

// Claims hands out sheet paths to source videos for one batch run.
// clip.mkv and clip.mp4 in the same directory both map to clip.jpg; the
// first source keeps it and later ones get "clip - dup1.jpg", "clip -
// dup2.jpg" and so on. Safe for concurrent use.
type Claims struct {
	mu      sync.Mutex
	bySheet map[string]string // sheet → source writing it
	bySrc   map[string]string // source → sheet it was given
	nextDup map[string]int    // unsuffixed sheet → next dup number to try
}

// NewClaims returns an empty claim set.
func NewClaims() *Claims {
	return &Claims{
		bySheet: make(map[string]string),
		bySrc:   make(map[string]string),
		nextDup: make(map[string]int),
	}
}

// Claim returns the sheet path source should write, given the path it would
// naturally get. A source asking twice gets the same answer. The second
// return value reports whether the result differs from sheet.
func (c *Claims) Claim(source, sheet string) (string, bool) {
	source, sheet = filepath.Clean(source), filepath.Clean(sheet)

	c.mu.Lock()
	defer c.mu.Unlock()

	if got, ok := c.bySrc[source]; ok {
		return got, got != sheet
	}
	got := sheet
	if _, taken := c.bySheet[sheet]; taken {
		got = c.freeDup(sheet)
	}
	c.bySrc[source] = got
	c.bySheet[got] = source
	return got, got != sheet
}

// freeDup finds the lowest unclaimed dup sheet for sheet. Callers hold mu.
func (c *Claims) freeDup(sheet string) string {
	dir, stem := filepath.Dir(sheet), Stem(sheet)
	n := max(c.nextDup[sheet], 1)
	for {
		candidate := filepath.Join(dir, fmt.Sprintf("%s - dup%d%s", stem, n, SheetExt))
		if _, taken := c.bySheet[candidate]; !taken {
			c.nextDup[sheet] = n + 1
			return candidate
		}
		n++
	}
}
