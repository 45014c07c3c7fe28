package pipeline

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Discover walks dir and returns every allow-listed video, sorted
// lexicographically for a deterministic processing order. When recursive
// is false only dir's own entries are considered.
func Discover(dir string, recursive bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if IsVideoFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// ExpandInputs turns command-line inputs into the list of videos to
// process. Directories are expanded with [Discover]. Anything else is kept
// verbatim, so a misnamed or missing file is reported by the generator
// rather than silently dropped. Duplicates are removed, keeping the first
// occurrence.
func ExpandInputs(inputs []string, recursive bool) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil || !info.IsDir() {
			add(in)
			continue
		}
		files, err := Discover(in, recursive)
		if err != nil {
			return nil, fmt.Errorf("discover %s: %w", in, err)
		}
		for _, f := range files {
			add(f)
		}
	}
	return out, nil
}
