package buildpipeline

import (
	"path/filepath"
	"slices"
	"strings"

	"slyc/internal/driver"
)

// ProgressFiles lists the display names of the templates Compile will visit
// for target, sorted and without repeats. A single file yields itself.
func ProgressFiles(target, baseDir string, isDir bool) ([]string, error) {
	files := []string{target}
	if isDir {
		var err error
		if files, err = driver.ListTemplates(target); err != nil {
			return nil, err
		}
	}
	return newNamer(baseDir).names(files), nil
}

// namer turns template paths into the names shown in progress events:
// slash-separated and relative to base when they lie under it.
type namer struct{ base string }

func newNamer(baseDir string) namer {
	base := strings.TrimSpace(baseDir)
	if abs, err := filepath.Abs(base); base != "" && err == nil {
		base = abs
	}
	return namer{base: base}
}

func (n namer) name(file string) string {
	p := filepath.Clean(file)
	if n.base == "" {
		return filepath.ToSlash(p)
	}
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	rel, err := filepath.Rel(n.base, p)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

func (n namer) names(files []string) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		if f != "" {
			out = append(out, n.name(f))
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
