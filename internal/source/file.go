package source

import (
	"path/filepath"
	"sort"
)

// FileID indexes a File inside its FileSet.
type FileID uint32

// FileFlags record what happened to a file on load.
type FileFlags uint8

const (
	FileVirtual        FileFlags = 1 << iota // added from memory: tests, stdin
	FileHadBOM                               // leading UTF-8 BOM stripped
	FileNormalizedCRLF                       // \r\n folded to \n
	FileNormalizedNFC                        // rewritten into Unicode NFC
)

// File is one template as the compiler sees it, after normalization.
type File struct {
	ID      FileID
	Path    string // slash-separated, cleaned
	Content []byte
	LineIdx []uint32 // offsets of '\n' bytes
	Hash    [32]byte // sha256 of Content
	Flags   FileFlags
}

// LineCol is a 1-based position; Col counts bytes.
type LineCol struct {
	Line uint32
	Col  uint32
}

// Position converts a byte offset into a line and column.
func (f *File) Position(off uint32) LineCol {
	// число переводов строки строго до off = номер строки с нуля
	n := sort.Search(len(f.LineIdx), func(i int) bool { return f.LineIdx[i] >= off })
	var lineStart uint32
	if n > 0 {
		lineStart = f.LineIdx[n-1] + 1
	}
	return LineCol{Line: uint32(n) + 1, Col: off - lineStart + 1}
}

// Line returns line n (1-based) without its newline, or "" when out of range.
func (f *File) Line(n uint32) string {
	if n == 0 || int(n) > len(f.LineIdx)+1 {
		return ""
	}
	start := 0
	if n > 1 {
		start = int(f.LineIdx[n-2]) + 1
	}
	end := len(f.Content)
	if int(n) <= len(f.LineIdx) {
		end = int(f.LineIdx[n-1])
	}
	if start > end {
		return ""
	}
	return string(f.Content[start:end])
}

// PathStyle selects how Display prints a file path.
type PathStyle uint8

const (
	PathAuto     PathStyle = iota // as given; basename for long absolute paths
	PathAbsolute
	PathRelative // to the FileSet base dir; absolute when outside it
	PathBase
)

// Display renders the path of f in style. Virtual files keep their name
// unless PathBase is asked for.
func (f *File) Display(style PathStyle, baseDir string) string {
	if f.Flags&FileVirtual != 0 && style != PathBase {
		return f.Path
	}
	switch style {
	case PathAbsolute:
		if abs, err := AbsolutePath(f.Path); err == nil {
			return abs
		}
	case PathRelative:
		if rel, err := RelativePath(f.Path, baseDir); err == nil {
			return rel
		}
	case PathBase:
		return filepath.Base(f.Path)
	case PathAuto:
		if len(f.Path) >= 40 && filepath.IsAbs(f.Path) {
			return filepath.Base(f.Path)
		}
	}
	return f.Path
}
