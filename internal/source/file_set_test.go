package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("page.html", []byte("<p>one</p>"), 0)
	if id1 != 0 {
		t.Errorf("Expected first FileID to be 0, got %d", id1)
	}
	id2 := fs.Add("page.html", []byte("<p>two</p>"), 0)
	if id2 != 1 {
		t.Errorf("Expected second FileID to be 1, got %d", id2)
	}

	latestID, exists := fs.Latest("page.html")
	if !exists || latestID != id2 {
		t.Errorf("Expected latest ID to be %d, got %d (exists=%v)", id2, latestID, exists)
	}
	if got := string(fs.Get(id1).Content); got != "<p>one</p>" {
		t.Errorf("old version lost: %q", got)
	}
	if fs.Len() != 2 {
		t.Errorf("Expected 2 files, got %d", fs.Len())
	}
}

func TestGetUnknownID(t *testing.T) {
	fs := NewFileSet()
	if fs.Get(3) != nil {
		t.Fatal("expected nil for unknown file id")
	}
	start, end := fs.Resolve(Span{File: 3})
	if start != (LineCol{}) || end != (LineCol{}) {
		t.Fatalf("expected zero positions, got %v %v", start, end)
	}
}

func TestResolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("t.html", []byte("<div>\n  <a href=\"x\">\n</div>\n"))

	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{Line: 1, Col: 1}},
		{5, LineCol{Line: 1, Col: 6}},
		{6, LineCol{Line: 2, Col: 1}},
		{9, LineCol{Line: 2, Col: 4}},
		{21, LineCol{Line: 3, Col: 1}},
	}
	for _, tt := range tests {
		got, _ := fs.Resolve(Span{File: id, Start: tt.off, End: tt.off})
		if got != tt.want {
			t.Errorf("offset %d: got %+v, want %+v", tt.off, got, tt.want)
		}
	}
}

func TestLine(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("t.html", []byte("first\nsecond\nthird")))

	for lineNum, want := range map[uint32]string{0: "", 1: "first", 2: "second", 3: "third", 4: ""} {
		if got := f.Line(lineNum); got != want {
			t.Errorf("Line(%d) = %q, want %q", lineNum, got, want)
		}
	}
}

func TestSlice(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("t.html", []byte(`<a data-sly-attribute.href="${link}">`))
	if got := fs.Slice(Span{File: id, Start: 3, End: 27}); got != "data-sly-attribute.href=" {
		t.Fatalf("unexpected slice %q", got)
	}
	if got := fs.Slice(Span{File: id, Start: 3, End: 999}); got != "" {
		t.Fatalf("out of range slice must be empty, got %q", got)
	}
}

func TestNormalize(t *testing.T) {
	content, flags := Normalize([]byte("\xEF\xBB\xBF<p>\r\nCafe\u0301</p>"))
	if string(content) != "<p>\nCaf\u00e9</p>" {
		t.Fatalf("unexpected content %q", content)
	}
	want := FileHadBOM | FileNormalizedCRLF | FileNormalizedNFC
	if flags != want {
		t.Fatalf("flags = %08b, want %08b", flags, want)
	}

	plain, flags := Normalize([]byte("<p>ok</p>"))
	if string(plain) != "<p>ok</p>" || flags != 0 {
		t.Fatalf("plain content must be untouched, got %q flags=%d", plain, flags)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	if err := os.WriteFile(path, []byte("<p>\r\nhi</p>"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	fs := NewFileSetWithBase(dir)
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != "<p>\nhi</p>" {
		t.Errorf("CRLF not normalized: %q", f.Content)
	}
	if f.Flags&FileNormalizedCRLF == 0 {
		t.Errorf("expected FileNormalizedCRLF flag")
	}
	if got := f.Display(PathRelative, dir); got != "page.html" {
		t.Errorf("relative path = %q", got)
	}
	if got := f.Display(PathBase, ""); got != "page.html" {
		t.Errorf("basename = %q", got)
	}

	if _, err := fs.Load(filepath.Join(dir, "missing.html")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestNormalizeKeepsLoneCR(t *testing.T) {
	content, flags := Normalize([]byte("a\rb\r\n"))
	if string(content) != "a\rb\n" || flags != FileNormalizedCRLF {
		t.Fatalf("content %q flags %08b", content, flags)
	}
}

func TestRelativePathOutsideBaseFallsBackToAbsolute(t *testing.T) {
	tmp := t.TempDir()
	baseDir := filepath.Join(tmp, "base")
	target := filepath.Join(tmp, "other", "file.html")

	got, err := RelativePath(target, baseDir)
	if err != nil {
		t.Fatalf("RelativePath returned error: %v", err)
	}
	if want := normalizePath(target); got != want {
		t.Fatalf("expected absolute fallback %q, got %q", want, got)
	}
	if got, _ := RelativePath(filepath.Join(tmp, "templates", "page.html"), tmp); got != "templates/page.html" {
		t.Fatalf("expected relative path, got %q", got)
	}
}

func TestDisplayVirtualAndAuto(t *testing.T) {
	fs := NewFileSet()
	v := fs.Get(fs.AddVirtual("stdin.html", nil))
	if got := v.Display(PathAbsolute, ""); got != "stdin.html" {
		t.Fatalf("virtual file must keep its name, got %q", got)
	}
	long := "/very/long/absolute/path/to/some/templates/page.html"
	f := fs.Get(fs.Add(long, nil, 0))
	if got := f.Display(PathAuto, ""); got != "page.html" {
		t.Fatalf("auto on long absolute path = %q", got)
	}
	if got := fs.Get(fs.Add("t/p.html", nil, 0)).Display(PathAuto, ""); got != "t/p.html" {
		t.Fatalf("auto on short path = %q", got)
	}
}

func TestPositionWithoutNewlines(t *testing.T) {
	f := &File{}
	if got := f.Position(4); got != (LineCol{Line: 1, Col: 5}) {
		t.Fatalf("got %+v", got)
	}
}
