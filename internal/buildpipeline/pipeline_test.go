package buildpipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeTemplate(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) OnEvent(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) final(file string) Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	var last Status
	for _, ev := range r.events {
		if ev.File == file {
			last = ev.Status
		}
	}
	return last
}

func TestCompileDirProgress(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "a.html", `<p data-sly-attribute.id="${id}">a</p>`)
	writeTemplate(t, dir, "nested/b.html", `<p>${x ||}</p>`)

	rec := &recorder{}
	res, err := Compile(context.Background(), &CompileRequest{
		TargetPath:    dir,
		BaseDir:       dir,
		Jobs:          2,
		EnableTimings: true,
		Progress:      rec,
	})
	if !errors.Is(err, ErrDiagnostics) {
		t.Fatalf("want ErrDiagnostics, got %v", err)
	}
	if len(res.Results) != 2 {
		t.Fatalf("results = %d", len(res.Results))
	}
	if got := rec.final("a.html"); got != StatusDone {
		t.Fatalf("a.html final status %q", got)
	}
	if got := rec.final("nested/b.html"); got != StatusError {
		t.Fatalf("nested/b.html final status %q", got)
	}
	if !res.Timings.Has(StageCompile) || !res.Timings.Has(StageValidate) {
		t.Fatal("stage timings missing")
	}
}

func TestCompileAllowDiagnosticsError(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplate(t, dir, "bad.html", `<p>${x ||}</p>`)
	res, err := Compile(context.Background(), &CompileRequest{TargetPath: path, AllowDiagnosticsError: true})
	if err != nil {
		t.Fatal(err)
	}
	if !res.HasErrors() {
		t.Fatal("errors expected in result")
	}
}

func TestCompileWarningsAsErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplate(t, dir, "warn.html", `<p data-sly-unknown="1">x</p>`)
	if _, err := Compile(context.Background(), &CompileRequest{TargetPath: path}); err != nil {
		t.Fatalf("warnings alone must pass: %v", err)
	}
	_, err := Compile(context.Background(), &CompileRequest{TargetPath: path, WarningsAsErrors: true})
	if !errors.Is(err, ErrDiagnostics) {
		t.Fatalf("want ErrDiagnostics, got %v", err)
	}
}

func TestCompileMissingTarget(t *testing.T) {
	if _, err := Compile(context.Background(), &CompileRequest{TargetPath: filepath.Join(t.TempDir(), "nope.html")}); err == nil {
		t.Fatal("expected error")
	}
	if _, err := Compile(context.Background(), &CompileRequest{}); err == nil {
		t.Fatal("expected error for empty target")
	}
}

func TestEmitDumpAndJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplate(t, dir, "t.html", `<i>${v}</i>`)
	res, err := Compile(context.Background(), &CompileRequest{TargetPath: path})
	if err != nil {
		t.Fatal(err)
	}

	var dump bytes.Buffer
	if err := Emit(&dump, &res, EmitDump); err != nil {
		t.Fatal(err)
	}
	want := `text "<i>"
bind var_text0 = xss(v, context="text")
  out var_text0
end bind
text "</i>"
`
	if diff := cmp.Diff(want, dump.String()); diff != "" {
		t.Fatalf("dump (-want +got):\n%s", diff)
	}
	if !res.Timings.Has(StageEmit) {
		t.Fatal("emit timing missing")
	}

	var js bytes.Buffer
	if err := Emit(&js, &res, EmitJSON); err != nil {
		t.Fatal(err)
	}
	var decoded []programJSON
	if err := json.Unmarshal(js.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded) != 1 || len(decoded[0].Instrs) != 5 || decoded[0].Instrs[1].Kind != "VarBind" {
		t.Fatalf("unexpected json: %s", js.String())
	}
}

func TestParseEmitKind(t *testing.T) {
	for in, want := range map[string]EmitKind{"": EmitNone, "DUMP": EmitDump, "json": EmitJSON} {
		got, err := ParseEmitKind(in)
		if err != nil || got != want {
			t.Errorf("ParseEmitKind(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseEmitKind("llvm"); err == nil {
		t.Fatal("expected error")
	}
}

func TestRenderWithData(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplate(t, dir, "page.html", `<button data-sly-attribute.disabled="${off}">${label}</button>`)
	data := writeTemplate(t, dir, "data.yaml", "off: true\nlabel: Save & exit\n")

	var out strings.Builder
	_, err := Render(context.Background(), &RenderRequest{
		CompileRequest: CompileRequest{TargetPath: path},
		DataPath:       data,
		Out:            &out,
	})
	if err != nil {
		t.Fatal(err)
	}
	if want := `<button disabled>Save &amp; exit</button>`; out.String() != want {
		t.Fatalf("got %q, want %q", out.String(), want)
	}
}

func TestRenderRejectsDirectory(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "a.html", `a`)
	writeTemplate(t, dir, "b.html", `b`)
	var out strings.Builder
	if _, err := Render(context.Background(), &RenderRequest{CompileRequest: CompileRequest{TargetPath: dir}, Out: &out}); err == nil {
		t.Fatal("expected error")
	}
}

func TestNamerNames(t *testing.T) {
	base := t.TempDir()
	got := newNamer(base).names([]string{
		filepath.Join(base, "z.html"),
		filepath.Join(base, "a", "b.html"),
		filepath.Join(base, "z.html"),
		"",
	})
	if diff := cmp.Diff([]string{"a/b.html", "z.html"}, got); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestTimingsOrderAndPresence(t *testing.T) {
	var tm Timings
	tm.Add(StageRender, 2*time.Millisecond)
	tm.Set(StageLoad, time.Millisecond)
	tm.Add(StageRender, time.Millisecond)
	tm.Set(Stage(200), time.Hour)

	var got []string
	tm.Each(func(s Stage, d time.Duration) {
		got = append(got, fmt.Sprintf("%s=%s", s, d))
	})
	if diff := cmp.Diff([]string{"load=1ms", "render=3ms"}, got); diff != "" {
		t.Fatalf("timings mismatch (-want +got):\n%s", diff)
	}
	if tm.Has(StageCompile) || tm.Duration(StageCompile) != 0 {
		t.Fatal("compile must be absent")
	}
	if !(Event{Status: StatusError}).Finished() || (Event{Status: StatusWorking}).Finished() {
		t.Fatal("Finished mismatch")
	}
}
