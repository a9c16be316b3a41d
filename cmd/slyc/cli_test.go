package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--color", "off"}, args...))
	err = root.Execute()
	return out.String(), errOut.String(), err
}

func TestCompileEmitDump(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, filepath.Join(dir, "a.html"), `<i>${v}</i>`)

	stdout, stderr, err := runCLI(t, "compile", "--emit", "dump", "--ui", "off", "a.html")
	if err != nil {
		t.Fatalf("compile: %v\nstderr: %s", err, stderr)
	}
	if !strings.Contains(stdout, `bind var_text0 = xss(v, context="text")`) {
		t.Fatalf("dump missing bind:\n%s", stdout)
	}
	if !strings.Contains(stderr, "compiled 1 template(s): 0 error(s), 0 warning(s)") {
		t.Fatalf("missing summary:\n%s", stderr)
	}
}

func TestCompileReportsDiagnostics(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, filepath.Join(dir, "bad.html"), `<p>${a ||}</p>`)

	stdout, _, err := runCLI(t, "compile", "--format", "short", "--ui", "off", "bad.html")
	if !errors.Is(err, errDiagnostics) {
		t.Fatalf("err = %v, want errDiagnostics", err)
	}
	if !strings.Contains(stdout, "bad.html:1:") {
		t.Fatalf("short diagnostics missing location:\n%s", stdout)
	}
}

func TestCompileUsesManifest(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, filepath.Join(dir, manifestName), "[package]\nname = \"site\"\n[compile]\ntemplates = \"pages\"\n")
	writeFile(t, filepath.Join(dir, "pages", "one.html"), `<b>one</b>`)
	writeFile(t, filepath.Join(dir, "pages", "two.html"), `<b>${two}</b>`)

	_, stderr, err := runCLI(t, "compile", "--ui", "off")
	if err != nil {
		t.Fatalf("compile: %v\n%s", err, stderr)
	}
	if !strings.Contains(stderr, "compiled 2 template(s)") {
		t.Fatalf("unexpected summary:\n%s", stderr)
	}
}

func TestCompileWithoutManifestOrArgs(t *testing.T) {
	t.Chdir(t.TempDir())
	_, _, err := runCLI(t, "compile")
	if err == nil {
		t.Fatal("expected error")
	}
	if _, statErr := os.Stat(filepath.Join("..", manifestName)); statErr == nil {
		t.Skip("a slyc.toml exists above the temp dir")
	}
	if !strings.Contains(err.Error(), "no slyc.toml found") {
		t.Fatalf("err = %v", err)
	}
}

func TestRenderWithDataFlag(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, filepath.Join(dir, "btn.html"), `<button data-sly-attribute.disabled="${locked}">Save</button>`)
	writeFile(t, filepath.Join(dir, "data.yaml"), "locked: true\n")

	stdout, stderr, err := runCLI(t, "render", "--data", "data.yaml", "btn.html")
	if err != nil {
		t.Fatalf("render: %v\n%s", err, stderr)
	}
	if stdout != `<button disabled>Save</button>` {
		t.Fatalf("stdout = %q", stdout)
	}
}

func TestRenderToFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, filepath.Join(dir, "t.html"), `<p>${msg}</p>`)
	writeFile(t, filepath.Join(dir, "d.json"), `{"msg": "a < b"}`)

	if _, stderr, err := runCLI(t, "render", "--data", "d.json", "-o", "out.html", "t.html"); err != nil {
		t.Fatalf("render: %v\n%s", err, stderr)
	}
	got, err := os.ReadFile(filepath.Join(dir, "out.html"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `<p>a &lt; b</p>` {
		t.Fatalf("out.html = %q", got)
	}
}

func TestInitThenRender(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	stdout, _, err := runCLI(t, "init", "demo")
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if !strings.Contains(stdout, "Initialized slyc project in demo") {
		t.Fatalf("init output:\n%s", stdout)
	}
	if _, _, err := runCLI(t, "init", "demo"); err == nil {
		t.Fatal("second init must fail")
	}

	t.Chdir(filepath.Join(dir, "demo"))
	if _, stderr, err := runCLI(t, "compile", "--ui", "off"); err != nil {
		t.Fatalf("compile: %v\n%s", err, stderr)
	}
	out, stderr, err := runCLI(t, "render", filepath.Join("templates", "index.html"))
	if err != nil {
		t.Fatalf("render: %v\n%s", err, stderr)
	}
	for _, want := range []string{
		"<h1>Hello from slyc</h1>",
		"<button disabled>Save</button>",
		`placeholder="Your name"`,
		"required",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("render output missing %q:\n%s", want, out)
		}
	}
}

func TestVersionJSON(t *testing.T) {
	stdout, _, err := runCLI(t, "version", "--format", "json")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var payload versionPayload
	if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, stdout)
	}
	if payload.Tool != "slyc" || payload.Version == "" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if len(payload.Directives) == 0 {
		t.Fatal("expected registered directives")
	}
	if _, _, err := runCLI(t, "version", "--format", "xml"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestProgressUIMode(t *testing.T) {
	auto, err := readProgressUI("AUTO")
	if err != nil || auto != nil {
		t.Fatalf("auto = %v, %v", auto, err)
	}
	on, err := readProgressUI("on")
	if err != nil || on == nil || !*on {
		t.Fatalf("on = %v, %v", on, err)
	}
	if _, err := readProgressUI("sometimes"); err == nil {
		t.Fatal("expected error for invalid mode")
	}
	var buf bytes.Buffer
	if wantProgressUI(auto, &buf, false) {
		t.Fatal("auto mode must not draw into a buffer")
	}
	if wantProgressUI(on, &buf, true) {
		t.Fatal("quiet disables the progress view")
	}
	if !wantProgressUI(on, &buf, false) {
		t.Fatal("explicit on must win")
	}
}
