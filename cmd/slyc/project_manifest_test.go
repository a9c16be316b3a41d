package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadProjectManifestFromSubdir(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, manifestName), `
[package]
name = "site"

[compile]
templates = "tpl"
jobs = 3

[render]
data = "data/site.yaml"
`)
	sub := filepath.Join(root, "tpl", "nested")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	m, found, err := loadProjectManifest(sub)
	if err != nil || !found {
		t.Fatalf("found=%v err=%v", found, err)
	}
	if m.Config.Package.Name != "site" || m.Config.Compile.Jobs != 3 {
		t.Fatalf("unexpected config: %+v", m.Config)
	}
	dir, err := m.templatesDir()
	if err != nil {
		t.Fatalf("templatesDir: %v", err)
	}
	if want := filepath.Join(m.Root, "tpl"); dir != want {
		t.Fatalf("templatesDir = %q, want %q", dir, want)
	}
	if want := filepath.Join(m.Root, "data", "site.yaml"); m.dataPath() != want {
		t.Fatalf("dataPath = %q, want %q", m.dataPath(), want)
	}
}

func TestLoadProjectManifestNotFound(t *testing.T) {
	_, found, err := loadProjectManifest(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Skip("a slyc.toml exists above the temp dir")
	}
}

func TestLoadProjectConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"missing package", "[compile]\njobs = 1\n", "missing [package]"},
		{"missing name", "[package]\n", "missing [package].name"},
		{"unknown key", "[package]\nname = \"x\"\n[compile]\nworkers = 2\n", "unknown keys: compile.workers"},
		{"negative jobs", "[package]\nname = \"x\"\n[compile]\njobs = -1\n", "jobs must not be negative"},
		{"bad toml", "[package\n", "failed to parse TOML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), manifestName)
			writeFile(t, path, tt.content)
			_, err := loadProjectConfig(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestTemplatesDirMustExist(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, manifestName), "[package]\nname = \"x\"\n[compile]\ntemplates = \"nope\"\n")
	m, _, err := loadProjectManifest(root)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.templatesDir(); err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("err = %v", err)
	}
}
