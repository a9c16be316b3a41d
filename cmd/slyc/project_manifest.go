package main

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const manifestName = "slyc.toml"

const noManifestMessage = "no slyc.toml found\nplease specify templates explicitly, e.g.:\n  slyc compile path/to/templates"

// projectManifest is a parsed slyc.toml together with where it was found.
type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
}

type projectConfig struct {
	Package struct {
		Name string `toml:"name"`
	} `toml:"package"`
	Compile struct {
		Templates      string `toml:"templates"`
		Jobs           int    `toml:"jobs"`
		MaxDiagnostics int    `toml:"max_diagnostics"`
		Cache          bool   `toml:"cache"`
	} `toml:"compile"`
	Render struct {
		Data string `toml:"data"`
	} `toml:"render"`
}

// manifestError prefixes every manifest problem with the file path.
type manifestError struct {
	path string
	msg  string
	err  error
}

func (e *manifestError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.path, e.msg, e.err)
	}
	return e.path + ": " + e.msg
}

func (e *manifestError) Unwrap() error { return e.err }

// findManifest walks from startDir up to the filesystem root.
func findManifest(startDir string) (string, bool, error) {
	dir, err := filepath.Abs(cmp.Or(startDir, "."))
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for prev := ""; dir != prev; prev, dir = dir, filepath.Dir(dir) {
		candidate := filepath.Join(dir, manifestName)
		_, err := os.Stat(candidate)
		switch {
		case err == nil:
			return candidate, true, nil
		case !errors.Is(err, fs.ErrNotExist):
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
	}
	return "", false, nil
}

func loadProjectManifest(startDir string) (*projectManifest, bool, error) {
	path, ok, err := findManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := loadProjectConfig(path)
	if err != nil {
		return nil, true, err
	}
	return &projectManifest{Path: path, Root: filepath.Dir(path), Config: cfg}, true, nil
}

func loadProjectConfig(path string) (projectConfig, error) {
	var cfg projectConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return projectConfig{}, &manifestError{path: path, msg: "failed to parse TOML", err: err}
	}
	var unknown []string
	for _, k := range meta.Undecoded() {
		unknown = append(unknown, k.String())
	}
	checks := []struct {
		bad bool
		msg string
	}{
		{!meta.IsDefined("package"), "missing [package]"},
		{strings.TrimSpace(cfg.Package.Name) == "", "missing [package].name"},
		{len(unknown) > 0, "unknown keys: " + strings.Join(unknown, ", ")},
		{cfg.Compile.Jobs < 0, "[compile].jobs must not be negative"},
		{cfg.Compile.MaxDiagnostics < 0, "[compile].max_diagnostics must not be negative"},
	}
	for _, c := range checks {
		if c.bad {
			return projectConfig{}, &manifestError{path: path, msg: c.msg}
		}
	}
	return cfg, nil
}

// resolve joins a slash-separated manifest path onto the manifest root.
func (m *projectManifest) resolve(rel string) string {
	return filepath.Join(m.Root, filepath.FromSlash(rel))
}

// templatesDir resolves [compile].templates; the root itself when unset.
func (m *projectManifest) templatesDir() (string, error) {
	dir := m.resolve(cmp.Or(strings.TrimSpace(m.Config.Compile.Templates), "."))
	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", &manifestError{path: m.Path, msg: "[compile].templates path does not exist: " + dir}
	case err != nil:
		return "", &manifestError{path: m.Path, msg: "failed to stat [compile].templates", err: err}
	case !info.IsDir():
		return "", &manifestError{path: m.Path, msg: "[compile].templates must be a directory"}
	}
	return dir, nil
}

// dataPath resolves [render].data; empty when unset.
func (m *projectManifest) dataPath() string {
	if rel := strings.TrimSpace(m.Config.Render.Data); rel != "" {
		return m.resolve(rel)
	}
	return ""
}
