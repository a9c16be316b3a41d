package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [path|name]",
		Short: "Initialize a new slyc project",
		Long: `Initialize a new slyc project by creating a project manifest (slyc.toml),
an example template and its data file. If [path|name] is omitted, initializes
the current directory. If a non-existing name is provided, a directory will be
created.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInit,
	}
}

// runInit creates slyc.toml, templates/index.html and data.yaml in the target
// directory. Existing template and data files are left alone; an existing
// manifest is an error.
func runInit(cmd *cobra.Command, args []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	target := wd
	if len(args) == 1 && args[0] != "." {
		target = args[0]
		if !filepath.IsAbs(target) {
			target = filepath.Join(wd, target)
		}
	}

	if st, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err = os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	name := strings.TrimSpace(filepath.Base(target))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "slyc-project"
	}

	manifestPath := filepath.Join(target, manifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("project already initialized: %s exists", manifestPath)
	}
	if err := os.WriteFile(manifestPath, []byte(buildDefaultManifest(name)), 0o600); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	created := []string{manifestName}
	files := []struct {
		rel, content string
	}{
		{filepath.Join("templates", "index.html"), defaultTemplate},
		{"data.yaml", defaultData},
	}
	for _, f := range files {
		path := filepath.Join(target, f.rel)
		if _, err := os.Stat(path); err == nil {
			created = append(created, filepath.ToSlash(f.rel)+" (existing)")
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(f.content), 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.rel, err)
		}
		created = append(created, filepath.ToSlash(f.rel))
	}

	rel := target
	if r, err := filepath.Rel(wd, target); err == nil {
		rel = r
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Initialized slyc project in %s\n", rel)
	for _, c := range created {
		fmt.Fprintf(out, "  - %s\n", c)
	}
	return nil
}

// buildDefaultManifest returns a minimal slyc.toml for a project called name.
func buildDefaultManifest(name string) string {
	return fmt.Sprintf(`# slyc project manifest
[package]
name = %q

[compile]
templates = "templates"
jobs = 0
max_diagnostics = 100
cache = false

[render]
data = "data.yaml"
`, name)
}

const defaultTemplate = `<!DOCTYPE html>
<html>
<body>
  <h1>${title}</h1>
  <button data-sly-attribute.disabled="${locked}">Save</button>
  <input data-sly-attribute="${inputAttrs}">
</body>
</html>
`

const defaultData = `title: Hello from slyc
locked: true
inputAttrs:
  type: text
  placeholder: Your name
  required: true
`
