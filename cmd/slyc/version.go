package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"slyc/internal/directive"
	"slyc/internal/version"
)

type versionPayload struct {
	Tool       string   `json:"tool"`
	Version    string   `json:"version"`
	GitCommit  string   `json:"git_commit,omitempty"`
	BuildDate  string   `json:"build_date,omitempty"`
	Directives []string `json:"directives"`
}

func newVersionCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show slyc build information",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch strings.ToLower(format) {
			case "pretty":
				return renderVersionPretty(cmd.OutOrStdout())
			case "json":
				return renderVersionJSON(cmd.OutOrStdout())
			}
			return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "pretty", "output format (pretty|json)")
	return cmd
}

func renderVersionPretty(out io.Writer) error {
	if _, err := fmt.Fprintln(out, version.String()); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "directives: %s\n", strings.Join(directive.DefaultRegistry().Names(), ", "))
	return err
}

func renderVersionJSON(out io.Writer) error {
	payload := versionPayload{
		Tool:       "slyc",
		Version:    strings.TrimSpace(version.Version),
		GitCommit:  strings.TrimSpace(version.GitCommit),
		BuildDate:  strings.TrimSpace(version.BuildDate),
		Directives: directive.DefaultRegistry().Names(),
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
