package buildpipeline

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"slyc/internal/command"
)

// EmitKind selects how compiled programs are written.
type EmitKind string

const (
	EmitNone EmitKind = "none"
	// EmitDump writes the indented instruction listing.
	EmitDump EmitKind = "dump"
	// EmitJSON writes one JSON document with every program.
	EmitJSON EmitKind = "json"
)

// ParseEmitKind parses a --emit value.
func ParseEmitKind(s string) (EmitKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return EmitNone, nil
	case "dump":
		return EmitDump, nil
	case "json":
		return EmitJSON, nil
	}
	return EmitNone, fmt.Errorf("unknown emit kind %q (want none, dump or json)", s)
}

type programJSON struct {
	Path   string      `json:"path"`
	Hash   string      `json:"hash"`
	Instrs []instrJSON `json:"instrs"`
}

type instrJSON struct {
	Kind       string `json:"kind"`
	Var        string `json:"var,omitempty"`
	Expr       string `json:"expr,omitempty"`
	Guard      string `json:"guard,omitempty"`
	Negate     bool   `json:"negate,omitempty"`
	Collection string `json:"collection,omitempty"`
	Item       string `json:"item,omitempty"`
	Index      string `json:"index,omitempty"`
	Text       string `json:"text,omitempty"`
}

// Emit writes every compiled program of result in the given form and records
// StageEmit. Templates without a program are skipped.
func Emit(w io.Writer, result *CompileResult, kind EmitKind) error {
	if kind == EmitNone || result == nil {
		return nil
	}
	start := time.Now()
	defer func() { result.Timings.Set(StageEmit, time.Since(start)) }()

	switch kind {
	case EmitDump:
		multi := len(result.Results) > 1
		for i := range result.Results {
			prog := result.Results[i].Program
			if prog == nil {
				continue
			}
			if multi {
				if _, err := fmt.Fprintf(w, "== %s ==\n", prog.Path); err != nil {
					return err
				}
			}
			if err := command.Dump(w, prog.Instrs); err != nil {
				return err
			}
		}
		return nil
	case EmitJSON:
		out := make([]programJSON, 0, len(result.Results))
		for i := range result.Results {
			if prog := result.Results[i].Program; prog != nil {
				out = append(out, programToJSON(prog))
			}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	return fmt.Errorf("unsupported emit kind %q", kind)
}

func programToJSON(prog *command.Program) programJSON {
	p := programJSON{
		Path:   prog.Path,
		Hash:   hex.EncodeToString(prog.Hash[:]),
		Instrs: make([]instrJSON, 0, len(prog.Instrs)),
	}
	for i := range prog.Instrs {
		in := &prog.Instrs[i]
		j := instrJSON{
			Kind:       in.Kind.String(),
			Var:        in.Var,
			Guard:      in.Guard,
			Negate:     in.Negate,
			Collection: in.Collection,
			Item:       in.Item,
			Index:      in.Index,
			Text:       in.Text,
		}
		if in.Expr != nil {
			j.Expr = in.Expr.String()
		}
		p.Instrs = append(p.Instrs, j)
	}
	return p
}
