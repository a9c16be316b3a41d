package directive

import (
	"html"

	"slyc/internal/command"
	"slyc/internal/expr"
	"slyc/internal/source"
)

// NativeAttr is a plain attribute of an element.
type NativeAttr struct {
	Name     string
	Value    string
	HasValue bool // false for bare attributes such as <button disabled>
	Span     source.Span
}

// Call is one directive occurrence on an element.
type Call struct {
	Sig    Signature
	Expr   *expr.Expression
	Span   source.Span
	Plugin Plugin // nil when no plugin handles the call
}

// Element is the attribute phase input of one start tag.
type Element struct {
	Tag   string
	Attrs []NativeAttr
	Calls []Call
	Span  source.Span
}

// ValueWriter writes ="value" for a native attribute.
type ValueWriter func(s command.Stream, attr *NativeAttr)

// RunnerConfig configures the element lifecycle.
type RunnerConfig struct {
	// WriteValue writes native attribute values. Defaults to WriteEscapedValue.
	WriteValue ValueWriter
}

// RunResult describes one attribute phase.
type RunResult struct {
	Plugins int // plugins that took part
	Dropped int // calls without a valid plugin
	Attrs   int
}

// Runner drives the attribute lifecycle of elements.
type Runner struct {
	config RunnerConfig
}

// NewRunner creates a directive runner.
func NewRunner(config RunnerConfig) *Runner {
	if config.WriteValue == nil {
		config.WriteValue = WriteEscapedValue
	}
	return &Runner{config: config}
}

// WriteEscapedValue writes the value verbatim, HTML-escaped.
func WriteEscapedValue(s command.Stream, attr *NativeAttr) {
	s.Write(command.Text(`="` + html.EscapeString(attr.Value) + `"`))
}

// Run emits the attributes of el with all its directives applied. The caller
// writes "<tag" before and ">" after.
func (r *Runner) Run(s command.Stream, el *Element) RunResult {
	var res RunResult
	plugins := make([]Plugin, 0, len(el.Calls))
	for i := range el.Calls {
		p := el.Calls[i].Plugin
		if p == nil {
			res.Dropped++
			continue
		}
		if v, ok := p.(Validator); ok && !v.Valid() {
			res.Dropped++
			continue
		}
		plugins = append(plugins, p)
	}
	res.Plugins = len(plugins)

	for _, p := range plugins {
		p.BeforeAttributes(s)
	}

	for i := range el.Attrs {
		attr := &el.Attrs[i]
		res.Attrs++
		for _, p := range plugins {
			p.BeforeAttribute(s, attr.Name)
		}
		s.Write(command.Text(" " + attr.Name))
		value := expr.String(attr.Value)
		for _, p := range plugins {
			p.BeforeAttributeValue(s, attr.Name, value)
		}
		if attr.HasValue {
			r.config.WriteValue(s, attr)
		}
		for _, p := range plugins {
			p.AfterAttributeValue(s, attr.Name)
		}
		for _, p := range plugins {
			p.AfterAttribute(s, attr.Name)
		}
	}

	// каждый вызов видят все плагины элемента, включая его собственный
	for i := range el.Calls {
		c := &el.Calls[i]
		for _, p := range plugins {
			p.OnPluginCall(s, c.Sig, c.Expr)
		}
	}

	for _, p := range plugins {
		p.AfterAttributes(s)
	}
	return res
}
