// Package directive implements the data-sly-* directives and the element
// lifecycle that drives them.
//
// A directive is a Plugin. The driver calls its lifecycle methods in a strict
// order for every element it sits on:
//
//	BeforeAttributes
//	for every native attribute:
//	    BeforeAttribute, BeforeAttributeValue, AfterAttributeValue, AfterAttribute
//	OnPluginCall for every directive of the element
//	AfterAttributes
//
// Plugins react by appending instructions to the shared command.Stream.
package directive

import (
	"slyc/internal/command"
	"slyc/internal/expr"
)

// Plugin receives the attribute lifecycle of one element.
type Plugin interface {
	BeforeAttributes(s command.Stream)
	BeforeAttribute(s command.Stream, name string)
	BeforeAttributeValue(s command.Stream, name string, value *expr.Node)
	AfterAttributeValue(s command.Stream, name string)
	AfterAttribute(s command.Stream, name string)
	AfterAttributes(s command.Stream)
	OnPluginCall(s command.Stream, sig Signature, e *expr.Expression)
}

// Validator is implemented by plugins that can reject themselves after
// construction. Invalid plugins are dropped before the lifecycle starts.
type Validator interface {
	Valid() bool
}

// Base implements Plugin with no-ops. Embed it and override what you need.
type Base struct{}

func (Base) BeforeAttributes(command.Stream) {}
func (Base) BeforeAttribute(command.Stream, string) {}
func (Base) BeforeAttributeValue(command.Stream, string, *expr.Node) {}
func (Base) AfterAttributeValue(command.Stream, string) {}
func (Base) AfterAttribute(command.Stream, string) {}
func (Base) AfterAttributes(command.Stream) {}
func (Base) OnPluginCall(command.Stream, Signature, *expr.Expression) {}
