package yarn

// file error.go contains the error taxonomy for source processing:
// TokeniserError (lexer.go), ParseError, CompileError, and RuntimeError.
// Each has a one-line Error(); ParseError additionally offers FullMessage,
// a cursor-annotated rendering of the offending source line. There is no
// separate short/long message pair.

import (
	"fmt"
	"strings"

	"github.com/dekarrin/rosed"
)

const errorWrapWidth = 76

// ParseError is raised for an unexpected token or a missing required
// clause during parsing.
type ParseError struct {
	NodeName   string
	Line       int
	Token      string
	Expected   string
	Message    string
	SourceLine string
	Column     int
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("parse error in node %q, line %d: %s", e.NodeName, e.Line, e.Message)
	if e.Expected != "" {
		msg += fmt.Sprintf(" (expected %s, got %q)", e.Expected, e.Token)
	}
	return msg
}

// FullMessage renders the error together with the offending source line and
// a cursor beneath the offending column, word-wrapped the way the rest of
// the engine's diagnostics are.
func (e *ParseError) FullMessage() string {
	base := e.Error()
	if e.SourceLine == "" {
		return rosed.Edit(base).Wrap(errorWrapWidth).String()
	}
	cursor := strings.Repeat(" ", max0(e.Column-1)) + "^"
	return rosed.Edit(e.SourceLine + "\n" + cursor + "\n" + base).Wrap(errorWrapWidth).String()
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// CompileError is raised while lowering a parsed Node to bytecode: a
// duplicate node name, a duplicate string-table key, an invalid
// compound-assignment operator, or an unhandled statement or expression
// type. Jump labels are not checked for resolution after emission, and
// special commands are not validated.
type CompileError struct {
	NodeName string
	Message  string
}

func (e *CompileError) Error() string {
	if e.NodeName == "" {
		return fmt.Sprintf("compile error: %s", e.Message)
	}
	return fmt.Sprintf("compile error in node %q: %s", e.NodeName, e.Message)
}

// LoadError is raised by the loader for a malformed container or unknown
// format.
type LoadError struct {
	File    string
	Node    string
	Message string
}

func (e *LoadError) Error() string {
	switch {
	case e.File != "" && e.Node != "":
		return fmt.Sprintf("load error in %s (node %q): %s", e.File, e.Node, e.Message)
	case e.File != "":
		return fmt.Sprintf("load error in %s: %s", e.File, e.Message)
	default:
		return fmt.Sprintf("load error: %s", e.Message)
	}
}

// RuntimeErrorKind classifies a RuntimeError for host-side handling: only
// ErrMissingVariable is recoverable (the VM substitutes Null and keeps
// running); every other kind is fatal and stops the VM.
type RuntimeErrorKind int

const (
	ErrMissingVariable RuntimeErrorKind = iota
	ErrMissingNode
	ErrMissingLabel
	ErrMissingFunction
	ErrArityMismatch
	ErrTypeError
	ErrStackUnderflow
)

func (k RuntimeErrorKind) String() string {
	switch k {
	case ErrMissingVariable:
		return "missing variable"
	case ErrMissingNode:
		return "missing node"
	case ErrMissingLabel:
		return "missing label"
	case ErrMissingFunction:
		return "missing function"
	case ErrArityMismatch:
		return "arity mismatch"
	case ErrTypeError:
		return "type error"
	case ErrStackUnderflow:
		return "stack underflow"
	default:
		return "unknown runtime error"
	}
}

// RuntimeError is raised during VM execution.
type RuntimeError struct {
	Kind     RuntimeErrorKind
	NodeName string
	Message  string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error (%s) in node %q: %s", e.Kind, e.NodeName, e.Message)
}

// Fatal reports whether this error must stop the VM. Only a missing
// variable read is recoverable.
func (e *RuntimeError) Fatal() bool {
	return e.Kind != ErrMissingVariable
}
