package compiler

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a compilation failure.
type ErrorKind int

const (
	// UsageError is a wrong invocation (argument count).
	UsageError ErrorKind = iota + 1
	// TokenizeError is an unrecognized character or malformed literal.
	TokenizeError
	// ParseError is an input that does not match the grammar.
	ParseError
	// CodegenError is a malformed tree reaching the code generator.
	// It indicates a parser defect, not bad input.
	CodegenError
)

func (k ErrorKind) String() string {
	switch k {
	case UsageError:
		return "usage error"
	case TokenizeError:
		return "tokenize error"
	case ParseError:
		return "parse error"
	case CodegenError:
		return "codegen error"
	default:
		return "error"
	}
}

// Error is returned by every stage of the pipeline.
type Error struct {
	Kind   ErrorKind
	Pos    int // 0-based byte offset, -1 when not tied to a location
	Msg    string
	Source string
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Kind, e.Msg)
	if e.Pos < 0 || e.Source == "" {
		return b.String()
	}

	line, col := e.snippet()
	fmt.Fprintf(&b, "\n  |> %s\n  |> %s^", line, strings.Repeat(" ", col))
	return b.String()
}

// snippet returns the source line holding Pos and the caret column within it.
func (e *Error) snippet() (string, int) {
	pos := min(e.Pos, len(e.Source))
	start := strings.LastIndexByte(e.Source[:pos], '\n') + 1
	end := len(e.Source)
	if nl := strings.IndexByte(e.Source[pos:], '\n'); nl >= 0 {
		end = pos + nl
	}
	return e.Source[start:end], pos - start
}

// Column returns the 1-based column of the error, or 0 if unknown.
func (e *Error) Column() int {
	if e.Pos < 0 {
		return 0
	}
	return e.Pos + 1
}

// KindOf reports the ErrorKind carried by err, or 0 if err is not an *Error.
func KindOf(err error) ErrorKind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return 0
}

// NewUsageError builds the error the drivers return for a wrong argument count.
func NewUsageError(format string, args ...any) error {
	return &Error{Kind: UsageError, Pos: -1, Msg: fmt.Sprintf(format, args...)}
}

func codegenErrorf(format string, args ...any) error {
	return &Error{Kind: CodegenError, Pos: -1, Msg: fmt.Sprintf(format, args...)}
}
