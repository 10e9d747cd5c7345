package compiler

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Caret(t *testing.T) {
	_, err := Compile("1+;", Options{})
	want := "parse error: unexpected token \";\": expected a number, a variable or '('\n" +
		"  |> 1+;\n" +
		"  |>   ^"
	if err == nil || err.Error() != want {
		t.Errorf("error =\n%v\nwant\n%s", err, want)
	}
}

func TestError_CaretOnLaterLine(t *testing.T) {
	src := "a=1;\nb=;\nc=2;"
	_, err := Compile(src, Options{})
	var ce *Error
	if !errors.As(err, &ce) {
		t.Fatalf("expected *Error, got %v", err)
	}
	line, col := ce.snippet()
	if line != "b=;" || col != 2 {
		t.Errorf("snippet() = %q, %d; want \"b=;\", 2", line, col)
	}
	if ce.Column() != 8 {
		t.Errorf("Column() = %d, want 8", ce.Column())
	}
}

func TestError_CaretAtEndOfInput(t *testing.T) {
	_, err := Compile("1+2", Options{})
	want := "parse error: expected ';' after statement, got end of input\n" +
		"  |> 1+2\n" +
		"  |>    ^"
	if err == nil || err.Error() != want {
		t.Errorf("error =\n%v\nwant\n%s", err, want)
	}
}

func TestError_NoLocation(t *testing.T) {
	err := NewUsageError("expected exactly one source argument, got %d", 0)
	if got := err.Error(); got != "usage error: expected exactly one source argument, got 0" {
		t.Errorf("Error() = %q", got)
	}
	if KindOf(err) != UsageError {
		t.Errorf("KindOf = %v, want UsageError", KindOf(err))
	}

	ce := err.(*Error)
	if ce.Column() != 0 {
		t.Errorf("Column() = %d, want 0", ce.Column())
	}
}

func TestKindOf(t *testing.T) {
	if KindOf(nil) != 0 {
		t.Error("KindOf(nil) should be 0")
	}
	if KindOf(errors.New("plain")) != 0 {
		t.Error("KindOf(plain error) should be 0")
	}
	_, err := Lex("?")
	wrapped := fmt.Errorf("compiling: %w", err)
	if KindOf(wrapped) != TokenizeError {
		t.Errorf("KindOf(wrapped) = %v, want TokenizeError", KindOf(wrapped))
	}
}

func TestErrorKindStrings(t *testing.T) {
	tests := map[ErrorKind]string{
		UsageError:    "usage error",
		TokenizeError: "tokenize error",
		ParseError:    "parse error",
		CodegenError:  "codegen error",
		ErrorKind(0):  "error",
	}
	for k, want := range tests {
		if got := k.String(); got != want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", int(k), got, want)
		}
	}
}
