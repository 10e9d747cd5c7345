package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"r9cc/pkg/asm"
	"r9cc/pkg/cpu"
)

// isolate keeps the tests away from any config file on the machine.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("R9CC_CONFIG", "")
	// t.Chdir requires Go 1.24; equivalent for the local toolchain.
	if wd, err := os.Getwd(); err != nil {
		t.Fatal(err)
	} else {
		t.Cleanup(func() { _ = os.Chdir(wd) })
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	return dir
}

func runMain(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Translates(t *testing.T) {
	isolate(t)
	code, stdout, stderr := runMain(t, "a=3;a+2;")
	if code != 0 {
		t.Fatalf("exit code %d, stderr:\n%s", code, stderr)
	}
	if !strings.HasPrefix(stdout, ".intel_syntax noprefix\n.global main\nmain:\n") {
		t.Errorf("unexpected header:\n%s", stdout)
	}
	if stderr != "" {
		t.Errorf("unexpected stderr: %q", stderr)
	}

	prog, err := asm.Assemble(stdout)
	if err != nil {
		t.Fatalf("output does not assemble: %v", err)
	}
	_, result, err := cpu.Execute(prog, cpu.Config{})
	if err != nil || result != 5 {
		t.Errorf("program returned %d, %v; want 5", result, err)
	}
}

func TestRun_UsageErrors(t *testing.T) {
	isolate(t)
	for _, args := range [][]string{nil, {"1;", "2;"}} {
		code, stdout, stderr := runMain(t, args...)
		if code != 1 {
			t.Errorf("args %q: exit code %d, want 1", args, code)
		}
		if stdout != "" {
			t.Errorf("args %q: stdout should be empty, got %q", args, stdout)
		}
		if !strings.Contains(stderr, "usage error") || !strings.Contains(stderr, "usage: r9cc") {
			t.Errorf("args %q: stderr = %q", args, stderr)
		}
	}
}

func TestRun_CompileErrors(t *testing.T) {
	isolate(t)
	tests := []struct {
		src  string
		want string
	}{
		{"1+;", "parse error"},
		{"(1+2;", "missing ')'"},
		{"a=#;", "tokenize error"},
		{"1=2;", "invalid assignment target"},
	}
	for _, tt := range tests {
		code, stdout, stderr := runMain(t, tt.src)
		if code != 1 {
			t.Errorf("%q: exit code %d, want 1", tt.src, code)
		}
		if stdout != "" {
			t.Errorf("%q: partial output on stdout: %q", tt.src, stdout)
		}
		if !strings.Contains(stderr, tt.want) {
			t.Errorf("%q: stderr = %q, want %q", tt.src, stderr, tt.want)
		}
		if strings.Contains(stderr, "usage: r9cc") {
			t.Errorf("%q: compile errors should not print usage", tt.src)
		}
	}
}

func TestRun_OutputFile(t *testing.T) {
	dir := isolate(t)
	out := filepath.Join(dir, "build", "prog.s")

	code, stdout, stderr := runMain(t, "-o", out, "--entry", "_main", "--comments", "1+2;")
	if code != 0 {
		t.Fatalf("exit code %d, stderr:\n%s", code, stderr)
	}
	if stdout != "" {
		t.Errorf("stdout should be empty with -o, got %q", stdout)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if !strings.Contains(text, ".global _main\n_main:\n") || !strings.Contains(text, "# 1: (1 + 2);") {
		t.Errorf("output file =\n%s", text)
	}
}

func TestRun_ConfigFile(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, "r9cc.toml"), []byte("[output]\nentry_symbol = \"start\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, stdout, _ := runMain(t, "1;")
	if !strings.Contains(stdout, ".global start\n") {
		t.Errorf("./r9cc.toml not applied:\n%s", stdout)
	}

	// Flags win over the file.
	_, stdout, _ = runMain(t, "--entry", "main", "1;")
	if !strings.Contains(stdout, ".global main\n") {
		t.Errorf("--entry did not override the config file:\n%s", stdout)
	}

	code, _, stderr := runMain(t, "--config", filepath.Join(dir, "missing.toml"), "1;")
	if code != 1 || !strings.Contains(stderr, "config file not found") {
		t.Errorf("missing --config: code %d, stderr %q", code, stderr)
	}
}

func TestRun_Verbose(t *testing.T) {
	isolate(t)
	code, stdout, stderr := runMain(t, "-v", "x=1;")
	if code != 0 {
		t.Fatalf("exit code %d", code)
	}
	if !strings.Contains(stderr, "tokenized") || !strings.Contains(stderr, "generated") {
		t.Errorf("verbose log missing stages:\n%s", stderr)
	}
	if strings.Contains(stdout, "tokenized") {
		t.Error("logs leaked onto stdout")
	}
}

func TestRun_BadLogLevel(t *testing.T) {
	isolate(t)
	code, _, stderr := runMain(t, "--log-level", "loud", "1;")
	if code != 1 || !strings.Contains(stderr, "invalid log level") {
		t.Errorf("code %d, stderr %q", code, stderr)
	}
}
