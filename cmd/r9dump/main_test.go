package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestDump_AllStages(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"a=3; a*2;"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code %d, stderr:\n%s", code, stderr.String())
	}
	out := stdout.String()
	for _, want := range []string{
		"Source", "a=3; a*2;",
		"Tokens (9)", "IDENTIFIER",
		"AST", "BinaryExpr *",
		"Generated Assembly", "# 2: (a * 2);", "sub rsp, 208",
		"Variable Slots", "a  [rbp-208]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDump_SingleStageJSON(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"--stage", "ast", "--ast-format", "json", "q=1;"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code %d, stderr:\n%s", code, stderr.String())
	}
	out := stdout.String()
	if strings.Contains(out, "Generated Assembly") || strings.Contains(out, "Tokens") {
		t.Errorf("--stage ast printed other stages:\n%s", out)
	}
	start := strings.Index(out, "[\n")
	if start < 0 {
		t.Fatalf("no JSON in output:\n%s", out)
	}
	var nodes []map[string]any
	if err := json.NewDecoder(strings.NewReader(out[start:])).Decode(&nodes); err != nil {
		t.Fatalf("bad JSON: %v\n%s", err, out)
	}
	if len(nodes) != 1 || nodes[0]["type"] != "Assign" {
		t.Errorf("nodes = %v", nodes)
	}
}

func TestDump_Errors(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{nil, "usage error"},
		{[]string{"--stage", "bogus", "1;"}, "unknown stage"},
		{[]string{"--stage", "ast", "--ast-format", "xml", "1;"}, "unknown AST format"},
		{[]string{"1+;"}, "parse error"},
	}
	for _, tt := range tests {
		var stdout, stderr bytes.Buffer
		if code := run(tt.args, &stdout, &stderr); code != 1 {
			t.Errorf("args %q: exit code %d, want 1", tt.args, code)
		}
		if !strings.Contains(stderr.String(), tt.want) {
			t.Errorf("args %q: stderr = %q, want %q", tt.args, stderr.String(), tt.want)
		}
	}
}
