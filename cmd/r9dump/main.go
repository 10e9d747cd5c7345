// Command r9dump prints every stage of the r9cc pipeline for one source
// string: tokens, statement trees, assembly and the variable slot map.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"r9cc/pkg/compiler"
	"r9cc/pkg/utils"
)

type options struct {
	astFormat string
	stage     string
	entry     string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "r9dump [flags] <source>",
		Short:         "Dump tokens, AST and assembly for a source string",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return compiler.NewUsageError("expected exactly one source argument, got %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return dump(stdout, args[0], opts)
		},
	}
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.Flags().StringVar(&opts.astFormat, "ast-format", "text", "AST output format: text, json or yaml")
	cmd.Flags().StringVar(&opts.stage, "stage", "all", "stage to print: all, tokens, ast, asm or slots")
	cmd.Flags().StringVar(&opts.entry, "entry", "", "global entry symbol")

	if err := cmd.Execute(); err != nil {
		utils.PrintError(stderr, "r9dump", err)
		return 1
	}
	return 0
}

func dump(w io.Writer, src string, opts *options) error {
	switch opts.stage {
	case "all", "tokens", "ast", "asm", "slots":
	default:
		return fmt.Errorf("unknown stage %q", opts.stage)
	}
	show := func(stage string) bool { return opts.stage == "all" || opts.stage == stage }

	if opts.stage == "all" {
		fmt.Fprintln(w, utils.Section("Source"))
		fmt.Fprintf(w, "  %s\n\n", src)
	}

	tokens, err := compiler.Lex(src)
	if err != nil {
		return err
	}
	if show("tokens") {
		fmt.Fprintln(w, utils.Section(fmt.Sprintf("Tokens (%d)", len(tokens))))
		if err := compiler.FprintTokens(w, tokens); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	stmts, err := compiler.Parse(tokens, src)
	if err != nil {
		return err
	}
	if show("ast") {
		fmt.Fprintln(w, utils.Section("AST"))
		if err := printAST(w, stmts, opts.astFormat); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	assembly, err := compiler.Generate(stmts, compiler.Options{EntrySymbol: opts.entry, Comments: true})
	if err != nil {
		return err
	}
	if show("asm") {
		fmt.Fprintln(w, utils.Section("Generated Assembly"))
		fmt.Fprint(w, assembly)
		fmt.Fprintln(w)
	}

	if show("slots") {
		fmt.Fprintln(w, utils.Section("Variable Slots"))
		for _, name := range compiler.Variables(stmts) {
			offset, err := compiler.SlotOffset(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "  %c  [rbp-%d]\n", name, offset)
		}
	}
	return nil
}

func printAST(w io.Writer, stmts []compiler.Expr, format string) error {
	switch format {
	case "json":
		return compiler.FprintJSON(w, stmts)
	case "yaml":
		return compiler.FprintYAML(w, stmts)
	case "text":
		return compiler.FprintAST(w, stmts)
	}
	return fmt.Errorf("unknown AST format %q", format)
}
