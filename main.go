package main

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"r9cc/pkg/compiler"
	"r9cc/pkg/config"
	"r9cc/pkg/utils"
)

var (
	Version   = "0.1.0"
	GitCommit = "development"
)

type options struct {
	configFile string
	outPath    string
	entry      string
	comments   bool
	verbose    bool
	logLevel   string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the translator and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		utils.PrintError(stderr, "r9cc", err)
		if compiler.KindOf(err) == compiler.UsageError {
			fmt.Fprintln(stderr, "usage: r9cc [flags] <source>")
		}
		return 1
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "r9cc [flags] <source>",
		Short: "Translate a one-line arithmetic program to x86-64 assembly",
		Long: `r9cc compiles ';'-terminated statements over integers, the variables
a..z, + - * /, parentheses and '=' into Intel-syntax x86-64 assembly.
The program returns the value of its last statement.

  r9cc 'a=3; b=a*2; a+b;' > prog.s && cc -o prog prog.s && ./prog; echo $?`,
		Version:       fmt.Sprintf("%s (%s, %s)", Version, GitCommit, runtime.Version()),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return compiler.NewUsageError("expected exactly one source argument, got %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return translate(cmd, opts, args[0], stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.StringVar(&opts.configFile, "config", "", "config file (default: $R9CC_CONFIG or ./r9cc.toml)")
	flags.StringVarP(&opts.outPath, "out", "o", "", "write assembly to this file instead of stdout")
	flags.StringVar(&opts.entry, "entry", "", "global entry symbol (default \"main\")")
	flags.BoolVar(&opts.comments, "comments", false, "annotate each statement in the output")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log pipeline stages to stderr")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	return cmd
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configFile != "" {
		cfg, err = config.Load(opts.configFile)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("out") {
		cfg.Output.File = opts.outPath
	}
	if flags.Changed("entry") {
		cfg.Output.EntrySymbol = opts.entry
	}
	if flags.Changed("comments") {
		cfg.Output.Comments = opts.comments
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	if opts.verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func translate(cmd *cobra.Command, opts *options, src string, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	logger, err := utils.NewLogger(stderr, "r9cc", cfg.Log.Level)
	if err != nil {
		return err
	}

	tokens, err := compiler.Lex(src)
	if err != nil {
		return err
	}
	logger.Debug("tokenized", "tokens", len(tokens))

	stmts, err := compiler.Parse(tokens, src)
	if err != nil {
		return err
	}
	logger.Debug("parsed", "statements", len(stmts), "variables", string(compiler.Variables(stmts)))

	assembly, err := compiler.Generate(stmts, cfg.CompileOptions())
	if err != nil {
		return err
	}
	logger.Debug("generated", "bytes", len(assembly), "entry", cfg.Output.EntrySymbol)

	if cfg.Output.File != "" {
		if err := utils.WriteOutput(cfg.Output.File, assembly); err != nil {
			return err
		}
		logger.Info("wrote assembly", "file", cfg.Output.File)
		return nil
	}

	_, err = io.WriteString(stdout, assembly)
	return err
}
