// Command r9run compiles a source string and executes the generated
// assembly on the built-in emulator, printing the program's result.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"r9cc/pkg/asm"
	"r9cc/pkg/compiler"
	"r9cc/pkg/config"
	"r9cc/pkg/cpu"
	"r9cc/pkg/utils"
)

type options struct {
	configFile string
	showAsm    bool
	trace      bool
	exitCode   bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts := &options{}
	status := 0

	cmd := &cobra.Command{
		Use:           "r9run [flags] <source>",
		Short:         "Compile a source string and run it on the emulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return compiler.NewUsageError("expected exactly one source argument, got %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := execute(stdout, stderr, args[0], opts)
			if err != nil {
				return err
			}
			if opts.exitCode {
				status = int(uint8(result))
			}
			return nil
		},
	}
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	flags := cmd.Flags()
	flags.StringVar(&opts.configFile, "config", "", "config file")
	flags.BoolVar(&opts.showAsm, "show-asm", false, "print the generated assembly")
	flags.BoolVar(&opts.trace, "trace", false, "trace every executed instruction to stderr")
	flags.BoolVar(&opts.exitCode, "exit-code", false, "exit with the low 8 bits of the result")

	if err := cmd.Execute(); err != nil {
		utils.PrintError(stderr, "r9run", err)
		return 1
	}
	return status
}

func execute(stdout, stderr io.Writer, src string, opts *options) (int64, error) {
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
		return 0, err
	}
	logger, err := utils.NewLogger(stderr, "r9run", cfg.Log.Level)
	if err != nil {
		return 0, err
	}

	res, err := compiler.Compile(src, cfg.CompileOptions())
	if err != nil {
		return 0, err
	}
	if opts.showAsm {
		fmt.Fprintf(stdout, "Generated Assembly:\n%s\n", res.Assembly)
	}

	prog, err := asm.Assemble(res.Assembly)
	if err != nil {
		return 0, fmt.Errorf("assembly error: %w", err)
	}

	vm := cpu.NewCPU(cfg.CPUConfig())
	if opts.trace {
		vm.Trace = stderr
	}
	if err := vm.Load(prog); err != nil {
		return 0, err
	}
	result, err := vm.Run()
	if err != nil {
		return 0, err
	}
	logger.Debug("halted", "steps", vm.Steps)

	fmt.Fprintf(stdout, "result: %d\n", result)
	for _, name := range compiler.Variables(res.Stmts) {
		offset, err := compiler.SlotOffset(name)
		if err != nil {
			return 0, err
		}
		v, err := vm.Frame(offset)
		if err != nil {
			return 0, err
		}
		fmt.Fprintf(stdout, "  %c = %d\n", name, v)
	}
	return result, nil
}
