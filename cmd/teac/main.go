// Command teac is the ahead-of-time compiler driver's CLI front end.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/teacompiler/teac/internal/config"
	"github.com/teacompiler/teac/internal/diag"
	"github.com/teacompiler/teac/internal/driver"
)

var (
	flagTriple      string
	flagCPU         string
	flagFeatures    []string
	flagOptLevel    string
	flagEntrySymbol string
	flagLTO         bool
	flagConfigPath  string
	flagVerbose     bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "teac",
		Short: "teac compiles tea-lang source to native objects or LLVM IR",
	}

	root.PersistentFlags().StringVar(&flagTriple, "triple", "", "target triple (default: host triple)")
	root.PersistentFlags().StringVar(&flagCPU, "cpu", "", "CPU model string")
	root.PersistentFlags().StringSliceVar(&flagFeatures, "features", nil, "target feature strings")
	root.PersistentFlags().StringVar(&flagOptLevel, "opt-level", "", "optimization level: none|less|default|aggressive")
	root.PersistentFlags().StringVar(&flagEntrySymbol, "entry-symbol", "", "rename the module's main entry point")
	root.PersistentFlags().BoolVar(&flagLTO, "lto", false, "request LTO (accepted, not yet implemented)")
	root.PersistentFlags().StringVar(&flagConfigPath, "config", "teac.json", "path to a teac.json project file")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newBuildCmd(), newEmitIRCmd(), newCheckCmd())
	return root
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if flagVerbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

func resolveOptions(cmd *cobra.Command) (driver.Options, error) {
	file, err := config.Load(flagConfigPath)
	if err != nil {
		return driver.Options{}, err
	}

	ltoSet := cmd.Flags().Changed("lto")
	file.Merge(flagTriple, flagCPU, flagOptLevel, flagEntrySymbol, flagFeatures, flagLTO, ltoSet)

	opts := driver.DefaultOptions()
	if file.Triple != "" {
		opts.Triple = file.Triple
	}
	if file.CPU != "" {
		opts.CPU = file.CPU
	}
	if file.OptLevel != "" {
		opts.OptLevel = file.OptLevel
	}
	if file.EntrySymbol != "" {
		opts.EntrySymbol = file.EntrySymbol
	}
	if len(file.Features) > 0 {
		opts.Features = file.Features
	}
	opts.LTO = file.LTO
	return opts, nil
}

func newBuildCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "build <file.tea>",
		Short: "compile a source file to a native object file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			opts, err := resolveOptions(cmd)
			if err != nil {
				return err
			}
			if outPath == "" {
				outPath = args[0] + ".o"
			}
			result, err := driver.Build(context.Background(), log, args[0], outPath, opts)
			if err != nil {
				return err
			}
			return printDiagnostics(result.Diagnostics)
		},
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output object file path (default: <input>.o)")
	return cmd
}

func newEmitIRCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "emit-ir <file.tea>",
		Short: "compile a source file and print verified LLVM IR to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			pipeline := driver.NewPipeline(log)
			result, err := pipeline.CompileFile(args[0])
			if err != nil {
				return err
			}
			if len(result.Diagnostics) > 0 {
				return printDiagnostics(result.Diagnostics)
			}
			fmt.Println(result.IR)
			return nil
		},
	}
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file.tea>",
		Short: "parse, type-check, and lower a source file without emitting output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			pipeline := driver.NewPipeline(log)
			result, err := pipeline.CompileFile(args[0])
			if err != nil {
				return err
			}
			if len(result.Diagnostics) > 0 {
				return printDiagnostics(result.Diagnostics)
			}
			fmt.Println("ok")
			return nil
		},
	}
}

func printDiagnostics(diags []diag.Diagnostic) error {
	formatter := diag.NewFormatter()
	for _, d := range diags {
		formatter.Format(d)
	}
	if len(diags) > 0 {
		return fmt.Errorf("%d diagnostic(s)", len(diags))
	}
	return nil
}
