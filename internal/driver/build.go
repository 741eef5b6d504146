package driver

import (
	"context"
	"fmt"
	"os"
	"regexp"

	"github.com/rs/zerolog"
)

// Build runs the full §6.2 object-emission pipeline: compile to verified
// IR, optimize it, and hand the result to llc. objPath is the desired
// output object file; sourcePath is the .tea file to compile.
func Build(ctx context.Context, log zerolog.Logger, sourcePath, objPath string, opts Options) (*Result, error) {
	pipeline := NewPipeline(log)
	result, err := pipeline.CompileFile(sourcePath)
	if err != nil {
		return nil, err
	}
	if len(result.Diagnostics) > 0 {
		return result, nil
	}

	if opts.LTO {
		log.Warn().Msg("lto requested but not implemented by this backend; continuing without it")
	}

	irText := result.IR
	if opts.EntrySymbol != "" && opts.EntrySymbol != "main" {
		irText = renameEntrySymbol(irText, opts.EntrySymbol)
	}

	irFile, err := os.CreateTemp("", "teac-*.ll")
	if err != nil {
		return nil, fmt.Errorf("creating temp IR file: %w", err)
	}
	defer os.Remove(irFile.Name())
	if _, err := irFile.WriteString(irText); err != nil {
		irFile.Close()
		return nil, fmt.Errorf("writing temp IR file: %w", err)
	}
	irFile.Close()

	triple := NormalizeTriple(opts.Triple)
	opt := NewOptimizer(log)

	optimizedPath, err := opt.Optimize(ctx, irFile.Name(), opts.OptLevel)
	if err != nil {
		return nil, err
	}
	if optimizedPath != irFile.Name() {
		defer os.Remove(optimizedPath)
	}

	if err := opt.EmitObject(ctx, optimizedPath, objPath, triple, UsesPIC(triple)); err != nil {
		return nil, err
	}

	log.Info().Str("object", objPath).Str("triple", triple).Msg("build complete")
	return result, nil
}

// renameEntrySymbol rewrites the emitted module's "@main" definition and
// its references to the requested entry symbol (§6.3).
func renameEntrySymbol(ir, symbol string) string {
	return mainSymbolPattern.ReplaceAllLiteralString(ir, "@"+symbol)
}

var mainSymbolPattern = regexp.MustCompile(`@main\b`)
