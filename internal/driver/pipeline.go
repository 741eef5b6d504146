package driver

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/teacompiler/teac/internal/codegen/llvm"
	"github.com/teacompiler/teac/internal/diag"
	"github.com/teacompiler/teac/internal/lexer"
	"github.com/teacompiler/teac/internal/lower"
	"github.com/teacompiler/teac/internal/mir"
	"github.com/teacompiler/teac/internal/parser"
	"github.com/teacompiler/teac/internal/symtab"
	"github.com/teacompiler/teac/internal/types"
)

// Result carries everything a caller (cmd/teac, or a test) might want out
// of a pipeline run, regardless of how far it got.
type Result struct {
	IR         string
	Rejected   []lower.RejectedConstruct
	Diagnostics []diag.Diagnostic
}

// Pipeline runs the §2/§4.8 data flow: parse -> check -> lower -> emit IR
// -> verify. Optimization and object emission (§6.4) are separate steps a
// caller invokes afterward, since "emit-ir" stops here by design.
type Pipeline struct {
	log zerolog.Logger
}

func NewPipeline(log zerolog.Logger) *Pipeline {
	return &Pipeline{log: log}
}

// CompileFile runs parse -> check -> lower -> emit -> verify for one
// source file, returning verified IR text or the diagnostics that stopped
// compilation.
func (p *Pipeline) CompileFile(path string) (*Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	p.log.Debug().Str("stage", "parse").Str("file", path).Msg("parsing source")
	l := lexer.NewFile(path, string(src))
	pr := parser.New(l)
	file := pr.ParseFile()
	if len(l.Errors) > 0 || len(pr.Errors) > 0 {
		return &Result{Diagnostics: parseDiagnostics(l, pr)}, nil
	}

	p.log.Debug().Str("stage", "check").Msg("running checker")
	checker := types.NewChecker()
	tables := checker.Check(file)
	if len(checker.Diagnostics) > 0 {
		return &Result{Diagnostics: checker.Diagnostics}, nil
	}

	p.log.Debug().Str("stage", "lower").Msg("lowering to MIR")
	symbols := symtab.New()
	lowerer := lower.New(tables, symbols)
	lowerer.LowerFile(file)

	rejected := lowerer.Rejected()
	if len(rejected) > 0 {
		diags := make([]diag.Diagnostic, len(rejected))
		for i, r := range rejected {
			diags[i] = diag.New(diag.StageCodegen, diag.CodeRejectedConstruct, diag.Span{}, "%s", r.Message)
		}
		return &Result{Rejected: rejected, Diagnostics: diags}, nil
	}

	p.log.Debug().Str("stage", "emit").Int("functions", len(lowerer.Module.Functions)).Msg("emitting IR")
	gen := llvm.NewGenerator(lowerer.Module)
	ir := gen.Emit()

	p.log.Debug().Str("stage", "verify").Msg("verifying emitted IR")
	if err := VerifyModule(lowerer.Module); err != nil {
		return nil, fmt.Errorf("IR verification failed: %w", err)
	}
	if unknown := unrecognizedRuntimeSymbols(ir); len(unknown) > 0 {
		p.log.Warn().Strs("symbols", unknown).Msg("emitted IR references tea_ symbols outside the documented ABI surface")
	}

	return &Result{IR: ir}, nil
}

func parseDiagnostics(l *lexer.Lexer, pr *parser.Parser) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, e := range l.Errors {
		out = append(out, e.ToDiagnostic())
	}
	for _, e := range pr.Errors {
		out = append(out, e.ToDiagnostic())
	}
	return out
}

// VerifyModule implements the §6.2 "verified before emission" step: every
// block must end in exactly one terminator, a minimal structural
// invariant the core's own block-splitting logic is supposed to uphold
// everywhere (§4.4-§4.5).
func VerifyModule(m *mir.Module) error {
	for _, fn := range m.Functions {
		for _, blk := range fn.Blocks {
			if len(blk.Instrs) == 0 {
				return fmt.Errorf("function %s: block %s has no instructions", fn.Name, blk.Label)
			}
			last := blk.Instrs[len(blk.Instrs)-1]
			if !isTerminator(last.Op) {
				return fmt.Errorf("function %s: block %s does not end in a terminator", fn.Name, blk.Label)
			}
			for _, mid := range blk.Instrs[:len(blk.Instrs)-1] {
				if isTerminator(mid.Op) {
					return fmt.Errorf("function %s: block %s has a terminator before its last instruction", fn.Name, blk.Label)
				}
			}
		}
	}
	return nil
}

func isTerminator(op mir.Op) bool {
	switch op {
	case mir.OpBr, mir.OpCondBr, mir.OpRet, mir.OpRetVoid, mir.OpUnreachable:
		return true
	default:
		return false
	}
}
