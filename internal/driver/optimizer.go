package driver

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/mod/semver"
)

// findTool resolves an external LLVM tool (opt, llc) by checking PATH
// first, then the Homebrew-prefixed locations the teacher's own CLI
// falls back to (§6.4).
func findTool(name string) (string, error) {
	if path, err := exec.LookPath(name); err == nil {
		return path, nil
	}

	prefixes := []string{"/opt/homebrew", "/usr/local"}
	if brew := os.Getenv("HOMEBREW_PREFIX"); brew != "" {
		prefixes = []string{brew}
	}
	for _, prefix := range prefixes {
		candidate := filepath.Join(prefix, "opt/llvm/bin", name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%s not found in PATH or common installation locations", name)
}

// optPipelineFor maps a §6.3 opt_level ("none"/"less"/"default"/"aggressive",
// or the numeric 0-3 shorthand) to an LLVM new-pass-manager pipeline
// string, mirroring the teacher's own level mapping.
func optPipelineFor(level string) (pipeline string, skip bool) {
	switch level {
	case "0", "none":
		return "", true
	case "1", "less", "s":
		return "default<O1>", false
	case "3", "aggressive", "z":
		return "default<O3>", false
	case "2", "default", "":
		return "default<O2>", false
	default:
		return "default<O2>", false
	}
}

// Optimizer wraps invocation of the external opt/llc binaries. A missing
// optimizer is never fatal (§6.4): the pipeline falls back to unoptimized
// IR and object emission still proceeds through llc.
type Optimizer struct {
	log          zerolog.Logger
	minOptVersion string
}

func NewOptimizer(log zerolog.Logger) *Optimizer {
	return &Optimizer{log: log, minOptVersion: "v14.0.0"}
}

// Optimize runs `opt` over irPath at the requested level, returning the
// path to the (possibly unmodified) IR file the object emitter should
// read next. Failure to locate or run opt only produces a warning.
func (o *Optimizer) Optimize(ctx context.Context, irPath, level string) (string, error) {
	pipeline, skip := optPipelineFor(level)
	if skip {
		o.log.Debug().Str("stage", "optimize").Msg("opt level none, skipping optimization")
		return irPath, nil
	}

	optPath, err := findTool("opt")
	if err != nil {
		o.log.Warn().Str("stage", "optimize").Err(err).Msg("opt not found, emitting unoptimized IR")
		return irPath, nil
	}
	o.checkVersion(ctx, optPath)

	outPath := irPath + ".opt"
	args := []string{"-S", "-o", outPath, "-passes=" + pipeline, irPath}
	runCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(runCtx, optPath, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	o.log.Debug().Str("stage", "optimize").Strs("args", args).Msg("invoking opt")
	if err := cmd.Run(); err != nil {
		o.log.Warn().Str("stage", "optimize").Err(err).Str("stderr", stderr.String()).
			Msg("optimization failed, emitting unoptimized IR")
		return irPath, nil
	}
	return outPath, nil
}

// checkVersion logs (never fails) when the resolved optimizer reports an
// older version than this backend expects (§6.8).
func (o *Optimizer) checkVersion(ctx context.Context, optPath string) {
	runCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	out, err := exec.CommandContext(runCtx, optPath, "--version").Output()
	if err != nil {
		return
	}
	v := extractVersion(string(out))
	if v == "" {
		return
	}
	if semver.IsValid(v) && semver.Compare(v, o.minOptVersion) < 0 {
		o.log.Warn().Str("found", v).Str("want", o.minOptVersion).
			Msg("LLVM optimizer is older than the version this backend was validated against")
	}
}

func extractVersion(versionOutput string) string {
	for _, field := range strings.Fields(versionOutput) {
		if len(field) > 0 && (field[0] >= '0' && field[0] <= '9') {
			return "v" + strings.TrimRight(field, ".")
		}
	}
	return ""
}

// EmitObject invokes llc to turn irPath into a native object file at
// objPath for the given (already-normalized) target triple (§6.3/§6.4).
func (o *Optimizer) EmitObject(ctx context.Context, irPath, objPath, triple string, relocPIC bool) error {
	llcPath, err := findTool("llc")
	if err != nil {
		return fmt.Errorf("locating llc: %w", err)
	}

	args := []string{"-filetype=obj", "-o", objPath}
	if triple != "" {
		args = append(args, "-mtriple="+triple)
	}
	if relocPIC {
		args = append(args, "-relocation-model=pic")
	}
	args = append(args, irPath)

	runCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	cmd := exec.CommandContext(runCtx, llcPath, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	o.log.Debug().Str("stage", "emit-object").Strs("args", args).Msg("invoking llc")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("llc failed: %w: %s", err, stderr.String())
	}
	return nil
}
