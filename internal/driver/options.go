// Package driver implements the §4.8/§6 Driver component: it orchestrates
// the front end, the lowerer, IR emission, and the external optimizer and
// object-file emitter the core itself never touches directly.
package driver

// Options are the §6.3 build options, assembled from CLI flags merged
// over an optional teac.json project file (§6.7).
type Options struct {
	Triple      string
	CPU         string
	Features    []string
	OptLevel    string
	EntrySymbol string
	LTO         bool

	// EmitIRPath is not read by Build or Pipeline; the emit-ir command
	// prints verified IR to stdout and never runs the optimizer.
	EmitIRPath string

	OptimizerPath string
}

// DefaultOptions mirrors the teacher CLI's own defaults (§6.3): an
// unspecified triple is filled with the host triple by NormalizeTriple
// (CPU and Features are not passed to the optimizer or llc), opt level 2,
// and "main" as the entry symbol.
func DefaultOptions() Options {
	return Options{
		OptLevel:    "2",
		EntrySymbol: "main",
	}
}
