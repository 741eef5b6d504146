package driver

import (
	"regexp"

	"github.com/teacompiler/teac/internal/runtime"
)

var callSymbolPattern = regexp.MustCompile(`@(tea_[A-Za-z0-9_]+)\s*\(`)

// unrecognizedRuntimeSymbols scans emitted IR text for tea_-prefixed
// symbol references that aren't part of the documented §6.5 ABI surface
// (internal/runtime.RequiredSymbols). It never fails a build: an unknown
// symbol most likely means the ABI contract grew and this list needs
// updating, not that the emitted program is wrong.
func unrecognizedRuntimeSymbols(ir string) []string {
	known := make(map[string]bool, len(runtime.RequiredSymbols()))
	for _, s := range runtime.RequiredSymbols() {
		known[s] = true
	}

	seen := map[string]bool{}
	var unknown []string
	for _, m := range callSymbolPattern.FindAllStringSubmatch(ir, -1) {
		name := m[1]
		if known[name] || seen[name] {
			continue
		}
		seen[name] = true
		unknown = append(unknown, name)
	}
	return unknown
}
