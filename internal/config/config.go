// Package config loads the §6.7 project file (teac.json), a flat, known
// key set read once at startup. Parsed with github.com/buger/jsonparser
// rather than encoding/json: the keys are fixed and read exactly once per
// process, so there is no benefit to building a struct-tagged decode path,
// and jsonparser's no-allocation scanning matches that one-shot shape.
package config

import (
	"fmt"
	"os"

	"github.com/buger/jsonparser"
)

// File mirrors the subset of §6.3 build options a teac.json project file
// may set. CLI flags always take precedence over these (§6.7).
type File struct {
	Triple      string
	CPU         string
	Features    []string
	OptLevel    string
	EntrySymbol string
	LTO         bool
}

// Load reads and parses a teac.json project file. A missing file is not an
// error: callers fall back to flag defaults (§6.7).
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &File{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes raw teac.json bytes. Unknown keys are ignored, matching
// jsonparser's selective-key-access model.
func Parse(data []byte) (*File, error) {
	f := &File{}

	if v, err := jsonparser.GetString(data, "triple"); err == nil {
		f.Triple = v
	}
	if v, err := jsonparser.GetString(data, "cpu"); err == nil {
		f.CPU = v
	}
	if v, err := jsonparser.GetString(data, "optLevel"); err == nil {
		f.OptLevel = v
	}
	if v, err := jsonparser.GetString(data, "entrySymbol"); err == nil {
		f.EntrySymbol = v
	}
	if v, err := jsonparser.GetBoolean(data, "lto"); err == nil {
		f.LTO = v
	}
	if _, err := jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, offset int, err error) {
		if dataType == jsonparser.String {
			f.Features = append(f.Features, string(value))
		}
	}, "features"); err != nil && err != jsonparser.KeyPathNotFoundError {
		return nil, fmt.Errorf("parsing features: %w", err)
	}

	return f, nil
}

// Merge overlays CLI-supplied values on top of the file's, treating the
// zero value of each CLI field as "not set" (§6.7: flags always win).
func (f *File) Merge(triple, cpu, optLevel, entrySymbol string, features []string, lto bool, ltoSet bool) {
	if triple != "" {
		f.Triple = triple
	}
	if cpu != "" {
		f.CPU = cpu
	}
	if optLevel != "" {
		f.OptLevel = optLevel
	}
	if entrySymbol != "" {
		f.EntrySymbol = entrySymbol
	}
	if len(features) > 0 {
		f.Features = features
	}
	if ltoSet {
		f.LTO = lto
	}
}
