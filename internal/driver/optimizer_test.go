package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptPipelineForLevels(t *testing.T) {
	cases := []struct {
		level        string
		wantPipeline string
		wantSkip     bool
	}{
		{"0", "", true},
		{"none", "", true},
		{"1", "default<O1>", false},
		{"less", "default<O1>", false},
		{"s", "default<O1>", false},
		{"2", "default<O2>", false},
		{"default", "default<O2>", false},
		{"", "default<O2>", false},
		{"3", "default<O3>", false},
		{"aggressive", "default<O3>", false},
		{"z", "default<O3>", false},
		{"bogus", "default<O2>", false},
	}
	for _, c := range cases {
		pipeline, skip := optPipelineFor(c.level)
		assert.Equal(t, c.wantPipeline, pipeline, "level=%s", c.level)
		assert.Equal(t, c.wantSkip, skip, "level=%s", c.level)
	}
}

func TestExtractVersion(t *testing.T) {
	assert.Equal(t, "v17.0.6", extractVersion("Ubuntu LLVM version 17.0.6\n  Optimized build.\n"))
	assert.Equal(t, "v14.0.0", extractVersion("LLVM (http://llvm.org/):\n  LLVM version 14.0.0"))
	assert.Equal(t, "", extractVersion("no digits here at all"))
}
