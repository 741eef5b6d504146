package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	data := []byte(`{
		"triple": "aarch64-apple-darwin",
		"cpu": "apple-m1",
		"optLevel": "aggressive",
		"entrySymbol": "tea_entry",
		"lto": true,
		"features": ["+neon", "+fp16"]
	}`)

	f, err := Parse(data)
	assert.NoError(t, err)
	assert.Equal(t, "aarch64-apple-darwin", f.Triple)
	assert.Equal(t, "apple-m1", f.CPU)
	assert.Equal(t, "aggressive", f.OptLevel)
	assert.Equal(t, "tea_entry", f.EntrySymbol)
	assert.True(t, f.LTO)
	assert.Equal(t, []string{"+neon", "+fp16"}, f.Features)
}

func TestParseEmptyObject(t *testing.T) {
	f, err := Parse([]byte(`{}`))
	assert.NoError(t, err)
	assert.Equal(t, "", f.Triple)
	assert.Nil(t, f.Features)
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	f, err := Load("/nonexistent/teac.json")
	assert.NoError(t, err)
	assert.Equal(t, &File{}, f)
}

func TestMergePrefersCLIOverFile(t *testing.T) {
	f := &File{Triple: "x86_64-unknown-linux-gnu", OptLevel: "default", LTO: false}
	f.Merge("aarch64-apple-darwin", "", "", "", nil, true, true)
	assert.Equal(t, "aarch64-apple-darwin", f.Triple)
	assert.Equal(t, "default", f.OptLevel)
	assert.True(t, f.LTO)
}

func TestMergeLeavesFileValueWhenCLIUnset(t *testing.T) {
	f := &File{OptLevel: "aggressive"}
	f.Merge("", "", "", "", nil, false, false)
	assert.Equal(t, "aggressive", f.OptLevel)
	assert.False(t, f.LTO)
}
