package diag

import (
	"fmt"
	"os"
	"strings"
)

// Formatter formats diagnostics in a Rust-style format with source code snippets.
type Formatter struct {
	sourceCache map[string]string // Cache of source files by filename
}

// NewFormatter creates a new diagnostic formatter.
func NewFormatter() *Formatter {
	return &Formatter{
		sourceCache: make(map[string]string),
	}
}

// LoadSource loads source code for a file (cached).
func (f *Formatter) LoadSource(filename string) (string, error) {
	if filename == "" {
		return "", nil
	}
	if src, ok := f.sourceCache[filename]; ok {
		return src, nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}
	src := string(data)
	f.sourceCache[filename] = src
	return src, nil
}

// Format formats and prints a diagnostic in Rust-style format.
func (f *Formatter) Format(d Diagnostic) {
	f.printHeader(d)

	if !d.Span.IsValid() {
		return
	}

	src, err := f.LoadSource(d.Span.Filename)
	if err != nil || src == "" {
		fmt.Fprintf(os.Stderr, "  --> %s\n", d.Span.String())
		return
	}

	f.printSourceLine(d.Span, src)
}

// printHeader prints the error header (error[E0000]: message).
func (f *Formatter) printHeader(d Diagnostic) {
	severity := string(d.Severity)
	if severity == "" {
		severity = "error"
	}

	if d.Code != "" {
		fmt.Fprintf(os.Stderr, "%s[%s]: %s\n", severity, d.Code, d.Message)
	} else {
		fmt.Fprintf(os.Stderr, "%s: %s\n", severity, d.Message)
	}
}

// printSourceLine prints the offending line with a caret underline under
// the span's column range, in the single-span shape every diagnostic this
// compiler raises actually has (§7: one primary location per error).
func (f *Formatter) printSourceLine(span Span, src string) {
	lines := strings.Split(src, "\n")
	if span.Line <= 0 || span.Line > len(lines) {
		fmt.Fprintf(os.Stderr, "  --> %s\n", span.String())
		return
	}
	line := lines[span.Line-1]

	lineNumStr := fmt.Sprintf("%d", span.Line)
	pad := strings.Repeat(" ", len(lineNumStr))

	fmt.Fprintf(os.Stderr, "  --> %s\n", span.String())
	fmt.Fprintf(os.Stderr, "%s |\n", pad)
	fmt.Fprintf(os.Stderr, "%s | %s\n", lineNumStr, line)

	start := span.Column - 1
	if start < 0 {
		start = 0
	}
	width := span.End - span.Start
	if width < 1 {
		width = 1
	}
	end := start + width
	if end > len(line) {
		end = len(line)
	}
	if start > len(line) {
		start = len(line)
	}

	underline := strings.Repeat(" ", start) + strings.Repeat("^", max(end-start, 1))
	fmt.Fprintf(os.Stderr, "%s | %s\n", pad, underline)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
