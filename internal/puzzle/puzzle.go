// Package puzzle reads assignment problems from disk.
//
// Two formats are supported. The text format is line oriented:
//
//	10                      number of slots N
//	cherry kiwi             wanted items
//	2                       number of groups G
//	1 2                     slots of group 1
//	apple cherry            items of group 1
//	9 10                    slots of group 2
//	kiwi lime               items of group 2
//
// The YAML format carries the same fields:
//
//	slots: 10
//	wanted: [cherry, kiwi]
//	groups:
//	  - items: [apple, cherry]
//	    slots: [1, 2]
//
// Groups whose item and slot counts differ are passed through unchanged;
// rejecting them is up to the ingestion step.
package puzzle

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gitrdm/slotfd/pkg/slotfd"
)

// MaxSlots is the largest slot count either format accepts. Every domain
// holds one bit per slot.
const MaxSlots = 1 << 20

// Format identifies an input encoding.
type Format string

const (
	FormatAuto Format = "auto"
	FormatText Format = "text"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case "", FormatAuto:
		return FormatAuto, nil
	case FormatText, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown input format %q (want auto, text or yaml)", name)
}

// FormatFromPath picks the format from the file extension: .yaml and .yml
// are YAML, everything else is text.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatText
}

// ParseError reports a syntax error in text input.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Parse reads one problem from r. FormatAuto is treated as text.
func Parse(r io.Reader, format Format) (*slotfd.Problem, error) {
	switch format {
	case FormatYAML:
		return parseYAML(r)
	case FormatText, FormatAuto, "":
		return parseText(r)
	}
	return nil, fmt.Errorf("unknown input format %q", format)
}

// ParseFile reads the problem stored at path. The path "-" reads standard
// input. With FormatAuto the format follows the file extension.
func ParseFile(path string, format Format) (*slotfd.Problem, error) {
	if path == "-" {
		return Parse(os.Stdin, format)
	}
	if format == FormatAuto || format == "" {
		format = FormatFromPath(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open puzzle file: %w", err)
	}
	defer f.Close()

	p, err := Parse(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}
