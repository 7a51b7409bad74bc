package output

import (
	"fmt"
	"io"
	"strings"
)

// Format names an --output mode.
type Format string

// Supported formats. Table is the default.
const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Formatter writes data to w in one format.
type Formatter interface {
	Format(w io.Writer, data any) error
}

var formatters = map[Format]func() Formatter{
	FormatTable: func() Formatter { return &TableFormatter{} },
	FormatJSON:  func() Formatter { return &JSONFormatter{} },
	FormatYAML:  func() Formatter { return &YAMLFormatter{} },
}

// ParseFormat validates an --output value. Empty selects table.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatTable, nil
	}
	f := Format(s)
	if _, ok := formatters[f]; !ok {
		return "", fmt.Errorf("unknown output format %q (want %s)", s, strings.Join(formatNames(), ", "))
	}
	return f, nil
}

// NewFormatter returns the formatter for format, falling back to table.
func NewFormatter(format Format) Formatter {
	if mk, ok := formatters[format]; ok {
		return mk()
	}
	return &TableFormatter{}
}

func formatNames() []string {
	return []string{string(FormatTable), string(FormatJSON), string(FormatYAML)}
}
