// Package output renders finalized scan records at the output boundary.
package output

import (
	"fmt"
	"io"

	"github.com/subsort/subsort/pkg/types"
)

// Formatter renders scan records to a writer.
type Formatter interface {
	Format(w io.Writer, records []types.ScanRecord, enabledModules []string) error
}

// GetFormatter returns the appropriate formatter for the given format
// string.
func GetFormatter(format string) (Formatter, error) {
	switch format {
	case "json":
		return &JSONFormatter{}, nil
	case "csv":
		return &CSVFormatter{}, nil
	case "txt", "text":
		return &TextFormatter{Delimiter: " | "}, nil
	case "table":
		return &TableFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (supported: json, csv, txt, table)", format)
	}
}
