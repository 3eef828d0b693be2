package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/subsort/subsort/pkg/types"
)

// TextFormatter renders one record per line, fields joined by a
// delimiter, targets first.
type TextFormatter struct {
	Delimiter string
}

func (f *TextFormatter) Format(w io.Writer, records []types.ScanRecord, _ []string) error {
	delim := f.Delimiter
	if delim == "" {
		delim = " | "
	}

	for _, rec := range records {
		parts := []string{string(rec.Target)}

		keys := make([]string, 0, len(rec.Fields))
		for k := range rec.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", k, cellValue(rec.Fields[k])))
		}

		if _, err := fmt.Fprintln(w, strings.Join(parts, delim)); err != nil {
			return err
		}
	}
	return nil
}
