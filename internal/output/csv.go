package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/subsort/subsort/pkg/types"
)

// CSVFormatter renders records as CSV. The column set is the sorted
// union of every field name across all records; nested values are
// JSON-encoded inline.
type CSVFormatter struct{}

func (f *CSVFormatter) Format(w io.Writer, records []types.ScanRecord, _ []string) error {
	if len(records) == 0 {
		return nil
	}

	fieldSet := map[string]bool{}
	flattened := make([]types.Fields, len(records))
	for i, rec := range records {
		flattened[i] = rec.Flatten()
		for k := range flattened[i] {
			fieldSet[k] = true
		}
	}

	columns := make([]string, 0, len(fieldSet))
	for k := range fieldSet {
		columns = append(columns, k)
	}
	sort.Strings(columns)

	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}

	row := make([]string, len(columns))
	for _, fields := range flattened {
		for i, col := range columns {
			row[i] = cellValue(fields[col])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// cellValue stringifies one field for a CSV cell. Maps and slices are
// JSON-encoded so nothing is lost in the flat format.
func cellValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool, int, int32, int64, float32, float64:
		return fmt.Sprint(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}
