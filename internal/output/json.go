package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/subsort/subsort/pkg/types"
)

// JSONFormatter renders records as indented JSON with a metadata
// envelope.
type JSONFormatter struct{}

type jsonEnvelope struct {
	Timestamp       string         `json:"timestamp"`
	TotalSubdomains int            `json:"total_subdomains"`
	EnabledModules  []string       `json:"enabled_modules"`
	Results         []types.Fields `json:"results"`
}

func (f *JSONFormatter) Format(w io.Writer, records []types.ScanRecord, enabledModules []string) error {
	results := make([]types.Fields, len(records))
	for i, rec := range records {
		results[i] = rec.Flatten()
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(jsonEnvelope{
		Timestamp:       time.Now().Format(time.RFC3339),
		TotalSubdomains: len(records),
		EnabledModules:  enabledModules,
		Results:         results,
	})
}
