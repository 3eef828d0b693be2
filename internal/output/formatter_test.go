package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subsort/subsort/pkg/types"
)

func sampleRecords() []types.ScanRecord {
	a := types.NewScanRecord("a.example.com")
	a.Fields["status_code"] = 200
	a.Fields["title"] = "Site A"
	a.Fields["security_headers"] = map[string]string{"X-Frame-Options": "DENY"}

	b := types.NewScanRecord("b.example.com")
	b.Fields["status_code"] = 404
	b.Fields["server_info"] = "nginx"

	return []types.ScanRecord{a, b}
}

func TestGetFormatter(t *testing.T) {
	for _, format := range []string{"json", "csv", "txt", "table"} {
		f, err := GetFormatter(format)
		require.NoError(t, err, format)
		assert.NotNil(t, f)
	}

	_, err := GetFormatter("yaml")
	assert.Error(t, err)
}

func TestJSONFormatter_Envelope(t *testing.T) {
	var buf bytes.Buffer
	f := &JSONFormatter{}
	require.NoError(t, f.Format(&buf, sampleRecords(), []string{"status", "title"}))

	var envelope struct {
		Timestamp       string           `json:"timestamp"`
		TotalSubdomains int              `json:"total_subdomains"`
		EnabledModules  []string         `json:"enabled_modules"`
		Results         []map[string]any `json:"results"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &envelope))

	assert.NotEmpty(t, envelope.Timestamp)
	assert.Equal(t, 2, envelope.TotalSubdomains)
	assert.Equal(t, []string{"status", "title"}, envelope.EnabledModules)
	require.Len(t, envelope.Results, 2)
	assert.Equal(t, "a.example.com", envelope.Results[0]["subdomain"])
	assert.NotNil(t, envelope.Results[0]["timestamp"])
}

func TestCSVFormatter_UnionSortedColumns(t *testing.T) {
	var buf bytes.Buffer
	f := &CSVFormatter{}
	require.NoError(t, f.Format(&buf, sampleRecords(), nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	header := rows[0]
	// Union of all keys across both records, sorted.
	assert.Equal(t, []string{
		"security_headers", "server_info", "status_code", "subdomain", "timestamp", "title",
	}, header)

	// Nested values are JSON-encoded inline.
	idx := map[string]int{}
	for i, h := range header {
		idx[h] = i
	}
	assert.JSONEq(t, `{"X-Frame-Options":"DENY"}`, rows[1][idx["security_headers"]])
	assert.Equal(t, "", rows[2][idx["title"]])
	assert.Equal(t, "404", rows[2][idx["status_code"]])
}

func TestCSVFormatter_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&CSVFormatter{}).Format(&buf, nil, nil))
	assert.Empty(t, buf.String())
}

func TestTextFormatter_OneLinePerRecord(t *testing.T) {
	var buf bytes.Buffer
	f := &TextFormatter{Delimiter: " | "}
	require.NoError(t, f.Format(&buf, sampleRecords(), nil))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "a.example.com | "))
	assert.Contains(t, lines[0], "status_code=200")
	assert.Contains(t, lines[1], "server_info=nginx")
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TableFormatter{}).Format(&buf, sampleRecords(), nil))

	out := buf.String()
	assert.Contains(t, out, "a.example.com")
	assert.Contains(t, out, "b.example.com")
	assert.Contains(t, out, "Total: 2 subdomains processed")
}

func TestCellValue(t *testing.T) {
	assert.Equal(t, "", cellValue(nil))
	assert.Equal(t, "plain", cellValue("plain"))
	assert.Equal(t, "true", cellValue(true))
	assert.Equal(t, "42", cellValue(42))
	assert.JSONEq(t, `["a","b"]`, cellValue([]string{"a", "b"}))
}
