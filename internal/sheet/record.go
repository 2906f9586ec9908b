// Package sheet loads the published gemstone spreadsheet, parses its CSV
// export into records, and resolves records by reference code.
package sheet

import (
	"bytes"
	"encoding/json"
	"time"
)

// Record is one spreadsheet row: a mapping from column header to cell value.
// It keeps the dataset's header order so rendering and JSON encoding follow
// the spreadsheet's column order.
type Record struct {
	headers []string
	values  map[string]string
}

// NewRecord builds a Record over the given header order and values.
// Headers missing from values read as "".
func NewRecord(headers []string, values map[string]string) Record {
	if values == nil {
		values = make(map[string]string)
	}
	return Record{headers: headers, values: values}
}

// Get returns the cell value for header, or "" if the column is absent.
func (r Record) Get(header string) string {
	return r.values[header]
}

// Headers returns the column headers in spreadsheet order.
func (r Record) Headers() []string {
	return r.headers
}

// Values returns a copy of the header-to-value mapping.
func (r Record) Values() map[string]string {
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the record as a JSON object whose keys follow the
// header order. Duplicate headers are emitted once.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	seen := make(map[string]bool, len(r.headers))
	first := true
	for _, h := range r.headers {
		if seen[h] {
			continue
		}
		seen[h] = true
		if !first {
			buf.WriteByte(',')
		}
		first = false

		key, err := json.Marshal(h)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[h])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Dataset is the full ordered collection of records loaded from the sheet.
type Dataset struct {
	Headers []string
	Records []Record

	// IDColumn is the identifier column chosen by IdentifierColumn when the
	// dataset was built. It does not change for the dataset's lifetime.
	IDColumn string

	// LoadedAt is when the dataset was built.
	LoadedAt time.Time
}

// NewDataset builds a Dataset and fixes its identifier column.
func NewDataset(headers []string, records []Record) *Dataset {
	return &Dataset{
		Headers:  headers,
		Records:  records,
		IDColumn: IdentifierColumn(headers),
		LoadedAt: time.Now(),
	}
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}
