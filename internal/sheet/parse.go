package sheet

import (
	"strings"
)

// utf8BOM is stripped from the start of the export when present.
const utf8BOM = "\ufeff"

// Parse converts the sheet's CSV export into a Dataset.
//
// Lines are split on LF or CRLF and blank lines are dropped. The first
// remaining line holds the headers. A data row is kept unless every field is
// empty; missing trailing fields read as "" and fields beyond the header
// count are ignored. Parse never fails: malformed quoting degrades to
// whatever parseLine produces.
func Parse(text string) *Dataset {
	text = strings.TrimPrefix(text, utf8BOM)

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}

	if len(lines) == 0 {
		return NewDataset(nil, nil)
	}

	headers := parseLine(lines[0])
	records := make([]Record, 0, len(lines)-1)

	for _, line := range lines[1:] {
		fields := parseLine(line)
		if allEmpty(fields) {
			continue
		}

		values := make(map[string]string, len(headers))
		for i, h := range headers {
			v := ""
			if i < len(fields) {
				v = fields[i]
			}
			values[h] = v
		}
		records = append(records, NewRecord(headers, values))
	}

	return NewDataset(headers, records)
}

// parseLine splits one CSV line into trimmed fields. A double quote toggles
// quoting, a doubled quote inside quotes is a literal quote, and commas inside
// quotes do not separate fields.
func parseLine(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				current.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case c == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteByte(c)
		}
	}

	fields = append(fields, strings.TrimSpace(current.String()))
	return fields
}

func allEmpty(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
