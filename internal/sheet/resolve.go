package sheet

import (
	"strings"
)

// identifierTokens mark a header as the record identifier column. Any token
// qualifies; the tokens carry no priority among themselves.
var identifierTokens = []string{"ref", "lote", "subasta", "id"}

// IdentifierColumn picks the column used to match references: the first
// header, in header order, whose lowercase name contains any identifier
// token. With no match it falls back to the first header, and returns "" for
// an empty header list.
func IdentifierColumn(headers []string) string {
	for _, h := range headers {
		lower := strings.ToLower(h)
		for _, tok := range identifierTokens {
			if strings.Contains(lower, tok) {
				return h
			}
		}
	}
	if len(headers) > 0 {
		return headers[0]
	}
	return ""
}

// FindByReference returns the first record whose identifier cell equals the
// query after trimming and case folding both sides. It returns a
// *NotFoundError when the dataset is empty or nothing matches.
func FindByReference(ds *Dataset, query string) (Record, error) {
	if ds.Len() == 0 {
		return Record{}, &NotFoundError{Reference: query}
	}

	column := ds.IDColumn
	if column == "" {
		column = IdentifierColumn(ds.Headers)
	}

	want := normalize(query)
	for _, rec := range ds.Records {
		if normalize(rec.Get(column)) == want {
			return rec, nil
		}
	}
	return Record{}, &NotFoundError{Reference: query}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
