package util

import "strings"

const bom = "\uFEFF"

// CleanCode strips a leading byte-order-mark artifact and surrounding
// whitespace from an identifier cell.
func CleanCode(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), bom))
}

// Field looks up a record column by name, also trying the BOM-prefixed form
// that CSV exports put on their first header cell.
func Field(record map[string]string, name string) string {
	if v, ok := record[name]; ok {
		return v
	}
	return record[bom+name]
}

// SetField writes a record column, collapsing any BOM-prefixed duplicate of
// the same name.
func SetField(record map[string]string, name, value string) {
	delete(record, bom+name)
	record[name] = value
}

// StripBOM removes a leading byte-order-mark from a header cell.
func StripBOM(s string) string {
	return strings.TrimPrefix(s, bom)
}

func StringPtr(s string) *string { return &s }

func FloatPtr(f float64) *float64 { return &f }
