package store

// Record is a flat attribute map as persisted: string, int64 and []string
// values keyed by field name. Optional fields are absent keys, never nil
// placeholders.
type Record map[string]any

// String returns the string value of field, or "" when absent.
func (r Record) String(field string) string {
	v, _ := r[field].(string)
	return v
}

// Int64 returns the integer value of field and whether it was present.
// Drivers may surface numbers as int64 or float64 depending on their codec.
func (r Record) Int64(field string) (int64, bool) {
	switch v := r[field].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	}
	return 0, false
}

// StringSlice returns the list value of field, or nil when absent.
func (r Record) StringSlice(field string) []string {
	switch v := r[field].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Has reports whether field is present on the record.
func (r Record) Has(field string) bool {
	_, ok := r[field]
	return ok
}
