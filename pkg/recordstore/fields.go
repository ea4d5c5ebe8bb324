package recordstore

// Str reads a string field, tolerating absence and nulls.
func (f Fields) Str(key string) string {
	if v, ok := f[key].(string); ok {
		return v
	}
	return ""
}

// Bool reads a boolean field. The backend stores checkboxes as
// booleans or 0/1 numbers depending on the column age.
func (f Fields) Bool(key string) bool {
	switch v := f[key].(type) {
	case bool:
		return v
	case float64:
		return v != 0
	default:
		return false
	}
}

// StrList reads a field that may hold a single string or a list.
func (f Fields) StrList(key string) []string {
	switch v := f[key].(type) {
	case nil:
		return nil
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
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
	default:
		return nil
	}
}
