package domain

import "encoding/json"

const previewLimit = 120

// Summarize builds a bounded ValueSummary for a JSON-like document value.
func Summarize(v any) ValueSummary {
	s := ValueSummary{}

	switch t := v.(type) {
	case nil:
		s.Kind = "null"
	case []any:
		s.Kind = "sequence"
		s.Length = len(t)
	case map[string]any:
		s.Kind = "record"
		s.Length = len(t)
	case string:
		s.Kind = "string"
		s.Length = len(t)
	case bool:
		s.Kind = "bool"
	case float64, float32, int, int64, uint64:
		s.Kind = "number"
	default:
		s.Kind = "unknown"
	}

	b, err := json.Marshal(v)
	if err != nil {
		s.Preview = "<unrenderable>"
		return s
	}

	preview := string(b)
	if len(preview) > previewLimit {
		preview = preview[:previewLimit]
		s.Truncated = true
	}
	s.Preview = preview
	return s
}
