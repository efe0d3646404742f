package coursegen

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Input is a caller-supplied form, decoded from JSON.
type Input map[string]any

// Output is a validated generation reply.
type Output map[string]any

// Clone returns a deep copy through a JSON round trip.
func (in Input) Clone() Input {
	if in == nil {
		return Input{}
	}
	raw, err := json.Marshal(in)
	if err != nil {
		out := make(Input, len(in))
		for k, v := range in {
			out[k] = v
		}
		return out
	}
	var out Input
	_ = json.Unmarshal(raw, &out)
	return out
}

// Present reports whether the field carries a usable value: trimmed strings
// must be non-empty, lists and objects must have elements, numbers and
// booleans always count, nil never does.
func (in Input) Present(field string) bool {
	v, ok := in[field]
	if !ok {
		return false
	}
	return present(v)
}

func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	case []string:
		return len(t) > 0
	default:
		return true
	}
}

// Text renders the field for interpolation: strings verbatim, everything
// else as canonical JSON. Missing fields render empty.
func (in Input) Text(field string) string {
	return Text(in[field])
}

// Text is the single value-to-text rule shared by prompts and fallbacks.
// encoding/json sorts map keys, which keeps the output deterministic.
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(raw)
}

// CourseID returns input.courseId as text, or "" when absent.
func (in Input) CourseID() string {
	return strings.TrimSpace(in.Text("courseId"))
}
