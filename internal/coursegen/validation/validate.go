package validation

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/yungbote/yanxue-backend/internal/coursegen"
	"github.com/yungbote/yanxue-backend/internal/coursegen/schema"
)

// Validate parses raw model text and checks it against kind's output shape.
// Absent list fields are defaulted to []; unknown fields pass through.
func Validate(kind coursegen.Kind, raw string) (coursegen.Output, error) {
	s, err := schema.Get(kind)
	if err != nil {
		return nil, err
	}
	obj, err := parseObject(raw)
	if err != nil {
		return nil, err
	}
	if err := Conform(s, obj); err != nil {
		return nil, err
	}
	return coursegen.Output(obj), nil
}

// Conform checks obj in place against s, filling absent list fields.
func Conform(s schema.Schema, obj map[string]any) error {
	for _, f := range s.Outputs {
		v, ok := obj[f.Name]
		if !ok || v == nil {
			if f.Shape.IsList() {
				obj[f.Name] = []any{}
				continue
			}
			return coursegen.Errorf(coursegen.CodeValidation, f.Name, "missing required output field %q", f.Name)
		}
		if !matches(f.FieldShape, v) {
			return coursegen.Errorf(coursegen.CodeValidation, f.Name, "output field %q is not a %s", f.Name, f.Shape)
		}
	}
	return nil
}

func parseObject(raw string) (map[string]any, error) {
	text := stripFence(raw)
	if text == "" {
		return nil, coursegen.Errorf(coursegen.CodeParse, "", "empty reply")
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, coursegen.NewError(coursegen.CodeParse, "", err)
	}
	if dec.More() {
		return nil, coursegen.Errorf(coursegen.CodeParse, "", "trailing data after JSON value")
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, coursegen.Errorf(coursegen.CodeParse, "", "reply is JSON but not an object")
	}
	return obj, nil
}

// stripFence removes a surrounding ``` or ```json code fence.
func stripFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		lang := strings.TrimSpace(s[:nl])
		if lang == "" || strings.EqualFold(lang, "json") {
			s = s[nl+1:]
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func matches(fs schema.FieldShape, v any) bool {
	switch fs.Shape {
	case schema.Scalar:
		return isScalar(v)
	case schema.ListOfScalar:
		list, ok := v.([]any)
		if !ok {
			return false
		}
		for _, item := range list {
			if !isScalar(item) {
				return false
			}
		}
		return true
	case schema.Record:
		obj, ok := v.(map[string]any)
		return ok && recordOK(fs.Fields, obj)
	case schema.ListOfRecord:
		list, ok := v.([]any)
		if !ok {
			return false
		}
		for _, item := range list {
			obj, ok := item.(map[string]any)
			if !ok || !recordOK(fs.Fields, obj) {
				return false
			}
		}
		return true
	}
	return false
}

// recordOK accepts sub-fields holding a scalar or a list of scalars.
// Missing sub-fields are tolerated.
func recordOK(fields []string, obj map[string]any) bool {
	for _, name := range fields {
		v, ok := obj[name]
		if !ok || v == nil {
			continue
		}
		if isScalar(v) {
			continue
		}
		list, ok := v.([]any)
		if !ok {
			return false
		}
		for _, item := range list {
			if !isScalar(item) {
				return false
			}
		}
	}
	return true
}

func isScalar(v any) bool {
	switch v.(type) {
	case string, float64, bool, json.Number:
		return true
	}
	return false
}
