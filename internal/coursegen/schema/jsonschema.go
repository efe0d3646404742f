package schema

func scalarSchema() map[string]any {
	return map[string]any{"type": []any{"string", "number", "boolean"}}
}

func scalarOrListSchema() map[string]any {
	return map[string]any{
		"anyOf": []any{
			scalarSchema(),
			map[string]any{"type": "array", "items": scalarSchema()},
		},
	}
}

func objectSchema(fields []string) map[string]any {
	props := map[string]any{}
	for _, f := range fields {
		props[f] = scalarOrListSchema()
	}
	return map[string]any{"type": "object", "properties": props}
}

func shapeSchema(f Field) map[string]any {
	var out map[string]any
	switch f.Shape {
	case Scalar:
		out = scalarSchema()
	case ListOfScalar:
		out = map[string]any{"type": "array", "items": scalarSchema()}
	case Record:
		out = objectSchema(f.Fields)
	case ListOfRecord:
		out = map[string]any{"type": "array", "items": objectSchema(f.Fields)}
	default:
		out = map[string]any{}
	}
	if f.Description != "" {
		out["description"] = f.Description
	}
	return out
}

// JSONSchema describes the reply object in JSON-schema form. Only Scalar
// and Record fields are required; list fields default to [].
func (s Schema) JSONSchema() map[string]any {
	props := map[string]any{}
	required := []any{}
	for _, f := range s.Outputs {
		props[f.Name] = shapeSchema(f)
		if !f.Shape.IsList() {
			required = append(required, f.Name)
		}
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

// InputSchema lists required input groups for documentation.
func (s Schema) InputSchema() []map[string]any {
	out := make([]map[string]any, 0, len(s.RequiredInputs))
	for _, g := range s.RequiredInputs {
		alts := make([]any, 0, len(g))
		for _, name := range g {
			alts = append(alts, name)
		}
		out = append(out, map[string]any{"anyOf": alts})
	}
	return out
}
