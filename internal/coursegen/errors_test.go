package coursegen

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMatchesByCode(t *testing.T) {
	err := fmt.Errorf("run: %w", Errorf(CodeMissingRequiredField, "duration", "missing required field: duration"))

	assert.True(t, errors.Is(err, ErrMissingRequiredField))
	assert.False(t, errors.Is(err, ErrParse))
	assert.True(t, errors.Is(err, &Error{Code: CodeMissingRequiredField, Field: "duration"}))
	assert.False(t, errors.Is(err, &Error{Code: CodeMissingRequiredField, Field: "location"}))
	assert.Equal(t, CodeMissingRequiredField, CodeOf(err))
	assert.Equal(t, Code(""), CodeOf(errors.New("plain")))

	var ce *Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "duration", ce.Field)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Itinerary ")
	require.NoError(t, err)
	assert.Equal(t, KindItinerary, k)

	_, err = ParseKind("lessonPlan")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownKind)
	assert.Len(t, Kinds(), 5)
}

func TestInputPresent(t *testing.T) {
	in := Input{
		"blank":  "   ",
		"title":  "北京",
		"zero":   0.0,
		"flag":   false,
		"none":   nil,
		"list":   []any{},
		"object": map[string]any{"a": 1.0},
	}
	cases := map[string]bool{
		"blank":   false,
		"title":   true,
		"zero":    true,
		"flag":    true,
		"none":    false,
		"list":    false,
		"object":  true,
		"missing": false,
	}
	for field, want := range cases {
		if got := in.Present(field); got != want {
			t.Fatalf("Present(%q): got=%v want=%v", field, got, want)
		}
	}
}

func TestTextIsCanonical(t *testing.T) {
	assert.Equal(t, "5", Text(5.0))
	assert.Equal(t, "2.5", Text(2.5))
	assert.Equal(t, "true", Text(true))
	assert.Equal(t, "", Text(nil))
	assert.Equal(t, "原样", Text("原样"))
	assert.Equal(t, `{"a":1,"b":["x"]}`, Text(map[string]any{"b": []any{"x"}, "a": 1}))
}

func TestInputClone(t *testing.T) {
	in := Input{"courseStructure": map[string]any{"name": "模块一"}}
	out := in.Clone()
	out["courseStructure"].(map[string]any)["name"] = "changed"
	assert.Equal(t, "模块一", in["courseStructure"].(map[string]any)["name"])
}
