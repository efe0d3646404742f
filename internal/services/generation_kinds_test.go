package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/yanxue-backend/internal/coursegen"
	"github.com/yungbote/yanxue-backend/internal/coursegen/schema"
	"github.com/yungbote/yanxue-backend/internal/platform/logger"
)

// fullInput fills every alternative of every required group.
func fullInput(t *testing.T, kind coursegen.Kind) coursegen.Input {
	t.Helper()
	sch, err := schema.Get(kind)
	require.NoError(t, err)
	in := coursegen.Input{}
	for _, g := range sch.RequiredInputFields() {
		for _, name := range g {
			in[name] = "3"
		}
	}
	return in
}

func sampleValue(fs schema.FieldShape) any {
	rec := func() map[string]any {
		m := map[string]any{}
		for _, f := range fs.Fields {
			m[f] = "x"
		}
		return m
	}
	switch fs.Shape {
	case schema.ListOfScalar:
		return []any{"x"}
	case schema.Record:
		return rec()
	case schema.ListOfRecord:
		return []any{rec()}
	}
	return "x"
}

// replyFor builds a conforming reply for kind, minus the skipped field.
func replyFor(t *testing.T, kind coursegen.Kind, skip string) map[string]any {
	t.Helper()
	sch, err := schema.Get(kind)
	require.NoError(t, err)
	obj := map[string]any{}
	for _, f := range sch.Outputs {
		if f.Name != skip {
			obj[f.Name] = sampleValue(f.FieldShape)
		}
	}
	return obj
}

func encode(t *testing.T, v any) string {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return string(raw)
}

func TestRunEveryKindAcceptsConformingReply(t *testing.T) {
	for _, kind := range coursegen.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			store := &stubStore{}
			gen := &stubGenerator{reply: encode(t, replyFor(t, kind, ""))}
			svc := NewGenerationService(logger.Nop(), store, gen, nil, nil, nil)

			_, _, err := svc.Run(context.Background(), kind, fullInput(t, kind))
			require.NoError(t, err)
			assert.Equal(t, 1, gen.calls)
			assert.Equal(t, 1, store.count())
		})
	}
}

func TestRunEveryKindMissingRequiredGroup(t *testing.T) {
	for _, kind := range coursegen.Kinds() {
		sch, err := schema.Get(kind)
		require.NoError(t, err)
		for _, g := range sch.RequiredInputFields() {
			g := g
			t.Run(string(kind)+"/"+g.String(), func(t *testing.T) {
				store := &stubStore{}
				gen := &stubGenerator{reply: encode(t, replyFor(t, kind, ""))}
				svc := NewGenerationService(logger.Nop(), store, gen, nil, nil, nil)

				in := fullInput(t, kind)
				for _, name := range g {
					in[name] = "  "
				}
				_, _, err := svc.Run(context.Background(), kind, in)
				require.Error(t, err)
				assert.True(t, errors.Is(err, &coursegen.Error{Code: coursegen.CodeMissingRequiredField, Field: g.String()}), "got %v", err)
				assert.Equal(t, 0, gen.calls)
				assert.Equal(t, 0, store.count())
			})
		}
	}
}

func TestRunEveryKindSingleAlternativeSatisfiesGroup(t *testing.T) {
	for _, kind := range coursegen.Kinds() {
		sch, err := schema.Get(kind)
		require.NoError(t, err)
		for _, g := range sch.RequiredInputFields() {
			if len(g) < 2 {
				continue
			}
			for _, keep := range g {
				g, keep := g, keep
				t.Run(string(kind)+"/"+keep, func(t *testing.T) {
					store := &stubStore{}
					gen := &stubGenerator{reply: encode(t, replyFor(t, kind, ""))}
					svc := NewGenerationService(logger.Nop(), store, gen, nil, nil, nil)

					in := fullInput(t, kind)
					for _, name := range g {
						if name != keep {
							delete(in, name)
						}
					}
					_, _, err := svc.Run(context.Background(), kind, in)
					require.NoError(t, err)
					assert.Equal(t, 1, gen.calls)
					assert.Equal(t, 1, store.count())
				})
			}
		}
	}
}

func TestRunEveryKindUnparsableReply(t *testing.T) {
	for _, kind := range coursegen.Kinds() {
		for _, reply := range []string{"抱歉，我无法生成该内容。", `{"unterminated":`, `["not","an","object"]`} {
			kind, reply := kind, reply
			t.Run(string(kind), func(t *testing.T) {
				store := &stubStore{}
				gen := &stubGenerator{reply: reply}
				svc := NewGenerationService(logger.Nop(), store, gen, nil, nil, nil)

				_, _, err := svc.Run(context.Background(), kind, fullInput(t, kind))
				assert.True(t, errors.Is(err, coursegen.ErrParse), "got %v", err)
				assert.Equal(t, 1, gen.calls)
				assert.Equal(t, 0, store.count())
			})
		}
	}
}

func TestRunEveryKindMissingOutputField(t *testing.T) {
	for _, kind := range coursegen.Kinds() {
		sch, err := schema.Get(kind)
		require.NoError(t, err)
		for _, f := range sch.Outputs {
			f := f
			t.Run(string(kind)+"/"+f.Name, func(t *testing.T) {
				store := &stubStore{}
				gen := &stubGenerator{reply: encode(t, replyFor(t, kind, f.Name))}
				svc := NewGenerationService(logger.Nop(), store, gen, nil, nil, nil)

				_, out, err := svc.Run(context.Background(), kind, fullInput(t, kind))
				assert.Equal(t, 1, gen.calls)
				if f.Shape.IsList() {
					require.NoError(t, err)
					assert.Equal(t, []any{}, out[f.Name])
					assert.Equal(t, 1, store.count())
					return
				}
				assert.True(t, errors.Is(err, &coursegen.Error{Code: coursegen.CodeValidation, Field: f.Name}), "got %v", err)
				assert.Equal(t, 0, store.count())
			})
		}
	}
}

func TestRunEveryKindWrongShapedOutputField(t *testing.T) {
	for _, kind := range coursegen.Kinds() {
		sch, err := schema.Get(kind)
		require.NoError(t, err)
		for _, f := range sch.Outputs {
			f := f
			t.Run(string(kind)+"/"+f.Name, func(t *testing.T) {
				reply := replyFor(t, kind, "")
				if f.Shape == schema.Scalar {
					reply[f.Name] = []any{"x"}
				} else {
					reply[f.Name] = "x"
				}
				store := &stubStore{}
				gen := &stubGenerator{reply: encode(t, reply)}
				svc := NewGenerationService(logger.Nop(), store, gen, nil, nil, nil)

				_, _, err := svc.Run(context.Background(), kind, fullInput(t, kind))
				assert.True(t, errors.Is(err, &coursegen.Error{Code: coursegen.CodeValidation, Field: f.Name}), "got %v", err)
				assert.Equal(t, 1, gen.calls)
				assert.Equal(t, 0, store.count())
			})
		}
	}
}
