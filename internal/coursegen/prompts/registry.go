package prompts

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/yungbote/yanxue-backend/internal/coursegen"
	"github.com/yungbote/yanxue-backend/internal/coursegen/schema"
)

type Template struct {
	Kind     coursegen.Kind
	Version  int
	Schema   schema.Schema
	System   func(Input) string
	User     func(Input) string
	Validate Validator

	known map[string]bool
}

var (
	registryMu sync.RWMutex
	registry   = map[coursegen.Kind]Template{}
)

func Register(t Template) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[t.Kind] = t
}

func lookup(kind coursegen.Kind) (Template, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	t, ok := registry[kind]
	return t, ok
}

// Build renders the system and user instructions for kind. It is pure:
// identical input yields byte-identical output.
func Build(kind coursegen.Kind, in Input) (Prompt, error) {
	t, ok := lookup(kind)
	if !ok {
		return Prompt{}, coursegen.Errorf(coursegen.CodeUnknownKind, "", "unknown prompt: %s", string(kind))
	}
	if t.System == nil || t.User == nil {
		return Prompt{}, fmt.Errorf("prompt %s missing system/user renderers", string(kind))
	}
	if t.Validate != nil {
		if err := t.Validate(in); err != nil {
			return Prompt{}, coursegen.NewError(coursegen.CodeMissingRequiredField, "", fmt.Errorf("%s: %w", string(kind), err))
		}
	}

	var user strings.Builder
	user.WriteString(strings.TrimSpace(t.User(in)))
	if extra := extraLines(t.known, in); extra != "" {
		user.WriteString("\n\n补充信息：\n")
		user.WriteString(extra)
	}
	user.WriteString("\n\n")
	user.WriteString(fieldList(t.Schema))

	return Prompt{
		Name:    string(t.Kind),
		Version: t.Version,
		System:  strings.TrimSpace(t.System(in)),
		User:    strings.TrimSpace(user.String()),
	}, nil
}

// Render builds the prompt for a raw form.
func Render(kind coursegen.Kind, in coursegen.Input) (Prompt, error) {
	return Build(kind, FromForm(in))
}

func extraLines(known map[string]bool, in Input) string {
	keys := make([]string, 0, len(in))
	for k, v := range in {
		if known[k] || strings.TrimSpace(v) == "" {
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "- %s：%s", k, in[k])
	}
	return b.String()
}

func fieldList(s schema.Schema) string {
	var b strings.Builder
	b.WriteString("请以JSON格式返回，包含以下字段：")
	for _, f := range s.Outputs {
		fmt.Fprintf(&b, "\n- %q: %s", f.Name, f.Description)
	}
	return b.String()
}
