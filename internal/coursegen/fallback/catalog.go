package fallback

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/yanxue-backend/internal/coursegen"
	"github.com/yungbote/yanxue-backend/internal/platform/logger"
)

const templatesEnv = "FALLBACK_TEMPLATES_YAML"

const defaultDays = 1

// MaxDays is the longest itinerary the catalog lays out day by day.
const MaxDays = 60

//go:embed fallback.yaml
var templatesFS embed.FS

type yamlCatalog struct {
	Version int                       `yaml:"version"`
	Kinds   map[string]map[string]any `yaml:"kinds"`
}

// Catalog renders canned, schema-conforming replies from form input.
type Catalog struct {
	kinds map[coursegen.Kind]node
}

// Load reads the catalog from FALLBACK_TEMPLATES_YAML when set, otherwise
// from the embedded copy. A broken override falls back to the embedded copy.
func Load(log *logger.Logger) (*Catalog, error) {
	if path := strings.TrimSpace(os.Getenv(templatesEnv)); path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			var c *Catalog
			if c, err = Parse(data); err == nil {
				return c, nil
			}
		}
		if log != nil {
			log.Warn("fallback templates override unusable, using embedded copy", "path", path, "error", err)
		}
	}
	data, err := templatesFS.ReadFile("fallback.yaml")
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse compiles a catalog document. Every known kind must be present.
func Parse(data []byte) (*Catalog, error) {
	var doc yamlCatalog
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse fallback templates: %w", err)
	}
	if doc.Version != 1 {
		return nil, fmt.Errorf("unsupported fallback templates version %d", doc.Version)
	}
	c := &Catalog{kinds: map[coursegen.Kind]node{}}
	for _, kind := range coursegen.Kinds() {
		tree, ok := doc.Kinds[string(kind)]
		if !ok {
			return nil, fmt.Errorf("fallback templates missing kind %s", kind)
		}
		n, err := compile(string(kind), tree)
		if err != nil {
			return nil, err
		}
		c.kinds[kind] = n
	}
	return c, nil
}

// Render returns the canned reply for kind as JSON text, ready for the
// same validator the live path uses.
func (c *Catalog) Render(kind coursegen.Kind, in coursegen.Input) (string, error) {
	if c == nil {
		return "", errors.New("fallback catalog not loaded")
	}
	n, ok := c.kinds[kind]
	if !ok {
		return "", coursegen.Errorf(coursegen.CodeUnknownKind, "", "unknown operation kind %q", string(kind))
	}
	data, err := templateData(kind, in)
	if err != nil {
		return "", err
	}
	out, err := n.render(data)
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func templateData(kind coursegen.Kind, in coursegen.Input) (map[string]string, error) {
	data := make(map[string]string, len(in)+4)
	for k, v := range in {
		data[k] = strings.TrimSpace(coursegen.Text(v))
	}
	if data["courseTitle"] == "" {
		data["courseTitle"] = firstNonEmpty(data["topics"], "本课程")
	}
	if data["objectives"] == "" {
		data["objectives"] = data["courseObjectives"]
	}
	if data["targetAudience"] == "" {
		data["targetAudience"] = "学生"
	}
	if kind == coursegen.KindItinerary {
		n, err := Days(data["duration"])
		if err != nil {
			return nil, err
		}
		data["days"] = strconv.Itoa(n)
	}
	return data, nil
}

// Days turns a duration value into a day count: the leading integer of the
// text, or 1 when there is none. Counts above MaxDays fail with InvalidInput
// rather than being truncated.
func Days(duration string) (int, error) {
	s := strings.TrimSpace(duration)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return defaultDays, nil
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n > MaxDays {
		return 0, coursegen.Errorf(coursegen.CodeInvalidInput, "duration",
			"duration %q exceeds the %d-day itinerary limit", s, MaxDays)
	}
	if n < 1 {
		return defaultDays, nil
	}
	return n, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

type node interface {
	render(data map[string]string) (any, error)
}

type literalNode struct{ v any }

type textNode struct{ t *template.Template }

type listNode []node

type mapNode map[string]node

type eachNode struct {
	countKey string
	item     node
}

func (n literalNode) render(map[string]string) (any, error) { return n.v, nil }

func (n textNode) render(data map[string]string) (any, error) {
	var b bytes.Buffer
	if err := n.t.Execute(&b, data); err != nil {
		return nil, err
	}
	return b.String(), nil
}

func (n listNode) render(data map[string]string) (any, error) {
	out := make([]any, 0, len(n))
	for _, child := range n {
		v, err := child.render(data)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (n mapNode) render(data map[string]string) (any, error) {
	out := make(map[string]any, len(n))
	for k, child := range n {
		v, err := child.render(data)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

func (n eachNode) render(data map[string]string) (any, error) {
	count, _ := strconv.Atoi(data[n.countKey])
	out := make([]any, 0, count)
	for i := 1; i <= count; i++ {
		scoped := make(map[string]string, len(data)+1)
		for k, v := range data {
			scoped[k] = v
		}
		scoped["index"] = strconv.Itoa(i)
		v, err := n.item.render(scoped)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func compile(path string, v any) (node, error) {
	switch t := v.(type) {
	case string:
		if !strings.Contains(t, "{{") {
			return literalNode{v: t}, nil
		}
		tmpl, err := template.New(path).Option("missingkey=zero").Parse(t)
		if err != nil {
			return nil, fmt.Errorf("fallback template %s: %w", path, err)
		}
		return textNode{t: tmpl}, nil
	case []any:
		out := make(listNode, 0, len(t))
		for i, child := range t {
			n, err := compile(fmt.Sprintf("%s[%d]", path, i), child)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil
	case map[string]any:
		if countKey, ok := t["$each"].(string); ok {
			item, err := compile(path+".$item", t["$item"])
			if err != nil {
				return nil, err
			}
			return eachNode{countKey: countKey, item: item}, nil
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(mapNode, len(t))
		for _, k := range keys {
			n, err := compile(path+"."+k, t[k])
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	default:
		return literalNode{v: t}, nil
	}
}
