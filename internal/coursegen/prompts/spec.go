package prompts

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/yungbote/yanxue-backend/internal/coursegen"
	"github.com/yungbote/yanxue-backend/internal/coursegen/schema"
)

// Spec is the declaration format used by RegisterAll.
type Spec struct {
	Kind    coursegen.Kind
	Version int
	// System and User are Go templates over Input ({{.courseTitle}}).
	System string
	User   string
	// Fields lists the input keys the User template interpolates. Any other
	// key the caller sends is appended as a supplementary line.
	Fields []string
}

// MakeTemplate compiles a Spec into a Template.
func MakeTemplate(s Spec) (Template, error) {
	if !s.Kind.Valid() {
		return Template{}, fmt.Errorf("unknown prompt kind %q", s.Kind)
	}
	if s.Version <= 0 {
		return Template{}, fmt.Errorf("invalid version for %s", s.Kind)
	}
	sc, err := schema.Get(s.Kind)
	if err != nil {
		return Template{}, err
	}
	sysT, err := template.New("system").Option("missingkey=zero").Parse(s.System)
	if err != nil {
		return Template{}, fmt.Errorf("%s system template parse: %w", s.Kind, err)
	}
	userT, err := template.New("user").Option("missingkey=zero").Parse(s.User)
	if err != nil {
		return Template{}, fmt.Errorf("%s user template parse: %w", s.Kind, err)
	}
	render := func(t *template.Template, in Input) string {
		var b bytes.Buffer
		_ = t.Execute(&b, in)
		return strings.TrimSpace(b.String())
	}
	known := map[string]bool{"courseId": true}
	for _, f := range s.Fields {
		known[f] = true
	}
	tt := Template{
		Kind:    s.Kind,
		Version: s.Version,
		Schema:  sc,
		System:  func(in Input) string { return render(sysT, in) },
		User:    func(in Input) string { return render(userT, in) },
		known:   known,
	}
	validators := make([]Validator, 0, len(sc.RequiredInputs))
	for _, g := range sc.RequiredInputs {
		validators = append(validators, RequireAnyNonEmpty(g...))
	}
	tt.Validate = func(in Input) error {
		for _, v := range validators {
			if err := v(in); err != nil {
				return err
			}
		}
		return nil
	}
	return tt, nil
}

// RegisterSpec compiles and registers s, panicking on a bad declaration.
func RegisterSpec(s Spec) {
	t, err := MakeTemplate(s)
	if err != nil {
		panic(err)
	}
	Register(t)
}
