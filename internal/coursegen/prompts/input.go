package prompts

import (
	"github.com/yungbote/yanxue-backend/internal/coursegen"
)

// Input is the text view of a form: every value already rendered with
// coursegen.Text. Missing keys render empty (templates use missingkey=zero).
type Input map[string]string

func FromForm(in coursegen.Input) Input {
	out := make(Input, len(in))
	for k, v := range in {
		out[k] = coursegen.Text(v)
	}
	return out
}
