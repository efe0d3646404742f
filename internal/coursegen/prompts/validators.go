package prompts

import (
	"fmt"
	"strings"
)

type Validator func(Input) error

// RequireAnyNonEmpty passes when at least one of fields has non-blank text.
func RequireAnyNonEmpty(fields ...string) Validator {
	return func(in Input) error {
		for _, f := range fields {
			if strings.TrimSpace(in[f]) != "" {
				return nil
			}
		}
		return fmt.Errorf("one of %s required", strings.Join(fields, "|"))
	}
}
