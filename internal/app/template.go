package app

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/writeit-dev/writeit/internal/domain"
)

// placeholderPattern matches {{input}} and {{steps.<name>}} references with
// optional interior whitespace.
var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_.\-]+)\s*\}\}`)

// RenderPrompt substitutes placeholders in a step prompt template. {{input}}
// expands to the run input; {{steps.<name>}} expands to the named earlier
// step's output. Unknown placeholders and references to steps that have not
// produced output yet return a *domain.ValidationError.
func RenderPrompt(tmpl, input string, outputs map[string]string) (string, error) {
	fields := make(map[string]string)

	rendered := placeholderPattern.ReplaceAllStringFunc(tmpl, func(match string) string {
		ref := placeholderPattern.FindStringSubmatch(match)[1]

		if ref == "input" {
			return input
		}
		if name, ok := strings.CutPrefix(ref, "steps."); ok {
			out, produced := outputs[name]
			if !produced {
				fields[ref] = fmt.Sprintf("step %q has no output at this point", name)
				return match
			}
			return out
		}

		fields[ref] = "unknown placeholder"
		return match
	})

	if len(fields) > 0 {
		return "", &domain.ValidationError{Fields: fields}
	}
	return rendered, nil
}
