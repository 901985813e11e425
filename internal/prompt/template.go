// Package prompt renders step instructions for the model. A template is plain
// text with {name} placeholders; rendering substitutes every placeholder from
// the supplied bindings and fails loudly when a referenced binding is absent.
package prompt

import (
	"fmt"
	"regexp"
	"strings"
)

// placeholderRe matches {name} tokens. Brace pairs that do not look like an
// identifier (JSON examples, styled text) are left alone.
var placeholderRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// BindingError reports a template placeholder with no corresponding binding.
// It indicates a wiring defect in the caller, not bad model output.
type BindingError struct {
	Name string
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("template references unbound placeholder {%s}", e.Name)
}

// Render substitutes every {name} placeholder in template from bindings.
// A placeholder without a binding is a hard error naming the placeholder;
// unresolved placeholders are never passed through as literal text.
func Render(template string, bindings map[string]string) (string, error) {
	for _, match := range placeholderRe.FindAllStringSubmatch(template, -1) {
		if _, ok := bindings[match[1]]; !ok {
			return "", &BindingError{Name: match[1]}
		}
	}

	return placeholderRe.ReplaceAllStringFunc(template, func(m string) string {
		return bindings[m[1:len(m)-1]]
	}), nil
}

// Placeholders returns the distinct placeholder names in template, in order
// of first appearance.
func Placeholders(template string) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, match := range placeholderRe.FindAllStringSubmatch(template, -1) {
		if _, ok := seen[match[1]]; ok {
			continue
		}
		seen[match[1]] = struct{}{}
		names = append(names, match[1])
	}
	return names
}

// contextLabel turns a binding key into its heading in the task context
// section: first letter upper-cased, underscores as spaces.
func contextLabel(key string) string {
	label := strings.ReplaceAll(key, "_", " ")
	if label == "" {
		return label
	}
	return strings.ToUpper(label[:1]) + label[1:]
}
