// Package render substitutes {{variable}} placeholders in template
// content. Rendering is pure: it never mutates the template and never
// fails on missing variables.
package render

import (
	"strings"

	"github.com/tradekart/notifier/internal/notification/entity"
)

// Rendered is the concrete content produced from one template.
type Rendered struct {
	Subject string
	Body    string
}

// Render fills the template's subject and body with vars. For each
// declared variable the value is vars[name], then the template default,
// then the empty string. Undeclared placeholders are left untouched.
func Render(tpl *entity.Template, vars map[string]string) Rendered {
	if tpl == nil {
		return Rendered{}
	}

	pairs := substitutionPairs(tpl.Variables, tpl.Defaults, vars)
	if len(pairs) == 0 {
		return Rendered{Subject: tpl.Subject, Body: tpl.Content}
	}

	r := strings.NewReplacer(pairs...)
	return Rendered{
		Subject: r.Replace(tpl.Subject),
		Body:    r.Replace(tpl.Content),
	}
}

// RenderString applies the same substitution rule to a single string.
func RenderString(content string, declared []string, defaults, vars map[string]string) string {
	pairs := substitutionPairs(declared, defaults, vars)
	if len(pairs) == 0 {
		return content
	}
	return strings.NewReplacer(pairs...).Replace(content)
}

func substitutionPairs(declared []string, defaults, vars map[string]string) []string {
	pairs := make([]string, 0, len(declared)*2)
	for _, name := range declared {
		if name == "" {
			continue
		}

		value, ok := vars[name]
		if !ok {
			value = defaults[name]
		}
		pairs = append(pairs, "{{"+name+"}}", value)
	}
	return pairs
}
