package formdef

import (
	"strings"

	"github.com/mark3labs/stepform/internal/stepform"
)

// FormSteps builds controller steps. Each step's component is its StepSpec, for
// hosts to render, and its validator applies the field rules.
func (d *Definition) FormSteps() []stepform.Step {
	out := make([]stepform.Step, len(d.Steps))
	for i, s := range d.Steps {
		rules := make(map[string]string, len(s.Fields))
		for _, f := range s.Fields {
			if tag := f.rule(); tag != "" {
				rules[f.Name] = tag
			}
		}
		step := stepform.Step{Label: s.Label, Component: s}
		if len(rules) > 0 {
			step.Validate = stepform.FieldRules(rules)
		}
		out[i] = step
	}
	return out
}

// rule returns the validator tag for f, adding the format check implied by
// its type.
func (f Field) rule() string {
	tag := strings.TrimSpace(f.Rules)
	if f.Kind() != TypeEmail || strings.Contains(tag, "email") {
		return tag
	}
	if tag == "" {
		return "omitempty,email"
	}
	return tag + ",email"
}
