// Package formdef loads declarative form definitions from YAML and turns them
// into stepform steps.
package formdef

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/stepform/internal/logger"
	"github.com/mark3labs/stepform/internal/stepform"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// FieldType is the kind of input a field renders as.
type FieldType string

const (
	TypeText     FieldType = "text"
	TypeEmail    FieldType = "email"
	TypeNumber   FieldType = "number"
	TypePassword FieldType = "password"
	TypeFile     FieldType = "file"
	TypeSelect   FieldType = "select"
)

// Valid reports whether t is a known field type.
func (t FieldType) Valid() bool {
	switch t {
	case TypeText, TypeEmail, TypeNumber, TypePassword, TypeFile, TypeSelect:
		return true
	}
	return false
}

// Definition is one form file.
type Definition struct {
	Title        string     `yaml:"title"`
	Icon         string     `yaml:"icon,omitempty"`
	Route        string     `yaml:"route,omitempty"`
	ConfirmSteps bool       `yaml:"confirm_steps,omitempty"`
	Steps        []StepSpec `yaml:"steps"`
}

// StepSpec is one page of the form.
type StepSpec struct {
	Label       string  `yaml:"label"`
	Description string  `yaml:"description,omitempty"`
	Fields      []Field `yaml:"fields"`
}

// Field is a single input.
type Field struct {
	Name        string    `yaml:"name"`
	Label       string    `yaml:"label,omitempty"`
	Type        FieldType `yaml:"type,omitempty"`
	Placeholder string    `yaml:"placeholder,omitempty"`
	Rules       string    `yaml:"rules,omitempty"` // validator tags, e.g. "required,email"
	Options     []string  `yaml:"options,omitempty"`
	Default     any       `yaml:"default,omitempty"`
}

// DisplayLabel returns Label, falling back to Name.
func (f Field) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// Kind returns Type, defaulting to text.
func (f Field) Kind() FieldType {
	if f.Type == "" {
		return TypeText
	}
	return f.Type
}

// Required reports whether the field's rules start with or include "required".
func (f Field) Required() bool {
	for _, r := range strings.Split(f.Rules, ",") {
		if strings.TrimSpace(r) == "required" {
			return true
		}
	}
	return false
}

// Parse decodes and validates a definition.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse form definition: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Load reads a definition from fs.
func Load(fs afero.Fs, path string) (*Definition, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read form definition: %w", err)
	}
	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Debug("Loaded form %q from %s (%d steps)", def.Title, path, len(def.Steps))
	return def, nil
}

// Validate checks the definition for structural mistakes and unknown rules.
// All problems are reported together.
func (d *Definition) Validate() error {
	var errs []error
	if len(d.Steps) == 0 {
		errs = append(errs, errors.New("form has no steps"))
	}

	seen := make(map[string]string)
	for i, s := range d.Steps {
		where := fmt.Sprintf("step %d", i+1)
		if s.Label == "" {
			errs = append(errs, fmt.Errorf("%s: label is required", where))
		} else {
			where = fmt.Sprintf("step %q", s.Label)
		}
		for j, f := range s.Fields {
			if f.Name == "" {
				errs = append(errs, fmt.Errorf("%s: field %d has no name", where, j+1))
				continue
			}
			if prev, dup := seen[f.Name]; dup {
				errs = append(errs, fmt.Errorf("%s: field %q already defined in %s", where, f.Name, prev))
			}
			seen[f.Name] = where
			if !f.Kind().Valid() {
				errs = append(errs, fmt.Errorf("%s: field %q has unknown type %q", where, f.Name, f.Type))
			}
			if f.Kind() == TypeSelect && len(f.Options) == 0 {
				errs = append(errs, fmt.Errorf("%s: select field %q needs options", where, f.Name))
			}
			if err := stepform.CheckRule(f.Rules); err != nil {
				errs = append(errs, fmt.Errorf("%s: field %q: %w", where, f.Name, err))
			}
		}
	}
	return errors.Join(errs...)
}

// Fields returns every field in step order.
func (d *Definition) Fields() []Field {
	var out []Field
	for _, s := range d.Steps {
		out = append(out, s.Fields...)
	}
	return out
}

// SecretFields returns the names of password fields.
func (d *Definition) SecretFields() []string {
	var out []string
	for _, f := range d.Fields() {
		if f.Kind() == TypePassword {
			out = append(out, f.Name)
		}
	}
	return out
}
