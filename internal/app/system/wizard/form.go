// Package wizard implements the multi-step registration form: the form
// definition, the section navigator state machine, and the required-field
// validator. It is independent of HTTP and templates; callers supply a
// SectionView that reflects state into whatever renders the form.
package wizard

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/dalemusser/admissions/internal/domain/models"
	"gopkg.in/yaml.v3"
)

//go:embed registration.yaml
var defaultFormYAML []byte

// FieldKind is the control type of a field.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindEmail    FieldKind = "email"
	KindTel      FieldKind = "tel"
	KindDate     FieldKind = "date"
	KindSelect   FieldKind = "select"
	KindCheckbox FieldKind = "checkbox"
	KindTextarea FieldKind = "textarea"
	KindGeo      FieldKind = "geo"
)

func (k FieldKind) valid() bool {
	switch k {
	case KindText, KindEmail, KindTel, KindDate, KindSelect, KindCheckbox, KindTextarea, KindGeo:
		return true
	}
	return false
}

// Option is a static choice of a select field.
type Option struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

// FieldDef describes one named control.
//
// Group names the address a field belongs to ("present", "permanent").
// Geo fields carry the cascade Level; plain address fields carry the
// Part they fill (street, postal_code, complete).
type FieldDef struct {
	Name     string          `yaml:"name"`
	Label    string          `yaml:"label"`
	Kind     FieldKind       `yaml:"kind"`
	Required bool            `yaml:"required"`
	Options  []Option        `yaml:"options"`
	Group    string          `yaml:"group"`
	Level    models.GeoLevel `yaml:"level"`
	Part     string          `yaml:"part"`
}

// SectionDef is one page of the form.
type SectionDef struct {
	Key    string     `yaml:"key"`
	Title  string     `yaml:"title"`
	Fields []FieldDef `yaml:"fields"`
}

// MirrorDef names the "same as" toggle and the two address groups it links.
type MirrorDef struct {
	Toggle string `yaml:"toggle"`
	From   string `yaml:"from"`
	To     string `yaml:"to"`
}

// FormDef is the ordered list of sections.
type FormDef struct {
	Name     string       `yaml:"name"`
	Title    string       `yaml:"title"`
	Mirror   MirrorDef    `yaml:"address_mirror"`
	Sections []SectionDef `yaml:"sections"`

	index map[string]fieldRef
}

type fieldRef struct {
	section int
	field   int
}

// ErrEmptyForm is returned when a definition has no sections.
var ErrEmptyForm = errors.New("wizard: form has no sections")

// DefaultForm returns the embedded registration form.
// It panics if the embedded definition is malformed.
func DefaultForm() *FormDef {
	f, err := ParseForm(defaultFormYAML)
	if err != nil {
		panic(fmt.Sprintf("wizard: embedded form: %v", err))
	}
	return f
}

// LoadForm reads a YAML form definition from disk.
func LoadForm(path string) (*FormDef, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read form definition: %w", err)
	}
	return ParseForm(b)
}

// ParseForm decodes and checks a YAML form definition.
func ParseForm(data []byte) (*FormDef, error) {
	var f FormDef
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse form definition: %w", err)
	}
	if err := f.build(); err != nil {
		return nil, err
	}
	return &f, nil
}

// NewForm builds a definition from sections in code.
func NewForm(name string, sections ...SectionDef) (*FormDef, error) {
	f := &FormDef{Name: name, Sections: sections}
	if err := f.build(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *FormDef) build() error {
	if len(f.Sections) == 0 {
		return ErrEmptyForm
	}
	f.index = make(map[string]fieldRef)
	for si, s := range f.Sections {
		if s.Key == "" {
			return fmt.Errorf("wizard: section %d has no key", si)
		}
		for fi, fd := range s.Fields {
			if fd.Name == "" {
				return fmt.Errorf("wizard: section %q field %d has no name", s.Key, fi)
			}
			if !fd.Kind.valid() {
				return fmt.Errorf("wizard: field %q has unknown kind %q", fd.Name, fd.Kind)
			}
			if fd.Kind == KindGeo && (fd.Group == "" || !fd.Level.Valid()) {
				return fmt.Errorf("wizard: geo field %q needs a group and a valid level", fd.Name)
			}
			if _, dup := f.index[fd.Name]; dup {
				return fmt.Errorf("wizard: duplicate field name %q", fd.Name)
			}
			f.index[fd.Name] = fieldRef{section: si, field: fi}
		}
	}
	if t := f.Mirror.Toggle; t != "" {
		if _, ok := f.index[t]; !ok {
			return fmt.Errorf("wizard: mirror toggle %q is not a field", t)
		}
	}
	return nil
}

// Len returns the number of sections.
func (f *FormDef) Len() int { return len(f.Sections) }

// Section returns section i.
func (f *FormDef) Section(i int) (SectionDef, bool) {
	if i < 0 || i >= len(f.Sections) {
		return SectionDef{}, false
	}
	return f.Sections[i], true
}

// Field looks up a field by name and reports the section it lives in.
func (f *FormDef) Field(name string) (FieldDef, int, bool) {
	ref, ok := f.index[name]
	if !ok {
		return FieldDef{}, -1, false
	}
	return f.Sections[ref.section].Fields[ref.field], ref.section, true
}

// GeoField returns the geo field for an address group at a level.
func (f *FormDef) GeoField(group string, level models.GeoLevel) (FieldDef, bool) {
	for _, s := range f.Sections {
		for _, fd := range s.Fields {
			if fd.Kind == KindGeo && fd.Group == group && fd.Level == level {
				return fd, true
			}
		}
	}
	return FieldDef{}, false
}

// GroupFields returns every field of an address group in definition order.
func (f *FormDef) GroupFields(group string) []FieldDef {
	var out []FieldDef
	for _, s := range f.Sections {
		for _, fd := range s.Fields {
			if fd.Group == group {
				out = append(out, fd)
			}
		}
	}
	return out
}
