package wizard

import "net/url"

// ValuesView is a SectionView over submitted form values. It records the
// effects the navigator asks for so a template can render them.
type ValuesView struct {
	form   *FormDef
	values url.Values

	Visible int
	Steps   []StepState
	Invalid map[string]bool
	Modal   string
	FocusOn string
	Final   bool
}

// NewValuesView binds a form definition to posted values.
func NewValuesView(form *FormDef, values url.Values) *ValuesView {
	if values == nil {
		values = url.Values{}
	}
	return &ValuesView{
		form:    form,
		values:  values,
		Steps:   make([]StepState, form.Len()),
		Invalid: make(map[string]bool),
	}
}

// Values returns the bound values.
func (v *ValuesView) Values() url.Values { return v.values }

// Controls implements SectionView.
func (v *ValuesView) Controls(section int) []Control {
	s, ok := v.form.Section(section)
	if !ok {
		return nil
	}
	out := make([]Control, 0, len(s.Fields))
	for _, fd := range s.Fields {
		c := Control{Name: fd.Name, Kind: fd.Kind, Required: fd.Required}
		if fd.Kind == KindCheckbox {
			c.Checked = Checked(v.values.Get(fd.Name))
		} else {
			c.Value = v.values.Get(fd.Name)
		}
		out = append(out, c)
	}
	return out
}

// Show implements SectionView. Focus goes to the section's first field
// unless something else claims it afterwards.
func (v *ValuesView) Show(section int) {
	v.Visible = section
	if s, ok := v.form.Section(section); ok && len(s.Fields) > 0 {
		v.FocusOn = s.Fields[0].Name
	}
}

// SetStep implements SectionView.
func (v *ValuesView) SetStep(step int, state StepState) {
	if step >= 0 && step < len(v.Steps) {
		v.Steps[step] = state
	}
}

// SetInvalid implements SectionView.
func (v *ValuesView) SetInvalid(name string, invalid bool) {
	if invalid {
		v.Invalid[name] = true
		return
	}
	delete(v.Invalid, name)
}

// OpenModal implements SectionView.
func (v *ValuesView) OpenModal(message string) { v.Modal = message }

// Focus implements SectionView.
func (v *ValuesView) Focus(name string) { v.FocusOn = name }

// SetFinal implements SectionView.
func (v *ValuesView) SetFinal(final bool) { v.Final = final }

// Checked interprets an HTML checkbox value.
func Checked(v string) bool {
	switch v {
	case "", "0", "false", "off":
		return false
	}
	return true
}
