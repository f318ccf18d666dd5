package wizard

// MsgRequired is the modal text shown when required fields are empty.
const MsgRequired = "Please fill in all required fields."

// Validator checks required-field presence through a SectionView.
type Validator struct {
	view     SectionView
	sections int
}

// NewValidator returns a validator over a form of n sections.
func NewValidator(view SectionView, n int) *Validator {
	return &Validator{view: view, sections: n}
}

// ValidateSection checks every required control of one section. Invalid
// controls are flagged, the modal is opened and the first invalid control
// is focused.
func (v *Validator) ValidateSection(index int) bool {
	if index < 0 || index >= v.sections {
		return false
	}
	first := v.check(index)
	if first == "" {
		return true
	}
	v.report(first)
	return false
}

// ValidateForm runs the same check over every section. It returns the
// first section holding an invalid control and that control's name, or
// -1 when the whole form is filled.
func (v *Validator) ValidateForm() (int, string) {
	firstSection := -1
	firstName := ""
	for i := 0; i < v.sections; i++ {
		if name := v.check(i); name != "" && firstSection < 0 {
			firstSection, firstName = i, name
		}
	}
	if firstSection < 0 {
		return -1, ""
	}
	v.report(firstName)
	return firstSection, firstName
}

// report opens the modal and focuses the first invalid control.
func (v *Validator) report(first string) {
	v.view.OpenModal(MsgRequired)
	v.view.Focus(first)
}

// check flags controls of one section and returns the first invalid name.
func (v *Validator) check(index int) string {
	first := ""
	for _, c := range v.view.Controls(index) {
		if !c.Required {
			continue
		}
		bad := c.Empty()
		v.view.SetInvalid(c.Name, bad)
		if bad && first == "" {
			first = c.Name
		}
	}
	return first
}
