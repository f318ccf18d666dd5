package wizard

import "strings"

// StepState is how a progress step is displayed.
type StepState int

const (
	StepPending StepState = iota
	StepActive
	StepCompleted
)

func (s StepState) String() string {
	switch s {
	case StepActive:
		return "active"
	case StepCompleted:
		return "completed"
	default:
		return "pending"
	}
}

// Control is a named form control as seen by the view.
type Control struct {
	Name     string
	Kind     FieldKind
	Required bool
	Value    string
	Checked  bool
}

// Empty reports whether the control counts as unfilled: an unchecked
// checkbox, or a value that is blank after trimming.
func (c Control) Empty() bool {
	if c.Kind == KindCheckbox {
		return !c.Checked
	}
	return strings.TrimSpace(c.Value) == ""
}

// SectionView is what the navigator and validator drive. An
// implementation maps these calls onto a rendered page.
type SectionView interface {
	// Controls lists the named controls of a section in display order.
	Controls(section int) []Control
	// Show makes section the only visible one, scrolls it into view and
	// focuses its first focusable control.
	Show(section int)
	// SetStep sets the display state of one progress step.
	SetStep(step int, state StepState)
	// SetInvalid toggles the error state of a control.
	SetInvalid(name string, invalid bool)
	// OpenModal shows a blocking message.
	OpenModal(message string)
	// Focus moves focus to a control.
	Focus(name string)
	// SetFinal switches the forward control between "next" and "submit".
	SetFinal(final bool)
}
