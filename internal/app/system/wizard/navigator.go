package wizard

import (
	"context"
	"errors"
)

// ErrInvalidDirection is returned for a direction other than -1 or +1.
var ErrInvalidDirection = errors.New("wizard: direction must be -1 or +1")

// ErrStepLocked is returned when jumping to a step that is neither active
// nor completed.
var ErrStepLocked = errors.New("wizard: step is not completed")

// DraftSaver snapshots a section's controls on forward navigation.
// Implementations handle their own failures; navigation never waits on
// or reports a storage error.
type DraftSaver interface {
	SaveSection(ctx context.Context, section int, controls []Control)
}

// Navigator owns a FormState and moves it between sections.
type Navigator struct {
	form      *FormDef
	state     *FormState
	view      SectionView
	validator *Validator
	drafts    DraftSaver
}

// NewNavigator binds a state to a view. A nil state starts at section 0;
// a nil drafts disables snapshots.
func NewNavigator(form *FormDef, state *FormState, view SectionView, drafts DraftSaver) *Navigator {
	if state == nil {
		state = NewFormState()
	}
	if state.Completed == nil {
		state.Completed = make(map[int]bool)
	}
	state.Active = clamp(state.Active, 0, form.Len()-1)
	return &Navigator{
		form:      form,
		state:     state,
		view:      view,
		validator: NewValidator(view, form.Len()),
		drafts:    drafts,
	}
}

// State returns the navigator's state.
func (n *Navigator) State() *FormState { return n.state }

// Validator returns the validator bound to the navigator's view.
func (n *Navigator) Validator() *Validator { return n.validator }

// Active returns the visible section index.
func (n *Navigator) Active() int { return n.state.Active }

// IsFinal reports whether the visible section is the last one.
func (n *Navigator) IsFinal() bool { return n.state.Active == n.form.Len()-1 }

// ChangeSection moves one section back or forward. Forward motion requires
// the visible section to validate; on success the section is snapshotted
// and marked completed before moving. The result clamps to [0, N-1], so a
// forward call on the last section completes it without moving.
func (n *Navigator) ChangeSection(ctx context.Context, direction int) (bool, error) {
	if direction != 1 && direction != -1 {
		return false, ErrInvalidDirection
	}
	cur := n.state.Active
	if direction > 0 && !n.complete(ctx, cur) {
		return false, nil
	}
	next := clamp(cur+direction, 0, n.form.Len()-1)
	n.state.Active = next
	n.Render()
	return next != cur, nil
}

// JumpTo moves to a progress step the user clicked. Only the active step
// and completed steps can be reached; jumping forward still requires the
// visible section to validate.
func (n *Navigator) JumpTo(ctx context.Context, index int) (bool, error) {
	if index < 0 || index >= n.form.Len() {
		return false, ErrStepLocked
	}
	cur := n.state.Active
	if index == cur {
		n.Render()
		return false, nil
	}
	if !n.state.IsCompleted(index) {
		return false, ErrStepLocked
	}
	if index > cur && !n.complete(ctx, cur) {
		return false, nil
	}
	n.state.Active = index
	n.Render()
	return true, nil
}

// Submit validates the whole form. When something is missing the first
// offending section becomes visible and Submit returns false.
func (n *Navigator) Submit() bool {
	bad, name := n.validator.ValidateForm()
	if bad < 0 {
		n.state.Completed[n.state.Active] = true
		n.Render()
		return true
	}
	n.state.Active = bad
	n.Render()
	n.view.Focus(name)
	return false
}

// Render reflects the state into the view.
func (n *Navigator) Render() {
	for i := 0; i < n.form.Len(); i++ {
		switch {
		case i == n.state.Active:
			n.view.SetStep(i, StepActive)
		case n.state.IsCompleted(i):
			n.view.SetStep(i, StepCompleted)
		default:
			n.view.SetStep(i, StepPending)
		}
	}
	n.view.SetFinal(n.IsFinal())
	n.view.Show(n.state.Active)
}

// complete validates section and, when it passes, snapshots it and marks
// it completed. A failing section stays visible: the state is rendered
// first so the modal and focus effects land on top of it.
func (n *Navigator) complete(ctx context.Context, section int) bool {
	if first := n.validator.check(section); first != "" {
		n.Render()
		n.validator.report(first)
		return false
	}
	if n.drafts != nil {
		n.drafts.SaveSection(ctx, section, n.view.Controls(section))
	}
	n.state.Completed[section] = true
	return true
}
