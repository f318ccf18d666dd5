package registration

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dalemusser/admissions/internal/app/system/cascade"
	"github.com/dalemusser/admissions/internal/app/system/timeouts"
	"github.com/dalemusser/admissions/internal/app/system/viewdata"
	"github.com/dalemusser/admissions/internal/app/system/wizard"
	"github.com/dalemusser/admissions/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"golang.org/x/sync/errgroup"
)

// fieldVM is one control as rendered.
type fieldVM struct {
	wizard.FieldDef
	Value   string
	Checked bool
	Invalid bool
	Locked  bool
	Focus   bool
	Geo     []models.GeoOption

	// MirrorTo is set on the "same as" toggle: the group it copies into.
	MirrorTo string
	// Follow is set on the source group's text parts: the group that
	// re-copies when they change.
	Follow string
}

// addressVM is an address group rendered as one swappable block.
type addressVM struct {
	Group  string
	Locked bool
	OOB    bool
	Fields []fieldVM
}

// itemVM is either a plain field or an address block.
type itemVM struct {
	Field   *fieldVM
	Address *addressVM
}

type sectionVM struct {
	Index   int
	Key     string
	Title   string
	Step    string
	Visible bool
	Items   []itemVM
}

type pageVM struct {
	viewdata.BaseVM
	FormTitle  string
	Sections   []sectionVM
	Active     int
	Final      bool
	Modal      string
	ModalItems []string
	Focus      string
	HasDraft   bool
	Notice     string
}

// addresses holds the hydrated address groups of one request.
type addresses map[string]*cascade.AddressForm

// addressFromValues rebuilds an address group from posted values.
func (h *Handler) addressFromValues(group string, values url.Values) *cascade.AddressForm {
	addr := cascade.NewAddressForm(group)
	for _, fd := range h.Form.GroupFields(group) {
		switch {
		case fd.Kind == wizard.KindGeo:
			addr.SetValue(fd.Level, values.Get(fd.Name))
		case fd.Part != "":
			addr.SetPart(fd.Part, values.Get(fd.Name))
		}
	}
	return addr
}

// groups lists the address groups of the form in definition order.
func (h *Handler) groups() []string {
	var out []string
	seen := map[string]bool{}
	for _, s := range h.Form.Sections {
		for _, fd := range s.Fields {
			if fd.Group != "" && !seen[fd.Group] {
				seen[fd.Group] = true
				out = append(out, fd.Group)
			}
		}
	}
	return out
}

// hydrate rebuilds every address group and loads its options in parallel.
// Lookup failures leave selects at their placeholder and are logged by
// the loader.
func (h *Handler) hydrate(ctx context.Context, values url.Values) addresses {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()

	out := addresses{}
	var g errgroup.Group
	for _, group := range h.groups() {
		addr := h.addressFromValues(group, values)
		out[group] = addr
		g.Go(func() error {
			_ = h.Loader.Hydrate(ctx, addr, models.LevelBarangay)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// mirrored reports whether the "same as present" toggle is on.
func (h *Handler) mirrored(values url.Values) bool {
	t := h.Form.Mirror.Toggle
	return t != "" && wizard.Checked(values.Get(t))
}

func (h *Handler) field(fd wizard.FieldDef, view *wizard.ValuesView, addrs addresses, locked bool) fieldVM {
	values := view.Values()
	f := fieldVM{
		FieldDef: fd,
		Invalid:  view.Invalid[fd.Name],
		Locked:   locked,
		Focus:    fd.Name == view.FocusOn,
	}
	if fd.Name == h.Form.Mirror.Toggle {
		f.MirrorTo = h.Form.Mirror.To
	}
	if fd.Part != "" && fd.Group != "" && fd.Group == h.Form.Mirror.From {
		f.Follow = h.Form.Mirror.To
	}
	switch {
	case fd.Kind == wizard.KindCheckbox:
		f.Checked = wizard.Checked(values.Get(fd.Name))
	case fd.Kind == wizard.KindGeo && addrs[fd.Group] != nil:
		sel := addrs[fd.Group].Select(fd.Level)
		f.Value, f.Geo = sel.Value, sel.Options
	default:
		f.Value = values.Get(fd.Name)
	}
	return f
}

// address renders one group block from its current AddressForm.
func (h *Handler) address(group string, view *wizard.ValuesView, addrs addresses) *addressVM {
	locked := group == h.Form.Mirror.To && h.mirrored(view.Values())
	a := &addressVM{Group: group, Locked: locked}
	addr := addrs[group]
	for _, fd := range h.Form.GroupFields(group) {
		f := h.field(fd, view, addrs, locked)
		if fd.Part != "" && addr != nil {
			f.Value = addr.Part(fd.Part)
		}
		a.Fields = append(a.Fields, f)
	}
	return a
}

// page builds the wizard view model from the navigator's effects.
func (h *Handler) page(r *http.Request, view *wizard.ValuesView, addrs addresses) pageVM {
	vm := pageVM{
		BaseVM:    viewdata.NewBaseVM(r, h.Form.Title, "/"),
		FormTitle: h.Form.Title,
		Active:    view.Visible,
		Final:     view.Final,
		Modal:     view.Modal,
		Focus:     view.FocusOn,
	}
	for i, s := range h.Form.Sections {
		sec := sectionVM{
			Index:   i,
			Key:     s.Key,
			Title:   s.Title,
			Step:    view.Steps[i].String(),
			Visible: i == view.Visible,
		}
		rendered := map[string]bool{}
		for _, fd := range s.Fields {
			if fd.Group == "" {
				f := h.field(fd, view, addrs, false)
				sec.Items = append(sec.Items, itemVM{Field: &f})
				continue
			}
			if !rendered[fd.Group] {
				rendered[fd.Group] = true
				sec.Items = append(sec.Items, itemVM{Address: h.address(fd.Group, view, addrs)})
			}
		}
		vm.Sections = append(vm.Sections, sec)
	}
	return vm
}

// render writes the wizard: the swappable body for htmx, the whole page otherwise.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, vm pageVM) {
	if isHTMX(r) {
		templates.RenderSnippet(w, "registration_wizard", vm)
		return
	}
	templates.Render(w, r, "registration_page", vm)
}
