package registration

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/dalemusser/admissions/internal/app/system/cascade"
	"github.com/dalemusser/admissions/internal/app/system/timeouts"
	"github.com/dalemusser/admissions/internal/app/system/wizard"
	"github.com/dalemusser/admissions/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
)

/*─────────────────────────────────────────────────────────────────────────────*
| GET /register/geo/{level} – cascade options                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// Geo handles a change on one geographic select. The group's block is
// returned with every descendant reset and the child level loaded. When
// the present address changes while "same as present" is on, the
// permanent block is re-copied and sent out of band.
func (h *Handler) Geo(w http.ResponseWriter, r *http.Request) {
	level := models.GeoLevel(chi.URLParam(r, "level"))
	if !level.Valid() {
		h.ErrLog.LogBadRequest(w, r, "unknown geo level", errors.New(string(level)), "Unknown address level.")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse geo request", err, "The form could not be read.")
		return
	}
	group := r.Form.Get("group")
	if !h.hasGroup(group) {
		h.ErrLog.LogBadRequest(w, r, "unknown address group", errors.New(group), "Unknown address group.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "address options")
	defer cancel()

	h.renderAddresses(w, h.geoBlocks(ctx, group, level, r.Form))
}

// geoBlocks applies a select change on group and returns the blocks to
// swap: the group itself, then the mirrored group when it follows.
func (h *Handler) geoBlocks(ctx context.Context, group string, level models.GeoLevel, values url.Values) []*addressVM {
	code := values.Get("parent")
	if code == "" {
		if fd, ok := h.Form.GeoField(group, level); ok {
			code = values.Get(fd.Name)
		}
	}

	addr := h.addressFromValues(group, values)
	addrs := addresses{group: addr}
	_ = h.Loader.Hydrate(ctx, addr, level)
	_ = await(ctx, h.Loader.Select(ctx, addr, level, code))
	syncValues(h.Form, addr, values)

	view := wizard.NewValuesView(h.Form, values)
	blocks := []*addressVM{h.address(group, view, addrs)}

	if group == h.Form.Mirror.From && h.mirrored(values) {
		dst := cascade.NewAddressForm(h.Form.Mirror.To)
		addrs[dst.Group] = dst
		_ = h.Mirror.Copy(ctx, addr, dst)
		syncValues(h.Form, dst, values)
		oob := h.address(dst.Group, view, addrs)
		oob.OOB = true
		blocks = append(blocks, oob)
	}
	return blocks
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /register/address/mirror – same-as-present toggle                      |
*─────────────────────────────────────────────────────────────────────────────*/

// MirrorToggle copies the present address into the permanent one when the
// toggle is on, and resets the permanent address when it is turned off.
// A refresh request, sent when a present text field changes, re-copies
// while the toggle is on and otherwise leaves the page alone.
func (h *Handler) MirrorToggle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse mirror request", err, "The form could not be read.")
		return
	}
	if wizard.Checked(r.PostForm.Get(mirrorRefresh)) && !h.mirrored(r.PostForm) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "address mirror")
	defer cancel()

	h.renderAddresses(w, []*addressVM{h.mirrorBlock(ctx, r.PostForm)})
}

// mirrorBlock returns the target group of the address mirror after
// copying into it or resetting it.
func (h *Handler) mirrorBlock(ctx context.Context, values url.Values) *addressVM {
	m := h.Form.Mirror
	src := h.addressFromValues(m.From, values)
	dst := cascade.NewAddressForm(m.To)
	addrs := addresses{m.From: src, m.To: dst}

	if h.mirrored(values) {
		_ = h.Loader.Hydrate(ctx, src, models.LevelBarangay)
		_ = h.Mirror.Copy(ctx, src, dst)
	} else {
		h.Mirror.Clear(dst)
		_ = await(ctx, h.Loader.LoadRoots(ctx, dst))
	}
	syncValues(h.Form, dst, values)

	return h.address(m.To, wizard.NewValuesView(h.Form, values), addrs)
}

// mirrorRefresh marks a mirror request coming from a present text field.
const mirrorRefresh = "refresh"

// followMirror rewrites the target group's posted values from the source
// group while "same as present" is on, so a stale permanent block never
// reaches a draft or a submission.
func (h *Handler) followMirror(values url.Values) {
	if !h.mirrored(values) {
		return
	}
	m := h.Form.Mirror
	src := h.addressFromValues(m.From, values)
	dst := cascade.NewAddressForm(m.To)
	for _, lv := range models.GeoLevels {
		dst.SetValue(lv, src.Value(lv))
	}
	for k, v := range src.Parts() {
		dst.SetPart(k, v)
	}
	syncValues(h.Form, dst, values)
}

func (h *Handler) hasGroup(group string) bool {
	for _, g := range h.groups() {
		if g == group {
			return true
		}
	}
	return false
}

// syncValues writes addr back into values so fields rendered from values
// agree with the address.
func syncValues(form *wizard.FormDef, addr *cascade.AddressForm, values url.Values) {
	for _, fd := range form.GroupFields(addr.Group) {
		switch {
		case fd.Kind == wizard.KindGeo:
			values[fd.Name] = []string{addr.Value(fd.Level)}
		case fd.Part != "":
			values[fd.Name] = []string{addr.Part(fd.Part)}
		}
	}
}

func (h *Handler) renderAddresses(w http.ResponseWriter, blocks []*addressVM) {
	templates.RenderSnippet(w, "registration_addresses", blocks)
}

func await(ctx context.Context, done <-chan error) error {
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
