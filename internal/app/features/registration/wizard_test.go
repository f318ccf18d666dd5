package registration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/dalemusser/admissions/internal/app/system/drafts"
	"github.com/dalemusser/admissions/internal/app/system/wizard"
	"github.com/dalemusser/admissions/internal/testutil"
	"go.uber.org/zap"
)

// carry copies the cookies set on recs onto req, the last write per name winning.
func carry(req *http.Request, recs ...*httptest.ResponseRecorder) {
	latest := map[string]*http.Cookie{}
	var order []string
	for _, rec := range recs {
		for _, c := range rec.Result().Cookies() {
			if _, seen := latest[c.Name]; !seen {
				order = append(order, c.Name)
			}
			latest[c.Name] = c
		}
	}
	for _, name := range order {
		req.AddCookie(latest[name])
	}
}

func postForm(path string, values url.Values, recs ...*httptest.ResponseRecorder) *http.Request {
	req := testutil.NewFormRequest(path, values)
	carry(req, recs...)
	if err := req.ParseForm(); err != nil {
		panic(err)
	}
	return req
}

// seedState stores st in a session cookie and returns the recorder holding it.
func seedState(t *testing.T, h *Handler, st *wizard.FormState) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.saveState(rec, httptest.NewRequest(http.MethodGet, "/register", nil), st)
	return rec
}

func stateAfter(h *Handler, recs ...*httptest.ResponseRecorder) *wizard.FormState {
	req := httptest.NewRequest(http.MethodGet, "/register", nil)
	carry(req, recs...)
	return h.loadState(req)
}

func steps(vm pageVM) []string {
	out := make([]string, len(vm.Sections))
	for i, s := range vm.Sections {
		out[i] = s.Step
	}
	return out
}

func addressBlock(vm pageVM, group string) *addressVM {
	for _, s := range vm.Sections {
		for _, it := range s.Items {
			if it.Address != nil && it.Address.Group == group {
				return it.Address
			}
		}
	}
	return nil
}

func fieldValue(a *addressVM, name string) string {
	for _, f := range a.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

func TestStep_BlockedForwardKeepsActiveSection(t *testing.T) {
	h, _ := newTestHandler(t)
	st := wizard.NewFormState()
	st.Active = 2
	st.Completed[0], st.Completed[1] = true, true
	seed := seedState(t, h, st)

	rec := httptest.NewRecorder()
	vm, err := h.step(rec, postForm("/register/step", url.Values{"direction": {"1"}}, seed), 1)
	if err != nil {
		t.Fatalf("step: %v", err)
	}

	if vm.Active != 2 || !vm.Sections[2].Visible || vm.Sections[0].Visible {
		t.Fatalf("active = %d, want section 2 visible", vm.Active)
	}
	want := []string{"completed", "completed", "active", "pending", "pending"}
	for i, s := range steps(vm) {
		if s != want[i] {
			t.Errorf("steps = %v, want %v", steps(vm), want)
			break
		}
	}
	if vm.Modal != wizard.MsgRequired {
		t.Errorf("modal = %q", vm.Modal)
	}
	if vm.Focus != "presentStreet" {
		t.Errorf("focus = %q, want presentStreet", vm.Focus)
	}
	if got := stateAfter(h, seed, rec); got.Active != 2 || got.IsCompleted(2) {
		t.Errorf("session state = %+v", got)
	}
}

func TestStep_ForwardSavesDraftAndAdvances(t *testing.T) {
	h, _ := newTestHandler(t)
	h.Drafts = CookieDrafts(h.Sessions, zap.NewNop())

	rec := httptest.NewRecorder()
	req := postForm("/register/step", completeValues())
	vm, err := h.step(rec, req, 1)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if vm.Active != 1 || vm.Modal != "" {
		t.Fatalf("active=%d modal=%q, want section 1 without modal", vm.Active, vm.Modal)
	}
	if got := stateAfter(h, rec); got.Active != 1 || !got.IsCompleted(0) {
		t.Errorf("session state = %+v", got)
	}

	load := httptest.NewRequest(http.MethodGet, "/register/draft", nil)
	carry(load, rec)
	snap, ok := drafts.New(drafts.NewCookieBackend(h.Sessions.Store(), DraftCookieName, httptest.NewRecorder(), load), zap.NewNop()).Load(context.Background())
	if !ok {
		t.Fatal("no draft cookie after a forward step")
	}
	if snap.Fields["firstChoice"] != "BSCS" || snap.LastSavedSection != 0 {
		t.Errorf("snapshot = %+v", snap)
	}
	if _, has := snap.Fields["firstName"]; has {
		t.Error("snapshot holds a section that was not completed")
	}
}

func TestServeForm_ReloadClearsDraft(t *testing.T) {
	h, _ := newTestHandler(t)
	h.Drafts = CookieDrafts(h.Sessions, zap.NewNop())

	saved := httptest.NewRecorder()
	if _, err := h.step(saved, postForm("/register/step", completeValues()), 1); err != nil {
		t.Fatalf("step: %v", err)
	}

	nav := httptest.NewRequest(http.MethodGet, "/register", nil)
	carry(nav, saved)
	if vm := h.freshForm(httptest.NewRecorder(), nav); !vm.HasDraft {
		t.Error("navigate: HasDraft = false, want the draft kept")
	}

	reload := httptest.NewRequest(http.MethodGet, "/register", nil)
	reload.Header.Set("Cache-Control", "max-age=0")
	carry(reload, saved)
	cleared := httptest.NewRecorder()
	vm := h.freshForm(cleared, reload)
	if vm.HasDraft {
		t.Error("reload: HasDraft = true, want cleared")
	}
	if vm.Active != 0 {
		t.Errorf("reload: active = %d, want 0", vm.Active)
	}

	after := httptest.NewRequest(http.MethodGet, "/register", nil)
	carry(after, saved, cleared)
	if vm := h.freshForm(httptest.NewRecorder(), after); vm.HasDraft {
		t.Error("draft came back after being cleared")
	}
}

func TestJump(t *testing.T) {
	h, _ := newTestHandler(t)
	st := wizard.NewFormState()
	st.Active = 2
	st.Completed[0], st.Completed[1] = true, true

	tests := []struct {
		name  string
		index int
		want  int
	}{
		{"locked step ignored", 3, 2},
		{"out of range ignored", 9, 2},
		{"back to completed", 0, 0},
		{"active step", 2, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			seed := seedState(t, h, st)
			rec := httptest.NewRecorder()
			vm := h.jump(rec, postForm("/register/jump", url.Values{}, seed), tc.index)
			if vm.Active != tc.want || !vm.Sections[tc.want].Visible {
				t.Errorf("active = %d, want %d", vm.Active, tc.want)
			}
			if got := stateAfter(h, seed, rec); got.Active != tc.want {
				t.Errorf("session active = %d, want %d", got.Active, tc.want)
			}
			if vm.Sections[3].Step != "pending" {
				t.Errorf("step 3 = %q, want pending", vm.Sections[3].Step)
			}
		})
	}
}

func TestStep_MirrorFollowsPresentText(t *testing.T) {
	h, _ := newTestHandler(t)
	h.Drafts = CookieDrafts(h.Sessions, zap.NewNop())
	st := wizard.NewFormState()
	st.Active = 2
	st.Completed[0], st.Completed[1] = true, true
	seed := seedState(t, h, st)

	values := completeValues()
	values.Set("presentStreet", "99 New St")
	values.Set("permanentStreet", "12 Rizal St")
	values.Set("permanentRegion", "")

	rec := httptest.NewRecorder()
	vm, err := h.step(rec, postForm("/register/step", values, seed), 1)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	perm := addressBlock(vm, "permanent")
	if perm == nil || !perm.Locked {
		t.Fatalf("permanent block = %+v, want locked", perm)
	}
	if got := fieldValue(perm, "permanentStreet"); got != "99 New St" {
		t.Errorf("permanent street = %q, want the present street", got)
	}
	if got := fieldValue(perm, "permanentRegion"); got != "010000000" {
		t.Errorf("permanent region = %q", got)
	}

	load := httptest.NewRequest(http.MethodGet, "/register/draft", nil)
	carry(load, rec)
	snap, ok := drafts.New(drafts.NewCookieBackend(h.Sessions.Store(), DraftCookieName, httptest.NewRecorder(), load), zap.NewNop()).Load(context.Background())
	if !ok {
		t.Fatal("no draft saved")
	}
	if snap.Fields["permanentStreet"] != "99 New St" {
		t.Errorf("draft permanent street = %v", snap.Fields["permanentStreet"])
	}
}

func TestMirrorBlock_RefreshFollowsPresentText(t *testing.T) {
	h, _ := newTestHandler(t)
	values := completeValues()
	values.Set("presentZip", "2907")
	values.Set("permanentZip", "2906")

	blk := h.mirrorBlock(context.Background(), values)
	if got := fieldValue(blk, "permanentZip"); got != "2907" {
		t.Errorf("permanent zip = %q, want 2907", got)
	}
}

func TestMirrorToggle_RefreshWithToggleOff(t *testing.T) {
	h, _ := newTestHandler(t)
	values := completeValues()
	values.Del("sameAsPresent")
	values.Set("refresh", "1")
	values.Set("permanentStreet", "Own street")

	rec := testutil.NewRecorder()
	h.MirrorToggle(rec, testutil.NewFormRequest("/register/address/mirror", values))

	rec.AssertStatus(t, http.StatusNoContent)
}

func TestField_FollowOnPresentParts(t *testing.T) {
	h, _ := newTestHandler(t)
	view := wizard.NewValuesView(h.Form, completeValues())
	addrs := h.hydrate(context.Background(), view.Values())

	present := h.address("present", view, addrs)
	for _, f := range present.Fields {
		wantFollow := f.Part != ""
		if (f.Follow == "permanent") != wantFollow {
			t.Errorf("%s follow = %q", f.Name, f.Follow)
		}
	}
	for _, f := range h.address("permanent", view, addrs).Fields {
		if f.Follow != "" {
			t.Errorf("%s follow = %q, want none", f.Name, f.Follow)
		}
	}
}
