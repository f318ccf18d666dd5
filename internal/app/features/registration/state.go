package registration

import (
	"net/http"

	"github.com/dalemusser/admissions/internal/app/system/wizard"
	"go.uber.org/zap"
)

// stateKey holds the encoded wizard position in the session.
const stateKey = "wizard_state"

func (h *Handler) loadState(r *http.Request) *wizard.FormState {
	raw, _ := h.Sessions.Get(r).Values[stateKey].(string)
	return wizard.DecodeFormState(raw, h.Form.Len())
}

func (h *Handler) saveState(w http.ResponseWriter, r *http.Request, st *wizard.FormState) {
	sess := h.Sessions.Get(r)
	if st == nil {
		delete(sess.Values, stateKey)
	} else {
		sess.Values[stateKey] = st.Encode()
	}
	if err := sess.Save(r, w); err != nil {
		h.Log.Warn("save wizard state", zap.Error(err))
	}
}
