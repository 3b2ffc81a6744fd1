package purchasing

import "slices"

// Snapshot is the serialisable state of a session. Dependencies are not part
// of it and are supplied again on Restore.
type Snapshot struct {
	Mode       Mode         `json:"mode"`
	State      State        `json:"state"`
	PurchaseID int          `json:"purchase_id"`
	Form       PurchaseForm `json:"form"`
	Draft      LineDraft    `json:"draft"`
	Lines      []OrderLine  `json:"lines"`
}

func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Mode:       s.mode,
		State:      s.state,
		PurchaseID: s.purchaseID,
		Form:       s.form,
		Draft:      s.draft,
		Lines:      slices.Clone(s.lines),
	}
}

// Restore rebuilds a session from snap. A snapshot taken mid-resolution comes
// back Uninitialized so edit mode can be initialized again.
func Restore(snap Snapshot, deps Deps) *Session {
	state := snap.State
	if state == StateResolvingLines || state == "" {
		state = StateUninitialized
		if snap.Mode == ModeCreate {
			state = StateReady
		}
	}
	mode := snap.Mode
	if mode == "" {
		mode = ModeCreate
	}
	return &Session{
		deps:       deps,
		mode:       mode,
		state:      state,
		purchaseID: snap.PurchaseID,
		form:       snap.Form,
		draft:      snap.Draft,
		lines:      slices.Clone(snap.Lines),
	}
}
