package view

import "notas/internal/core"

// Session is the client's explicit application state: the last fetched
// record set, the active filters, and the edit cursor.
//
// The edit cursor drives a two-state machine. With no cursor the form is
// Idle and a submit creates a new record; after BeginEdit the form is
// Editing and a submit replaces the record under the held id. Both submit
// and cancel return to Idle.
type Session struct {
	records   []core.Record
	filters   Filters
	editingID int64
}

func NewSession() *Session {
	return &Session{}
}

// SetRecords replaces the full record set, e.g. after a list fetch.
// The slice is copied so later fetches cannot mutate a held snapshot.
func (s *Session) SetRecords(records []core.Record) {
	s.records = make([]core.Record, len(records))
	copy(s.records, records)
}

// Records returns the current full record set.
func (s *Session) Records() []core.Record {
	return s.records
}

func (s *Session) SetMonth(month string) { s.filters.Month = month }
func (s *Session) SetSearch(term string) { s.filters.Search = term }
func (s *Session) Filters() Filters { return s.filters }

// Snapshot recomputes all three views under the active filters.
func (s *Session) Snapshot() Snapshot {
	return Compute(s.records, s.filters)
}

// BeginEdit moves the session to the Editing state and returns the record
// to pre-fill the form with. It is a no-op when the id is unknown.
func (s *Session) BeginEdit(id int64) (core.Record, bool) {
	for _, r := range s.records {
		if r.ID == id {
			s.editingID = id
			return r, true
		}
	}
	return core.Record{}, false
}

// Editing reports whether an edit is in progress and for which record.
func (s *Session) Editing() (int64, bool) {
	return s.editingID, s.editingID != 0
}

// CancelEdit returns to the Idle state without submitting.
func (s *Session) CancelEdit() {
	s.editingID = 0
}

// FinishEdit clears the edit cursor after a successful submit.
func (s *Session) FinishEdit() {
	s.editingID = 0
}

// Reset clears all session state, e.g. after the server rejects the token.
func (s *Session) Reset() {
	s.records = nil
	s.filters = Filters{}
	s.editingID = 0
}
