// Package display implements the record-cycling client.
//
// State is a plain value updated only through Advance and Apply. Display
// wraps it with the mount lifecycle: one fetch per mount, clicks always
// available, no updates after Unmount.
package display

import (
	"fmt"

	"github.com/maloquacious/datacycle/internal/store"
)

// EmptyText is shown when a fetch replaced the records with an empty set.
const EmptyText = "no data"

// Fallback returns the records shown before the first successful fetch.
func Fallback() []store.Record {
	return []store.Record{
		{ID: 1, Data: "default data #1"},
		{ID: 2, Data: "default data #2"},
		{ID: 3, Data: "default data #3"},
	}
}

// State is the client-side display state.
// Cursor only grows; it is reduced modulo len(Records) when selecting.
type State struct {
	Records []store.Record
	Cursor  int
}

// NewState returns a State showing the fallback records.
func NewState() State {
	return State{Records: Fallback()}
}

// Current returns the selected record. ok is false when Records is empty.
func (s State) Current() (r store.Record, ok bool) {
	if len(s.Records) == 0 {
		return store.Record{}, false
	}
	return s.Records[s.Cursor%len(s.Records)], true
}

// Text returns the data of the selected record, or EmptyText.
func (s State) Text() string {
	r, ok := s.Current()
	if !ok {
		return EmptyText
	}
	return r.Data
}

// Advance moves the cursor to the next record.
func (s *State) Advance() {
	s.Cursor++
}

// Apply replaces Records wholesale on a successful fetch, including with an
// empty set. A failed fetch leaves the state untouched. The cursor is kept.
func (s *State) Apply(r FetchResult) bool {
	if r.Err != nil {
		return false
	}
	s.Records = r.Records
	if s.Records == nil {
		s.Records = []store.Record{}
	}
	return true
}

// FetchResult is the outcome of one fetch.
type FetchResult struct {
	Records []store.Record
	Err     error
}

func (r FetchResult) OK() bool {
	return r.Err == nil
}

// Phase tracks the fetch lifecycle of a Display.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhasePending
	PhaseResolved
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhasePending:
		return "fetch-pending"
	case PhaseResolved:
		return "fetch-resolved"
	case PhaseFailed:
		return "fetch-failed"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}
