// Package codectest provides in-memory editing surfaces for tests.
package codectest

import "errors"

// ErrInjected is a generic failure tests can plug into a Surface.
var ErrInjected = errors.New("codectest: injected failure")

// Surface is an in-memory codec.Surface. It has no history loader; wrap it
// in Loader or Replacer to expose one.
type Surface struct {
	Sel    []byte
	Hist   []byte
	Scroll float64

	// SelectionErr, HistoryErr and SetSelectionErr are returned by the
	// matching calls when set.
	SelectionErr    error
	HistoryErr      error
	SetSelectionErr error
	// PanicOn makes the named call ("selection", "history", "set-selection",
	// "scroll", "reveal") panic.
	PanicOn string

	Calls    []string
	Revealed int
}

// New returns a surface showing the given selection and scroll offset.
func New(selection string, scroll float64) *Surface {
	return &Surface{Sel: []byte(selection), Scroll: scroll}
}

func (s *Surface) Selection() ([]byte, error) {
	s.trip("selection")
	if s.SelectionErr != nil {
		return nil, s.SelectionErr
	}
	return s.Sel, nil
}

func (s *Surface) SetSelection(data []byte) error {
	s.trip("set-selection")
	s.Calls = append(s.Calls, "set-selection")
	if s.SetSelectionErr != nil {
		return s.SetSelectionErr
	}
	s.Sel = append([]byte(nil), data...)
	return nil
}

func (s *Surface) History() ([]byte, error) {
	s.trip("history")
	if s.HistoryErr != nil {
		return nil, s.HistoryErr
	}
	return s.Hist, nil
}

func (s *Surface) ScrollTop() float64 {
	return s.Scroll
}

func (s *Surface) SetScrollTop(offset float64) {
	s.trip("scroll")
	s.Calls = append(s.Calls, "scroll")
	s.Scroll = offset
}

// RevealSelection leaves the scroll offset alone; the fake treats every
// selection as already visible.
func (s *Surface) RevealSelection() {
	s.trip("reveal")
	s.Calls = append(s.Calls, "reveal")
	s.Revealed++
}

func (s *Surface) trip(call string) {
	if s.PanicOn == call {
		panic("codectest: " + call)
	}
}

// Loader is a Surface with a supported history loader.
type Loader struct {
	*Surface
	LoadErr error
}

// NewLoader returns a Loader around a fresh Surface.
func NewLoader(selection string, scroll float64) *Loader {
	return &Loader{Surface: New(selection, scroll)}
}

func (l *Loader) LoadHistory(data []byte) error {
	l.Calls = append(l.Calls, "history")
	if l.LoadErr != nil {
		return l.LoadErr
	}
	l.Hist = append([]byte(nil), data...)
	return nil
}

// Replacer is a Surface that only supports direct history replacement.
type Replacer struct {
	*Surface
}

// NewReplacer returns a Replacer around a fresh Surface.
func NewReplacer(selection string, scroll float64) *Replacer {
	return &Replacer{Surface: New(selection, scroll)}
}

func (r *Replacer) ReplaceHistoryUnsafe(data []byte) error {
	r.Calls = append(r.Calls, "history-unsafe")
	r.Hist = append([]byte(nil), data...)
	return nil
}
