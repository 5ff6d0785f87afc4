package codec

// Surface is the codec's view of a live editing surface. Selection and
// history payloads are opaque to the codec.
type Surface interface {
	Selection() ([]byte, error)
	SetSelection(data []byte) error
	History() ([]byte, error)
	ScrollTop() float64
	SetScrollTop(offset float64)
	// RevealSelection scrolls the surface so the selection is visible. It
	// must not move the viewport when the selection is already visible.
	RevealSelection()
}

// HistoryLoader is implemented by surfaces whose editing engine offers a
// supported way to load a serialized history.
type HistoryLoader interface {
	LoadHistory(data []byte) error
}

// UnsafeHistoryReplacer is implemented by surfaces that can only take a
// history by overwriting their internal history state directly. The codec
// uses it only when Options.AllowUnsafeHistory is set.
type UnsafeHistoryReplacer interface {
	ReplaceHistoryUnsafe(data []byte) error
}

// Snapshot is the transient editing state of one surface. It holds no
// references into the surface it came from and is comparable with ==.
type Snapshot struct {
	Selection       string  `json:"selection"`
	History         string  `json:"history,omitempty"`
	HistoryEncoding string  `json:"history_encoding,omitempty"`
	ScrollTop       float64 `json:"scroll_top"`
}

// HasHistory reports whether the snapshot carries a history payload.
func (s Snapshot) HasHistory() bool {
	return s.History != ""
}

// Size is the number of payload bytes held by the snapshot.
func (s Snapshot) Size() int {
	return len(s.Selection) + len(s.History)
}
