package types

// Host to service message types
const (
	MsgSurfaceCreated   = "surface-created"
	MsgSurfaceDestroyed = "surface-destroyed"
	MsgFileOpen         = "file-open"
	MsgVisible          = "visible"
	MsgRename           = "rename"
	MsgDelete           = "delete"
	MsgCloseActive      = "close-active"
	MsgPing             = "ping"
)

// Service to host message types
const (
	MsgSurfaceBound = "surface-bound"
	MsgRestore      = "restore"
	MsgClosePanes   = "close-panes"
	MsgOpenPane     = "open-pane"
	MsgNotice       = "notice"
	MsgRedraw       = "redraw"
	MsgPong         = "pong"
	MsgError        = "error"
)

// History capabilities a host surface can advertise
const (
	HistoryAPILoad    = "load"
	HistoryAPIReplace = "replace"
)

// SurfaceState is the editing state a host reports for one of its surfaces.
// Selection and History are opaque to the service.
type SurfaceState struct {
	Selection  string  `json:"selection"`
	History    string  `json:"history,omitempty"`
	ScrollTop  float64 `json:"scroll_top"`
	HistoryAPI string  `json:"history_api,omitempty"`
}

// VisibleSurface pairs a host surface key with the document it shows
type VisibleSurface struct {
	Key  string `json:"key"`
	Path string `json:"path"`
}

// HostMessage is a message from the editor host
type HostMessage struct {
	Type    string           `json:"type"`
	Key     string           `json:"key,omitempty"`
	Path    string           `json:"path,omitempty"`
	OldPath string           `json:"old_path,omitempty"`
	NewPath string           `json:"new_path,omitempty"`
	State   *SurfaceState    `json:"state,omitempty"`
	Visible []VisibleSurface `json:"visible,omitempty"`
	Active  string           `json:"active,omitempty"`
}

// RestorePayload tells the host how to rebuild a surface's editing state.
// Nil fields are left untouched.
type RestorePayload struct {
	History   *string  `json:"history,omitempty"`
	Unsafe    bool     `json:"unsafe,omitempty"`
	Selection *string  `json:"selection,omitempty"`
	ScrollTop *float64 `json:"scroll_top,omitempty"`
	Reveal    bool     `json:"reveal"`
}

// ServerMessage is a message to the editor host
type ServerMessage struct {
	Type      string          `json:"type"`
	Key       string          `json:"key,omitempty"`
	Handle    string          `json:"handle,omitempty"`
	Path      string          `json:"path,omitempty"`
	Split     bool            `json:"split,omitempty"`
	Message   string          `json:"message,omitempty"`
	Restore   *RestorePayload `json:"restore,omitempty"`
	Items     []DocumentItem  `json:"items,omitempty"`
	Timestamp int64           `json:"timestamp"`
}
