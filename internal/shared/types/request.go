package types

// OpenRequest asks the host to show a tracked document
type OpenRequest struct {
	Path  string `json:"path" binding:"required"`
	Split bool   `json:"split"`
}

// CloseRequest removes a document from the list and closes its panes
type CloseRequest struct {
	Path string `json:"path" binding:"required"`
}

// MarksRequest lists switcher entry names, paths without extension, that
// the host wants marked as open.
type MarksRequest struct {
	Names []string `json:"names" binding:"required"`
}

// SettingsRequest carries the max-open-files value as typed by the user.
// Non-integer text is rejected.
type SettingsRequest struct {
	KeepMaxOpenFiles string `json:"keep_max_open_files" binding:"required"`
}

// SettingsResponse is the persisted settings view
type SettingsResponse struct {
	KeepMaxOpenFiles int    `json:"keep_max_open_files"`
	Path             string `json:"path,omitempty"`
}
