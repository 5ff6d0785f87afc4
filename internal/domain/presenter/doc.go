// Package presenter renders the opened-files list and the quick-switcher
// markers from the registry.
//
// The presenter never mutates documents directly; close, clear and open go
// through the registry.
package presenter
