package server

import (
	"github.com/GriffinCanCode/openedfiles/internal/domain/registry"
	"github.com/GriffinCanCode/openedfiles/internal/vault"
)

// VaultEvents forwards documents changed outside the editor to the
// registry.
type VaultEvents struct {
	manager *registry.Manager
}

// NewVaultEvents creates the vault handler for manager
func NewVaultEvents(manager *registry.Manager) *VaultEvents {
	return &VaultEvents{manager: manager}
}

// DocumentRenamed implements vault.Handler. Untracked documents are ignored.
func (e *VaultEvents) DocumentRenamed(oldPath, newPath string) {
	_ = e.manager.Rename(oldPath, newPath, registry.MetadataFor(newPath))
}

// DocumentDeleted implements vault.Handler
func (e *VaultEvents) DocumentDeleted(path string) {
	e.manager.Delete(path)
}

var _ vault.Handler = (*VaultEvents)(nil)
