package command

import (
	"github.com/pixil98/go-realm/internal/game"
	"github.com/pixil98/go-realm/internal/registry"
)

type RegistryConfig struct {
	// Path to the sqlite database. Empty disables durable registration.
	Path string `json:"path,omitempty"`
}

func (r *RegistryConfig) Validate() error {
	return nil
}

func (r *RegistryConfig) BuildRegistry() (game.GroupRegistry, error) {
	if r.Path == "" {
		return game.NopRegistry{}, nil
	}
	return registry.OpenSQLite(r.Path)
}
