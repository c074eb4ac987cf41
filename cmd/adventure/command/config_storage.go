package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-adventure/internal/session"
	"github.com/pixil98/go-adventure/internal/storage"
	"github.com/pixil98/go-adventure/internal/world"
	"github.com/pixil98/go-errors"
)

type StorageConfig struct {
	Worlds   AssetConfig[*world.World]   `json:"worlds"`
	Sessions AssetConfig[*session.State] `json:"sessions"`
}

func (c *StorageConfig) validate() error {
	el := errors.NewErrorList()
	el.Add(c.Worlds.Validate("worlds"))
	el.Add(c.Sessions.Validate("sessions"))
	return el.Err()
}

// BuildWorldStore loads every world and runs the cross-reference checks
// that only make sense once the whole definition is in memory.
func (c *StorageConfig) BuildWorldStore() (*storage.FileStore[*world.World], error) {
	store, err := c.Worlds.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating world store: %w", err)
	}

	for id, w := range store.GetAll() {
		if err := w.CheckReferences(); err != nil {
			return nil, fmt.Errorf("world %s: %w", id, err)
		}
	}

	return store, nil
}

func (c *StorageConfig) BuildSessionStore() (*storage.FileStore[*session.State], error) {
	store, err := c.Sessions.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating session store: %w", err)
	}
	return store, nil
}

type AssetConfig[T storage.ValidatingSpec] struct {
	Path string `json:"path"`
}

func (c *AssetConfig[T]) Validate(name string) error {
	if c.Path == "" {
		return fmt.Errorf("%s: path is required", name)
	}
	_, err := os.Stat(c.Path)
	if err != nil {
		return fmt.Errorf("%s: invalid path %q: %w", name, c.Path, err)
	}

	return nil
}

func (c *AssetConfig[T]) BuildFileStore() (*storage.FileStore[T], error) {
	return storage.NewFileStore[T](c.Path)
}
