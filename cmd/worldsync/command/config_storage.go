package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-worldsync/internal/game"
	"github.com/pixil98/go-worldsync/internal/storage"
	"github.com/pixil98/go-worldsync/internal/world"
)

type StorageConfig struct {
	Players    AssetConfig[*game.Player]    `json:"players"`
	Characters AssetConfig[*game.Character] `json:"characters"`
	World      AssetConfig[*world.Snapshot] `json:"world"`
}

// Stores bundles the built file stores the router writes through to.
type Stores struct {
	Players    *storage.FileStore[*game.Player]
	Characters *storage.FileStore[*game.Character]
	World      *storage.FileStore[*world.Snapshot]
}

func (c *StorageConfig) BuildStores() (*Stores, error) {
	players, err := c.Players.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating player store: %w", err)
	}
	chars, err := c.Characters.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating character store: %w", err)
	}
	worldStore, err := c.World.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating world store: %w", err)
	}

	return &Stores{
		Players:    players,
		Characters: chars,
		World:      worldStore,
	}, nil
}

func (c *StorageConfig) Validate() error {
	el := errors.NewErrorList()
	el.Add(c.Players.Validate("players"))
	el.Add(c.Characters.Validate("characters"))
	el.Add(c.World.Validate("world"))
	return el.Err()
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
