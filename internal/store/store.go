// Package store defines the abstract persistence contract the dispatcher
// depends on, so the core never imports a database driver
// directly.
package store

import (
	"context"
	"errors"

	"mahjong/internal/ai"
	"mahjong/internal/mahjong"
)

// ErrNotFound is returned by lookups that find nothing, distinct from a
// driver failure.
var ErrNotFound = errors.New("store: not found")

// ServiceGame bundles the authoritative Game with the AI wiring the
// dispatcher needs to drive it; this, not the bare Game, is what a Store
// persists and returns.
type ServiceGame struct {
	ID      string
	Name    string
	Game    *mahjong.Game
	AI      ai.Config
	Players []string
}

// Player is the minimal player record the core needs; profile data beyond
// this belongs to the collaborator named in the non-goals.
type Player struct {
	ID   string
	Name string
}

// AuthInfo is an opaque credential lookup record; the core never
// interprets Token, only round-trips it.
type AuthInfo struct {
	Lookup   string
	PlayerID string
	Token    string
}

// Store is the abstract persistence contract. Implementations
// must be safe for concurrent use across distinct game ids; the dispatcher
// guarantees single-id serialization via its per-game mutex, not
// the store.
type Store interface {
	GetGame(ctx context.Context, id string, useCache bool) (*ServiceGame, error)
	SaveGame(ctx context.Context, sg *ServiceGame) error
	GetPlayerGames(ctx context.Context, playerID string) ([]*ServiceGame, error)
	GetPlayer(ctx context.Context, id string) (*Player, error)
	SavePlayer(ctx context.Context, p *Player) error
	DeleteGames(ctx context.Context, ids []string) error
	GetAuthInfo(ctx context.Context, lookup string) (*AuthInfo, error)
	SaveAuthInfo(ctx context.Context, info *AuthInfo) error
}
