// Package memstore is an in-process store.Store used by mahjongd's
// simulate subcommand, where a live Mongo/Redis deployment would only
// slow down the benchmark loop. Grounded in the same Store contract the
// mongostore/cache tiers implement.
package memstore

import (
	"context"
	"sync"

	"mahjong/internal/store"
)

type Store struct {
	mu      sync.Mutex
	games   map[string]*store.ServiceGame
	players map[string]*store.Player
	auth    map[string]*store.AuthInfo
}

func New() *Store {
	return &Store{
		games:   make(map[string]*store.ServiceGame),
		players: make(map[string]*store.Player),
		auth:    make(map[string]*store.AuthInfo),
	}
}

func (s *Store) GetGame(ctx context.Context, id string, useCache bool) (*store.ServiceGame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sg, ok := s.games[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return sg, nil
}

func (s *Store) SaveGame(ctx context.Context, sg *store.ServiceGame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[sg.ID] = sg
	return nil
}

func (s *Store) GetPlayerGames(ctx context.Context, playerID string) ([]*store.ServiceGame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*store.ServiceGame
	for _, sg := range s.games {
		for _, p := range sg.Players {
			if p == playerID {
				out = append(out, sg)
				break
			}
		}
	}
	return out, nil
}

func (s *Store) GetPlayer(ctx context.Context, id string) (*store.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return p, nil
}

func (s *Store) SavePlayer(ctx context.Context, p *store.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[p.ID] = p
	return nil
}

func (s *Store) DeleteGames(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.games, id)
	}
	return nil
}

func (s *Store) GetAuthInfo(ctx context.Context, lookup string) (*store.AuthInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	info, ok := s.auth[lookup]
	if !ok {
		return nil, store.ErrNotFound
	}
	return info, nil
}

func (s *Store) SaveAuthInfo(ctx context.Context, info *store.AuthInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auth[info.Lookup] = info
	return nil
}

var _ store.Store = (*Store)(nil)
