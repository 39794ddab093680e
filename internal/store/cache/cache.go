// Package cache wraps a durable store.Store with a two-tier read cache —
// dgraph-io/ristretto in-process (L1) in front of redis/go-redis (L2).
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/redis/go-redis/v9"

	"mahjong/internal/config"
	"mahjong/internal/logx"
	"mahjong/internal/mahjong/text"
	"mahjong/internal/store"
)

const defaultTTL = 30 * time.Minute

// Store layers an L1/L2 read cache in front of a durable store.Store. Only
// GetGame consults the cache; every write goes straight through to the
// durable store and refreshes both tiers, per the "cache first,
// falling back to durable read" contract.
type Store struct {
	durable store.Store
	local   *ristretto.Cache
	redis   *redis.Client
	ttl     time.Duration
}

// New builds the cache in front of durable, connecting to Redis per cfg
// and pinging once so a bad address fails at startup, not on first use.
func New(ctx context.Context, durable store.Store, cfg config.RedisConf) (*Store, error) {
	local, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e6,
		MaxCost:     1 << 26, // 64MB of cached game summaries
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("cache: local cache: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("cache: redis ping: %w", err)
	}

	return &Store{durable: durable, local: local, redis: rdb, ttl: defaultTTL}, nil
}

func gameKey(id string) string { return "game:" + id }

// GetGame tries L1, then L2, then the durable store, populating each
// faster tier on a slower-tier hit.
func (s *Store) GetGame(ctx context.Context, id string, useCache bool) (*store.ServiceGame, error) {
	if !useCache {
		return s.durable.GetGame(ctx, id, false)
	}

	if v, ok := s.local.Get(gameKey(id)); ok {
		if sg, ok := v.(*store.ServiceGame); ok {
			return sg, nil
		}
	}

	if raw, err := s.redis.Get(ctx, gameKey(id)).Result(); err == nil {
		game, decodeErr := text.ParseSummary(raw)
		if decodeErr == nil {
			sg := &store.ServiceGame{ID: id, Game: game}
			s.local.SetWithTTL(gameKey(id), sg, 1, s.ttl)
			return sg, nil
		}
		logx.Warn("cache: corrupt redis entry, falling through to durable store", "id", id, "err", decodeErr)
	} else if err != redis.Nil {
		logx.Warn("cache: redis get failed, falling through to durable store", "id", id, "err", err)
	}

	sg, err := s.durable.GetGame(ctx, id, false)
	if err != nil {
		return nil, err
	}
	s.put(ctx, sg)
	return sg, nil
}

func (s *Store) put(ctx context.Context, sg *store.ServiceGame) {
	s.local.SetWithTTL(gameKey(sg.ID), sg, 1, s.ttl)
	if err := s.redis.Set(ctx, gameKey(sg.ID), text.EncodeSummary(sg.Game), s.ttl).Err(); err != nil {
		logx.Warn("cache: redis set failed", "id", sg.ID, "err", err)
	}
}

// SaveGame writes through to the durable store, then refreshes both cache
// tiers so readers never observe a stale version after a successful save.
func (s *Store) SaveGame(ctx context.Context, sg *store.ServiceGame) error {
	if err := s.durable.SaveGame(ctx, sg); err != nil {
		return err
	}
	s.put(ctx, sg)
	return nil
}

func (s *Store) invalidate(id string) {
	s.local.Del(gameKey(id))
	s.redis.Del(context.Background(), gameKey(id))
}

func (s *Store) GetPlayerGames(ctx context.Context, playerID string) ([]*store.ServiceGame, error) {
	return s.durable.GetPlayerGames(ctx, playerID)
}

func (s *Store) GetPlayer(ctx context.Context, id string) (*store.Player, error) {
	return s.durable.GetPlayer(ctx, id)
}

func (s *Store) SavePlayer(ctx context.Context, p *store.Player) error {
	return s.durable.SavePlayer(ctx, p)
}

func (s *Store) DeleteGames(ctx context.Context, ids []string) error {
	if err := s.durable.DeleteGames(ctx, ids); err != nil {
		return err
	}
	for _, id := range ids {
		s.invalidate(id)
	}
	return nil
}

func (s *Store) GetAuthInfo(ctx context.Context, lookup string) (*store.AuthInfo, error) {
	return s.durable.GetAuthInfo(ctx, lookup)
}

func (s *Store) SaveAuthInfo(ctx context.Context, info *store.AuthInfo) error {
	return s.durable.SaveAuthInfo(ctx, info)
}

var _ store.Store = (*Store)(nil)
