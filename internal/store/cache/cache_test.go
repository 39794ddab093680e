package cache

import (
	"context"
	"testing"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"mahjong/internal/mahjong"
	"mahjong/internal/store"
	"mahjong/internal/store/memstore"
)

// newOfflineStore builds a Store whose redis client points at a port
// nothing listens on, so every redis call fails fast with a connection
// error rather than hanging on a real network round trip.
func newOfflineStore(t *testing.T, durable store.Store) *Store {
	t.Helper()
	local, err := ristretto.NewCache(&ristretto.Config{NumCounters: 1000, MaxCost: 1 << 20, BufferItems: 64})
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond})
	return &Store{durable: durable, local: local, redis: rdb, ttl: time.Minute}
}

func TestGameKeyIsNamespaced(t *testing.T) {
	require.Equal(t, "game:g1", gameKey("g1"))
}

func TestGetGameBypassesCacheWhenUseCacheIsFalse(t *testing.T) {
	durable := memstore.New()
	ctx := context.Background()
	require.NoError(t, durable.SaveGame(ctx, &store.ServiceGame{ID: "g1", Name: "table"}))

	s := newOfflineStore(t, durable)
	sg, err := s.GetGame(ctx, "g1", false)
	require.NoError(t, err)
	require.Equal(t, "table", sg.Name)
}

func TestGetGameFallsThroughToDurableAndPopulatesL1WhenRedisIsUnreachable(t *testing.T) {
	durable := memstore.New()
	ctx := context.Background()
	require.NoError(t, durable.SaveGame(ctx, &store.ServiceGame{ID: "g1", Name: "table", Game: mahjong.NewGame("g1", "table")}))

	s := newOfflineStore(t, durable)
	sg, err := s.GetGame(ctx, "g1", true)
	require.NoError(t, err)
	require.Equal(t, "table", sg.Name)

	s.local.Wait()
	cached, ok := s.local.Get(gameKey("g1"))
	require.True(t, ok, "a durable hit should populate the local tier")
	require.Same(t, sg, cached.(*store.ServiceGame))
}

func TestGetGameServesFromL1WithoutTouchingDurableAgain(t *testing.T) {
	durable := memstore.New()
	ctx := context.Background()
	require.NoError(t, durable.SaveGame(ctx, &store.ServiceGame{ID: "g1", Name: "table"}))

	s := newOfflineStore(t, durable)
	sg := &store.ServiceGame{ID: "g1", Name: "preloaded"}
	s.local.SetWithTTL(gameKey("g1"), sg, 1, time.Minute)
	s.local.Wait()

	got, err := s.GetGame(ctx, "g1", true)
	require.NoError(t, err)
	require.Same(t, sg, got)
	require.Equal(t, "preloaded", got.Name, "should come from L1, not the durable record named table")
}

func TestSaveGameWritesThroughAndRefreshesL1(t *testing.T) {
	durable := memstore.New()
	ctx := context.Background()
	s := newOfflineStore(t, durable)

	sg := &store.ServiceGame{ID: "g1", Name: "table", Game: mahjong.NewGame("g1", "table")}
	require.NoError(t, s.SaveGame(ctx, sg))

	fromDurable, err := durable.GetGame(ctx, "g1", false)
	require.NoError(t, err)
	require.Same(t, sg, fromDurable)

	s.local.Wait()
	cached, ok := s.local.Get(gameKey("g1"))
	require.True(t, ok)
	require.Same(t, sg, cached.(*store.ServiceGame))
}

func TestDeleteGamesInvalidatesL1(t *testing.T) {
	durable := memstore.New()
	ctx := context.Background()
	require.NoError(t, durable.SaveGame(ctx, &store.ServiceGame{ID: "g1"}))

	s := newOfflineStore(t, durable)
	require.NoError(t, s.SaveGame(ctx, &store.ServiceGame{ID: "g1", Game: mahjong.NewGame("g1", "")}))
	s.local.Wait()

	require.NoError(t, s.DeleteGames(ctx, []string{"g1"}))
	_, ok := s.local.Get(gameKey("g1"))
	require.False(t, ok, "delete should invalidate the local tier")
}

func TestDelegatingMethodsPassThroughToDurable(t *testing.T) {
	durable := memstore.New()
	ctx := context.Background()
	s := newOfflineStore(t, durable)

	require.NoError(t, s.SavePlayer(ctx, &store.Player{ID: "p1", Name: "Alice"}))
	p, err := s.GetPlayer(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, "Alice", p.Name)

	require.NoError(t, s.SaveAuthInfo(ctx, &store.AuthInfo{Lookup: "l1", PlayerID: "p1"}))
	info, err := s.GetAuthInfo(ctx, "l1")
	require.NoError(t, err)
	require.Equal(t, "p1", info.PlayerID)

	require.NoError(t, durable.SaveGame(ctx, &store.ServiceGame{ID: "g2", Players: []string{"p1"}}))
	games, err := s.GetPlayerGames(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, games, 1)
}
