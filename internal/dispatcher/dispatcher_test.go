package dispatcher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"mahjong/internal/ai"
	"mahjong/internal/mahjong"
	"mahjong/internal/store"
	"mahjong/internal/store/memstore"
)

func newTestDispatcher() *Dispatcher {
	return New(memstore.New(), nil, nil)
}

func TestJoinGameSeatsPlayersAndStartsAtFour(t *testing.T) {
	d := newTestDispatcher()
	ctx := context.Background()
	_, err := d.CreateGame(ctx, "g1", "table", ai.Config{})
	require.NoError(t, err)

	for i, id := range []string{"p0", "p1", "p2", "p3"} {
		got, err := d.JoinGame(ctx, "g1", id)
		require.NoError(t, err)
		require.Len(t, got.Players, i+1)
	}

	final, err := d.GetGame(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, "WaitingPlayers", final.Game.Phase.String())
}

func TestJoinGameRejectsAFifthPlayer(t *testing.T) {
	d := newTestDispatcher()
	ctx := context.Background()
	_, err := d.CreateGame(ctx, "g1", "table", ai.Config{})
	require.NoError(t, err)
	for _, id := range []string{"p0", "p1", "p2", "p3"} {
		_, err := d.JoinGame(ctx, "g1", id)
		require.NoError(t, err)
	}
	_, err = d.JoinGame(ctx, "g1", "p4")
	require.Error(t, err)
}

func TestMutateRejectsAnUnseatedPlayer(t *testing.T) {
	d := newTestDispatcher()
	ctx := context.Background()
	_, err := d.CreateGame(ctx, "g1", "table", ai.Config{})
	require.NoError(t, err)
	_, err = d.JoinGame(ctx, "g1", "p0")
	require.NoError(t, err)

	_, err = d.DrawTile(ctx, "g1", "not-seated", "")
	require.Error(t, err)
}

func TestWithGameDetectsVersionMismatch(t *testing.T) {
	st := memstore.New()
	d := New(st, nil, nil)
	ctx := context.Background()

	g := mahjong.NewGame("g1", "table")
	g.Phase = mahjong.PhasePlaying
	g.Players = []string{"p0", "p1", "p2", "p3"}
	g.Round = &mahjong.Round{}
	g.Wall = &mahjong.DrawWall{Segments: [4][]mahjong.TileID{{0}, {1}, {2}, {3}}}
	g.Hands = []*mahjong.Hand{{}, {}, {}, {}}
	require.NoError(t, st.SaveGame(ctx, &store.ServiceGame{ID: "g1", Game: g, Players: g.Players}))

	staleVersion := g.Version()

	_, err := d.DrawTile(ctx, "g1", "p0", staleVersion)
	require.NoError(t, err, "first draw bumps the version forward")

	_, err = d.DrawTile(ctx, "g1", "p0", staleVersion)
	require.ErrorIs(t, err, ErrVersionMismatch)
}

func TestGetPlayerGamesDelegatesToStore(t *testing.T) {
	d := newTestDispatcher()
	ctx := context.Background()
	_, err := d.CreateGame(ctx, "g1", "table", ai.Config{})
	require.NoError(t, err)
	_, err = d.JoinGame(ctx, "g1", "p0")
	require.NoError(t, err)

	games, err := d.GetPlayerGames(ctx, "p0")
	require.NoError(t, err)
	require.Len(t, games, 1)
	require.Equal(t, "g1", games[0].ID)
}

func TestActiveGameIDsDedupesPlayerAndAdminRooms(t *testing.T) {
	ids := activeGameIDs([]string{"g1", "g1__p0", "g1__p1", "g2__p0"})
	require.ElementsMatch(t, []string{"g1", "g2"}, ids)
}
