package dispatcher

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mahjong/internal/mahjong"
)

func findTile(t *testing.T, s mahjong.Suit, v int, skip int) mahjong.TileID {
	t.Helper()
	n := 0
	for id := 0; id < mahjong.TileCount; id++ {
		tile := mahjong.TileByID(mahjong.TileID(id))
		if tile.Kind == mahjong.KindSuit && tile.Suit == s && tile.Value == v {
			if n == skip {
				return tile.ID
			}
			n++
		}
	}
	t.Fatalf("no suit tile %d/%d copy %d found", s, v, skip)
	return -1
}

func twoSeatGame(t *testing.T) *mahjong.Game {
	t.Helper()
	g := mahjong.NewGame("g1", "table")
	g.Phase = mahjong.PhasePlaying
	g.Players = []string{"p0", "p1"}
	g.Wall = &mahjong.DrawWall{Segments: [4][]mahjong.TileID{{findTile(t, mahjong.Bamboo, 9, 3)}}}
	g.Round = &mahjong.Round{DealerIndex: 0, CurrentPlayerIndex: 1, RoundIndex: 1, Wind: mahjong.East}
	g.Score = map[string]uint32{"p0": 0, "p1": 0}

	h0 := &mahjong.Hand{}
	h0.Tiles = append(h0.Tiles,
		mahjong.HandTile{ID: findTile(t, mahjong.Bamboo, 1, 0), SetID: "s1", Concealed: true},
		mahjong.HandTile{ID: findTile(t, mahjong.Bamboo, 2, 0), SetID: "s1", Concealed: true},
		mahjong.HandTile{ID: findTile(t, mahjong.Bamboo, 3, 0), SetID: "s1", Concealed: true},
		mahjong.HandTile{ID: findTile(t, mahjong.Dots, 5, 0)},
		mahjong.HandTile{ID: findTile(t, mahjong.Dots, 5, 2)},
	)
	h1 := &mahjong.Hand{}
	h1.Tiles = append(h1.Tiles, mahjong.HandTile{ID: findTile(t, mahjong.Characters, 9, 0)})
	g.Hands = []*mahjong.Hand{h0, h1}
	g.Board = []mahjong.TileID{findTile(t, mahjong.Dots, 1, 0)}
	return g
}

func TestBuildSummaryRevealsOnlyTheViewersOwnTiles(t *testing.T) {
	g := twoSeatGame(t)

	s := BuildSummary(g, 0)
	require.Equal(t, "g1", s.ID)
	require.Equal(t, "playing", s.Phase)
	require.Equal(t, 1, s.WallCount)
	require.Len(t, s.Hands, 2)

	require.Len(t, s.Hands[0].Tiles, 5, "viewer sees every tile in their own hand")
	require.Len(t, s.Hands[0].Melds, 1)
	require.Equal(t, "s1", s.Hands[0].Melds[0].SetID)
	require.True(t, s.Hands[0].Melds[0].Concealed)

	require.Empty(t, s.Hands[1].Tiles, "non-viewer seat's free tiles are hidden")
	require.Equal(t, 1, s.Hands[1].TileCount)
}

func TestBuildSummaryShowsOnlyExposedTilesForOtherSeats(t *testing.T) {
	g := twoSeatGame(t)
	g.Hands[1].Tiles = append(g.Hands[1].Tiles,
		mahjong.HandTile{ID: findTile(t, mahjong.Bamboo, 7, 0), SetID: "s2", Concealed: false},
		mahjong.HandTile{ID: findTile(t, mahjong.Bamboo, 8, 0), SetID: "s2", Concealed: false},
		mahjong.HandTile{ID: findTile(t, mahjong.Bamboo, 9, 0), SetID: "s2", Concealed: false},
	)

	s := BuildSummary(g, 0)
	require.Len(t, s.Hands[1].VisibleTiles, 3, "only the exposed meld's tiles show up for seat 1 viewed by seat 0")
	require.Empty(t, s.Hands[1].Tiles)
}

func TestBuildSummaryWithNoPendingClaimDoesNotPanic(t *testing.T) {
	g := twoSeatGame(t)
	g.Round.TileClaimed = nil

	require.NotPanics(t, func() {
		s := BuildSummary(g, 0)
		require.Empty(t, s.Hands[0].PossibleMelds, "two free tiles alone can't form a 3-tile meld")
	})
}

func TestBuildSummaryScopesPossibleMeldsToTheClaimWindow(t *testing.T) {
	g := twoSeatGame(t)
	discard := findTile(t, mahjong.Dots, 5, 1) // would complete a pung with h0's free Dots-5
	g.Board = append(g.Board, discard)
	g.Round.TileClaimed = &mahjong.TileClaim{From: 1, Tile: discard}

	s := BuildSummary(g, 0)
	found := false
	for _, m := range s.Hands[0].PossibleMelds {
		if m.Kind == "pung" {
			found = true
		}
	}
	require.True(t, found, "a claimable pung should surface when a claim is open and unresolved")
}

func TestBuildSummarySpectatorViewRevealsNothingConcealed(t *testing.T) {
	g := twoSeatGame(t)
	s := BuildSummary(g, -1)
	for _, h := range s.Hands {
		require.Nil(t, h.Tiles)
	}
}
