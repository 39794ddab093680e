package mahjong

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func newFourPlayerGame(t *testing.T) *Game {
	t.Helper()
	g := NewGame("g1", "Table One")
	for i := 0; i < 4; i++ {
		require.NoError(t, g.AddPlayer(fmt.Sprintf("p%d", i)))
	}
	require.NoError(t, g.Start(false))
	require.NoError(t, g.CompletePlayers(false))
	require.NoError(t, g.DecideDealer())
	require.NoError(t, g.PrepareTable(false))
	require.NoError(t, g.InitialDraw())
	return g
}

func TestAddPlayerEnforcesRosterCapAndPhase(t *testing.T) {
	g := NewGame("g1", "Table")
	for i := 0; i < 4; i++ {
		require.NoError(t, g.AddPlayer(fmt.Sprintf("p%d", i)))
	}
	require.ErrorIs(t, g.AddPlayer("p4"), ErrGameFull)

	require.NoError(t, g.Start(false))
	require.ErrorIs(t, g.Start(false), ErrWrongPhase)
}

func TestInitialDrawDealsFullHandsAndEntersPlaying(t *testing.T) {
	g := newFourPlayerGame(t)
	require.Equal(t, PhasePlaying, g.Phase)
	totalBonus := 0
	for seat, h := range g.Hands {
		require.Equal(t, PreClaimHandSize, h.LiveCount())
		totalBonus += len(g.BonusTiles[seat])
	}
	require.Equal(t, TileCount, 4*PreClaimHandSize+totalBonus+g.Wall.TotalRemaining())
}

func TestDrawDiscardClaimAndNextTurnCycle(t *testing.T) {
	g := newFourPlayerGame(t)
	current := g.Round.CurrentPlayerIndex

	var out DrawOutcome
	for {
		var err error
		out, err = g.DrawTileFromWall()
		require.NoError(t, err)
		if out.Kind == DrawNormal {
			break
		}
		require.Equal(t, DrawBonus, out.Kind)
	}
	require.Equal(t, PreClaimHandSize+1, g.Hands[current].LiveCount())

	require.NoError(t, g.DiscardTileToBoard(out.Tile))
	require.Equal(t, PreClaimHandSize, g.Hands[current].LiveCount())
	require.Len(t, g.Board, 1)

	next := (current + 1) % 4
	require.ErrorIs(t, g.ClaimTile(current), ErrClaimantIsDiscarder)

	require.NoError(t, g.ClaimTile(next))
	require.Equal(t, PreClaimHandSize+1, g.Hands[next].LiveCount())
	require.Empty(t, g.Board)
	require.Equal(t, next, g.Round.CurrentPlayerIndex)

	claimedTileID := out.Tile
	var toDiscard TileID
	for _, ht := range g.Hands[next].Tiles {
		if ht.ID != claimedTileID {
			toDiscard = ht.ID
			break
		}
	}
	require.NoError(t, g.DiscardTileToBoard(toDiscard))
	require.NoError(t, g.NextTurn())
	require.Equal(t, (next+1)%4, g.Round.CurrentPlayerIndex)
}

func TestCreateMeldConcealedPungFromFreeTiles(t *testing.T) {
	g := &Game{Phase: PhasePlaying, Players: []string{"p0", "p1", "p2", "p3"}, Round: &Round{}}
	g.Hands = []*Hand{{}, {}, {}, {}}
	ids := []TileID{suitID(t, Dots, 5, 0), suitID(t, Dots, 5, 1), suitID(t, Dots, 5, 2)}
	for _, id := range ids {
		g.Hands[0].AppendTile(id)
	}

	setID, err := g.CreateMeld(0, ids, false, true)
	require.NoError(t, err)
	require.NotEmpty(t, setID)
	require.Len(t, g.Hands[0].SetTiles(setID), 3)
}

func TestCreateMeldKongDrawsSupplementalFromDeadWall(t *testing.T) {
	g := &Game{Phase: PhasePlaying, Round: &Round{}}
	g.Hands = []*Hand{{}}
	ids := []TileID{suitID(t, Bamboo, 7, 0), suitID(t, Bamboo, 7, 1), suitID(t, Bamboo, 7, 2), suitID(t, Bamboo, 7, 3)}
	for _, id := range ids {
		g.Hands[0].AppendTile(id)
	}
	supplement := suitID(t, Characters, 1, 3)
	g.Wall = &DrawWall{DeadWall: []TileID{supplement}}

	setID, err := g.CreateMeld(0, ids, false, true)
	require.NoError(t, err)
	_, ok := g.Hands[0].KongFor(setID)
	require.True(t, ok)
	require.Len(t, g.Hands[0].SetTiles(setID), 3)
	require.Equal(t, 4, g.Hands[0].LiveCount())
	require.Empty(t, g.Wall.DeadWall)
}

func TestUpgradeMeldPromotesExistingPungToKong(t *testing.T) {
	g := &Game{Phase: PhasePlaying, Round: &Round{}}
	existing := []TileID{suitID(t, Dots, 8, 0), suitID(t, Dots, 8, 1), suitID(t, Dots, 8, 2)}
	g.Hands = []*Hand{{Tiles: committedGroup("s1", existing)}}
	fourth := suitID(t, Dots, 8, 3)
	g.Hands[0].AppendTile(fourth)
	supplement := suitID(t, Characters, 2, 3)
	g.Wall = &DrawWall{DeadWall: []TileID{supplement}}

	setID, err := g.CreateMeld(0, append(existing, fourth), true, false)
	require.NoError(t, err)
	require.Equal(t, "s1", setID)
	kong, ok := g.Hands[0].KongFor("s1")
	require.True(t, ok)
	require.Equal(t, fourth, kong.ID)
}

func TestBreakMeldRevertsConcealedNonKongMeld(t *testing.T) {
	g := &Game{Phase: PhasePlaying}
	ids := []TileID{suitID(t, Dots, 3, 0), suitID(t, Dots, 3, 1), suitID(t, Dots, 3, 2)}
	g.Hands = []*Hand{{Tiles: committedGroup("s1", ids)}}

	require.NoError(t, g.BreakMeld(0, "s1"))
	require.Empty(t, g.Hands[0].SetTiles("s1"))
	require.Equal(t, 3, g.Hands[0].LiveCount())
}

func TestBreakMeldRejectsExposedTilesAndKongs(t *testing.T) {
	g := &Game{Phase: PhasePlaying}
	exposed := committedGroup("s1", []TileID{suitID(t, Dots, 4, 0), suitID(t, Dots, 4, 1), suitID(t, Dots, 4, 2)})
	for i := range exposed {
		exposed[i].Concealed = false
	}
	g.Hands = []*Hand{{Tiles: exposed}}
	require.ErrorIs(t, g.BreakMeld(0, "s1"), ErrTileIsExposed)

	kongIDs := []TileID{suitID(t, Dots, 6, 0), suitID(t, Dots, 6, 1), suitID(t, Dots, 6, 2)}
	g.Hands = []*Hand{{
		Tiles: committedGroup("s2", kongIDs),
		Kongs: []KongTile{{ID: suitID(t, Dots, 6, 3), SetID: "s2"}},
	}}
	require.ErrorIs(t, g.BreakMeld(0, "s2"), ErrMeldIsKong)
}

func TestSayMahjongScoresHandAndAdvancesRound(t *testing.T) {
	g := &Game{
		Phase:   PhasePlaying,
		Players: []string{"p0", "p1", "p2", "p3"},
		Score:   map[string]uint32{"p0": 0},
		Round:   &Round{},
		Wall:    &DrawWall{},
	}
	g.Hands = []*Hand{fourChowsAndPairHand(t), {}, {}, {}}
	g.BonusTiles = [][]TileID{nil, nil, nil, nil}

	result, err := g.SayMahjong(0)
	require.NoError(t, err)
	require.Contains(t, result.Rules, RuleCommonHand)
	require.Greater(t, result.Points, 0)
	require.False(t, result.GameEnded)
	require.Equal(t, PhaseInitialShuffle, g.Phase)
	require.Equal(t, uint32(result.Points), g.Score["p0"])
}

func TestSayMahjongRejectsIncompleteOrUnpairedHands(t *testing.T) {
	g := &Game{Phase: PhasePlaying, Players: []string{"p0"}, Round: &Round{}, Wall: &DrawWall{}}

	thirteen := &Hand{}
	for i := 0; i < 13; i++ {
		thirteen.AppendTile(TileID(i))
	}
	g.Hands = []*Hand{thirteen}
	_, err := g.SayMahjong(0)
	require.ErrorIs(t, err, ErrCantDrop)

	unpaired := &Hand{}
	for i := 0; i < 14; i++ {
		unpaired.AppendTile(TileID(i))
	}
	g.Hands = []*Hand{unpaired}
	_, err = g.SayMahjong(0)
	require.ErrorIs(t, err, ErrNotPair)
}

func TestPassNullRoundRequiresAnEmptyWall(t *testing.T) {
	g := &Game{Phase: PhasePlaying, Round: &Round{}, Wall: &DrawWall{Segments: [4][]TileID{{1}, {}, {}, {}}}}
	require.Error(t, g.PassNullRound())

	g.Wall = &DrawWall{}
	require.NoError(t, g.PassNullRound())
	require.Equal(t, PhaseInitialShuffle, g.Phase)
}

func TestDebugSwapWallTilesExchangesPositionsAcrossSegmentsAndDeadWall(t *testing.T) {
	g := &Game{Wall: &DrawWall{
		Segments: [4][]TileID{{1, 2}, {3}, {}, {}},
		DeadWall: []TileID{4},
	}}

	require.NoError(t, g.DebugSwapWallTiles(2, 4))
	require.Equal(t, []TileID{1, 4}, g.Wall.Segments[0])
	require.Equal(t, []TileID{2}, g.Wall.DeadWall)

	require.Error(t, g.DebugSwapWallTiles(99, 1))
}
