package mahjong

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetPossibleMeldsFindsPungFromFreeTiles(t *testing.T) {
	h := &Hand{}
	h.AppendTile(suitID(t, Dots, 2, 0))
	h.AppendTile(suitID(t, Dots, 2, 1))
	h.AppendTile(suitID(t, Dots, 2, 2))
	h.AppendTile(suitID(t, Bamboo, 9, 0))

	candidates := GetPossibleMelds(h, 0, nil, false)
	found := false
	for _, c := range candidates {
		if c.Kind == MeldPung {
			found = true
			require.True(t, c.IsConcealed)
		}
	}
	require.True(t, found, "expected a pung candidate")
}

func TestGetPossibleMeldsGatesChowByClaimDirection(t *testing.T) {
	h := &Hand{}
	h.AppendTile(suitID(t, Characters, 4, 0))
	h.AppendTile(suitID(t, Characters, 5, 0))
	claimed := suitID(t, Characters, 6, 0)

	upstream := GetPossibleMelds(h, 1, &claimed, false)
	require.NotEmpty(t, chowsOf(upstream))

	downstream := GetPossibleMelds(h, 2, &claimed, false)
	require.Empty(t, chowsOf(downstream))
}

func chowsOf(cands []MeldCandidate) []MeldCandidate {
	var out []MeldCandidate
	for _, c := range cands {
		if c.Kind == MeldChow {
			out = append(out, c)
		}
	}
	return out
}

func TestGetPossibleMeldsCheckForMahjongOnlyReturnsWinningCandidates(t *testing.T) {
	// Three committed pungs (9 tagged tiles) plus 4 free tiles: a pair and
	// two tiles waiting on a claimed third to complete the final meld.
	committed := func(setID string, ids []TileID) []HandTile {
		out := make([]HandTile, len(ids))
		for i, id := range ids {
			out[i] = HandTile{ID: id, SetID: setID, Concealed: true}
		}
		return out
	}
	h := &Hand{}
	h.Tiles = append(h.Tiles, committed("s1", []TileID{
		suitID(t, Characters, 1, 0), suitID(t, Characters, 1, 1), suitID(t, Characters, 1, 2),
	})...)
	h.Tiles = append(h.Tiles, committed("s2", []TileID{
		suitID(t, Characters, 2, 0), suitID(t, Characters, 2, 1), suitID(t, Characters, 2, 2),
	})...)
	h.Tiles = append(h.Tiles, committed("s3", []TileID{
		suitID(t, Characters, 3, 0), suitID(t, Characters, 3, 1), suitID(t, Characters, 3, 2),
	})...)
	pairA, pairB := suitID(t, Bamboo, 9, 0), suitID(t, Bamboo, 9, 1)
	single1, single2 := suitID(t, Dots, 4, 0), suitID(t, Dots, 5, 0)
	h.AppendTile(pairA)
	h.AppendTile(pairB)
	h.AppendTile(single1)
	h.AppendTile(single2)
	claimed := suitID(t, Dots, 6, 0)

	winning := GetPossibleMelds(h, 1, &claimed, true)
	require.NotEmpty(t, winning)
	for _, c := range winning {
		require.True(t, c.IsMahjong)
	}

	nonWinning := GetPossibleMelds(h, 1, &claimed, false)
	for _, c := range nonWinning {
		require.False(t, c.IsMahjong)
	}
}

func TestGetPossibleMeldsDeduplicatesIdenticalCandidates(t *testing.T) {
	h := &Hand{}
	h.AppendTile(suitID(t, Bamboo, 7, 0))
	h.AppendTile(suitID(t, Bamboo, 7, 1))
	h.AppendTile(suitID(t, Bamboo, 7, 2))
	h.AppendTile(suitID(t, Bamboo, 7, 3))

	candidates := GetPossibleMelds(h, 0, nil, false)
	seen := map[string]int{}
	for _, c := range candidates {
		seen[idKey(c.TileIDs)]++
	}
	for key, n := range seen {
		require.Equal(t, 1, n, "candidate %s duplicated", key)
	}
}

func TestUpgradeCandidatesPromotesExposedPungToKong(t *testing.T) {
	setID := "set-1"
	h := &Hand{
		Tiles: []HandTile{
			{ID: suitID(t, Dots, 8, 0), SetID: setID, Concealed: false},
			{ID: suitID(t, Dots, 8, 1), SetID: setID, Concealed: false},
			{ID: suitID(t, Dots, 8, 2), SetID: setID, Concealed: false},
		},
	}
	fourth := suitID(t, Dots, 8, 3)
	h.AppendTile(fourth)

	candidates := GetPossibleMelds(h, 0, nil, false)
	found := false
	for _, c := range candidates {
		if c.IsUpgrade {
			found = true
			require.Equal(t, MeldKong, c.Kind)
			require.Contains(t, c.TileIDs, fourth)
		}
	}
	require.True(t, found, "expected an upgrade candidate")
}
