package mahjong

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func dragonID(t *testing.T, d DragonFace, skip int) TileID {
	t.Helper()
	n := 0
	for id := 0; id < TileCount; id++ {
		tile := TileByID(TileID(id))
		if tile.Kind == KindDragon && tile.Dragon == d {
			if n == skip {
				return tile.ID
			}
			n++
		}
	}
	t.Fatalf("no dragon %v copy %d found", d, skip)
	return -1
}

func flowerID(t *testing.T, f FlowerFace) TileID {
	t.Helper()
	for id := 0; id < TileCount; id++ {
		tile := TileByID(TileID(id))
		if tile.Kind == KindFlower && tile.Flower == f {
			return tile.ID
		}
	}
	t.Fatalf("no flower %v found", f)
	return -1
}

func seasonID(t *testing.T, s SeasonFace) TileID {
	t.Helper()
	for id := 0; id < TileCount; id++ {
		tile := TileByID(TileID(id))
		if tile.Kind == KindSeason && tile.Season == s {
			return tile.ID
		}
	}
	t.Fatalf("no season %v found", s)
	return -1
}

func committedGroup(setID string, ids []TileID) []HandTile {
	out := make([]HandTile, len(ids))
	for i, id := range ids {
		out[i] = HandTile{ID: id, SetID: setID, Concealed: true}
	}
	return out
}

func TestGroupsRecognizesChowsPungsKongAndPair(t *testing.T) {
	h := &Hand{}
	h.Tiles = append(h.Tiles, committedGroup("chow", []TileID{
		suitID(t, Bamboo, 1, 0), suitID(t, Bamboo, 2, 0), suitID(t, Bamboo, 3, 0),
	})...)
	h.Tiles = append(h.Tiles, committedGroup("pung", []TileID{
		suitID(t, Dots, 5, 0), suitID(t, Dots, 5, 1), suitID(t, Dots, 5, 2),
	})...)
	h.Tiles = append(h.Tiles, committedGroup("kong", []TileID{
		suitID(t, Characters, 7, 0), suitID(t, Characters, 7, 1), suitID(t, Characters, 7, 2),
	})...)
	h.Kongs = append(h.Kongs, KongTile{ID: suitID(t, Characters, 7, 3), SetID: "kong"})
	h.AppendTile(suitID(t, Bamboo, 9, 0))
	h.AppendTile(suitID(t, Bamboo, 9, 1))

	groups := h.Groups()
	require.Len(t, groups, 4)

	byID := map[string]HandGroup{}
	for _, g := range groups {
		byID[g.SetID] = g
	}
	require.Equal(t, MeldChow, byID["chow"].Kind)
	require.Equal(t, MeldPung, byID["pung"].Kind)
	require.Equal(t, MeldKong, byID["kong"].Kind)
	require.Len(t, byID["kong"].Tiles, 4)

	var pairs int
	for _, g := range groups {
		if g.IsPair {
			pairs++
			require.Len(t, g.Tiles, 2)
		}
	}
	require.Equal(t, 1, pairs)
}

func fourChowsAndPairHand(t *testing.T) *Hand {
	h := &Hand{}
	h.Tiles = append(h.Tiles, committedGroup("g1", []TileID{
		suitID(t, Bamboo, 1, 0), suitID(t, Bamboo, 2, 0), suitID(t, Bamboo, 3, 0),
	})...)
	h.Tiles = append(h.Tiles, committedGroup("g2", []TileID{
		suitID(t, Bamboo, 4, 0), suitID(t, Bamboo, 5, 0), suitID(t, Bamboo, 6, 0),
	})...)
	h.Tiles = append(h.Tiles, committedGroup("g3", []TileID{
		suitID(t, Dots, 1, 0), suitID(t, Dots, 2, 0), suitID(t, Dots, 3, 0),
	})...)
	h.Tiles = append(h.Tiles, committedGroup("g4", []TileID{
		suitID(t, Dots, 4, 0), suitID(t, Dots, 5, 0), suitID(t, Dots, 6, 0),
	})...)
	h.AppendTile(suitID(t, Characters, 9, 0))
	h.AppendTile(suitID(t, Characters, 9, 1))
	return h
}

func TestCalculateHandScoreRecognizesCommonHand(t *testing.T) {
	h := fourChowsAndPairHand(t)
	require.Equal(t, 14, h.LiveCount())

	rules, total := CalculateHandScore(h, ScoreContext{SeatWind: East})
	require.Contains(t, rules, RuleCommonHand)
	require.Contains(t, rules, RuleNoFlowersSeasons)
	require.NotContains(t, rules, RuleAllInTriplets)
	require.Equal(t, ruleWeights[RuleBasePoint]+ruleWeights[RuleCommonHand]+ruleWeights[RuleNoFlowersSeasons], total)
}

func fourPungsAndPairHand(t *testing.T) *Hand {
	h := &Hand{}
	h.Tiles = append(h.Tiles, committedGroup("g1", []TileID{
		suitID(t, Bamboo, 1, 0), suitID(t, Bamboo, 1, 1), suitID(t, Bamboo, 1, 2),
	})...)
	h.Tiles = append(h.Tiles, committedGroup("g2", []TileID{
		suitID(t, Bamboo, 2, 0), suitID(t, Bamboo, 2, 1), suitID(t, Bamboo, 2, 2),
	})...)
	h.Tiles = append(h.Tiles, committedGroup("g3", []TileID{
		suitID(t, Dots, 1, 0), suitID(t, Dots, 1, 1), suitID(t, Dots, 1, 2),
	})...)
	h.Tiles = append(h.Tiles, committedGroup("g4", []TileID{
		suitID(t, Dots, 2, 0), suitID(t, Dots, 2, 1), suitID(t, Dots, 2, 2),
	})...)
	h.AppendTile(suitID(t, Characters, 9, 0))
	h.AppendTile(suitID(t, Characters, 9, 1))
	return h
}

func TestCalculateHandScoreRecognizesAllInTriplets(t *testing.T) {
	h := fourPungsAndPairHand(t)
	rules, _ := CalculateHandScore(h, ScoreContext{SeatWind: East})
	require.Contains(t, rules, RuleAllInTriplets)
	require.NotContains(t, rules, RuleCommonHand)
}

func TestCalculateHandScoreRecognizesGreatDragons(t *testing.T) {
	h := &Hand{}
	h.Tiles = append(h.Tiles, committedGroup("red", []TileID{
		dragonID(t, Red, 0), dragonID(t, Red, 1), dragonID(t, Red, 2),
	})...)
	h.Tiles = append(h.Tiles, committedGroup("green", []TileID{
		dragonID(t, Green, 0), dragonID(t, Green, 1), dragonID(t, Green, 2),
	})...)
	h.Tiles = append(h.Tiles, committedGroup("white", []TileID{
		dragonID(t, White, 0), dragonID(t, White, 1), dragonID(t, White, 2),
	})...)
	h.Tiles = append(h.Tiles, committedGroup("g4", []TileID{
		suitID(t, Dots, 2, 0), suitID(t, Dots, 2, 1), suitID(t, Dots, 2, 2),
	})...)
	h.AppendTile(suitID(t, Characters, 9, 0))
	h.AppendTile(suitID(t, Characters, 9, 1))

	rules, _ := CalculateHandScore(h, ScoreContext{SeatWind: East})
	require.Contains(t, rules, RuleGreatDragons)
}

func TestCalculateHandScoreBonusRules(t *testing.T) {
	h := fourChowsAndPairHand(t)

	allFlowers := []TileID{flowerID(t, Plum), flowerID(t, Orchid), flowerID(t, Chrysanthemum), flowerID(t, FlowerBamboo)}
	rules, _ := CalculateHandScore(h, ScoreContext{SeatWind: East, BonusTiles: allFlowers})
	require.Contains(t, rules, RuleAllFlowers)
	require.Contains(t, rules, RuleSeatFlower)
	require.NotContains(t, rules, RuleNoFlowersSeasons)

	allSeasons := []TileID{seasonID(t, Spring), seasonID(t, Summer), seasonID(t, Autumn), seasonID(t, Winter)}
	rules, _ = CalculateHandScore(h, ScoreContext{SeatWind: South, BonusTiles: allSeasons})
	require.Contains(t, rules, RuleAllSeasons)
	require.Contains(t, rules, RuleSeatSeason)

	rules, _ = CalculateHandScore(h, ScoreContext{SeatWind: East})
	require.Contains(t, rules, RuleNoFlowersSeasons)
}

func TestCalculateHandScoreLastWallTileAndSelfDraw(t *testing.T) {
	h := fourChowsAndPairHand(t)
	rules, _ := CalculateHandScore(h, ScoreContext{SeatWind: East, LastWallTile: true, SelfDraw: true})
	require.Contains(t, rules, RuleLastWallTile)
	require.Contains(t, rules, RuleSelfDraw)
}
