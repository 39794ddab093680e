package mahjong

import "sort"

// TileCount is the fixed size of a Hong Kong mahjong deck: 108 suit tiles,
// 16 winds, 12 dragons, 4 flowers, 4 seasons.
const TileCount = 144

// DefaultDeck is the process-wide, read-only deck. It is built once at
// package init in a fixed order (suits, winds, dragons,
// flowers, seasons) so tile identity is stable across the whole process.
var DefaultDeck = buildDeck()

func buildDeck() [TileCount]Tile {
	var deck [TileCount]Tile
	id := 0

	suits := []Suit{Bamboo, Dots, Characters}
	for _, s := range suits {
		for v := 1; v <= 9; v++ {
			for copy := 0; copy < 4; copy++ {
				deck[id] = Tile{ID: TileID(id), Kind: KindSuit, Suit: s, Value: v}
				id++
			}
		}
	}

	winds := []WindFace{East, South, West, North}
	for _, w := range winds {
		for copy := 0; copy < 4; copy++ {
			deck[id] = Tile{ID: TileID(id), Kind: KindWind, Wind: w}
			id++
		}
	}

	dragons := []DragonFace{Red, Green, White}
	for _, d := range dragons {
		for copy := 0; copy < 4; copy++ {
			deck[id] = Tile{ID: TileID(id), Kind: KindDragon, Dragon: d}
			id++
		}
	}

	flowers := []FlowerFace{Plum, Orchid, Chrysanthemum, FlowerBamboo}
	for _, f := range flowers {
		deck[id] = Tile{ID: TileID(id), Kind: KindFlower, Flower: f}
		id++
	}

	seasons := []SeasonFace{Spring, Summer, Autumn, Winter}
	for _, s := range seasons {
		deck[id] = Tile{ID: TileID(id), Kind: KindSeason, Season: s}
		id++
	}

	return deck
}

// TileByID is an O(1) lookup into the process-wide deck.
func TileByID(id TileID) Tile {
	return DefaultDeck[int(id)]
}

// ResolveIDs resolves a slice of tile ids into their Tile values, in order.
func ResolveIDs(ids []TileID) []Tile {
	tiles := make([]Tile, len(ids))
	for i, id := range ids {
		tiles[i] = TileByID(id)
	}
	return tiles
}

// SortedIDs returns a sorted copy of ids, ascending.
func SortedIDs(ids []TileID) []TileID {
	out := make([]TileID, len(ids))
	copy(out, ids)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// seatWindFace maps a seat wind to a zero-based wind index matching the
// order in which SeatFlower/SeatSeason are defined (East=0 ... North=3).
func seatWindFace(w WindFace) int {
	return int(w)
}
