package mahjong

// HandTile is one tile currently held by a player, either free (SetID
// empty) or grouped into a revealed/concealed meld (SetID non-empty).
type HandTile struct {
	ID        TileID
	Concealed bool
	SetID     string
}

// KongTile is the fourth tile of a kong, kept out of the main tile list so
// iterating Hand.Tiles for "live" tiles never sees more than 14 entries.
type KongTile struct {
	ID    TileID
	SetID string
}

// Hand is one player's tiles: the live sequence plus any kong fourth tiles.
type Hand struct {
	Tiles []HandTile
	Kongs []KongTile
}

// LiveCount is the number of tiles that count toward the 13/14 rule.
func (h *Hand) LiveCount() int {
	return len(h.Tiles)
}

// FreeTileIDs returns, in hand order, the ids of tiles not yet tagged with a
// set_id.
func (h *Hand) FreeTileIDs() []TileID {
	var ids []TileID
	for _, t := range h.Tiles {
		if t.SetID == "" {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// SetTiles returns the live HandTiles sharing the given set_id, in hand
// order.
func (h *Hand) SetTiles(setID string) []HandTile {
	if setID == "" {
		return nil
	}
	var out []HandTile
	for _, t := range h.Tiles {
		if t.SetID == setID {
			out = append(out, t)
		}
	}
	return out
}

// KongFor returns the kong fourth tile recorded under setID, if any.
func (h *Hand) KongFor(setID string) (KongTile, bool) {
	for _, k := range h.Kongs {
		if k.SetID == setID {
			return k, true
		}
	}
	return KongTile{}, false
}

// IndexOfTile returns the index of the live tile with the given id, or -1.
func (h *Hand) IndexOfTile(id TileID) int {
	for i, t := range h.Tiles {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// RemoveTile deletes the live tile with the given id and returns it.
func (h *Hand) RemoveTile(id TileID) (HandTile, bool) {
	i := h.IndexOfTile(id)
	if i < 0 {
		return HandTile{}, false
	}
	t := h.Tiles[i]
	h.Tiles = append(h.Tiles[:i], h.Tiles[i+1:]...)
	return t, true
}

// AppendTile adds a new free tile at the tail of the hand.
func (h *Hand) AppendTile(id TileID) {
	h.Tiles = append(h.Tiles, HandTile{ID: id, Concealed: true})
}

// IsPung reports whether sub is exactly 3 tiles sharing a face, none a
// bonus tile.
func IsPung(sub []Tile) bool {
	if len(sub) != 3 {
		return false
	}
	return allSameFace(sub) && !sub[0].IsBonus()
}

// IsKong reports whether sub is exactly 4 tiles sharing a face, none a
// bonus tile.
func IsKong(sub []Tile) bool {
	if len(sub) != 4 {
		return false
	}
	return allSameFace(sub) && !sub[0].IsBonus()
}

// IsPair reports whether sub is exactly 2 tiles of identical face.
func IsPair(sub []Tile) bool {
	if len(sub) != 2 {
		return false
	}
	return sub[0].SameFace(sub[1])
}

func allSameFace(sub []Tile) bool {
	for _, t := range sub[1:] {
		if !t.SameFace(sub[0]) {
			return false
		}
	}
	return true
}

// IsChow reports whether sub is exactly 3 Suit tiles of one suit whose
// values are consecutive in any order. When claimedTile names one of the
// tiles in sub, playerDiff gates the claim: the discarder must sit
// immediately upstream of the claimant (playerDiff == 1); a diff of -3 is
// rewritten to 1 so East claiming from North (seat 3 discarding to seat 0)
// still counts as upstream-by-one.
func IsChow(sub []Tile, claimedTile *TileID, playerDiff int) bool {
	if len(sub) != 3 {
		return false
	}
	for _, t := range sub {
		if t.Kind != KindSuit {
			return false
		}
	}
	suit := sub[0].Suit
	values := [3]int{sub[0].Value, sub[1].Value, sub[2].Value}
	for _, t := range sub[1:] {
		if t.Suit != suit {
			return false
		}
	}
	if values[0] > values[1] {
		values[0], values[1] = values[1], values[0]
	}
	if values[1] > values[2] {
		values[1], values[2] = values[2], values[1]
	}
	if values[0] > values[1] {
		values[0], values[1] = values[1], values[0]
	}
	if values[1] != values[0]+1 || values[2] != values[1]+1 {
		return false
	}

	if claimedTile == nil {
		return true
	}
	usesClaim := false
	for _, t := range sub {
		if t.ID == *claimedTile {
			usesClaim = true
			break
		}
	}
	if !usesClaim {
		return true
	}
	diff := playerDiff
	if diff == -3 {
		diff = 1
	}
	return diff == 1
}

// CanSayMahjong reports whether the hand currently holds 14 live tiles and
// the tiles not yet covered by any set_id form a pair.
func CanSayMahjong(h *Hand) bool {
	if h.LiveCount() != 14 {
		return false
	}
	free := h.FreeTileIDs()
	if len(free) != 2 {
		return false
	}
	return IsPair(ResolveIDs(free))
}
