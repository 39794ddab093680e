package mahjong

import "math/rand"

// DeadWallSize is the fixed size of the optional dead wall.
const DeadWallSize = 14

// DrawWall is the four-segment wall: one ordered segment per wind, popped
// from the tail, plus an optional dead wall set aside from circulation.
type DrawWall struct {
	Segments [4][]TileID // indexed by WindFace
	DeadWall []TileID
}

// PositionTilesOpts configures PositionTiles.
type PositionTilesOpts struct {
	Shuffle  bool
	DeadWall bool
	Rand     *rand.Rand // optional; a fresh source is used when nil
}

// PositionTiles builds a fresh wall from the full 144-tile deck, optionally
// shuffled, optionally carving the final 14 tiles into the dead wall, then
// dealing the rest round-robin across the four wind segments.
func PositionTiles(opts PositionTilesOpts) *DrawWall {
	ids := make([]TileID, TileCount)
	for i := range ids {
		ids[i] = TileID(i)
	}

	if opts.Shuffle {
		r := opts.Rand
		if r == nil {
			r = rand.New(rand.NewSource(rand.Int63()))
		}
		r.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	}

	w := &DrawWall{}
	pool := ids
	if opts.DeadWall && len(pool) > DeadWallSize {
		split := len(pool) - DeadWallSize
		w.DeadWall = append(w.DeadWall, pool[split:]...)
		pool = pool[:split]
	}

	for i, id := range pool {
		seat := i % 4
		w.Segments[seat] = append(w.Segments[seat], id)
	}
	return w
}

// TotalRemaining counts every tile still in the four live segments.
func (w *DrawWall) TotalRemaining() int {
	n := 0
	for _, seg := range w.Segments {
		n += len(seg)
	}
	return n
}

// Draw pops the top tile for a player whose seat wind is w. If w's segment
// is empty, the search advances East->South->West->North in wind order
// until a non-empty segment is found. Returns ok=false if the whole wall
// (all four segments) is exhausted.
func (w *DrawWall) Draw(seatWind WindFace) (TileID, bool) {
	for i := 0; i < 4; i++ {
		idx := (int(seatWind) + i) % 4
		seg := w.Segments[idx]
		if len(seg) == 0 {
			continue
		}
		tail := len(seg) - 1
		id := seg[tail]
		w.Segments[idx] = seg[:tail]
		return id, true
	}
	return 0, false
}

// DrawFromDeadWall pops a supplemental tile after a kong. Returns ok=false
// once the dead wall itself is exhausted.
func (w *DrawWall) DrawFromDeadWall() (TileID, bool) {
	if len(w.DeadWall) == 0 {
		return 0, false
	}
	tail := len(w.DeadWall) - 1
	id := w.DeadWall[tail]
	w.DeadWall = w.DeadWall[:tail]
	return id, true
}
