package mahjong

import (
	"sort"
	"strings"
)

// MeldKind discriminates the shape of a MeldCandidate.
type MeldKind int

const (
	MeldPung MeldKind = iota
	MeldChow
	MeldKong
)

// MeldCandidate is one minimal meld proposal returned by GetPossibleMelds.
type MeldCandidate struct {
	TileIDs     []TileID
	Kind        MeldKind
	IsMahjong   bool
	IsConcealed bool
	IsUpgrade   bool
}

func idKey(ids []TileID) string {
	sorted := SortedIDs(ids)
	b := strings.Builder{}
	for i, id := range sorted {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(itoa(int(id)))
	}
	return b.String()
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func combinations(items []TileID, k int) [][]TileID {
	n := len(items)
	if k > n || k <= 0 {
		return nil
	}
	var out [][]TileID
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		combo := make([]TileID, k)
		for i, v := range idx {
			combo[i] = items[v]
		}
		out = append(out, combo)

		i := k - 1
		for i >= 0 && idx[i] == i+n-k {
			i--
		}
		if i < 0 {
			break
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
	return out
}

func containsID(ids []TileID, id TileID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(ids []TileID, id TileID) []TileID {
	out := make([]TileID, 0, len(ids))
	removed := false
	for _, v := range ids {
		if !removed && v == id {
			removed = true
			continue
		}
		out = append(out, v)
	}
	return out
}

func subtractIDs(all, remove []TileID) []TileID {
	out := make([]TileID, 0, len(all))
	for _, id := range all {
		if !containsID(remove, id) {
			out = append(out, id)
		}
	}
	return out
}

// GetPossibleMelds enumerates unique minimal meld candidates buildable from
// the hand's free tiles, optionally including one discarded tile claimed
// from another seat. playerDiff gates chow legality (see IsChow).
//
// When checkForMahjong is true, only candidates whose formation leaves the
// remaining free tiles as exactly a winning pair are returned. Otherwise
// only candidates that do NOT complete mahjong are returned (those are
// surfaced through the dedicated mahjong check instead).
func GetPossibleMelds(h *Hand, playerDiff int, claimedTile *TileID, checkForMahjong bool) []MeldCandidate {
	free := h.FreeTileIDs()
	pool := make([]TileID, len(free))
	copy(pool, free)
	if claimedTile != nil && !containsID(pool, *claimedTile) {
		pool = append(pool, *claimedTile)
	}

	seen := map[string]bool{}
	var results []MeldCandidate

	tryCombo := func(combo []TileID, kind MeldKind) {
		tiles := ResolveIDs(combo)
		switch kind {
		case MeldPung:
			if !IsPung(tiles) {
				return
			}
		case MeldChow:
			if !IsChow(tiles, claimedTile, playerDiff) {
				return
			}
		case MeldKong:
			if !IsKong(tiles) {
				return
			}
		}

		usesClaim := claimedTile != nil && containsID(combo, *claimedTile)
		remaining := subtractIDs(free, combo)

		wouldBeMahjong := len(remaining) == 2 && IsPair(ResolveIDs(remaining))
		if checkForMahjong && !wouldBeMahjong {
			return
		}
		if !checkForMahjong && wouldBeMahjong {
			return
		}

		key := idKey(combo)
		if seen[key] {
			return
		}
		seen[key] = true

		results = append(results, MeldCandidate{
			TileIDs:     SortedIDs(combo),
			Kind:        kind,
			IsMahjong:   wouldBeMahjong,
			IsConcealed: !usesClaim,
		})
	}

	for _, combo := range combinations(pool, 3) {
		if claimedTile != nil && !containsID(combo, *claimedTile) {
			continue
		}
		tryCombo(combo, MeldPung)
		tryCombo(combo, MeldChow)
	}
	for _, combo := range combinations(pool, 4) {
		if claimedTile != nil && !containsID(combo, *claimedTile) {
			continue
		}
		tryCombo(combo, MeldKong)
	}

	if !checkForMahjong {
		results = append(results, upgradeCandidates(h, pool, claimedTile)...)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Kind != results[j].Kind {
			return results[i].Kind < results[j].Kind
		}
		a, b := results[i].TileIDs, results[j].TileIDs
		for k := 0; k < len(a) && k < len(b); k++ {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return len(a) < len(b)
	})

	return results
}

// upgradeCandidates proposes promoting an existing exposed pung to a kong
// using the claimed tile or a matching free tile (self-draw upgrade).
func upgradeCandidates(h *Hand, pool []TileID, claimedTile *TileID) []MeldCandidate {
	var out []MeldCandidate
	groups := map[string][]HandTile{}
	var order []string
	for _, t := range h.Tiles {
		if t.SetID == "" {
			continue
		}
		if _, ok := groups[t.SetID]; !ok {
			order = append(order, t.SetID)
		}
		groups[t.SetID] = append(groups[t.SetID], t)
	}

	for _, setID := range order {
		tiles := groups[setID]
		if len(tiles) != 3 {
			continue
		}
		groupIDs := make([]TileID, len(tiles))
		for i, t := range tiles {
			groupIDs[i] = t.ID
		}
		face := TileByID(groupIDs[0])
		if !IsPung(ResolveIDs(groupIDs)) {
			continue
		}

		candidateIDs := pool
		for _, id := range candidateIDs {
			if containsID(groupIDs, id) {
				continue
			}
			if !TileByID(id).SameFace(face) {
				continue
			}
			combo := append(append([]TileID{}, groupIDs...), id)
			usesClaim := claimedTile != nil && id == *claimedTile
			out = append(out, MeldCandidate{
				TileIDs:     SortedIDs(combo),
				Kind:        MeldKong,
				IsMahjong:   false,
				IsConcealed: !usesClaim,
				IsUpgrade:   true,
			})
		}
	}
	return out
}
