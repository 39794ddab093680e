// Package text implements the Unicode glyph summary format used by tests
// and the debug/admin surface to render and replay a Game as a single
// multi-line string.
package text

import (
	"fmt"
	"strconv"
	"strings"

	"mahjong/internal/mahjong"
)

var suitGlyph = map[mahjong.Suit]string{
	mahjong.Bamboo:     "索",
	mahjong.Dots:       "筒",
	mahjong.Characters: "萬",
}

var suitFromGlyph = map[string]mahjong.Suit{
	"索": mahjong.Bamboo,
	"筒": mahjong.Dots,
	"萬": mahjong.Characters,
}

var valueGlyph = [10]string{"", "一", "二", "三", "四", "五", "六", "七", "八", "九"}

var valueFromGlyph = map[string]int{
	"一": 1, "二": 2, "三": 3, "四": 4, "五": 5, "六": 6, "七": 7, "八": 8, "九": 9,
}

var windGlyph = map[mahjong.WindFace]string{
	mahjong.East:  "東",
	mahjong.South: "南",
	mahjong.West:  "西",
	mahjong.North: "北",
}

var windFromGlyph = map[string]mahjong.WindFace{
	"東": mahjong.East,
	"南": mahjong.South,
	"西": mahjong.West,
	"北": mahjong.North,
}

var dragonGlyph = map[mahjong.DragonFace]string{
	mahjong.Red:   "中",
	mahjong.Green: "發",
	mahjong.White: "白",
}

var dragonFromGlyph = map[string]mahjong.DragonFace{
	"中": mahjong.Red,
	"發": mahjong.Green,
	"白": mahjong.White,
}

var flowerGlyph = map[mahjong.FlowerFace]string{
	mahjong.Plum:          "梅",
	mahjong.Orchid:        "蘭",
	mahjong.Chrysanthemum: "菊",
	mahjong.FlowerBamboo:  "竹",
}

var flowerFromGlyph = map[string]mahjong.FlowerFace{
	"梅": mahjong.Plum,
	"蘭": mahjong.Orchid,
	"菊": mahjong.Chrysanthemum,
	"竹": mahjong.FlowerBamboo,
}

var seasonGlyph = map[mahjong.SeasonFace]string{
	mahjong.Spring: "春",
	mahjong.Summer: "夏",
	mahjong.Autumn: "秋",
	mahjong.Winter: "冬",
}

var seasonFromGlyph = map[string]mahjong.SeasonFace{
	"春": mahjong.Spring,
	"夏": mahjong.Summer,
	"秋": mahjong.Autumn,
	"冬": mahjong.Winter,
}

// TileGlyph renders a single tile's face as its Unicode summary glyph:
// suit tiles as CJK numeral + suit character, winds/dragons/flowers/seasons
// as their single ideograph.
func TileGlyph(tile mahjong.Tile) string {
	switch tile.Kind {
	case mahjong.KindSuit:
		return valueGlyph[tile.Value] + suitGlyph[tile.Suit]
	case mahjong.KindWind:
		return windGlyph[tile.Wind]
	case mahjong.KindDragon:
		return dragonGlyph[tile.Dragon]
	case mahjong.KindFlower:
		return flowerGlyph[tile.Flower]
	case mahjong.KindSeason:
		return seasonGlyph[tile.Season]
	default:
		return "?"
	}
}

// TileIDFromGlyph resolves a rendered glyph back to the stable deck id
// sharing that face. Panics replaced by errors, unlike the Rust original.
func TileIDFromGlyph(glyph string) (mahjong.TileID, error) {
	runes := []rune(glyph)
	if len(runes) == 0 {
		return 0, fmt.Errorf("text: empty tile glyph")
	}
	first := string(runes[0])

	if v, ok := valueFromGlyph[first]; ok {
		if len(runes) < 2 {
			return 0, fmt.Errorf("text: truncated suit glyph %q", glyph)
		}
		suit, ok := suitFromGlyph[string(runes[1])]
		if !ok {
			return 0, fmt.Errorf("text: unknown suit glyph %q", glyph)
		}
		return findFace(func(t mahjong.Tile) bool {
			return t.Kind == mahjong.KindSuit && t.Suit == suit && t.Value == v
		})
	}
	if w, ok := windFromGlyph[first]; ok {
		return findFace(func(t mahjong.Tile) bool { return t.Kind == mahjong.KindWind && t.Wind == w })
	}
	if d, ok := dragonFromGlyph[first]; ok {
		return findFace(func(t mahjong.Tile) bool { return t.Kind == mahjong.KindDragon && t.Dragon == d })
	}
	if f, ok := flowerFromGlyph[first]; ok {
		return findFace(func(t mahjong.Tile) bool { return t.Kind == mahjong.KindFlower && t.Flower == f })
	}
	if s, ok := seasonFromGlyph[first]; ok {
		return findFace(func(t mahjong.Tile) bool { return t.Kind == mahjong.KindSeason && t.Season == s })
	}
	return 0, fmt.Errorf("text: unrecognized tile glyph %q", glyph)
}

func findFace(match func(mahjong.Tile) bool) (mahjong.TileID, error) {
	for id := 0; id < mahjong.TileCount; id++ {
		t := mahjong.TileByID(mahjong.TileID(id))
		if match(t) {
			return t.ID, nil
		}
	}
	return 0, fmt.Errorf("text: no tile matches requested face")
}

// EncodeIDs renders a comma-separated glyph list, in order.
func EncodeIDs(ids []mahjong.TileID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = TileGlyph(mahjong.TileByID(id))
	}
	return strings.Join(parts, ",")
}

// ParseIDs inverts EncodeIDs.
func ParseIDs(s string) ([]mahjong.TileID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var ids []mahjong.TileID
	for _, part := range strings.Split(s, ",") {
		if part == "" {
			continue
		}
		id, err := TileIDFromGlyph(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// EncodeHand renders a hand as its free tiles followed by one
// space-separated group per committed set_id, kong fourth tiles folded
// back in, `*` marking any group with an exposed tile.
func EncodeHand(h *mahjong.Hand) string {
	var b strings.Builder
	free := h.FreeTileIDs()
	if len(free) == 0 {
		b.WriteString("_")
	} else {
		b.WriteString(EncodeIDs(mahjong.SortedIDs(free)))
	}

	order := []string{}
	seen := map[string]bool{}
	for _, t := range h.Tiles {
		if t.SetID != "" && !seen[t.SetID] {
			seen[t.SetID] = true
			order = append(order, t.SetID)
		}
	}
	for _, setID := range order {
		members := h.SetTiles(setID)
		ids := make([]mahjong.TileID, len(members))
		exposed := false
		for i, m := range members {
			ids[i] = m.ID
			if !m.Concealed {
				exposed = true
			}
		}
		if kong, ok := h.KongFor(setID); ok {
			ids = append(ids, kong.ID)
		}
		b.WriteString(" ")
		if exposed {
			b.WriteString("*")
		}
		b.WriteString(EncodeIDs(mahjong.SortedIDs(ids)))
	}
	return b.String()
}

// ParseHand inverts EncodeHand. The first whitespace-separated group is
// always the free tiles (possibly "_"); every later group becomes one
// concealed-by-default set, `*` marking it exposed.
func ParseHand(summary string) (*mahjong.Hand, error) {
	h := &mahjong.Hand{}
	groups := strings.Fields(summary)
	for i, group := range groups {
		concealed := true
		plain := group
		if strings.HasPrefix(group, "*") {
			concealed = false
			plain = group[len("*"):]
		}
		if i == 0 {
			if plain == "_" {
				continue
			}
			ids, err := ParseIDs(plain)
			if err != nil {
				return nil, err
			}
			for _, id := range ids {
				h.Tiles = append(h.Tiles, mahjong.HandTile{ID: id, Concealed: true})
			}
			continue
		}
		ids, err := ParseIDs(plain)
		if err != nil {
			return nil, err
		}
		setID := fmt.Sprintf("set-%d", i)
		if len(ids) == 4 {
			for _, id := range ids[:3] {
				h.Tiles = append(h.Tiles, mahjong.HandTile{ID: id, SetID: setID, Concealed: concealed})
			}
			h.Kongs = append(h.Kongs, mahjong.KongTile{ID: ids[3], SetID: setID})
		} else {
			for _, id := range ids {
				h.Tiles = append(h.Tiles, mahjong.HandTile{ID: id, SetID: setID, Concealed: concealed})
			}
		}
	}
	return h, nil
}

// phaseName mirrors the phase labels as they appear in the summary
// "Phase: " field.
var phaseName = map[mahjong.Phase]string{
	mahjong.PhaseBeginning:      "Beginning",
	mahjong.PhaseWaitingPlayers: "Waiting Players",
	mahjong.PhaseDecidingDealer: "Deciding Dealer",
	mahjong.PhaseInitialShuffle: "Initial Shuffle",
	mahjong.PhaseInitialDraw:    "Initial Draw",
	mahjong.PhasePlaying:        "Playing",
	mahjong.PhaseEnd:            "End",
}

var phaseFromName = func() map[string]mahjong.Phase {
	m := map[string]mahjong.Phase{}
	for k, v := range phaseName {
		m[v] = k
	}
	return m
}()

// EncodeSummary renders g as the multi-line text summary format.
func EncodeSummary(g *mahjong.Game) string {
	var b strings.Builder

	for pos, playerID := range g.Players {
		if pos >= len(g.Hands) || g.Hands[pos] == nil || g.Hands[pos].LiveCount() == 0 {
			continue
		}
		_ = playerID
		fmt.Fprintf(&b, "\n- P%d: %s", pos+1, EncodeHand(g.Hands[pos]))
	}

	if g.Wall != nil && g.Wall.TotalRemaining() > 0 {
		b.WriteString("\nWall: ...")
	}

	if len(g.Board) > 0 {
		b.WriteString("\nBoard: ")
		reversed := make([]mahjong.TileID, len(g.Board))
		for i, id := range g.Board {
			reversed[len(g.Board)-1-i] = id
		}
		if len(reversed) > 2 {
			b.WriteString(EncodeIDs(reversed[:2]))
			b.WriteString("...")
		} else {
			b.WriteString(EncodeIDs(reversed))
		}
	}

	fmt.Fprintf(&b, "\nTurn: P%d, Dealer: P%d, Round: %d, Wind: %s, Phase: %s",
		g.Round.CurrentPlayerIndex+1, g.Round.DealerIndex+1, g.Round.RoundIndex+1,
		g.Round.Wind.String(), phaseName[g.Phase])
	if g.Round.InitialWinds != nil {
		perm := mahjong.DecodeWindPermutation(*g.Round.InitialWinds)
		names := make([]string, 4)
		for i, w := range perm {
			names[i] = w.String()
		}
		fmt.Fprintf(&b, ", Initial Winds: %s", strings.Join(names, ","))
	}

	fmt.Fprintf(&b, "\nConsecutive: %d", g.Round.ConsecutiveSameSeat)
	if rc := g.Round.TileClaimed; rc != nil {
		fmt.Fprintf(&b, ", Discarded: %s", TileGlyph(mahjong.TileByID(rc.Tile)))
		if rc.By != nil {
			fmt.Fprintf(&b, "(P%d)", *rc.By+1)
		}
	}
	if g.Round.WallTileDrawn != nil {
		fmt.Fprintf(&b, ", Drawn: %s", TileGlyph(mahjong.TileByID(*g.Round.WallTileDrawn)))
	}

	return strings.TrimSpace(b.String())
}

// ParseSummary inverts EncodeSummary, reconstructing a Game whose
// re-encoding is byte-identical to summary.
func ParseSummary(summary string) (*mahjong.Game, error) {
	g := mahjong.NewGame("", "")
	lines := strings.Split(strings.TrimSpace(summary), "\n")
	idx := 0

	var players []string
	var hands []*mahjong.Hand
	for idx < len(lines) {
		line := strings.TrimSpace(lines[idx])
		prefix := fmt.Sprintf("- P%d: ", len(players)+1)
		if !strings.HasPrefix(line, prefix) {
			break
		}
		hand, err := ParseHand(line[len(prefix):])
		if err != nil {
			return nil, err
		}
		players = append(players, strconv.Itoa(len(players)))
		hands = append(hands, hand)
		idx++
	}
	g.Players = players
	g.Hands = hands
	g.BonusTiles = make([][]mahjong.TileID, len(players))
	g.Score = make(map[string]uint32, len(players))
	for _, p := range players {
		g.Score[p] = 0
	}

	if idx < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[idx]), "Wall:") {
		g.Wall = mahjong.PositionTiles(mahjong.PositionTilesOpts{Shuffle: true})
		idx++
	} else {
		g.Wall = &mahjong.DrawWall{}
	}

	if idx < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[idx]), "Board: ") {
		rest := strings.TrimPrefix(strings.TrimSpace(lines[idx]), "Board: ")
		rest = strings.ReplaceAll(rest, "...", "")
		ids, err := ParseIDs(rest)
		if err != nil {
			return nil, err
		}
		for i := len(ids) - 1; i >= 0; i-- {
			g.Board = append(g.Board, ids[i])
		}
		idx++
	}

	if idx < len(lines) {
		for _, frag := range strings.Split(strings.TrimSpace(lines[idx]), ", ") {
			switch {
			case strings.HasPrefix(frag, "Turn: P"):
				n, _ := strconv.Atoi(strings.TrimPrefix(frag, "Turn: P"))
				g.Round.CurrentPlayerIndex = n - 1
			case strings.HasPrefix(frag, "Dealer: P"):
				n, _ := strconv.Atoi(strings.TrimPrefix(frag, "Dealer: P"))
				g.Round.DealerIndex = n - 1
			case strings.HasPrefix(frag, "Round: "):
				n, _ := strconv.Atoi(strings.TrimPrefix(frag, "Round: "))
				g.Round.RoundIndex = n - 1
			case strings.HasPrefix(frag, "Wind: "):
				if w, ok := windFromGlyph[strings.TrimPrefix(frag, "Wind: ")]; ok {
					g.Round.Wind = w
				} else {
					g.Round.Wind = windByName(strings.TrimPrefix(frag, "Wind: "))
				}
			case strings.HasPrefix(frag, "Phase: "):
				g.Phase = phaseFromName[strings.TrimPrefix(frag, "Phase: ")]
			case strings.HasPrefix(frag, "Initial Winds: "):
				parts := strings.Split(strings.TrimPrefix(frag, "Initial Winds: "), ",")
				var perm [4]mahjong.WindFace
				for i, p := range parts {
					perm[i] = windByName(strings.TrimSpace(p))
				}
				code := mahjong.EncodeWindPermutation(perm)
				g.Round.InitialWinds = &code
			}
		}
		idx++
	}

	if idx < len(lines) {
		for _, frag := range strings.Split(strings.TrimSpace(lines[idx]), ", ") {
			switch {
			case strings.HasPrefix(frag, "Consecutive: "):
				n, _ := strconv.Atoi(strings.TrimPrefix(frag, "Consecutive: "))
				g.Round.ConsecutiveSameSeat = n
			case strings.HasPrefix(frag, "Drawn: "):
				id, err := TileIDFromGlyph(strings.TrimPrefix(frag, "Drawn: "))
				if err != nil {
					return nil, err
				}
				g.Round.WallTileDrawn = &id
			case strings.HasPrefix(frag, "Discarded: "):
				rest := strings.TrimPrefix(frag, "Discarded: ")
				var by *int
				tileGlyph := rest
				if i := strings.Index(rest, "("); i >= 0 {
					tileGlyph = rest[:i]
					byStr := strings.TrimSuffix(strings.TrimPrefix(rest[i+1:], "P"), ")")
					n, _ := strconv.Atoi(byStr)
					n--
					by = &n
				}
				id, err := TileIDFromGlyph(tileGlyph)
				if err != nil {
					return nil, err
				}
				g.Round.TileClaimed = &mahjong.TileClaim{From: g.Round.CurrentPlayerIndex, Tile: id, By: by}
			}
		}
	}

	return g, nil
}

func windByName(name string) mahjong.WindFace {
	switch name {
	case "East":
		return mahjong.East
	case "South":
		return mahjong.South
	case "West":
		return mahjong.West
	case "North":
		return mahjong.North
	default:
		return mahjong.East
	}
}
