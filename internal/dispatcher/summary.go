// Package dispatcher is the authoritative mutator of persisted games: it
// loads, locks, mutates, saves, and broadcasts each game, and runs the
// background games loop that drives AI play.
package dispatcher

import (
	"mahjong/internal/mahjong"
	"mahjong/internal/mahjong/text"
)

// HandView is the filtered view of one seat's hand a client may see: full
// detail for the requesting player, counts-only for everyone else.
type HandView struct {
	Seat          int                `json:"seat"`
	TileCount     int                `json:"tile_count"`
	Tiles         []string           `json:"tiles,omitempty"`
	VisibleTiles  []string           `json:"visible_tiles,omitempty"`
	Melds         []MeldView         `json:"melds,omitempty"`
	PossibleMelds []PossibleMeldView `json:"possible_melds,omitempty"`
}

type MeldView struct {
	SetID     string   `json:"set_id"`
	Kind      string   `json:"kind"`
	Tiles     []string `json:"tiles"`
	Concealed bool     `json:"concealed"`
}

type PossibleMeldView struct {
	Tiles       []string `json:"tiles"`
	Kind        string   `json:"kind"`
	IsMahjong   bool     `json:"is_mahjong"`
	IsConcealed bool     `json:"is_concealed"`
	IsUpgrade   bool     `json:"is_upgrade"`
}

// GameSummary is the per-player projection of the rules: board, one's own
// hand, others' hand counts, wall count, score, phase, round, winds, and
// the possible-melds list scoped to the requesting player alone.
type GameSummary struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Phase       string            `json:"phase"`
	Round       int               `json:"round"`
	Wind        string            `json:"wind"`
	DealerSeat  int               `json:"dealer_seat"`
	CurrentSeat int               `json:"current_seat"`
	Board       []string          `json:"board"`
	WallCount   int               `json:"wall_count"`
	Score       map[string]uint32 `json:"score"`
	Hands       []HandView        `json:"hands"`
}

func meldKindName(k mahjong.MeldKind) string {
	switch k {
	case mahjong.MeldPung:
		return "pung"
	case mahjong.MeldChow:
		return "chow"
	case mahjong.MeldKong:
		return "kong"
	default:
		return "unknown"
	}
}

func glyphsOf(ids []mahjong.TileID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = text.TileGlyph(mahjong.TileByID(id))
	}
	return out
}

// BuildSummary projects g for viewerSeat; pass -1 for an admin/spectator
// view that reveals no concealed hand detail.
func BuildSummary(g *mahjong.Game, viewerSeat int) GameSummary {
	s := GameSummary{
		ID:        g.ID,
		Name:      g.Name,
		Version:   g.Version(),
		Phase:     phaseLabel(g.Phase),
		Board:     glyphsOf(g.Board),
		Score:     g.Score,
		WallCount: 0,
	}
	if g.Wall != nil {
		s.WallCount = g.Wall.TotalRemaining()
	}
	if g.Round != nil {
		s.Round = g.Round.RoundIndex
		s.Wind = g.Round.Wind.String()
		s.DealerSeat = g.Round.DealerIndex
		s.CurrentSeat = g.Round.CurrentPlayerIndex
	}

	s.Hands = make([]HandView, len(g.Hands))
	for seat, hand := range g.Hands {
		if hand == nil {
			continue
		}
		view := HandView{Seat: seat, TileCount: hand.LiveCount()}
		if seat == viewerSeat {
			view.Tiles = glyphsOf(tileIDsOf(hand))
			view.PossibleMelds = possibleMeldViews(g, seat)
			view.Melds = meldViews(hand)
		} else {
			view.VisibleTiles = visibleOnly(hand)
			for _, m := range meldViews(hand) {
				if !m.Concealed {
					view.Melds = append(view.Melds, m)
				}
			}
		}
		s.Hands[seat] = view
	}
	return s
}

func tileIDsOf(h *mahjong.Hand) []mahjong.TileID {
	ids := make([]mahjong.TileID, len(h.Tiles))
	for i, t := range h.Tiles {
		ids[i] = t.ID
	}
	return ids
}

func visibleOnly(h *mahjong.Hand) []string {
	var out []string
	for _, t := range h.Tiles {
		if t.SetID != "" && !t.Concealed {
			out = append(out, text.TileGlyph(mahjong.TileByID(t.ID)))
		}
	}
	return out
}

func meldViews(h *mahjong.Hand) []MeldView {
	seen := map[string]bool{}
	var out []MeldView
	for _, t := range h.Tiles {
		if t.SetID == "" || seen[t.SetID] {
			continue
		}
		seen[t.SetID] = true
		tiles := h.SetTiles(t.SetID)
		ids := make([]mahjong.TileID, len(tiles))
		concealed := true
		for i, ht := range tiles {
			ids[i] = ht.ID
			if !ht.Concealed {
				concealed = false
			}
		}
		kind := "pung"
		if len(tiles) == 3 {
			_, isChow := chowOrPung(tiles)
			if isChow {
				kind = "chow"
			}
		}
		if _, ok := h.KongFor(t.SetID); ok {
			kind = "kong"
		}
		out = append(out, MeldView{SetID: t.SetID, Kind: kind, Tiles: glyphsOf(ids), Concealed: concealed})
	}
	return out
}

func chowOrPung(tiles []mahjong.HandTile) (string, bool) {
	if len(tiles) != 3 {
		return "pung", false
	}
	faces := make(map[int]bool)
	for _, t := range tiles {
		tile := mahjong.TileByID(t.ID)
		if tile.Kind != mahjong.KindSuit {
			return "pung", false
		}
		faces[tile.Value] = true
	}
	return "chow", len(faces) == 3
}

func possibleMeldViews(g *mahjong.Game, seat int) []PossibleMeldView {
	hand := g.Hands[seat]
	if hand == nil {
		return nil
	}
	var claimedTile *mahjong.TileID
	playerDiff := 0
	if g.Round != nil && g.Round.TileClaimed != nil && g.Round.TileClaimed.By == nil {
		t := g.Round.TileClaimed.Tile
		claimedTile = &t
		playerDiff = ((seat - g.Round.TileClaimed.From) % 4 + 4) % 4
	}
	candidates := append(mahjong.GetPossibleMelds(hand, playerDiff, claimedTile, true),
		mahjong.GetPossibleMelds(hand, playerDiff, claimedTile, false)...)
	out := make([]PossibleMeldView, len(candidates))
	for i, c := range candidates {
		out[i] = PossibleMeldView{
			Tiles:       glyphsOf(c.TileIDs),
			Kind:        meldKindName(c.Kind),
			IsMahjong:   c.IsMahjong,
			IsConcealed: c.IsConcealed,
			IsUpgrade:   c.IsUpgrade,
		}
	}
	return out
}

func phaseLabel(p mahjong.Phase) string {
	switch p {
	case mahjong.PhaseBeginning:
		return "beginning"
	case mahjong.PhaseWaitingPlayers:
		return "waiting_players"
	case mahjong.PhaseDecidingDealer:
		return "deciding_dealer"
	case mahjong.PhaseInitialShuffle:
		return "initial_shuffle"
	case mahjong.PhaseInitialDraw:
		return "initial_draw"
	case mahjong.PhasePlaying:
		return "playing"
	case mahjong.PhaseEnd:
		return "end"
	default:
		return "unknown"
	}
}
