package mahjong

import (
	"fmt"
	"math/rand"
	"strconv"
	"sync/atomic"
)

// Phase is one state of the game lifecycle described in the rules.
type Phase int

const (
	PhaseBeginning Phase = iota
	PhaseWaitingPlayers
	PhaseDecidingDealer
	PhaseInitialShuffle
	PhaseInitialDraw
	PhasePlaying
	PhaseEnd
)

func (p Phase) String() string {
	switch p {
	case PhaseBeginning:
		return "Beginning"
	case PhaseWaitingPlayers:
		return "WaitingPlayers"
	case PhaseDecidingDealer:
		return "DecidingDealer"
	case PhaseInitialShuffle:
		return "InitialShuffle"
	case PhaseInitialDraw:
		return "InitialDraw"
	case PhasePlaying:
		return "Playing"
	case PhaseEnd:
		return "End"
	default:
		return "Unknown"
	}
}

// StyleHongKong is the only style this engine implements; the field stays on Game for the summary text
// format, which names it explicitly.
const StyleHongKong = "HongKong"

// Game is the whole authoritative state for one table, per the rules.
// Mutation happens only through its methods, each called by the dispatcher
// under that game's mutex; Game never reaches across games.
type Game struct {
	ID      string
	Name    string
	version uint64
	Phase   Phase
	Players []string // ordered seats, 0..3 once complete

	Round *Round

	Score      map[string]uint32
	Board      []TileID
	Wall       *DrawWall
	Hands      []*Hand   // indexed by seat
	BonusTiles [][]TileID // indexed by seat
	Style      string

	withDeadWall bool
	rng          *rand.Rand
	setIDSeq     uint64
}

// NewGame creates a Game in phase Beginning, per the Lifecycle.
func NewGame(id, name string) *Game {
	return &Game{
		ID:    id,
		Name:  name,
		Phase: PhaseBeginning,
		Round: &Round{},
		Style: StyleHongKong,
		rng:   rand.New(rand.NewSource(rand.Int63())),
	}
}

// Version is the opaque token bumped on every successful mutation. Clients
// compare it for equality only, never order.
func (g *Game) Version() string { return strconv.FormatUint(g.version, 10) }

func (g *Game) bump() { atomic.AddUint64(&g.version, 1) }

// SeatOf returns the seat index of playerID, or -1.
func (g *Game) SeatOf(playerID string) int {
	for i, p := range g.Players {
		if p == playerID {
			return i
		}
	}
	return -1
}

func (g *Game) nextSetID() string {
	g.setIDSeq++
	return fmt.Sprintf("%s-%d", g.ID, g.setIDSeq)
}

// AddPlayer seats a player while the game accepts joins (Beginning or
// WaitingPlayers).
func (g *Game) AddPlayer(playerID string) error {
	if g.Phase != PhaseBeginning && g.Phase != PhaseWaitingPlayers {
		return ErrWrongPhase
	}
	if len(g.Players) >= 4 {
		return ErrGameFull
	}
	g.Players = append(g.Players, playerID)
	return nil
}

// Start moves Beginning -> WaitingPlayers, optionally shuffling seating.
func (g *Game) Start(shuffle bool) error {
	if g.Phase != PhaseBeginning {
		return ErrWrongPhase
	}
	if shuffle {
		g.shufflePlayers()
	}
	g.Phase = PhaseWaitingPlayers
	g.bump()
	return nil
}

func (g *Game) shufflePlayers() {
	g.rng.Shuffle(len(g.Players), func(i, j int) {
		g.Players[i], g.Players[j] = g.Players[j], g.Players[i]
	})
}

// CompletePlayers finalizes the roster once all four seats are filled.
func (g *Game) CompletePlayers(shuffle bool) error {
	if g.Phase != PhaseWaitingPlayers {
		return ErrWrongPhase
	}
	if len(g.Players) != 4 {
		return ErrWrongPhase
	}
	if shuffle {
		g.shufflePlayers()
	}
	g.Hands = make([]*Hand, 4)
	g.BonusTiles = make([][]TileID, 4)
	g.Score = make(map[string]uint32, 4)
	for i := range g.Hands {
		g.Hands[i] = &Hand{}
	}
	for _, p := range g.Players {
		g.Score[p] = 0
	}
	g.Phase = PhaseDecidingDealer
	g.bump()
	return nil
}

// DecideDealer assigns seat winds via a random Lehmer-coded permutation,
// reorders Players so index 0 holds East, and resets round indices.
func (g *Game) DecideDealer() error {
	if g.Phase != PhaseDecidingDealer {
		return ErrWrongPhase
	}
	perm := [4]WindFace{East, South, West, North}
	g.rng.Shuffle(4, func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })

	seen := map[WindFace]bool{}
	for _, w := range perm {
		if seen[w] {
			return ErrDuplicatedWinds
		}
		seen[w] = true
	}

	seatOf := make([]string, 4)
	for playerIdx, w := range perm {
		seatOf[int(w)] = g.Players[playerIdx]
	}
	g.Players = seatOf

	code := EncodeWindPermutation(perm)
	g.Round = &Round{InitialWinds: &code}
	g.Phase = PhaseInitialShuffle
	g.bump()
	return nil
}

// PrepareTable builds a fresh shuffled wall, optionally with a dead wall.
func (g *Game) PrepareTable(withDeadWall bool) error {
	if g.Phase != PhaseInitialShuffle {
		return ErrWrongPhase
	}
	g.Wall = PositionTiles(PositionTilesOpts{Shuffle: true, DeadWall: withDeadWall, Rand: g.rng})
	g.Board = nil
	for i := range g.Hands {
		g.Hands[i] = &Hand{}
	}
	for i := range g.BonusTiles {
		g.BonusTiles[i] = nil
	}
	g.withDeadWall = withDeadWall
	g.Phase = PhaseInitialDraw
	g.bump()
	return nil
}

// InitialDraw deals 13 live tiles to every seat, setting aside bonus tiles
// as they come up.
func (g *Game) InitialDraw() error {
	if g.Phase != PhaseInitialDraw {
		return ErrWrongPhase
	}
	for seat := 0; seat < 4; seat++ {
		hand := g.Hands[seat]
		seatWind := g.Round.SeatWind(seat)
		for hand.LiveCount() < PreClaimHandSize {
			id, ok := g.Wall.Draw(seatWind)
			if !ok {
				return ErrNotEnoughTiles
			}
			tile := TileByID(id)
			if tile.IsBonus() {
				g.BonusTiles[seat] = append(g.BonusTiles[seat], id)
				continue
			}
			hand.AppendTile(id)
		}
	}
	g.Phase = PhasePlaying
	g.bump()
	return nil
}

// DrawOutcomeKind discriminates the result of DrawTileFromWall.
type DrawOutcomeKind int

const (
	DrawNormal DrawOutcomeKind = iota
	DrawBonus
	DrawWallExhausted
	DrawAlreadyDrawn
)

// DrawOutcome is the typed result of DrawTileFromWall.
type DrawOutcome struct {
	Kind DrawOutcomeKind
	Tile TileID
}

// DrawTileFromWall draws one tile for the current player. A bonus tile is
// set aside and does not consume the turn's draw slot; the caller must
// call again for a live tile.
func (g *Game) DrawTileFromWall() (DrawOutcome, error) {
	if g.Phase != PhasePlaying {
		return DrawOutcome{}, ErrWrongPhase
	}
	if g.Round.WallTileDrawn != nil {
		return DrawOutcome{Kind: DrawAlreadyDrawn}, nil
	}
	seat := g.Round.CurrentPlayerIndex
	seatWind := g.Round.SeatWind(seat)
	id, ok := g.Wall.Draw(seatWind)
	if !ok {
		return DrawOutcome{Kind: DrawWallExhausted}, nil
	}
	g.bump()
	tile := TileByID(id)
	if tile.IsBonus() {
		g.BonusTiles[seat] = append(g.BonusTiles[seat], id)
		return DrawOutcome{Kind: DrawBonus, Tile: id}, nil
	}
	g.Hands[seat].AppendTile(id)
	g.Round.WallTileDrawn = &id
	return DrawOutcome{Kind: DrawNormal, Tile: id}, nil
}

func (g *Game) playerWith14() int {
	for seat, h := range g.Hands {
		if h.LiveCount() == 14 {
			return seat
		}
	}
	return -1
}

// DiscardTileToBoard discards tileID from whichever seat currently holds
// 14 live tiles.
func (g *Game) DiscardTileToBoard(tileID TileID) error {
	if g.Phase != PhasePlaying {
		return ErrWrongPhase
	}
	seat := g.playerWith14()
	if seat < 0 {
		return ErrNoPlayerCanDiscard
	}
	hand := g.Hands[seat]
	idx := hand.IndexOfTile(tileID)
	if idx < 0 {
		return ErrPlayerHasNoTile
	}
	ht := hand.Tiles[idx]
	if ht.SetID != "" {
		if !ht.Concealed {
			return ErrTileIsExposed
		}
		return ErrTileIsPartOfMeld
	}
	if rc := g.Round.TileClaimed; rc != nil && rc.By != nil && *rc.By == seat && rc.Tile == tileID {
		return ErrClaimedAnotherTile
	}

	hand.RemoveTile(tileID)
	g.Board = append(g.Board, tileID)
	g.Round.TileClaimed = &TileClaim{From: seat, Tile: tileID}
	g.bump()
	return nil
}

// ClaimTile lets player appropriate the board's tail tile to complete a
// meld.
func (g *Game) ClaimTile(player int) error {
	if g.Phase != PhasePlaying {
		return ErrWrongPhase
	}
	if player < 0 || player > 3 {
		return ErrUnknownPlayer
	}
	if g.Hands[player].LiveCount() != PreClaimHandSize {
		return ErrWrongHandSize
	}
	if len(g.Board) == 0 {
		return ErrNothingClaimed
	}
	rc := g.Round.TileClaimed
	if rc == nil || rc.By != nil {
		return ErrNothingClaimed
	}
	if rc.From == player {
		return ErrClaimantIsDiscarder
	}

	g.Board = g.Board[:len(g.Board)-1]
	g.Hands[player].Tiles = append(g.Hands[player].Tiles, HandTile{ID: rc.Tile, Concealed: true})
	by := player
	rc.By = &by
	g.Round.CurrentPlayerIndex = player
	g.bump()
	return nil
}

// CreateMeld tags tileIDs in player's hand with a fresh set_id, forming a
// pung, chow, or kong; isUpgrade promotes an existing exposed pung to a
// kong using one additional tile. A created kong draws a supplemental tile
// from the dead wall; if the dead wall is spent, the kong stays in place and
// CreateMeld returns ErrEndRound without changing the phase.
func (g *Game) CreateMeld(player int, tileIDs []TileID, isUpgrade bool, isConcealed bool) (string, error) {
	if g.Phase != PhasePlaying {
		return "", ErrWrongPhase
	}
	hand := g.Hands[player]

	if isUpgrade {
		return g.upgradeMeld(hand, tileIDs, player)
	}

	for _, id := range tileIDs {
		idx := hand.IndexOfTile(id)
		if idx < 0 {
			return "", ErrMissingHand
		}
		if hand.Tiles[idx].SetID != "" {
			return "", ErrTileIsPartOfMeld
		}
	}

	tiles := ResolveIDs(tileIDs)
	var kind MeldKind
	switch {
	case IsPung(tiles):
		kind = MeldPung
	case IsChow(tiles, nil, 0):
		kind = MeldChow
	case IsKong(tiles):
		kind = MeldKong
	default:
		return "", ErrNotMeld
	}

	setID := g.nextSetID()
	if kind == MeldKong {
		for _, id := range tileIDs[:3] {
			g.tagTile(hand, id, setID, isConcealed)
		}
		hand.RemoveTile(tileIDs[3])
		hand.Kongs = append(hand.Kongs, KongTile{ID: tileIDs[3], SetID: setID})
		if err := g.drawSupplemental(hand); err != nil {
			g.bump()
			return setID, err
		}
	} else {
		for _, id := range tileIDs {
			g.tagTile(hand, id, setID, isConcealed)
		}
	}
	g.bump()
	return setID, nil
}

func (g *Game) tagTile(hand *Hand, id TileID, setID string, concealed bool) {
	idx := hand.IndexOfTile(id)
	hand.Tiles[idx].SetID = setID
	hand.Tiles[idx].Concealed = concealed
}

func (g *Game) upgradeMeld(hand *Hand, tileIDs []TileID, player int) (string, error) {
	if len(tileIDs) != 4 {
		return "", ErrNotMeld
	}
	tiles := ResolveIDs(tileIDs)
	if !IsKong(tiles) {
		return "", ErrNotMeld
	}

	var existingSetID string
	var newTileID TileID
	foundExisting := 0
	for _, id := range tileIDs {
		idx := hand.IndexOfTile(id)
		if idx < 0 {
			return "", ErrMissingHand
		}
		if hand.Tiles[idx].SetID != "" {
			existingSetID = hand.Tiles[idx].SetID
			foundExisting++
		} else {
			newTileID = id
		}
	}
	if foundExisting != 3 || existingSetID == "" {
		return "", ErrNotMeld
	}
	if _, isKong := hand.KongFor(existingSetID); isKong {
		return "", ErrTileIsPartOfMeld
	}

	hand.RemoveTile(newTileID)
	hand.Kongs = append(hand.Kongs, KongTile{ID: newTileID, SetID: existingSetID})
	if err := g.drawSupplemental(hand); err != nil {
		g.bump()
		return existingSetID, err
	}
	g.bump()
	return existingSetID, nil
}

func (g *Game) drawSupplemental(hand *Hand) error {
	id, ok := g.Wall.DrawFromDeadWall()
	if !ok {
		return ErrEndRound
	}
	tile := TileByID(id)
	if tile.IsBonus() {
		seat := g.handSeat(hand)
		g.BonusTiles[seat] = append(g.BonusTiles[seat], id)
		return g.drawSupplemental(hand)
	}
	hand.AppendTile(id)
	return nil
}

func (g *Game) handSeat(hand *Hand) int {
	for i, h := range g.Hands {
		if h == hand {
			return i
		}
	}
	return -1
}

// BreakMeld reverts a fully concealed, non-kong meld back to free tiles.
func (g *Game) BreakMeld(player int, setID string) error {
	if g.Phase != PhasePlaying {
		return ErrWrongPhase
	}
	hand := g.Hands[player]
	members := hand.SetTiles(setID)
	if len(members) == 0 {
		return ErrMissingHand
	}
	if _, isKong := hand.KongFor(setID); isKong {
		return ErrMeldIsKong
	}
	for _, t := range members {
		if !t.Concealed {
			return ErrTileIsExposed
		}
	}
	for i := range hand.Tiles {
		if hand.Tiles[i].SetID == setID {
			hand.Tiles[i].SetID = ""
		}
	}
	g.bump()
	return nil
}

// MahjongResult carries the scoring produced by SayMahjong.
type MahjongResult struct {
	Rules     []ScoringRule
	Points    int
	GameEnded bool
}

// SayMahjong declares victory for player, scores the hand, and advances
// the round (or ends the game).
func (g *Game) SayMahjong(player int) (MahjongResult, error) {
	if g.Phase != PhasePlaying {
		return MahjongResult{}, ErrWrongPhase
	}
	hand := g.Hands[player]
	if hand.LiveCount() != 14 {
		return MahjongResult{}, ErrCantDrop
	}
	free := hand.FreeTileIDs()
	if len(free) != 2 || !IsPair(ResolveIDs(free)) {
		return MahjongResult{}, ErrNotPair
	}

	selfDraw := g.Round.WallTileDrawn != nil
	lastWallTile := g.Wall.TotalRemaining() == 0
	rules, total := CalculateHandScore(hand, ScoreContext{
		BonusTiles:   g.BonusTiles[player],
		SeatWind:     g.Round.SeatWind(player),
		LastWallTile: lastWallTile,
		SelfDraw:     selfDraw,
	})

	playerID := g.Players[player]
	g.Score[playerID] += uint32(total)

	ended := g.Round.Advance(RoundOutcome{WinnerIndex: player, HasWinner: true})
	if ended {
		g.Phase = PhaseEnd
	} else {
		g.Phase = PhaseInitialShuffle
	}
	g.bump()
	return MahjongResult{Rules: rules, Points: total, GameEnded: ended}, nil
}

// PassNullRound ends the round with no winner once the draw wall is
// exhausted. It checks only that the wall is empty; it does not check
// whether a hand could still meld a claimed tile or declare mahjong.
func (g *Game) PassNullRound() error {
	if g.Phase != PhasePlaying {
		return ErrWrongPhase
	}
	if g.Wall.TotalRemaining() != 0 {
		return ErrWrongPhase
	}
	ended := g.Round.Advance(RoundOutcome{HasWinner: false})
	if ended {
		g.Phase = PhaseEnd
	} else {
		g.Phase = PhaseInitialShuffle
	}
	g.bump()
	return nil
}

// NextTurn advances the round to the next player once every hand sits at
// 13 live tiles and a wall tile has been drawn this turn.
func (g *Game) NextTurn() error {
	if g.Phase != PhasePlaying {
		return ErrWrongPhase
	}
	if err := g.Round.NextTurn(g.Hands); err != nil {
		return err
	}
	g.bump()
	return nil
}

// DebugSwapWallTiles exchanges the position of two wall tile ids without
// touching any hand; an admin-only fixture hook, not a player-facing operation.
func (g *Game) DebugSwapWallTiles(a, b TileID) error {
	found := 0
	locate := func(seg []TileID, id TileID) int {
		for i, v := range seg {
			if v == id {
				return i
			}
		}
		return -1
	}
	var posA, posB struct {
		seg *[]TileID
		idx int
	}
	for i := range g.Wall.Segments {
		if idx := locate(g.Wall.Segments[i], a); idx >= 0 {
			posA = struct {
				seg *[]TileID
				idx int
			}{&g.Wall.Segments[i], idx}
			found++
		}
		if idx := locate(g.Wall.Segments[i], b); idx >= 0 {
			posB = struct {
				seg *[]TileID
				idx int
			}{&g.Wall.Segments[i], idx}
			found++
		}
	}
	if idx := locate(g.Wall.DeadWall, a); idx >= 0 {
		posA = struct {
			seg *[]TileID
			idx int
		}{&g.Wall.DeadWall, idx}
		found++
	}
	if idx := locate(g.Wall.DeadWall, b); idx >= 0 {
		posB = struct {
			seg *[]TileID
			idx int
		}{&g.Wall.DeadWall, idx}
		found++
	}
	if found != 2 {
		return ErrPlayerHasNoTile
	}
	(*posA.seg)[posA.idx], (*posB.seg)[posB.idx] = (*posB.seg)[posB.idx], (*posA.seg)[posA.idx]
	g.bump()
	return nil
}
