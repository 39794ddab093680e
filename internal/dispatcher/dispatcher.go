package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"mahjong/internal/ai"
	"mahjong/internal/bus"
	"mahjong/internal/logx"
	"mahjong/internal/mahjong"
	"mahjong/internal/store"
	"mahjong/internal/transport"
)

// sortHandTiles reorders a hand's live tiles by the canonical display
// order, leaving kong fourth tiles (tracked separately) untouched.
func sortHandTiles(h *mahjong.Hand) {
	sort.SliceStable(h.Tiles, func(i, j int) bool {
		return mahjong.Less(mahjong.TileByID(h.Tiles[i].ID), mahjong.TileByID(h.Tiles[j].ID))
	})
}

var ErrVersionMismatch = errors.New("dispatcher: version mismatch")

// Dispatcher is the single mutator of persisted games. Every
// operation runs under the game's own mutex, drawn from a lazily-populated
// lookup table, so distinct games never block each other.
type Dispatcher struct {
	store store.Store
	bus   *bus.Bus
	hub   *transport.Hub

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func New(st store.Store, b *bus.Bus, hub *transport.Hub) *Dispatcher {
	return &Dispatcher{store: st, bus: b, hub: hub, locks: make(map[string]*sync.Mutex)}
}

func (d *Dispatcher) lockFor(gameID string) *sync.Mutex {
	d.locksMu.Lock()
	defer d.locksMu.Unlock()
	m, ok := d.locks[gameID]
	if !ok {
		m = &sync.Mutex{}
		d.locks[gameID] = m
	}
	return m
}

// withGame locks, loads, checks the version, runs fn, and — if fn returns
// nil — saves. fn returning an error aborts the save. It does not
// broadcast; callers call afterSave once the lock is released.
func (d *Dispatcher) withGame(ctx context.Context, gameID string, expectedVersion string, fn func(sg *store.ServiceGame) error) (*store.ServiceGame, error) {
	mu := d.lockFor(gameID)
	mu.Lock()
	defer mu.Unlock()

	sg, err := d.store.GetGame(ctx, gameID, true)
	if err != nil {
		return nil, err
	}
	if expectedVersion != "" && sg.Game.Version() != expectedVersion {
		return nil, ErrVersionMismatch
	}

	if err := fn(sg); err != nil {
		return nil, err
	}

	if err := d.store.SaveGame(ctx, sg); err != nil {
		return nil, err
	}
	return sg, nil
}

// afterSave broadcasts the new summary to each player's room and the
// whole-game admin room, after the mutex guarding sg has been released.
func (d *Dispatcher) afterSave(sg *store.ServiceGame) {
	if d.bus != nil {
		_ = d.bus.Publish(bus.Update{GameID: sg.ID, Kind: bus.KindGameUpdate, Version: sg.Game.Version()})
	}
	if d.hub == nil {
		return
	}
	for seat, playerID := range sg.Players {
		room := transport.PlayerRoomName(sg.ID, playerID)
		if msg, err := transport.EncodeGameSummary(room, BuildSummary(sg.Game, seat)); err == nil {
			d.hub.Broadcast(room, msg)
		}
	}
	room := transport.RoomName(sg.ID)
	if msg, err := transport.EncodeGameSummary(room, BuildSummary(sg.Game, -1)); err == nil {
		d.hub.Broadcast(room, msg)
	}
}

// CreateGame starts a brand-new ServiceGame record, unstarted, owned by no players yet.
func (d *Dispatcher) CreateGame(ctx context.Context, id, name string, aiCfg ai.Config) (*store.ServiceGame, error) {
	g := mahjong.NewGame(id, name)
	sg := &store.ServiceGame{ID: id, Name: name, Game: g, AI: aiCfg}
	if err := d.store.SaveGame(ctx, sg); err != nil {
		return nil, err
	}
	return sg, nil
}

func (d *Dispatcher) GetGame(ctx context.Context, gameID string) (*store.ServiceGame, error) {
	return d.store.GetGame(ctx, gameID, true)
}

// JoinGame seats playerID, starting the game once the table is full.
func (d *Dispatcher) JoinGame(ctx context.Context, gameID, playerID string) (*store.ServiceGame, error) {
	sg, err := d.withGame(ctx, gameID, "", func(sg *store.ServiceGame) error {
		if err := sg.Game.AddPlayer(playerID); err != nil {
			return err
		}
		sg.Players = append(sg.Players, playerID)
		if len(sg.Players) == 4 {
			return sg.Game.Start(true)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	d.afterSave(sg)
	return sg, nil
}

func (d *Dispatcher) seatOf(sg *store.ServiceGame, playerID string) (int, error) {
	seat := sg.Game.SeatOf(playerID)
	if seat < 0 {
		return -1, fmt.Errorf("dispatcher: player %s is not seated in game %s", playerID, sg.ID)
	}
	return seat, nil
}

func (d *Dispatcher) mutate(ctx context.Context, gameID, expectedVersion string, op func(sg *store.ServiceGame, seat int) error, playerID string) (*store.ServiceGame, error) {
	sg, err := d.withGame(ctx, gameID, expectedVersion, func(sg *store.ServiceGame) error {
		seat, err := d.seatOf(sg, playerID)
		if err != nil {
			return err
		}
		return op(sg, seat)
	})
	if err != nil {
		return nil, err
	}
	d.afterSave(sg)
	return sg, nil
}

func (d *Dispatcher) DrawTile(ctx context.Context, gameID, playerID, version string) (*store.ServiceGame, error) {
	return d.mutate(ctx, gameID, version, func(sg *store.ServiceGame, seat int) error {
		_, err := sg.Game.DrawTileFromWall()
		return err
	}, playerID)
}

func (d *Dispatcher) DiscardTile(ctx context.Context, gameID, playerID, version string, tileID mahjong.TileID) (*store.ServiceGame, error) {
	return d.mutate(ctx, gameID, version, func(sg *store.ServiceGame, seat int) error {
		return sg.Game.DiscardTileToBoard(tileID)
	}, playerID)
}

func (d *Dispatcher) ClaimTile(ctx context.Context, gameID, playerID, version string) (*store.ServiceGame, error) {
	return d.mutate(ctx, gameID, version, func(sg *store.ServiceGame, seat int) error {
		return sg.Game.ClaimTile(seat)
	}, playerID)
}

func (d *Dispatcher) CreateMeld(ctx context.Context, gameID, playerID, version string, tileIDs []mahjong.TileID, isUpgrade, isConcealed bool) (*store.ServiceGame, error) {
	return d.mutate(ctx, gameID, version, func(sg *store.ServiceGame, seat int) error {
		_, err := sg.Game.CreateMeld(seat, tileIDs, isUpgrade, isConcealed)
		return err
	}, playerID)
}

func (d *Dispatcher) BreakMeld(ctx context.Context, gameID, playerID, version, setID string) (*store.ServiceGame, error) {
	return d.mutate(ctx, gameID, version, func(sg *store.ServiceGame, seat int) error {
		return sg.Game.BreakMeld(seat, setID)
	}, playerID)
}

// SortHand reorders the player's free tiles by the game's canonical
// display order, a client convenience with no rule
// consequence.
func (d *Dispatcher) SortHand(ctx context.Context, gameID, playerID, version string) (*store.ServiceGame, error) {
	return d.mutate(ctx, gameID, version, func(sg *store.ServiceGame, seat int) error {
		hand := sg.Game.Hands[seat]
		if hand == nil {
			return fmt.Errorf("dispatcher: seat %d has no hand", seat)
		}
		sortHandTiles(hand)
		return nil
	}, playerID)
}

func (d *Dispatcher) PassRound(ctx context.Context, gameID, playerID, version string) (*store.ServiceGame, error) {
	return d.mutate(ctx, gameID, version, func(sg *store.ServiceGame, seat int) error {
		return sg.Game.PassNullRound()
	}, playerID)
}

func (d *Dispatcher) SayMahjong(ctx context.Context, gameID, playerID, version string) (*store.ServiceGame, mahjong.MahjongResult, error) {
	var result mahjong.MahjongResult
	sg, err := d.mutate(ctx, gameID, version, func(sg *store.ServiceGame, seat int) error {
		r, err := sg.Game.SayMahjong(seat)
		result = r
		return err
	}, playerID)
	return sg, result, err
}

// AIContinue steps the AI actor once on behalf of the caller's game,
// usable by a human player to nudge a stalled AI-only table.
func (d *Dispatcher) AIContinue(ctx context.Context, gameID string) (*store.ServiceGame, ai.Result, error) {
	var result ai.Result
	sg, err := d.withGame(ctx, gameID, "", func(sg *store.ServiceGame) error {
		r, err := ai.PlayAction(sg.Game, sg.AI, rand.New(rand.NewSource(time.Now().UnixNano())))
		result = r
		return err
	})
	if err != nil {
		return nil, result, err
	}
	d.afterSave(sg)
	return sg, result, nil
}

// UpdateSettings replaces a game's AI configuration, e.g. toggling CanPassTurn.
// ai.Config has no discard-pacing setting; AI turns are not paced.
func (d *Dispatcher) UpdateSettings(ctx context.Context, gameID string, cfg ai.Config) (*store.ServiceGame, error) {
	mu := d.lockFor(gameID)
	mu.Lock()
	sg, err := d.store.GetGame(ctx, gameID, true)
	if err != nil {
		mu.Unlock()
		return nil, err
	}
	sg.AI = cfg
	err = d.store.SaveGame(ctx, sg)
	mu.Unlock()
	if err != nil {
		return nil, err
	}
	return sg, nil
}

// DrawWallSwapTiles is an admin-only debug operation, swapping two tiles
// still in the draw wall.
func (d *Dispatcher) DrawWallSwapTiles(ctx context.Context, gameID string, a, b mahjong.TileID) (*store.ServiceGame, error) {
	sg, err := d.withGame(ctx, gameID, "", func(sg *store.ServiceGame) error {
		return sg.Game.DebugSwapWallTiles(a, b)
	})
	if err != nil {
		return nil, err
	}
	d.afterSave(sg)
	return sg, nil
}

func (d *Dispatcher) GetPlayerGames(ctx context.Context, playerID string) ([]*store.ServiceGame, error) {
	return d.store.GetPlayerGames(ctx, playerID)
}

// GamesLoop ticks every second, stepping the AI actor once for every game
// with at least one connected session.
func (d *Dispatcher) GamesLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.tickAll(ctx)
		}
	}
}

func (d *Dispatcher) tickAll(ctx context.Context) {
	if d.hub == nil {
		return
	}
	for _, gameID := range activeGameIDs(d.hub.RoomNames()) {
		if _, _, err := d.AIContinue(ctx, gameID); err != nil {
			logx.Debug("dispatcher: games loop step failed", "game_id", gameID, "err", err)
		}
	}
}

// activeGameIDs extracts the distinct game id from each room name; a
// per-player room "{id}__{playerID}" and the admin room "{id}" both name
// the same game.
func activeGameIDs(rooms []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, room := range rooms {
		id := room
		for i := 0; i+1 < len(room); i++ {
			if room[i] == '_' && room[i+1] == '_' {
				id = room[:i]
				break
			}
		}
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
