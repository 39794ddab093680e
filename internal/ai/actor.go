// Package ai implements the AI decision loop that drives non-human seats
//: one legal, forward-progress action per invocation.
package ai

import (
	"math/rand"
	"sort"

	"mahjong/internal/mahjong"
)

// Config is a game's AI wiring: which seats are AI, which human players
// auto-stop an AI claim, and the per-game behavior flags the rules names.
type Config struct {
	AIPlayerIDs            map[string]bool
	ClaimAutoStopPlayerIDs map[string]bool
	CanPassTurn            bool
	CanDrawRound           bool
	DrawTileForRealPlayer  bool
	SortOnDraw             bool
	WithDeadWall           bool
}

// ExitLocation names why PlayAction returned, mirroring the invocation
// contract's exit_location values.
type ExitLocation string

const (
	ExitStartGame              ExitLocation = "StartGame"
	ExitWaitingPlayers         ExitLocation = "WaitingPlayers"
	ExitDecidedDealer          ExitLocation = "DecidedDealer"
	ExitInitialShuffle         ExitLocation = "InitialShuffle"
	ExitInitialDraw            ExitLocation = "InitialDraw"
	ExitInitialDrawError       ExitLocation = "InitialDrawError"
	ExitAlreadyEnd             ExitLocation = "AlreadyEnd"
	ExitSuccessMahjong         ExitLocation = "SuccessMahjong"
	ExitClaimedTile            ExitLocation = "ClaimedTile"
	ExitAutoStoppedDrawMahjong ExitLocation = "AutoStoppedDrawMahjong"
	ExitMeldCreated            ExitLocation = "MeldCreated"
	ExitTileDrawn              ExitLocation = "TileDrawn"
	ExitBonus                  ExitLocation = "Bonus"
	ExitTileDiscarded          ExitLocation = "TileDiscarded"
	ExitTurnPassed             ExitLocation = "TurnPassed"
	ExitRoundPassed            ExitLocation = "RoundPassed"
	ExitNoOp                   ExitLocation = "NoOp"
)

// Result is PlayAction's return per the invocation contract.
type Result struct {
	Changed        bool
	TileDiscarded  *mahjong.TileID
	ExitLocation   ExitLocation
	MahjongResult  *mahjong.MahjongResult
}

type candidate struct {
	seat      int
	meld      mahjong.MeldCandidate
	isMahjong bool
}

// PlayAction makes at most one forward-progress decision for g, following
// a fixed step order. Callers loop until Changed is false or a terminal exit.
func PlayAction(g *mahjong.Game, cfg Config, rng *rand.Rand) (Result, error) {
	switch g.Phase {
	case mahjong.PhaseBeginning:
		if err := g.Start(true); err != nil {
			return Result{}, err
		}
		return Result{Changed: true, ExitLocation: ExitStartGame}, nil
	case mahjong.PhaseWaitingPlayers:
		if len(g.Players) < 4 {
			return Result{Changed: false, ExitLocation: ExitWaitingPlayers}, nil
		}
		if err := g.CompletePlayers(true); err != nil {
			return Result{}, err
		}
		return Result{Changed: true, ExitLocation: ExitWaitingPlayers}, nil
	case mahjong.PhaseDecidingDealer:
		if err := g.DecideDealer(); err != nil {
			return Result{}, err
		}
		return Result{Changed: true, ExitLocation: ExitDecidedDealer}, nil
	case mahjong.PhaseInitialShuffle:
		if err := g.PrepareTable(cfg.WithDeadWall); err != nil {
			return Result{}, err
		}
		return Result{Changed: true, ExitLocation: ExitInitialShuffle}, nil
	case mahjong.PhaseInitialDraw:
		if err := g.InitialDraw(); err != nil {
			return Result{Changed: false, ExitLocation: ExitInitialDrawError}, err
		}
		return Result{Changed: true, ExitLocation: ExitInitialDraw}, nil
	case mahjong.PhaseEnd:
		return Result{Changed: false, ExitLocation: ExitAlreadyEnd}, nil
	}

	isAI := func(seat int) bool { return cfg.AIPlayerIDs[g.Players[seat]] }

	if res, ok, err := tryMelds(g, cfg, isAI, rng); ok {
		return res, err
	}

	currentSeat := g.Round.CurrentPlayerIndex
	acted := false
	var result Result

	if !acted && isAI(currentSeat) && g.Round.TileClaimed == nil && g.Wall.TotalRemaining() > 0 {
		acted, result = tryDraw(g, cfg, currentSeat)
	}
	if !acted && isAI(currentSeat) && g.Hands[currentSeat].LiveCount() == 14 {
		acted, result = tryDiscard(g, rng, currentSeat)
	}
	if !acted && cfg.CanPassTurn && g.Hands[currentSeat].LiveCount() == mahjong.PreClaimHandSize {
		if err := g.NextTurn(); err == nil {
			acted = true
			result = Result{Changed: true, ExitLocation: ExitTurnPassed}
		}
	}
	if !acted && !isAI(currentSeat) && cfg.DrawTileForRealPlayer {
		if g.Round.TileClaimed == nil && g.Wall.TotalRemaining() > 0 {
			acted, result = tryDraw(g, cfg, currentSeat)
		}
		if !acted && g.Hands[currentSeat].LiveCount() == 14 {
			acted, result = tryDiscard(g, rng, currentSeat)
		}
		if !acted && cfg.CanPassTurn && g.Hands[currentSeat].LiveCount() == mahjong.PreClaimHandSize {
			if err := g.NextTurn(); err == nil {
				acted = true
				result = Result{Changed: true, ExitLocation: ExitTurnPassed}
			}
		}
	}
	if !acted && g.Wall.TotalRemaining() == 0 && cfg.CanDrawRound {
		if err := g.PassNullRound(); err == nil {
			acted = true
			result = Result{Changed: true, ExitLocation: ExitRoundPassed}
		}
	}
	if !acted {
		result = Result{Changed: false, ExitLocation: ExitNoOp}
	}
	return result, nil
}

func tryDraw(g *mahjong.Game, cfg Config, seat int) (bool, Result) {
	var outcome mahjong.DrawOutcome
	for {
		var err error
		outcome, err = g.DrawTileFromWall()
		if err != nil || outcome.Kind == mahjong.DrawWallExhausted || outcome.Kind == mahjong.DrawAlreadyDrawn {
			break
		}
		if outcome.Kind == mahjong.DrawBonus {
			continue
		}
		break
	}
	if outcome.Kind != mahjong.DrawNormal {
		return false, Result{}
	}
	if cfg.SortOnDraw {
		sortHand(g.Hands[seat])
	}
	return true, Result{Changed: true, ExitLocation: ExitTileDrawn}
}

// tryDiscard picks a uniformly random unmelded tile to discard.
func tryDiscard(g *mahjong.Game, rng *rand.Rand, seat int) (bool, Result) {
	free := g.Hands[seat].FreeTileIDs()
	if len(free) == 0 {
		return false, Result{}
	}
	tile := free[rng.Intn(len(free))]
	if err := g.DiscardTileToBoard(tile); err != nil {
		return false, Result{}
	}
	return true, Result{Changed: true, ExitLocation: ExitTileDiscarded, TileDiscarded: &tile}
}

func sortHand(h *mahjong.Hand) {
	sort.SliceStable(h.Tiles, func(i, j int) bool {
		return mahjong.Less(mahjong.TileByID(h.Tiles[i].ID), mahjong.TileByID(h.Tiles[j].ID))
	})
}

// tryMelds enumerates possible melds across all
// players, shuffle then stably sort mahjong-first, and act on the first AI
// seat's candidate.
func tryMelds(g *mahjong.Game, cfg Config, isAI func(int) bool, rng *rand.Rand) (Result, bool, error) {
	var claimedTile *mahjong.TileID
	claimFrom := -1
	if rc := g.Round.TileClaimed; rc != nil && rc.By == nil {
		t := rc.Tile
		claimedTile = &t
		claimFrom = rc.From
	}

	var pool []candidate
	for seat := 0; seat < len(g.Hands); seat++ {
		if seat == claimFrom {
			continue
		}
		diff := 0
		var seatClaim *mahjong.TileID
		if claimedTile != nil {
			diff = ((seat - claimFrom) % 4 + 4) % 4
			seatClaim = claimedTile
		}
		for _, m := range mahjong.GetPossibleMelds(g.Hands[seat], diff, seatClaim, true) {
			pool = append(pool, candidate{seat: seat, meld: m, isMahjong: true})
		}
		for _, m := range mahjong.GetPossibleMelds(g.Hands[seat], diff, seatClaim, false) {
			pool = append(pool, candidate{seat: seat, meld: m})
		}
	}

	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	sort.SliceStable(pool, func(i, j int) bool { return pool[i].isMahjong && !pool[j].isMahjong })

	for _, c := range pool {
		if !isAI(c.seat) {
			continue
		}
		if c.isMahjong {
			res, err := g.SayMahjong(c.seat)
			if err != nil {
				continue
			}
			return Result{Changed: true, ExitLocation: ExitSuccessMahjong, MahjongResult: &res}, true, nil
		}

		usesClaim := claimedTile != nil && tileIn(c.meld.TileIDs, *claimedTile)
		if usesClaim {
			if blockedByAutoStop(g, cfg, c.seat, claimedTile, claimFrom) {
				return Result{Changed: false, ExitLocation: ExitAutoStoppedDrawMahjong}, true, nil
			}
			if err := g.ClaimTile(c.seat); err != nil {
				continue
			}
			return Result{Changed: true, ExitLocation: ExitClaimedTile}, true, nil
		}

		if _, err := g.CreateMeld(c.seat, c.meld.TileIDs, c.meld.IsUpgrade, true); err != nil {
			continue
		}
		return Result{Changed: true, ExitLocation: ExitMeldCreated}, true, nil
	}
	return Result{}, false, nil
}

func blockedByAutoStop(g *mahjong.Game, cfg Config, actingSeat int, claimedTile *mahjong.TileID, claimFrom int) bool {
	for seat := 0; seat < len(g.Hands); seat++ {
		if seat == actingSeat || seat == claimFrom {
			continue
		}
		if !cfg.ClaimAutoStopPlayerIDs[g.Players[seat]] {
			continue
		}
		diff := ((seat - claimFrom) % 4 + 4) % 4
		if len(mahjong.GetPossibleMelds(g.Hands[seat], diff, claimedTile, true)) > 0 {
			return true
		}
		if len(mahjong.GetPossibleMelds(g.Hands[seat], diff, claimedTile, false)) > 0 {
			return true
		}
	}
	return false
}

func tileIn(ids []mahjong.TileID, id mahjong.TileID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
