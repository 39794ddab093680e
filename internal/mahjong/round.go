package mahjong

// MaxConsecutiveSameSeats is Hong Kong style's cap on the dealer repeating
// before the seat is forced to rotate.
const MaxConsecutiveSameSeats = 1

// PreClaimHandSize is the live tile count every hand sits at between turns.
const PreClaimHandSize = 13

// TileClaim records a discarded tile pending (or already resolved by) a
// claim.
type TileClaim struct {
	From int // seat index of the discarder
	Tile TileID
	By   *int // claimant seat index, nil until chosen
}

// Round is the per-round turn/dealer/wind bookkeeping described in the rules.
type Round struct {
	DealerIndex         int
	CurrentPlayerIndex  int
	EastPlayerIndex     int
	RoundIndex          int
	Wind                WindFace
	ConsecutiveSameSeat int
	WallTileDrawn       *TileID
	TileClaimed         *TileClaim
	InitialWinds        *byte // Lehmer code 0..23, set once by DecideDealer
}

// SeatWind computes the wind assigned to playerIndex relative to East for
// the current round.
func (r *Round) SeatWind(playerIndex int) WindFace {
	delta := ((playerIndex - r.EastPlayerIndex) % 4 + 4) % 4
	return WindFace(delta)
}

// EncodeWindPermutation packs a 4-wind assignment (indexed by player seat)
// into a single Lehmer-code byte in 0..23, per the compact persistence
// note.
func EncodeWindPermutation(perm [4]WindFace) byte {
	var digits [4]int
	for i := 0; i < 4; i++ {
		count := 0
		for j := i + 1; j < 4; j++ {
			if perm[j] < perm[i] {
				count++
			}
		}
		digits[i] = count
	}
	fact := [4]int{6, 2, 1, 1} // (3-i)! for i=0..3
	code := 0
	for i := 0; i < 4; i++ {
		code += digits[i] * fact[i]
	}
	return byte(code)
}

// DecodeWindPermutation inverts EncodeWindPermutation.
func DecodeWindPermutation(code byte) [4]WindFace {
	fact := [4]int{6, 2, 1, 1}
	remaining := []WindFace{East, South, West, North}
	var digits [4]int
	c := int(code)
	for i := 0; i < 4; i++ {
		digits[i] = c / fact[i]
		c %= fact[i]
	}
	var perm [4]WindFace
	for i := 0; i < 4; i++ {
		idx := digits[i]
		perm[i] = remaining[idx]
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}
	return perm
}

// NextTurn advances to the next player. It requires a wall tile to have
// been drawn this turn and every hand to sit at the pre-claim size;
// otherwise it fails without mutating the round.
func (r *Round) NextTurn(hands []*Hand) error {
	if r.WallTileDrawn == nil {
		return ErrStuckWallTileNotDrawn()
	}
	for seat, h := range hands {
		if h.LiveCount() != PreClaimHandSize {
			return ErrStuckHandNotReady(seat)
		}
	}
	r.WallTileDrawn = nil
	r.TileClaimed = nil
	r.CurrentPlayerIndex = (r.CurrentPlayerIndex + 1) % 4
	return nil
}

// RoundOutcome describes what Advance should do with the dealer/wind after
// a round ends.
type RoundOutcome struct {
	WinnerIndex int  // seat index of the winner, or -1 for a drawn round
	HasWinner   bool
}

// Advance applies the round-advancement rules after a mahjong or a
// wall-exhaustion draw. It returns true if the game has ended (round wind
// advanced past North).
func (r *Round) Advance(outcome RoundOutcome) (gameEnded bool) {
	r.RoundIndex++
	r.TileClaimed = nil
	r.WallTileDrawn = nil

	dealerWon := outcome.HasWinner && outcome.WinnerIndex == r.DealerIndex
	noWinner := !outcome.HasWinner
	if (dealerWon || noWinner) && r.ConsecutiveSameSeat < MaxConsecutiveSameSeats {
		r.ConsecutiveSameSeat++
		return false
	}

	r.ConsecutiveSameSeat = 0
	r.DealerIndex = (r.DealerIndex + 1) % 4
	r.CurrentPlayerIndex = r.DealerIndex

	if r.DealerIndex == r.EastPlayerIndex {
		if r.Wind == North {
			return true
		}
		r.Wind = r.Wind.Next()
	}
	return false
}
