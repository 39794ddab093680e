package mahjong

// GameError is a stable, enumerated error variant. The HTTP layer answers
// it with a 400 whose message is the Code; clients localize by Code.
type GameError struct {
	Code string
	Seat int // meaningful only for errors that carry a player, e.g. StuckHandNotReady
}

func (e *GameError) Error() string {
	return e.Code
}

func newErr(code string) *GameError {
	return &GameError{Code: code}
}

// Sentinel errors named directly after the operation and wall/round error
// codes they represent.
var (
	ErrDuplicatedWinds     = newErr("DuplicatedWinds")
	ErrNotEnoughTiles      = newErr("NotEnoughTiles")
	ErrNoPlayerCanDiscard  = newErr("NoPlayerCanDiscard")
	ErrPlayerHasNoTile     = newErr("PlayerHasNoTile")
	ErrTileIsExposed       = newErr("TileIsExposed")
	ErrTileIsPartOfMeld    = newErr("TileIsPartOfMeld")
	ErrClaimedAnotherTile  = newErr("ClaimedAnotherTile")
	ErrMissingHand         = newErr("MissingHand")
	ErrMeldIsKong          = newErr("MeldIsKong")
	ErrCantDrop            = newErr("CantDrop")
	ErrNotPair             = newErr("NotPair")
	ErrNotMeld             = newErr("NotMeld")
	ErrEndRound            = newErr("EndRound")
	ErrAlreadyDrawn        = newErr("AlreadyDrawn")
	ErrWrongPhase          = newErr("WrongPhase")
	ErrUnknownPlayer       = newErr("UnknownPlayer")
	ErrGameFull            = newErr("GameFull")
	ErrNothingClaimed      = newErr("NothingClaimed")
	ErrClaimantIsDiscarder = newErr("ClaimantIsDiscarder")
	ErrWrongHandSize       = newErr("WrongHandSize")
	ErrGameVersionMismatch = newErr("GameVersionMismatch")
)

// ErrStuckWallTileNotDrawn reports that next_turn was called before a wall
// tile had been drawn this turn.
func ErrStuckWallTileNotDrawn() error { return newErr("StuckWallTileNotDrawn") }

// ErrStuckHandNotReady reports that next_turn was called while some hand
// still sits at the post-draw tile count; Seat names the offending player.
func ErrStuckHandNotReady(seat int) error {
	return &GameError{Code: "StuckHandNotReady", Seat: seat}
}
