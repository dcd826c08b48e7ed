package battleship

import "errors"

// Placement and attack failures. Callers match them with errors.Is;
// returned errors wrap these with the offending coordinates.
var (
	ErrInvalidLength      = errors.New("invalid length")
	ErrShapeMismatch      = errors.New("placement is not a straight line of the ship's length")
	ErrOccupied           = errors.New("cell already holds another ship")
	ErrDuplicatePlacement = errors.New("ship already placed on this board")
	ErrAlreadyHit         = errors.New("cell already attacked")
	ErrOutOfBounds        = errors.New("coordinates out of bounds")
	ErrInvalidSize        = errors.New("invalid board size")
	ErrBoardLocked        = errors.New("board is locked after the first attack")
	ErrInvalidRules       = errors.New("invalid rules")
	ErrNilShip            = errors.New("nil ship")
)
