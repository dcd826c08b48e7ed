package game

import (
	"github.com/vovakirdan/tui-battleship/internal/battleship"
	"github.com/vovakirdan/tui-battleship/internal/registry"
)

// Built-in variant IDs.
const (
	VariantClassic = "classic"
	VariantQuick   = "quick"
	VariantLocked  = "locked"
)

// QuickRules is a short game on an 8x8 board.
func QuickRules() battleship.Rules {
	return battleship.Rules{
		BoardSize: 8,
		Fleet: []battleship.ShipSpec{
			{Name: "Battleship", Length: 4},
			{Name: "Submarine", Length: 3},
			{Name: "Patrol Boat", Length: 2},
		},
	}
}

// LockedRules is the classic game where a board accepts no placement
// changes once it has been attacked.
func LockedRules() battleship.Rules {
	r := battleship.ClassicRules()
	r.LockOnAttack = true
	return r
}

func init() {
	registry.Register(VariantClassic, "Classic (10x10, 5 ships)", battleship.ClassicRules)
	registry.Register(VariantQuick, "Quick (8x8, 3 ships)", QuickRules)
	registry.Register(VariantLocked, "Classic, boards lock after first shot", LockedRules)
}
