package core

// Action represents a semantic game action, abstracted from physical key presses.
type Action int

const (
	ActionNone     Action = iota
	ActionUp              // W, K, Up arrow
	ActionDown            // S, J, Down arrow
	ActionLeft            // A, H, Left arrow
	ActionRight           // D, L, Right arrow
	ActionRotate          // R - turn the ship being placed
	ActionConfirm         // Enter, Space - place a ship or fire
	ActionNextShip        // Tab - select the next ship in the fleet
	ActionWithdraw        // X, Backspace - pick a placed ship back up
	ActionAuto            // F - deploy the remaining fleet at random
	ActionReady           // G - confirm the fleet and start the battle
	ActionRematch         // N - another round after game over
	ActionHelp            // ? - toggle the full help
	ActionBack            // B, Escape - back to the menu
	ActionQuit            // Q, Ctrl+C - exit the session
)

var actionNames = map[Action]string{
	ActionNone:     "None",
	ActionUp:       "Up",
	ActionDown:     "Down",
	ActionLeft:     "Left",
	ActionRight:    "Right",
	ActionRotate:   "Rotate",
	ActionConfirm:  "Confirm",
	ActionNextShip: "NextShip",
	ActionWithdraw: "Withdraw",
	ActionAuto:     "Auto",
	ActionReady:    "Ready",
	ActionRematch:  "Rematch",
	ActionHelp:     "Help",
	ActionBack:     "Back",
	ActionQuit:     "Quit",
}

// String returns a human-readable name for the action.
func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return "Unknown"
}

// Delta returns the cursor movement for a direction action.
func (a Action) Delta() (dRow, dCol int) {
	switch a {
	case ActionUp:
		return -1, 0
	case ActionDown:
		return 1, 0
	case ActionLeft:
		return 0, -1
	case ActionRight:
		return 0, 1
	}
	return 0, 0
}
