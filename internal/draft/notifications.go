package draft

import "github.com/prxssh/thicketd/internal/inventory"

// Notification is an outbound occurrence Submit returns, for the Room
// Controller to fan out to Player Adapters. The set is closed to this
// package via the unexported isNotification marker.
type Notification interface{ isNotification() }

// CardSelected is emitted for every accepted pick, interactive or
// automatic.
type CardSelected struct {
	Chair  Chair
	PackID uint64
	Card   Card
	Auto   AutoReason
	Zone   inventory.ZoneType
}

// NewCurrentPack is emitted whenever a pack with two or more unselected
// cards becomes a chair's current pack. A pack promoted with a single
// unselected card is auto-picked (CardSelected with AutoLastCard)
// instead, and a chair left with no current pack gets no notification.
type NewCurrentPack struct {
	Chair  Chair
	PackID uint64
	Cards  []Card
}

// RoundStage is emitted at every round boundary and once more, with
// Round -1 and Complete true, when the draft finishes.
type RoundStage struct {
	Round    int
	Complete bool
}

// SelectionError is emitted when a PlayerPick is rejected.
type SelectionError struct {
	Chair  Chair
	PackID uint64
	Card   Card
	Reason string
}

// DraftAborted is emitted on a fatal engine failure (SPEC_FULL.md §7);
// the draft is no longer usable afterward.
type DraftAborted struct{ Reason string }

// GridBoard is emitted to both chairs of a Grid round whenever its
// shared public state changes: once when the round's 9 cards are
// dealt, and again after every accepted GridPick. Taken and UsedSlices
// mirror gridState's own bitfield and used-lines tracking.
type GridBoard struct {
	Cards       []Card
	Taken       [9]bool
	UsedSlices  [6]bool
	ActiveChair Chair
}

// GridSelectionError is emitted when a GridPick is rejected.
type GridSelectionError struct {
	Chair  Chair
	Slice  int
	Reason string
}

// GridPickAccepted is emitted, in addition to the per-card
// CardSelected/InventoryPlacement pair, once for the chair whose
// GridPick was accepted, acknowledging which line it claimed.
type GridPickAccepted struct {
	Chair Chair
	Slice int
}

// InventoryPlacement is emitted whenever the engine places a card into a
// chair's inventory (interactive pick, sealed dispensation, auto-pick,
// grid line win): the Player Adapter owns Inventory and applies this on
// the engine's behalf.
type InventoryPlacement struct {
	Chair Chair
	Card  Card
	Zone  inventory.ZoneType
}

// Resync is emitted on PlayerReconnect: the current pack (if any) so
// the client can rebuild its view without the engine re-deriving state.
type Resync struct {
	Chair      Chair
	PackID     uint64
	Cards      []Card
	HasCurrent bool
}

func (CardSelected) isNotification()        {}
func (NewCurrentPack) isNotification()      {}
func (RoundStage) isNotification()          {}
func (SelectionError) isNotification()      {}
func (DraftAborted) isNotification()        {}
func (InventoryPlacement) isNotification()  {}
func (Resync) isNotification()              {}
func (GridBoard) isNotification()           {}
func (GridSelectionError) isNotification()  {}
func (GridPickAccepted) isNotification()    {}
