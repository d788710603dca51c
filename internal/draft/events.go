package draft

import (
	"time"

	"github.com/prxssh/thicketd/internal/inventory"
)

// Event is an inbound occurrence the Room Controller feeds to Submit.
// Concrete types implement this via the unexported isEvent marker so the
// set is closed to this package.
type Event interface{ isEvent() }

// AdminStart begins the draft (dispenses round 0).
type AdminStart struct{}

// PlayerPick is a chair's attempt to claim a card from its current pack.
type PlayerPick struct {
	Chair      Chair
	PackID     uint64
	Card       Card
	TargetZone inventory.ZoneType
}

// GridPick is a chair's choice of grid line during a Grid round, by
// slice index 0..5 (rows 0-2, columns 3-5).
type GridPick struct {
	Chair Chair
	Slice int
}

// TimerTick advances the draft's logical clock to Now. The reducer
// expires any chair timers whose deadline has passed.
type TimerTick struct{ Now time.Time }

// PlayerDisconnect marks a chair disconnected. The seat's timer keeps
// running; on expiry the engine auto-picks as usual.
type PlayerDisconnect struct{ Chair Chair }

// PlayerReconnect marks a chair reconnected, triggering a resync
// notification of its current state.
type PlayerReconnect struct{ Chair Chair }

func (AdminStart) isEvent()       {}
func (PlayerPick) isEvent()       {}
func (GridPick) isEvent()         {}
func (TimerTick) isEvent()        {}
func (PlayerDisconnect) isEvent() {}
func (PlayerReconnect) isEvent()  {}
