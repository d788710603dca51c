// Package draft implements the Draft State Machine: the per-chair pack
// queues, selection protocol, pass direction, round transitions, and
// timer-driven auto-selection described in SPEC_FULL.md §4.5. It is a
// pure reducer per §9's design note replacing the source's
// inheritance-based observer chain — Submit consumes one Event and
// returns a batch of Notifications; the Room Controller owns the event
// queue and ticker, not this package.
package draft

import (
	"time"

	"github.com/prxssh/thicketd/internal/carddb"
)

// Card is an opaque card identifier, matching carddb.Card.
type Card = carddb.Card

// Chair is a seat index in [0, chairCount).
type Chair int

// AutoReason tags a selection the engine made on a player's behalf.
type AutoReason uint8

const (
	// NotAuto marks an ordinary interactive pick.
	NotAuto AutoReason = iota
	AutoLastCard
	AutoTimedOut
)

// Phase is the draft's overall round-phase, mirroring §3's Draft State.
type Phase uint8

const (
	PhaseDispensing Phase = iota
	PhaseSelecting
	PhasePostRound
	PhaseComplete
)

// SelectedBy marks a pack position as claimed. Once set it is never
// cleared.
type SelectedBy struct {
	Chair Chair
	Round int
	Pick  int
	Auto  AutoReason
}

// Pack is an ordered collection of cards circulated among chairs, with a
// parallel slice of selection markers (nil = unselected at that index).
type Pack struct {
	ID         uint64
	Cards      []Card
	SelectedBy []*SelectedBy
}

func newPack(id uint64, cards []Card) *Pack {
	return &Pack{ID: id, Cards: cards, SelectedBy: make([]*SelectedBy, len(cards))}
}

// UnselectedCount returns how many positions have no selection marker.
func (p *Pack) UnselectedCount() int {
	n := 0
	for _, s := range p.SelectedBy {
		if s == nil {
			n++
		}
	}
	return n
}

// SelectedCount returns how many positions have a selection marker.
func (p *Pack) SelectedCount() int { return len(p.Cards) - p.UnselectedCount() }

// UnselectedCards returns the cards at unselected positions, in pack
// order.
func (p *Pack) UnselectedCards() []Card {
	out := make([]Card, 0, p.UnselectedCount())
	for i, s := range p.SelectedBy {
		if s == nil {
			out = append(out, p.Cards[i])
		}
	}
	return out
}

// indexOfUnselected returns the first index holding card with no
// selection marker, or -1.
func (p *Pack) indexOfUnselected(card Card) int {
	for i, c := range p.Cards {
		if c == card && p.SelectedBy[i] == nil {
			return i
		}
	}
	return -1
}

// unselectedPositions returns the pack indices with no selection marker,
// in pack order — the position-space counterpart to UnselectedCards,
// used where a choice needs to map back to an exact slot rather than a
// card value (duplicate card names in a pack are otherwise ambiguous).
func (p *Pack) unselectedPositions() []int {
	out := make([]int, 0, p.UnselectedCount())
	for i, s := range p.SelectedBy {
		if s == nil {
			out = append(out, i)
		}
	}
	return out
}

// chairState is the Draft's private per-chair bookkeeping. Inventory is
// intentionally absent here: per SPEC_FULL.md §4.5's entity list and §9's
// design note, the Draft owns only pack/timer bookkeeping and emits
// InventoryPlacement notifications; the Player Adapter owns Inventory.
type chairState struct {
	queue           []*Pack
	current         *Pack
	pickIndexRound  int
	timerActive     bool
	timerGeneration int
}

// timerEntry is one item in the expiry min-heap, grounded on
// pkg/utils/heap/priority_queue.go. generation lets stale entries (from
// a cancelled or already-advanced timer) be recognized and discarded
// lazily at pop time, since the heap itself supports no direct removal.
type timerEntry struct {
	chair      Chair
	generation int
	expiry     time.Time
}
