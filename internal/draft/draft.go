package draft

import (
	"fmt"
	"time"

	"github.com/prxssh/thicketd/internal/dispenser"
	"github.com/prxssh/thicketd/internal/draftconfig"
	"github.com/prxssh/thicketd/internal/inventory"
	heaputil "github.com/prxssh/thicketd/pkg/utils/heap"
	"github.com/prxssh/thicketd/pkg/utils/bitfield"
)

// Rand is the subset of a random source the Draft needs for
// auto-selection on timeout. Tests inject a seeded source for
// deterministic fixtures; production wires math/rand/v2.
type Rand interface {
	IntN(n int) int
}

// Draft is the per-room state machine described in SPEC_FULL.md §4.5. It
// is a pure reducer: Submit is its only mutating entry point, and it
// never performs I/O, logging, or blocking of any kind.
type Draft struct {
	rounds     []draftconfig.RoundConfig
	dispensers []dispenser.Dispenser
	chairCount int
	rng        Rand

	now time.Time

	roundIndex int
	phase      Phase
	chairs     []chairState
	nextPackID uint64
	timers     *heaputil.PriorityQueue[timerEntry]

	passDirection    draftconfig.PassDirection
	selectionSeconds int

	postRoundDeadline time.Time
	postRoundPending  bool

	grid gridState

	aborted bool
}

// New builds a Draft over rounds and dispensers (already constructed
// from a validated configuration via draftconfig.BuildDispensers), with
// chairCount seats. now is the logical clock's starting value; tests
// pass a fixed value so timer deadlines are deterministic.
func New(rounds []draftconfig.RoundConfig, dispensers []dispenser.Dispenser, chairCount int, rng Rand, now time.Time) *Draft {
	return &Draft{
		rounds:     rounds,
		dispensers: dispensers,
		chairCount: chairCount,
		rng:        rng,
		now:        now,
		phase:      PhaseDispensing,
		chairs:     make([]chairState, chairCount),
		timers: heaputil.NewPriorityQueue[timerEntry](func(a, b timerEntry) bool {
			return a.expiry.Before(b.expiry)
		}),
	}
}

// Phase reports the draft's current round phase.
func (d *Draft) Phase() Phase { return d.phase }

// RoundIndex reports the round currently in progress (or just closed).
func (d *Draft) RoundIndex() int { return d.roundIndex }

// Submit consumes one Event and returns the batch of Notifications it
// produced. Every event arriving after the draft has aborted is a no-op.
// After the draft has completed, a PlayerPick or GridPick is still
// answered with a SelectionError or GridSelectionError; every other
// event is a no-op.
func (d *Draft) Submit(event Event) []Notification {
	if d.aborted {
		return nil
	}
	if d.phase == PhaseComplete {
		switch event.(type) {
		case PlayerPick, GridPick:
		default:
			return nil
		}
	}

	switch e := event.(type) {
	case AdminStart:
		return d.handleAdminStart()
	case PlayerPick:
		return d.handlePlayerPick(e)
	case GridPick:
		return d.handleGridPick(e)
	case TimerTick:
		return d.handleTimerTick(e)
	case PlayerDisconnect:
		return nil
	case PlayerReconnect:
		return d.handleReconnect(e)
	default:
		return nil
	}
}

func (d *Draft) handleAdminStart() []Notification {
	if d.phase != PhaseDispensing || d.roundIndex != 0 {
		return nil
	}
	return d.startRound(0)
}

// startRound dispenses round idx and puts the draft into that round's
// working phase, or closes the draft out if idx is past the last round.
func (d *Draft) startRound(idx int) []Notification {
	if idx >= len(d.rounds) {
		d.phase = PhaseComplete
		return []Notification{RoundStage{Round: -1, Complete: true}}
	}

	d.roundIndex = idx
	round := d.rounds[idx]

	var notes []Notification
	notes = append(notes, RoundStage{Round: idx, Complete: false})

	switch round.Kind {
	case draftconfig.RoundBooster:
		d.phase = PhaseSelecting
		d.passDirection = round.Booster.PassDirection
		d.selectionSeconds = draftconfig.EffectiveSelectionSeconds(round.Booster.SelectionSeconds)

		dealt, err := d.dealBoosterRound(round.Booster)
		if err != nil {
			return d.abort(err)
		}
		notes = append(notes, dealt...)
		notes = append(notes, d.maybeCloseRound()...)

	case draftconfig.RoundSealed:
		d.phase = PhaseSelecting
		dealt, err := d.dealSealedRound(round.Sealed)
		if err != nil {
			return d.abort(err)
		}
		notes = append(notes, dealt...)
		notes = append(notes, d.advanceRound()...)

	case draftconfig.RoundGrid:
		d.phase = PhaseSelecting
		dealt, err := d.dealGridRound(round.Grid, idx)
		if err != nil {
			return d.abort(err)
		}
		notes = append(notes, dealt...)

	default:
		return d.abort(fmt.Errorf("draft: round %d has unrecognized kind %d", idx, round.Kind))
	}

	return notes
}

func (d *Draft) abort(err error) []Notification {
	d.aborted = true
	return []Notification{DraftAborted{Reason: err.Error()}}
}

// chairsFor resolves a Dispensation's Chairs list, defaulting to every
// chair when empty (SPEC_FULL.md §3/§6.2).
func (d *Draft) chairsFor(chairs []int) []Chair {
	if len(chairs) == 0 {
		out := make([]Chair, d.chairCount)
		for i := range out {
			out[i] = Chair(i)
		}
		return out
	}

	out := make([]Chair, len(chairs))
	for i, c := range chairs {
		out[i] = Chair(c)
	}
	return out
}

func (d *Draft) dealBoosterRound(cfg *draftconfig.BoosterRoundConfig) ([]Notification, error) {
	var notes []Notification

	for _, dispensation := range cfg.Dispensations {
		if dispensation.DispenserIndex < 0 || dispensation.DispenserIndex >= len(d.dispensers) {
			return nil, fmt.Errorf("draft: dispensation references out-of-range dispenser %d", dispensation.DispenserIndex)
		}
		bd, ok := d.dispensers[dispensation.DispenserIndex].(*dispenser.Booster)
		if !ok {
			return nil, fmt.Errorf("draft: booster round dispensation %d does not reference a booster dispenser", dispensation.DispenserIndex)
		}

		for _, chair := range d.chairsFor(dispensation.Chairs) {
			for range dispensation.Quantity.N {
				cards, err := bd.DispensePack()
				if err != nil {
					return nil, fmt.Errorf("draft: dispensing pack for chair %d: %w", chair, err)
				}
				pack := newPack(d.nextPackID, cards)
				d.nextPackID++
				notes = append(notes, d.enqueuePack(chair, pack)...)
			}
		}
	}

	return notes, nil
}

func (d *Draft) dealSealedRound(cfg *draftconfig.SealedRoundConfig) ([]Notification, error) {
	var notes []Notification

	for _, dispensation := range cfg.Dispensations {
		if dispensation.DispenserIndex < 0 || dispensation.DispenserIndex >= len(d.dispensers) {
			return nil, fmt.Errorf("draft: dispensation references out-of-range dispenser %d", dispensation.DispenserIndex)
		}
		disp := d.dispensers[dispensation.DispenserIndex]

		for _, chair := range d.chairsFor(dispensation.Chairs) {
			cards, err := disp.Dispense(dispensation.Quantity.N)
			if err != nil {
				return nil, fmt.Errorf("draft: sealed dispensation for chair %d: %w", chair, err)
			}
			for _, card := range cards {
				notes = append(notes, InventoryPlacement{Chair: chair, Card: card, Zone: inventory.Auto})
			}
		}
	}

	return notes, nil
}

// dealGridRound draws the 9 cards for a grid round. The grid round
// driver isn't present in the retrieved reference source (only the
// line-selection algorithm, GridHelper, is) so this draws from the
// configured dispenser the way that best fits each dispenser kind: a
// single pack's first 9 cards for a Booster dispenser (documented
// decision, DESIGN.md), or 9 individually-drawn cards for a Custom-list
// dispenser.
func (d *Draft) dealGridRound(cfg *draftconfig.GridRoundConfig, roundIdx int) ([]Notification, error) {
	if cfg.DispenserIndex < 0 || cfg.DispenserIndex >= len(d.dispensers) {
		return nil, fmt.Errorf("draft: grid round references out-of-range dispenser %d", cfg.DispenserIndex)
	}

	var cards []Card
	switch disp := d.dispensers[cfg.DispenserIndex].(type) {
	case *dispenser.Booster:
		pack, err := disp.DispensePack()
		if err != nil {
			return nil, fmt.Errorf("draft: dealing grid round: %w", err)
		}
		if len(pack) < 9 {
			return nil, fmt.Errorf("draft: grid round needs 9 cards, booster pack only has %d", len(pack))
		}
		cards = pack[:9]
	default:
		var err error
		cards, err = disp.Dispense(9)
		if err != nil {
			return nil, fmt.Errorf("draft: dealing grid round: %w", err)
		}
	}

	d.selectionSeconds = draftconfig.EffectiveSelectionSeconds(cfg.SelectionSeconds)
	d.grid = gridState{
		cards:        cards,
		taken:        bitfield.New(9),
		initialChair: Chair(cfg.InitialChair),
	}
	d.grid.activeChair = d.grid.initialChair

	return []Notification{d.gridBoard()}, nil
}

// gridBoard snapshots the grid round's shared public state into a
// Notification, sent to both chairs so each can render the 3x3 board
// and know whose turn it is.
func (d *Draft) gridBoard() GridBoard {
	board := GridBoard{
		Cards:       append([]Card(nil), d.grid.cards...),
		UsedSlices:  d.grid.usedSlices,
		ActiveChair: d.grid.activeChair,
	}
	for i := range board.Taken {
		board.Taken[i] = d.grid.taken.Has(i)
	}
	return board
}

// enqueuePack appends pack to chair's queue and promotes it to current
// if the chair is idle.
func (d *Draft) enqueuePack(chair Chair, pack *Pack) []Notification {
	cs := &d.chairs[chair]
	cs.queue = append(cs.queue, pack)
	return d.promote(chair)
}

// promote pops chair's next queued pack into current, handling an
// immediate AutoLastCard pick if the pack already has only one
// unselected card, and arming the selection timer otherwise.
func (d *Draft) promote(chair Chair) []Notification {
	cs := &d.chairs[chair]
	if cs.current != nil || len(cs.queue) == 0 {
		return nil
	}

	pack := cs.queue[0]
	cs.queue = cs.queue[1:]
	cs.current = pack

	if pack.UnselectedCount() == 1 {
		return d.autoSelectSoleCard(chair, pack, AutoLastCard)
	}

	var notes []Notification
	notes = append(notes, NewCurrentPack{Chair: chair, PackID: pack.ID, Cards: append([]Card(nil), pack.UnselectedCards()...)})
	d.armTimer(chair)
	return notes
}

func (d *Draft) autoSelectSoleCard(chair Chair, pack *Pack, reason AutoReason) []Notification {
	idx := -1
	for i, s := range pack.SelectedBy {
		if s == nil {
			idx = i
			break
		}
	}
	card := pack.Cards[idx]

	cs := &d.chairs[chair]
	pick := cs.pickIndexRound
	cs.pickIndexRound++
	pack.SelectedBy[idx] = &SelectedBy{Chair: chair, Round: d.roundIndex, Pick: pick, Auto: reason}

	notes := []Notification{
		CardSelected{Chair: chair, PackID: pack.ID, Card: card, Auto: reason, Zone: inventory.Auto},
		InventoryPlacement{Chair: chair, Card: card, Zone: inventory.Auto},
	}

	cs.current = nil
	notes = append(notes, d.promote(chair)...)
	return notes
}

func (d *Draft) armTimer(chair Chair) {
	if d.selectionSeconds <= 0 {
		return
	}
	cs := &d.chairs[chair]
	cs.timerActive = true
	cs.timerGeneration++
	d.timers.Enqueue(timerEntry{
		chair:      chair,
		generation: cs.timerGeneration,
		expiry:     d.now.Add(time.Duration(d.selectionSeconds) * time.Second),
	})
}

func (d *Draft) cancelTimer(chair Chair) {
	cs := &d.chairs[chair]
	cs.timerActive = false
	cs.timerGeneration++
}

func (d *Draft) nextSeat(chair Chair) Chair {
	n := d.chairCount
	if d.passDirection == draftconfig.PassRight {
		return Chair((int(chair) + n - 1) % n)
	}
	return Chair((int(chair) + 1) % n)
}

func (d *Draft) handlePlayerPick(e PlayerPick) []Notification {
	if d.phase != PhaseSelecting || int(e.Chair) < 0 || int(e.Chair) >= d.chairCount {
		return []Notification{SelectionError{Chair: e.Chair, PackID: e.PackID, Card: e.Card, Reason: "no active selection for this chair"}}
	}

	cs := &d.chairs[e.Chair]
	if cs.current == nil || cs.current.ID != e.PackID {
		return []Notification{SelectionError{Chair: e.Chair, PackID: e.PackID, Card: e.Card, Reason: "not this chair's current pack"}}
	}

	idx := cs.current.indexOfUnselected(e.Card)
	if idx < 0 {
		return []Notification{SelectionError{Chair: e.Chair, PackID: e.PackID, Card: e.Card, Reason: "card not present or already selected"}}
	}

	pack := cs.current
	pick := cs.pickIndexRound
	cs.pickIndexRound++
	zone := e.TargetZone

	pack.SelectedBy[idx] = &SelectedBy{Chair: e.Chair, Round: d.roundIndex, Pick: pick, Auto: NotAuto}
	d.cancelTimer(e.Chair)

	notes := []Notification{
		CardSelected{Chair: e.Chair, PackID: pack.ID, Card: e.Card, Auto: NotAuto, Zone: zone},
		InventoryPlacement{Chair: e.Chair, Card: e.Card, Zone: zone},
	}

	notes = append(notes, d.afterAccept(e.Chair, pack)...)
	return notes
}

// afterAccept handles what happens to a pack once a pick (interactive or
// automatic) has been applied: pass it along if cards remain, otherwise
// let it be destroyed; either way the chair is now idle and should
// promote its own queue, and the round may now be closeable.
func (d *Draft) afterAccept(chair Chair, pack *Pack) []Notification {
	cs := &d.chairs[chair]
	var notes []Notification

	if pack.UnselectedCount() > 0 {
		next := d.nextSeat(chair)
		cs.current = nil
		notes = append(notes, d.enqueuePack(next, pack)...)
	} else {
		cs.current = nil
	}

	notes = append(notes, d.promote(chair)...)
	notes = append(notes, d.maybeCloseRound()...)
	return notes
}

// allChairsIdle reports whether every chair has no current pack and an
// empty queue: the booster round has nothing left in flight.
func (d *Draft) allChairsIdle() bool {
	for i := range d.chairs {
		if d.chairs[i].current != nil || len(d.chairs[i].queue) > 0 {
			return false
		}
	}
	return true
}

func (d *Draft) maybeCloseRound() []Notification {
	if d.phase != PhaseSelecting {
		return nil
	}
	if d.rounds[d.roundIndex].Kind != draftconfig.RoundBooster {
		return nil
	}
	if !d.allChairsIdle() {
		return nil
	}
	return d.advanceRound()
}

func (d *Draft) advanceRound() []Notification {
	return d.startRound(d.roundIndex + 1)
}

func (d *Draft) handleTimerTick(e TimerTick) []Notification {
	d.now = e.Now
	var notes []Notification

	for {
		entry, ok := d.timers.Peek()
		if !ok || entry.expiry.After(d.now) {
			break
		}
		d.timers.Dequeue()

		cs := &d.chairs[entry.chair]
		if !cs.timerActive || cs.timerGeneration != entry.generation {
			continue
		}

		notes = append(notes, d.expireTimer(entry.chair)...)
	}

	if d.phase == PhasePostRound && d.postRoundPending && !d.now.Before(d.postRoundDeadline) {
		d.postRoundPending = false
		notes = append(notes, d.advanceRound()...)
	}

	return notes
}

func (d *Draft) expireTimer(chair Chair) []Notification {
	cs := &d.chairs[chair]
	cs.timerActive = false

	pack := cs.current
	if pack == nil || pack.UnselectedCount() == 0 {
		return nil
	}

	positions := pack.unselectedPositions()
	pick := d.rng.IntN(len(positions))
	idx := positions[pick]
	card := pack.Cards[idx]

	pickIndex := cs.pickIndexRound
	cs.pickIndexRound++
	pack.SelectedBy[idx] = &SelectedBy{Chair: chair, Round: d.roundIndex, Pick: pickIndex, Auto: AutoTimedOut}

	notes := []Notification{
		CardSelected{Chair: chair, PackID: pack.ID, Card: card, Auto: AutoTimedOut, Zone: inventory.Auto},
		InventoryPlacement{Chair: chair, Card: card, Zone: inventory.Auto},
	}
	notes = append(notes, d.afterAccept(chair, pack)...)
	return notes
}

func (d *Draft) handleReconnect(e PlayerReconnect) []Notification {
	if int(e.Chair) < 0 || int(e.Chair) >= d.chairCount {
		return nil
	}
	cs := &d.chairs[e.Chair]
	if cs.current == nil {
		return []Notification{Resync{Chair: e.Chair, HasCurrent: false}}
	}
	return []Notification{Resync{
		Chair:      e.Chair,
		PackID:     cs.current.ID,
		Cards:      append([]Card(nil), cs.current.UnselectedCards()...),
		HasCurrent: true,
	}}
}

func (d *Draft) handleGridPick(e GridPick) []Notification {
	if d.phase != PhaseSelecting || d.rounds[d.roundIndex].Kind != draftconfig.RoundGrid {
		return []Notification{GridSelectionError{Chair: e.Chair, Slice: e.Slice, Reason: "no active grid round"}}
	}
	if e.Chair != d.grid.activeChair {
		return []Notification{GridSelectionError{Chair: e.Chair, Slice: e.Slice, Reason: "not this chair's turn"}}
	}
	if e.Slice < 0 || e.Slice >= len(gridSlices) || d.grid.usedSlices[e.Slice] {
		return []Notification{GridSelectionError{Chair: e.Chair, Slice: e.Slice, Reason: "that line has already been chosen"}}
	}

	positions := d.grid.unclaimedIn(e.Slice)
	if len(positions) == 0 {
		return []Notification{GridSelectionError{Chair: e.Chair, Slice: e.Slice, Reason: "that line has no unclaimed cards left"}}
	}
	d.grid.usedSlices[e.Slice] = true

	notes := []Notification{GridPickAccepted{Chair: e.Chair, Slice: e.Slice}}
	for _, pos := range positions {
		d.grid.taken.Set(pos)
		card := d.grid.cards[pos]
		notes = append(notes, CardSelected{Chair: e.Chair, Card: card, Auto: NotAuto, Zone: inventory.Main})
		notes = append(notes, InventoryPlacement{Chair: e.Chair, Card: card, Zone: inventory.Main})
	}

	if d.grid.taken.Count() == 9 {
		notes = append(notes, d.gridBoard())
		round := d.rounds[d.roundIndex].Grid
		if round.PostRoundSeconds > 0 {
			d.phase = PhasePostRound
			d.postRoundPending = true
			d.postRoundDeadline = d.now.Add(time.Duration(round.PostRoundSeconds) * time.Second)
		} else {
			notes = append(notes, d.advanceRound()...)
		}
		return notes
	}

	d.grid.activeChair = otherChair(d.grid.activeChair)
	notes = append(notes, d.gridBoard())
	return notes
}
