// Package playeradapter bridges one connected client to the Room and
// Draft engine: it owns the per-connection read/write pump and outbound
// queue, owns that player's Inventory, and translates between
// draft.Notification/draft.Event and wire.Envelope.
//
// Grounded on internal/peer/peer.go's read-loop/write-loop/outbox
// pattern (errgroup-driven goroutine pair around one net.Conn), adapted
// so that, unlike the teacher's drop-on-full piece-request queue
// (enqueueMessage's non-blocking select/default), a full outbox blocks
// the sender rather than silently dropping a message — draft
// notifications describe state transitions that already happened and
// are not safely re-derivable the way a piece request is (documented
// deviation, SPEC_FULL.md §5).
package playeradapter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/prxssh/thicketd/internal/carddb"
	"github.com/prxssh/thicketd/internal/draft"
	"github.com/prxssh/thicketd/internal/inventory"
	"github.com/prxssh/thicketd/internal/transport"
	"github.com/prxssh/thicketd/internal/wire"
	"golang.org/x/sync/errgroup"
)

// outboxCapacity is the outbound queue's buffer size. Unlike the
// teacher's bounded-and-dropping piece queue, capacity here only
// absorbs a burst before a sender blocks; it is not a loss boundary.
const outboxCapacity = 64

// EventSink is how an Adapter hands a translated client request to the
// draft engine. The Room implements this by forwarding to its
// *draft.Draft under its own event-loop goroutine.
type EventSink interface {
	Submit(chair draft.Chair, event draft.Event)
	SetReady(chair draft.Chair, ready bool)
	Chat(chair draft.Chair, text string)
	Leave(chair draft.Chair)
}

// Adapter is one connected player's transport-facing state: the framed
// connection, its Inventory, and the read/write pumps that keep both in
// sync with the Room.
type Adapter struct {
	log   *slog.Logger
	conn  *transport.Conn
	chair draft.Chair
	sink  EventSink

	inv   *inventory.Inventory
	invMu sync.Mutex

	outbox chan *wire.Envelope

	cancel    context.CancelFunc
	closeOnce sync.Once
	stopped   atomic.Bool
}

// New wraps conn as chair's Adapter, delivering decoded client requests
// to sink.
func New(conn *transport.Conn, chair draft.Chair, sink EventSink, log *slog.Logger) *Adapter {
	return &Adapter{
		log:    log.With("component", "playeradapter", "chair", chair),
		conn:   conn,
		chair:  chair,
		sink:   sink,
		inv:    inventory.New(),
		outbox: make(chan *wire.Envelope, outboxCapacity),
	}
}

// Inventory returns the adapter's Inventory. Callers must not mutate it
// concurrently with Deliver; the returned Inventory is not locked.
func (a *Adapter) Inventory() *inventory.Inventory { return a.inv }

// TestOnlyOutbox exposes the adapter's outbound queue for assertions in
// other packages' tests (notably internal/room's), without making the
// outbox part of the adapter's real API.
func (a *Adapter) TestOnlyOutbox() chan *wire.Envelope { return a.outbox }

// Run drives the read and write pumps until ctx is cancelled or either
// pump errors (typically a closed connection), mirroring
// Peer.Run's errgroup.WithContext shape.
func (a *Adapter) Run(ctx context.Context) error {
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.readLoop(gctx) })
	g.Go(func() error { return a.writeLoop(gctx) })

	return g.Wait()
}

// Close tears down the connection and stops accepting further sends.
func (a *Adapter) Close() {
	a.closeOnce.Do(func() {
		a.stopped.Store(true)
		if a.cancel != nil {
			a.cancel()
		}
		_ = a.conn.Close()
		close(a.outbox)
		a.log.Debug("stopped player adapter")
	})
}

func (a *Adapter) readLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		body, err := a.conn.ReadMessage()
		if err != nil {
			a.log.Warn("read failed, exiting", "error", err.Error())
			a.sink.Leave(a.chair)
			return err
		}

		env, err := wire.DecodeEnvelopeJSON(body)
		if err != nil {
			a.log.Warn("malformed envelope", "error", err.Error())
			continue
		}

		if err := a.handleEnvelope(env); err != nil {
			a.log.Warn("handling envelope failed", "error", err.Error())
		}
	}
}

func (a *Adapter) writeLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case env, ok := <-a.outbox:
			if !ok {
				return nil
			}
			body, err := wire.EncodeEnvelopeJSON(env)
			if err != nil {
				a.log.Error("failed to marshal outgoing envelope", "error", err.Error())
				continue
			}
			if err := a.conn.WriteMessage(body); err != nil {
				a.log.Warn("write failed, exiting", "error", err.Error())
				return err
			}
		}
	}
}

func (a *Adapter) handleEnvelope(env *wire.Envelope) error {
	msg, err := wire.Decode(env, wire.Upstream)
	if err != nil {
		return err
	}

	switch m := msg.(type) {
	case *wire.PlayerCardSelectionReq:
		a.sink.Submit(a.chair, draft.PlayerPick{
			Chair:      a.chair,
			PackID:     m.PackID,
			Card:       m.Card,
			TargetZone: m.TargetZone,
		})

	case *wire.GridPickReq:
		a.sink.Submit(a.chair, draft.GridPick{Chair: a.chair, Slice: m.Slice})

	case *wire.PlayerInventoryUpdateInd:
		a.applyInventoryUpdate(m)

	case *wire.ReadyInd:
		a.sink.SetReady(a.chair, m.Ready)

	case *wire.ChatIndUp:
		a.sink.Chat(a.chair, m.Text)

	case *wire.LeaveRoomInd:
		a.sink.Leave(a.chair)

	default:
		return fmt.Errorf("playeradapter: unexpected client message type %T", msg)
	}

	return nil
}

// applyInventoryUpdate replays a batch of client-requested moves and
// basic-land adjustments against the local Inventory, mirroring
// PlayerInventory's direct zone-to-zone move semantics. A move or
// adjustment that fails (card not present, negative count) is skipped;
// if any entry of the batch failed, the client is then sent a full
// PlayerInventoryInd snapshot to resync its view (SPEC_FULL.md §7).
func (a *Adapter) applyInventoryUpdate(m *wire.PlayerInventoryUpdateInd) {
	a.invMu.Lock()
	rejected := false
	for _, mv := range m.Moves {
		if ok, err := a.inv.Move(mv.Card, mv.ZoneFrom, mv.ZoneTo); err != nil || !ok {
			rejected = true
		}
	}
	for _, adj := range m.BasicLandAdjustments {
		if ok, err := a.inv.AdjustBasicLand(adj.Basic, adj.Zone, adj.Delta); err != nil || !ok {
			rejected = true
		}
	}
	a.invMu.Unlock()

	if rejected {
		a.enqueue(a.inventorySnapshot())
	}
}

// Deliver applies and translates one Submit call's worth of draft
// notifications that are relevant to this adapter's chair, enqueueing
// the resulting wire envelopes. Room calls this once per batch returned
// from draft.Draft.Submit, filtered or broadcast as SPEC_FULL.md §4.5
// requires (RoundStage, DraftAborted, and GridBoard go to every chair;
// the rest are chair-scoped).
func (a *Adapter) Deliver(notifications []draft.Notification) {
	sawCardSelected := false
	sawInventoryPlacement := false

	for _, n := range notifications {
		switch note := n.(type) {
		case draft.CardSelected:
			if note.Chair != a.chair {
				continue
			}
			sawCardSelected = true
			a.enqueue(cardSelectedToWire(note))

		case draft.NewCurrentPack:
			if note.Chair != a.chair {
				continue
			}
			a.enqueue(&wire.PlayerCurrentPackInd{PackID: note.PackID, Cards: note.Cards})

		case draft.RoundStage:
			a.enqueue(&wire.RoomStageInd{Round: note.Round, Complete: note.Complete})

		case draft.SelectionError:
			if note.Chair != a.chair {
				continue
			}
			a.enqueue(&wire.PlayerCardSelectionRsp{OK: false, PackID: note.PackID, Card: note.Card})

		case draft.GridPickAccepted:
			if note.Chair != a.chair {
				continue
			}
			a.enqueue(&wire.GridPickRsp{OK: true, Slice: note.Slice})

		case draft.GridSelectionError:
			if note.Chair != a.chair {
				continue
			}
			a.enqueue(&wire.GridPickRsp{OK: false, Slice: note.Slice, Reason: note.Reason})

		case draft.GridBoard:
			a.enqueue(gridBoardToWire(note))

		case draft.DraftAborted:
			a.enqueue(&wire.AnnouncementsInd{Text: "draft aborted: " + note.Reason})

		case draft.InventoryPlacement:
			if note.Chair != a.chair {
				continue
			}
			sawInventoryPlacement = true
			a.invMu.Lock()
			_ = a.inv.Add(note.Card, note.Zone)
			a.invMu.Unlock()

		case draft.Resync:
			if note.Chair != a.chair {
				continue
			}
			a.enqueue(a.inventorySnapshot())
			if note.HasCurrent {
				a.enqueue(&wire.PlayerCurrentPackInd{PackID: note.PackID, Cards: note.Cards})
			}
		}
	}

	// A sealed-round dispensation emits InventoryPlacement with no
	// accompanying CardSelected (SPEC_FULL.md §4.5); send a snapshot so
	// the client learns what it received.
	if sawInventoryPlacement && !sawCardSelected {
		a.enqueue(a.inventorySnapshot())
	}
}

// DeliverChat enqueues a chat line from user to this adapter's client.
func (a *Adapter) DeliverChat(user, text string) {
	a.enqueue(&wire.ChatIndDown{User: user, Text: text})
}

func cardSelectedToWire(note draft.CardSelected) any {
	if note.Auto == draft.NotAuto {
		return &wire.PlayerCardSelectionRsp{OK: true, PackID: note.PackID, Card: note.Card}
	}

	typ := wire.AutoTimedOut
	if note.Auto == draft.AutoLastCard {
		typ = wire.AutoLastCard
	}
	return &wire.PlayerAutoCardSelectionInd{Type: typ, PackID: note.PackID, Card: note.Card}
}

func gridBoardToWire(note draft.GridBoard) *wire.GridBoardInd {
	return &wire.GridBoardInd{
		Cards:       note.Cards,
		Taken:       note.Taken,
		UsedSlices:  note.UsedSlices,
		ActiveChair: int(note.ActiveChair),
	}
}

func (a *Adapter) inventorySnapshot() *wire.PlayerInventoryInd {
	a.invMu.Lock()
	defer a.invMu.Unlock()

	snap := &wire.PlayerInventoryInd{}
	for z := inventory.Auto; z <= inventory.Junk; z++ {
		cards := a.inv.Cards(z)
		if len(cards) > 0 {
			cp := make([]carddb.Card, len(cards))
			copy(cp, cards)
			snap.DraftedCards = append(snap.DraftedCards, wire.DraftedCards{Zone: z, Cards: cp})
		}
		for b := inventory.Plains; b <= inventory.Forest; b++ {
			if qty := a.inv.BasicLandQuantity(b, z); qty > 0 {
				snap.BasicLandQuantities = append(snap.BasicLandQuantities, wire.BasicLandQuantity{
					Zone: z, Basic: b, Count: qty,
				})
			}
		}
	}
	return snap
}

// enqueue blocks until the outbox has room or the adapter is stopped,
// the documented full-outbox-blocks deviation from the teacher.
func (a *Adapter) enqueue(msg any) {
	if a.stopped.Load() {
		return
	}

	env, err := wire.Encode(msg)
	if err != nil {
		a.log.Error("failed to encode outgoing message", "error", err.Error())
		return
	}

	a.outbox <- env
}
