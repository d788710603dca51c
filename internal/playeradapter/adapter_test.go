package playeradapter

import (
	"log/slog"
	"net"
	"testing"

	"github.com/prxssh/thicketd/internal/carddb"
	"github.com/prxssh/thicketd/internal/draft"
	"github.com/prxssh/thicketd/internal/inventory"
	"github.com/prxssh/thicketd/internal/transport"
	"github.com/prxssh/thicketd/internal/wire"
)

type fakeSink struct {
	events     []draft.Event
	readyCalls []bool
	chatCalls  []string
	leaveCalls int
}

func (f *fakeSink) Submit(chair draft.Chair, event draft.Event) {
	f.events = append(f.events, event)
}

func (f *fakeSink) SetReady(chair draft.Chair, ready bool) {
	f.readyCalls = append(f.readyCalls, ready)
}

func (f *fakeSink) Chat(chair draft.Chair, text string) {
	f.chatCalls = append(f.chatCalls, text)
}

func (f *fakeSink) Leave(chair draft.Chair) {
	f.leaveCalls++
}

func newTestAdapter(t *testing.T) (*Adapter, *fakeSink) {
	t.Helper()
	client, _ := net.Pipe()
	conn := transport.New(client)
	conn.SetCompressionMode(transport.Uncompressed)
	sink := &fakeSink{}
	a := New(conn, draft.Chair(0), sink, slog.Default())
	return a, sink
}

var cardX = carddb.Card{Name: "X", SetCode: "TST"}
var cardY = carddb.Card{Name: "Y", SetCode: "TST"}

func TestDeliverInteractivePickForThisChair(t *testing.T) {
	a, _ := newTestAdapter(t)

	a.Deliver([]draft.Notification{
		draft.CardSelected{Chair: 0, PackID: 1, Card: cardX, Auto: draft.NotAuto, Zone: inventory.Main},
		draft.InventoryPlacement{Chair: 0, Card: cardX, Zone: inventory.Main},
	})

	select {
	case env := <-a.outbox:
		if env.Kind != wire.KindPlayerCardSelectionRsp {
			t.Fatalf("got kind %q, want %q", env.Kind, wire.KindPlayerCardSelectionRsp)
		}
	default:
		t.Fatal("expected an envelope in the outbox")
	}

	cards := a.Inventory().Cards(inventory.Main)
	if len(cards) != 1 || cards[0] != cardX {
		t.Fatalf("got cards %v, want [%v]", cards, cardX)
	}
}

func TestDeliverIgnoresOtherChairs(t *testing.T) {
	a, _ := newTestAdapter(t)

	a.Deliver([]draft.Notification{
		draft.CardSelected{Chair: 1, PackID: 1, Card: cardX, Auto: draft.NotAuto, Zone: inventory.Main},
		draft.InventoryPlacement{Chair: 1, Card: cardX, Zone: inventory.Main},
	})

	select {
	case env := <-a.outbox:
		t.Fatalf("expected no envelope for a different chair, got %v", env)
	default:
	}

	if len(a.Inventory().Cards(inventory.Main)) != 0 {
		t.Fatal("expected no inventory change for a different chair")
	}
}

func TestDeliverAutoSelectionUsesIndicationNotResponse(t *testing.T) {
	a, _ := newTestAdapter(t)

	a.Deliver([]draft.Notification{
		draft.CardSelected{Chair: 0, PackID: 5, Card: cardX, Auto: draft.AutoTimedOut, Zone: inventory.Auto},
		draft.InventoryPlacement{Chair: 0, Card: cardX, Zone: inventory.Auto},
	})

	env := <-a.outbox
	if env.Kind != wire.KindPlayerAutoCardSelectionInd {
		t.Fatalf("got kind %q, want %q", env.Kind, wire.KindPlayerAutoCardSelectionInd)
	}
}

func TestDeliverSealedDispensationSendsSnapshot(t *testing.T) {
	a, _ := newTestAdapter(t)

	a.Deliver([]draft.Notification{
		draft.InventoryPlacement{Chair: 0, Card: cardX, Zone: inventory.Auto},
		draft.InventoryPlacement{Chair: 0, Card: cardY, Zone: inventory.Auto},
	})

	env := <-a.outbox
	if env.Kind != wire.KindPlayerInventoryInd {
		t.Fatalf("got kind %q, want %q", env.Kind, wire.KindPlayerInventoryInd)
	}

	got, err := wire.Decode(env, wire.Downstream)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	snap := got.(*wire.PlayerInventoryInd)
	if len(snap.DraftedCards) != 1 || len(snap.DraftedCards[0].Cards) != 2 {
		t.Fatalf("unexpected snapshot shape: %+v", snap)
	}
}

func TestDeliverRoundStageAndAbortBroadcastRegardlessOfChair(t *testing.T) {
	a, _ := newTestAdapter(t)

	a.Deliver([]draft.Notification{draft.RoundStage{Round: 1, Complete: false}})
	env := <-a.outbox
	if env.Kind != wire.KindRoomStageInd {
		t.Fatalf("got kind %q, want %q", env.Kind, wire.KindRoomStageInd)
	}

	a.Deliver([]draft.Notification{draft.DraftAborted{Reason: "dispenser exhausted"}})
	env = <-a.outbox
	if env.Kind != wire.KindAnnouncementsInd {
		t.Fatalf("got kind %q, want %q", env.Kind, wire.KindAnnouncementsInd)
	}
}

func TestHandleEnvelopeTranslatesCardSelectionReqToPlayerPick(t *testing.T) {
	a, sink := newTestAdapter(t)

	msg := &wire.PlayerCardSelectionReq{PackID: 9, Card: cardX, TargetZone: inventory.Sideboard}
	env, err := wire.Encode(msg)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if err := a.handleEnvelope(env); err != nil {
		t.Fatalf("handleEnvelope: %v", err)
	}

	if len(sink.events) != 1 {
		t.Fatalf("got %d events, want 1", len(sink.events))
	}
	pick, ok := sink.events[0].(draft.PlayerPick)
	if !ok {
		t.Fatalf("got event %T, want draft.PlayerPick", sink.events[0])
	}
	if pick.PackID != 9 || pick.Card != cardX || pick.TargetZone != inventory.Sideboard {
		t.Fatalf("unexpected translated pick: %+v", pick)
	}
}

func TestHandleEnvelopeTranslatesGridPickReqToGridPick(t *testing.T) {
	a, sink := newTestAdapter(t)

	msg := &wire.GridPickReq{Slice: 3}
	env, err := wire.Encode(msg)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if err := a.handleEnvelope(env); err != nil {
		t.Fatalf("handleEnvelope: %v", err)
	}

	if len(sink.events) != 1 {
		t.Fatalf("got %d events, want 1", len(sink.events))
	}
	pick, ok := sink.events[0].(draft.GridPick)
	if !ok {
		t.Fatalf("got event %T, want draft.GridPick", sink.events[0])
	}
	if pick.Chair != 0 || pick.Slice != 3 {
		t.Fatalf("unexpected translated pick: %+v", pick)
	}
}

func TestDeliverGridBoardBroadcastsRegardlessOfChair(t *testing.T) {
	a, _ := newTestAdapter(t)

	a.Deliver([]draft.Notification{draft.GridBoard{
		Cards:       []draft.Card{cardX, cardY},
		ActiveChair: 1,
	}})

	env := <-a.outbox
	if env.Kind != wire.KindGridBoardInd {
		t.Fatalf("got kind %q, want %q", env.Kind, wire.KindGridBoardInd)
	}

	got, err := wire.Decode(env, wire.Downstream)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	board := got.(*wire.GridBoardInd)
	if board.ActiveChair != 1 || len(board.Cards) != 2 {
		t.Fatalf("unexpected translated board: %+v", board)
	}
}

func TestDeliverGridPickAcceptedAndErrorAreChairScoped(t *testing.T) {
	a, _ := newTestAdapter(t)

	a.Deliver([]draft.Notification{draft.GridPickAccepted{Chair: 1, Slice: 2}})
	select {
	case env := <-a.outbox:
		t.Fatalf("expected no envelope for a different chair, got %v", env)
	default:
	}

	a.Deliver([]draft.Notification{draft.GridSelectionError{Chair: 0, Slice: 4, Reason: "not this chair's turn"}})
	env := <-a.outbox
	if env.Kind != wire.KindGridPickRsp {
		t.Fatalf("got kind %q, want %q", env.Kind, wire.KindGridPickRsp)
	}
	got, err := wire.Decode(env, wire.Downstream)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	rsp := got.(*wire.GridPickRsp)
	if rsp.OK || rsp.Slice != 4 {
		t.Fatalf("unexpected translated rejection: %+v", rsp)
	}
}

func TestHandleEnvelopeRoutesRoomLevelMessagesToSink(t *testing.T) {
	a, sink := newTestAdapter(t)

	ready := &wire.ReadyInd{Ready: true}
	env, err := wire.Encode(ready)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := a.handleEnvelope(env); err != nil {
		t.Fatalf("handleEnvelope: %v", err)
	}

	chat := &wire.ChatIndUp{Text: "hello"}
	env, err = wire.Encode(chat)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := a.handleEnvelope(env); err != nil {
		t.Fatalf("handleEnvelope: %v", err)
	}

	leave := &wire.LeaveRoomInd{}
	env, err = wire.Encode(leave)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := a.handleEnvelope(env); err != nil {
		t.Fatalf("handleEnvelope: %v", err)
	}

	if len(sink.readyCalls) != 1 || !sink.readyCalls[0] {
		t.Fatalf("got readyCalls %v, want [true]", sink.readyCalls)
	}
	if len(sink.chatCalls) != 1 || sink.chatCalls[0] != "hello" {
		t.Fatalf("got chatCalls %v, want [hello]", sink.chatCalls)
	}
	if sink.leaveCalls != 1 {
		t.Fatalf("got leaveCalls %d, want 1", sink.leaveCalls)
	}
}

func TestHandleEnvelopeAppliesInventoryUpdate(t *testing.T) {
	a, _ := newTestAdapter(t)
	_ = a.inv.Add(cardX, inventory.Main)

	msg := &wire.PlayerInventoryUpdateInd{
		Moves: []wire.InventoryMove{{Card: cardX, ZoneFrom: inventory.Main, ZoneTo: inventory.Sideboard}},
	}
	env, err := wire.Encode(msg)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if err := a.handleEnvelope(env); err != nil {
		t.Fatalf("handleEnvelope: %v", err)
	}

	if len(a.inv.Cards(inventory.Main)) != 0 {
		t.Fatal("expected card to have left Main")
	}
	if cards := a.inv.Cards(inventory.Sideboard); len(cards) != 1 || cards[0] != cardX {
		t.Fatalf("expected card in Sideboard, got %v", cards)
	}
}
