package inventory

import (
	"testing"

	"github.com/prxssh/thicketd/internal/carddb"
)

func TestAddAndCards(t *testing.T) {
	inv := New()
	bears := carddb.Card{Name: "Grizzly Bears", SetCode: "M10"}

	if err := inv.Add(bears, Main); err != nil {
		t.Fatalf("Add: %v", err)
	}

	cards := inv.Cards(Main)
	if len(cards) != 1 || cards[0] != bears {
		t.Fatalf("Cards(Main) = %v, want [%v]", cards, bears)
	}
	if len(inv.Cards(Sideboard)) != 0 {
		t.Fatalf("Cards(Sideboard) should be empty")
	}
}

func TestMoveRelocatesByValueEquality(t *testing.T) {
	inv := New()
	angel := carddb.Card{Name: "Serra Angel", SetCode: "M10"}
	inv.Add(angel, Main)

	ok, err := inv.Move(angel, Main, Sideboard)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if !ok {
		t.Fatal("Move reported no match, want match")
	}

	if len(inv.Cards(Main)) != 0 {
		t.Fatalf("Cards(Main) after move = %v, want empty", inv.Cards(Main))
	}
	if cards := inv.Cards(Sideboard); len(cards) != 1 || cards[0] != angel {
		t.Fatalf("Cards(Sideboard) after move = %v, want [%v]", cards, angel)
	}
}

func TestMoveNoMatch(t *testing.T) {
	inv := New()
	ok, err := inv.Move(carddb.Card{Name: "Plains"}, Main, Sideboard)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if ok {
		t.Fatal("Move reported a match on an empty zone")
	}
}

func TestAdjustBasicLandRejectsNegativeResult(t *testing.T) {
	inv := New()

	ok, err := inv.AdjustBasicLand(Forest, Main, -1)
	if err != nil {
		t.Fatalf("AdjustBasicLand: %v", err)
	}
	if ok {
		t.Fatal("AdjustBasicLand allowed a negative quantity")
	}
	if qty := inv.BasicLandQuantity(Forest, Main); qty != 0 {
		t.Fatalf("BasicLandQuantity(Forest, Main) = %d, want 0", qty)
	}
}

func TestAdjustBasicLandAccumulates(t *testing.T) {
	inv := New()

	if ok, err := inv.AdjustBasicLand(Island, Main, 3); err != nil || !ok {
		t.Fatalf("AdjustBasicLand(+3): ok=%v err=%v", ok, err)
	}
	if ok, err := inv.AdjustBasicLand(Island, Main, -1); err != nil || !ok {
		t.Fatalf("AdjustBasicLand(-1): ok=%v err=%v", ok, err)
	}
	if qty := inv.BasicLandQuantity(Island, Main); qty != 2 {
		t.Fatalf("BasicLandQuantity(Island, Main) = %d, want 2", qty)
	}
}

func TestSizeCountsCardsAndBasicLands(t *testing.T) {
	inv := New()
	inv.Add(carddb.Card{Name: "Grizzly Bears"}, Main)
	inv.Add(carddb.Card{Name: "Raging Goblin"}, Sideboard)
	inv.AdjustBasicLand(Mountain, Main, 4)

	if got := inv.Size(); got != 6 {
		t.Fatalf("Size() = %d, want 6", got)
	}
	if got := inv.SizeOf(Main); got != 5 {
		t.Fatalf("SizeOf(Main) = %d, want 5", got)
	}
}

func TestClear(t *testing.T) {
	inv := New()
	inv.Add(carddb.Card{Name: "Grizzly Bears"}, Main)
	inv.AdjustBasicLand(Plains, Junk, 2)

	inv.Clear()

	if inv.Size() != 0 {
		t.Fatalf("Size() after Clear = %d, want 0", inv.Size())
	}
}
