package deckhash

import (
	"testing"

	"github.com/prxssh/thicketd/internal/carddb"
	"github.com/prxssh/thicketd/internal/inventory"
)

func buildSampleDeck() *inventory.Inventory {
	inv := inventory.New()
	inv.Add(carddb.Card{Name: "Grizzly Bears"}, inventory.Main)
	inv.Add(carddb.Card{Name: "Fire // Ice"}, inventory.Main)
	inv.Add(carddb.Card{Name: "Serra Angel"}, inventory.Sideboard)
	inv.AdjustBasicLand(inventory.Forest, inventory.Main, 8)
	inv.AdjustBasicLand(inventory.Island, inventory.Sideboard, 1)
	return inv
}

func TestComputeIsDeterministic(t *testing.T) {
	h1 := Compute(buildSampleDeck())
	h2 := Compute(buildSampleDeck())
	if h1 != h2 {
		t.Fatalf("Compute is not deterministic: %q vs %q", h1, h2)
	}
}

func TestComputeIsEightCharsBase32(t *testing.T) {
	h := Compute(buildSampleDeck())
	if len(h) != 8 {
		t.Fatalf("len(hash) = %d, want 8", len(h))
	}
	for _, r := range h {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'v')) {
			t.Fatalf("hash %q contains a character outside the base-32 alphabet: %q", h, r)
		}
	}
}

func TestComputeIgnoresCardOrder(t *testing.T) {
	a := inventory.New()
	a.Add(carddb.Card{Name: "Grizzly Bears"}, inventory.Main)
	a.Add(carddb.Card{Name: "Serra Angel"}, inventory.Main)

	b := inventory.New()
	b.Add(carddb.Card{Name: "Serra Angel"}, inventory.Main)
	b.Add(carddb.Card{Name: "Grizzly Bears"}, inventory.Main)

	if Compute(a) != Compute(b) {
		t.Fatal("Compute should be insensitive to card insertion order within a zone")
	}
}

func TestComputeDistinguishesMainFromSideboard(t *testing.T) {
	main := inventory.New()
	main.Add(carddb.Card{Name: "Serra Angel"}, inventory.Main)

	side := inventory.New()
	side.Add(carddb.Card{Name: "Serra Angel"}, inventory.Sideboard)

	if Compute(main) == Compute(side) {
		t.Fatal("Compute should distinguish a card in Main from the same card in Sideboard")
	}
}

func TestNormalizeNameAppliesCockatriceSubstitutions(t *testing.T) {
	cases := map[string]string{
		"Æther Vial":  "aether vial",
		"Urza’s Tower": "urza's tower",
		"Fire/Ice":     "fire // ice",
		"Fire / Ice":   "fire // ice",
	}
	for in, want := range cases {
		if got := normalizeName(in); got != want {
			t.Errorf("normalizeName(%q) = %q, want %q", in, got, want)
		}
	}
}
