package draftconfig

import (
	"testing"

	"github.com/prxssh/thicketd/internal/carddb"
)

func TestDefaultThreeBoosterDraftValidates(t *testing.T) {
	data := carddb.NewStaticSetsData()
	data.AddSet("M10", carddb.StandardBoosterSlots(), carddb.CardPool{
		carddb.Common: {{Name: "Grizzly Bears", SetCode: "M10"}},
	})

	draft := DefaultThreeBoosterDraft([]string{"M10"})
	if len(draft.Rounds) != 3 {
		t.Fatalf("len(Rounds) = %d, want 3", len(draft.Rounds))
	}

	cfg := RoomConfig{Draft: draft, BotCount: 0}
	draft.ChairCount = 4
	cfg.Draft = draft
	if err := Validate(cfg, data); err != nil {
		t.Fatalf("Validate(DefaultThreeBoosterDraft): %v", err)
	}

	dirs := []PassDirection{PassLeft, PassRight, PassLeft}
	for i, round := range draft.Rounds {
		if round.Booster.PassDirection != dirs[i] {
			t.Errorf("round %d pass direction = %v, want %v", i, round.Booster.PassDirection, dirs[i])
		}
	}
}

func TestDefaultSealedDraftValidates(t *testing.T) {
	data := carddb.NewStaticSetsData()
	data.AddSet("M10", carddb.StandardBoosterSlots(), carddb.CardPool{
		carddb.Common: {{Name: "Grizzly Bears", SetCode: "M10"}},
	})

	draft := DefaultSealedDraft([]string{"M10"})
	draft.ChairCount = 4
	if err := Validate(RoomConfig{Draft: draft}, data); err != nil {
		t.Fatalf("Validate(DefaultSealedDraft): %v", err)
	}

	total := 0
	for _, d := range draft.Rounds[0].Sealed.Dispensations {
		total += d.Quantity.N
	}
	if total != 6 {
		t.Fatalf("total packs dispensed = %d, want 6", total)
	}
}

func TestDefaultGridDraftValidates(t *testing.T) {
	data := carddb.NewStaticSetsData()
	data.AddSet("M10", carddb.StandardBoosterSlots(), carddb.CardPool{
		carddb.Common: {{Name: "Grizzly Bears", SetCode: "M10"}},
	})

	draft := DefaultGridDraft("M10")
	draft.ChairCount = 2
	if err := Validate(RoomConfig{Draft: draft}, data); err != nil {
		t.Fatalf("Validate(DefaultGridDraft): %v", err)
	}
	if len(draft.Rounds) != 18 {
		t.Fatalf("len(Rounds) = %d, want 18", len(draft.Rounds))
	}
}
