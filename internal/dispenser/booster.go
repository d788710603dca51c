package dispenser

import (
	"fmt"

	"github.com/prxssh/thicketd/internal/cardpool"
	"github.com/prxssh/thicketd/internal/carddb"
)

// Booster dispenses one freshly-assembled pack per call, following a set's
// booster slot template. The underlying Card-Pool Selector is reset after
// every pack: a pack never contains the same card twice, but two packs
// from the same Booster can, exactly as the original implementation's
// BoosterDispenser resets its selector once per dispense() call rather
// than once per slot.
type Booster struct {
	setCode string
	slots   []carddb.SlotType
	sel     *cardpool.Selector
}

// NewBooster builds a Booster dispenser over setCode, read from data. It
// returns an error if setCode is unknown or has no booster slot template;
// the Configuration Validator is expected to have already checked this,
// but the constructor re-checks defensively since it can be called
// directly from tests and fixtures.
func NewBooster(data carddb.SetsData, setCode string, rng cardpool.Rand, mythicProb float64) (*Booster, error) {
	if !data.HasSet(setCode) {
		return nil, fmt.Errorf("dispenser: unknown set %q", setCode)
	}
	if !data.HasBoosterSlots(setCode) {
		return nil, fmt.Errorf("dispenser: set %q has no booster slot template", setCode)
	}

	return &Booster{
		setCode: setCode,
		slots:   data.BoosterSlots(setCode),
		sel:     cardpool.New(data.CardPool(setCode), rng, mythicProb),
	}, nil
}

// DispensePack draws one full pack: one card per slot in the set's
// booster template, in template order. The selector is reset once the
// pack is complete.
func (b *Booster) DispensePack() ([]carddb.Card, error) {
	cards := make([]carddb.Card, 0, len(b.slots))

	for _, slot := range b.slots {
		card, err := b.sel.Select(slot)
		if err != nil {
			return nil, fmt.Errorf("dispenser: set %q: %w", b.setCode, err)
		}
		cards = append(cards, card)
	}

	b.sel.Reset()

	return cards, nil
}

// Dispense draws quantity packs and flattens them into a single slice, in
// pack order. Sealed-round dispensations use this; Booster-round
// dispensations use DispensePack directly so each pack stays discrete.
func (b *Booster) Dispense(quantity int) ([]carddb.Card, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("dispenser: quantity must be positive, got %d", quantity)
	}

	out := make([]carddb.Card, 0, quantity*len(b.slots))
	for range quantity {
		pack, err := b.DispensePack()
		if err != nil {
			return nil, err
		}
		out = append(out, pack...)
	}

	return out, nil
}

// DispenseAll dispenses exactly one pack. A Booster set has no fixed
// bound to exhaust once its selector resets every pack, so "all" is
// defined as the dispenser's one natural unit: a single pack
// (SPEC_FULL.md §9).
func (b *Booster) DispenseAll() ([]carddb.Card, error) {
	return b.DispensePack()
}

var _ Dispenser = (*Booster)(nil)
