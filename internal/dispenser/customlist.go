package dispenser

import (
	"fmt"

	"github.com/prxssh/thicketd/internal/cardpool"
	"github.com/prxssh/thicketd/internal/carddb"
)

// CustomList dispenses single cards drawn uniformly from a fixed list.
// Once the list is exhausted it refills by swapping the dispensed cards
// back in, exactly as the original implementation's
// CustomCardListDispenser swaps its available/dispensed lists on
// underflow rather than resetting to the original list order.
type CustomList struct {
	available []carddb.Card
	dispensed []carddb.Card
	rng       cardpool.Rand
}

// NewCustomList builds a CustomList dispenser over cards. The slice is
// copied; callers may reuse or discard their own copy afterward.
func NewCustomList(cards []carddb.Card, rng cardpool.Rand) (*CustomList, error) {
	if len(cards) == 0 {
		return nil, fmt.Errorf("dispenser: custom card list must not be empty")
	}

	cp := make([]carddb.Card, len(cards))
	copy(cp, cards)

	return &CustomList{
		available: cp,
		dispensed: make([]carddb.Card, 0, len(cards)),
		rng:       rng,
	}, nil
}

// drawOne picks and removes one card uniformly from available, refilling
// from dispensed first if available has run out.
func (c *CustomList) drawOne() (carddb.Card, error) {
	if len(c.available) == 0 {
		c.available, c.dispensed = c.dispensed, c.available[:0]
	}
	if len(c.available) == 0 {
		return carddb.Card{}, ErrEmptySource
	}

	idx := c.rng.IntN(len(c.available))
	card := c.available[idx]

	last := len(c.available) - 1
	c.available[idx] = c.available[last]
	c.available = c.available[:last]

	c.dispensed = append(c.dispensed, card)

	return card, nil
}

// Dispense draws quantity cards, one at a time, refilling between draws
// as needed.
func (c *CustomList) Dispense(quantity int) ([]carddb.Card, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("dispenser: quantity must be positive, got %d", quantity)
	}

	out := make([]carddb.Card, 0, quantity)
	for range quantity {
		card, err := c.drawOne()
		if err != nil {
			return nil, err
		}
		out = append(out, card)
	}

	return out, nil
}

// DispenseAll is disallowed for a custom-list dispenser: unlike a
// Booster's pack, a custom list has no single natural unit to hand back
// as "all of it" short of its entire (possibly very large) backing list.
func (c *CustomList) DispenseAll() ([]carddb.Card, error) {
	return nil, ErrDispenseAllUnsupported
}

var _ Dispenser = (*CustomList)(nil)
