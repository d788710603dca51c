// Package dispenser implements the two card-dispensing strategies
// SPEC_FULL.md §4.3 names: Booster (one freshly-selected pack per call,
// with the set's card-pool selector reset after every pack) and Custom-list
// (uniform draw over a fixed list, with an available/dispensed swap on
// underflow). Both are grounded on the construction and refill semantics
// of the original implementation's BoosterDispenser and
// CustomCardListDispenser.
package dispenser

import (
	"errors"

	"github.com/prxssh/thicketd/internal/carddb"
)

// ErrDispenseAllUnsupported is returned by DispenseAll on a dispenser kind
// that has no notion of "the rest of the pool" as a single unit.
var ErrDispenseAllUnsupported = errors.New("dispenser: dispense_all is not supported by this dispenser kind")

// ErrEmptySource is returned by a Custom-list dispenser whose list is
// empty, so it has nothing to give and cannot refill. A Booster dispenser
// does not return it: a set with no cards for a slot yields the
// Card-Pool Selector's own error, wrapped.
var ErrEmptySource = errors.New("dispenser: source is empty and cannot be refilled")

// Dispenser is the card source a Dispensation draws from. Quantity is
// always a concrete positive count: SPEC_FULL.md §9 records the decision
// that quantity_or_all's All variant is rejected by the Configuration
// Validator for every dispenser kind, so engine code never needs to ask a
// Dispenser for "everything that's left."
type Dispenser interface {
	// Dispense draws quantity cards. For a Booster dispenser this is
	// quantity full packs, flattened; callers that need discrete packs
	// (Booster rounds) use the narrower *Booster.DispensePack instead.
	Dispense(quantity int) ([]carddb.Card, error)

	// DispenseAll draws the dispenser's one defined notion of "a full,
	// un-subdivided unit" — for a Booster dispenser this is exactly one
	// pack (SPEC_FULL.md §9); a Custom-list dispenser has no such unit
	// and returns ErrDispenseAllUnsupported.
	DispenseAll() ([]carddb.Card, error)
}
