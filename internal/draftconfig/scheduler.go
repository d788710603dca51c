package draftconfig

import (
	"fmt"

	"github.com/prxssh/thicketd/internal/carddb"
	"github.com/prxssh/thicketd/internal/cardpool"
	"github.com/prxssh/thicketd/internal/dispenser"
)

// DefaultSelectionSeconds is used when a Booster or Grid round doesn't
// specify a selection time, mirroring
// DraftConfigAdapter::getBoosterRoundSelectionTime's default-value
// parameter (the original threads the default in from its proto's
// has_selection_time() optional-field check; this implementation treats
// a negative value the same way, see EffectiveSelectionSeconds).
const DefaultSelectionSeconds = 60

// BuildDispensers constructs one concrete Dispenser per entry in
// draft.Dispensers, in order, grounded on
// original_source/server/CardDispenserFactory.cpp. draft must already
// have passed Validate; this function does not re-check index bounds.
func BuildDispensers(draft DraftConfig, data carddb.SetsData, rng cardpool.Rand, mythicProb float64) ([]dispenser.Dispenser, error) {
	out := make([]dispenser.Dispenser, 0, len(draft.Dispensers))

	for i, spec := range draft.Dispensers {
		var d dispenser.Dispenser
		var err error

		switch spec.Method {
		case MethodBooster:
			d, err = dispenser.NewBooster(data, spec.SetCode, rng, mythicProb)
		case MethodCustomCardList:
			ccl := draft.CustomCardLists[spec.CustomCardListIndex]
			d, err = dispenser.NewCustomList(ccl.Cards, rng)
		default:
			err = fmt.Errorf("draftconfig: dispenser %d has unknown method %d", i, spec.Method)
		}

		if err != nil {
			return nil, fmt.Errorf("draftconfig: building dispenser %d: %w", i, err)
		}

		out = append(out, d)
	}

	return out, nil
}

// EffectiveSelectionSeconds resolves a round's configured selection time.
// A negative value means "unspecified" (the proto's has_selection_time()
// check in DraftConfigAdapter) and resolves to DefaultSelectionSeconds;
// zero is a deliberate, meaningful value that disables the timer for the
// round (SPEC_FULL.md §8); any positive value is used as-is.
func EffectiveSelectionSeconds(seconds int) int {
	if seconds < 0 {
		return DefaultSelectionSeconds
	}
	return seconds
}
