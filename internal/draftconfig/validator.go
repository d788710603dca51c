package draftconfig

import (
	"fmt"

	"github.com/prxssh/thicketd/internal/carddb"
)

// FailureCode identifies why Validate rejected a configuration, matching
// the CreateRoomFailureRsp result codes in
// original_source/server/RoomConfigValidator.cpp one-for-one (plus
// InvalidRoundConfig reused here, since this implementation's
// generalization to sealed/grid rounds retires the original's
// InvalidDraftType code to only the truly-unrecognized-kind case).
type FailureCode uint8

const (
	InvalidChairCount FailureCode = iota
	InvalidBotCount
	InvalidRoundCount
	InvalidDispenserCount
	InvalidSetCode
	InvalidDispenserConfig
	InvalidDraftType
	InvalidRoundConfig
)

func (c FailureCode) String() string {
	switch c {
	case InvalidChairCount:
		return "invalid chair count"
	case InvalidBotCount:
		return "invalid bot count"
	case InvalidRoundCount:
		return "invalid round count"
	case InvalidDispenserCount:
		return "invalid dispenser count"
	case InvalidSetCode:
		return "invalid set code"
	case InvalidDispenserConfig:
		return "invalid dispenser config"
	case InvalidDraftType:
		return "invalid draft type"
	case InvalidRoundConfig:
		return "invalid round config"
	default:
		return "unknown"
	}
}

// ValidationError is returned by Validate on a rejected configuration.
type ValidationError struct {
	Code FailureCode
	Msg  string
}

func (e *ValidationError) Error() string { return fmt.Sprintf("draftconfig: %s: %s", e.Code, e.Msg) }

func fail(code FailureCode, format string, args ...any) error {
	return &ValidationError{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// Validate checks cfg against the server's current capabilities, in the
// same order and with the same failure codes as
// RoomConfigValidator::validate, generalized per SPEC_FULL.md §4.4 to
// accept Sealed and Grid rounds in addition to Booster.
func Validate(cfg RoomConfig, data carddb.SetsData) error {
	draft := cfg.Draft

	if draft.ChairCount < 2 {
		return fail(InvalidChairCount, "chair count %d, must be at least 2", draft.ChairCount)
	}

	if cfg.BotCount >= draft.ChairCount {
		return fail(InvalidBotCount, "bot count %d, chair count %d", cfg.BotCount, draft.ChairCount)
	}

	if len(draft.Rounds) <= 0 {
		return fail(InvalidRoundCount, "round count %d, must be at least 1", len(draft.Rounds))
	}

	if len(draft.Dispensers) < 1 {
		return fail(InvalidDispenserCount, "dispenser count %d, must be at least 1", len(draft.Dispensers))
	}

	for i, disp := range draft.Dispensers {
		if err := validateDispenser(i, disp, draft, data); err != nil {
			return err
		}
	}

	for i, round := range draft.Rounds {
		if err := validateRound(i, round, draft); err != nil {
			return err
		}
	}

	return nil
}

func validateDispenser(i int, disp DispenserSpec, draft DraftConfig, data carddb.SetsData) error {
	switch disp.Method {
	case MethodBooster:
		if !data.HasSet(disp.SetCode) {
			return fail(InvalidSetCode, "dispenser %d uses invalid set code %q", i, disp.SetCode)
		}
		if !data.HasBoosterSlots(disp.SetCode) {
			return fail(InvalidDispenserConfig, "dispenser %d uses non-booster set %q with booster method", i, disp.SetCode)
		}
	case MethodCustomCardList:
		if disp.CustomCardListIndex < 0 || disp.CustomCardListIndex >= len(draft.CustomCardLists) {
			return fail(InvalidDispenserConfig, "dispenser %d references invalid custom card list index %d", i, disp.CustomCardListIndex)
		}
	default:
		return fail(InvalidDispenserConfig, "dispenser %d has unknown method %d", i, disp.Method)
	}

	return nil
}

func validateRound(i int, round RoundConfig, draft DraftConfig) error {
	var dispensations []Dispensation

	switch round.Kind {
	case RoundBooster:
		if round.Booster == nil {
			return fail(InvalidRoundConfig, "round %d declares RoundBooster with no BoosterRoundConfig", i)
		}
		dispensations = round.Booster.Dispensations
	case RoundSealed:
		if round.Sealed == nil {
			return fail(InvalidRoundConfig, "round %d declares RoundSealed with no SealedRoundConfig", i)
		}
		dispensations = round.Sealed.Dispensations
	case RoundGrid:
		if round.Grid == nil {
			return fail(InvalidRoundConfig, "round %d declares RoundGrid with no GridRoundConfig", i)
		}
		if draft.ChairCount != 2 {
			return fail(InvalidRoundConfig, "round %d is a grid round, but chair count is %d, not 2", i, draft.ChairCount)
		}
		if round.Grid.DispenserIndex < 0 || round.Grid.DispenserIndex >= len(draft.Dispensers) {
			return fail(InvalidRoundConfig, "round %d grid dispenser index %d out of range", i, round.Grid.DispenserIndex)
		}
		if round.Grid.InitialChair != 0 && round.Grid.InitialChair != 1 {
			return fail(InvalidRoundConfig, "round %d grid initial chair %d, must be 0 or 1", i, round.Grid.InitialChair)
		}
		return nil
	default:
		return fail(InvalidDraftType, "round %d has unrecognized kind %d", i, round.Kind)
	}

	if len(dispensations) <= 0 {
		return fail(InvalidRoundConfig, "round %d has no dispensations", i)
	}

	for _, d := range dispensations {
		if d.DispenserIndex < 0 || d.DispenserIndex >= len(draft.Dispensers) {
			return fail(InvalidRoundConfig, "round %d dispensation has invalid dispenser index %d", i, d.DispenserIndex)
		}
		if d.Quantity.All {
			return fail(InvalidRoundConfig, "round %d dispensation requests quantity_or_all=All, which is unsupported", i)
		}
		if d.Quantity.N <= 0 {
			return fail(InvalidRoundConfig, "round %d dispensation requests non-positive quantity %d", i, d.Quantity.N)
		}
		for _, chair := range d.Chairs {
			if chair < 0 || chair >= draft.ChairCount {
				return fail(InvalidRoundConfig, "round %d dispensation targets out-of-range chair %d", i, chair)
			}
		}
	}

	return nil
}
