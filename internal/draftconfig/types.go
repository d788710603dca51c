// Package draftconfig defines the data shape a Room Configuration takes
// before it becomes a running draft, validates it, and turns a validated
// configuration into the Round Specs the Draft engine consumes.
//
// Grounded on original_source/server/RoomConfigValidator.{h,cpp} for
// validation and original_source/core/draft/DraftConfigAdapter.{h,cpp}
// and original_source/server/CardDispenserFactory.cpp for the
// config-to-engine-input adaptation.
package draftconfig

import "github.com/prxssh/thicketd/internal/carddb"

// DispenserMethod selects which concrete Dispenser a DispenserSpec builds.
type DispenserMethod uint8

const (
	MethodBooster DispenserMethod = iota
	MethodCustomCardList
)

// DispenserSpec describes one entry in a Room Configuration's dispenser
// list. Exactly one of SetCode (MethodBooster) or CustomCardListIndex
// (MethodCustomCardList) is meaningful, selected by Method.
type DispenserSpec struct {
	Method              DispenserMethod
	SetCode             string
	CustomCardListIndex int
}

// CustomCardList is a named, fixed list of cards a MethodCustomCardList
// dispenser draws from.
type CustomCardList struct {
	Name  string
	Cards []carddb.Card
}

// RoundKind identifies which of the three round shapes a RoundConfig
// holds. SPEC_FULL.md §4.4 generalizes the original's booster-only
// validation to also accept Sealed and Grid rounds.
type RoundKind uint8

const (
	RoundBooster RoundKind = iota
	RoundSealed
	RoundGrid
)

// PassDirection is the seat-to-seat pack-passing direction for a booster
// round.
type PassDirection uint8

const (
	PassLeft PassDirection = iota
	PassRight
)

// Quantity models quantity_or_all on a Dispensation. SPEC_FULL.md §9
// records the decision that All is rejected by Validate for every
// dispenser kind in this implementation: every dispensation must declare
// a concrete positive N.
type Quantity struct {
	All bool
	N   int
}

// Dispensation is one (dispenser, quantity, recipients) triple within a
// round, indexing into the Room Configuration's dispenser list by
// position. Chairs lists which chairs receive a dispensed pack or card
// set; a nil or empty Chairs means every chair in the draft receives it.
type Dispensation struct {
	DispenserIndex int
	Chairs         []int
	Quantity       Quantity
}

// BoosterRoundConfig is a round where each chair receives a sequence of
// packs built from its dispensations and passes them around the table.
type BoosterRoundConfig struct {
	SelectionSeconds int
	PassDirection    PassDirection
	Dispensations    []Dispensation
}

// SealedRoundConfig is a round where every chair receives its full card
// pool up front, with no passing or interactive picks.
type SealedRoundConfig struct {
	Dispensations []Dispensation
}

// GridRoundConfig is a round where chairs take turns choosing a
// row/column line from a 3x3 grid of cards dispensed from a single
// dispenser.
type GridRoundConfig struct {
	SelectionSeconds int
	PostRoundSeconds int
	DispenserIndex   int

	// InitialChair is which of the round's two chairs (0 or 1) takes the
	// first line pick.
	InitialChair int
}

// RoundConfig is one round of a draft, tagged by Kind with exactly the
// matching field populated.
type RoundConfig struct {
	Kind    RoundKind
	Booster *BoosterRoundConfig
	Sealed  *SealedRoundConfig
	Grid    *GridRoundConfig
}

// DraftConfig is the draft-specific portion of a Room Configuration.
type DraftConfig struct {
	ChairCount      int
	Rounds          []RoundConfig
	Dispensers      []DispenserSpec
	CustomCardLists []CustomCardList
}

// RoomConfig is the full, persistable configuration a room is created
// with, per SPEC_FULL.md §4.4.
type RoomConfig struct {
	BotCount int
	Draft    DraftConfig
}
