package draftconfig

// DefaultThreeBoosterDraft builds the default three-round booster draft:
// three rounds passing CW/CCW/CW, 60-second selection, one dispenser per
// set code in setCodes (in order), each round dispensing one pack from
// every dispenser.
func DefaultThreeBoosterDraft(setCodes []string) DraftConfig {
	dispensers := make([]DispenserSpec, 0, len(setCodes))
	dispensations := make([]Dispensation, 0, len(setCodes))
	for i, setCode := range setCodes {
		dispensers = append(dispensers, DispenserSpec{Method: MethodBooster, SetCode: setCode})
		dispensations = append(dispensations, Dispensation{DispenserIndex: i, Quantity: Quantity{N: 1}})
	}

	directions := []PassDirection{PassLeft, PassRight, PassLeft}
	rounds := make([]RoundConfig, 0, len(directions))
	for _, dir := range directions {
		rounds = append(rounds, RoundConfig{
			Kind: RoundBooster,
			Booster: &BoosterRoundConfig{
				SelectionSeconds: DefaultSelectionSeconds,
				PassDirection:    dir,
				Dispensations:    append([]Dispensation(nil), dispensations...),
			},
		})
	}

	return DraftConfig{Rounds: rounds, Dispensers: dispensers}
}

// DefaultSealedDraft builds the default sealed configuration: a single
// round drawing six packs' worth of cards (as six separate one-pack
// dispensations, spread round-robin across the given dispensers so a
// multi-set sealed pool is possible).
func DefaultSealedDraft(setCodes []string) DraftConfig {
	dispensers := make([]DispenserSpec, 0, len(setCodes))
	for _, setCode := range setCodes {
		dispensers = append(dispensers, DispenserSpec{Method: MethodBooster, SetCode: setCode})
	}

	const packCount = 6
	dispensations := make([]Dispensation, 0, packCount)
	for i := range packCount {
		dispensations = append(dispensations, Dispensation{
			DispenserIndex: i % len(dispensers),
			Quantity:       Quantity{N: 1},
		})
	}

	return DraftConfig{
		Dispensers: dispensers,
		Rounds: []RoundConfig{
			{Kind: RoundSealed, Sealed: &SealedRoundConfig{Dispensations: dispensations}},
		},
	}
}

// DefaultGridDraft builds the default grid configuration: eighteen
// rounds over dispenser index 0, with a 5-second post-round pause, and
// the opening chair alternating round to round.
func DefaultGridDraft(setCode string) DraftConfig {
	const roundCount = 18
	const postRoundSeconds = 5

	rounds := make([]RoundConfig, 0, roundCount)
	for i := range roundCount {
		rounds = append(rounds, RoundConfig{
			Kind: RoundGrid,
			Grid: &GridRoundConfig{
				SelectionSeconds: DefaultSelectionSeconds,
				PostRoundSeconds: postRoundSeconds,
				DispenserIndex:   0,
				InitialChair:     i % 2,
			},
		})
	}

	return DraftConfig{
		Dispensers: []DispenserSpec{{Method: MethodBooster, SetCode: setCode}},
		Rounds:     rounds,
	}
}
