// Package cardpool implements the slot-typed random draw described in
// SPEC_FULL.md §4.2, grounded on the swap-remove bucketed-storage technique
// the corpus uses for rarest-first piece availability tracking
// (internal/piece/availability_bucket.go in the teacher), adapted here to
// per-rarity card buckets instead of per-replica-count piece buckets.
package cardpool

import (
	"errors"
	"math/rand/v2"

	"github.com/prxssh/thicketd/internal/carddb"
)

// ErrEmptyBucket is returned by Select when the rarity it resolved to has no
// remaining cards in the pool.
var ErrEmptyBucket = errors.New("cardpool: no cards remaining at rarity")

// DefaultMythicProbability is the default chance a rare-or-mythic slot
// resolves to MythicRare rather than Rare, matching the source's default.
const DefaultMythicProbability = 0.125

// Rand is the subset of math/rand/v2's *rand.Rand this package needs,
// satisfied by *rand.Rand directly; tests inject a seeded source for
// deterministic fixtures.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// Selector draws cards from a mutable rarity-bucketed pool without
// replacement within a reset-bounded run, per SPEC_FULL.md §4.2.
type Selector struct {
	pool       map[carddb.Rarity][]carddb.Card
	removed    map[carddb.Rarity][]carddb.Card
	rng        Rand
	mythicProb float64
}

// New builds a Selector over a copy of pool. mythicProb is the probability a
// SlotRareOrMythic resolves to MythicRare; pass a value <0 to use
// DefaultMythicProbability.
func New(pool carddb.CardPool, rng Rand, mythicProb float64) *Selector {
	if mythicProb < 0 {
		mythicProb = DefaultMythicProbability
	}

	s := &Selector{
		pool:       make(map[carddb.Rarity][]carddb.Card, len(pool)),
		removed:    make(map[carddb.Rarity][]carddb.Card, len(pool)),
		rng:        rng,
		mythicProb: mythicProb,
	}
	for rarity, cards := range pool {
		cp := make([]carddb.Card, len(cards))
		copy(cp, cards)
		s.pool[rarity] = cp
		s.removed[rarity] = make([]carddb.Card, 0, len(cards))
	}

	return s
}

// rarityForSlot resolves a SlotType to a concrete Rarity, rolling the
// mythic-or-rare coin flip for SlotRareOrMythic.
func (s *Selector) rarityForSlot(slot carddb.SlotType) carddb.Rarity {
	switch slot {
	case carddb.SlotCommon:
		return carddb.Common
	case carddb.SlotUncommon:
		return carddb.Uncommon
	case carddb.SlotRare:
		return carddb.Rare
	case carddb.SlotTimeshifted:
		return carddb.Timeshifted
	case carddb.SlotRareOrMythic:
		if s.rng.Float64() < s.mythicProb {
			return carddb.MythicRare
		}
		return carddb.Rare
	default:
		return carddb.Common
	}
}

// Select draws one card for slot, moving it from pool to removed.
func (s *Selector) Select(slot carddb.SlotType) (carddb.Card, error) {
	rarity := s.rarityForSlot(slot)

	bucket := s.pool[rarity]
	if len(bucket) == 0 {
		return carddb.Card{}, ErrEmptyBucket
	}

	idx := s.rng.IntN(len(bucket))
	card := bucket[idx]

	// Swap-remove: move the last element into idx's slot so removal is O(1)
	// and doesn't preserve pool ordering (selection order is already
	// random, so this is safe).
	last := len(bucket) - 1
	bucket[idx] = bucket[last]
	s.pool[rarity] = bucket[:last]

	s.removed[rarity] = append(s.removed[rarity], card)

	return card, nil
}

// Reset moves every removed card back into the pool, restoring it to a
// state bit-identical (as a multiset) to before any Select calls since
// construction or the last Reset.
func (s *Selector) Reset() {
	for rarity, removed := range s.removed {
		if len(removed) == 0 {
			continue
		}
		s.pool[rarity] = append(s.pool[rarity], removed...)
		s.removed[rarity] = s.removed[rarity][:0]
	}
}

// Remaining reports how many cards of rarity are still in the pool.
func (s *Selector) Remaining(rarity carddb.Rarity) int {
	return len(s.pool[rarity])
}

// systemRand adapts math/rand/v2's top-level functions to the Rand
// interface for callers that don't need a seeded, deterministic source.
type systemRand struct{}

func (systemRand) IntN(n int) int   { return rand.IntN(n) }
func (systemRand) Float64() float64 { return rand.Float64() }

// SystemRand returns a Rand backed by math/rand/v2's unseeded global source.
func SystemRand() Rand { return systemRand{} }
