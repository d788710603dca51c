// Package inventory implements the per-player card bucket described in
// SPEC_FULL.md §3 and the Glossary's zone definitions, grounded on
// original_source/core/cards/PlayerInventory.{h,cpp}: four zones
// (Auto, Main, Sideboard, Junk), cards moved by value-equality
// find-then-erase-then-append, and separately-tracked basic land counts
// per zone.
package inventory

import (
	"fmt"

	"github.com/prxssh/thicketd/internal/carddb"
)

// ZoneType is one of the four buckets an Inventory partitions cards into.
type ZoneType uint8

const (
	Auto ZoneType = iota
	Main
	Sideboard
	Junk
)

func (z ZoneType) String() string {
	switch z {
	case Auto:
		return "Auto"
	case Main:
		return "Main"
	case Sideboard:
		return "Sideboard"
	case Junk:
		return "Junk"
	default:
		return "Unknown"
	}
}

// zoneCount is the number of ZoneType values, used to size the
// per-zone arrays.
const zoneCount = 4

// BasicLand is one of the five basic land types, tracked as a count
// rather than as discrete Card values since a player's land count is
// unbounded by the card pool.
type BasicLand uint8

const (
	Plains BasicLand = iota
	Island
	Swamp
	Mountain
	Forest
)

const basicLandCount = 5

// Inventory is a single player's accumulated card pool, partitioned into
// zones. It is owned by the Player Adapter (SPEC_FULL.md §3), not by the
// Draft engine: the engine only emits notifications describing where a
// card landed, and the adapter applies them here.
type Inventory struct {
	cards      [zoneCount][]carddb.Card
	basicLands [zoneCount][basicLandCount]int
}

// New returns an empty Inventory.
func New() *Inventory {
	return &Inventory{}
}

// Add places card into zone, with no effect on any other zone.
func (inv *Inventory) Add(card carddb.Card, zone ZoneType) error {
	if int(zone) >= zoneCount {
		return fmt.Errorf("inventory: invalid zone %d", zone)
	}
	inv.cards[zone] = append(inv.cards[zone], card)
	return nil
}

// Move relocates the first card in zoneFrom equal to card into zoneTo.
// It reports false if no matching card is found in zoneFrom.
func (inv *Inventory) Move(card carddb.Card, zoneFrom, zoneTo ZoneType) (bool, error) {
	if int(zoneFrom) >= zoneCount || int(zoneTo) >= zoneCount {
		return false, fmt.Errorf("inventory: invalid zone (from=%d to=%d)", zoneFrom, zoneTo)
	}

	from := inv.cards[zoneFrom]
	for i, c := range from {
		if c != card {
			continue
		}

		inv.cards[zoneFrom] = append(from[:i], from[i+1:]...)
		inv.cards[zoneTo] = append(inv.cards[zoneTo], card)
		return true, nil
	}

	return false, nil
}

// AdjustBasicLand changes the count of basic in zone by adj (which may be
// negative). It reports false and leaves the count unchanged if the
// result would go negative.
func (inv *Inventory) AdjustBasicLand(basic BasicLand, zone ZoneType, adj int) (bool, error) {
	if int(zone) >= zoneCount {
		return false, fmt.Errorf("inventory: invalid zone %d", zone)
	}
	if int(basic) >= basicLandCount {
		return false, fmt.Errorf("inventory: invalid basic land type %d", basic)
	}

	newQty := inv.basicLands[zone][basic] + adj
	if newQty < 0 {
		return false, nil
	}

	inv.basicLands[zone][basic] = newQty
	return true, nil
}

// BasicLandQuantity returns the count of basic currently held in zone.
func (inv *Inventory) BasicLandQuantity(basic BasicLand, zone ZoneType) int {
	if int(zone) >= zoneCount || int(basic) >= basicLandCount {
		return 0
	}
	return inv.basicLands[zone][basic]
}

// Cards returns the cards held in zone. The caller must not mutate the
// returned slice.
func (inv *Inventory) Cards(zone ZoneType) []carddb.Card {
	if int(zone) >= zoneCount {
		return nil
	}
	return inv.cards[zone]
}

// Size returns the total count of cards plus basic lands across every
// zone.
func (inv *Inventory) Size() int {
	total := 0
	for z := range zoneCount {
		total += inv.size(ZoneType(z))
	}
	return total
}

// SizeOf returns the total count of cards plus basic lands in zone.
func (inv *Inventory) SizeOf(zone ZoneType) int {
	if int(zone) >= zoneCount {
		return 0
	}
	return inv.size(zone)
}

func (inv *Inventory) size(zone ZoneType) int {
	total := len(inv.cards[zone])
	for _, qty := range inv.basicLands[zone] {
		total += qty
	}
	return total
}

// Clear empties every zone.
func (inv *Inventory) Clear() {
	for z := range zoneCount {
		inv.cards[z] = nil
		inv.basicLands[z] = [basicLandCount]int{}
	}
}
