// Package deckhash computes the Cockatrice-compatible deck hash described
// in SPEC_FULL.md §4.6, grounded byte-for-byte on
// original_source/server/DeckHashing.h: Main-then-Sideboard card name
// enumeration (with Cockatrice's own name-normalization rules), a
// lexicographic sort, a semicolon join, SHA-1, and the first five hash
// bytes repacked as a 40-bit big-endian integer rendered in base 32.
package deckhash

import (
	"crypto/sha1"
	"regexp"
	"sort"
	"strings"

	"github.com/prxssh/thicketd/internal/inventory"
)

var slashRun = regexp.MustCompile(`\s*/+\s*`)

// basicLandNames mirrors stringify(BasicLandType) lowercased; order must
// match inventory.BasicLand's iota values.
var basicLandNames = [...]string{"plains", "island", "swamp", "mountain", "forest"}

// normalizeName applies Cockatrice's own decklist normalization: the two
// UTF-8 substitutions it special-cases, slash-run collapsing for split
// cards, then lowercasing.
func normalizeName(name string) string {
	name = strings.ReplaceAll(name, "Æ", "AE")
	name = strings.ReplaceAll(name, "’", "'")
	name = slashRun.ReplaceAllString(name, " // ")
	return strings.ToLower(name)
}

// Compute returns the 8-character base-32 deck hash for inv, matching
// Cockatrice's own hash of an equivalent decklist.
func Compute(inv *inventory.Inventory) string {
	var deck []string

	for _, zone := range []inventory.ZoneType{inventory.Main, inventory.Sideboard} {
		prefix := ""
		if zone == inventory.Sideboard {
			prefix = "SB:"
		}

		for _, card := range inv.Cards(zone) {
			deck = append(deck, prefix+normalizeName(card.Name))
		}

		for i := range basicLandNames {
			b := inventory.BasicLand(i)
			qty := inv.BasicLandQuantity(b, zone)
			for range qty {
				deck = append(deck, prefix+basicLandNames[i])
			}
		}
	}

	sort.Strings(deck)
	joined := strings.Join(deck, ";")

	sum := sha1.Sum([]byte(joined))

	var number uint64
	for i := range 5 {
		number = (number << 8) | uint64(sum[i])
	}

	return padLeft(toBase32(number), 8, '0')
}

const base32Digits = "0123456789abcdefghijklmnopqrstuv"

// toBase32 renders n in base 32 using the same digit alphabet Qt's
// QString::number(n, 32) uses (0-9 then a-v).
func toBase32(n uint64) string {
	if n == 0 {
		return "0"
	}

	var buf [16]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = base32Digits[n%32]
		n /= 32
	}

	return string(buf[i:])
}

func padLeft(s string, width int, pad byte) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(string(pad), width-len(s)) + s
}
