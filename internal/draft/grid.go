package draft

import "github.com/prxssh/thicketd/pkg/utils/bitfield"

// gridSlices are the six fixed lines of a 3x3 grid: three rows then
// three columns, grounded authoritatively on
// original_source/core/draft/GridHelper.cpp's static sGridSlices.
var gridSlices = [6][3]int{
	{0, 1, 2}, // row 0
	{3, 4, 5}, // row 1
	{6, 7, 8}, // row 2
	{0, 3, 6}, // col 0
	{1, 4, 7}, // col 1
	{2, 5, 8}, // col 2
}

// gridState is the Draft's scratch state while round-index points at a
// Grid round. A round alternates chairs over at most six picks, one per
// line in gridSlices, and ends the moment all nine cells are taken,
// which a legal covering can reach in as few as three picks (all three
// rows, or all three columns). A line with no unclaimed cells left is
// not a legal selection.
type gridState struct {
	cards        []Card
	taken        bitfield.Bitfield
	usedSlices   [6]bool
	activeChair  Chair
	initialChair Chair
}

// unclaimedIn returns the positions in gridSlices[idx] not yet taken.
func (g *gridState) unclaimedIn(idx int) []int {
	var out []int
	for _, pos := range gridSlices[idx] {
		if !g.taken.Has(pos) {
			out = append(out, pos)
		}
	}
	return out
}

// otherChair returns the non-active chair of the fixed two-chair grid
// round.
func otherChair(c Chair) Chair {
	if c == 0 {
		return 1
	}
	return 0
}
