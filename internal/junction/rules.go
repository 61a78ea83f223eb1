package junction

import (
	"fmt"

	"github.com/specialistvlad/roadweaver/internal/roadnet"
)

// Mode is the junction layout.
type Mode int

const (
	// TwoLeg is a main road with one access road ("MA").
	TwoLeg Mode = iota + 1
	// ThreeLeg is a main road end with two access roads ("3A").
	ThreeLeg
)

// ParseMode reads the declared junction type.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "MA":
		return TwoLeg, nil
	case "3A":
		return ThreeLeg, nil
	}
	return 0, fmt.Errorf("%w: junction type %q", roadnet.ErrUnsupported, s)
}

func (m Mode) String() string {
	switch m {
	case TwoLeg:
		return "MA"
	case ThreeLeg:
		return "3A"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Selector picks a lane from the outermost lane id of one side.
type Selector int

const (
	// Right keeps the outermost lane.
	Right Selector = iota
	// Left takes the innermost lane.
	Left
	// Middle takes the lane halfway out.
	Middle
)

// Pick applies the selector to an outermost lane id.
func (s Selector) Pick(outer int) int {
	sign := 1
	if outer < 0 {
		sign, outer = -1, -outer
	}
	switch s {
	case Left:
		return sign
	case Middle:
		return sign * ((outer + 1) / 2)
	}
	return sign * outer
}

func (s Selector) String() string {
	return [...]string{"right", "left", "middle"}[s]
}

// Marks are the roadmark types of a connecting lane's left edge, right edge
// and centre line.
type Marks struct {
	Left, Right, Middle string
}

var (
	plain   = Marks{roadnet.MarkNone, roadnet.MarkSolid, roadnet.MarkNone}
	open    = Marks{roadnet.MarkNone, roadnet.MarkNone, roadnet.MarkNone}
	through = Marks{roadnet.MarkBroken, roadnet.MarkSolid, roadnet.MarkBroken}
	yield   = Marks{roadnet.MarkBroken, roadnet.MarkBroken, roadnet.MarkBroken}
)

// Rule is one row of the right-of-way table. From and To are stub roles
// 0..2 in canonical order.
type Rule struct {
	From, To int
	Src, Dst Selector
	Marks    Marks
}

// Rules returns the right-of-way table for a mode. For TwoLeg the sign of
// the access angle decides which pair carries the main road straight through.
func Rules(m Mode, angle float64) []Rule {
	if m == TwoLeg && angle > 0 {
		return []Rule{
			{0, 1, Right, Right, through},
			{1, 0, Middle, Left, yield},
			{1, 2, Right, Right, plain},
			{2, 1, Left, Left, open},
			{2, 0, Right, Right, plain},
			{0, 2, Left, Left, open},
		}
	}
	if m == TwoLeg {
		return []Rule{
			{0, 1, Right, Right, plain},
			{1, 0, Left, Left, open},
			{1, 2, Right, Right, plain},
			{2, 1, Left, Left, open},
			{2, 0, Right, Right, through},
			{0, 2, Middle, Left, yield},
		}
	}
	return []Rule{
		{0, 1, Right, Right, plain},
		{1, 0, Left, Left, open},
		{1, 2, Right, Right, plain},
		{2, 1, Left, Left, open},
		{2, 0, Right, Right, plain},
		{0, 2, Left, Left, open},
	}
}
