package search

// Direction of a match navigation step.
type Direction int

const (
	Next Direction = iota
	Prev
)

func (d Direction) String() string {
	if d == Prev {
		return "prev"
	}
	return "next"
}

// ParseDirection accepts "next" and "prev".
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "next":
		return Next, true
	case "prev":
		return Prev, true
	default:
		return Next, false
	}
}

// Navigate returns the ordinal one step away from current, wrapping at both
// ends. It returns 0 when there is nothing to navigate.
func Navigate(direction Direction, current, total int) int {
	if total <= 0 {
		return 0
	}
	if direction == Prev {
		if current <= 1 || current > total {
			return total
		}
		return current - 1
	}
	if current >= total || current < 1 {
		return 1
	}
	return current + 1
}

// Step moves the index's active ordinal and returns the new value.
func (idx *Index) Step(direction Direction) int {
	idx.Active = Navigate(direction, idx.Active, idx.Total)
	return idx.Active
}
