package domain

import "errors"

// Rule violations and request validation errors for stone placement. These
// reject the request synchronously; no state is mutated on any of them.
var (
	ErrOutOfBounds = errors.New("coordinate out of bounds")
	ErrOccupied    = errors.New("intersection already occupied")
	ErrSuicide     = errors.New("suicide move is not allowed")
	ErrSuperko     = errors.New("move recreates a previous board position")
)

// ApplyMove places a stone of the given color and resolves captures on a
// scratch copy of the board. It returns the resulting board and the captured
// coordinates, or an error when the move is illegal. The input board is never
// mutated.
//
// Rule order matters: captures are resolved before the suicide check, so a
// move that empties an adjacent enemy group is legal even if it would
// otherwise be suicide. When any capture occurred the self-liberty check is
// skipped entirely; removing the enemy stones necessarily frees a liberty of
// the placed group. The superko fingerprint is taken from the post-capture
// board with the opponent to move next.
func ApplyMove(b Board, at Coord, color Color, history []string) (Board, []Coord, error) {
	if !b.InBounds(at) {
		return Board{}, nil, ErrOutOfBounds
	}
	if b.At(at) != ColorNone {
		return Board{}, nil, ErrOccupied
	}

	next := b.Clone()
	next.Cells[at.Row][at.Col] = color

	// Union the dead stones of every adjacent enemy group. A single placement
	// may capture multiple independent groups at once.
	captured := make([]Coord, 0)
	seen := make(map[Coord]bool)
	for _, n := range next.Neighbors(at) {
		if next.At(n) != color.Opponent() || seen[n] {
			continue
		}
		group := FindGroup(next, n)
		if HasLiberties(next, group) {
			for _, g := range group {
				seen[g] = true
			}
			continue
		}
		for _, g := range group {
			if !seen[g] {
				seen[g] = true
				captured = append(captured, g)
			}
		}
	}
	for _, c := range captured {
		next.Cells[c.Row][c.Col] = ColorNone
	}

	if len(captured) == 0 {
		own := FindGroup(next, at)
		if !HasLiberties(next, own) {
			return Board{}, nil, ErrSuicide
		}
	}

	fingerprint := next.Fingerprint(color.Opponent())
	for _, prev := range history {
		if prev == fingerprint {
			return Board{}, nil, ErrSuperko
		}
	}

	return next, captured, nil
}
