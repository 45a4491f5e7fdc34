package domain

import "testing"

func placeStones(b *Board, color Color, coords ...Coord) {
	for _, c := range coords {
		b.Cells[c.Row][c.Col] = color
	}
}

func TestFindGroup(t *testing.T) {
	tests := []struct {
		name   string
		black  []Coord
		white  []Coord
		start  Coord
		expect int
	}{
		{
			name:   "Single stone",
			black:  []Coord{{4, 4}},
			start:  Coord{4, 4},
			expect: 1,
		},
		{
			name:   "Connected row",
			black:  []Coord{{2, 2}, {2, 3}, {2, 4}},
			start:  Coord{2, 3},
			expect: 3,
		},
		{
			name:   "L shape",
			black:  []Coord{{0, 0}, {1, 0}, {1, 1}},
			start:  Coord{0, 0},
			expect: 3,
		},
		{
			name:   "Diagonal stones are not connected",
			black:  []Coord{{3, 3}, {4, 4}},
			start:  Coord{3, 3},
			expect: 1,
		},
		{
			name:   "Enemy stone breaks the chain",
			black:  []Coord{{5, 1}, {5, 3}},
			white:  []Coord{{5, 2}},
			start:  Coord{5, 1},
			expect: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBoard(9)
			placeStones(&b, ColorBlack, tt.black...)
			placeStones(&b, ColorWhite, tt.white...)

			group := FindGroup(b, tt.start)
			if len(group) != tt.expect {
				t.Errorf("expected group of %d, got %d: %v", tt.expect, len(group), group)
			}
		})
	}
}

func TestFindGroupEmptyStart(t *testing.T) {
	b := NewBoard(9)
	if got := FindGroup(b, Coord{4, 4}); got != nil {
		t.Errorf("expected nil group for empty start, got %v", got)
	}
}

func TestFindGroupFullBoardTerminates(t *testing.T) {
	// A full 19x19 single-color board is the worst case for the flood fill.
	b := NewBoard(19)
	for r := 0; r < 19; r++ {
		for c := 0; c < 19; c++ {
			b.Cells[r][c] = ColorBlack
		}
	}
	group := FindGroup(b, Coord{0, 0})
	if len(group) != 19*19 {
		t.Errorf("expected %d stones, got %d", 19*19, len(group))
	}
}

func TestHasLiberties(t *testing.T) {
	b := NewBoard(9)
	// Black corner stone surrounded by white on both liberties.
	placeStones(&b, ColorBlack, Coord{0, 0})
	placeStones(&b, ColorWhite, Coord{0, 1}, Coord{1, 0})

	corner := FindGroup(b, Coord{0, 0})
	if HasLiberties(b, corner) {
		t.Error("fully surrounded corner stone should have no liberties")
	}

	whiteGroup := FindGroup(b, Coord{0, 1})
	if !HasLiberties(b, whiteGroup) {
		t.Error("white group should have liberties")
	}
}
