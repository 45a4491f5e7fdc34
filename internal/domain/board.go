package domain

import "encoding/json"

// Color identifies the occupant of a board intersection.
type Color int8

const (
	// ColorNone marks an empty intersection (or "no winner" in results).
	ColorNone Color = iota
	// ColorBlack is the first player (host).
	ColorBlack
	// ColorWhite is the second player (guest).
	ColorWhite
)

// Opponent returns the other stone color, or ColorNone for ColorNone.
func (c Color) Opponent() Color {
	switch c {
	case ColorBlack:
		return ColorWhite
	case ColorWhite:
		return ColorBlack
	default:
		return ColorNone
	}
}

func (c Color) String() string {
	switch c {
	case ColorBlack:
		return "black"
	case ColorWhite:
		return "white"
	default:
		return "none"
	}
}

// ParseColor maps the wire representation back to a Color.
func ParseColor(s string) Color {
	switch s {
	case "black":
		return ColorBlack
	case "white":
		return ColorWhite
	default:
		return ColorNone
	}
}

// MarshalJSON writes the color as its lowercase name so payloads carry
// "black"/"white"/"none" rather than internal ordinals.
func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Color) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*c = ParseColor(s)
	return nil
}

// Coord addresses a single intersection. Row 0 is the top edge.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Board is a square grid of intersections. Legality checks operate on a
// Clone; the match aggregate only replaces its board on a committed move.
type Board struct {
	Size  int       `json:"size"`
	Cells [][]Color `json:"cells"`
}

// ValidBoardSize reports whether n is a supported board side length.
func ValidBoardSize(n int) bool {
	return n == 9 || n == 13 || n == 19
}

// NewBoard returns an empty board of the given side length.
func NewBoard(size int) Board {
	cells := make([][]Color, size)
	for i := range cells {
		cells[i] = make([]Color, size)
	}
	return Board{Size: size, Cells: cells}
}

// InBounds reports whether the coordinate lies on the board.
func (b Board) InBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < b.Size && c.Col >= 0 && c.Col < b.Size
}

// At returns the occupant of the intersection. Callers must bounds-check.
func (b Board) At(c Coord) Color {
	return b.Cells[c.Row][c.Col]
}

// Clone returns a deep copy sharing no cells with the receiver.
func (b Board) Clone() Board {
	cells := make([][]Color, b.Size)
	for i := range cells {
		cells[i] = make([]Color, b.Size)
		copy(cells[i], b.Cells[i])
	}
	return Board{Size: b.Size, Cells: cells}
}

// Neighbors returns the in-bounds orthogonally adjacent coordinates.
func (b Board) Neighbors(c Coord) []Coord {
	candidates := [4]Coord{
		{Row: c.Row - 1, Col: c.Col},
		{Row: c.Row + 1, Col: c.Col},
		{Row: c.Row, Col: c.Col - 1},
		{Row: c.Row, Col: c.Col + 1},
	}
	out := make([]Coord, 0, 4)
	for _, n := range candidates {
		if b.InBounds(n) {
			out = append(out, n)
		}
	}
	return out
}

// StoneCounts tallies the stones of each color currently on the board.
func (b Board) StoneCounts() (black, white int) {
	for _, row := range b.Cells {
		for _, cell := range row {
			switch cell {
			case ColorBlack:
				black++
			case ColorWhite:
				white++
			}
		}
	}
	return black, white
}

// Fingerprint returns a whole-board position fingerprint including the side
// to move next, used for positional superko detection.
func (b Board) Fingerprint(next Color) string {
	buf := make([]byte, 0, b.Size*b.Size+2)
	for _, row := range b.Cells {
		for _, cell := range row {
			switch cell {
			case ColorBlack:
				buf = append(buf, 'b')
			case ColorWhite:
				buf = append(buf, 'w')
			default:
				buf = append(buf, '.')
			}
		}
	}
	buf = append(buf, '|')
	switch next {
	case ColorBlack:
		buf = append(buf, 'b')
	case ColorWhite:
		buf = append(buf, 'w')
	}
	return string(buf)
}
