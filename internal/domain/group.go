package domain

// FindGroup returns every coordinate of the connected same-colored group
// containing start, or nil when start is empty. The fill is iterative with an
// explicit stack so a full 19x19 board carries no recursion-depth risk.
func FindGroup(b Board, start Coord) []Coord {
	color := b.At(start)
	if color == ColorNone {
		return nil
	}

	visited := map[Coord]bool{start: true}
	stack := []Coord{start}
	group := make([]Coord, 0, 4)

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		group = append(group, cur)

		for _, n := range b.Neighbors(cur) {
			if visited[n] || b.At(n) != color {
				continue
			}
			visited[n] = true
			stack = append(stack, n)
		}
	}
	return group
}

// HasLiberties reports whether any stone in the group has an empty in-bounds
// neighbor. A group with zero liberties is capturable (or an illegal suicide).
func HasLiberties(b Board, group []Coord) bool {
	for _, c := range group {
		for _, n := range b.Neighbors(c) {
			if b.At(n) == ColorNone {
				return true
			}
		}
	}
	return false
}
