package domain

// TerritoryCount captures the outcome of territory analysis: per-color
// territory, neutral points (dame), and raw stone tallies.
type TerritoryCount struct {
	BlackTerritory int
	WhiteTerritory int
	Neutral        int
	BlackStones    int
	WhiteStones    int
}

// AnalyzeTerritory flood-fills every maximal region of connected empty
// intersections and attributes its size to a color iff that color is the only
// one bordering the region. Regions bordered by both colors, or by none at
// all, count as neutral. Stone counts are tallied in the same pass.
func AnalyzeTerritory(b Board) TerritoryCount {
	var out TerritoryCount
	visited := make(map[Coord]bool)

	for row := 0; row < b.Size; row++ {
		for col := 0; col < b.Size; col++ {
			c := Coord{Row: row, Col: col}
			switch b.At(c) {
			case ColorBlack:
				out.BlackStones++
				continue
			case ColorWhite:
				out.WhiteStones++
				continue
			}
			if visited[c] {
				continue
			}

			// Flood fill the empty region, tracking bordering colors.
			size := 0
			bordersBlack := false
			bordersWhite := false
			stack := []Coord{c}
			visited[c] = true
			for len(stack) > 0 {
				cur := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				size++
				for _, n := range b.Neighbors(cur) {
					switch b.At(n) {
					case ColorBlack:
						bordersBlack = true
					case ColorWhite:
						bordersWhite = true
					default:
						if !visited[n] {
							visited[n] = true
							stack = append(stack, n)
						}
					}
				}
			}

			switch {
			case bordersBlack && !bordersWhite:
				out.BlackTerritory += size
			case bordersWhite && !bordersBlack:
				out.WhiteTerritory += size
			default:
				out.Neutral += size
			}
		}
	}
	return out
}
