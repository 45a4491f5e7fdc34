package domain

// ScoringMethod selects the rule set used to compute the final score.
type ScoringMethod string

const (
	// ScoringChinese is area scoring: stones + territory.
	ScoringChinese ScoringMethod = "chinese"
	// ScoringJapanese is territory scoring: territory + captures.
	ScoringJapanese ScoringMethod = "japanese"
)

// ValidScoringMethod reports whether m names a supported method.
func ValidScoringMethod(m ScoringMethod) bool {
	return m == ScoringChinese || m == ScoringJapanese
}

// Result reasons for a completed game.
const (
	ReasonScore       = "score"
	ReasonTime        = "time"
	ReasonResignation = "resignation"
)

// PlayerScore is one color's side of a final score breakdown.
type PlayerScore struct {
	Stones    int     `json:"stones"`
	Territory int     `json:"territory"`
	Captures  int     `json:"captures"`
	Area      int     `json:"area"`
	Score     float64 `json:"score"`
}

// ScoreResult is the immutable outcome of a completed game. For games ended
// by time or resignation the breakdown fields stay zero and Reason/Message
// explain the result instead.
type ScoreResult struct {
	Method  ScoringMethod `json:"method,omitempty"`
	Black   PlayerScore   `json:"black"`
	White   PlayerScore   `json:"white"`
	Komi    float64       `json:"komi"`
	Winner  Color         `json:"winner"`
	Reason  string        `json:"reason"`
	Message string        `json:"message,omitempty"`
}

// RemoveDeadStones clears every marked coordinate that still holds a stone
// and credits one capture per removed stone to the opposite color. The input
// board is not mutated.
func RemoveDeadStones(b Board, dead map[Coord]Color) (Board, int, int) {
	next := b.Clone()
	blackBonus, whiteBonus := 0, 0
	for c := range dead {
		switch next.At(c) {
		case ColorBlack:
			whiteBonus++
		case ColorWhite:
			blackBonus++
		default:
			continue
		}
		next.Cells[c.Row][c.Col] = ColorNone
	}
	return next, blackBonus, whiteBonus
}

// ScoreGame computes the final score of a board that already had its dead
// stones removed. Capture tallies must include the dead-stone bonus. Komi is
// added to white only. An exact tie yields Winner == ColorNone.
func ScoreGame(b Board, method ScoringMethod, blackCaptures, whiteCaptures int, komi float64) ScoreResult {
	t := AnalyzeTerritory(b)

	result := ScoreResult{
		Method: method,
		Komi:   komi,
		Reason: ReasonScore,
		Black: PlayerScore{
			Stones:    t.BlackStones,
			Territory: t.BlackTerritory,
			Captures:  blackCaptures,
			Area:      t.BlackStones + t.BlackTerritory,
		},
		White: PlayerScore{
			Stones:    t.WhiteStones,
			Territory: t.WhiteTerritory,
			Captures:  whiteCaptures,
			Area:      t.WhiteStones + t.WhiteTerritory,
		},
	}

	switch method {
	case ScoringJapanese:
		result.Black.Score = float64(t.BlackTerritory + blackCaptures)
		result.White.Score = float64(t.WhiteTerritory+whiteCaptures) + komi
	default:
		result.Black.Score = float64(result.Black.Area)
		result.White.Score = float64(result.White.Area) + komi
	}

	switch {
	case result.Black.Score > result.White.Score:
		result.Winner = ColorBlack
	case result.White.Score > result.Black.Score:
		result.Winner = ColorWhite
	default:
		result.Winner = ColorNone
	}
	return result
}
