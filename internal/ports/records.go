package ports

import "context"

// MatchRecord is the persisted document of a completed match: enough to
// render a result page or feed later aggregation, not a full move log.
type MatchRecord struct {
	MatchID   string         `json:"match_id"`
	Game      string         `json:"game"`
	BlackID   string         `json:"black_id,omitempty"`
	WhiteID   string         `json:"white_id,omitempty"`
	WinnerID  string         `json:"winner_id,omitempty"`
	Reason    string         `json:"reason"`
	Komi      float64        `json:"komi,omitempty"`
	BoardSize int            `json:"board_size,omitempty"`
	Scores    map[string]any `json:"scores,omitempty"`
}

// RecordPort persists completed match documents into the arena's document
// store.
type RecordPort interface {
	SaveRecord(ctx context.Context, record MatchRecord) error
}
