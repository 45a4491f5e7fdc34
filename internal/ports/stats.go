package ports

import "context"

// MatchOutcome describes a completed match for statistics aggregation.
// For drawn games WinnerID and LoserID carry the two participants in seat
// order and Draw is set.
type MatchOutcome struct {
	MatchID  string
	Game     string
	WinnerID string
	LoserID  string
	Draw     bool
	Reason   string
}

// StatsPort records completed match outcomes into the arena's leaderboards
// and per-player win/loss tallies. Called once per match when it reaches the
// terminal phase.
type StatsPort interface {
	RecordOutcome(ctx context.Context, outcome MatchOutcome) error
}

// StatsInitPort creates the initial per-player stats document at most once
// per user.
type StatsInitPort interface {
	// EnsureInitialStats writes the empty stats document for a new account.
	// Returns created=false when the document already exists.
	EnsureInitialStats(ctx context.Context, userID string) (bool, error)
}
