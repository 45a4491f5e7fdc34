package domain

import "errors"

// GameKind identifies which of the arena's games a room is playing.
type GameKind string

const (
	GameGo      GameKind = "go"
	GameRPS     GameKind = "rps"
	GamePennies GameKind = "pennies"
)

// ValidGameKind reports whether k names a hosted game.
func ValidGameKind(k GameKind) bool {
	return k == GameGo || k == GameRPS || k == GamePennies
}

// Rock-Paper-Scissors hands.
const (
	HandRock     = "rock"
	HandPaper    = "paper"
	HandScissors = "scissors"
)

// Matching Pennies sides. Seat 0 (the host) is the matcher.
const (
	SideHeads = "heads"
	SideTails = "tails"
)

var (
	ErrInvalidPick    = errors.New("invalid pick for this game")
	ErrAlreadyPicked  = errors.New("pick already submitted for this round")
	ErrRoundNotActive = errors.New("no round in progress")
)

// MiniRound collects the two players' simultaneous picks for a single round
// of RPS or Matching Pennies. Picks are indexed by seat; empty means pending.
type MiniRound struct {
	Kind  GameKind
	Picks [2]string
}

// NewMiniRound starts a fresh round of the given single-round game.
func NewMiniRound(kind GameKind) *MiniRound {
	return &MiniRound{Kind: kind}
}

// Complete reports whether both picks are in.
func (r *MiniRound) Complete() bool {
	return r.Picks[0] != "" && r.Picks[1] != ""
}

// Submit records a pick for the seat. Duplicate or invalid picks are
// rejected without mutation.
func (r *MiniRound) Submit(seat int, pick string) error {
	if seat < 0 || seat > 1 {
		return ErrInvalidPick
	}
	if !validPick(r.Kind, pick) {
		return ErrInvalidPick
	}
	if r.Picks[seat] != "" {
		return ErrAlreadyPicked
	}
	r.Picks[seat] = pick
	return nil
}

// Resolve returns the winning seat once both picks are in, or -1 for a draw.
func (r *MiniRound) Resolve() int {
	switch r.Kind {
	case GameRPS:
		return resolveRPS(r.Picks[0], r.Picks[1])
	case GamePennies:
		return resolvePennies(r.Picks[0], r.Picks[1])
	}
	return -1
}

func validPick(kind GameKind, pick string) bool {
	switch kind {
	case GameRPS:
		return pick == HandRock || pick == HandPaper || pick == HandScissors
	case GamePennies:
		return pick == SideHeads || pick == SideTails
	}
	return false
}

func resolveRPS(a, b string) int {
	if a == b {
		return -1
	}
	beats := map[string]string{
		HandRock:     HandScissors,
		HandPaper:    HandRock,
		HandScissors: HandPaper,
	}
	if beats[a] == b {
		return 0
	}
	return 1
}

// resolvePennies: the matcher (seat 0) wins when both sides match.
func resolvePennies(matcher, shooter string) int {
	if matcher == shooter {
		return 0
	}
	return 1
}
