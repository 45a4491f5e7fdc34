package domain

import (
	"errors"
	"time"
)

// GamePhase is the lifecycle stage of a Go game inside a match.
type GamePhase string

const (
	// PhasePlay is active stone placement.
	PhasePlay GamePhase = "play"
	// PhaseScoring is dead-stone negotiation after a double pass or force-end.
	PhaseScoring GamePhase = "scoring"
	// PhaseComplete is terminal; the result is immutable from here on.
	PhaseComplete GamePhase = "complete"
)

// maxPositionHistory bounds the superko lookback window. Oldest fingerprints
// are evicted first, so detection covers a finite recent history rather than
// the whole game.
const maxPositionHistory = 128

// Phase and negotiation errors. All reject the request without mutating the
// match.
var (
	ErrWrongPhase        = errors.New("operation not allowed in current phase")
	ErrNotYourTurn       = errors.New("not your turn")
	ErrMatchComplete     = errors.New("match already complete")
	ErrCellEmpty         = errors.New("intersection holds no stone")
	ErrScoringInProgress = errors.New("scoring already in progress with a different method")
	ErrUnknownMethod     = errors.New("unknown scoring method")
	ErrBadBoardSize      = errors.New("unsupported board size")
)

// ScoringState is the small negotiation state machine for finalizing a score:
// a proposed method plus the set of participants who confirmed it. Any
// dead-stone change resets the confirmations, forcing re-agreement.
type ScoringState struct {
	Method    ScoringMethod
	Confirmed map[string]bool
}

// Propose records participant's agreement to finalize with method. Proposing
// a different method while confirmations for the current one are pending is
// rejected; proposing it with no confirmations outstanding replaces the
// pending method.
func (s *ScoringState) Propose(method ScoringMethod, participant string) error {
	if !ValidScoringMethod(method) {
		return ErrUnknownMethod
	}
	if s.Method != "" && s.Method != method {
		if len(s.Confirmed) > 0 {
			return ErrScoringInProgress
		}
		s.Method = method
	}
	if s.Method == "" {
		s.Method = method
	}
	if s.Confirmed == nil {
		s.Confirmed = make(map[string]bool)
	}
	s.Confirmed[participant] = true
	return nil
}

// ResetConfirmations clears all pending agreements but keeps the proposed
// method as the default for the next round of confirmation.
func (s *ScoringState) ResetConfirmations() {
	s.Confirmed = nil
}

// ConfirmedCount returns how many participants have agreed so far.
func (s *ScoringState) ConfirmedCount() int {
	return len(s.Confirmed)
}

// GoMatch is the authoritative aggregate for one game of Go between two
// participants. Black is the first player (host), white the second. The
// board is replaced wholesale on each accepted move; legality checks never
// touch the committed board.
type GoMatch struct {
	Board    Board
	Previous Board
	Turn     Color

	ConsecutivePasses int
	CapturesBlack     int
	CapturesWhite     int

	History []string // bounded position fingerprints, FIFO eviction
	Komi    float64

	Phase   GamePhase
	Dead    map[Coord]Color // marked dead stones, tagged with occupant color
	Scoring ScoringState
	Clock   *Clock
	Result  *ScoreResult
}

// NewGoMatch starts a game on an empty board with black to move. The clock,
// when enabled, starts running immediately.
func NewGoMatch(size int, komi float64, settings TimeSettings, now time.Time) (*GoMatch, error) {
	if !ValidBoardSize(size) {
		return nil, ErrBadBoardSize
	}
	board := NewBoard(size)
	m := &GoMatch{
		Board:   board,
		Turn:    ColorBlack,
		Komi:    komi,
		Phase:   PhasePlay,
		Dead:    make(map[Coord]Color),
		Clock:   NewClock(settings, now),
		History: []string{board.Fingerprint(ColorBlack)},
	}
	return m, nil
}

// MoveResult reports the outcome of an accepted placement, or a time loss
// detected while processing it.
type MoveResult struct {
	Captured    []Coord
	TimeExpired bool
}

// PassResult reports the outcome of an accepted pass.
type PassResult struct {
	ConsecutivePasses int
	ScoringEntered    bool
	TimeExpired       bool
}

// PlayStone validates and commits a stone placement for color. Rule
// violations leave the match untouched, including the clock. A legal move
// whose elapsed time expires the clock completes the match as a time loss
// without committing the stone.
func (m *GoMatch) PlayStone(at Coord, color Color, now time.Time) (MoveResult, error) {
	if m.Phase != PhasePlay {
		return MoveResult{}, ErrWrongPhase
	}
	if color != m.Turn {
		return MoveResult{}, ErrNotYourTurn
	}

	next, captured, err := ApplyMove(m.Board, at, color, m.History)
	if err != nil {
		return MoveResult{}, err
	}

	if m.Clock != nil && m.Clock.ApplyMove(color, now) {
		m.completeOnTime(color)
		return MoveResult{TimeExpired: true}, nil
	}

	m.Previous = m.Board
	m.Board = next
	m.ConsecutivePasses = 0
	m.appendHistory(next.Fingerprint(color.Opponent()))
	switch color {
	case ColorBlack:
		m.CapturesBlack += len(captured)
	case ColorWhite:
		m.CapturesWhite += len(captured)
	}
	m.Turn = color.Opponent()

	return MoveResult{Captured: captured}, nil
}

// Pass switches the turn without touching the board and advances the clock
// exactly as a move would. The second consecutive pass forces the transition
// to scoring with the default method proposed but unconfirmed.
func (m *GoMatch) Pass(color Color, now time.Time) (PassResult, error) {
	if m.Phase != PhasePlay {
		return PassResult{}, ErrWrongPhase
	}
	if color != m.Turn {
		return PassResult{}, ErrNotYourTurn
	}

	if m.Clock != nil && m.Clock.ApplyMove(color, now) {
		m.completeOnTime(color)
		return PassResult{TimeExpired: true}, nil
	}

	m.ConsecutivePasses++
	m.Turn = color.Opponent()

	result := PassResult{ConsecutivePasses: m.ConsecutivePasses}
	if m.ConsecutivePasses >= 2 {
		m.Phase = PhaseScoring
		if m.Scoring.Method == "" {
			m.Scoring.Method = ScoringChinese
		}
		result.ScoringEntered = true
	}
	return result, nil
}

// ToggleDead flips the dead/alive marking of an occupied intersection during
// scoring. Any change invalidates all pending confirmations.
func (m *GoMatch) ToggleDead(at Coord) error {
	if m.Phase != PhaseScoring {
		return ErrWrongPhase
	}
	if !m.Board.InBounds(at) {
		return ErrOutOfBounds
	}
	if _, marked := m.Dead[at]; marked {
		delete(m.Dead, at)
	} else {
		occupant := m.Board.At(at)
		if occupant == ColorNone {
			return ErrCellEmpty
		}
		m.Dead[at] = occupant
	}
	m.Scoring.ResetConfirmations()
	return nil
}

// ProposeScoring records participant's confirmation for finalizing with
// method and finalizes once required confirmations are in. required is the
// number of present participants (one suffices when the guest never joined).
func (m *GoMatch) ProposeScoring(method ScoringMethod, participant string, required int) (bool, error) {
	if m.Phase != PhaseScoring {
		return false, ErrWrongPhase
	}
	if err := m.Scoring.Propose(method, participant); err != nil {
		return false, err
	}
	if m.Scoring.ConfirmedCount() < required {
		return false, nil
	}
	m.finalize(m.Scoring.Method)
	return true, nil
}

// ForceEnd skips the confirmation protocol: both sides are treated as agreed
// and the score is computed immediately. An empty method falls back to the
// proposed one, or Chinese counting when nothing was proposed.
func (m *GoMatch) ForceEnd(method ScoringMethod) error {
	switch m.Phase {
	case PhasePlay, PhaseScoring:
	default:
		return ErrMatchComplete
	}
	if method == "" {
		method = m.Scoring.Method
	}
	if method == "" {
		method = ScoringChinese
	}
	if !ValidScoringMethod(method) {
		return ErrUnknownMethod
	}
	m.finalize(method)
	return nil
}

// Resign ends the match immediately: the resigning color loses and no
// territory breakdown is produced.
func (m *GoMatch) Resign(color Color) error {
	if m.Phase == PhaseComplete {
		return ErrMatchComplete
	}
	m.Phase = PhaseComplete
	m.Result = &ScoreResult{
		Winner:  color.Opponent(),
		Komi:    m.Komi,
		Reason:  ReasonResignation,
		Message: color.String() + " resigned",
	}
	return nil
}

// TickClock applies the periodic live deduction to whichever color holds the
// turn. Returns true when the tick expired that color and completed the
// match. Safe to call in any phase; it only acts during play with an active
// clock.
func (m *GoMatch) TickClock(now time.Time) bool {
	if m.Phase != PhasePlay || m.Clock == nil {
		return false
	}
	if m.Clock.ApplyTick(m.Turn, now) {
		m.completeOnTime(m.Turn)
		return true
	}
	return false
}

func (m *GoMatch) finalize(method ScoringMethod) {
	cleared, blackBonus, whiteBonus := RemoveDeadStones(m.Board, m.Dead)
	result := ScoreGame(cleared, method, m.CapturesBlack+blackBonus, m.CapturesWhite+whiteBonus, m.Komi)
	m.Board = cleared
	m.Result = &result
	m.Phase = PhaseComplete
}

func (m *GoMatch) completeOnTime(loser Color) {
	m.Phase = PhaseComplete
	m.Result = &ScoreResult{
		Winner:  loser.Opponent(),
		Komi:    m.Komi,
		Reason:  ReasonTime,
		Message: loser.String() + " ran out of time",
	}
}

func (m *GoMatch) appendHistory(fingerprint string) {
	m.History = append(m.History, fingerprint)
	if len(m.History) > maxPositionHistory {
		m.History = m.History[len(m.History)-maxPositionHistory:]
	}
}
