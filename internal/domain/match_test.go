package domain

import (
	"errors"
	"testing"
	"time"
)

var matchEpoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestMatch(t *testing.T) *GoMatch {
	t.Helper()
	m, err := NewGoMatch(9, 6.5, TimeSettings{Mode: TimeControlNone}, matchEpoch)
	if err != nil {
		t.Fatalf("NewGoMatch: %v", err)
	}
	return m
}

func TestNewGoMatchRejectsBadSize(t *testing.T) {
	_, err := NewGoMatch(10, 6.5, TimeSettings{}, matchEpoch)
	if !errors.Is(err, ErrBadBoardSize) {
		t.Errorf("expected ErrBadBoardSize, got %v", err)
	}
}

func TestOpeningMovesAlternateTurns(t *testing.T) {
	// 9x9 empty board: black (4,4), white (4,5); no captures, no rejections,
	// next turn black.
	m := newTestMatch(t)

	res, err := m.PlayStone(Coord{4, 4}, ColorBlack, matchEpoch)
	if err != nil {
		t.Fatalf("black move failed: %v", err)
	}
	if len(res.Captured) != 0 {
		t.Errorf("expected no captures, got %v", res.Captured)
	}

	res, err = m.PlayStone(Coord{4, 5}, ColorWhite, matchEpoch)
	if err != nil {
		t.Fatalf("white move failed: %v", err)
	}
	if len(res.Captured) != 0 {
		t.Errorf("expected no captures, got %v", res.Captured)
	}

	if m.Turn != ColorBlack {
		t.Errorf("expected black to move next, got %v", m.Turn)
	}
}

func TestPlayStoneOutOfTurnRejected(t *testing.T) {
	m := newTestMatch(t)

	_, err := m.PlayStone(Coord{2, 2}, ColorWhite, matchEpoch)
	if !errors.Is(err, ErrNotYourTurn) {
		t.Errorf("expected ErrNotYourTurn, got %v", err)
	}
	if m.Board.At(Coord{2, 2}) != ColorNone {
		t.Error("rejected move must not touch the board")
	}
}

func TestCaptureTalliesAccumulate(t *testing.T) {
	m := newTestMatch(t)

	moves := []struct {
		at    Coord
		color Color
	}{
		{Coord{0, 0}, ColorBlack},
		{Coord{0, 1}, ColorWhite},
		{Coord{8, 8}, ColorBlack},
		{Coord{1, 0}, ColorWhite}, // captures black (0,0)
	}
	for _, mv := range moves {
		if _, err := m.PlayStone(mv.at, mv.color, matchEpoch); err != nil {
			t.Fatalf("move %v failed: %v", mv.at, err)
		}
	}

	if m.CapturesWhite != 1 || m.CapturesBlack != 0 {
		t.Errorf("expected white 1 / black 0 captures, got %d / %d", m.CapturesWhite, m.CapturesBlack)
	}
}

func TestPassCounterAndScoringTransition(t *testing.T) {
	m := newTestMatch(t)

	res, err := m.Pass(ColorBlack, matchEpoch)
	if err != nil {
		t.Fatalf("pass failed: %v", err)
	}
	if res.ConsecutivePasses != 1 || res.ScoringEntered {
		t.Errorf("unexpected first pass result: %+v", res)
	}

	// A placement resets the counter.
	if _, err := m.PlayStone(Coord{3, 3}, ColorWhite, matchEpoch); err != nil {
		t.Fatalf("move failed: %v", err)
	}
	if m.ConsecutivePasses != 0 {
		t.Errorf("placement must reset pass counter, got %d", m.ConsecutivePasses)
	}

	// Two consecutive passes force scoring.
	if _, err := m.Pass(ColorBlack, matchEpoch); err != nil {
		t.Fatalf("pass failed: %v", err)
	}
	res, err = m.Pass(ColorWhite, matchEpoch)
	if err != nil {
		t.Fatalf("pass failed: %v", err)
	}
	if !res.ScoringEntered {
		t.Error("second consecutive pass must enter scoring")
	}
	if m.Phase != PhaseScoring {
		t.Errorf("expected scoring phase, got %v", m.Phase)
	}
}

func TestToggleDeadClearsConfirmations(t *testing.T) {
	m := newTestMatch(t)
	if _, err := m.PlayStone(Coord{2, 2}, ColorBlack, matchEpoch); err != nil {
		t.Fatal(err)
	}
	m.Pass(ColorWhite, matchEpoch)
	m.Pass(ColorBlack, matchEpoch)

	if _, err := m.ProposeScoring(ScoringChinese, "host", 2); err != nil {
		t.Fatalf("propose failed: %v", err)
	}
	if m.Scoring.ConfirmedCount() != 1 {
		t.Fatalf("expected 1 confirmation, got %d", m.Scoring.ConfirmedCount())
	}

	if err := m.ToggleDead(Coord{2, 2}); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if m.Scoring.ConfirmedCount() != 0 {
		t.Error("dead-stone change must clear confirmations")
	}
	if m.Dead[Coord{2, 2}] != ColorBlack {
		t.Error("marked stone must be tagged with its occupant color")
	}

	// Toggling again unmarks.
	if err := m.ToggleDead(Coord{2, 2}); err != nil {
		t.Fatalf("second toggle failed: %v", err)
	}
	if _, marked := m.Dead[Coord{2, 2}]; marked {
		t.Error("second toggle must unmark the stone")
	}
}

func TestToggleDeadRequiresOccupiedCell(t *testing.T) {
	m := newTestMatch(t)
	m.Pass(ColorBlack, matchEpoch)
	m.Pass(ColorWhite, matchEpoch)

	if err := m.ToggleDead(Coord{5, 5}); !errors.Is(err, ErrCellEmpty) {
		t.Errorf("expected ErrCellEmpty, got %v", err)
	}
}

func TestConflictingMethodWhileConfirmationsPending(t *testing.T) {
	m := newTestMatch(t)
	m.Pass(ColorBlack, matchEpoch)
	m.Pass(ColorWhite, matchEpoch)

	if _, err := m.ProposeScoring(ScoringChinese, "host", 2); err != nil {
		t.Fatal(err)
	}
	_, err := m.ProposeScoring(ScoringJapanese, "guest", 2)
	if !errors.Is(err, ErrScoringInProgress) {
		t.Errorf("expected ErrScoringInProgress, got %v", err)
	}
}

func TestFinalizeRequiresAllPresentParticipants(t *testing.T) {
	m := newTestMatch(t)
	m.Pass(ColorBlack, matchEpoch)
	m.Pass(ColorWhite, matchEpoch)

	final, err := m.ProposeScoring(ScoringChinese, "host", 2)
	if err != nil || final {
		t.Fatalf("expected pending, got final=%v err=%v", final, err)
	}
	final, err = m.ProposeScoring(ScoringChinese, "guest", 2)
	if err != nil || !final {
		t.Fatalf("expected finalized, got final=%v err=%v", final, err)
	}
	if m.Phase != PhaseComplete || m.Result == nil {
		t.Error("finalized match must be complete with a result")
	}
}

func TestFinalizeWithSingleParticipant(t *testing.T) {
	m := newTestMatch(t)
	m.Pass(ColorBlack, matchEpoch)
	m.Pass(ColorWhite, matchEpoch)

	final, err := m.ProposeScoring(ScoringChinese, "host", 1)
	if err != nil || !final {
		t.Fatalf("one confirmation must suffice when alone, got final=%v err=%v", final, err)
	}
}

func TestForceEndBypassesNegotiation(t *testing.T) {
	m := newTestMatch(t)
	if err := m.ForceEnd(""); err != nil {
		t.Fatalf("force end failed: %v", err)
	}
	if m.Phase != PhaseComplete || m.Result == nil {
		t.Error("force end must complete with a computed score")
	}
	if m.Result.Method != ScoringChinese {
		t.Errorf("expected default method, got %v", m.Result.Method)
	}
}

func TestResign(t *testing.T) {
	m := newTestMatch(t)

	if err := m.Resign(ColorBlack); err != nil {
		t.Fatalf("resign failed: %v", err)
	}
	if m.Result.Winner != ColorWhite || m.Result.Reason != ReasonResignation {
		t.Errorf("unexpected result: %+v", m.Result)
	}

	if err := m.Resign(ColorWhite); !errors.Is(err, ErrMatchComplete) {
		t.Errorf("resigning a complete match must fail, got %v", err)
	}
}

func TestDeadStoneBonusFlowsIntoScore(t *testing.T) {
	m := newTestMatch(t)
	if _, err := m.PlayStone(Coord{4, 4}, ColorBlack, matchEpoch); err != nil {
		t.Fatal(err)
	}
	if _, err := m.PlayStone(Coord{0, 0}, ColorWhite, matchEpoch); err != nil {
		t.Fatal(err)
	}
	m.Pass(ColorBlack, matchEpoch)
	m.Pass(ColorWhite, matchEpoch)

	// Mark the lone white stone dead and finalize with Japanese counting:
	// black receives the removal as a capture.
	if err := m.ToggleDead(Coord{0, 0}); err != nil {
		t.Fatal(err)
	}
	if _, err := m.ProposeScoring(ScoringJapanese, "host", 1); err != nil {
		t.Fatal(err)
	}
	if m.Result.Black.Captures != 1 {
		t.Errorf("expected dead-stone bonus capture for black, got %d", m.Result.Black.Captures)
	}
	if m.Board.At(Coord{0, 0}) != ColorNone {
		t.Error("dead stone must be removed before territory analysis")
	}
}

func TestTimeLossFromTick(t *testing.T) {
	m, err := NewGoMatch(9, 6.5, TimeSettings{
		Mode: TimeControlFischer,
		Main: 5 * time.Second,
	}, matchEpoch)
	if err != nil {
		t.Fatal(err)
	}

	if m.TickClock(matchEpoch.Add(2 * time.Second)) {
		t.Fatal("clock still has time, must not expire")
	}
	if !m.TickClock(matchEpoch.Add(10 * time.Second)) {
		t.Fatal("expected time loss")
	}
	if m.Phase != PhaseComplete {
		t.Errorf("expected complete phase, got %v", m.Phase)
	}
	if m.Result.Winner != ColorWhite || m.Result.Reason != ReasonTime {
		t.Errorf("unexpected result: %+v", m.Result)
	}

	// Completed match: the tick sweep re-check makes further ticks no-ops.
	if m.TickClock(matchEpoch.Add(time.Minute)) {
		t.Error("completed match must ignore ticks")
	}
}

func TestPositionHistoryIsBounded(t *testing.T) {
	m := newTestMatch(t)
	for i := 0; i < maxPositionHistory+20; i++ {
		m.appendHistory(m.Board.Fingerprint(ColorBlack))
	}
	if len(m.History) != maxPositionHistory {
		t.Errorf("history must cap at %d, got %d", maxPositionHistory, len(m.History))
	}
}
