package app

import (
	"goarena/internal/domain"
)

// EventKind identifies emitted domain events for Nakama dispatch.
type EventKind string

const (
	EventGameStarted       EventKind = "game_started"
	EventMoveApplied       EventKind = "move_applied"
	EventPassApplied       EventKind = "pass_applied"
	EventDeadStonesUpdated EventKind = "dead_stones_updated"
	EventScoringPending    EventKind = "scoring_pending"
	EventScoringFinalized  EventKind = "scoring_finalized"
	EventTimeExpired       EventKind = "time_expired"
	EventResigned          EventKind = "resigned"
	EventRoundResolved     EventKind = "round_resolved"
)

// Event is a domain/app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

// ClockView is a read-only snapshot of both players' clocks for event
// payloads.
type ClockView struct {
	Mode  domain.TimeControlMode `json:"mode"`
	Black ClockSideView          `json:"black"`
	White ClockSideView          `json:"white"`
}

// ClockSideView is one color's clock snapshot. Durations are reported in
// milliseconds on the wire.
type ClockSideView struct {
	MainMillis   int64 `json:"main_ms"`
	InByoYomi    bool  `json:"in_byo_yomi"`
	PeriodMillis int64 `json:"period_ms"`
	PeriodsLeft  int   `json:"periods_left"`
}

func clockView(c *domain.Clock) *ClockView {
	if c == nil {
		return nil
	}
	return &ClockView{
		Mode:  c.Settings.Mode,
		Black: sideView(c.Remaining(domain.ColorBlack)),
		White: sideView(c.Remaining(domain.ColorWhite)),
	}
}

func sideView(s domain.ClockState) ClockSideView {
	return ClockSideView{
		MainMillis:   s.Main.Milliseconds(),
		InByoYomi:    s.InByoYomi,
		PeriodMillis: s.PeriodTime.Milliseconds(),
		PeriodsLeft:  s.PeriodsLeft,
	}
}

// DeadStone is one marked coordinate with the color occupying it when marked.
type DeadStone struct {
	Coord domain.Coord `json:"coord"`
	Color domain.Color `json:"color"`
}

type GameStartedPayload struct {
	Game      domain.GameKind        `json:"game"`
	BoardSize int                    `json:"board_size,omitempty"`
	Komi      float64                `json:"komi,omitempty"`
	TimeMode  domain.TimeControlMode `json:"time_mode,omitempty"`
	Clocks    *ClockView             `json:"clocks,omitempty"`
}

type MoveAppliedPayload struct {
	Color    domain.Color   `json:"color"`
	At       domain.Coord   `json:"at"`
	Captured []domain.Coord `json:"captured,omitempty"`
	Board    domain.Board   `json:"board"`
	NextTurn domain.Color   `json:"next_turn"`
	Clocks   *ClockView     `json:"clocks,omitempty"`
}

type PassAppliedPayload struct {
	Color             domain.Color     `json:"color"`
	ConsecutivePasses int              `json:"consecutive_passes"`
	Phase             domain.GamePhase `json:"phase"`
	NextTurn          domain.Color     `json:"next_turn"`
	Clocks            *ClockView       `json:"clocks,omitempty"`
}

type DeadStonesUpdatedPayload struct {
	Dead []DeadStone `json:"dead"`
}

type ScoringPendingPayload struct {
	Method    domain.ScoringMethod `json:"method"`
	Confirmed int                  `json:"confirmed"`
	Required  int                  `json:"required"`
}

type ScoringFinalizedPayload struct {
	Result domain.ScoreResult `json:"result"`
	Board  domain.Board       `json:"board"`
}

type TimeExpiredPayload struct {
	Expired domain.Color `json:"expired"`
	Winner  domain.Color `json:"winner"`
}

type ResignedPayload struct {
	Color  domain.Color `json:"color"`
	Winner domain.Color `json:"winner"`
}

type RoundResolvedPayload struct {
	Game       domain.GameKind `json:"game"`
	Picks      [2]string       `json:"picks"`
	WinnerSeat int             `json:"winner_seat"` // -1 on draw
}
