package app

import (
	"errors"
	"sort"
	"time"

	"goarena/internal/domain"
)

// Service contains arena use-cases operating on domain state. Every use-case
// returns the events to dispatch; a non-nil error means nothing was mutated
// and the caller should be notified with the reason.
type Service struct {
	now func() time.Time
}

// NewService constructs a Service. now may be nil to use the wall clock;
// tests inject a fixed clock.
func NewService(now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{now: now}
}

var (
	ErrNoActiveGame = errors.New("no game in progress")
	ErrGameRunning  = errors.New("a game is already in progress")
	ErrUnknownGame  = errors.New("unknown game kind")
)

// StartGo creates the Go game for a room and emits the start event.
func (s *Service) StartGo(size int, komi float64, settings domain.TimeSettings) (*domain.GoMatch, []Event, error) {
	match, err := domain.NewGoMatch(size, komi, settings, s.now())
	if err != nil {
		return nil, nil, err
	}

	events := []Event{{
		Kind: EventGameStarted,
		Payload: GameStartedPayload{
			Game:      domain.GameGo,
			BoardSize: size,
			Komi:      komi,
			TimeMode:  settings.Mode,
			Clocks:    clockView(match.Clock),
		},
	}}
	return match, events, nil
}

// StartRound creates a single-round mini-game (rock-paper-scissors or
// matching pennies) and emits the start event.
func (s *Service) StartRound(kind domain.GameKind) (*domain.MiniRound, []Event, error) {
	if kind == domain.GameGo || !domain.ValidGameKind(kind) {
		return nil, nil, ErrUnknownGame
	}

	round := domain.NewMiniRound(kind)
	events := []Event{{
		Kind:    EventGameStarted,
		Payload: GameStartedPayload{Game: kind},
	}}
	return round, events, nil
}

// PlaceStone applies a stone placement for color and emits either the move
// event or, when the move's elapsed time expired the clock, the time-loss
// event.
func (s *Service) PlaceStone(match *domain.GoMatch, color domain.Color, at domain.Coord) ([]Event, error) {
	if match == nil {
		return nil, ErrNoActiveGame
	}

	result, err := match.PlayStone(at, color, s.now())
	if err != nil {
		return nil, err
	}
	if result.TimeExpired {
		return s.timeExpiredEvents(match, color), nil
	}

	return []Event{{
		Kind: EventMoveApplied,
		Payload: MoveAppliedPayload{
			Color:    color,
			At:       at,
			Captured: result.Captured,
			Board:    match.Board,
			NextTurn: match.Turn,
			Clocks:   clockView(match.Clock),
		},
	}}, nil
}

// Pass applies a pass for color. Entering scoring on the second consecutive
// pass is reported through the payload's Phase.
func (s *Service) Pass(match *domain.GoMatch, color domain.Color) ([]Event, error) {
	if match == nil {
		return nil, ErrNoActiveGame
	}

	result, err := match.Pass(color, s.now())
	if err != nil {
		return nil, err
	}
	if result.TimeExpired {
		return s.timeExpiredEvents(match, color), nil
	}

	return []Event{{
		Kind: EventPassApplied,
		Payload: PassAppliedPayload{
			Color:             color,
			ConsecutivePasses: result.ConsecutivePasses,
			Phase:             match.Phase,
			NextTurn:          match.Turn,
			Clocks:            clockView(match.Clock),
		},
	}}, nil
}

// ToggleDeadStone flips a dead-stone marking during scoring and broadcasts
// the full current set so both clients stay in sync.
func (s *Service) ToggleDeadStone(match *domain.GoMatch, at domain.Coord) ([]Event, error) {
	if match == nil {
		return nil, ErrNoActiveGame
	}
	if err := match.ToggleDead(at); err != nil {
		return nil, err
	}

	dead := make([]DeadStone, 0, len(match.Dead))
	for coord, color := range match.Dead {
		dead = append(dead, DeadStone{Coord: coord, Color: color})
	}
	sort.Slice(dead, func(i, j int) bool {
		if dead[i].Coord.Row != dead[j].Coord.Row {
			return dead[i].Coord.Row < dead[j].Coord.Row
		}
		return dead[i].Coord.Col < dead[j].Coord.Col
	})

	return []Event{{
		Kind:    EventDeadStonesUpdated,
		Payload: DeadStonesUpdatedPayload{Dead: dead},
	}}, nil
}

// FinalizeScore records participant's confirmation for the method. From PLAY
// it acts as a force-end: both sides are auto-confirmed and the score is
// computed immediately. required is the number of present participants.
func (s *Service) FinalizeScore(match *domain.GoMatch, method domain.ScoringMethod, participant string, required int) ([]Event, error) {
	if match == nil {
		return nil, ErrNoActiveGame
	}

	if match.Phase == domain.PhasePlay {
		if err := match.ForceEnd(method); err != nil {
			return nil, err
		}
		return s.finalizedEvents(match), nil
	}

	finalized, err := match.ProposeScoring(method, participant, required)
	if err != nil {
		return nil, err
	}
	if !finalized {
		return []Event{{
			Kind: EventScoringPending,
			Payload: ScoringPendingPayload{
				Method:    match.Scoring.Method,
				Confirmed: match.Scoring.ConfirmedCount(),
				Required:  required,
			},
		}}, nil
	}
	return s.finalizedEvents(match), nil
}

// Resign ends the game immediately with the resigning color losing.
func (s *Service) Resign(match *domain.GoMatch, color domain.Color) ([]Event, error) {
	if match == nil {
		return nil, ErrNoActiveGame
	}
	if err := match.Resign(color); err != nil {
		return nil, err
	}
	return []Event{{
		Kind: EventResigned,
		Payload: ResignedPayload{
			Color:  color,
			Winner: match.Result.Winner,
		},
	}}, nil
}

// Tick applies the periodic live clock deduction. It returns events only when
// the tick expired the color on turn and completed the match.
func (s *Service) Tick(match *domain.GoMatch) []Event {
	if match == nil {
		return nil
	}
	loser := match.Turn
	if !match.TickClock(s.now()) {
		return nil
	}
	return s.timeExpiredEvents(match, loser)
}

// SubmitPick records a mini-game pick for the seat and resolves the round
// once both picks are in.
func (s *Service) SubmitPick(round *domain.MiniRound, seat int, pick string) ([]Event, error) {
	if round == nil {
		return nil, domain.ErrRoundNotActive
	}
	if err := round.Submit(seat, pick); err != nil {
		return nil, err
	}
	if !round.Complete() {
		return nil, nil
	}
	return []Event{{
		Kind: EventRoundResolved,
		Payload: RoundResolvedPayload{
			Game:       round.Kind,
			Picks:      round.Picks,
			WinnerSeat: round.Resolve(),
		},
	}}, nil
}

func (s *Service) timeExpiredEvents(match *domain.GoMatch, loser domain.Color) []Event {
	return []Event{{
		Kind: EventTimeExpired,
		Payload: TimeExpiredPayload{
			Expired: loser,
			Winner:  match.Result.Winner,
		},
	}}
}

func (s *Service) finalizedEvents(match *domain.GoMatch) []Event {
	return []Event{{
		Kind: EventScoringFinalized,
		Payload: ScoringFinalizedPayload{
			Result: *match.Result,
			Board:  match.Board,
		},
	}}
}
