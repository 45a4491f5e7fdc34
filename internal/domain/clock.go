package domain

import "time"

// TimeControlMode selects the clock rules for a match.
type TimeControlMode string

const (
	// TimeControlNone disables the clock entirely.
	TimeControlNone TimeControlMode = "none"
	// TimeControlFischer adds a fixed increment after every non-expiring move.
	TimeControlFischer TimeControlMode = "fischer"
	// TimeControlByoYomi switches into Japanese overtime periods when main
	// time runs out.
	TimeControlByoYomi TimeControlMode = "byoyomi"
)

// TimeSettings is the immutable clock configuration fixed at match creation.
type TimeSettings struct {
	Mode       TimeControlMode
	Main       time.Duration
	Increment  time.Duration // fischer only
	PeriodTime time.Duration // byo-yomi only
	Periods    int           // byo-yomi only
}

// ClockState is one color's mutable clock.
type ClockState struct {
	Main        time.Duration
	InByoYomi   bool
	PeriodTime  time.Duration
	PeriodsLeft int
}

// Clock tracks both players' remaining time. Only the color on turn is ever
// deducted, driven either by an accepted move/pass or by the periodic match
// tick. StartedAt is shared and advanced to "now" after every deduction so
// elapsed-time math never double-counts. Once Expired is set no method
// mutates the clock again.
type Clock struct {
	Settings  TimeSettings
	Black     ClockState
	White     ClockState
	StartedAt time.Time
	Expired   Color
}

// NewClock builds a clock from settings, started at now. Returns nil when the
// mode disables time control.
func NewClock(settings TimeSettings, now time.Time) *Clock {
	if settings.Mode == TimeControlNone || settings.Mode == "" {
		return nil
	}
	initial := ClockState{Main: settings.Main}
	return &Clock{
		Settings:  settings,
		Black:     initial,
		White:     initial,
		StartedAt: now,
	}
}

func (c *Clock) state(color Color) *ClockState {
	if color == ColorBlack {
		return &c.Black
	}
	return &c.White
}

// Remaining returns a copy of the given color's clock state.
func (c *Clock) Remaining(color Color) ClockState {
	return *c.state(color)
}

// ApplyMove deducts elapsed time for an accepted move or pass by color and
// applies the post-move behavior of the configured mode: the Fischer
// increment (uncapped, skipped when the move expired the clock) or the
// byo-yomi period reset/consumption. Reports whether the color's flag is now
// expired.
func (c *Clock) ApplyMove(color Color, now time.Time) bool {
	if c.Expired != ColorNone {
		return c.Expired == color
	}
	elapsed := now.Sub(c.StartedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	c.StartedAt = now
	s := c.state(color)

	switch c.Settings.Mode {
	case TimeControlFischer:
		s.Main -= elapsed
		if s.Main <= 0 {
			s.Main = 0
			c.Expired = color
			return true
		}
		s.Main += c.Settings.Increment

	case TimeControlByoYomi:
		if !s.InByoYomi {
			s.Main -= elapsed
			if s.Main <= 0 {
				s.Main = 0
				c.enterByoYomi(s)
			}
			return false
		}
		if elapsed <= s.PeriodTime {
			// Within the period budget: the timer resets, no period spent.
			s.PeriodTime = c.Settings.PeriodTime
			return false
		}
		s.PeriodsLeft--
		if s.PeriodsLeft <= 0 {
			s.PeriodsLeft = 0
			s.PeriodTime = 0
			c.Expired = color
			return true
		}
		s.PeriodTime = c.Settings.PeriodTime
	}
	return false
}

// ApplyTick deducts real elapsed time for the color on turn without any
// post-move increment or period reset, so connected clients see the clock
// counting down between moves. Reports whether the color is now expired.
func (c *Clock) ApplyTick(color Color, now time.Time) bool {
	if c.Expired != ColorNone {
		return c.Expired == color
	}
	elapsed := now.Sub(c.StartedAt)
	if elapsed <= 0 {
		return false
	}
	c.StartedAt = now
	s := c.state(color)

	switch c.Settings.Mode {
	case TimeControlFischer:
		s.Main -= elapsed
		if s.Main <= 0 {
			s.Main = 0
			c.Expired = color
			return true
		}

	case TimeControlByoYomi:
		if !s.InByoYomi {
			s.Main -= elapsed
			if s.Main <= 0 {
				s.Main = 0
				c.enterByoYomi(s)
			}
			return false
		}
		s.PeriodTime -= elapsed
		for s.PeriodTime <= 0 {
			s.PeriodsLeft--
			if s.PeriodsLeft <= 0 {
				s.PeriodsLeft = 0
				s.PeriodTime = 0
				c.Expired = color
				return true
			}
			s.PeriodTime += c.Settings.PeriodTime
		}
	}
	return false
}

func (c *Clock) enterByoYomi(s *ClockState) {
	s.InByoYomi = true
	s.PeriodTime = c.Settings.PeriodTime
	s.PeriodsLeft = c.Settings.Periods
}
