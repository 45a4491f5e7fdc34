package domain

import (
	"testing"
	"time"
)

var clockEpoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func fischerClock(main, increment time.Duration) *Clock {
	return NewClock(TimeSettings{
		Mode:      TimeControlFischer,
		Main:      main,
		Increment: increment,
	}, clockEpoch)
}

func byoYomiClock(main, period time.Duration, periods int) *Clock {
	return NewClock(TimeSettings{
		Mode:       TimeControlByoYomi,
		Main:       main,
		PeriodTime: period,
		Periods:    periods,
	}, clockEpoch)
}

func TestNewClockDisabledMode(t *testing.T) {
	if c := NewClock(TimeSettings{Mode: TimeControlNone}, clockEpoch); c != nil {
		t.Error("mode none must produce no clock")
	}
	if c := NewClock(TimeSettings{}, clockEpoch); c != nil {
		t.Error("zero settings must produce no clock")
	}
}

func TestFischerInstantMoveAddsIncrement(t *testing.T) {
	// 60s main + 5s increment, instant move: main becomes 65s, not expired.
	c := fischerClock(time.Minute, 5*time.Second)

	expired := c.ApplyMove(ColorBlack, clockEpoch)
	if expired {
		t.Fatal("instant move must not expire the clock")
	}
	if got := c.Remaining(ColorBlack).Main; got != 65*time.Second {
		t.Errorf("expected 65s, got %v", got)
	}
}

func TestFischerDeductsElapsed(t *testing.T) {
	c := fischerClock(time.Minute, 5*time.Second)

	expired := c.ApplyMove(ColorBlack, clockEpoch.Add(10*time.Second))
	if expired {
		t.Fatal("move within main time must not expire")
	}
	// 60 - 10 + 5
	if got := c.Remaining(ColorBlack).Main; got != 55*time.Second {
		t.Errorf("expected 55s, got %v", got)
	}
	// The opponent's clock is untouched.
	if got := c.Remaining(ColorWhite).Main; got != time.Minute {
		t.Errorf("white clock should be untouched, got %v", got)
	}
}

func TestFischerExpiryGetsNoIncrement(t *testing.T) {
	c := fischerClock(10*time.Second, 5*time.Second)

	expired := c.ApplyMove(ColorBlack, clockEpoch.Add(11*time.Second))
	if !expired {
		t.Fatal("expected expiry")
	}
	if got := c.Remaining(ColorBlack).Main; got != 0 {
		t.Errorf("expired clock must floor at zero, got %v", got)
	}
	if c.Expired != ColorBlack {
		t.Errorf("expected black flagged expired, got %v", c.Expired)
	}
}

func TestFischerTickDeductsWithoutIncrement(t *testing.T) {
	c := fischerClock(time.Minute, 5*time.Second)

	if c.ApplyTick(ColorBlack, clockEpoch.Add(2*time.Second)) {
		t.Fatal("tick within main time must not expire")
	}
	if got := c.Remaining(ColorBlack).Main; got != 58*time.Second {
		t.Errorf("expected 58s, got %v", got)
	}

	// StartedAt advanced: a second tick only deducts the new elapsed time.
	if c.ApplyTick(ColorBlack, clockEpoch.Add(3*time.Second)) {
		t.Fatal("unexpected expiry")
	}
	if got := c.Remaining(ColorBlack).Main; got != 57*time.Second {
		t.Errorf("elapsed time must not double-count, got %v", got)
	}
}

func TestFischerTickExpires(t *testing.T) {
	c := fischerClock(3*time.Second, 5*time.Second)

	if !c.ApplyTick(ColorBlack, clockEpoch.Add(4*time.Second)) {
		t.Fatal("expected expiry from tick")
	}
	if c.Expired != ColorBlack {
		t.Errorf("expected black expired, got %v", c.Expired)
	}

	// Once expired, nothing mutates the clock anymore.
	c.ApplyMove(ColorBlack, clockEpoch.Add(time.Minute))
	if got := c.Remaining(ColorBlack).Main; got != 0 {
		t.Errorf("expired clock must stay frozen, got %v", got)
	}
}

func TestByoYomiMainTimeSwitch(t *testing.T) {
	c := byoYomiClock(10*time.Second, 30*time.Second, 3)

	expired := c.ApplyMove(ColorBlack, clockEpoch.Add(12*time.Second))
	if expired {
		t.Fatal("running out of main time enters byo-yomi, not expiry")
	}
	s := c.Remaining(ColorBlack)
	if !s.InByoYomi {
		t.Fatal("expected byo-yomi mode")
	}
	if s.PeriodTime != 30*time.Second || s.PeriodsLeft != 3 {
		t.Errorf("expected fresh 30s x3 periods, got %v x%d", s.PeriodTime, s.PeriodsLeft)
	}
}

func TestByoYomiMoveWithinPeriodKeepsPeriods(t *testing.T) {
	c := byoYomiClock(0, 30*time.Second, 3)
	// Force into byo-yomi via a tick.
	c.ApplyTick(ColorBlack, clockEpoch.Add(time.Millisecond))

	expired := c.ApplyMove(ColorBlack, clockEpoch.Add(10*time.Second))
	if expired {
		t.Fatal("move within the period must not expire")
	}
	s := c.Remaining(ColorBlack)
	if s.PeriodsLeft != 3 {
		t.Errorf("period must not be consumed, got %d left", s.PeriodsLeft)
	}
	if s.PeriodTime != 30*time.Second {
		t.Errorf("period timer must reset to full, got %v", s.PeriodTime)
	}
}

func TestByoYomiSlowMoveConsumesOnePeriod(t *testing.T) {
	c := byoYomiClock(0, 30*time.Second, 3)
	c.ApplyTick(ColorBlack, clockEpoch.Add(time.Millisecond))

	expired := c.ApplyMove(ColorBlack, clockEpoch.Add(45*time.Second))
	if expired {
		t.Fatal("periods remain, must not expire")
	}
	s := c.Remaining(ColorBlack)
	if s.PeriodsLeft != 2 {
		t.Errorf("expected exactly one period consumed, got %d left", s.PeriodsLeft)
	}
	if s.PeriodTime != 30*time.Second {
		t.Errorf("period timer must reset for the next period, got %v", s.PeriodTime)
	}
}

func TestByoYomiExhaustingPeriodsExpires(t *testing.T) {
	c := byoYomiClock(0, 10*time.Second, 1)
	c.ApplyTick(ColorBlack, clockEpoch.Add(time.Millisecond))

	expired := c.ApplyMove(ColorBlack, clockEpoch.Add(15*time.Second))
	if !expired {
		t.Fatal("overrunning the last period must expire")
	}
	if c.Expired != ColorBlack {
		t.Errorf("expected black expired, got %v", c.Expired)
	}
}

func TestByoYomiTickCountsDownPeriods(t *testing.T) {
	c := byoYomiClock(0, 10*time.Second, 2)
	c.ApplyTick(ColorBlack, clockEpoch.Add(time.Millisecond))

	// First period runs out via ticks; the second starts automatically.
	if c.ApplyTick(ColorBlack, clockEpoch.Add(12*time.Second)) {
		t.Fatal("one period remains, must not expire")
	}
	s := c.Remaining(ColorBlack)
	if s.PeriodsLeft != 1 {
		t.Errorf("expected 1 period left, got %d", s.PeriodsLeft)
	}

	if !c.ApplyTick(ColorBlack, clockEpoch.Add(30*time.Second)) {
		t.Fatal("expected expiry after the last period drains")
	}
}
