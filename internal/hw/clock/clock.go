package clock

import (
	bclock "github.com/benbjohnson/clock"
)

// Source provides the monotonic microsecond counter the motor engine
// paces itself against. The counter wraps at 64 bits; consumers must
// compare deadlines with After rather than plain >=.
type Source interface {
	Micros() uint64
}

// After reports whether now has reached deadline, tolerating counter
// wraparound. The unsigned difference is interpreted as signed, so the
// result is correct as long as the two instants are less than half the
// counter range apart.
func After(now, deadline uint64) bool {
	return int64(now-deadline) >= 0
}

// source derives the microsecond counter from a benbjohnson clock.
// Production passes clock.New(); tests pass clock.NewMock() and advance
// it deterministically.
type source struct {
	clk   bclock.Clock
	epoch int64
}

// NewSource builds a Source on top of clk, anchored at the moment of
// the call.
func NewSource(clk bclock.Clock) Source {
	return &source{clk: clk, epoch: clk.Now().UnixNano()}
}

// NewWallSource builds a Source on the real wall clock.
func NewWallSource() Source {
	return NewSource(bclock.New())
}

func (s *source) Micros() uint64 {
	return uint64((s.clk.Now().UnixNano() - s.epoch) / 1000)
}
