// Package srm sequences the three phases of a switched-reluctance
// motor (the kind found in hard disk drives) over digital output pins.
//
// The motor has no step/dir driver chip: the controller itself walks a
// phase-activation pattern, energizing one winding (or two adjacent
// ones, with the overlap pattern) per rotor position. Position is kept
// as a single set bit shifted left or right through the pattern ring,
// so applying a position to the pins is a plain mask test per phase.
// Do not assign position directly; it is not a counter.
//
// Speed control is optional and non-blocking: with it enabled, step
// calls only advance the cycle once the configured per-step time has
// elapsed on the injected clock, so a caller can poll from a tight
// loop without a delay of its own.
package srm

import (
	"fmt"

	"github.com/cjeanneret/SrmGo/internal/debug"
	"github.com/cjeanneret/SrmGo/internal/hw/clock"
	"github.com/cjeanneret/SrmGo/internal/hw/gpio"
)

// PatternType selects which phase-activation sequence the motor walks.
type PatternType int

const (
	// PatternSimple energizes exactly one phase per position,
	// 3 positions per electrical cycle.
	PatternSimple PatternType = iota
	// PatternOverlap keeps two adjacent phases energized at once,
	// 6 positions per cycle, for smoother and finer-grained motion.
	PatternOverlap
)

// ParsePattern maps a config string to a PatternType. Unknown values
// fall back to PatternSimple, same as the constructor does for unknown
// PatternType values.
func ParsePattern(s string) PatternType {
	if s == "overlap" {
		return PatternOverlap
	}
	return PatternSimple
}

func (p PatternType) String() string {
	if p == PatternOverlap {
		return "overlap"
	}
	return "simple"
}

// DefaultSpeedRPM is the target speed a new Motor starts with.
const DefaultSpeedRPM = 500

const microsPerMinute = 60_000_000

// Config holds the hardware configuration for one motor.
type Config struct {
	Pin1, Pin2, Pin3 int
	Pattern          PatternType
	SpeedRPM         int  // target RPM; 0 means DefaultSpeedRPM
	SpeedControl     bool // gate steps to the target speed
}

// Motor owns the sequencing state for a single motor. It is not safe
// for concurrent use; serialize calls if more than one goroutine
// drives the same instance.
type Motor struct {
	gpio gpio.Driver
	clk  clock.Source

	pin1, pin2, pin3       int
	phase1, phase2, phase3 uint64
	steps                  int
	limit                  uint64

	position     uint64 // single set bit in [1, limit)
	running      bool
	speedControl bool

	timeStep   uint64 // microseconds between accepted steps
	nextUpdate uint64 // absolute deadline for the next accepted step
}

// NewMotor registers the three phase pins as outputs and returns a
// motor at position 1, running, with speed control per cfg. You can
// share pins between two Motor instances with different patterns, but
// switch between them only when both sit at position 1 or the rotor
// may stall.
func NewMotor(drv gpio.Driver, src clock.Source, cfg Config) *Motor {
	m := &Motor{
		gpio: drv,
		clk:  src,
		pin1: cfg.Pin1,
		pin2: cfg.Pin2,
		pin3: cfg.Pin3,
	}

	switch cfg.Pattern {
	case PatternOverlap:
		m.phase1 = 0b110001
		m.phase2 = 0b011100
		m.phase3 = 0b000111
		m.steps = 6
	default:
		m.phase1 = 0b100
		m.phase2 = 0b010
		m.phase3 = 0b001
		m.steps = 3
	}

	m.limit = 1 << m.steps
	m.position = 1
	m.running = true
	m.speedControl = cfg.SpeedControl

	rpm := cfg.SpeedRPM
	if rpm <= 0 {
		rpm = DefaultSpeedRPM
	}
	_ = m.SetSpeed(rpm) // rpm guaranteed > 0 here

	_ = drv.SetupOutput(cfg.Pin1)
	_ = drv.SetupOutput(cfg.Pin2)
	_ = drv.SetupOutput(cfg.Pin3)

	return m
}

// SetSpeed sets the target speed in revolutions per minute, where one
// revolution is one electrical cycle through the pattern. The per-step
// interval accounts for the pattern size, so no extra math is needed
// when switching patterns. Rejects rpm <= 0 and leaves the previous
// timing state untouched in that case.
func (m *Motor) SetSpeed(rpm int) error {
	if rpm <= 0 {
		return fmt.Errorf("speed must be > 0 RPM, got %d", rpm)
	}

	m.timeStep = (microsPerMinute / uint64(rpm)) / uint64(m.steps)
	m.nextUpdate = m.clk.Micros() + m.timeStep

	debug.Verbose("Speed set to %d RPM (%d us/step)", rpm, m.timeStep)
	return nil
}

// SetSpeedControl turns timing-gated stepping on or off. Takes effect
// on the next step call; no timing state is recomputed.
func (m *Motor) SetSpeedControl(enabled bool) {
	m.speedControl = enabled
}

// shouldUpdate is the timing gate. With speed control off it always
// passes. With it on, the deadline advances by timeStep on acceptance
// rather than re-anchoring to now, so late polls catch up instead of
// paying a full extra interval.
func (m *Motor) shouldUpdate() bool {
	if !m.speedControl {
		return true
	}
	if !clock.After(m.clk.Micros(), m.nextUpdate) {
		return false
	}
	m.nextUpdate += m.timeStep
	return true
}

// StepForward advances the cycle one position if it is due and pushes
// the new phase levels to the pins. Returns false when the timing gate
// held the step back, with no state change and no I/O.
func (m *Motor) StepForward() (bool, error) {
	if !m.shouldUpdate() {
		return false, nil
	}

	m.position <<= 1
	if m.position == m.limit {
		m.position = 1
	}

	debug.Motor("forward", m.position)
	return true, m.Apply()
}

// StepBackward is StepForward in the other direction: the position bit
// shifts right and wraps to the highest position of the ring.
func (m *Motor) StepBackward() (bool, error) {
	if !m.shouldUpdate() {
		return false, nil
	}

	m.position >>= 1
	if m.position < 1 {
		m.position = m.limit >> 1
	}

	debug.Motor("backward", m.position)
	return true, m.Apply()
}

// Apply drives each pin high when its phase mask contains the current
// position bit, low otherwise. No-op while released. Steps call this
// automatically; call it yourself after Resume if the rotor must be
// re-energized before the next step.
func (m *Motor) Apply() error {
	if !m.running {
		return nil
	}

	if err := m.writePhase(m.pin1, m.phase1); err != nil {
		return err
	}
	if err := m.writePhase(m.pin2, m.phase2); err != nil {
		return err
	}
	return m.writePhase(m.pin3, m.phase3)
}

func (m *Motor) writePhase(pin int, mask uint64) error {
	level := gpio.Low
	if mask&m.position != 0 {
		level = gpio.High
	}
	return m.gpio.Write(pin, level)
}

// Release cuts voltage to all three phases so the motor coasts with no
// holding torque. The logical cycle keeps advancing on step calls, so
// a spun-up rotor can be re-engaged later with Resume.
func (m *Motor) Release() error {
	m.running = false

	debug.Motor("release", m.position)
	for _, pin := range []int{m.pin1, m.pin2, m.pin3} {
		if err := m.gpio.Write(pin, gpio.Low); err != nil {
			return err
		}
	}
	return nil
}

// Resume restores voltage application. It does not itself write the
// pins: the next accepted step does, or call Apply for an immediate
// re-assertion of the current phase.
func (m *Motor) Resume() {
	m.running = true
	debug.Motor("resume", m.position)
}

// Position returns the current position bit. For status display; the
// value is never a plain index.
func (m *Motor) Position() uint64 {
	return m.position
}

// StepCount returns the number of positions per electrical cycle for
// the configured pattern (3 or 6).
func (m *Motor) StepCount() int {
	return m.steps
}
