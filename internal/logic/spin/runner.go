package spin

import (
	"context"
	"time"

	"github.com/cjeanneret/SrmGo/internal/debug"
	"github.com/cjeanneret/SrmGo/internal/hw/srm"
)

// Direction of rotation for a run.
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Runner drives one motor from a polling loop. It is the host-side
// equivalent of calling the step routine from a sketch's loop():
// the motor's own timing gate does the pacing, the runner just polls.
type Runner struct {
	motor *srm.Motor
}

func NewRunner(m *srm.Motor) *Runner {
	return &Runner{motor: m}
}

// Params defines one spin run.
type Params struct {
	Direction Direction
	SpinFor   time.Duration // energized stepping phase
	CoastFor  time.Duration // released phase; cycle keeps advancing invisibly
	Poll      time.Duration // sleep between step polls (default 200µs)
}

// Result reports how many steps were accepted in each phase.
type Result struct {
	SpinSteps  int
	CoastSteps int
}

// Run spins the motor for p.SpinFor, then releases it and keeps
// stepping for p.CoastFor so the rotor coasts while the logical cycle
// stays in sync, then resumes and re-applies the current phase.
// Cancelling ctx stops the run at the next poll; the motor is left
// energized at its current position either way.
func (r *Runner) Run(ctx context.Context, p Params) (Result, error) {
	var res Result

	poll := p.Poll
	if poll <= 0 {
		poll = 200 * time.Microsecond
	}

	step := r.motor.StepForward
	if p.Direction == Backward {
		step = r.motor.StepBackward
	}

	debug.Section("Spin Run")
	debug.Live("Spinning %s for %v", p.Direction, p.SpinFor)

	n, err := r.poll(ctx, step, p.SpinFor, poll)
	res.SpinSteps = n
	if err != nil {
		return res, err
	}

	if p.CoastFor > 0 {
		debug.Live("Releasing, coasting for %v", p.CoastFor)
		if err := r.motor.Release(); err != nil {
			return res, err
		}

		n, err = r.poll(ctx, step, p.CoastFor, poll)
		res.CoastSteps = n

		r.motor.Resume()
		if err != nil {
			return res, err
		}
		// Re-assert the current phase: Resume alone does not touch pins.
		if err := r.motor.Apply(); err != nil {
			return res, err
		}
	}

	debug.Live("Run complete: %d spin steps, %d coast steps", res.SpinSteps, res.CoastSteps)
	return res, nil
}

// poll calls step until the duration elapses or ctx is cancelled,
// counting accepted steps.
func (r *Runner) poll(ctx context.Context, step func() (bool, error), d, poll time.Duration) (int, error) {
	steps := 0
	deadline := time.Now().Add(d)

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return steps, ctx.Err()
		default:
		}

		stepped, err := step()
		if err != nil {
			return steps, err
		}
		if stepped {
			steps++
		}

		time.Sleep(poll)
	}
	return steps, nil
}
