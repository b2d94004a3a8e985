package gpio

import (
	"fmt"

	"github.com/stianeikeland/go-rpio/v4"

	"github.com/cjeanneret/SrmGo/internal/debug"
)

// RPiDriver drives pins on the Raspberry Pi header through go-rpio.
type RPiDriver struct {
	pins map[int]rpio.Pin
}

// NewRPiDriver memory-maps the GPIO registers. Requires access to
// /dev/gpiomem or root.
func NewRPiDriver() (*RPiDriver, error) {
	debug.Info("Initializing Raspberry Pi pin driver (go-rpio)")

	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("failed to open GPIO: %w (are you running on a Raspberry Pi?)", err)
	}

	return &RPiDriver{pins: make(map[int]rpio.Pin)}, nil
}

func (r *RPiDriver) SetupOutput(pin int) error {
	debug.Pin("SetupOutput", pin, nil)

	p := rpio.Pin(pin)
	p.Output()
	p.Low()
	r.pins[pin] = p
	return nil
}

func (r *RPiDriver) Write(pin int, level Level) error {
	debug.Pin("Write", pin, level)

	p, ok := r.pins[pin]
	if !ok {
		if err := r.SetupOutput(pin); err != nil {
			return err
		}
		p = r.pins[pin]
	}

	if level == High {
		p.High()
	} else {
		p.Low()
	}
	return nil
}

// Close drops every pin low and returns it to input. Phases must not be
// left energized when the controller exits.
func (r *RPiDriver) Close() error {
	debug.Trace("pin driver close (rpio)")

	for pin, p := range r.pins {
		debug.Verbose("Resetting pin %d to input", pin)
		p.Low()
		p.Input()
	}
	return rpio.Close()
}
