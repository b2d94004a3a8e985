package gpio

import (
	"fmt"
	"sync"

	"github.com/cjeanneret/SrmGo/internal/debug"
)

// Level represents the logical state of an output pin.
type Level bool

const (
	Low  Level = false
	High Level = true
)

// Driver is the abstract pin sink the motor engine writes through.
// Motor phases are outputs only, so there is no read path here.
// Implementations: RPiDriver (real Raspberry Pi header), SerialDriver
// (phases wired to an attached microcontroller), MemoryDriver (dev/test).
type Driver interface {
	SetupOutput(pin int) error
	Write(pin int, level Level) error
	Close() error
}

// NewDriver creates a pin driver by kind: "mock", "rpio" or "serial".
// Serial needs a device path; device and baud are ignored for the others.
func NewDriver(kind, device string, baud int) (Driver, error) {
	switch kind {
	case "mock", "":
		debug.Info("Using in-memory pin driver (development mode)")
		return NewMemoryDriver(), nil
	case "rpio":
		return NewRPiDriver()
	case "serial":
		return NewSerialDriver(device, baud)
	default:
		return nil, fmt.Errorf("unknown pin driver kind: %q", kind)
	}
}

// MemoryDriver keeps the last written level of every pin in memory.
// It backs development mode and tests, and lets the CLI display the
// phase lines without hardware attached.
type MemoryDriver struct {
	mu     sync.Mutex
	levels map[int]Level
}

func NewMemoryDriver() *MemoryDriver {
	return &MemoryDriver{levels: make(map[int]Level)}
}

func (m *MemoryDriver) SetupOutput(pin int) error {
	debug.Pin("SetupOutput", pin, nil)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.levels[pin]; !ok {
		m.levels[pin] = Low
	}
	return nil
}

func (m *MemoryDriver) Write(pin int, level Level) error {
	debug.Pin("Write", pin, level)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.levels[pin] = level
	return nil
}

// Level reports the last written level of pin (Low if never written).
func (m *MemoryDriver) Level(pin int) Level {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.levels[pin]
}

func (m *MemoryDriver) Close() error {
	debug.Trace("pin driver close (memory)")
	return nil
}
