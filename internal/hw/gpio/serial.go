package gpio

import (
	"fmt"
	"io"

	"github.com/tarm/serial"

	"github.com/cjeanneret/SrmGo/internal/debug"
)

// SerialDriver drives pins on an attached microcontroller over a serial
// line. Useful for rigs where the phase transistors hang off an MCU
// instead of the Pi header. The protocol is one ASCII line per write:
//
//	O<pin>        configure pin as output
//	P<pin> <0|1>  set pin level
//
// The MCU side acknowledges nothing; the line is fire-and-forget, same
// as a register write.
type SerialDriver struct {
	port io.WriteCloser
}

// NewSerialDriver opens the serial device. Baud defaults to 115200.
func NewSerialDriver(device string, baud int) (*SerialDriver, error) {
	if device == "" {
		return nil, fmt.Errorf("serial pin driver needs a device path")
	}
	if baud <= 0 {
		baud = 115200
	}

	debug.Info("Initializing serial pin driver on %s @ %d", device, baud)

	port, err := serial.OpenPort(&serial.Config{Name: device, Baud: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", device, err)
	}
	return &SerialDriver{port: port}, nil
}

// newSerialDriverWith wires an arbitrary writer in place of a real port.
// Tests use it with an in-memory buffer.
func newSerialDriverWith(port io.WriteCloser) *SerialDriver {
	return &SerialDriver{port: port}
}

func (s *SerialDriver) SetupOutput(pin int) error {
	debug.Pin("SetupOutput", pin, nil)
	return s.send(fmt.Sprintf("O%d\n", pin))
}

func (s *SerialDriver) Write(pin int, level Level) error {
	debug.Pin("Write", pin, level)

	v := 0
	if level == High {
		v = 1
	}
	return s.send(fmt.Sprintf("P%d %d\n", pin, v))
}

func (s *SerialDriver) send(line string) error {
	if _, err := io.WriteString(s.port, line); err != nil {
		return fmt.Errorf("serial pin write: %w", err)
	}
	return nil
}

func (s *SerialDriver) Close() error {
	debug.Trace("pin driver close (serial)")
	return s.port.Close()
}
