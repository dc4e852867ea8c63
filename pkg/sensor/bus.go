package sensor

import (
	"bufio"
	"fmt"
	"strings"
	"sync"

	"go.bug.st/serial"
)

const (
	// DefaultBaudRate is the standard baud rate for the sensor bridge MCU.
	DefaultBaudRate = 115200
)

// Bus owns the single serial connection to the sensor bridge. The bridge is
// a shared, non-reentrant resource: one transaction in flight at a time.
// Channel devices borrow the bus, they never own it; Close tears the port
// down exactly once no matter how many devices reference the bus, and is
// safe to call even if opening partially failed.
type Bus struct {
	port string
	baud int

	mu     sync.Mutex
	conn   serial.Port
	reader *bufio.Reader
	closed bool
}

// OpenBus opens the serial port to the sensor bridge.
func OpenBus(port string, baudRate int) (*Bus, error) {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}

	conn, err := serial.Open(port, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", port, err)
	}

	return &Bus{
		port:   port,
		baud:   baudRate,
		conn:   conn,
		reader: bufio.NewReader(conn),
	}, nil
}

// Close releases the serial port. One-shot: subsequent calls are no-ops.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	if b.conn == nil {
		return nil
	}
	if err := b.conn.Close(); err != nil {
		return fmt.Errorf("failed to close serial port %s: %w", b.port, err)
	}
	b.conn = nil
	return nil
}

// roundTrip writes one command line and reads one reply line. The blocking
// read is bounded by the bridge, which answers every command; measurement
// commands answer only after the measurement window has elapsed.
func (b *Bus) roundTrip(cmd string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed || b.conn == nil {
		return "", ErrNotConnected
	}

	if _, err := b.conn.Write([]byte(cmd + "\n")); err != nil {
		return "", fmt.Errorf("%w: write %q: %v", ErrCommFail, cmd, err)
	}

	line, err := b.reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("%w: read reply to %q: %v", ErrCommFail, cmd, err)
	}
	return strings.TrimSpace(line), nil
}
