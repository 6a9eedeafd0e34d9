// Package imu reads device orientation from a serial IMU that prints one
// "i,j,k,real" quaternion per line.
package imu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"

	"github.com/Faultbox/phoneview/pkg/math"
)

// DefaultRetry is the pause before reopening a failed port.
const DefaultRetry = 5 * time.Second

// ParseLine parses a line in format "i,j,k,real".
func ParseLine(line string) (math.Quat, error) {
	parts := strings.Split(strings.TrimSpace(line), ",")
	if len(parts) != 4 {
		return math.Quat{}, fmt.Errorf("expected 4 values, got %d", len(parts))
	}
	var v [4]float32
	for i, name := range [4]string{"i", "j", "k", "real"} {
		f, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 32)
		if err != nil {
			return math.Quat{}, fmt.Errorf("invalid %s value: %w", name, err)
		}
		v[i] = float32(f)
	}
	q := math.Quat{X: v[0], Y: v[1], Z: v[2], W: v[3]}
	if q.Dot(q) < 1e-12 {
		return math.Quat{}, errors.New("zero quaternion")
	}
	return q.Normalize(), nil
}

// Opener opens the named port.
type Opener func(port string, baud int) (io.ReadCloser, error)

// OpenSerial opens a serial port in 8N1 mode.
func OpenSerial(port string, baud int) (io.ReadCloser, error) {
	return serial.Open(port, &serial.Mode{BaudRate: baud})
}

// Reader keeps the latest orientation reported by the device.
type Reader struct {
	port  string
	baud  int
	open  Opener
	retry time.Duration
	log   *zap.Logger

	mu      sync.RWMutex
	latest  math.Quat
	has     bool
	samples uint64
}

// Option configures a Reader.
type Option func(*Reader)

// WithOpener replaces the serial port opener.
func WithOpener(o Opener) Option {
	return func(r *Reader) { r.open = o }
}

// WithRetry sets the pause between reconnect attempts.
func WithRetry(d time.Duration) Option {
	return func(r *Reader) { r.retry = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Reader) { r.log = l }
}

// NewReader creates a reader for port at baud.
func NewReader(port string, baud int, opts ...Option) *Reader {
	r := &Reader{
		port:  port,
		baud:  baud,
		open:  OpenSerial,
		retry: DefaultRetry,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run reads the port until ctx is done, reopening it after errors.
func (r *Reader) Run(ctx context.Context) error {
	for {
		port, err := r.open(r.port, r.baud)
		if err != nil {
			r.log.Warn("cannot open serial port, retrying",
				zap.String("port", r.port),
				zap.Duration("retry", r.retry),
				zap.Error(err))
		} else {
			r.log.Info("serial port opened", zap.String("port", r.port), zap.Int("baud", r.baud))
			err = r.consume(ctx, port)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.log.Warn("serial port closed, reconnecting", zap.String("port", r.port), zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.retry):
		}
	}
}

// consume reads port until it fails or ctx is done; the port is closed
// either way.
func (r *Reader) consume(ctx context.Context, port io.ReadCloser) error {
	stop := context.AfterFunc(ctx, func() { port.Close() })
	defer func() {
		if stop() {
			port.Close()
		}
	}()
	return r.ReadFrom(port)
}

// ReadFrom parses lines from src until EOF or a read error. Lines that do
// not parse are logged and skipped.
func (r *Reader) ReadFrom(src io.Reader) error {
	scanner := bufio.NewScanner(src)
	for scanner.Scan() {
		line := scanner.Text()
		q, err := ParseLine(line)
		if err != nil {
			r.log.Debug("skipping IMU line", zap.String("line", line), zap.Error(err))
			continue
		}
		r.mu.Lock()
		r.latest = q
		r.has = true
		r.samples++
		r.mu.Unlock()
	}
	return scanner.Err()
}

// Latest returns the last orientation and whether one was received.
func (r *Reader) Latest() (math.Quat, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest, r.has
}

// Samples returns how many orientations have been received.
func (r *Reader) Samples() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.samples
}
