package imu

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/phoneview/pkg/math"
)

func TestParseLine(t *testing.T) {
	q, err := ParseLine(" 0, 0, 0, 1\r\n")
	require.NoError(t, err)
	assert.Equal(t, math.QuatIdentity(), q)

	q, err = ParseLine("0,0,2,0")
	require.NoError(t, err)
	assert.Equal(t, math.Quat{Z: 1}, q, "input is normalized")

	bad := []string{"", "1,2,3", "1,2,3,4,5", "a,0,0,1", "0,0,0,0"}
	for _, line := range bad {
		_, err := ParseLine(line)
		assert.Error(t, err, "line %q", line)
	}
}

func TestReadFrom(t *testing.T) {
	r := NewReader("test", 115200)

	_, ok := r.Latest()
	assert.False(t, ok)

	err := r.ReadFrom(strings.NewReader("0,0,0,1\ngarbage\n0,1,0,0\n"))
	require.NoError(t, err)

	q, ok := r.Latest()
	require.True(t, ok)
	assert.Equal(t, math.Quat{Y: 1}, q)
	assert.Equal(t, uint64(2), r.Samples())
}

type nopCloser struct{ io.Reader }

func (nopCloser) Close() error { return nil }

func TestRunReconnects(t *testing.T) {
	var opens atomic.Int32
	opener := func(port string, baud int) (io.ReadCloser, error) {
		if opens.Add(1) == 1 {
			return nil, errors.New("busy")
		}
		return nopCloser{strings.NewReader("0,0,0,1\n")}, nil
	}
	r := NewReader("/dev/ttyIMU", 9600, WithOpener(opener), WithRetry(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool {
		_, ok := r.Latest()
		return ok && opens.Load() >= 2
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
