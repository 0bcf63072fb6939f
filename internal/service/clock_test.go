package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// Other tests in this package leave keep-alive connections behind, so
// their goroutines are excluded from leak checks here.
func verifyNoLeaks(t *testing.T) {
	goleak.VerifyNone(t,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

func TestClockSleeperElapses(t *testing.T) {
	defer verifyNoLeaks(t)

	start := time.Now()
	err := ClockSleeper{}.Sleep(context.Background(), 20*time.Millisecond)

	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestClockSleeperStopsOnCancel(t *testing.T) {
	defer verifyNoLeaks(t)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)

	start := time.Now()
	err := ClockSleeper{}.Sleep(ctx, time.Minute)

	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestClockSleeperCanceledBeforeSleep(t *testing.T) {
	defer verifyNoLeaks(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := ClockSleeper{}.Sleep(ctx, time.Minute)
	require.ErrorIs(t, err, context.Canceled)
}
