package deploy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestSimulator_RunsFullScript(t *testing.T) {
	sim := NewSimulatorWithSpeed(10000)
	out := make(chan Event, len(script))

	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		defer close(out)
		return sim.Run(ctx, out)
	})

	var events []Event
	for ev := range out {
		events = append(events, ev)
	}
	require.NoError(t, g.Wait())

	require.Len(t, events, len(script))
	assert.Equal(t, StatusProvisioning, events[0].Status)
	assert.Equal(t, "> Initializing Vercel Container...", events[0].Log)
	assert.Equal(t, StatusLive, events[len(events)-1].Status)

	// Steps are monotonically non-decreasing.
	for i := 1; i < len(events); i++ {
		assert.GreaterOrEqual(t, events[i].Step, events[i-1].Step)
	}
}

func TestSimulator_CancellationStopsEarly(t *testing.T) {
	sim := NewSimulator() // real-time script takes seconds
	out := make(chan Event, 1)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- sim.Run(ctx, out) }()

	// First event fires immediately.
	select {
	case <-out:
	case <-time.After(time.Second):
		t.Fatal("expected first event promptly")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("simulator did not stop on cancellation")
	}
}

func TestNewSimulatorWithSpeed_RejectsNonPositive(t *testing.T) {
	sim := NewSimulatorWithSpeed(-1)
	assert.Equal(t, 1.0, sim.speed)
}
