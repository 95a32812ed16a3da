package collector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/Guliveer/devicescope/internal/events"
)

func TestLiveMode_TicksAndDisable(t *testing.T) {
	clk := testingclock.NewFakeClock(epoch)
	c := New(Options{Clock: clk, LiveInterval: 5 * time.Second})
	p := newFake("counter", "Count")
	require.NoError(t, c.Register(p))

	c.SetLiveMode(true)
	c.SetLiveMode(true) // no-op
	assert.True(t, c.LiveMode())

	// Twelve seconds of wall time at a five second period.
	clk.Step(5 * time.Second)
	require.Eventually(t, func() bool { return p.calls.Load() == 1 }, time.Second, time.Millisecond)
	clk.Step(5 * time.Second)
	require.Eventually(t, func() bool { return p.calls.Load() == 2 }, time.Second, time.Millisecond)
	clk.Step(2 * time.Second)
	time.Sleep(20 * time.Millisecond)
	assert.LessOrEqual(t, p.calls.Load(), int32(3))

	c.SetLiveMode(false)
	assert.False(t, c.LiveMode())
	before := p.calls.Load()
	clk.Step(30 * time.Second)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, before, p.calls.Load(), "no collection may start after disable")

	c.Close()
}

func TestLiveMode_DisableDuringCollection(t *testing.T) {
	clk := testingclock.NewFakeClock(epoch)
	c := New(Options{Clock: clk, LiveInterval: time.Second})
	p := newFake("slow", "Slow")
	p.result = text("Slow", "done")
	p.block = make(chan struct{})
	require.NoError(t, c.Register(p))

	c.SetLiveMode(true)
	clk.Step(time.Second)
	require.Eventually(t, func() bool { return p.calls.Load() == 1 }, time.Second, time.Millisecond)

	c.SetLiveMode(false)
	close(p.block)
	c.Close()

	// The in-flight collection completed and replaced the snapshot.
	require.NotNil(t, c.Current())
	assert.True(t, c.Current().Has("Slow"))
	assert.Equal(t, int32(1), p.calls.Load())
}

func TestLiveMode_TickStartsBeforeDisableOrNotAtAll(t *testing.T) {
	clk := testingclock.NewFakeClock(epoch)
	c := New(Options{Clock: clk, LiveInterval: time.Minute})
	p := newFake("slow", "Slow")
	p.result = text("Slow", "done")
	p.block = make(chan struct{})
	require.NoError(t, c.Register(p))

	c.SetLiveMode(true)
	c.liveMu.Lock()
	gen := c.generation
	c.liveMu.Unlock()

	// A tick admitted before disable has already started its collection.
	ch, ok := c.beginTick(gen)
	require.True(t, ok)
	c.SetLiveMode(false)
	close(p.block)
	snap := c.awaitRefresh(ch)
	require.NotNil(t, snap)
	assert.True(t, snap.Has("Slow"))

	// A tick arriving after disable starts nothing.
	ch, ok = c.beginTick(gen)
	assert.False(t, ok)
	assert.Nil(t, ch)
	c.Close()
	assert.Equal(t, int32(1), p.calls.Load())
}

func TestLiveMode_PublishesTransitions(t *testing.T) {
	bus := events.New()
	ch, cancel := bus.Subscribe()
	defer cancel()
	c := New(Options{Clock: testingclock.NewFakeClock(epoch), Bus: bus})

	c.SetLiveMode(true)
	c.SetLiveMode(true)
	c.SetLiveMode(false)
	c.SetLiveMode(false)
	c.Close()

	var got []bool
	for len(ch) > 0 {
		e := <-ch
		if e.Kind == events.LiveModeChanged {
			got = append(got, e.Enabled)
		}
	}
	assert.Equal(t, []bool{true, false}, got)
}
