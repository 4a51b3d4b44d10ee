package watcher

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer_CoalescesBurstIntoOneSettlement(t *testing.T) {
	var settlements atomic.Int32
	var got []string
	var mu sync.Mutex

	d := NewDebouncer(50*time.Millisecond, func(changed []string) {
		settlements.Add(1)
		mu.Lock()
		got = changed
		mu.Unlock()
	})

	// --- Act ---
	for i := 0; i < 20; i++ {
		d.Notify("ping.hcl")
		if i%2 == 0 {
			d.Notify("test.hcl")
		}
	}

	// --- Assert ---
	require.Eventually(t, func() bool { return settlements.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), settlements.Load())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"ping.hcl", "test.hcl"}, got)
}

func TestDebouncer_SettlementsNeverOverlap(t *testing.T) {
	var active, maxActive, settlements atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{}, 4)

	d := NewDebouncer(10*time.Millisecond, func([]string) {
		n := active.Add(1)
		if n > maxActive.Load() {
			maxActive.Store(n)
		}
		started <- struct{}{}
		if settlements.Add(1) == 1 {
			<-release
		}
		active.Add(-1)
	})

	d.Notify("a.hcl")
	<-started

	// Changes arriving during the in-flight settlement must not be lost.
	d.Notify("b.hcl")
	time.Sleep(50 * time.Millisecond)
	d.Notify("c.hcl")
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), settlements.Load(), "second settlement must wait for the first")

	close(release)

	require.Eventually(t, func() bool { return settlements.Load() == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(2), settlements.Load())
	assert.Equal(t, int32(1), maxActive.Load())
}

func TestDebouncer_StopCancelsPendingSettlement(t *testing.T) {
	var settlements atomic.Int32
	d := NewDebouncer(30*time.Millisecond, func([]string) { settlements.Add(1) })

	d.Notify("a.hcl")
	d.Stop()
	d.Notify("b.hcl")

	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, settlements.Load())
}

func TestNewDebouncer_DefaultWindow(t *testing.T) {
	d := NewDebouncer(0, func([]string) {})
	assert.Equal(t, DefaultWindow, d.window)
}
