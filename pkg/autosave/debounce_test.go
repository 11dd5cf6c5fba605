package autosave_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/mdedit/pkg/autosave"
)

func TestDebouncer_FiresOnceAfterBurst(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	d := autosave.New(30*time.Millisecond, func() { calls.Add(1) })

	for range 5 {
		d.Trigger()
		time.Sleep(5 * time.Millisecond)
	}
	assert.True(t, d.Pending())

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
	assert.False(t, d.Pending())
}

func TestDebouncer_ResetsOnEachTrigger(t *testing.T) {
	t.Parallel()

	var fired atomic.Int64
	start := time.Now()
	d := autosave.New(40*time.Millisecond, func() { fired.Store(int64(time.Since(start))) })

	d.Trigger()
	time.Sleep(25 * time.Millisecond)
	d.Trigger()

	assert.Eventually(t, func() bool { return fired.Load() != 0 }, time.Second, 5*time.Millisecond)
	assert.GreaterOrEqual(t, time.Duration(fired.Load()), 60*time.Millisecond)
}

func TestDebouncer_Stop(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	d := autosave.New(10*time.Millisecond, func() { calls.Add(1) })

	d.Trigger()
	d.Stop()
	d.Trigger()

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
	assert.False(t, d.Pending())
}

func TestDebouncer_Flush(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	d := autosave.New(time.Hour, func() { calls.Add(1) })

	d.Flush()
	assert.Equal(t, int32(0), calls.Load())

	d.Trigger()
	d.Flush()
	assert.Equal(t, int32(1), calls.Load())
	assert.False(t, d.Pending())
}

func TestDebouncer_DefaultDelay(t *testing.T) {
	t.Parallel()

	assert.Equal(t, autosave.DefaultDelay, autosave.New(0, nil).Delay())
	assert.Equal(t, 4*time.Second, autosave.DefaultDelay)
}
