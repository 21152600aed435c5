// SPDX-License-Identifier: EPL-2.0

package frame

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTicker_FiresOncePerRequest(t *testing.T) {
	t.Parallel()

	tk := NewTicker(200)
	defer tk.Stop()

	var calls atomic.Int32
	tk.Request(func(time.Time) { calls.Add(1) })

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	require.EqualValues(t, 1, calls.Load())
}

func TestTicker_Cancel(t *testing.T) {
	t.Parallel()

	tk := NewTicker(200)
	defer tk.Stop()

	var cancelled, kept atomic.Bool
	cancel := tk.Request(func(time.Time) { cancelled.Store(true) })
	tk.Request(func(time.Time) { kept.Store(true) })
	cancel()

	require.Eventually(t, kept.Load, time.Second, time.Millisecond)
	require.False(t, cancelled.Load())
}

func TestTicker_RequestAfterStop(t *testing.T) {
	t.Parallel()

	tk := NewTicker(0)
	tk.Stop()
	tk.Stop()

	cancel := tk.Request(func(time.Time) { t.Error("callback after Stop") })
	cancel()
}

func TestWrap(t *testing.T) {
	t.Parallel()

	var order []string
	inner := SchedulerFunc(func(cb func(time.Time)) func() {
		cb(time.Time{})
		return func() {}
	})
	s := Wrap(inner, func(fn func()) {
		order = append(order, "lock")
		fn()
		order = append(order, "unlock")
	})

	s.Request(func(time.Time) { order = append(order, "frame") })
	require.Equal(t, []string{"lock", "frame", "unlock"}, order)
}
