// SPDX-License-Identifier: EPL-2.0

package events

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestBus_OrderAndOff(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	var got []string

	offA := bus.On(Play, func(Event) { got = append(got, "a") })
	bus.OnAny(func(e Event) { got = append(got, "any:"+string(e.Name)) })
	bus.On(Play, func(Event) { got = append(got, "b") })

	bus.Emit(Event{Name: Play})
	offA()
	bus.Emit(Event{Name: Play})
	bus.Emit(Event{Name: Pause})

	want := []string{"a", "any:play", "b", "any:play", "b", "any:pause"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("delivery mismatch (-want +got):\n%s", diff)
	}
}

func TestBus_Once(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	calls := 0
	bus.Once(Seek, func(e Event) {
		calls++
		require.InDelta(t, 12.5, e.Value, 1e-9)
	})

	bus.Emit(Event{Name: Seek, Value: 12.5})
	bus.Emit(Event{Name: Seek, Value: 13})
	require.Equal(t, 1, calls)
}

func TestBus_HandlerMaySubscribe(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	inner := 0
	bus.On(Load, func(Event) {
		bus.On(Load, func(Event) { inner++ })
	})

	bus.Emit(Event{Name: Load})
	require.Equal(t, 0, inner)
	bus.Emit(Event{Name: Load})
	require.Equal(t, 1, inner)
}

func TestQueue_FlushIncludesReentrantEvents(t *testing.T) {
	t.Parallel()

	var q *Queue
	var got []Name
	q = NewQueue(EmitterFunc(func(e Event) {
		got = append(got, e.Name)
		if e.Name == Pause {
			q.Emit(Event{Name: Seek})
		}
	}))

	q.Emit(Event{Name: Play})
	q.Emit(Event{Name: Pause})
	require.Equal(t, 2, q.Len())
	require.Empty(t, got)

	q.Flush()
	require.Equal(t, []Name{Play, Pause, Seek}, got)
	require.Zero(t, q.Len())
}
