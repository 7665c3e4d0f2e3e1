package eventbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_ReplaysBufferedEvents(t *testing.T) {
	b := New()
	b.Emit("draw")
	b.Emit("add_to_hand", "c1")

	var got []string
	require.NoError(t, b.Register(func(ev Event) { got = append(got, ev.Topic) }))
	b.Emit("transform_card")

	assert.Equal(t, []string{"draw", "add_to_hand", "transform_card"}, got)
	assert.Empty(t, b.Drain())
}

func TestBus_SecondListenerRejected(t *testing.T) {
	b := New()
	require.NoError(t, b.Register(func(Event) {}))
	assert.ErrorIs(t, b.Register(func(Event) {}), ErrListenerRegistered)
}

func TestBus_EmitDuringReplayQueuesBehindBuffer(t *testing.T) {
	b := New()
	b.Emit("draw")
	b.Emit("add_to_hand")

	var got []string
	require.NoError(t, b.Register(func(ev Event) {
		got = append(got, ev.Topic)
		if ev.Topic == "draw" {
			b.Emit("hand_to_graveyard")
		}
	}))
	assert.Equal(t, []string{"draw", "add_to_hand", "hand_to_graveyard"}, got)
}

func TestBus_ConcurrentEmitDoesNotOvertakeReplay(t *testing.T) {
	b := New()
	b.Emit("first")
	b.Emit("second")

	emitted := make(chan struct{})
	var got []string
	require.NoError(t, b.Register(func(ev Event) {
		if ev.Topic == "first" {
			go func() {
				b.Emit("late")
				close(emitted)
			}()
			select {
			case <-emitted:
			case <-time.After(time.Second):
				t.Error("emit blocked during replay")
			}
		}
		got = append(got, ev.Topic)
	}))
	assert.Equal(t, []string{"first", "second", "late"}, got)
}
