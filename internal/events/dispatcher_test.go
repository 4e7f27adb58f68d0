package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_DeliversToSubscribersOfType(t *testing.T) {
	d := NewInMemoryDispatcher(nil)

	var got []string
	d.Subscribe(EventOrderPlaced, func(_ context.Context, e Event) error {
		got = append(got, "first:"+e.AggregateID)
		return nil
	})
	d.Subscribe(EventOrderPlaced, func(_ context.Context, e Event) error {
		got = append(got, "second:"+e.AggregateID)
		return nil
	})
	d.Subscribe(EventUserRegistered, func(context.Context, Event) error {
		t.Fatal("wrong type delivered")
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventOrderPlaced, AggregateID: "o-1"}))
	assert.Equal(t, []string{"first:o-1", "second:o-1"}, got)
}

func TestDispatcher_HandlerErrorDoesNotStopOthers(t *testing.T) {
	d := NewInMemoryDispatcher(nil)

	called := false
	d.Subscribe(EventUserRegistered, func(context.Context, Event) error { return errors.New("smtp down") })
	d.Subscribe(EventUserRegistered, func(context.Context, Event) error {
		called = true
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventUserRegistered}))
	assert.True(t, called)
}
