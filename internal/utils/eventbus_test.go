package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusPublishCarriesRecipients(t *testing.T) {
	bus := NewEventBus()

	require.True(t, bus.Publish(EventNotification, map[string]interface{}{"topic_id": 7}, 2, 3))

	e := <-bus.SubscribeCh()
	assert.Equal(t, EventNotification, e.Event)
	assert.Equal(t, []uint64{2, 3}, e.Recipients)
}

func TestEventBusDropsWhenFull(t *testing.T) {
	bus := NewEventBus()
	for i := 0; i < cap(bus.events); i++ {
		require.True(t, bus.Publish(EventTopicMerged, i))
	}
	assert.False(t, bus.Publish(EventTopicMerged, "overflow"))
}
