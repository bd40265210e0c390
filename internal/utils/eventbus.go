package utils

const (
	EventTopicMerged  = "topic_merged"
	EventNotification = "notification"
)

type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
	// Recipients limits delivery to these member ids. Empty means everyone.
	Recipients []uint64 `json:"-"`
}

type EventBus struct {
	events chan Event
}

func NewEventBus() *EventBus {
	return &EventBus{
		events: make(chan Event, 100),
	}
}

// Publish never blocks; events are dropped when the buffer is full.
func (eb *EventBus) Publish(event string, data interface{}, recipients ...uint64) bool {
	e := Event{Event: event, Data: data, Recipients: recipients}
	select {
	case eb.events <- e:
		return true
	default:
		return false
	}
}

func (eb *EventBus) SubscribeCh() <-chan Event {
	return eb.events
}
