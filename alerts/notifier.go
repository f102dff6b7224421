package alerts

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"example.com/backstage/services/supplychain/domain"
)

// Subscriber receives a copy of every alert sent while subscribed.
// Errors and panics are contained per subscriber and never reach the
// sender or the other subscribers.
type Subscriber func(alert domain.Alert) error

// Notifier manages the in-memory subscriber list. Subscriptions are
// process-lifetime, nothing is persisted.
type Notifier struct {
	subscribers map[string]Subscriber
	mutex       sync.RWMutex
}

// NewNotifier creates a new notifier with no subscribers
func NewNotifier() *Notifier {
	return &Notifier{
		subscribers: make(map[string]Subscriber),
	}
}

// Subscribe registers a subscriber and returns its subscription ID
func (n *Notifier) Subscribe(subscriber Subscriber) string {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	id := uuid.New().String()
	n.subscribers[id] = subscriber

	return id
}

// Unsubscribe removes a subscriber by its subscription ID
func (n *Notifier) Unsubscribe(id string) {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	delete(n.subscribers, id)
}

// Notify fans an alert out to every current subscriber. Each call runs
// in its own failure boundary so one failing subscriber cannot block
// delivery to the others.
func (n *Notifier) Notify(alert domain.Alert) {
	n.mutex.RLock()
	subscribers := make(map[string]Subscriber, len(n.subscribers))
	for id, subscriber := range n.subscribers {
		subscribers[id] = subscriber
	}
	n.mutex.RUnlock()

	for id, subscriber := range subscribers {
		notifyOne(id, subscriber, alert)
	}
}

// notifyOne invokes a single subscriber, containing errors and panics
func notifyOne(id string, subscriber Subscriber, alert domain.Alert) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("subscription_id", id).
				Str("alert_id", alert.ID).
				Interface("panic", r).
				Msg("Alert subscriber panicked")
		}
	}()

	if err := subscriber(alert); err != nil {
		log.Error().
			Err(err).
			Str("subscription_id", id).
			Str("alert_id", alert.ID).
			Msg("Alert subscriber failed")
	}
}
