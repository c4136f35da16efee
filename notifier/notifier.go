// Package notifier fans out checked-in entries to live update subscribers.
package notifier

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"guestlist-backend/models"
)

// subscriberBuffer bounds how far a subscriber may fall behind before it is
// dropped.
const subscriberBuffer = 16

// Subscriber receives checked-in entries on C until it is unsubscribed.
type Subscriber struct {
	ID uuid.UUID
	C  chan models.Entry
}

// Notifier holds the set of live subscribers. It is owned by the server and
// torn down with it; tests create their own instances.
type Notifier struct {
	mu   sync.Mutex
	subs map[*Subscriber]struct{}
	log  *slog.Logger
}

func New(log *slog.Logger) *Notifier {
	return &Notifier{
		subs: make(map[*Subscriber]struct{}),
		log:  log,
	}
}

// Subscribe registers a new subscriber.
func (n *Notifier) Subscribe() *Subscriber {
	sub := &Subscriber{
		ID: uuid.New(),
		C:  make(chan models.Entry, subscriberBuffer),
	}
	n.mu.Lock()
	n.subs[sub] = struct{}{}
	n.mu.Unlock()
	n.log.Debug("subscriber registered", "subscriber", sub.ID)
	return sub
}

// Unsubscribe removes a subscriber and closes its channel. Calling it again,
// or with a subscriber the notifier does not know, is a no-op.
func (n *Notifier) Unsubscribe(sub *Subscriber) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.remove(sub)
}

// Publish delivers entry to every subscriber without blocking. A subscriber
// whose buffer is full is dropped so it cannot stall the others.
func (n *Notifier) Publish(entry models.Entry) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for sub := range n.subs {
		select {
		case sub.C <- entry:
		default:
			n.log.Warn("dropping slow subscriber", "subscriber", sub.ID)
			n.remove(sub)
		}
	}
}

// remove must be called with n.mu held.
func (n *Notifier) remove(sub *Subscriber) {
	if _, ok := n.subs[sub]; !ok {
		return
	}
	delete(n.subs, sub)
	close(sub.C)
	n.log.Debug("subscriber removed", "subscriber", sub.ID)
}
