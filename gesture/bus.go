package gesture

import "sync"

// Handler receives a published Event.
type Handler func(event Event)

// Subscription identifies an active subscription, returned by Subscribe and
// consumed by Unsubscribe.
type Subscription struct {
	topic string
	id    uint64
}

// Subscriber allows registering/forgetting handlers for a topic.
type Subscriber interface {
	Subscribe(topic string, h Handler) Subscription
	Unsubscribe(sub Subscription)
}

// Publisher allows publishing events.
type Publisher interface {
	Publish(event Event)
}

// Bus decouples the Recogniser (a Publisher) from the Action Dispatcher and
// any other interested party (Subscribers), so neither side needs to know
// about the other's concrete type.
type Bus interface {
	Subscriber
	Publisher
}

// NewBus returns an empty Bus.
func NewBus() Bus {
	return &bus{subs: make(map[string]subList)}
}

type subEntry struct {
	id uint64
	cb Handler
}

type subList []*subEntry

type bus struct {
	lock   sync.Mutex
	nextID uint64
	subs   map[string]subList
}

// Subscribe registers h for topic and returns a token to later Unsubscribe.
func (b *bus) Subscribe(topic string, h Handler) Subscription {
	b.lock.Lock()
	defer b.lock.Unlock()

	id := b.nextID
	b.nextID++
	b.subs[topic] = append(b.subs[topic], &subEntry{id: id, cb: h})
	return Subscription{topic: topic, id: id}
}

// Unsubscribe forgets a previously registered handler.
func (b *bus) Unsubscribe(sub Subscription) {
	b.lock.Lock()
	defer b.lock.Unlock()

	entries, ok := b.subs[sub.topic]
	if !ok {
		return
	}
	for i, e := range entries {
		if e.id == sub.id {
			entries = append(entries[:i], entries[i+1:]...)
			break
		}
	}
	if len(entries) == 0 {
		delete(b.subs, sub.topic)
	} else {
		b.subs[sub.topic] = entries
	}
}

// Publish delivers event to every handler currently subscribed to its topic.
// Handlers subscribing/unsubscribing from within a callback is safe: the
// subscriber list is copied before invocation.
func (b *bus) Publish(event Event) {
	for _, e := range b.snapshot(event.EventID()) {
		e.cb(event)
	}
}

func (b *bus) snapshot(topic string) subList {
	b.lock.Lock()
	defer b.lock.Unlock()

	entries, ok := b.subs[topic]
	if !ok {
		return nil
	}
	out := make(subList, len(entries))
	copy(out, entries)
	return out
}
