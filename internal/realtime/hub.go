// Package realtime fans published events out to live subscribers, grouped by
// channel key. Each channel owns its lock, so tenants never contend with each
// other, and nothing is buffered for subscribers that connect later.
package realtime

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/popeskul/crm-inbox/internal/observability"
)

const (
	GlobalKey = "global"

	EventInit    = "init"
	EventMessage = "message"

	defaultBufferSize = 64
)

// ChannelKey returns the channel an instance's events are published on.
func ChannelKey(instanceID string) string {
	if instanceID == "" {
		return GlobalKey
	}
	return "instance:" + instanceID
}

type Event struct {
	ID   string
	Name string
	Data any
}

// Subscription is one live connection. Events is never closed; Done is closed
// once the subscription has been removed from the hub.
type Subscription struct {
	key    string
	events chan Event
	done   chan struct{}
	once   sync.Once
}

func (s *Subscription) Key() string { return s.key }
func (s *Subscription) Events() <-chan Event { return s.events }
func (s *Subscription) Done() <-chan struct{} { return s.done }

type channel struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	closed bool
}

type Hub struct {
	channels   sync.Map
	bufferSize int
	logger     *zap.Logger
	now        func() time.Time
}

func NewHub(bufferSize int, logger *zap.Logger) *Hub {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &Hub{
		bufferSize: bufferSize,
		logger:     logger,
		now:        time.Now,
	}
}

// Subscribe registers a subscriber on key (GlobalKey when blank). The init
// event is already queued when Subscribe returns.
func (h *Hub) Subscribe(key string) *Subscription {
	if key == "" {
		key = GlobalKey
	}

	sub := &Subscription{
		key:    key,
		events: make(chan Event, h.bufferSize),
		done:   make(chan struct{}),
	}
	sub.events <- Event{
		ID:   ulid.Make().String(),
		Name: EventInit,
		Data: map[string]any{"ok": true, "ts": h.now().UnixMilli()},
	}

	for {
		v, _ := h.channels.LoadOrStore(key, &channel{subs: make(map[*Subscription]struct{})})
		ch := v.(*channel)

		ch.mu.Lock()
		if ch.closed {
			// lost a race with the removal of the last subscriber
			ch.mu.Unlock()
			continue
		}
		ch.subs[sub] = struct{}{}
		ch.mu.Unlock()
		break
	}

	observability.StreamSubscribers.Inc()
	h.logger.Debug("Subscriber registered", zap.String("channel", key))
	return sub
}

// Publish delivers an event to every subscriber of key and returns how many
// accepted it. A subscriber whose buffer is full is removed; the others still
// receive the event.
func (h *Hub) Publish(key, name string, data any) int {
	if key == "" {
		key = GlobalKey
	}
	v, ok := h.channels.Load(key)
	if !ok {
		return 0
	}
	ch := v.(*channel)

	event := Event{ID: ulid.Make().String(), Name: name, Data: data}

	var (
		delivered int
		failed    []*Subscription
	)
	ch.mu.RLock()
	for sub := range ch.subs {
		select {
		case sub.events <- event:
			delivered++
		default:
			failed = append(failed, sub)
		}
	}
	ch.mu.RUnlock()

	for _, sub := range failed {
		observability.StreamDrops.Inc()
		h.logger.Warn("Dropping slow subscriber", zap.String("channel", key))
		h.Unsubscribe(sub)
	}

	return delivered
}

// Unsubscribe removes sub from the hub. Safe to call more than once and from
// any goroutine.
func (h *Hub) Unsubscribe(sub *Subscription) {
	sub.once.Do(func() {
		close(sub.done)
		observability.StreamSubscribers.Dec()

		v, ok := h.channels.Load(sub.key)
		if !ok {
			return
		}
		ch := v.(*channel)

		ch.mu.Lock()
		delete(ch.subs, sub)
		if len(ch.subs) == 0 && !ch.closed {
			ch.closed = true
			h.channels.CompareAndDelete(sub.key, ch)
		}
		ch.mu.Unlock()
	})
}

// Count returns the number of live subscribers on key.
func (h *Hub) Count(key string) int {
	v, ok := h.channels.Load(key)
	if !ok {
		return 0
	}
	ch := v.(*channel)
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	return len(ch.subs)
}

// Total returns the number of live subscribers across all channels.
func (h *Hub) Total() int {
	total := 0
	h.channels.Range(func(_, v any) bool {
		ch := v.(*channel)
		ch.mu.RLock()
		total += len(ch.subs)
		ch.mu.RUnlock()
		return true
	})
	return total
}
