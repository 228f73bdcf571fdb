package event

import (
	"reflect"
	"sort"
	"sync"

	"github.com/dshills/twintree/internal/event/topic"
)

// Listener is one registered handler.
type Listener[H any] struct {
	topic    topic.Topic
	priority Priority
	seq      uint64
	handler  H
}

// Topic returns the topic the listener was registered on.
func (l *Listener[H]) Topic() topic.Topic {
	return l.topic
}

// Priority returns the listener priority.
func (l *Listener[H]) Priority() Priority {
	return l.priority
}

// Handler returns the registered handler.
func (l *Listener[H]) Handler() H {
	return l.handler
}

// ListenerOption configures a listener at registration time.
type ListenerOption func(*listenerConfig)

type listenerConfig struct {
	priority Priority
}

// WithPriority sets the listener priority.
func WithPriority(p Priority) ListenerOption {
	return func(c *listenerConfig) {
		c.priority = p
	}
}

// Registry keeps handlers keyed by topic and resolves the ordered handler
// list for a fired event name.
//
// A handler registered on topic T receives events named T and every name
// below T ("insert" receives "insert:$text"). Resolution order is priority
// (lower first), then specificity (longer topic first), then registration
// order. Resolved lists are cached per event name until the registry changes.
// Duplicate registrations are not detected.
type Registry[H any] struct {
	mu      sync.RWMutex
	byTopic map[topic.Topic][]*Listener[H]
	cache   map[topic.Topic][]*Listener[H]
	seq     uint64
	count   int
}

// NewRegistry creates an empty registry.
func NewRegistry[H any]() *Registry[H] {
	return &Registry[H]{
		byTopic: make(map[topic.Topic][]*Listener[H]),
		cache:   make(map[topic.Topic][]*Listener[H]),
	}
}

// On registers a handler for a topic.
func (r *Registry[H]) On(t topic.Topic, h H, opts ...ListenerOption) (*Listener[H], error) {
	if !t.IsValid() {
		return nil, ErrInvalidTopic
	}
	if isNilHandler(h) {
		return nil, ErrNilHandler
	}

	cfg := listenerConfig{priority: PriorityNormal}
	for _, opt := range opts {
		opt(&cfg)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	l := &Listener[H]{
		topic:    t,
		priority: cfg.priority,
		seq:      r.seq,
		handler:  h,
	}
	r.byTopic[t] = append(r.byTopic[t], l)
	r.count++
	clear(r.cache)
	return l, nil
}

// Off removes a previously registered listener.
func (r *Registry[H]) Off(l *Listener[H]) error {
	if l == nil {
		return ErrListenerNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	subs := r.byTopic[l.topic]
	for i, s := range subs {
		if s == l {
			r.byTopic[l.topic] = append(subs[:i:i], subs[i+1:]...)
			if len(r.byTopic[l.topic]) == 0 {
				delete(r.byTopic, l.topic)
			}
			r.count--
			clear(r.cache)
			return nil
		}
	}
	return ErrListenerNotFound
}

// Match returns the handlers that should run for an event name, in
// execution order. The returned slice must not be modified.
func (r *Registry[H]) Match(name topic.Topic) []*Listener[H] {
	r.mu.RLock()
	if cached, ok := r.cache[name]; ok {
		r.mu.RUnlock()
		return cached
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	var all []*Listener[H]
	for _, t := range name.Ancestors() {
		all = append(all, r.byTopic[t]...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.priority != b.priority {
			return a.priority < b.priority
		}
		if sa, sb := a.topic.SegmentCount(), b.topic.SegmentCount(); sa != sb {
			return sa > sb
		}
		return a.seq < b.seq
	})

	r.cache[name] = all
	return all
}

// Has reports whether any handler would run for the event name.
func (r *Registry[H]) Has(name topic.Topic) bool {
	return len(r.Match(name)) > 0
}

// Count returns the total number of registered listeners.
func (r *Registry[H]) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}

// Topics returns all topics with registered listeners.
func (r *Registry[H]) Topics() []topic.Topic {
	r.mu.RLock()
	defer r.mu.RUnlock()

	topics := make([]topic.Topic, 0, len(r.byTopic))
	for t := range r.byTopic {
		topics = append(topics, t)
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i] < topics[j] })
	return topics
}

// Clear removes all listeners.
func (r *Registry[H]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byTopic = make(map[topic.Topic][]*Listener[H])
	clear(r.cache)
	r.count = 0
}

func isNilHandler(h any) bool {
	if h == nil {
		return true
	}
	v := reflect.ValueOf(h)
	switch v.Kind() {
	case reflect.Func, reflect.Pointer, reflect.Interface, reflect.Map, reflect.Chan, reflect.Slice:
		return v.IsNil()
	}
	return false
}
