package core

import "sync"

// Registry tracks which live connections are subscribed to which channel.
// It is process-local state: membership is a live-session concept and the
// registry starts empty on every boot. All methods are safe for concurrent
// use; join/leave/drop/snapshot are linearizable under one mutex.
type Registry struct {
	mu       sync.Mutex
	channels map[ChannelKey]map[*Client]struct{}
	byClient map[*Client]map[ChannelKey]struct{}
}

// NewRegistry constructs an empty membership registry.
func NewRegistry() *Registry {
	return &Registry{
		channels: make(map[ChannelKey]map[*Client]struct{}),
		byClient: make(map[*Client]map[ChannelKey]struct{}),
	}
}

// Join adds the client to the channel's subscriber set.
// Idempotent: returns false if the client was already subscribed.
func (r *Registry) Join(key ChannelKey, c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs, ok := r.channels[key]
	if !ok {
		subs = make(map[*Client]struct{})
		r.channels[key] = subs
	}
	if _, exists := subs[c]; exists {
		return false
	}
	subs[c] = struct{}{}

	keys, ok := r.byClient[c]
	if !ok {
		keys = make(map[ChannelKey]struct{})
		r.byClient[c] = keys
	}
	keys[key] = struct{}{}
	return true
}

// Leave removes the client from the channel's subscriber set.
// No-op if the client was not subscribed; returns false in that case.
func (r *Registry) Leave(key ChannelKey, c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leaveLocked(key, c)
}

func (r *Registry) leaveLocked(key ChannelKey, c *Client) bool {
	subs, ok := r.channels[key]
	if !ok {
		return false
	}
	if _, exists := subs[c]; !exists {
		return false
	}
	delete(subs, c)
	if len(subs) == 0 {
		delete(r.channels, key)
	}
	if keys, ok := r.byClient[c]; ok {
		delete(keys, key)
		if len(keys) == 0 {
			delete(r.byClient, c)
		}
	}
	return true
}

// Subscribers returns a snapshot of the channel's current subscribers.
func (r *Registry) Subscribers(key ChannelKey) []*Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs := r.channels[key]
	out := make([]*Client, 0, len(subs))
	for c := range subs {
		out = append(out, c)
	}
	return out
}

// DropClient removes the client from every channel it is subscribed to.
// The transport calls this exactly once per terminated connection.
func (r *Registry) DropClient(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key := range r.byClient[c] {
		r.leaveLocked(key, c)
	}
}
