package service

import "sync"

// RequestToken identifies one in-flight request of a client slot
type RequestToken struct {
	slot string
	seq  uint64
}

// RequestTracker remembers the latest request per slot so a slow result
// overtaken by a newer request can be recognized and dropped
type RequestTracker struct {
	mu      sync.Mutex
	seq     uint64
	current map[string]uint64
}

func NewRequestTracker() *RequestTracker {
	return &RequestTracker{current: make(map[string]uint64)}
}

// Begin starts a request for slot, superseding any earlier one
func (t *RequestTracker) Begin(slot string) RequestToken {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	t.current[slot] = t.seq
	return RequestToken{slot: slot, seq: t.seq}
}

// Finish ends the request and reports whether it was still the latest
// one for its slot
func (t *RequestTracker) Finish(tok RequestToken) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current[tok.slot] != tok.seq {
		return false
	}
	delete(t.current, tok.slot)
	return true
}

// InFlight counts slots with an unfinished request
func (t *RequestTracker) InFlight() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.current)
}
