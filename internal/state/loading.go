package state

import "sync"

// Loading counts in-flight operations. It is active while at least one
// operation holds it, so overlapping operations cannot clear each other.
type Loading struct {
	mu sync.Mutex
	n  int
}

// Set increments on true and decrements on false, never below zero.
// It reports whether the active state changed.
func (l *Loading) Set(on bool) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	before := l.n > 0
	if on {
		l.n++
	} else if l.n > 0 {
		l.n--
	}
	return before != (l.n > 0)
}

func (l *Loading) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.n > 0
}
