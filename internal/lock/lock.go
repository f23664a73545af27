// Package lock serializes work on a single plan. Every mutating plan
// operation runs while holding the lock for "plan:<user id>".
package lock

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTimeout is returned when a lock could not be acquired in time.
var ErrTimeout = errors.New("lock: acquire timed out")

// Locker hands out exclusive keyed locks.
type Locker interface {
	// Acquire blocks until the key is free, the timeout elapses or ctx is
	// done. The returned release func is safe to call more than once.
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// PlanKey returns the lock key guarding a user's plan.
func PlanKey(userID string) string {
	return "plan:" + userID
}

type slot struct {
	ch   chan struct{}
	refs int
}

// MemoryLocker is an in-process Locker. Only suitable for a single API
// instance.
type MemoryLocker struct {
	mu      sync.Mutex
	slots   map[string]*slot
	timeout time.Duration
}

// NewMemoryLocker returns a MemoryLocker that waits at most timeout.
func NewMemoryLocker(timeout time.Duration) *MemoryLocker {
	return &MemoryLocker{slots: make(map[string]*slot), timeout: timeout}
}

func (l *MemoryLocker) Acquire(ctx context.Context, key string) (func(), error) {
	s := l.ref(key)

	timer := time.NewTimer(l.timeout)
	defer timer.Stop()

	select {
	case s.ch <- struct{}{}:
	case <-timer.C:
		l.unref(key, s)
		return nil, ErrTimeout
	case <-ctx.Done():
		l.unref(key, s)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			l.unref(key, s)
		})
	}, nil
}

func (l *MemoryLocker) ref(key string) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	return s
}

func (l *MemoryLocker) unref(key string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}

// held reports how many keys currently have waiters or holders.
func (l *MemoryLocker) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}
