// Package lock serializes reservation commits per tenant and date.
package lock

import (
	"context"
	"sync"
)

// Key names the serialization point for one tenant's service day.
func Key(tenant, date string) string {
	return tenant + ":" + date
}

// Local is an in-process locker for single-instance deployments.
type Local struct {
	mu   sync.Mutex
	held map[string]chan struct{}
}

func NewLocal() *Local {
	return &Local{held: make(map[string]chan struct{})}
}

// Lock blocks until key is free or ctx is done. The returned release func is
// safe to call more than once.
func (l *Local) Lock(ctx context.Context, key string) (func(), error) {
	for {
		l.mu.Lock()
		wait, busy := l.held[key]
		if !busy {
			done := make(chan struct{})
			l.held[key] = done
			l.mu.Unlock()

			var once sync.Once
			return func() {
				once.Do(func() {
					l.mu.Lock()
					delete(l.held, key)
					l.mu.Unlock()
					close(done)
				})
			}, nil
		}
		l.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
