package capacity

import "sync"

// Listener is called after a tenant's configuration changed.
type Listener func(tenant string, cfg Config)

type subscriber struct {
	id uint64
	fn Listener
}

// Registry fans configuration changes out to per-tenant subscribers.
type Registry struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[string][]subscriber
}

func NewRegistry() *Registry {
	return &Registry{subs: make(map[string][]subscriber)}
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	r      *Registry
	tenant string
	id     uint64
	once   sync.Once
}

func (r *Registry) Subscribe(tenant string, fn Listener) *Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.subs[tenant] = append(r.subs[tenant], subscriber{id: r.nextID, fn: fn})
	return &Subscription{r: r, tenant: tenant, id: r.nextID}
}

// Unsubscribe removes only this subscription. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.r.remove(s.tenant, s.id)
	})
}

func (r *Registry) remove(tenant string, id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.subs[tenant]
	for i, sub := range list {
		if sub.id == id {
			list = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(r.subs, tenant)
		return
	}
	r.subs[tenant] = list
}

// Notify calls every subscriber of tenant in subscription order. Listeners
// run outside the lock so they may subscribe or unsubscribe.
func (r *Registry) Notify(tenant string, cfg Config) {
	r.mu.Lock()
	list := append([]subscriber(nil), r.subs[tenant]...)
	r.mu.Unlock()
	for _, sub := range list {
		sub.fn(tenant, cfg)
	}
}

func (r *Registry) Count(tenant string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs[tenant])
}
