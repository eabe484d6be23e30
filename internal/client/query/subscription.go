package query

import (
	"context"
	"sync"
)

type SubscribeOptions[T any] struct {
	// Skip keeps the subscription pending without issuing a request.
	Skip bool
	// OnChange runs after every state change of the observed entry.
	OnChange func(State[T])
}

// Subscription observes the entry of one (query, args) pair.
type Subscription[A, T any] struct {
	c        *Cache
	q        Query[A, T]
	onChange func(State[T])

	mu     sync.Mutex
	args   A
	skip   bool
	entry  *entry
	subID  int
	gen    uint64
	closed bool
}

// Subscribe attaches to the entry for args and starts loading it in the
// background unless it is fresh or the subscription is skipped.
func Subscribe[A, T any](c *Cache, q Query[A, T], args A, opts SubscribeOptions[T]) *Subscription[A, T] {
	s := &Subscription[A, T]{
		c:        c,
		q:        q,
		onChange: opts.OnChange,
		args:     args,
		skip:     opts.Skip,
	}
	s.mu.Lock()
	e := s.attachLocked()
	s.mu.Unlock()
	s.ensure(e)
	return s
}

// attachLocked registers with the entry for s.args. Callers hold s.mu.
func (s *Subscription[A, T]) attachLocked() *entry {
	if s.skip || s.closed {
		return nil
	}
	gen := s.gen

	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	e := entryFor(s.c, s.q, s.args)
	s.c.nextSub++
	id := s.c.nextSub
	e.subs[id] = func(snap snapshot) { s.deliver(gen, e, snap) }
	s.entry = e
	s.subID = id
	return e
}

// detachLocked leaves the current entry, evicting it when it was the last
// subscriber. Callers hold s.mu.
func (s *Subscription[A, T]) detachLocked() {
	if s.entry == nil {
		return
	}
	e := s.entry
	s.entry = nil

	s.c.mu.Lock()
	delete(e.subs, s.subID)
	evict := s.c.evictUnused && len(e.subs) == 0 && s.c.entries[e.key] == e
	if evict {
		delete(s.c.entries, e.key)
	}
	s.c.mu.Unlock()

	if evict && s.c.metrics != nil {
		s.c.metrics.CacheEvictions.Inc()
	}
}

// ensure starts a background load when the entry is missing a fresh result.
func (s *Subscription[A, T]) ensure(e *entry) {
	if e == nil {
		return
	}
	s.c.mu.Lock()
	fresh := e.fresh(s.c.now())
	loading := e.inflight > 0 && !e.stale
	s.c.mu.Unlock()

	if fresh {
		s.c.hit(s.q.Name)
		return
	}
	if loading {
		return
	}
	s.c.miss(s.q.Name)
	s.c.wg.Add(1)
	go func() {
		defer s.c.wg.Done()
		_, _ = s.c.load(s.c.bg, e)
	}()
}

// deliver forwards an entry change unless the subscription has moved on.
func (s *Subscription[A, T]) deliver(gen uint64, e *entry, snap snapshot) {
	s.mu.Lock()
	current := !s.closed && s.gen == gen && s.entry == e
	s.mu.Unlock()
	if current && s.onChange != nil {
		s.onChange(stateOf[T](snap))
	}
}

// State returns the observed entry's state; pending while skipped.
func (s *Subscription[A, T]) State() State[T] {
	s.mu.Lock()
	e := s.entry
	s.mu.Unlock()
	if e == nil {
		return State[T]{Status: StatusPending}
	}
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	return stateOf[T](e.snapshot())
}

// Args returns the current arguments.
func (s *Subscription[A, T]) Args() A {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.args
}

// Refetch loads the entry again regardless of freshness and waits for it.
// A result that arrives after Update or Close is not returned as current
// state; the returned state is then the subscription's latest.
func (s *Subscription[A, T]) Refetch(ctx context.Context) State[T] {
	s.mu.Lock()
	e := s.entry
	s.mu.Unlock()
	if e == nil {
		return State[T]{Status: StatusPending}
	}

	s.c.mu.Lock()
	if e.fresh(s.c.now()) || e.status == StatusError {
		e.version++
		e.stale = e.status == StatusSuccess
	}
	s.c.mu.Unlock()

	_, _ = s.c.load(ctx, e)
	return s.State()
}

// Update changes the arguments or skip flag. Results still in flight for
// the previous arguments are not delivered to OnChange.
func (s *Subscription[A, T]) Update(args A, skip bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	sameKey := Key(s.q.Name, args) == Key(s.q.Name, s.args)
	if sameKey && skip == s.skip {
		s.mu.Unlock()
		return
	}
	s.detachLocked()
	s.gen++
	s.args = args
	s.skip = skip
	e := s.attachLocked()
	s.mu.Unlock()

	s.ensure(e)
	if s.onChange != nil {
		s.onChange(s.State())
	}
}

// Close detaches the subscription. It is safe to call more than once.
func (s *Subscription[A, T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.detachLocked()
	s.closed = true
	s.gen++
}
