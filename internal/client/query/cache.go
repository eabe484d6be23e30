package query

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/lawdesk/internal/client/metrics"
	"github.com/dmitrijs2005/lawdesk/internal/logging"
	"golang.org/x/sync/singleflight"
)

type Status int

const (
	StatusPending Status = iota
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "pending"
	}
}

// State is what a reader sees of one cache entry. Data holds the last
// successful result and survives a later failure.
type State[T any] struct {
	Status    Status
	Data      T
	Err       error
	Stale     bool
	Fetching  bool
	UpdatedAt time.Time
}

type snapshot struct {
	status    Status
	data      any
	err       error
	stale     bool
	fetching  bool
	updatedAt time.Time
}

func stateOf[T any](s snapshot) State[T] {
	st := State[T]{
		Status:    s.status,
		Err:       s.err,
		Stale:     s.stale,
		Fetching:  s.fetching,
		UpdatedAt: s.updatedAt,
	}
	if v, ok := s.data.(T); ok {
		st.Data = v
	}
	return st
}

type entry struct {
	id    uint64
	key   string
	query string
	tags   []string
	maxAge time.Duration
	fetch  func(ctx context.Context) (any, error)

	status    Status
	data      any
	err       error
	stale     bool
	inflight  int
	updatedAt time.Time

	// version grows on every invalidation; applied is the version of the
	// newest result stored so far.
	version uint64
	applied uint64
	loaded  bool

	subs map[int]func(snapshot)
}

func (e *entry) snapshot() snapshot {
	return snapshot{
		status:    e.status,
		data:      e.data,
		err:       e.err,
		stale:     e.stale,
		fetching:  e.inflight > 0,
		updatedAt: e.updatedAt,
	}
}

func (e *entry) fresh(now time.Time) bool {
	return e.status == StatusSuccess && !e.stale && !e.expired(now)
}

func (e *entry) expired(now time.Time) bool {
	return e.maxAge > 0 && e.loaded && now.Sub(e.updatedAt) >= e.maxAge
}

func (e *entry) provides(tags []string) bool {
	for _, t := range tags {
		if slices.Contains(e.tags, t) {
			return true
		}
	}
	return false
}

// Cache stores query results. It is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	nextSub int
	nextID  uint64

	group       singleflight.Group
	evictUnused bool
	bg          context.Context
	wg          sync.WaitGroup
	now         func() time.Time

	metrics *metrics.Metrics
	log     logging.Logger
}

type Option func(*Cache)

// WithEvictUnused controls whether an entry is dropped when its last
// subscriber closes. Defaults to true.
func WithEvictUnused(v bool) Option {
	return func(c *Cache) { c.evictUnused = v }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Cache) { c.log = l }
}

// WithBackground sets the context used by background refetches.
func WithBackground(ctx context.Context) Option {
	return func(c *Cache) { c.bg = ctx }
}

func New(opts ...Option) *Cache {
	c := &Cache{
		entries:     make(map[string]*entry),
		evictUnused: true,
		bg:          context.Background(),
		now:         time.Now,
		log:         logging.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Key is the stable cache key of a query name and its arguments: the name
// followed by the canonical JSON of args (object keys sorted).
func Key(name string, args any) string {
	b, err := json.Marshal(args)
	if err != nil {
		return fmt.Sprintf("%s(%#v)", name, args)
	}
	var generic any
	if err := json.Unmarshal(b, &generic); err == nil {
		if canon, err := json.Marshal(generic); err == nil {
			b = canon
		}
	}
	return name + "(" + string(b) + ")"
}

// Query describes a read endpoint. A result older than MaxAge is loaded
// again on the next read, and an unsubscribed entry that old is dropped;
// zero keeps results until they are invalidated.
type Query[A, T any] struct {
	Name   string
	Tags   []string
	MaxAge time.Duration
	Fetch  func(ctx context.Context, args A) (T, error)
}

// Mutation describes a write endpoint and the tags it invalidates.
type Mutation[A, R any] struct {
	Name        string
	Invalidates []string
	Do          func(ctx context.Context, args A) (R, error)
}

// entryFor returns the entry for key, creating it on first use.
// Callers hold c.mu.
func entryFor[A, T any](c *Cache, q Query[A, T], args A) *entry {
	key := Key(q.Name, args)
	if e, ok := c.entries[key]; ok {
		return e
	}
	c.pruneLocked()
	c.nextID++
	e := &entry{
		id:     c.nextID,
		key:    key,
		query:  q.Name,
		tags:   slices.Clone(q.Tags),
		maxAge: q.MaxAge,
		fetch: func(ctx context.Context) (any, error) {
			return q.Fetch(ctx, args)
		},
		subs: make(map[int]func(snapshot)),
	}
	c.entries[key] = e
	return e
}

// Fetch returns the cached result when it is fresh, otherwise loads it,
// sharing the request with any concurrent reader of the same key.
func Fetch[A, T any](ctx context.Context, c *Cache, q Query[A, T], args A) (T, error) {
	c.mu.Lock()
	e := entryFor(c, q, args)
	if e.fresh(c.now()) {
		data := e.data
		c.mu.Unlock()
		c.hit(q.Name)
		v, _ := data.(T)
		return v, nil
	}
	c.mu.Unlock()
	c.miss(q.Name)

	res, err := c.load(ctx, e)
	v, _ := res.(T)
	return v, err
}

// Peek returns the stored state without fetching.
func Peek[A, T any](c *Cache, q Query[A, T], args A) (State[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[Key(q.Name, args)]
	if !ok {
		return State[T]{}, false
	}
	return stateOf[T](e.snapshot()), true
}

// Mutate runs m and, when it succeeds, invalidates m.Invalidates.
func Mutate[A, R any](ctx context.Context, c *Cache, m Mutation[A, R], args A) (R, error) {
	r, err := m.Do(ctx, args)
	if err != nil {
		return r, err
	}
	c.Invalidate(m.Invalidates...)
	return r, nil
}

type loadResult struct {
	data any
	err  error
}

// load runs the entry's fetch once per (entry, version). The shared call is
// detached from the caller's cancellation so one impatient reader cannot
// fail the others; the caller still returns early on its own ctx.
func (c *Cache) load(ctx context.Context, e *entry) (any, error) {
	c.mu.Lock()
	version := e.version
	c.mu.Unlock()

	flight := fmt.Sprintf("%d#%d", e.id, version)
	ch := c.group.DoChan(flight, func() (any, error) {
		c.begin(e)
		data, err := e.fetch(context.WithoutCancel(ctx))
		c.apply(e, version, data, err)
		return loadResult{data: data, err: err}, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		res := r.Val.(loadResult)
		return res.data, res.err
	}
}

func (c *Cache) begin(e *entry) {
	c.mu.Lock()
	e.inflight++
	snap := e.snapshot()
	subs := listeners(e)
	c.mu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
}

// apply stores a result unless a newer one already landed. A result fetched
// before an invalidation is stored but stays stale.
func (c *Cache) apply(e *entry, version uint64, data any, err error) {
	c.mu.Lock()
	e.inflight--
	if e.loaded && version < e.applied {
		snap := e.snapshot()
		subs := listeners(e)
		c.mu.Unlock()
		for _, fn := range subs {
			fn(snap)
		}
		return
	}
	e.loaded = true
	e.applied = version
	e.updatedAt = c.now()
	e.stale = version != e.version
	if err != nil {
		e.status = StatusError
		e.err = err
	} else {
		e.status = StatusSuccess
		e.data = data
		e.err = nil
	}
	snap := e.snapshot()
	subs := listeners(e)
	c.mu.Unlock()

	if err != nil {
		c.log.Debug(c.bg, "query failed", "query", e.query, "key", e.key, "error", err)
	}
	for _, fn := range subs {
		fn(snap)
	}
}

func listeners(e *entry) []func(snapshot) {
	out := make([]func(snapshot), 0, len(e.subs))
	for _, fn := range e.subs {
		out = append(out, fn)
	}
	return out
}

// Invalidate marks every entry providing one of tags stale. Entries with
// subscribers are refetched in the background; the others on next read.
func (c *Cache) Invalidate(tags ...string) {
	if len(tags) == 0 {
		return
	}

	c.mu.Lock()
	var refetch []*entry
	for _, e := range c.entries {
		if !e.provides(tags) {
			continue
		}
		e.version++
		e.stale = true
		if len(e.subs) > 0 {
			refetch = append(refetch, e)
		}
	}
	c.mu.Unlock()

	if c.metrics != nil {
		for _, t := range tags {
			c.metrics.CacheInvalidations.WithLabelValues(t).Inc()
		}
	}

	c.refetch(refetch)
}

// refetch loads entries in the background; Wait observes them.
func (c *Cache) refetch(entries []*entry) {
	for _, e := range entries {
		c.wg.Add(1)
		go func(e *entry) {
			defer c.wg.Done()
			_, _ = c.load(c.bg, e)
		}(e)
	}
}

// pruneLocked drops expired entries that have no subscribers and no
// request in flight. Callers hold c.mu.
func (c *Cache) pruneLocked() {
	now := c.now()
	for key, e := range c.entries {
		if len(e.subs) > 0 || e.inflight > 0 || !e.expired(now) {
			continue
		}
		delete(c.entries, key)
		if c.metrics != nil {
			c.metrics.CacheEvictions.Inc()
		}
	}
}

// Wait blocks until background refetches started so far have finished.
func (c *Cache) Wait() {
	c.wg.Wait()
}

// Reset forgets every stored result, e.g. after login or logout. Entries
// nobody subscribes to are dropped. Subscribed entries keep their key,
// go back to pending and are loaded again; results still in flight from
// before the reset are discarded.
func (c *Cache) Reset() {
	c.mu.Lock()
	kept := make(map[string]*entry)
	var reload []*entry
	type notice struct {
		snap snapshot
		subs []func(snapshot)
	}
	var notices []notice
	for key, e := range c.entries {
		if len(e.subs) == 0 {
			continue
		}
		e.version++
		e.applied = e.version
		e.loaded = true
		e.status = StatusPending
		e.data = nil
		e.err = nil
		e.stale = false
		kept[key] = e
		reload = append(reload, e)
		notices = append(notices, notice{snap: e.snapshot(), subs: listeners(e)})
	}
	c.entries = kept
	c.mu.Unlock()

	for _, n := range notices {
		for _, fn := range n.subs {
			fn(n.snap)
		}
	}
	c.refetch(reload)
}

// Len reports the number of stored entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) hit(name string) {
	if c.metrics != nil {
		c.metrics.CacheHits.WithLabelValues(name).Inc()
	}
}

func (c *Cache) miss(name string) {
	if c.metrics != nil {
		c.metrics.CacheMisses.WithLabelValues(name).Inc()
	}
}
