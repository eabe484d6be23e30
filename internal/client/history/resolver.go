package history

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/lawdesk/internal/client/models"
	"github.com/dmitrijs2005/lawdesk/internal/common"
	"github.com/dmitrijs2005/lawdesk/internal/logging"
	"golang.org/x/sync/errgroup"
)

// MetaSource looks up precedent display metadata.
type MetaSource interface {
	PrecedentMeta(ctx context.Context, precedentID models.RefID) (*models.PrecedentMeta, error)
}

// Item is one displayed precedent row.
type Item struct {
	Entry       models.ViewedLog
	Meta        models.PrecedentMeta
	Unavailable bool
}

// Resolver fills in precedent metadata with bounded parallelism and
// remembers what it resolved. Failures are not remembered, so the next
// call tries again.
type Resolver struct {
	src     MetaSource
	workers int
	log     logging.Logger

	mu   sync.Mutex
	memo map[models.RefID]models.PrecedentMeta
}

func NewResolver(src MetaSource, workers int, log logging.Logger) *Resolver {
	if workers <= 0 {
		workers = 4
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Resolver{
		src:     src,
		workers: workers,
		log:     log,
		memo:    make(map[models.RefID]models.PrecedentMeta),
	}
}

// Resolve returns one Item per entry, in order. Entries without a precedent
// id and ids that fail to resolve get the "information unavailable"
// placeholder; one failure never holds back the others.
func (r *Resolver) Resolve(ctx context.Context, entries []models.ViewedLog) []Item {
	items := make([]Item, len(entries))

	pending := make(map[models.RefID][]int)
	r.mu.Lock()
	for i, e := range entries {
		items[i].Entry = e
		if !set(e.PrecedentID) {
			items[i].Meta = unavailable()
			items[i].Unavailable = true
			continue
		}
		id := *e.PrecedentID
		if meta, ok := r.memo[id]; ok {
			items[i].Meta = meta
			continue
		}
		pending[id] = append(pending[id], i)
	}
	r.mu.Unlock()

	var (
		mu       sync.Mutex
		resolved = make(map[models.RefID]*models.PrecedentMeta, len(pending))
	)
	g := new(errgroup.Group)
	g.SetLimit(r.workers)
	for id := range pending {
		g.Go(func() error {
			meta, err := r.src.PrecedentMeta(ctx, id)
			if err != nil {
				r.log.Warn(ctx, "precedent metadata unavailable", "precedent_id", id, "error", err)
				meta = nil
			}
			mu.Lock()
			resolved[id] = meta
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	for id, idxs := range pending {
		meta := resolved[id]
		for _, i := range idxs {
			if meta == nil {
				items[i].Meta = unavailable()
				items[i].Unavailable = true
				continue
			}
			items[i].Meta = *meta
		}
		if meta != nil {
			r.memo[id] = *meta
		}
	}
	return items
}

// Forget drops memoized metadata, e.g. after logout.
func (r *Resolver) Forget() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.memo = make(map[models.RefID]models.PrecedentMeta)
}

func unavailable() models.PrecedentMeta {
	return models.PrecedentMeta{Title: common.MessageInfoUnavailable}
}
