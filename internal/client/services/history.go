package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/lawdesk/internal/client/client"
	"github.com/dmitrijs2005/lawdesk/internal/client/history"
	"github.com/dmitrijs2005/lawdesk/internal/client/models"
	"github.com/dmitrijs2005/lawdesk/internal/client/query"
	"github.com/dmitrijs2005/lawdesk/internal/logging"
)

// HistoryService reads and edits the user's view history.
type HistoryService interface {
	History(ctx context.Context, mode history.Mode) ([]history.Item, error)
	MarkViewed(ctx context.Context, ref history.Ref) (bool, error)
	Remove(ctx context.Context, id models.RefID) error
	Clear(ctx context.Context) error
	// Follow keeps the history of userID loaded and reloads it after
	// every change; an empty id pauses it.
	Follow(userID models.RefID)
	Close()
}

type historyService struct {
	api      client.MyLogAPI
	session  Session
	cache    *query.Cache
	resolver *history.Resolver
	log      logging.Logger

	list      query.Query[models.RefID, []models.ViewedLog]
	create    query.Mutation[models.ViewedLogInput, *models.ViewedLog]
	removeOne query.Mutation[models.RefID, struct{}]
	removeAll query.Mutation[models.RefID, struct{}]

	mu    sync.Mutex
	watch *query.Subscription[models.RefID, []models.ViewedLog]
}

func NewHistoryService(api client.MyLogAPI, session Session, cache *query.Cache, workers int, log logging.Logger) HistoryService {
	invalidates := []string{TagUserViewed}
	return &historyService{
		api:      api,
		session:  session,
		cache:    cache,
		resolver: history.NewResolver(api, workers, log),
		log:      log,
		list: query.Query[models.RefID, []models.ViewedLog]{
			Name:  "viewedLogs",
			Tags:  []string{TagUserViewed},
			Fetch: api.ListViewedLogs,
		},
		create: query.Mutation[models.ViewedLogInput, *models.ViewedLog]{
			Name:        "createViewedLog",
			Invalidates: invalidates,
			Do:          api.CreateViewedLog,
		},
		removeOne: query.Mutation[models.RefID, struct{}]{
			Name:        "deleteViewedLog",
			Invalidates: invalidates,
			Do: func(ctx context.Context, id models.RefID) (struct{}, error) {
				return struct{}{}, api.DeleteViewedLog(ctx, id)
			},
		},
		removeAll: query.Mutation[models.RefID, struct{}]{
			Name:        "deleteAllViewedLogs",
			Invalidates: invalidates,
			Do: func(ctx context.Context, userID models.RefID) (struct{}, error) {
				return struct{}{}, api.DeleteAllViewedLogs(ctx, userID)
			},
		},
	}
}

// History returns the reconciled list for mode. Precedent rows carry
// resolved metadata or the "information unavailable" placeholder.
func (s *historyService) History(ctx context.Context, mode history.Mode) ([]history.Item, error) {
	userID, err := currentUserID(s.session)
	if err != nil {
		return nil, err
	}
	entries, err := s.viewed(ctx, userID)
	if err != nil {
		return nil, err
	}

	rows := history.Reconcile(entries, mode)
	if mode == history.ModePrecedent {
		return s.resolver.Resolve(ctx, rows), nil
	}

	items := make([]history.Item, len(rows))
	for i, e := range rows {
		items[i] = history.Item{Entry: e}
	}
	return items, nil
}

// MarkViewed records a view unless the cached history already has one.
// The check is best effort: two racing calls may both record. It returns
// whether a record was created; logged-out users are silently skipped.
func (s *historyService) MarkViewed(ctx context.Context, ref history.Ref) (bool, error) {
	userID, err := currentUserID(s.session)
	if err != nil {
		return false, nil
	}
	if ref.ID == "" {
		return false, fmt.Errorf("mark viewed: empty id")
	}

	entries, err := s.viewed(ctx, userID)
	if err != nil {
		return false, err
	}
	if history.Contains(entries, ref) {
		return false, nil
	}

	in := models.ViewedLogInput{UserID: userID}
	switch ref.Mode {
	case history.ModeConsultation:
		in.ConsultationID = models.Ref(ref.ID.String())
	case history.ModePrecedent:
		in.PrecedentID = models.Ref(ref.ID.String())
	default:
		return false, fmt.Errorf("mark viewed: unknown mode %q", ref.Mode)
	}

	if _, err := query.Mutate(ctx, s.cache, s.create, in); err != nil {
		return false, err
	}
	return true, nil
}

func (s *historyService) Remove(ctx context.Context, id models.RefID) error {
	if _, err := currentUserID(s.session); err != nil {
		return err
	}
	_, err := query.Mutate(ctx, s.cache, s.removeOne, id)
	return err
}

func (s *historyService) Clear(ctx context.Context) error {
	userID, err := currentUserID(s.session)
	if err != nil {
		return err
	}
	if _, err = query.Mutate(ctx, s.cache, s.removeAll, userID); err != nil {
		return err
	}
	s.resolver.Forget()
	return nil
}

func (s *historyService) Follow(userID models.RefID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watch == nil {
		s.watch = query.Subscribe(s.cache, s.list, userID, query.SubscribeOptions[[]models.ViewedLog]{
			Skip:     userID == "",
			OnChange: s.changed,
		})
		return
	}
	s.watch.Update(userID, userID == "")
}

func (s *historyService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watch != nil {
		s.watch.Close()
		s.watch = nil
	}
}

func (s *historyService) changed(st query.State[[]models.ViewedLog]) {
	if st.Status == query.StatusError {
		s.log.Debug(context.Background(), "view history reload failed", "error", st.Err)
		return
	}
	if st.Status == query.StatusSuccess && !st.Fetching {
		s.log.Debug(context.Background(), "view history loaded", "entries", len(st.Data))
	}
}

// viewed returns the followed list when it is current for userID and
// otherwise reads through the cache.
func (s *historyService) viewed(ctx context.Context, userID models.RefID) ([]models.ViewedLog, error) {
	s.mu.Lock()
	watch := s.watch
	s.mu.Unlock()
	if watch != nil && watch.Args() == userID {
		if st := watch.State(); st.Status == query.StatusSuccess && !st.Stale {
			return st.Data, nil
		}
	}
	return query.Fetch(ctx, s.cache, s.list, userID)
}
