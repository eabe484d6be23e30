package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/lawdesk/internal/client/client"
	"github.com/dmitrijs2005/lawdesk/internal/client/models"
	"github.com/dmitrijs2005/lawdesk/internal/client/repositories/results"
	"github.com/dmitrijs2005/lawdesk/internal/logging"
	"github.com/dmitrijs2005/lawdesk/internal/timex"
)

const (
	DefaultVideoTTL   = 24 * time.Hour
	DefaultVideoCount = 6
)

// VideoListing is what Latest returns. FromCache is set when the listing was
// not fetched during this call; Stale when it is older than the TTL.
type VideoListing struct {
	Videos    []models.Video
	FetchedAt time.Time
	FromCache bool
	Stale     bool
}

// VideoService serves the home page video listing from a durable cache.
type VideoService interface {
	Latest(ctx context.Context) (*VideoListing, error)
}

type videoService struct {
	api   client.VideoAPI
	store results.Repository
	query string
	count int
	ttl   time.Duration
	log   logging.Logger
	now   func() time.Time
}

func NewVideoService(api client.VideoAPI, store results.Repository, query string, ttl time.Duration, log logging.Logger) VideoService {
	if ttl <= 0 {
		ttl = DefaultVideoTTL
	}
	return &videoService{
		api:   api,
		store: store,
		query: query,
		count: DefaultVideoCount,
		ttl:   ttl,
		log:   log,
		now:   time.Now,
	}
}

func (s *videoService) key() string {
	return "videos:" + s.query
}

// Latest returns the cached listing while it is fresh. Otherwise it fetches
// a new one; if that fails and an older copy exists, the older copy is
// served marked stale.
func (s *videoService) Latest(ctx context.Context) (*VideoListing, error) {
	cached, err := s.load(ctx)
	if err != nil {
		s.log.Warn(ctx, "video cache unreadable", "error", err)
	}
	now := s.now()
	if cached != nil && timex.Fresh(cached.FetchedAt, now, s.ttl) {
		return cached, nil
	}

	videos, err := s.api.Search(ctx, s.query, s.count)
	if err != nil {
		if cached != nil {
			s.log.Warn(ctx, "video refresh failed, serving stale copy", "fetched_at", cached.FetchedAt, "error", err)
			cached.Stale = true
			return cached, nil
		}
		return nil, fmt.Errorf("fetch videos: %w", err)
	}

	b, err := json.Marshal(videos)
	if err != nil {
		return nil, fmt.Errorf("encode videos: %w", err)
	}
	if err := s.store.Put(ctx, results.Result{Key: s.key(), Value: b, FetchedAt: now}); err != nil {
		s.log.Warn(ctx, "video listing not cached", "error", err)
	}
	return &VideoListing{Videos: videos, FetchedAt: now}, nil
}

func (s *videoService) load(ctx context.Context) (*VideoListing, error) {
	r, err := s.store.Get(ctx, s.key())
	if err != nil || r == nil {
		return nil, err
	}
	var videos []models.Video
	if err := json.Unmarshal(r.Value, &videos); err != nil {
		return nil, fmt.Errorf("decode videos: %w", err)
	}
	return &VideoListing{Videos: videos, FetchedAt: r.FetchedAt, FromCache: true}, nil
}
