package services

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/lawdesk/internal/client/client"
	"github.com/dmitrijs2005/lawdesk/internal/client/history"
	"github.com/dmitrijs2005/lawdesk/internal/client/models"
	"github.com/dmitrijs2005/lawdesk/internal/client/query"
	"github.com/dmitrijs2005/lawdesk/internal/logging"
)

const DefaultPageSize = 10

// catalogMaxAge bounds how long search results and detail pages are served
// from memory.
const catalogMaxAge = 10 * time.Minute

// Page is one slice of a longer listing. Number is 1-based.
type Page[T any] struct {
	Items  []T
	Number int
	Pages  int
	Total  int
}

// Paginate cuts items into pages of size and returns page number n,
// clamped into range. The page owns its items.
func Paginate[T any](items []T, n, size int) Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(items)
	pages := (total + size - 1) / size
	if pages == 0 {
		return Page[T]{Number: 1, Pages: 0, Total: 0}
	}
	n = max(1, min(n, pages))
	start := (n - 1) * size
	end := min(start+size, total)
	return Page[T]{Items: slices.Clone(items[start:end]), Number: n, Pages: pages, Total: total}
}

// Truncate shortens s to at most n runes, appending "..." when cut.
func Truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

// CatalogService searches precedents and consultation summaries and opens
// their detail pages. Opening a detail records a view for logged-in users.
type CatalogService interface {
	SearchPrecedents(ctx context.Context, keyword string, page int) (Page[models.Precedent], error)
	PrecedentsByCategory(ctx context.Context, category string, page int) (Page[models.Precedent], error)
	PrecedentDetail(ctx context.Context, id models.RefID) (*models.Document, error)
	SearchConsultations(ctx context.Context, keyword string, page int) (Page[models.Consultation], error)
	ConsultationsByCategory(ctx context.Context, category string, page int) (Page[models.Consultation], error)
	ConsultationDetail(ctx context.Context, id models.RefID) (*models.Document, error)
}

type catalogService struct {
	cache    *query.Cache
	history  HistoryService
	pageSize int
	log      logging.Logger

	searchPrecedents     query.Query[string, []models.Precedent]
	precedentsByCategory query.Query[string, []models.Precedent]
	precedentDetail      query.Query[models.RefID, *models.Document]
	searchConsultations  query.Query[string, []models.Consultation]
	consultsByCategory   query.Query[string, []models.Consultation]
	consultationDetail   query.Query[models.RefID, *models.Document]
}

func NewCatalogService(api client.CatalogAPI, hist HistoryService, cache *query.Cache, pageSize int, log logging.Logger) CatalogService {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	catalogTags := []string{TagCatalog}
	return &catalogService{
		cache:                cache,
		history:              hist,
		pageSize:             pageSize,
		log:                  log,
		searchPrecedents:     query.Query[string, []models.Precedent]{Name: "searchPrecedents", Tags: catalogTags, MaxAge: catalogMaxAge, Fetch: api.SearchPrecedents},
		precedentsByCategory: query.Query[string, []models.Precedent]{Name: "precedentsByCategory", Tags: catalogTags, MaxAge: catalogMaxAge, Fetch: api.PrecedentsByCategory},
		precedentDetail:      query.Query[models.RefID, *models.Document]{Name: "precedentDetail", Tags: catalogTags, MaxAge: catalogMaxAge, Fetch: api.PrecedentDetail},
		searchConsultations:  query.Query[string, []models.Consultation]{Name: "searchConsultations", Tags: catalogTags, MaxAge: catalogMaxAge, Fetch: api.SearchConsultations},
		consultsByCategory:   query.Query[string, []models.Consultation]{Name: "consultationsByCategory", Tags: catalogTags, MaxAge: catalogMaxAge, Fetch: api.ConsultationsByCategory},
		consultationDetail:   query.Query[models.RefID, *models.Document]{Name: "consultationDetail", Tags: catalogTags, MaxAge: catalogMaxAge, Fetch: api.ConsultationDetail},
	}
}

// listPage runs q unless arg is blank; a blank search is an empty result,
// not a request.
func listPage[T any](ctx context.Context, c *query.Cache, q query.Query[string, []T], arg string, page, size int) (Page[T], error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return Paginate[T](nil, 1, size), nil
	}
	items, err := query.Fetch(ctx, c, q, arg)
	if err != nil {
		return Page[T]{}, err
	}
	return Paginate(items, page, size), nil
}

func (s *catalogService) SearchPrecedents(ctx context.Context, keyword string, page int) (Page[models.Precedent], error) {
	return listPage(ctx, s.cache, s.searchPrecedents, keyword, page, s.pageSize)
}

// PrecedentsByCategory passes category through as is; precedent categories
// are free text on the backend.
func (s *catalogService) PrecedentsByCategory(ctx context.Context, category string, page int) (Page[models.Precedent], error) {
	return listPage(ctx, s.cache, s.precedentsByCategory, category, page, s.pageSize)
}

func (s *catalogService) SearchConsultations(ctx context.Context, keyword string, page int) (Page[models.Consultation], error) {
	return listPage(ctx, s.cache, s.searchConsultations, keyword, page, s.pageSize)
}

func (s *catalogService) ConsultationsByCategory(ctx context.Context, category string, page int) (Page[models.Consultation], error) {
	if err := checkCategory(category); err != nil {
		return Page[models.Consultation]{}, err
	}
	return listPage(ctx, s.cache, s.consultsByCategory, category, page, s.pageSize)
}

func (s *catalogService) PrecedentDetail(ctx context.Context, id models.RefID) (*models.Document, error) {
	return s.detail(ctx, s.precedentDetail, history.Ref{Mode: history.ModePrecedent, ID: id})
}

func (s *catalogService) ConsultationDetail(ctx context.Context, id models.RefID) (*models.Document, error) {
	return s.detail(ctx, s.consultationDetail, history.Ref{Mode: history.ModeConsultation, ID: id})
}

func (s *catalogService) detail(ctx context.Context, q query.Query[models.RefID, *models.Document], ref history.Ref) (*models.Document, error) {
	if ref.ID == "" {
		return nil, client.ErrNotFound
	}
	doc, err := query.Fetch(ctx, s.cache, q, ref.ID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, client.ErrNotFound
	}

	if s.history != nil {
		if _, err := s.history.MarkViewed(ctx, ref); err != nil && !errors.Is(err, ErrLoginRequired) {
			s.log.Warn(ctx, "view not recorded", "mode", ref.Mode, "id", ref.ID, "error", err)
		}
	}
	return doc, nil
}
