package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/lawdesk/internal/client/client"
	"github.com/dmitrijs2005/lawdesk/internal/client/models"
	"github.com/dmitrijs2005/lawdesk/internal/client/query"
	"github.com/dmitrijs2005/lawdesk/internal/logging"
)

type MemoOrder string

const (
	MemoLatest MemoOrder = "latest"
	MemoOldest MemoOrder = "oldest"
)

// MemoService manages the personal memos on "my page".
type MemoService interface {
	List(ctx context.Context, order MemoOrder) ([]models.Memo, error)
	Save(ctx context.Context, in models.MemoInput) (*models.Memo, error)
	Delete(ctx context.Context, id models.RefID) error
	Board() *MemoBoard
}

type memoService struct {
	api     client.MyLogAPI
	session Session
	cache   *query.Cache
	board   *MemoBoard
	log     logging.Logger

	list   query.Query[models.RefID, []models.Memo]
	create query.Mutation[models.MemoInput, *models.Memo]
	update query.Mutation[models.MemoInput, *models.Memo]
	remove query.Mutation[models.RefID, struct{}]
}

func NewMemoService(api client.MyLogAPI, session Session, cache *query.Cache, log logging.Logger) MemoService {
	return &memoService{
		api:     api,
		session: session,
		cache:   cache,
		board:   NewMemoBoard(),
		log:     log,
		list: query.Query[models.RefID, []models.Memo]{
			Name:  "memos",
			Tags:  []string{TagUserMemos},
			Fetch: api.ListMemos,
		},
		create: query.Mutation[models.MemoInput, *models.Memo]{
			Name:        "createMemo",
			Invalidates: []string{TagUserMemos},
			Do:          api.CreateMemo,
		},
		update: query.Mutation[models.MemoInput, *models.Memo]{
			Name:        "updateMemo",
			Invalidates: []string{TagUserMemos},
			Do:          api.UpdateMemo,
		},
		remove: query.Mutation[models.RefID, struct{}]{
			Name:        "deleteMemo",
			Invalidates: []string{TagUserMemos},
			Do: func(ctx context.Context, id models.RefID) (struct{}, error) {
				return struct{}{}, api.DeleteMemo(ctx, id)
			},
		},
	}
}

func (s *memoService) Board() *MemoBoard {
	return s.board
}

// List returns live memos sorted by creation time.
func (s *memoService) List(ctx context.Context, order MemoOrder) ([]models.Memo, error) {
	userID, err := currentUserID(s.session)
	if err != nil {
		return nil, err
	}
	memos, err := query.Fetch(ctx, s.cache, s.list, userID)
	if err != nil {
		return nil, err
	}

	visible := s.board.Project(memos)
	sort.SliceStable(visible, func(i, j int) bool {
		a, b := visible[i].CreatedAt.Time, visible[j].CreatedAt.Time
		if order == MemoOldest {
			return a.Before(b)
		}
		return b.Before(a)
	})
	return visible, nil
}

// Save creates the memo when in.ID is empty and updates it otherwise.
func (s *memoService) Save(ctx context.Context, in models.MemoInput) (*models.Memo, error) {
	userID, err := currentUserID(s.session)
	if err != nil {
		return nil, err
	}
	if err := check(in); err != nil {
		return nil, err
	}
	in.UserID = userID

	m := s.create
	if in.ID != "" {
		m = s.update
	}
	memo, err := query.Mutate(ctx, s.cache, m, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.Name, err)
	}
	return memo, nil
}

// Delete hides the memo immediately and rolls the change back if the
// server refuses.
func (s *memoService) Delete(ctx context.Context, id models.RefID) error {
	if _, err := currentUserID(s.session); err != nil {
		return err
	}
	if !s.board.BeginDelete(id) {
		return nil
	}

	if _, err := query.Mutate(ctx, s.cache, s.remove, id); err != nil {
		s.board.Rollback(id)
		s.log.Warn(ctx, "memo delete rolled back", "memo_id", id, "error", err)
		return fmt.Errorf("delete memo: %w", err)
	}
	s.board.Confirm(id)
	return nil
}
