package services

import (
	"sync"

	"github.com/dmitrijs2005/lawdesk/internal/client/models"
)

type memoState int

const (
	memoDeleting memoState = iota + 1
	memoDeleted
)

// MemoBoard is the local projection of the memo list. A delete hides the
// memo at once (pending), then is either confirmed or rolled back. A
// confirmed delete stays hidden until a listing shows the memo gone.
type MemoBoard struct {
	mu    sync.Mutex
	state map[models.RefID]memoState
}

func NewMemoBoard() *MemoBoard {
	return &MemoBoard{state: make(map[models.RefID]memoState)}
}

// BeginDelete hides id. It returns false when a delete is already pending.
func (b *MemoBoard) BeginDelete(id models.RefID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state[id] == memoDeleting {
		return false
	}
	b.state[id] = memoDeleting
	return true
}

func (b *MemoBoard) Confirm(id models.RefID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state[id] = memoDeleted
}

// Rollback makes id visible again.
func (b *MemoBoard) Rollback(id models.RefID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.state, id)
}

func (b *MemoBoard) Pending(id models.RefID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state[id] == memoDeleting
}

// Project drops soft-deleted and locally hidden memos. Confirmed deletes
// the server no longer lists as live are forgotten.
func (b *MemoBoard) Project(memos []models.Memo) []models.Memo {
	b.mu.Lock()
	defer b.mu.Unlock()

	live := make(map[models.RefID]bool, len(memos))
	out := make([]models.Memo, 0, len(memos))
	for _, m := range memos {
		if m.IsDeleted {
			continue
		}
		live[m.ID] = true
		if _, hidden := b.state[m.ID]; hidden {
			continue
		}
		out = append(out, m)
	}
	for id, st := range b.state {
		if st == memoDeleted && !live[id] {
			delete(b.state, id)
		}
	}
	return out
}

// Reset forgets all pending state, e.g. after logout.
func (b *MemoBoard) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = make(map[models.RefID]memoState)
}
