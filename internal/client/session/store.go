// Package session holds the single authenticated session of the client: the
// bearer token and the current user. State lives in memory and is mirrored
// to the local metadata store so a restart resumes the session.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/lawdesk/internal/client/models"
	"github.com/dmitrijs2005/lawdesk/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/lawdesk/internal/cryptox"
	"github.com/dmitrijs2005/lawdesk/internal/dbx"
	"github.com/dmitrijs2005/lawdesk/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

const (
	keyToken       = "session.token"
	keySealedToken = "session.token.sealed"
	keyUser        = "session.user"
)

// Snapshot is a read-only copy of the session.
type Snapshot struct {
	Token         string
	User          *models.User
	Authenticated bool
}

type Store struct {
	mu    sync.RWMutex
	token string
	user  *models.User

	repo      metadata.Repository
	db        dbx.TxBeginner
	txRepo    func(dbx.DBTX) metadata.Repository
	secret    []byte
	log       logging.Logger
	now       func() time.Time
	listeners map[int]func(Snapshot)
	nextID    int
}

type Option func(*Store)

// WithTransactions makes SetCredentials write token and user in one
// transaction. repoFor builds a repository bound to the transaction.
func WithTransactions(db dbx.TxBeginner, repoFor func(dbx.DBTX) metadata.Repository) Option {
	return func(s *Store) {
		s.db = db
		s.txRepo = repoFor
	}
}

// WithSecret seals the persisted token with a key derived from secret.
func WithSecret(secret string) Option {
	return func(s *Store) {
		if secret != "" {
			s.secret = []byte(secret)
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(repo metadata.Repository, opts ...Option) *Store {
	s := &Store{
		repo:      repo,
		log:       logging.Nop(),
		now:       time.Now,
		listeners: make(map[int]func(Snapshot)),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Load restores the persisted session. A token that cannot be unsealed is
// dropped and the session starts logged out.
func (s *Store) Load(ctx context.Context) error {
	token, err := s.loadToken(ctx)
	if err != nil {
		return err
	}

	var user *models.User
	raw, err := s.repo.Get(ctx, keyUser)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if len(raw) > 0 {
		var u models.User
		if err := json.Unmarshal(raw, &u); err != nil {
			s.log.Warn(ctx, "discarding unreadable persisted user", "error", err)
		} else {
			user = &u
		}
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()

	s.notify()
	return nil
}

func (s *Store) loadToken(ctx context.Context) (string, error) {
	sealed, err := s.repo.Get(ctx, keySealedToken)
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	if len(sealed) > 0 {
		if s.secret == nil {
			s.log.Warn(ctx, "persisted token is sealed but no session secret is configured")
			return "", nil
		}
		plain, err := cryptox.Open(sealed, s.secret)
		if err != nil {
			s.log.Warn(ctx, "cannot unseal persisted token", "error", err)
			return "", nil
		}
		return string(plain), nil
	}

	plain, err := s.repo.Get(ctx, keyToken)
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	return string(plain), nil
}

// SetCredentials replaces token and user together, then persists both. The
// in-memory session is updated even when persisting fails.
func (s *Store) SetCredentials(ctx context.Context, token string, user *models.User) error {
	var u *models.User
	if user != nil {
		c := user.Merge(models.UserPatch{})
		u = &c
	}

	s.mu.Lock()
	s.token = token
	s.user = u
	s.mu.Unlock()
	s.notify()

	return s.persist(ctx, token, u)
}

// UpdateUserInfo shallow-merges patch into the current user.
func (s *Store) UpdateUserInfo(ctx context.Context, patch models.UserPatch) error {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return nil
	}
	merged := s.user.Merge(patch)
	s.user = &merged
	token := s.token
	s.mu.Unlock()
	s.notify()

	return s.persist(ctx, token, &merged)
}

// ReplaceUser swaps in a user record fetched from the server.
func (s *Store) ReplaceUser(ctx context.Context, user models.User) error {
	s.mu.Lock()
	if s.token == "" {
		s.mu.Unlock()
		return nil
	}
	u := user.Merge(models.UserPatch{})
	s.user = &u
	token := s.token
	s.mu.Unlock()
	s.notify()

	return s.persist(ctx, token, &u)
}

// Logout clears memory first, then storage. Storage failures are logged and
// returned but never leave the in-memory session authenticated.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
	s.notify()

	if err := s.repo.Delete(ctx, keyToken, keySealedToken, keyUser); err != nil {
		s.log.Error(ctx, "failed to clear persisted session", "error", err)
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *Store) persist(ctx context.Context, token string, user *models.User) error {
	var userJSON []byte
	if user != nil {
		b, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("encode user: %w", err)
		}
		userJSON = b
	}

	tokenKey, staleKey := keyToken, keySealedToken
	tokenValue := []byte(token)
	if s.secret != nil && token != "" {
		sealed, err := cryptox.Seal(tokenValue, s.secret)
		if err != nil {
			return fmt.Errorf("seal token: %w", err)
		}
		tokenKey, staleKey = keySealedToken, keyToken
		tokenValue = sealed
	}

	write := func(ctx context.Context, repo metadata.Repository) error {
		if token == "" {
			if err := repo.Delete(ctx, keyToken, keySealedToken); err != nil {
				return err
			}
		} else {
			if err := repo.Set(ctx, tokenKey, tokenValue); err != nil {
				return err
			}
			if err := repo.Delete(ctx, staleKey); err != nil {
				return err
			}
		}
		if userJSON == nil {
			return repo.Delete(ctx, keyUser)
		}
		return repo.Set(ctx, keyUser, userJSON)
	}

	var err error
	if s.db != nil && s.txRepo != nil {
		err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			return write(ctx, s.txRepo(tx))
		})
	} else {
		err = write(ctx, s.repo)
	}
	if err != nil {
		s.log.Error(ctx, "failed to persist session", "error", err)
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the current user, nil when logged out.
func (s *Store) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := s.user.Merge(models.UserPatch{})
	return &u
}

// UserID is the current user's id, falling back to the token's subject.
func (s *Store) UserID() models.RefID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user != nil && s.user.ID != "" {
		return s.user.ID
	}
	if claims := parseClaims(s.token); claims != nil {
		if sub, err := claims.GetSubject(); err == nil {
			return models.RefID(sub)
		}
	}
	return ""
}

// IsAuthenticated reports whether a token is present and, when it is a JWT
// carrying exp, not yet expired.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticatedLocked()
}

func (s *Store) authenticatedLocked() bool {
	if s.token == "" {
		return false
	}
	claims := parseClaims(s.token)
	if claims == nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return s.now().Before(exp.Time)
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{Token: s.token, Authenticated: s.authenticatedLocked()}
	if s.user != nil {
		u := s.user.Merge(models.UserPatch{})
		snap.User = &u
	}
	return snap
}

// Subscribe registers fn to run after every change. The returned func
// removes it.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify() {
	snap := s.Snapshot()

	s.mu.RLock()
	fns := make([]func(Snapshot), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// parseClaims reads claims without verifying the signature; the server is
// the only party that can verify, the client only needs exp and sub.
func parseClaims(token string) jwt.MapClaims {
	if token == "" {
		return nil
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	return claims
}
