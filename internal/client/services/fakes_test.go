package services

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/lawdesk/internal/client/client"
	"github.com/dmitrijs2005/lawdesk/internal/client/models"
	"github.com/dmitrijs2005/lawdesk/internal/client/query"
	"github.com/dmitrijs2005/lawdesk/internal/client/repositories/results"
	"github.com/dmitrijs2005/lawdesk/internal/logging"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// fakeSession is an in-memory Session.
type fakeSession struct {
	mu    sync.Mutex
	token string
	user  *models.User
}

func loggedIn(id string) *fakeSession {
	return &fakeSession{token: "tok", user: &models.User{ID: models.RefID(id), Email: "u@x.io", Nickname: "nick"}}
}

func (s *fakeSession) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *fakeSession) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *fakeSession) UserID() models.RefID {
	if u := s.User(); u != nil {
		return u.ID
	}
	return ""
}

func (s *fakeSession) IsAuthenticated() bool { return s.Token() != "" }

func (s *fakeSession) SetCredentials(_ context.Context, token string, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.user = token, user
	return nil
}

func (s *fakeSession) UpdateUserInfo(_ context.Context, patch models.UserPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user != nil {
		u := s.user.Merge(patch)
		s.user = &u
	}
	return nil
}

func (s *fakeSession) ReplaceUser(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &user
	return nil
}

func (s *fakeSession) Logout(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.user = "", nil
	return nil
}

// fakeAPI is a scriptable backend. Unset hooks return zero values.
type fakeAPI struct {
	client.Client

	mu     sync.Mutex
	calls  map[string]int
	memos  []models.Memo
	viewed []models.ViewedLog
	nextID int

	loginFn      func(email, password string) (*models.Credentials, error)
	deleteMemoFn func(id models.RefID) error
	metaFn       func(id models.RefID) (*models.PrecedentMeta, error)
	legalFn      func(models.LegalResearchForm) (*models.ResearchReport, error)
	searchFn     func(keyword string) ([]models.Precedent, error)
	docFn        func(id models.RefID) (*models.Document, error)
	chatFn       func(category, message string) (*models.ChatReply, error)
	verifyErr    error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{calls: make(map[string]int)}
}

func (f *fakeAPI) hit(op string) {
	f.mu.Lock()
	f.calls[op]++
	f.mu.Unlock()
}

func (f *fakeAPI) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeAPI) id() models.RefID {
	f.nextID++
	return models.RefID(strconv.Itoa(f.nextID))
}

func (f *fakeAPI) Ping(context.Context) error { f.hit("ping"); return nil }

func (f *fakeAPI) SendEmailCode(context.Context, string) error { f.hit("sendEmailCode"); return nil }

func (f *fakeAPI) VerifyEmailCode(context.Context, string, string) error {
	f.hit("verifyEmailCode")
	return f.verifyErr
}

func (f *fakeAPI) Register(_ context.Context, in client.SignupRequest) (*models.User, error) {
	f.hit("register")
	return &models.User{ID: "1", Email: in.Email, Nickname: in.Nickname}, nil
}

func (f *fakeAPI) Login(_ context.Context, email, password string) (*models.Credentials, error) {
	f.hit("login")
	if f.loginFn != nil {
		return f.loginFn(email, password)
	}
	return &models.Credentials{Token: "tok", User: &models.User{ID: "1", Email: email, Nickname: "nick"}}, nil
}

func (f *fakeAPI) Logout(context.Context) error { f.hit("logout"); return nil }

func (f *fakeAPI) CurrentUser(context.Context) (*models.User, error) {
	f.hit("currentUser")
	return &models.User{ID: "1", Email: "u@x.io", Nickname: "server-nick"}, nil
}

func (f *fakeAPI) UpdateUser(_ context.Context, p models.UserPatch) (*models.User, error) {
	f.hit("updateUser")
	u := models.User{ID: "1", Email: "u@x.io", Nickname: "nick"}.Merge(p)
	return &u, nil
}

func (f *fakeAPI) SendResetCode(_ context.Context, email string) (*client.ResetCodeResult, error) {
	f.hit("sendResetCode")
	return &client.ResetCodeResult{Exists: email != "ghost@x.io"}, nil
}

func (f *fakeAPI) ResetPassword(context.Context, string, string, string) error {
	f.hit("resetPassword")
	return nil
}

func (f *fakeAPI) ListMemos(context.Context, models.RefID) ([]models.Memo, error) {
	f.hit("listMemos")
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Memo(nil), f.memos...), nil
}

func (f *fakeAPI) CreateMemo(_ context.Context, in models.MemoInput) (*models.Memo, error) {
	f.hit("createMemo")
	f.mu.Lock()
	defer f.mu.Unlock()
	m := models.Memo{ID: f.id(), UserID: in.UserID, Title: in.Title, Content: in.Content}
	f.memos = append(f.memos, m)
	return &m, nil
}

func (f *fakeAPI) DeleteMemo(_ context.Context, id models.RefID) error {
	f.hit("deleteMemo")
	if f.deleteMemoFn != nil {
		return f.deleteMemoFn(id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.memos {
		if f.memos[i].ID == id {
			f.memos[i].IsDeleted = true
		}
	}
	return nil
}

func (f *fakeAPI) ListViewedLogs(context.Context, models.RefID) ([]models.ViewedLog, error) {
	f.hit("listViewedLogs")
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.ViewedLog(nil), f.viewed...), nil
}

func (f *fakeAPI) CreateViewedLog(_ context.Context, in models.ViewedLogInput) (*models.ViewedLog, error) {
	f.hit("createViewedLog")
	f.mu.Lock()
	defer f.mu.Unlock()
	v := models.ViewedLog{ID: f.id(), UserID: in.UserID, ConsultationID: in.ConsultationID, PrecedentID: in.PrecedentID}
	v.CreatedAt.Time = epoch.Add(time.Duration(f.nextID) * time.Minute)
	f.viewed = append(f.viewed, v)
	return &v, nil
}

func (f *fakeAPI) DeleteAllViewedLogs(context.Context, models.RefID) error {
	f.hit("deleteAllViewedLogs")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.viewed = nil
	return nil
}

func (f *fakeAPI) PrecedentMeta(_ context.Context, id models.RefID) (*models.PrecedentMeta, error) {
	f.hit("precedentMeta")
	if f.metaFn != nil {
		return f.metaFn(id)
	}
	return &models.PrecedentMeta{Title: "case " + id.String()}, nil
}

func (f *fakeAPI) SearchPrecedents(_ context.Context, keyword string) ([]models.Precedent, error) {
	f.hit("searchPrecedents")
	if f.searchFn != nil {
		return f.searchFn(keyword)
	}
	return nil, nil
}

func (f *fakeAPI) PrecedentDetail(_ context.Context, id models.RefID) (*models.Document, error) {
	f.hit("precedentDetail")
	if f.docFn != nil {
		return f.docFn(id)
	}
	return &models.Document{Kind: models.DocumentJSON, JSON: []byte(`{"id":1}`)}, nil
}

func (f *fakeAPI) ConsultationDetail(_ context.Context, id models.RefID) (*models.Document, error) {
	f.hit("consultationDetail")
	if f.docFn != nil {
		return f.docFn(id)
	}
	return &models.Document{Kind: models.DocumentJSON, JSON: []byte(`{"id":1}`)}, nil
}

func (f *fakeAPI) SendMessage(_ context.Context, category, message string) (*models.ChatReply, error) {
	f.hit("sendMessage")
	if f.chatFn != nil {
		return f.chatFn(category, message)
	}
	return &models.ChatReply{Response: "echo: " + message}, nil
}

func (f *fakeAPI) SubmitLegalResearch(_ context.Context, form models.LegalResearchForm) (*models.ResearchReport, error) {
	f.hit("legalResearch")
	if f.legalFn != nil {
		return f.legalFn(form)
	}
	return &models.ResearchReport{Kind: "legal", Timestamp: "2025-01-02T03:04:05Z", FinalReport: "## Findings\nok"}, nil
}

func newCache(t *testing.T) *query.Cache {
	t.Helper()
	c := query.New()
	t.Cleanup(c.Wait)
	return c
}

func newResults(t *testing.T) results.Repository {
	t.Helper()
	repos, err := client.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })
	return repos.Results
}

func nop() logging.Logger { return logging.Nop() }

const (
	testWait = 2 * time.Second
	testTick = 5 * time.Millisecond
)
