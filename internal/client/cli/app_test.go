package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/lawdesk/internal/client/config"
	"github.com/dmitrijs2005/lawdesk/internal/client/history"
	"github.com/dmitrijs2005/lawdesk/internal/client/metrics"
	"github.com/dmitrijs2005/lawdesk/internal/client/models"
	"github.com/dmitrijs2005/lawdesk/internal/client/services"
	"github.com/dmitrijs2005/lawdesk/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ------------ fakes ------------

type fakeSession struct {
	services.Session
	user *models.User
}

func (s *fakeSession) IsAuthenticated() bool { return s.user != nil }
func (s *fakeSession) User() *models.User    { return s.user }

type fakeAuth struct {
	services.AuthService

	mu       sync.Mutex
	pingErr  error
	loginErr error
	session  *fakeSession
	signup   services.SignupForm
	patch    models.UserPatch
}

func (f *fakeAuth) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingErr
}

func (f *fakeAuth) setPingErr(err error) {
	f.mu.Lock()
	f.pingErr = err
	f.mu.Unlock()
}

func (f *fakeAuth) Login(_ context.Context, email, _ string) (*models.User, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.session.user = &models.User{ID: "1", Email: email, Nickname: "kim"}
	return f.session.user, nil
}

func (f *fakeAuth) Logout(context.Context) error {
	f.session.user = nil
	return nil
}

func (f *fakeAuth) SendSignupCode(context.Context, string) error           { return nil }
func (f *fakeAuth) VerifySignupCode(context.Context, string, string) error { return nil }
func (f *fakeAuth) CheckNickname(_ context.Context, n string) (bool, error) {
	return n != "taken", nil
}

func (f *fakeAuth) Signup(_ context.Context, form services.SignupForm) (*models.User, error) {
	f.signup = form
	return &models.User{Email: form.Email, Nickname: form.Nickname}, nil
}

func (f *fakeAuth) Profile(context.Context) (*models.User, error) {
	return f.session.user, nil
}

func (f *fakeAuth) UpdateProfile(_ context.Context, p models.UserPatch) (*models.User, error) {
	f.patch = p
	u := f.session.user.Merge(p)
	f.session.user = &u
	return &u, nil
}

type fakeMemos struct {
	services.MemoService
	memos []models.Memo
	saved []models.MemoInput
	del   []models.RefID
}

func (f *fakeMemos) List(context.Context, services.MemoOrder) ([]models.Memo, error) {
	return f.memos, nil
}

func (f *fakeMemos) Save(_ context.Context, in models.MemoInput) (*models.Memo, error) {
	f.saved = append(f.saved, in)
	id := in.ID
	if id == "" {
		id = "99"
	}
	return &models.Memo{ID: id, Title: in.Title}, nil
}

func (f *fakeMemos) Delete(_ context.Context, id models.RefID) error {
	f.del = append(f.del, id)
	return nil
}

type fakeHistory struct {
	services.HistoryService
	items   []history.Item
	mode    history.Mode
	cleared bool
}

func (f *fakeHistory) History(_ context.Context, mode history.Mode) ([]history.Item, error) {
	f.mode = mode
	return f.items, nil
}

func (f *fakeHistory) Clear(context.Context) error {
	f.cleared = true
	return nil
}

type fakeCatalog struct {
	services.CatalogService
	precedents []models.Precedent
	pages      []int
	doc        *models.Document
}

func (f *fakeCatalog) SearchPrecedents(_ context.Context, _ string, page int) (services.Page[models.Precedent], error) {
	f.pages = append(f.pages, page)
	return services.Paginate(f.precedents, page, 2), nil
}

func (f *fakeCatalog) PrecedentDetail(context.Context, models.RefID) (*models.Document, error) {
	return f.doc, nil
}

type fakeResearch struct {
	services.ResearchService
	legal    models.LegalResearchForm
	exported []models.ResearchReport
}

func (f *fakeResearch) SubmitLegal(_ context.Context, form models.LegalResearchForm) (*models.ResearchReport, error) {
	f.legal = form
	return &models.ResearchReport{Kind: "legal", FinalReport: "## Opinion\nyou may claim the deposit"}, nil
}

func (f *fakeResearch) Export(_ context.Context, r models.ResearchReport) (*services.ExportResult, error) {
	f.exported = append(f.exported, r)
	return &services.ExportResult{Path: "/tmp/legal-report.md"}, errors.New("upload denied")
}

type fakeVideos struct {
	listing *services.VideoListing
}

func (f *fakeVideos) Latest(context.Context) (*services.VideoListing, error) {
	return f.listing, nil
}

// ------------ helpers ------------

func newTestApp(t *testing.T, input string) (*App, *bytes.Buffer, *fakeAuth) {
	t.Helper()
	sess := &fakeSession{}
	auth := &fakeAuth{session: sess}
	var out bytes.Buffer
	a := &App{
		config:  &config.Config{},
		log:     logging.Nop(),
		metrics: metrics.New(),
		session: sess,
		auth:    auth,
		reader:  bufio.NewReader(strings.NewReader(input)),
		out:     &out,
	}
	return a, &out, auth
}

func stubPasswords(t *testing.T, pw ...string) {
	t.Helper()
	orig := getPassword
	i := 0
	getPassword = func(string, io.Writer) ([]byte, error) {
		if i >= len(pw) {
			return nil, errors.New("no more passwords")
		}
		i++
		return []byte(pw[i-1]), nil
	}
	t.Cleanup(func() { getPassword = orig })
}

// ------------ tests ------------

func TestGetStatus(t *testing.T) {
	a, _, _ := newTestApp(t, "")
	assert.Equal(t, "", a.getStatus())

	a.setMode(ModeOnline)
	assert.Equal(t, "(online)", a.getStatus())

	a.session.(*fakeSession).user = &models.User{Nickname: "kim"}
	assert.Equal(t, "(kim online)", a.getStatus())
}

func TestStartOnlineStatusWatcher(t *testing.T) {
	a, _, auth := newTestApp(t, "")
	a.setMode(ModeOnline)
	auth.setPingErr(errors.New("down"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.StartOnlineStatusWatcher(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return a.Mode() == ModeOffline }, time.Second, 5*time.Millisecond)
	auth.setPingErr(nil)
	require.Eventually(t, func() bool { return a.Mode() == ModeOnline }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestLogin_PrintsWelcome(t *testing.T) {
	a, out, _ := newTestApp(t, "kim@x.io\n")
	stubPasswords(t, "secret!!")

	require.NoError(t, a.Login(context.Background(), nil))
	assert.Contains(t, out.String(), "Welcome, kim")
	assert.True(t, a.isLoggedIn())
}

func TestLogin_FailureReturnsError(t *testing.T) {
	a, _, auth := newTestApp(t, "kim@x.io\n")
	auth.loginErr = errors.New("invalid credentials")
	stubPasswords(t, "wrong")

	require.Error(t, a.Login(context.Background(), nil))
	assert.False(t, a.isLoggedIn())
}

func TestSignup_Flow(t *testing.T) {
	a, out, auth := newTestApp(t, "new@x.io\n123456\nnewbie\n")
	stubPasswords(t, "secret!!", "secret!!")

	require.NoError(t, a.Signup(context.Background(), nil))
	assert.Equal(t, services.SignupForm{
		Email: "new@x.io", Code: "123456", Nickname: "newbie",
		Password: "secret!!", ConfirmPassword: "secret!!",
	}, auth.signup)
	assert.Contains(t, out.String(), "Account created for new@x.io")
}

func TestSignup_NicknameTaken(t *testing.T) {
	a, _, auth := newTestApp(t, "new@x.io\n123456\ntaken\n")
	stubPasswords(t)

	require.Error(t, a.Signup(context.Background(), nil))
	assert.Empty(t, auth.signup.Email)
}

func TestProfile_EditNickname(t *testing.T) {
	a, out, auth := newTestApp(t, "renamed\nn\n")
	a.session.(*fakeSession).user = &models.User{ID: "1", Nickname: "kim", Email: "kim@x.io"}

	require.NoError(t, a.Profile(context.Background(), []string{"edit"}))
	require.NotNil(t, auth.patch.Nickname)
	assert.Equal(t, "renamed", *auth.patch.Nickname)
	assert.Nil(t, auth.patch.Password)
	assert.Contains(t, out.String(), "Profile updated.")
	assert.Equal(t, "(renamed)", a.getStatus())
}

func TestMemoCommands(t *testing.T) {
	a, out, _ := newTestApp(t, "Court hearing\nbring documents\n\n2025-06-01\ny\n")
	memos := &fakeMemos{memos: []models.Memo{{ID: "3", Title: "call lawyer", Content: "about the lease"}}}
	a.memos = memos
	ctx := context.Background()

	require.NoError(t, a.Memos(ctx, nil))
	assert.Contains(t, out.String(), "[3] call lawyer")

	require.Error(t, a.Memos(ctx, []string{"sideways"}))

	require.NoError(t, a.AddMemo(ctx, nil))
	require.Len(t, memos.saved, 1)
	in := memos.saved[0]
	assert.Equal(t, "Court hearing", in.Title)
	assert.Equal(t, "bring documents", in.Content)
	require.NotNil(t, in.EventDate)
	assert.Equal(t, "2025-06-01", in.EventDate.Format("2006-01-02"))
	assert.True(t, in.Notification)

	require.NoError(t, a.DeleteMemo(ctx, []string{"3"}))
	assert.Equal(t, []models.RefID{"3"}, memos.del)
	require.Error(t, a.DeleteMemo(ctx, nil))
}

func TestEditMemo_EmptyKeepsValues(t *testing.T) {
	a, _, _ := newTestApp(t, "\n\n\n\n")
	memos := &fakeMemos{memos: []models.Memo{{ID: "3", Title: "call lawyer", Content: "about the lease"}}}
	a.memos = memos

	require.NoError(t, a.EditMemo(context.Background(), []string{"3"}))
	require.Len(t, memos.saved, 1)
	assert.Equal(t, models.RefID("3"), memos.saved[0].ID)
	assert.Equal(t, "call lawyer", memos.saved[0].Title)
	assert.Equal(t, "about the lease", memos.saved[0].Content)

	require.Error(t, a.EditMemo(context.Background(), []string{"404"}))
}

func TestHistoryCommand(t *testing.T) {
	a, out, _ := newTestApp(t, "y\n")
	entry := models.ViewedLog{ID: "5", PrecedentID: models.Ref("p1")}
	hist := &fakeHistory{items: []history.Item{{Entry: entry, Meta: models.PrecedentMeta{Title: "lease case", CaseNumber: "2020Da1", Court: "Supreme", Date: "2020-01-01"}}}}
	a.history = hist
	ctx := context.Background()

	require.NoError(t, a.History(ctx, []string{"precedent"}))
	assert.Equal(t, history.ModePrecedent, hist.mode)
	assert.Contains(t, out.String(), "lease case (2020Da1, Supreme 2020-01-01)")

	require.Error(t, a.History(ctx, []string{"videos"}))

	require.NoError(t, a.ClearHistory(ctx, nil))
	assert.True(t, hist.cleared)
}

func TestSearch_Pages(t *testing.T) {
	a, out, _ := newTestApp(t, "n\n\n")
	cat := &fakeCatalog{precedents: []models.Precedent{
		{ID: "1", CaseName: "one"}, {ID: "2", CaseName: "two"}, {ID: "3", CaseName: "three"},
	}}
	a.catalog = cat

	require.NoError(t, a.Search(context.Background(), []string{"lease"}))
	assert.Equal(t, []int{1, 2}, cat.pages)
	assert.Contains(t, out.String(), "page 2/2, 3 results")

	require.Error(t, a.Search(context.Background(), nil))
}

func TestDetail_PrintsViewerURL(t *testing.T) {
	a, out, _ := newTestApp(t, "")
	a.catalog = &fakeCatalog{doc: &models.Document{Kind: models.DocumentHTML, ViewerURL: "https://law.example/view/1"}}

	require.NoError(t, a.Detail(context.Background(), []string{"precedent", "1"}))
	assert.Contains(t, out.String(), "Open in browser: https://law.example/view/1")

	require.Error(t, a.Detail(context.Background(), []string{"video", "1"}))
}

func TestResearch_LegalAndExport(t *testing.T) {
	a, out, _ := newTestApp(t, "lease\n2024-05-01\nlandlord\ndeposit kept\ncontract\nnone\nrefund\ny\n")
	res := &fakeResearch{}
	a.research = res

	err := a.Research(context.Background(), []string{"legal"})
	require.Error(t, err, "upload failure is reported")
	assert.Equal(t, "2024-05-01", res.legal.IncidentDate)
	assert.Equal(t, "refund", res.legal.DesiredResult)
	require.Len(t, res.exported, 1)
	assert.Contains(t, out.String(), "you may claim the deposit")
	assert.Contains(t, out.String(), "Saved to /tmp/legal-report.md")
}

func TestVideos_StaleNotice(t *testing.T) {
	a, out, _ := newTestApp(t, "")
	a.videos = &fakeVideos{listing: &services.VideoListing{
		Videos:    []models.Video{{ID: "abc", Title: "Lease basics", Channel: "LawTV"}},
		FetchedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Stale:     true,
	}}

	require.NoError(t, a.Videos(context.Background(), nil))
	assert.Contains(t, out.String(), "offline copy")
	assert.Contains(t, out.String(), "watch?v=abc")
}

func TestTemplatesCommand(t *testing.T) {
	a, out, _ := newTestApp(t, "")
	require.NoError(t, a.Templates(context.Background(), []string{"housing", "lease"}))
	assert.Contains(t, out.String(), "housing lease agreement")

	require.Error(t, a.Templates(context.Background(), []string{"astrology"}))
}

func TestHelp_HidesAccountCommandsWhenLoggedOut(t *testing.T) {
	a, out, _ := newTestApp(t, "")
	cmds := a.commands()

	require.NoError(t, cmds["help"].run(context.Background(), nil))
	assert.Contains(t, out.String(), "login")
	assert.NotContains(t, out.String(), "addmemo")

	out.Reset()
	a.session.(*fakeSession).user = &models.User{Nickname: "kim"}
	require.NoError(t, cmds["help"].run(context.Background(), nil))
	assert.Contains(t, out.String(), "addmemo")
	assert.NotContains(t, out.String(), "signup")
}

func TestStats(t *testing.T) {
	a, out, _ := newTestApp(t, "")
	a.metrics.ObserveRequest("login", "ok", 10*time.Millisecond)

	require.NoError(t, a.Stats(context.Background(), nil))
	assert.Contains(t, out.String(), "login")
}
