package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/lawdesk/internal/client/client"
	"github.com/dmitrijs2005/lawdesk/internal/client/config"
	"github.com/dmitrijs2005/lawdesk/internal/client/metrics"
	"github.com/dmitrijs2005/lawdesk/internal/client/query"
	"github.com/dmitrijs2005/lawdesk/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/lawdesk/internal/client/services"
	"github.com/dmitrijs2005/lawdesk/internal/client/session"
	"github.com/dmitrijs2005/lawdesk/internal/client/storage"
	"github.com/dmitrijs2005/lawdesk/internal/dbx"
	"github.com/dmitrijs2005/lawdesk/internal/logging"

	_ "modernc.org/sqlite"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// resultsRetention bounds how long cached listings stay in the local
// database.
const resultsRetention = 30 * 24 * time.Hour

type App struct {
	config  *config.Config
	log     logging.Logger
	metrics *metrics.Metrics

	session  services.Session
	auth     services.AuthService
	memos    services.MemoService
	history  services.HistoryService
	catalog  services.CatalogService
	research services.ResearchService
	videos   services.VideoService
	chat     services.ChatService

	reader *bufio.Reader
	out    io.Writer

	mu   sync.Mutex
	mode Mode

	closers []func() error
}

// NewApp opens the local database, restores the session and wires the
// services against the configured backend.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	repos, err := client.InitDatabase(ctx, c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	a := &App{
		config:  c,
		log:     log,
		metrics: metrics.New(),
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		closers: []func() error{repos.Close},
	}

	if n, err := repos.Results.PurgeBefore(ctx, time.Now().Add(-resultsRetention)); err != nil {
		log.Warn(ctx, "purge cached results", "error", err)
	} else if n > 0 {
		log.Debug(ctx, "purged cached results", "rows", n)
	}

	store := session.New(repos.Metadata,
		session.WithTransactions(repos.DB, func(tx dbx.DBTX) metadata.Repository {
			return metadata.NewSQLiteRepository(tx)
		}),
		session.WithSecret(c.SessionSecret),
		session.WithLogger(log),
	)
	if err := store.Load(ctx); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("load session: %w", err)
	}
	a.session = store

	api, err := client.NewHTTPClient(client.Options{
		BaseURL:        c.ServerBaseURL,
		Timeout:        c.RequestTimeout,
		LongTimeout:    c.LongRequestTimeout,
		RetryAttempts:  c.RetryAttempts,
		RetryBaseDelay: c.RetryBaseDelay,
		RetryMaxDelay:  c.RetryMaxDelay,
		RateLimit:      c.RateLimit,
		RateBurst:      c.RateBurst,
	}, store, client.WithMetrics(a.metrics), client.WithLogger(log))
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	videoAPI, err := client.NewHTTPClient(client.Options{
		BaseURL: c.VideoAPIURL,
		Timeout: c.RequestTimeout,
	}, nil, client.WithMetrics(a.metrics), client.WithLogger(log))
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	var uploader services.ReportUploader
	s3cfg := storage.S3Config(c.S3)
	if s3cfg.Enabled() {
		s3store, err := storage.NewS3Store(ctx, s3cfg)
		if err != nil {
			log.Warn(ctx, "report upload disabled", "error", err)
		} else {
			uploader = s3store
		}
	}

	cache := query.New(query.WithMetrics(a.metrics), query.WithLogger(log), query.WithBackground(ctx))

	a.auth = services.NewAuthService(api, api, store, cache, log)
	a.memos = services.NewMemoService(api, store, cache, log)
	a.history = services.NewHistoryService(api, store, cache, c.HistoryResolveWorkers, log)
	a.catalog = services.NewCatalogService(api, a.history, cache, c.PageSize, log)
	a.research = services.NewResearchService(api, cache, repos.Results, c.ExportDir, uploader, log)
	a.videos = services.NewVideoService(client.NewVideoClient(videoAPI, c.VideoAPIKey), repos.Results, c.VideoQuery, c.VideoCacheTTL, log)
	a.chat = services.NewChatService(api)

	follow := func(authenticated bool) {
		if authenticated {
			a.history.Follow(store.UserID())
		} else {
			a.history.Follow("")
		}
	}
	follow(store.IsAuthenticated())
	unsubscribe := store.Subscribe(func(s session.Snapshot) {
		if !s.Authenticated {
			a.memos.Board().Reset()
		}
		follow(s.Authenticated)
	})
	a.closers = append(a.closers, func() error {
		unsubscribe()
		a.history.Close()
		return nil
	})

	return a, nil
}

// Close releases what NewApp opened, in reverse order.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(context.Background(), "connectivity changed", "mode", mode)
	}
}

func (a *App) isLoggedIn() bool {
	return a.session != nil && a.session.IsAuthenticated()
}

// Run shows the welcome line, starts the connectivity watcher and blocks
// in the REPL until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	printlnFn("Welcome to lawdesk (type 'help' for commands)")
	a.checkOnline(ctx)
	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a.commands(), a.getStatus, a.reader)
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := a.auth.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// StartOnlineStatusWatcher pings the backend every interval until ctx ends
// and keeps Mode in step.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) getStatus() string {
	var parts []string
	if a.session != nil && a.session.IsAuthenticated() {
		if u := a.session.User(); u != nil && u.Nickname != "" {
			parts = append(parts, u.Nickname)
		}
	}
	if m := a.Mode(); m != "" {
		parts = append(parts, string(m))
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " ") + ")"
}
