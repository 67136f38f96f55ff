package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/dbcache/internal/client/cache"
	"github.com/dmitrijs2005/dbcache/internal/client/client"
	"github.com/dmitrijs2005/dbcache/internal/client/config"
	"github.com/dmitrijs2005/dbcache/internal/client/models"
	"github.com/dmitrijs2005/dbcache/internal/client/services"
	"github.com/dmitrijs2005/dbcache/internal/client/store"
	"github.com/dmitrijs2005/dbcache/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config *config.Config
	log    logging.Logger

	store  *store.Store
	remote client.Client
	sync   services.SyncService
	cache  *cache.Reader

	in  *bufio.Reader
	out io.Writer

	mu        sync.RWMutex
	mode      Mode
	refreshes map[models.Kind]models.Outcome
}

// NewApp opens the local cache and builds the services on top of it.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	if log == nil {
		log = logging.Nop()
	}

	st, err := store.Open(ctx, store.Options{Path: c.DatabasePath, Logger: log})
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	remote, err := client.NewHTTPClient(c.APIBaseURL, c.RequestTimeout, client.WithLogger(log))
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	svc := services.NewSyncService(remote, st,
		services.WithPageSize(c.PageSize),
		services.WithLogger(log),
	)

	return newApp(c, log, st, remote, svc, os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, log logging.Logger, st *store.Store, remote client.Client, svc services.SyncService, in io.Reader, out io.Writer) *App {
	return &App{
		config: c,
		log:    log,
		store:  st,
		remote: remote,
		sync:   svc,
		cache:  cache.NewReader(st),
		in:     bufio.NewReader(in),
		out:    out,
		mode:   ModeOffline,

		refreshes: make(map[models.Kind]models.Outcome),
	}
}

func (a *App) Mode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
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

// Run starts the online status watcher and the REPL, and releases every
// resource when the user exits.
func (a *App) Run(ctx context.Context) error {
	wctx, cancel := context.WithCancel(ctx)
	go a.StartOnlineStatusWatcher(wctx, a.config.OnlineCheckInterval)

	printSection(a.out, "Dragon Ball cache (type 'help' for commands)")
	runREPL(ctx, a, func() string { return string(a.Mode()) }, a.in)

	cancel()
	return a.Close()
}

// Close releases the remote client and the store.
func (a *App) Close() error {
	return errors.Join(a.remote.Close(), a.store.Close())
}

// StartOnlineStatusWatcher pings the remote API every interval until ctx is
// done and keeps the mode in sync with the result.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	check := func() {
		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := a.sync.Ping(pctx)
		cancel()

		if err != nil {
			a.setMode(ModeOffline)
		} else {
			a.setMode(ModeOnline)
		}
	}
	check()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			check()
		case <-ctx.Done():
			return
		}
	}
}
