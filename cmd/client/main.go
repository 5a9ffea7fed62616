package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"charity-events/config"
	"charity-events/internal/apiclient"
	"charity-events/internal/database"
	"charity-events/internal/model"
	"charity-events/internal/page"
	"charity-events/internal/render"
	"charity-events/internal/storage"
	"charity-events/pkg/logger"
)

const usage = `usage: client <command> [flags]

commands:
  home    list upcoming events
  search  search events by date, location and category
  event   show one event
`

func main() {
	defer logger.Sync()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	cli, cleanup := newApp(ctx, cfg.Client, cfg.Redis)
	defer cleanup()

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "home":
		err = cli.home(ctx, args)
	case "search":
		err = cli.search(ctx, args)
	case "event":
		err = cli.event(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		// the page already rendered a message for the user
		cli.log.Debug("command finished with error", zap.Error(err))
		os.Exit(1)
	}
}

type app struct {
	api      *apiclient.Client
	store    storage.Store
	terminal *render.Terminal
	log      *zap.Logger
}

func newApp(ctx context.Context, cfg config.ClientConfig, redisCfg config.RedisConfig) (*app, func()) {
	log := logger.WithComponent("client")
	a := &app{
		api: apiclient.New(cfg.BaseURL,
			apiclient.WithTimeout(cfg.Timeout),
			apiclient.WithRetry(cfg.MaxRetries, cfg.RetryBaseDelay),
			apiclient.WithLogger(logger.WithComponent("apiclient")),
		),
		terminal: render.NewTerminal(os.Stdout, cfg.Width),
		log:      log,
	}

	cleanup := func() {}
	a.store = storage.NewMemoryStore()
	if cfg.StateStore == "redis" {
		rdb, err := database.InitRedis(&redisCfg)
		if err != nil {
			log.Warn("Redis unavailable, search state will not be kept", zap.Error(err))
		} else {
			a.store = storage.NewRedisStore(rdb, storage.DefaultRedisPrefix)
			cleanup = func() { rdb.Close() }
		}
	}

	healthCtx, cancel := context.WithTimeout(ctx, page.DefaultReadyTimeout)
	defer cancel()
	if err := a.api.Health(healthCtx); err != nil {
		log.Warn("API health check failed", zap.String("base_url", cfg.BaseURL), zap.Error(err))
	}
	return a, cleanup
}

func (a *app) home(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("home", flag.ExitOnError)
	query := fs.String("q", "", "filter by name, location, description or category")
	sortFlag := fs.String("sort", "", "sort key[:asc|desc], key is date, name, location or price")
	view := fs.String("view", "", "grid or list")
	fs.Parse(args)

	home := page.NewHome(a.api, a.terminal, a.store)
	defer home.Close()

	if err := home.Start(ctx); err != nil {
		return err
	}
	if *sortFlag != "" {
		s, err := model.ParseSort(*sortFlag)
		if err != nil {
			return err
		}
		home.SetSort(ctx, s)
	}
	if *view != "" {
		home.SetViewMode(ctx, page.ViewMode(*view))
	}
	if *query != "" {
		home.SetQuery(*query)
		waitFor(ctx, func() bool { return home.View().Query == *query })
	}
	return nil
}

func (a *app) search(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	date := fs.String("date", "", "calendar day, YYYY-MM-DD")
	location := fs.String("location", "", "location or name contains")
	category := fs.Int("category", 0, "category id, 0 for any")
	query := fs.String("q", "", "narrow the results further")
	sortFlag := fs.String("sort", "", "sort key[:asc|desc]")
	reset := fs.Bool("clear", false, "forget the saved search")
	fs.Parse(args)

	search := page.NewSearch(a.api, a.terminal, a.store)
	defer search.Close()

	if err := search.Start(ctx); err != nil {
		return err
	}
	if *reset {
		return search.Clear(ctx)
	}
	if *sortFlag != "" {
		s, err := model.ParseSort(*sortFlag)
		if err != nil {
			return err
		}
		search.SetSort(ctx, s)
	}
	if *query != "" {
		search.SetQuery(ctx, *query)
	}

	// only the filters given on the command line replace the restored ones
	criteria := search.Criteria()
	changed := false
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "date":
			criteria.Date, changed = *date, true
		case "location":
			criteria.Location, changed = *location, true
		case "category":
			criteria.CategoryID, changed = *category, true
		}
	})
	if !changed {
		return nil
	}
	return search.SetCriteria(ctx, criteria)
}

func (a *app) event(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("event", flag.ExitOnError)
	id := fs.String("id", "", "event id")
	watch := fs.Duration("watch", 0, "keep refreshing the fundraising progress for this long")
	register := fs.Bool("register", false, "open the registration dialog (keys: tab, shift+tab, escape)")
	fs.Parse(args)
	if *id == "" && fs.NArg() > 0 {
		*id = fs.Arg(0)
	}

	detail := page.NewDetail(a.api, a.terminal)
	defer detail.Close()

	if err := detail.Start(ctx, url.Values{"id": {*id}}); err != nil {
		return err
	}
	if *register {
		a.registration(detail)
	}
	if *watch > 0 && detail.Polling() {
		select {
		case <-time.After(*watch):
		case <-ctx.Done():
		}
	}
	return nil
}

// registration feeds key names from stdin to the dialog until it closes.
func (a *app) registration(detail *page.Detail) {
	detail.OpenModal("register")
	scanner := bufio.NewScanner(os.Stdin)
	for detail.Modal().Open && scanner.Scan() {
		key := page.Key(strings.ToLower(strings.TrimSpace(scanner.Text())))
		if !detail.HandleKey(key) {
			a.log.Debug("ignored key", zap.String("key", string(key)))
		}
	}
	detail.CloseModal()
}

func waitFor(ctx context.Context, cond func() bool) {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case <-ticker.C:
		case <-deadline:
			return
		case <-ctx.Done():
			return
		}
	}
}
