package cmd

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/lepinkainen/libris/internal/cache"
	"github.com/lepinkainen/libris/internal/config"
	"github.com/lepinkainen/libris/internal/errors"
	"github.com/lepinkainen/libris/internal/metadata"
	"github.com/lepinkainen/libris/internal/openlibrary"
	"github.com/lepinkainen/libris/internal/render"
	"github.com/spf13/viper"
)

var (
	stdout      io.Writer = os.Stdout
	openCache             = cache.Open
	selectBook            = tuiSelect
	newProvider           = buildProvider
)

// Globals holds the flags shared by every command
type Globals struct {
	Config      string `help:"Path to a YAML config file (defaults to ./config.yaml)"`
	CacheDBFile string `help:"Path to cache SQLite database file"`
	NoCache     bool   `help:"Ignore cached responses; fresh responses are still cached"`
	Format      string `short:"o" help:"Output format" enum:"json,yaml" default:"json"`
	Verbose     bool   `short:"v" help:"Enable debug logging"`
}

// CLI represents the complete command structure for the libris application
type CLI struct {
	Globals

	Author       AuthorCmd       `cmd:"" help:"Look up an author by OpenLibrary ID"`
	Book         BookCmd         `cmd:"" help:"Look up a book by work or edition ID"`
	Search       SearchCmd       `cmd:"" help:"Search for books by title and author"`
	SearchAuthor SearchAuthorCmd `cmd:"" help:"Search for authors"`
	Isbn         IsbnCmd         `cmd:"" help:"Find books by ISBN"`
	Asin         AsinCmd         `cmd:"" help:"Find books by ASIN"`
	Cache        CacheCmd        `cmd:"" help:"Manage the response cache"`
}

// CacheCmd groups the cache maintenance subcommands
type CacheCmd struct {
	ClearExpired cache.ClearExpiredCmd    `cmd:"" help:"Remove expired cache entries"`
	Invalidate   cache.InvalidateCacheCmd `cmd:"" help:"Remove every cached entry of one source"`
}

func kongOptions() []kong.Option {
	return []kong.Option{
		kong.Name("libris"),
		kong.Description("Resolve book and author metadata from OpenLibrary."),
		kong.UsageOnError(),
	}
}

// Execute runs the Kong-based CLI
func Execute() {
	var cli CLI
	ctx := kong.Parse(&cli, kongOptions()...)

	initLogging(cli.Verbose)

	if err := initConfig(&cli.Globals); err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	err := ctx.Run(&cli.Globals)
	if errors.IsStopProcessingError(err) {
		slog.Info("Stopped by user")
		return
	}
	if err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func initConfig(g *Globals) error {
	if err := config.InitConfig(g.Config); err != nil {
		return err
	}
	applyGlobalFlags(g)
	return nil
}

// applyGlobalFlags lets flags override values from the config file and environment.
func applyGlobalFlags(g *Globals) {
	if g.CacheDBFile != "" {
		viper.Set(config.KeyCacheDBFile, g.CacheDBFile)
	}
}

func initLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	// Logs go to stderr so rendered output can be piped
	handler := humanlog.NewHandler(os.Stderr, &humanlog.Options{
		Level: level,
	})

	slog.SetDefault(slog.New(handler))
}

// session is the per-command wiring of configuration, cache and provider.
type session struct {
	provider *metadata.Provider
	format   render.Format
	close    func()
}

func (s *session) render(v any) error {
	return render.Write(stdout, s.format, v)
}

func openSession(g *Globals) (*session, error) {
	format, err := render.ParseFormat(g.Format)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	provider, closeFn, err := newProvider(cfg)
	if err != nil {
		return nil, err
	}

	return &session{
		provider: provider.WithCacheBypass(g.NoCache),
		format:   format,
		close:    closeFn,
	}, nil
}

// buildProvider wires the OpenLibrary client to the cache. A cache that cannot
// be opened is logged and lookups continue uncached.
func buildProvider(cfg config.Config) (*metadata.Provider, func(), error) {
	var db *cache.CacheDB
	if !cfg.Cache.Disabled {
		opened, err := openCache(cfg.Cache.DBFile)
		if err != nil {
			slog.Warn("Cache unavailable, continuing without it", "database", cfg.Cache.DBFile, "error", err)
		} else {
			db = opened
		}
	}

	client := openlibrary.NewClientFromConfig(cfg, db)
	closeFn := func() {
		if db == nil {
			return
		}
		if err := db.Close(); err != nil {
			slog.Warn("Failed to close cache", "database", cfg.Cache.DBFile, "error", err)
		}
	}

	return metadata.NewOpenLibraryProvider(client), closeFn, nil
}
