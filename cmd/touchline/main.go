package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/okian/touchline/internal/adapters/export"
	"github.com/okian/touchline/internal/adapters/http/api"
	"github.com/okian/touchline/internal/adapters/http/swagger"
	"github.com/okian/touchline/internal/adapters/repository"
	app "github.com/okian/touchline/internal/app"
	"github.com/okian/touchline/internal/config"
	"github.com/okian/touchline/internal/metrica"
	"github.com/okian/touchline/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 30 * time.Second
	writeTimeout      = 60 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env -> flags)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	applyFlags(flag.CommandLine, os.Args[1:], cfg)
	if err := cfg.Validate(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(2)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithWriter(os.Stderr)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "touchline failed", logger.String("kind", metrica.Kind(err)), logger.Error(err))
		os.Exit(1)
	}
}

// applyFlags overrides cfg with the flags present on the command line.
func applyFlags(fs *flag.FlagSet, args []string, cfg *config.Config) {
	fs.StringVar(&cfg.EventsPath, "events", cfg.EventsPath, "Event log path or inline JSON; comma-separated for several matches")
	fs.StringVar(&cfg.MetadataPath, "metadata", cfg.MetadataPath, "Metadata path or inline XML; comma-separated for several matches")
	fs.StringVar(&cfg.OutputDir, "out", cfg.OutputDir, "Output directory (default: print a summary only)")
	fs.StringVar(&cfg.OutputFormat, "format", cfg.OutputFormat, "Event table format: csv or json")
	fs.BoolVar(&cfg.Serve, "serve", cfg.Serve, "Run the HTTP API")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level")
	_ = fs.Parse(args)
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	svc, err := buildService(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			log.Warn(ctx, "failed to close service", logger.Error(err))
		}
	}()

	if cfg.Serve {
		return serve(ctx, cfg, svc, log)
	}
	return parseAll(ctx, cfg, svc, log)
}

func buildService(ctx context.Context, cfg *config.Config, log logger.Logger) (*app.Service, error) {
	opts := []app.Option{
		app.WithLogger(log.Named("service")),
		app.WithBatchWorkers(cfg.BatchWorkers),
	}

	storeOpts := []repository.Option{
		repository.WithMaxEntries(cfg.MaxMatches),
		repository.WithTTL(cfg.RedisTTL()),
		repository.WithKeyPrefix(cfg.RedisKeyPrefix),
	}
	switch cfg.Store {
	case config.StoreRedis:
		store, err := repository.NewRedisStore(cfg.RedisURL, storeOpts...)
		if err != nil {
			return nil, fmt.Errorf("open redis store: %w", err)
		}
		opts = append(opts, app.WithStore(store))
		log.Info(ctx, "using redis store")
	default:
		opts = append(opts, app.WithStore(repository.NewMemoryStore(storeOpts...)))
		log.Info(ctx, "using memory store", logger.Int("maxMatches", cfg.MaxMatches))
	}

	if cfg.PostgresDSN != "" {
		sink, err := export.OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := sink.EnsureSchema(ctx); err != nil {
			_ = sink.Close()
			return nil, err
		}
		opts = append(opts, app.WithSink(sink))
		log.Info(ctx, "writing event tables to postgres")
	}

	return app.New(opts...), nil
}

// parseAll parses every configured match and writes the tables to OutputDir.
func parseAll(ctx context.Context, cfg *config.Config, svc *app.Service, log logger.Logger) error {
	inputs, err := cfg.Inputs()
	if err != nil {
		return err
	}
	reqs := make([]app.Request, len(inputs))
	for i, in := range inputs {
		reqs[i] = app.Request{
			ID:       requestID(in[0], i),
			Events:   metrica.Detect(in[0]),
			Metadata: metrica.Detect(in[1]),
		}
	}

	results, err := svc.ParseBatch(ctx, reqs)
	for _, res := range results {
		if res.Match == nil {
			continue
		}
		log.Info(ctx, "match summary",
			logger.String("id", res.ID),
			logger.String("home", res.Summary.HomeTeam),
			logger.String("away", res.Summary.AwayTeam),
			logger.Int("records", res.Summary.Records),
			logger.Int("shots", res.Summary.Shots),
			logger.Int("goals", res.Summary.Goals),
			logger.Int("passes", res.Summary.Passes),
			logger.Int("dribbles", res.Summary.Dribbles),
		)
		if cfg.OutputDir == "" {
			continue
		}
		if werr := writeOutputs(cfg.OutputDir, cfg.OutputFormat, res); werr != nil {
			err = errors.Join(err, werr)
		}
	}
	return err
}

// requestID names a match after its event file, or by position for inline
// documents.
func requestID(events string, i int) string {
	if strings.ContainsAny(events, "{<") {
		return fmt.Sprintf("match-%d", i+1)
	}
	base := filepath.Base(events)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func writeOutputs(dir, format string, res app.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	write := func(name string, fn func(f *os.File) error) error {
		path := filepath.Join(dir, name)
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		if err := fn(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
		return f.Close()
	}

	tableName := res.ID + "_events." + format
	err := write(tableName, func(f *os.File) error {
		if format == config.FormatJSON {
			return export.WriteEventsJSON(f, res.Match.Events)
		}
		return export.WriteEventsCSV(f, res.Match.Events)
	})
	if err != nil {
		return err
	}
	return write(res.ID+"_canonical.json", func(f *os.File) error {
		return export.WriteCanonicalJSON(f, res.Match.Canonical)
	})
}

func serve(ctx context.Context, cfg *config.Config, svc *app.Service, log logger.Logger) error {
	router := mux.NewRouter()
	swagger.Register(router)
	api.NewServer(svc, svc, api.WithMaxUploadBytes(cfg.MaxUploadBytes)).Register(router)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info(ctx, "server stopped")
	return nil
}
