// Package service runs the parse pipeline for the CLI and the HTTP API and
// keeps the parsed matches.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/okian/touchline/internal/adapters/export"
	"github.com/okian/touchline/internal/adapters/repository"
	"github.com/okian/touchline/internal/domain/dedupe"
	"github.com/okian/touchline/internal/domain/model"
	"github.com/okian/touchline/internal/metrica"
	"github.com/okian/touchline/pkg/logger"
	"github.com/okian/touchline/pkg/metrics"
)

// ErrDuplicateID is returned by ParseBatch for a request whose id already
// appeared earlier in the same batch.
var ErrDuplicateID = errors.New("duplicate match id in batch")

// Sink receives the event table of every parsed match.
type Sink interface {
	Write(ctx context.Context, run export.Run, data *model.EventData) error
}

// Request is one match to parse. An empty ID gets a generated one.
type Request struct {
	ID       string
	Events   metrica.Source
	Metadata metrica.Source
}

// Info describes a stored match.
type Info struct {
	ID       string        `json:"id"`
	RunID    string        `json:"run_id"`
	ParsedAt time.Time     `json:"parsed_at"`
	Summary  model.Summary `json:"summary"`
}

// Result is a parsed match.
type Result struct {
	Info
	Match *model.Match `json:"-"`
}

// Service parses matches and keeps them in a store.
type Service struct {
	mu sync.RWMutex

	store        repository.Store
	sink         Sink
	loader       *metrica.Loader
	batchWorkers int
	closed       bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets the match store. The default is an unbounded MemoryStore.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithSink sets where event tables are written after a successful parse.
func WithSink(sink Sink) Option {
	return func(s *Service) {
		s.sink = sink
	}
}

// WithBatchWorkers bounds the number of matches ParseBatch parses at once.
func WithBatchWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchWorkers = n
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		batchWorkers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.New(logger.WithWriter(io.Discard))
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	s.loader = metrica.NewLoader(metrica.WithLogger(s.logger.Named("metrica")))
	return s
}

// Parse runs the pipeline for one match, stores it and writes it to the sink.
func (s *Service) Parse(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	res, err := s.parse(ctx, req)
	elapsed := float64(time.Since(start).Microseconds()) / 1000
	if err != nil {
		metrics.RecordParseError(metrica.Kind(err), elapsed)
		return Result{}, err
	}
	metrics.RecordMatchParsed(elapsed)
	return res, nil
}

func (s *Service) parse(ctx context.Context, req Request) (Result, error) {
	events, err := req.Events.Bytes()
	if err != nil {
		return Result{}, err
	}
	metadata, err := req.Metadata.Bytes()
	if err != nil {
		return Result{}, err
	}

	match, err := s.loader.Load(ctx, metrica.FromBytes(events), metrica.FromBytes(metadata))
	if err != nil {
		return Result{}, err
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	res := Result{
		Info: Info{
			ID:       id,
			RunID:    uuid.NewString(),
			ParsedAt: time.Now().UTC(),
			Summary:  match.Summarize(),
		},
		Match: match,
	}

	if err := s.store.Put(ctx, repository.Entry{
		ID:       res.ID,
		RunID:    res.RunID,
		ParsedAt: res.ParsedAt,
		Summary:  res.Summary,
		Events:   events,
		Metadata: metadata,
	}); err != nil {
		return Result{}, fmt.Errorf("store match %s: %w", id, err)
	}

	if s.sink != nil {
		run := export.Run{
			MatchID:   res.ID,
			RunID:     res.RunID,
			HomeTeam:  res.Summary.HomeTeam,
			AwayTeam:  res.Summary.AwayTeam,
			HomeScore: res.Summary.HomeScore,
			AwayScore: res.Summary.AwayScore,
			Records:   res.Summary.Records,
			ParsedAt:  res.ParsedAt,
		}
		if err := s.sink.Write(ctx, run, match.Events); err != nil {
			return Result{}, fmt.Errorf("write match %s to sink: %w", id, err)
		}
	}

	s.logger.Info(ctx, "match parsed",
		logger.String("id", res.ID),
		logger.String("runID", res.RunID),
		logger.Int("records", res.Summary.Records),
	)
	return res, nil
}

// ParseBatch parses independent matches concurrently. Results are in request
// order; a failed request leaves a zero Result at its index and its error is
// joined into the returned error.
func (s *Service) ParseBatch(ctx context.Context, reqs []Request) ([]Result, error) {
	metrics.RecordBatchSize(len(reqs))
	results := make([]Result, len(reqs))
	ids := dedupe.New[string]()

	p := pool.New().WithContext(ctx).WithMaxGoroutines(s.batchWorkers)
	for i, req := range reqs {
		if req.ID != "" && ids.SeenAndRecord(req.ID) {
			p.Go(func(context.Context) error {
				return fmt.Errorf("request %d: %w: %s", i, ErrDuplicateID, req.ID)
			})
			continue
		}
		p.Go(func(ctx context.Context) error {
			res, err := s.Parse(ctx, req)
			if err != nil {
				return fmt.Errorf("request %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	err := p.Wait()

	s.logger.Info(ctx, "batch parsed",
		logger.Int("requests", len(reqs)),
		logger.Int("workers", s.batchWorkers),
		logger.Bool("failed", err != nil),
	)
	return results, err
}

// Get re-parses a stored match.
func (s *Service) Get(ctx context.Context, id string) (Result, error) {
	e, err := s.store.Get(ctx, id)
	if err != nil {
		return Result{}, err
	}
	match, err := s.loader.Load(ctx, metrica.FromBytes(e.Events), metrica.FromBytes(e.Metadata))
	if err != nil {
		return Result{}, fmt.Errorf("reparse match %s: %w", id, err)
	}
	return Result{Info: infoOf(e), Match: match}, nil
}

// Info returns the summary of a stored match without re-parsing it.
func (s *Service) Info(ctx context.Context, id string) (Info, error) {
	e, err := s.store.Get(ctx, id)
	if err != nil {
		return Info{}, err
	}
	return infoOf(e), nil
}

// List returns the stored matches, oldest first.
func (s *Service) List(ctx context.Context) ([]Info, error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Info, len(entries))
	for i, e := range entries {
		out[i] = infoOf(e)
	}
	return out, nil
}

// Delete removes a stored match.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info(ctx, "match deleted", logger.String("id", id))
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"closed":       s.closed,
		"batchWorkers": s.batchWorkers,
		"sink":         s.sink != nil,
	}
	if !s.closed {
		if n, err := s.store.Count(ctx); err == nil {
			stats["matches"] = n
		} else {
			s.logger.Warn(ctx, "failed to count matches", logger.Error(err))
		}
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	goroutines := runtime.NumGoroutine()
	stats["goroutines"] = goroutines
	stats["heapBytes"] = mem.HeapAlloc
	metrics.UpdateSystemMemoryUsage(mem.HeapAlloc)
	metrics.UpdateSystemGoroutineCount(goroutines)

	return stats
}

// Close releases the store and the sink when it can be closed.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	if closer, ok := s.sink.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close sink: %w", err))
		}
	}
	s.logger.Info(context.Background(), "service closed")
	return errors.Join(errs...)
}

func infoOf(e repository.Entry) Info {
	return Info{ID: e.ID, RunID: e.RunID, ParsedAt: e.ParsedAt, Summary: e.Summary}
}
