package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/poiesic/launchit/core"
	"github.com/poiesic/launchit/storage"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// CheckpointName is the checkpoint key of the program catalog.
const CheckpointName = "programs"

// Config holds indexer tuning.
type Config struct {
	// Concurrency is the number of program sources scanned in parallel.
	Concurrency int

	// MaxRetries is the maximum number of attempts to store the catalog.
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff.
	RetryDelay time.Duration

	// MinTriggerInterval is the minimum time between user-triggered reindexes.
	MinTriggerInterval time.Duration
}

// DefaultConfig returns the default indexer configuration.
func DefaultConfig() *Config {
	return &Config{
		Concurrency:        4,
		MaxRetries:         3,
		RetryDelay:         200 * time.Millisecond,
		MinTriggerInterval: 10 * time.Second,
	}
}

// Indexer rebuilds the program catalog.
type Indexer struct {
	repo        storage.CatalogRepository
	checkpoints storage.CheckpointRepository
	sources     []core.ProgramSource
	scanner     *scanner
	config      *Config
	progress    io.Writer
	limiter     *rate.Limiter
	logger      *slog.Logger

	suffixes  []string
	listeners []func()

	// runMu serializes index runs.
	runMu sync.Mutex
}

// Option configures an Indexer.
type Option func(*Indexer) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(i *Indexer) error {
		if logger == nil {
			logger = slog.Default()
		}
		i.logger = logger
		return nil
	}
}

// WithConfig sets indexer tuning. Nil keeps the defaults.
func WithConfig(config *Config) Option {
	return func(i *Indexer) error {
		if config != nil {
			i.config = config
		}
		return nil
	}
}

// WithProgress writes scan progress to w.
func WithProgress(w io.Writer) Option {
	return func(i *Indexer) error {
		i.progress = w
		return nil
	}
}

// WithSuffixes sets file extensions indexed regardless of the executable bit.
func WithSuffixes(suffixes ...string) Option {
	return func(i *Indexer) error {
		i.suffixes = suffixes
		return nil
	}
}

// WithCheckpoints records the outcome of each run in repo.
func WithCheckpoints(repo storage.CheckpointRepository) Option {
	return func(i *Indexer) error {
		i.checkpoints = repo
		return nil
	}
}

// WithOnIndexed registers fn to run after every successful index.
func WithOnIndexed(fn func()) Option {
	return func(i *Indexer) error {
		if fn != nil {
			i.listeners = append(i.listeners, fn)
		}
		return nil
	}
}

// NewIndexer creates an indexer storing into repo.
func NewIndexer(repo storage.CatalogRepository, sources []core.ProgramSource, opts ...Option) (*Indexer, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	for i, src := range sources {
		if src.Location == "" {
			return nil, fmt.Errorf("program source %d: %w", i, ErrEmptySource)
		}
	}

	idx := &Indexer{
		repo:     repo,
		sources:  sources,
		config:   DefaultConfig(),
		logger:   slog.Default(),
		suffixes: []string{"desktop", "sh", "AppImage"},
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(idx); err != nil {
			return nil, err
		}
	}

	if idx.config.Concurrency < 1 {
		idx.config.Concurrency = 1
	}
	idx.scanner = newScanner(idx.suffixes)
	idx.limiter = rate.NewLimiter(rate.Every(idx.config.MinTriggerInterval), 1)
	return idx, nil
}

// Run scans every source and replaces the catalog. It returns the number
// of entries stored.
func (i *Indexer) Run(ctx context.Context) (int, error) {
	i.runMu.Lock()
	defer i.runMu.Unlock()
	return i.run(ctx)
}

// Trigger runs an index on user request. Requests closer together than
// MinTriggerInterval return ErrRateLimited; a request arriving while another
// run is in progress returns ErrIndexRunning.
func (i *Indexer) Trigger(ctx context.Context) (int, error) {
	if !i.limiter.Allow() {
		return 0, ErrRateLimited
	}
	if !i.runMu.TryLock() {
		return 0, ErrIndexRunning
	}
	defer i.runMu.Unlock()
	return i.run(ctx)
}

// RunPeriodic indexes after startupDelay and then every interval until ctx
// is done. A zero interval disables periodic reindexing.
func (i *Indexer) RunPeriodic(ctx context.Context, startupDelay, interval time.Duration) {
	timer := time.NewTimer(startupDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}
	i.runLogged(ctx, "startup")

	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			i.runLogged(ctx, "interval")
		}
	}
}

// LastIndexTime returns when the catalog was last indexed, or the zero
// time if it never was or no checkpoint repository is configured.
func (i *Indexer) LastIndexTime(ctx context.Context) (time.Time, error) {
	if i.checkpoints == nil {
		return time.Time{}, nil
	}
	cp, err := i.checkpoints.LoadCheckpoint(ctx, CheckpointName)
	if err != nil || cp == nil {
		return time.Time{}, err
	}
	return cp.LastIndexTime, nil
}

func (i *Indexer) runLogged(ctx context.Context, reason string) {
	count, err := i.Run(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			i.logger.Error("error indexing programs", "reason", reason, "err", err)
		}
		return
	}
	i.logger.Info("indexed programs", "reason", reason, "entries", count)
}

// run performs one index. Caller holds runMu.
func (i *Indexer) run(ctx context.Context) (int, error) {
	tracker := NewProgressTracker(i.progress, len(i.sources))
	tracker.Start()

	perSource := make([][]*core.ProgramEntry, len(i.sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.config.Concurrency)
	for n, src := range i.sources {
		g.Go(func() error {
			start := time.Now()
			entries, err := i.scanner.scan(gctx, src)
			if err != nil {
				return fmt.Errorf("scanning %s: %w", src.Location, err)
			}
			perSource[n] = entries
			tracker.SourceDone(len(entries))
			i.logger.Debug("scanned program source", "location", src.Location, "entries", len(entries), "elapsed", time.Since(start))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	tracker.Finish()

	entries := dedupe(perSource)
	err := RetryWithBackoff(ctx, func() error {
		return i.repo.ReplaceAll(ctx, entries)
	}, i.config.MaxRetries, i.config.RetryDelay)
	if err != nil {
		return 0, fmt.Errorf("failed to store catalog after %d attempts: %w", i.config.MaxRetries, err)
	}

	if i.checkpoints != nil {
		cp := &core.Checkpoint{LastIndexTime: time.Now().UTC(), EntryCount: len(entries)}
		if err := i.checkpoints.SaveCheckpoint(ctx, CheckpointName, cp); err != nil {
			i.logger.Warn("error saving index checkpoint", "err", err)
		}
	}

	i.logger.Debug("catalog replaced", "entries", len(entries), "elapsed", tracker.Elapsed())
	for _, fn := range i.listeners {
		fn()
	}
	return len(entries), nil
}

// dedupe flattens per-source results, keeping the first entry per path.
func dedupe(perSource [][]*core.ProgramEntry) []*core.ProgramEntry {
	seen := make(map[string]bool)
	var out []*core.ProgramEntry
	for _, entries := range perSource {
		for _, entry := range entries {
			if seen[entry.Path] {
				continue
			}
			seen[entry.Path] = true
			out = append(out, entry)
		}
	}
	return out
}
