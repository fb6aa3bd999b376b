package launchit

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/poiesic/launchit/aggregate"
	"github.com/poiesic/launchit/catalog"
	"github.com/poiesic/launchit/config"
	"github.com/poiesic/launchit/core"
	"github.com/poiesic/launchit/match"
	"github.com/poiesic/launchit/query"
	"github.com/poiesic/launchit/results"
	"github.com/poiesic/launchit/sources/everything"
	"github.com/poiesic/launchit/sources/filesystem"
	"github.com/poiesic/launchit/sources/program"
	"github.com/poiesic/launchit/storage"
	"github.com/poiesic/launchit/storage/badger"
)

// Launcher wires the catalog, the sources and the query pipeline together.
type Launcher struct {
	settings    *config.Settings
	backend     *badger.Backend
	catalogRepo storage.CatalogRepository
	checkpoints storage.CheckpointRepository
	indexer     *catalog.Indexer

	programs *program.Source
	files    *filesystem.Source
	commands *aggregate.CommandSource

	aggregator  *aggregate.Aggregator
	store       *results.Store
	selection   *results.Selection
	coordinator *query.Coordinator

	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// LauncherOption configures a Launcher.
type LauncherOption func(*launcherOptions)

type launcherOptions struct {
	settings  *config.Settings
	logger    *slog.Logger
	inMemory  bool
	builtins  bool
	extra     []query.Source
	scheduler results.Scheduler
	poolSize  int
	progress  io.Writer
}

// WithSettings sets the launcher settings. Default is config.DefaultSettings().
func WithSettings(settings *config.Settings) LauncherOption {
	return func(o *launcherOptions) {
		if settings != nil {
			o.settings = settings
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) LauncherOption {
	return func(o *launcherOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithInMemory keeps the catalog in memory instead of on disk.
func WithInMemory(inMemory bool) LauncherOption {
	return func(o *launcherOptions) {
		o.inMemory = inMemory
	}
}

// WithBuiltinSources toggles the program, filesystem, external index and
// command sources. Default is true.
func WithBuiltinSources(enabled bool) LauncherOption {
	return func(o *launcherOptions) {
		o.builtins = enabled
	}
}

// WithExtraSources adds sources to the fan-out.
func WithExtraSources(sources ...query.Source) LauncherOption {
	return func(o *launcherOptions) {
		o.extra = append(o.extra, sources...)
	}
}

// WithScheduler sets how pending selection resets are run.
func WithScheduler(schedule results.Scheduler) LauncherOption {
	return func(o *launcherOptions) {
		o.scheduler = schedule
	}
}

// WithPoolSize bounds the number of concurrently running source searches.
func WithPoolSize(size int) LauncherOption {
	return func(o *launcherOptions) {
		o.poolSize = size
	}
}

// WithIndexProgress writes catalog scan progress to w.
func WithIndexProgress(w io.Writer) LauncherOption {
	return func(o *launcherOptions) {
		o.progress = w
	}
}

// NewLauncher opens the catalog and builds the query pipeline.
func NewLauncher(opts ...LauncherOption) (*Launcher, error) {
	// Apply options
	options := &launcherOptions{
		settings:  config.DefaultSettings(),
		logger:    slog.Default(),
		builtins:  true,
		scheduler: results.GoScheduler,
	}
	for _, opt := range opts {
		opt(options)
	}
	settings := options.settings
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	logger := options.logger

	// Open backend
	backend, err := badger.OpenBackend(settings.DatabasePath, options.inMemory, badger.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	// Create catalog repository
	catalogRepo, err := badger.NewCatalogRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	l := &Launcher{
		settings:    settings,
		backend:     backend,
		catalogRepo: catalogRepo,
		checkpoints: badger.NewCheckpointRepository(backend),
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
	}

	var sources []query.Source
	if options.builtins {
		sources, err = l.builtinSources(options.progress)
		if err != nil {
			l.Close()
			return nil, err
		}
	}
	sources = append(sources, options.extra...)

	// Create the pipeline, store first so the selection sees every update
	l.store = results.NewStore(results.WithStoreLogger(logger))
	l.selection, err = results.NewSelection(l.store,
		results.WithScheduler(options.scheduler),
		results.WithSelectionLogger(logger))
	if err != nil {
		l.Close()
		return nil, err
	}
	l.aggregator, err = aggregate.NewAggregator(l.store,
		aggregate.WithLogger(logger),
		aggregate.WithMaxResults(settings.MaxResults),
		aggregate.WithPageFactor(settings.PageFactor),
		aggregate.WithIgnoreRules(settings.IgnoreRules))
	if err != nil {
		l.Close()
		return nil, err
	}
	l.coordinator, err = query.NewCoordinator(l.aggregator, sources,
		query.WithLogger(logger),
		query.WithPoolSize(options.poolSize),
		query.WithBaseContext(ctx))
	if err != nil {
		l.Close()
		return nil, err
	}

	if l.programs != nil {
		if err := l.programs.Reload(ctx); err != nil {
			logger.Warn("starting with an empty program list", "err", err)
		}
	}
	return l, nil
}

// builtinSources creates the catalog indexer and the built-in sources.
func (l *Launcher) builtinSources(progress io.Writer) ([]query.Source, error) {
	settings := l.settings
	scorer := match.NewFuzzyScorer()

	programSources, err := catalog.ParseProgramSources(settings.ProgramSources)
	if err != nil {
		return nil, err
	}
	l.programs, err = program.NewSource(l.catalogRepo, scorer, program.WithLogger(l.logger))
	if err != nil {
		return nil, err
	}
	l.indexer, err = catalog.NewIndexer(l.catalogRepo, programSources,
		catalog.WithLogger(l.logger),
		catalog.WithCheckpoints(l.checkpoints),
		catalog.WithProgress(progress),
		catalog.WithSuffixes(settings.ProgramSuffixes...),
		catalog.WithOnIndexed(func() {
			if err := l.programs.Reload(l.ctx); err != nil {
				l.logger.Warn("error reloading programs after index", "err", err)
			}
		}))
	if err != nil {
		return nil, err
	}

	l.commands, err = aggregate.NewCommandSource(scorer, aggregate.ReindexCommand(l.reindexCommand))
	if err != nil {
		return nil, err
	}

	external, err := everything.NewSource(scorer, settings.IndexCommand,
		everything.WithLogger(l.logger),
		everything.WithMaxResults(settings.MaxIndexResults),
		everything.WithContextMenus(settings.ContextMenus...))
	if err != nil {
		return nil, err
	}

	sources := []query.Source{l.programs, l.commands, external}
	if len(settings.IncludedFolders) > 0 {
		l.files, err = filesystem.NewSource(scorer, settings.IncludedFolders,
			filesystem.WithLogger(l.logger),
			filesystem.WithContextMenus(settings.ContextMenus...))
		if err != nil {
			return nil, err
		}
		sources = append(sources, l.files)
	}

	for _, src := range sources {
		if t, ok := src.(interface{ SetEnabled(bool) }); ok && !settings.SourceEnabled(src.ID()) {
			t.SetEnabled(false)
		}
	}
	return sources, nil
}

// reindexCommand backs the "Reindex Programs" command.
func (l *Launcher) reindexCommand() error {
	count, err := l.indexer.Trigger(l.ctx)
	if err != nil {
		return err
	}
	l.logger.Info("programs reindexed", "entries", count)
	return nil
}

// Submit starts a query for text and returns its token. A blank query
// cancels the running one and empties the results; it returns nil.
func (l *Launcher) Submit(text string) *query.Token {
	if strings.TrimSpace(text) == "" {
		l.coordinator.Abort()
		l.aggregator.Reset()
		l.store.Clear()
		return nil
	}
	return l.coordinator.Submit(text)
}

// Wait blocks until every dispatched search has been merged.
func (l *Launcher) Wait() {
	l.coordinator.Wait()
}

// Watch streams result snapshots until ctx is done.
func (l *Launcher) Watch(ctx context.Context) <-chan []core.Candidate {
	return l.store.Watch(ctx)
}

// Results returns the rows to display, at most MaxResults.
func (l *Launcher) Results() []core.Candidate {
	list := l.store.Snapshot()
	if len(list) > l.settings.MaxResults {
		list = list[:l.settings.MaxResults]
	}
	return list
}

// Store returns the result store.
func (l *Launcher) Store() *results.Store {
	return l.store
}

// Selection returns the selection tracker.
func (l *Launcher) Selection() *results.Selection {
	return l.selection
}

// ContextMenu returns the secondary actions of the result at index.
func (l *Launcher) ContextMenu(index int) ([]core.MenuItem, error) {
	c, ok := l.store.At(index)
	if !ok {
		return nil, ErrIndexOutOfRange
	}
	return c.ContextMenu(), nil
}

// Execute runs the built-in command at index.
func (l *Launcher) Execute(index int) error {
	c, ok := l.store.At(index)
	if !ok {
		return ErrIndexOutOfRange
	}
	cmd, ok := c.Payload.(*core.Command)
	if !ok || cmd.Run == nil {
		return ErrNotExecutable
	}
	return cmd.Run()
}

// Reindex rebuilds the program catalog on user request. It is rate limited.
func (l *Launcher) Reindex(ctx context.Context) (int, error) {
	if l.indexer == nil {
		return 0, nil
	}
	return l.indexer.Trigger(ctx)
}

// IndexNow rebuilds the program catalog, waiting for a running index.
func (l *Launcher) IndexNow(ctx context.Context) (int, error) {
	if l.indexer == nil {
		return 0, nil
	}
	return l.indexer.Run(ctx)
}

// StartIndexing indexes the catalog in the background after the startup
// delay and then every reindex interval, until Close.
func (l *Launcher) StartIndexing() {
	if l.indexer == nil {
		return
	}
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		l.indexer.RunPeriodic(l.ctx, l.settings.StartupDelay, l.settings.ReindexInterval)
	}()
}

// CatalogRepository returns the program catalog.
func (l *Launcher) CatalogRepository() storage.CatalogRepository {
	return l.catalogRepo
}

// CheckpointRepository returns the index checkpoints.
func (l *Launcher) CheckpointRepository() storage.CheckpointRepository {
	return l.checkpoints
}

// Indexer returns the catalog indexer, or nil without built-in sources.
func (l *Launcher) Indexer() *catalog.Indexer {
	return l.indexer
}

// Close stops background work and closes the catalog.
func (l *Launcher) Close() error {
	l.cancel()
	l.wg.Wait()

	if l.coordinator != nil {
		l.coordinator.Close()
	}
	if l.selection != nil {
		l.selection.Close()
	}
	if l.files != nil {
		if err := l.files.Close(); err != nil {
			l.logger.Error("error closing filesystem source", "err", err)
		}
	}

	// Close repositories
	if err := l.catalogRepo.Close(); err != nil {
		l.logger.Error("error closing catalog repository", "err", err)
		return err
	}

	// Close backend
	if err := l.backend.Close(); err != nil {
		l.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
