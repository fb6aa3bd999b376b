package filesystem

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/poiesic/launchit/core"
	"github.com/poiesic/launchit/match"
	"github.com/poiesic/launchit/query"
)

// SourceID is the source ID of the filesystem source.
const SourceID = "files"

const (
	// DefaultMaxResults caps the results of one search.
	DefaultMaxResults = 100

	// DefaultCacheSize is the number of directory listings kept in memory.
	DefaultCacheSize = 2048
)

// dirent is a cached directory entry.
type dirent struct {
	name  string
	isDir bool
}

// Source matches queries against file and folder names.
type Source struct {
	folders    []core.IncludedFolder
	menus      []core.ContextMenuTemplate
	scorer     match.Scorer
	maxResults int
	cacheSize  int
	watch      bool
	logger     *slog.Logger

	// listings and watcher are nil when watching is off or unavailable.
	listings *lru.Cache[string, []dirent]
	watcher  *fsnotify.Watcher

	disabled  atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

var _ query.Source = (*Source)(nil)

// Option configures a Source.
type Option func(*Source) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithMaxResults sets the per-search result cap.
func WithMaxResults(n int) Option {
	return func(s *Source) error {
		if n > 0 {
			s.maxResults = n
		}
		return nil
	}
}

// WithCacheSize sets the number of cached directory listings.
func WithCacheSize(n int) Option {
	return func(s *Source) error {
		if n > 0 {
			s.cacheSize = n
		}
		return nil
	}
}

// WithContextMenus sets the menu templates offered on files.
func WithContextMenus(menus ...core.ContextMenuTemplate) Option {
	return func(s *Source) error {
		s.menus = menus
		return nil
	}
}

// WithWatch toggles listing caching with change notifications.
// Default is true. Without it every search reads directories afresh.
func WithWatch(watch bool) Option {
	return func(s *Source) error {
		s.watch = watch
		return nil
	}
}

// NewSource creates a filesystem source searching below folders.
func NewSource(scorer match.Scorer, folders []core.IncludedFolder, opts ...Option) (*Source, error) {
	if scorer == nil {
		return nil, ErrScorerRequired
	}
	if len(folders) == 0 {
		return nil, ErrNoFolders
	}

	s := &Source{
		folders:    folders,
		scorer:     scorer,
		maxResults: DefaultMaxResults,
		cacheSize:  DefaultCacheSize,
		watch:      true,
		logger:     slog.Default(),
		done:       make(chan struct{}),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if s.watch {
		s.startWatching()
	}
	return s, nil
}

func (s *Source) startWatching() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		s.logger.Warn("file watching unavailable, directory listings will not be cached", "err", err)
		return
	}
	listings, err := lru.NewWithEvict[string, []dirent](s.cacheSize, func(dir string, _ []dirent) {
		// Removing a deleted directory fails; the watch is gone already
		_ = watcher.Remove(dir)
	})
	if err != nil {
		watcher.Close()
		s.logger.Warn("error creating listing cache", "err", err)
		return
	}

	s.watcher = watcher
	s.listings = listings
	s.wg.Add(1)
	go s.watchLoop()
}

// watchLoop drops cached listings of directories whose entries changed.
func (s *Source) watchLoop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			s.listings.Remove(filepath.Dir(event.Name))
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				s.listings.Remove(event.Name)
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("file watcher error", "err", err)
		}
	}
}

// Close stops watching and releases the cache. It is safe to call twice.
func (s *Source) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		if s.watcher != nil {
			err = s.watcher.Close()
		}
		s.wg.Wait()
	})
	return err
}

// ID implements query.Source.
func (s *Source) ID() string {
	return SourceID
}

// Enabled implements query.Source.
func (s *Source) Enabled() bool {
	return !s.disabled.Load()
}

// SetEnabled toggles the source.
func (s *Source) SetEnabled(enabled bool) {
	s.disabled.Store(!enabled)
}

// Search implements query.Source. Folders are walked breadth first up to
// their MaxDepth; symlinked directories are reported but not followed.
func (s *Source) Search(ctx context.Context, text string) ([]core.Candidate, error) {
	if text == "" {
		return nil, nil
	}

	seen := make(map[string]bool)
	var out []core.Candidate
	for _, folder := range s.folders {
		if !s.walk(ctx, folder, text, seen, &out) {
			return nil, nil
		}
	}

	slices.SortStableFunc(out, func(x, y core.Candidate) int {
		return cmp.Compare(y.Score, x.Score)
	})
	if len(out) > s.maxResults {
		out = out[:s.maxResults]
	}
	return out, nil
}

type pendingDir struct {
	path  string
	depth int
}

// walk appends matches below folder to out. It returns false once ctx is done.
func (s *Source) walk(ctx context.Context, folder core.IncludedFolder, text string, seen map[string]bool, out *[]core.Candidate) bool {
	queue := []pendingDir{{path: filepath.Clean(folder.Path), depth: 1}}
	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]
		if ctx.Err() != nil {
			return false
		}

		for _, e := range s.list(dir.path) {
			if ctx.Err() != nil {
				return false
			}
			if !folder.IncludeHidden && strings.HasPrefix(e.name, ".") {
				continue
			}
			path := filepath.Join(dir.path, e.name)
			if e.isDir && (folder.MaxDepth == 0 || dir.depth < folder.MaxDepth) {
				queue = append(queue, pendingDir{path: path, depth: dir.depth + 1})
			}
			if seen[path] {
				continue
			}
			seen[path] = true

			score, spans := s.scorer.Score(text, e.name)
			if score <= 0 {
				continue
			}
			*out = append(*out, s.candidate(e, path, score, spans))
		}
	}
	return true
}

func (s *Source) candidate(e dirent, path string, score int, spans []int) core.Candidate {
	record := &core.FileRecord{Name: e.name, FullPath: path, IsFolder: e.isDir}
	if !e.isDir {
		record.Menus = core.ExpandMenus(s.menus, path)
	}
	display := record.Display()
	return core.Candidate{
		Title:      display.Title,
		Subtitle:   display.Subtitle,
		IconRef:    display.IconRef,
		Score:      score,
		TitleSpans: spans,
		SourceID:   SourceID,
		Payload:    record,
	}
}

// list returns the entries of dir, from the cache when possible.
// Unreadable directories yield no entries.
func (s *Source) list(dir string) []dirent {
	cacheable := false
	if s.listings != nil {
		if entries, ok := s.listings.Get(dir); ok {
			return entries
		}
		// Watch before reading so no change slips between the two
		if err := s.watcher.Add(dir); err != nil {
			s.logger.Debug("error watching directory", "dir", dir, "err", err)
		} else {
			cacheable = true
		}
	}

	raw, err := os.ReadDir(dir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("error reading directory", "dir", dir, "err", err)
		}
		return nil
	}
	entries := make([]dirent, len(raw))
	for i, e := range raw {
		entries[i] = dirent{name: e.Name(), isDir: e.IsDir()}
	}

	if cacheable {
		s.listings.Add(dir, entries)
	}
	return entries
}

// Cached reports whether the listing of dir is cached.
func (s *Source) Cached(dir string) bool {
	return s.listings != nil && s.listings.Contains(filepath.Clean(dir))
}
