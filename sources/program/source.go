package program

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"sync/atomic"

	"github.com/poiesic/launchit/core"
	"github.com/poiesic/launchit/match"
	"github.com/poiesic/launchit/query"
	"github.com/poiesic/launchit/storage"
)

// SourceID is the source ID of the program source.
const SourceID = "programs"

// DefaultMaxResults caps the results of one search.
const DefaultMaxResults = 30

// Source matches queries against program names and paths.
type Source struct {
	repo       storage.CatalogRepository
	scorer     match.Scorer
	maxResults int
	logger     *slog.Logger

	entries  atomic.Pointer[[]*core.ProgramEntry]
	disabled atomic.Bool
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

// NewSource creates a program source reading from repo.
// The snapshot starts empty until Reload is called.
func NewSource(repo storage.CatalogRepository, scorer match.Scorer, opts ...Option) (*Source, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if scorer == nil {
		return nil, ErrScorerRequired
	}

	s := &Source{
		repo:       repo,
		scorer:     scorer,
		maxResults: DefaultMaxResults,
		logger:     slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	empty := []*core.ProgramEntry{}
	s.entries.Store(&empty)
	return s, nil
}

// Reload replaces the snapshot with the enabled entries of the catalog.
// A failed reload keeps the previous snapshot.
func (s *Source) Reload(ctx context.Context) error {
	var entries []*core.ProgramEntry
	err := s.repo.ForEach(ctx, func(entry *core.ProgramEntry) error {
		if entry.Enabled {
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("error loading program catalog", "err", err)
		return err
	}

	s.entries.Store(&entries)
	s.logger.Debug("program catalog loaded", "entries", len(entries))
	return nil
}

// Len returns the number of programs in the snapshot.
func (s *Source) Len() int {
	return len(*s.entries.Load())
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

// Search implements query.Source. Names and paths are both scored; the
// better field wins and carries the highlight.
func (s *Source) Search(ctx context.Context, text string) ([]core.Candidate, error) {
	if text == "" {
		return nil, nil
	}

	var out []core.Candidate
	for _, entry := range *s.entries.Load() {
		if ctx.Err() != nil {
			return nil, nil
		}
		score, spans, field := match.Best(s.scorer, text, entry.Name, entry.Path)
		if field < 0 {
			continue
		}

		display := entry.Display()
		c := core.Candidate{
			Title:    display.Title,
			Subtitle: display.Subtitle,
			IconRef:  display.IconRef,
			Score:    score,
			SourceID: SourceID,
			Payload:  entry,
		}
		if field == 0 {
			c.TitleSpans = spans
		} else {
			c.SubtitleSpans = spans
		}
		out = append(out, c)
	}

	slices.SortStableFunc(out, func(x, y core.Candidate) int {
		return cmp.Compare(y.Score, x.Score)
	})
	if len(out) > s.maxResults {
		out = out[:s.maxResults]
	}
	return out, nil
}
