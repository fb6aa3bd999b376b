package everything

import (
	"bufio"
	"bytes"
	"cmp"
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"github.com/poiesic/launchit/core"
	"github.com/poiesic/launchit/match"
	"github.com/poiesic/launchit/query"
)

// SourceID is the source ID of the external index source.
const SourceID = "everything"

// DefaultMaxResults caps the results of one search.
const DefaultMaxResults = 100

// Placeholders substituted into the index command.
const (
	QueryPlaceholder = "{query}"
	MaxPlaceholder   = "{max}"
)

// Runner runs an external command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs commands with os/exec. The process is killed when ctx is done.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Source answers queries from an external file index.
type Source struct {
	command    []string
	scorer     match.Scorer
	runner     Runner
	menus      []core.ContextMenuTemplate
	maxResults int
	logger     *slog.Logger

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

// WithRunner replaces the command runner.
func WithRunner(runner Runner) Option {
	return func(s *Source) error {
		if runner != nil {
			s.runner = runner
		}
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

// WithContextMenus sets the menu templates offered on files.
func WithContextMenus(menus ...core.ContextMenuTemplate) Option {
	return func(s *Source) error {
		s.menus = menus
		return nil
	}
}

// NewSource creates an external index source running command.
// An empty command yields a source that reports itself disabled.
func NewSource(scorer match.Scorer, command string, opts ...Option) (*Source, error) {
	if scorer == nil {
		return nil, ErrScorerRequired
	}
	fields := strings.Fields(command)
	if len(fields) > 0 && !strings.Contains(command, QueryPlaceholder) {
		return nil, ErrMissingQueryPlaceholder
	}

	s := &Source{
		command:    fields,
		scorer:     scorer,
		runner:     ExecRunner,
		maxResults: DefaultMaxResults,
		logger:     slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// ID implements query.Source.
func (s *Source) ID() string {
	return SourceID
}

// Enabled implements query.Source. A source without a command is never enabled.
func (s *Source) Enabled() bool {
	return len(s.command) > 0 && !s.disabled.Load()
}

// SetEnabled toggles the source.
func (s *Source) SetEnabled(enabled bool) {
	s.disabled.Store(!enabled)
}

// args expands the command template for text.
func (s *Source) args(text string) (string, []string) {
	limit := strconv.Itoa(s.maxResults)
	expanded := make([]string, len(s.command))
	for i, f := range s.command {
		f = strings.ReplaceAll(f, QueryPlaceholder, text)
		expanded[i] = strings.ReplaceAll(f, MaxPlaceholder, limit)
	}
	return expanded[0], expanded[1:]
}

// Search implements query.Source. The index process runs under ctx, so a
// superseded query kills it.
func (s *Source) Search(ctx context.Context, text string) ([]core.Candidate, error) {
	if text == "" || len(s.command) == 0 {
		return nil, nil
	}

	name, args := s.args(text)
	output, err := s.runner(ctx, name, args...)
	if ctx.Err() != nil {
		return nil, nil
	}
	if err != nil {
		// Index tools such as locate exit non-zero when nothing matched
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(bytes.TrimSpace(output)) == 0 {
			return nil, nil
		}
		return nil, err
	}

	var out []core.Candidate
	lines := bufio.NewScanner(bytes.NewReader(output))
	for lines.Scan() && len(out) < s.maxResults {
		if ctx.Err() != nil {
			return nil, nil
		}
		line := strings.TrimSpace(lines.Text())
		if line == "" {
			continue
		}
		out = append(out, s.candidate(text, line))
	}
	if err := lines.Err(); err != nil {
		return nil, err
	}

	slices.SortStableFunc(out, func(x, y core.Candidate) int {
		return cmp.Compare(y.Score, x.Score)
	})
	return out, nil
}

// candidate builds the result for one output line.
func (s *Source) candidate(text, line string) core.Candidate {
	path, pathSpans := ParseHighlight(line)
	trimmed := strings.TrimRight(path, "/")
	if trimmed == "" {
		trimmed = path
	}
	name := filepath.Base(trimmed)
	isDir := trimmed != path
	if !isDir {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			isDir = true
		}
	}

	record := &core.FileRecord{Name: name, FullPath: trimmed, IsFolder: isDir}
	if !isDir {
		record.Menus = core.ExpandMenus(s.menus, trimmed)
	}

	// The index matched the line already; the scorer only ranks it
	score, spans := s.scorer.Score(text, name)
	if score <= 0 {
		score, _ = s.scorer.Score(text, trimmed)
	}
	score = max(score, 1)

	nameSpans := spans
	if pathSpans != nil {
		nameStart := utf8.RuneCountInString(trimmed) - utf8.RuneCountInString(name)
		nameSpans = splitSpans(pathSpans, nameStart)
	}

	display := record.Display()
	return core.Candidate{
		Title:         display.Title,
		Subtitle:      display.Subtitle,
		IconRef:       display.IconRef,
		Score:         score,
		TitleSpans:    nameSpans,
		SubtitleSpans: pathSpans,
		SourceID:      SourceID,
		Payload:       record,
	}
}
