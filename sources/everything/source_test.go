package everything

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/poiesic/launchit/core"
	"github.com/poiesic/launchit/match"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner records the command it was asked to run and returns canned output.
type fakeRunner struct {
	name   string
	args   []string
	output string
	err    error
}

func (f *fakeRunner) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.name = name
	f.args = args
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []byte(f.output), f.err
}

func newSource(t *testing.T, command string, runner *fakeRunner, opts ...Option) *Source {
	t.Helper()
	opts = append(opts, WithRunner(runner.run))
	src, err := NewSource(match.NewFuzzyScorer(), command, opts...)
	require.NoError(t, err)
	return src
}

func TestNewSource(t *testing.T) {
	t.Run("nil scorer", func(t *testing.T) {
		_, err := NewSource(nil, "es {query}")
		assert.Equal(t, ErrScorerRequired, err)
	})

	t.Run("missing query placeholder", func(t *testing.T) {
		_, err := NewSource(match.NewFuzzyScorer(), "locate -i")
		assert.Equal(t, ErrMissingQueryPlaceholder, err)
	})

	t.Run("empty command is disabled", func(t *testing.T) {
		src, err := NewSource(match.NewFuzzyScorer(), "  ", WithLogger(nil))
		require.NoError(t, err)
		assert.False(t, src.Enabled())
		src.SetEnabled(true)
		assert.False(t, src.Enabled())

		results, err := src.Search(context.Background(), "anything")
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("toggle", func(t *testing.T) {
		src, err := NewSource(match.NewFuzzyScorer(), "es {query}")
		require.NoError(t, err)
		assert.Equal(t, SourceID, src.ID())
		assert.True(t, src.Enabled())
		src.SetEnabled(false)
		assert.False(t, src.Enabled())
	})
}

func TestSourceSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("expands placeholders", func(t *testing.T) {
		runner := &fakeRunner{}
		src := newSource(t, "es -n {max} {query}", runner, WithMaxResults(50))

		_, err := src.Search(ctx, "my doc")
		require.NoError(t, err)
		assert.Equal(t, "es", runner.name)
		assert.Equal(t, []string{"-n", "50", "my doc"}, runner.args)
	})

	t.Run("highlighted lines", func(t *testing.T) {
		runner := &fakeRunner{output: "/home/*rep*ort.txt\n\n/srv/*rep*o/\n"}
		menu := core.ContextMenuTemplate{Name: "Open", Command: "xdg-open", Argument: "{path}"}
		src := newSource(t, "es {query}", runner, WithContextMenus(menu))

		results, err := src.Search(ctx, "rep")
		require.NoError(t, err)
		require.Len(t, results, 2)

		byTitle := map[string]core.Candidate{}
		for _, c := range results {
			assert.Equal(t, SourceID, c.SourceID)
			assert.Positive(t, c.Score)
			byTitle[c.Title] = c
		}

		file := byTitle["report.txt"]
		assert.Equal(t, "/home/report.txt", file.Subtitle)
		assert.Equal(t, core.IconFile, file.IconRef)
		assert.Equal(t, []int{0, 1, 2}, file.TitleSpans)
		assert.Equal(t, []int{6, 7, 8}, file.SubtitleSpans)
		require.Len(t, file.ContextMenu(), 1)
		assert.Equal(t, []string{"/home/report.txt"}, file.ContextMenu()[0].Args)

		dir := byTitle["repo"]
		assert.Equal(t, "/srv/repo", dir.Subtitle)
		assert.Equal(t, core.IconFolder, dir.IconRef)
		assert.Empty(t, dir.ContextMenu())
	})

	t.Run("plain lines use scorer spans", func(t *testing.T) {
		runner := &fakeRunner{output: "/home/me/notes.md\n"}
		src := newSource(t, "locate {query}", runner)

		results, err := src.Search(ctx, "notes")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, []int{0, 1, 2, 3, 4}, results[0].TitleSpans)
		assert.Nil(t, results[0].SubtitleSpans)
	})

	t.Run("unscored lines still rank", func(t *testing.T) {
		runner := &fakeRunner{output: "/zzz\n"}
		src := newSource(t, "locate {query}", runner)

		results, err := src.Search(ctx, "abc")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, 1, results[0].Score)
	})

	t.Run("directory on disk", func(t *testing.T) {
		dir := t.TempDir()
		runner := &fakeRunner{output: dir + "\n"}
		src := newSource(t, "locate {query}", runner)

		results, err := src.Search(ctx, "x")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, core.IconFolder, results[0].IconRef)
	})

	t.Run("caps results", func(t *testing.T) {
		runner := &fakeRunner{output: strings.Repeat("/a/file\n", 5)}
		src := newSource(t, "locate {query}", runner, WithMaxResults(3))

		results, err := src.Search(ctx, "file")
		require.NoError(t, err)
		assert.Len(t, results, 3)
	})

	t.Run("empty query", func(t *testing.T) {
		runner := &fakeRunner{output: "/a\n"}
		src := newSource(t, "locate {query}", runner)

		results, err := src.Search(ctx, "")
		require.NoError(t, err)
		assert.Empty(t, results)
		assert.Empty(t, runner.name, "command not run")
	})

	t.Run("command failure", func(t *testing.T) {
		boom := errors.New("boom")
		runner := &fakeRunner{err: boom}
		src := newSource(t, "locate {query}", runner)

		_, err := src.Search(ctx, "a")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		runner := &fakeRunner{output: "/a\n"}
		src := newSource(t, "locate {query}", runner)

		results, err := src.Search(cctx, "a")
		require.NoError(t, err, "cancellation is not an error")
		assert.Empty(t, results)
	})
}

func TestExecRunner(t *testing.T) {
	ctx := context.Background()

	t.Run("output lines", func(t *testing.T) {
		src, err := NewSource(match.NewFuzzyScorer(), "echo {query}")
		require.NoError(t, err)

		results, err := src.Search(ctx, "hello")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "hello", results[0].Title)
	})

	t.Run("non-zero exit without output", func(t *testing.T) {
		src, err := NewSource(match.NewFuzzyScorer(), "false {query}")
		require.NoError(t, err)

		results, err := src.Search(ctx, "hello")
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}
