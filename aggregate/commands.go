package aggregate

import (
	"context"
	"sync/atomic"

	"github.com/poiesic/launchit/core"
	"github.com/poiesic/launchit/match"
	"github.com/poiesic/launchit/query"
)

// CommandSourceID is the source ID of the built-in command source.
const CommandSourceID = "commands"

// CommandSource exposes a static list of built-in commands.
// Commands are scored by title with the same scorer as every other source.
type CommandSource struct {
	scorer   match.Scorer
	commands []*core.Command
	disabled atomic.Bool
}

var _ query.Source = (*CommandSource)(nil)

// NewCommandSource creates a command source over commands.
func NewCommandSource(scorer match.Scorer, commands ...*core.Command) (*CommandSource, error) {
	if scorer == nil {
		return nil, ErrScorerRequired
	}
	return &CommandSource{scorer: scorer, commands: commands}, nil
}

// ReindexCommand returns the "Reindex Programs" command running reindex.
func ReindexCommand(reindex func() error) *core.Command {
	return &core.Command{
		Title:    "Reindex Programs",
		Subtitle: "Reindex Programs",
		Run:      reindex,
	}
}

// ID implements query.Source.
func (s *CommandSource) ID() string {
	return CommandSourceID
}

// Enabled implements query.Source.
func (s *CommandSource) Enabled() bool {
	return !s.disabled.Load()
}

// SetEnabled toggles the source.
func (s *CommandSource) SetEnabled(enabled bool) {
	s.disabled.Store(!enabled)
}

// Search implements query.Source.
func (s *CommandSource) Search(ctx context.Context, text string) ([]core.Candidate, error) {
	var out []core.Candidate
	for _, cmd := range s.commands {
		if ctx.Err() != nil {
			return out, nil
		}
		score, spans := s.scorer.Score(text, cmd.Title)
		if score <= 0 {
			continue
		}
		display := cmd.Display()
		out = append(out, core.Candidate{
			Title:      display.Title,
			Subtitle:   display.Subtitle,
			IconRef:    display.IconRef,
			Score:      score,
			TitleSpans: spans,
			SourceID:   CommandSourceID,
			Payload:    cmd,
		})
	}
	return out, nil
}
