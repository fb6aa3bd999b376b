package catalog

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker(t *testing.T) {
	t.Run("reports sources and programs", func(t *testing.T) {
		var buf bytes.Buffer
		tracker := NewProgressTracker(&buf, 2)

		tracker.SourceDone(5) // ignored before Start
		tracker.Start()
		tracker.SourceDone(3)
		tracker.SourceDone(4)
		tracker.Finish()

		output := buf.String()
		assert.Contains(t, output, "1/2 sources (50.0%) - 3 programs")
		assert.Contains(t, output, "2/2 sources (100.0%) - 7 programs")
	})

	t.Run("nil writer discards", func(t *testing.T) {
		tracker := NewProgressTracker(nil, 1)
		tracker.Start()
		tracker.SourceDone(1)
		tracker.Finish()
		assert.GreaterOrEqual(t, tracker.Elapsed().Nanoseconds(), int64(0))
	})

	t.Run("elapsed is zero before start", func(t *testing.T) {
		assert.Zero(t, NewProgressTracker(nil, 1).Elapsed())
	})
}
