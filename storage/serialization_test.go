package storage

import (
	"testing"
	"time"

	"github.com/poiesic/launchit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"path-based ID", core.EntryIDForPath("/usr/bin/firefox")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}

	t.Run("empty data", func(t *testing.T) {
		_, err := UnmarshalID([]byte{})
		assert.Error(t, err)
	})
}

func TestMarshalUnmarshalProgramEntry(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	entry := &core.ProgramEntry{
		Id:        core.EntryIDForPath("/usr/share/applications/Firefox Web Browser.desktop"),
		Name:      "Firefox Web Browser",
		Path:      "/usr/share/applications/Firefox Web Browser.desktop",
		Kind:      core.ProgramKindShortcut,
		Enabled:   true,
		IndexedAt: now,
	}

	data := MarshalProgramEntry(entry)
	decoded, err := UnmarshalProgramEntry(data)
	require.NoError(t, err)
	assert.Equal(t, entry.Id, decoded.Id)
	assert.Equal(t, entry.Name, decoded.Name)
	assert.Equal(t, entry.Path, decoded.Path)
	assert.Equal(t, entry.Kind, decoded.Kind)
	assert.True(t, decoded.Enabled)
	assert.True(t, entry.IndexedAt.Equal(decoded.IndexedAt))

	t.Run("truncated data", func(t *testing.T) {
		_, err := UnmarshalProgramEntry(data[:len(data)/2])
		assert.Error(t, err)
	})

	t.Run("skip consumes the whole record", func(t *testing.T) {
		n, err := core.ProgramEntryMUS.Skip(data)
		require.NoError(t, err)
		assert.Equal(t, len(data), n)
	})
}

func TestMarshalUnmarshalCheckpoint(t *testing.T) {
	cp := &core.Checkpoint{
		LastIndexTime: time.Date(2025, 3, 14, 9, 26, 53, 589000, time.UTC),
		EntryCount:    412,
	}

	decoded, err := UnmarshalCheckpoint(MarshalCheckpoint(cp))
	require.NoError(t, err)
	assert.True(t, cp.LastIndexTime.Equal(decoded.LastIndexTime))
	assert.Equal(t, 412, decoded.EntryCount)

	_, err = UnmarshalCheckpoint(nil)
	assert.Error(t, err)
}
