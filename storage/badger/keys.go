package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/launchit/core"
	"github.com/poiesic/launchit/storage"
)

// Key prefixes for different data types
const (
	catalogEntryPrefix   = "catent"
	catalogGenerationKey = "catgen"
)

// makeCatalogPrefix generates the key prefix of one catalog generation.
// Format: prefix:generation
func makeCatalogPrefix(generation uint64) []byte {
	prefix := catalogEntryPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], generation)
	return buf
}

// makeCatalogEntryKey generates a key for an entry of one catalog generation.
// Format: prefix:generation:id
func makeCatalogEntryKey(generation uint64, id core.ID) []byte {
	prefix := makeCatalogPrefix(generation)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeCheckpointKey generates a key for index checkpoints.
func makeCheckpointKey(name string) []byte {
	return []byte(fmt.Sprintf("%s:chkpt", name))
}

func encodeGeneration(generation uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, generation)
	return buf
}

func decodeGeneration(val []byte) (uint64, error) {
	if len(val) != 8 {
		return 0, fmt.Errorf("%w: catalog generation has %d bytes", storage.ErrSerializationFailed, len(val))
	}
	return binary.BigEndian.Uint64(val), nil
}
