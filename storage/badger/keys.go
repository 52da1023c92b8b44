package badger

import (
	"encoding/binary"

	"github.com/poiesic/storyweave/core"
)

// Key prefixes for different data types
const (
	runRecordPrefix = "runrec:"
	runIDSeq        = "runseq"
	embeddingPrefix = "embvec:"
)

// makeIDKey appends id to prefix in BigEndian order so that keys sort by id.
func makeIDKey(prefix string, id core.ID) []byte {
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeRunKey generates a key for a run by ID.
// Format: prefix:id
func makeRunKey(id core.ID) []byte {
	return makeIDKey(runRecordPrefix, id)
}

// makeEmbeddingKey generates a key for a cached embedding.
// Format: prefix:contentID
func makeEmbeddingKey(id core.ID) []byte {
	return makeIDKey(embeddingPrefix, id)
}

// runUpperBound is the first key past every run key, used to seek when
// iterating runs in reverse.
func runUpperBound() []byte {
	buf := make([]byte, len(runRecordPrefix)+8)
	offset := copy(buf, runRecordPrefix)
	for i := offset; i < len(buf); i++ {
		buf[i] = 0xff
	}
	return append(buf, 0xff)
}
