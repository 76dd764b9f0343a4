package badger

import (
	"encoding/binary"

	"github.com/poiesic/cbr/core"
)

// Key prefixes for different data types
const (
	caseBaseMetaPrefix  = "cbmeta"
	caseBaseCasePrefix  = "cbcase"
	caseBaseTablePrefix = "cbtab"
)

// makeIDKey generates prefix:id with the ID in fixed-width big-endian form,
// so the keys of one case base never prefix those of another.
func makeIDKey(prefix string, id core.ID, extra int) []byte {
	buf := make([]byte, len(prefix)+1+8, len(prefix)+1+8+extra)
	offset := copy(buf, prefix)
	buf[offset] = ':'
	binary.BigEndian.PutUint64(buf[offset+1:], uint64(id))
	return buf
}

// makeMetaKey generates the key of a case base's metadata record.
func makeMetaKey(id core.ID) []byte {
	return makeIDKey(caseBaseMetaPrefix, id, 0)
}

// makeCasePrefix generates the prefix shared by all cases of a case base.
func makeCasePrefix(id core.ID) []byte {
	return append(makeIDKey(caseBaseCasePrefix, id, 9), ':')
}

// makeCaseKey generates a key for the case at index.
// Format: prefix:id:index
func makeCaseKey(id core.ID, index int) []byte {
	// BigEndian keeps iteration in load order
	return binary.BigEndian.AppendUint64(makeCasePrefix(id), uint64(index))
}

// makeTablePrefix generates the prefix shared by all symbolic tables of a case base.
func makeTablePrefix(id core.ID) []byte {
	return append(makeIDKey(caseBaseTablePrefix, id, 1), ':')
}

// makeTableKey generates a key for the symbolic table attached to field.
// Format: prefix:id:field
func makeTableKey(id core.ID, field string) []byte {
	return append(makeTablePrefix(id), field...)
}

// fieldFromTableKey extracts the field name from a table key.
func fieldFromTableKey(id core.ID, key []byte) string {
	return string(key[len(makeTablePrefix(id)):])
}
