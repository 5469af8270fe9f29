package orm

import (
	"encoding/binary"

	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
)

// seqLen is the size of an encoded sequence value.
const seqLen = 8

// Sequence is a persistent counter. Its encoded values are big endian, so
// they sort in the order they were issued and serve as primary keys.
type Sequence struct {
	id []byte
}

// NewSequence returns the counter stored under "_s.<bucket>:<name>".
func NewSequence(bucket, name string) Sequence {
	return Sequence{id: []byte("_s." + bucket + ":" + name)}
}

// NextVal advances the counter and returns the new value encoded.
func (s *Sequence) NextVal(db crowdfund.KVStore) ([]byte, error) {
	n, err := s.NextInt(db)
	if err != nil {
		return nil, err
	}
	return EncodeSequence(n), nil
}

// NextInt advances the counter and returns the new value. The first value
// is one.
func (s *Sequence) NextInt(db crowdfund.KVStore) (int64, error) {
	n, err := s.Latest(db)
	if err != nil {
		return 0, err
	}
	n++
	if err := db.Set(s.id, EncodeSequence(n)); err != nil {
		return 0, err
	}
	return n, nil
}

// Latest returns the last issued value, zero if none was. The counter does
// not move.
func (s *Sequence) Latest(db crowdfund.ReadOnlyKVStore) (int64, error) {
	raw, err := db.Get(s.id)
	if err != nil {
		return 0, err
	}
	return DecodeSequence(raw)
}

// DecodeSequence parses an encoded value. Nil is zero.
func DecodeSequence(raw []byte) (int64, error) {
	if raw == nil {
		return 0, nil
	}
	if err := ValidateSequence(raw); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(raw)), nil
}

func EncodeSequence(n int64) []byte {
	var raw [seqLen]byte
	binary.BigEndian.PutUint64(raw[:], uint64(n))
	return raw[:]
}

// ValidateSequence checks raw has the size of an encoded value.
func ValidateSequence(raw []byte) error {
	switch len(raw) {
	case 0:
		return errors.Wrap(errors.ErrEmpty, "sequence missing")
	case seqLen:
		return nil
	default:
		return errors.Wrapf(errors.ErrInput, "sequence must be %d bytes, got %d", seqLen, len(raw))
	}
}
