package orm

import (
	"bytes"
	"sort"

	"github.com/iov-one/crowdfund/codec"
	"github.com/iov-one/crowdfund/errors"
)

// MultiRef is a sorted set of primary keys. Non unique indexes store one
// per indexed value.
type MultiRef struct {
	Refs [][]byte
}

var _ CloneableData = (*MultiRef)(nil)

// NewMultiRef returns a set holding refs. Duplicates are an error.
func NewMultiRef(refs ...[]byte) (*MultiRef, error) {
	var m MultiRef
	for _, r := range refs {
		if err := m.Add(r); err != nil {
			return nil, err
		}
	}
	return &m, nil
}

// Add inserts ref, keeping the set sorted.
func (m *MultiRef) Add(ref []byte) error {
	i, ok := m.search(ref)
	if ok {
		return errors.Wrap(errors.ErrDuplicate, "ref already in set")
	}
	m.Refs = append(m.Refs, nil)
	copy(m.Refs[i+1:], m.Refs[i:])
	m.Refs[i] = ref
	return nil
}

// Remove drops ref from the set.
func (m *MultiRef) Remove(ref []byte) error {
	i, ok := m.search(ref)
	if !ok {
		return errors.Wrap(errors.ErrNotFound, "ref not in set")
	}
	m.Refs = append(m.Refs[:i], m.Refs[i+1:]...)
	return nil
}

// search returns the position of ref, or where it belongs if absent.
func (m *MultiRef) search(ref []byte) (int, bool) {
	i := sort.Search(len(m.Refs), func(n int) bool {
		return bytes.Compare(m.Refs[n], ref) >= 0
	})
	return i, i < len(m.Refs) && bytes.Equal(m.Refs[i], ref)
}

func (m *MultiRef) Marshal() ([]byte, error) {
	return codec.Marshal(m)
}

func (m *MultiRef) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, m)
}

func (m *MultiRef) Copy() CloneableData {
	return &MultiRef{Refs: append([][]byte(nil), m.Refs...)}
}

// Validate rejects an empty set. An index entry without references is
// deleted instead of saved.
func (m *MultiRef) Validate() error {
	if len(m.Refs) == 0 {
		return errors.Wrap(errors.ErrEmpty, "no references")
	}
	return nil
}
