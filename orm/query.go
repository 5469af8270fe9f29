package orm

import (
	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
)

// ConsumeIterator will read all remaining data into an
// array and release the iterator
func ConsumeIterator(itr crowdfund.Iterator) ([]crowdfund.Model, error) {
	defer itr.Release()

	var res []crowdfund.Model
	for {
		key, value, err := itr.Next()
		if errors.ErrIteratorDone.Is(err) {
			return res, nil
		}
		if err != nil {
			return nil, err
		}
		res = append(res, crowdfund.Pair(key, value))
	}
}

// queryPrefix returns all models with a key starting with prefix.
func queryPrefix(db crowdfund.ReadOnlyKVStore, prefix []byte) ([]crowdfund.Model, error) {
	itr, err := db.Iterator(prefix, prefixRange(prefix))
	if err != nil {
		return nil, err
	}
	return ConsumeIterator(itr)
}

// prefixRange returns the first key past all keys starting with prefix, or
// nil when no such key exists.
func prefixRange(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

// RegisterQuery exposes the raw store under "/". It allows to load any key
// or prefix and is mostly useful for clients that know the bucket layout.
func RegisterQuery(qr crowdfund.QueryRouter) {
	qr.Register("/", rawQuery{})
}

type rawQuery struct{}

func (rawQuery) Query(db crowdfund.ReadOnlyKVStore, mod string, data []byte) ([]crowdfund.Model, error) {
	switch mod {
	case crowdfund.KeyQueryMod:
		value, err := db.Get(data)
		if err != nil {
			return nil, err
		}
		if value == nil {
			return nil, nil
		}
		return []crowdfund.Model{crowdfund.Pair(data, value)}, nil
	case crowdfund.PrefixQueryMod:
		return queryPrefix(db, data)
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown query mod: %s", mod)
	}
}
