package store

import (
	"bytes"
	"fmt"
	"sort"
	"testing"

	"github.com/iov-one/crowdfund/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSuite runs the same behaviour checks against any CacheableKVStore
// implementation. Package specific tests only provide the constructor.
type TestSuite struct {
	makeBase TestStoreConstructor
}

// TestStoreConstructor returns a fresh base store and a function releasing
// its resources.
type TestStoreConstructor func() (base CacheableKVStore, cleanup func())

// NewTestSuite returns a suite running against stores built by constructor.
func NewTestSuite(constructor TestStoreConstructor) *TestSuite {
	return &TestSuite{
		makeBase: constructor,
	}
}

// Savepoints checks that a cache wrap is isolated from its parent until it
// is written, and that discarding it leaves the parent untouched.
func (s *TestSuite) Savepoints(t *testing.T) {
	base, cleanup := s.makeBase()
	defer cleanup()

	owner, raised, flag := []byte("owner"), []byte("raised"), []byte("withdrawn")

	s.AssertGetHas(t, base, owner, nil, false)
	require.NoError(t, base.Set(owner, []byte("alice")))
	require.NoError(t, base.Set(raised, []byte("3")))
	s.AssertGetHas(t, base, owner, []byte("alice"), true)

	// A failed operation discards its savepoint.
	failed := base.CacheWrap()
	s.AssertGetHas(t, failed, raised, []byte("3"), true)
	require.NoError(t, failed.Set(flag, []byte("true")))
	require.NoError(t, failed.Set(raised, []byte("0")))
	s.AssertGetHas(t, failed, flag, []byte("true"), true)
	s.AssertGetHas(t, base, flag, nil, false)
	failed.Discard()
	s.AssertGetHas(t, base, flag, nil, false)
	s.AssertGetHas(t, base, raised, []byte("3"), true)

	// A successful one writes all of its changes at once.
	ok := base.CacheWrap()
	require.NoError(t, ok.Set(raised, []byte("10")))
	require.NoError(t, ok.Delete(owner))
	s.AssertGetHas(t, base, raised, []byte("3"), true)
	require.NoError(t, ok.Write())
	s.AssertGetHas(t, base, raised, []byte("10"), true)
	s.AssertGetHas(t, base, owner, nil, false)

	// Nested savepoints only reach the base through every layer.
	outer := base.CacheWrap()
	inner := outer.CacheWrap()
	require.NoError(t, inner.Set(flag, []byte("true")))
	require.NoError(t, inner.Write())
	s.AssertGetHas(t, outer, flag, []byte("true"), true)
	s.AssertGetHas(t, base, flag, nil, false)
	outer.Discard()
	s.AssertGetHas(t, base, flag, nil, false)
}

// CacheConflicts checks that values written or deleted in a cache shadow the
// parent values.
func (s *TestSuite) CacheConflicts(t *testing.T) {
	cases := map[string]struct {
		parentOps     []Op
		childOps      []Op
		parentQueries []Model // Key is what we query, Value is what we expect
		childQueries  []Model
	}{
		"overwrite, delete and add": {
			parentOps: []Op{SetOp(testKey("a"), testVal("1")), SetOp(testKey("b"), testVal("2"))},
			childOps:  []Op{SetOp(testKey("a"), testVal("9")), SetOp(testKey("c"), testVal("3")), DelOp(testKey("b"))},
			parentQueries: []Model{
				Pair(testKey("a"), testVal("1")),
				Pair(testKey("b"), testVal("2")),
				Pair(testKey("c"), nil),
			},
			childQueries: []Model{
				Pair(testKey("a"), testVal("9")),
				Pair(testKey("b"), nil),
				Pair(testKey("c"), testVal("3")),
			},
		},
		"set after delete": {
			parentOps:     []Op{SetOp(testKey("a"), testVal("1"))},
			childOps:      []Op{DelOp(testKey("a")), SetOp(testKey("a"), testVal("2"))},
			parentQueries: []Model{Pair(testKey("a"), testVal("1"))},
			childQueries:  []Model{Pair(testKey("a"), testVal("2"))},
		},
		"delete after set": {
			childOps:      []Op{SetOp(testKey("a"), testVal("1")), DelOp(testKey("a"))},
			parentQueries: []Model{Pair(testKey("a"), nil)},
			childQueries:  []Model{Pair(testKey("a"), nil)},
		},
		"delete of a missing key": {
			parentOps:     []Op{SetOp(testKey("a"), testVal("1"))},
			childOps:      []Op{DelOp(testKey("z"))},
			parentQueries: []Model{Pair(testKey("a"), testVal("1")), Pair(testKey("z"), nil)},
			childQueries:  []Model{Pair(testKey("a"), testVal("1")), Pair(testKey("z"), nil)},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			parent, cleanup := s.makeBase()
			defer cleanup()

			for _, op := range tc.parentOps {
				require.NoError(t, op.Apply(parent))
			}
			child := parent.CacheWrap()
			for _, op := range tc.childOps {
				require.NoError(t, op.Apply(child))
			}

			for _, q := range tc.parentQueries {
				s.AssertGetHas(t, parent, q.Key, q.Value, q.Value != nil)
			}
			for _, q := range tc.childQueries {
				s.AssertGetHas(t, child, q.Key, q.Value, q.Value != nil)
			}

			require.NoError(t, child.Write())
			for _, q := range tc.childQueries {
				s.AssertGetHas(t, parent, q.Key, q.Value, q.Value != nil)
			}
		})
	}
}

// Iteration checks range iteration over a cache merged with its parent, in
// both directions. Keys follow the layout buckets use: a bucket prefix
// followed by a sequence.
func (s *TestSuite) Iteration(t *testing.T) {
	campaigns := bucketModels("campaign", 12)
	contribs := bucketModels("contrib", 30)

	// Parent holds even campaigns and every contribution, the child holds
	// odd campaigns and drops every third contribution.
	var parentOps, childOps []Op
	var wantCampaigns, wantContribs []Model
	for i, m := range campaigns {
		if i%2 == 0 {
			parentOps = append(parentOps, SetOp(m.Key, m.Value))
		} else {
			childOps = append(childOps, SetOp(m.Key, m.Value))
		}
		wantCampaigns = append(wantCampaigns, m)
	}
	for i, m := range contribs {
		parentOps = append(parentOps, SetOp(m.Key, m.Value))
		if i%3 == 0 {
			childOps = append(childOps, DelOp(m.Key))
		} else {
			wantContribs = append(wantContribs, m)
		}
	}
	all := sortModels(append(append([]Model{}, wantCampaigns...), wantContribs...))

	cases := map[string]iterCase{
		"child only": {
			child: makeSetOps(campaigns...),
			queries: []rangeQuery{
				{nil, nil, false, campaigns},
				{campaigns[3].Key, campaigns[7].Key, false, campaigns[3:7]},
				{nil, nil, true, reverse(campaigns)},
				{campaigns[3].Key, campaigns[7].Key, true, reverse(campaigns[3:7])},
			},
		},
		"parent only": {
			pre: makeSetOps(campaigns...),
			queries: []rangeQuery{
				{nil, nil, false, campaigns},
				{campaigns[5].Key, nil, false, campaigns[5:]},
				{nil, campaigns[5].Key, true, reverse(campaigns[:5])},
			},
		},
		"child merged with parent": {
			pre:   parentOps,
			child: childOps,
			queries: []rangeQuery{
				{nil, nil, false, all},
				{nil, nil, true, reverse(all)},
				{prefixStart("campaign"), prefixEnd("campaign"), false, wantCampaigns},
				{prefixStart("contrib"), prefixEnd("contrib"), false, wantContribs},
				{prefixStart("contrib"), prefixEnd("contrib"), true, reverse(wantContribs)},
				{wantContribs[4].Key, wantContribs[9].Key, false, wantContribs[4:9]},
			},
		},
		"deleted keys are hidden": {
			pre:   makeSetOps(campaigns[0], campaigns[1], campaigns[2]),
			child: makeDelOps(campaigns[0], campaigns[2], campaigns[5]),
			queries: []rangeQuery{
				{nil, nil, false, campaigns[1:2]},
				{nil, nil, true, campaigns[1:2]},
				{nil, campaigns[1].Key, false, nil},
			},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			base, cleanup := s.makeBase()
			defer cleanup()
			tc.verify(t, base)
		})
	}
}

// AssertGetHas checks both Get and Has for a key.
func (s *TestSuite) AssertGetHas(t testing.TB, kv ReadOnlyKVStore, key, val []byte, has bool) {
	t.Helper()
	got, err := kv.Get(key)
	require.NoError(t, err)
	assert.Equal(t, val, got)
	exists, err := kv.Has(key)
	require.NoError(t, err)
	assert.Equal(t, has, exists)
}

func testKey(s string) []byte { return []byte("k:" + s) }
func testVal(s string) []byte { return []byte("v:" + s) }

// bucketModels returns count models under the given bucket prefix, sorted by
// key.
func bucketModels(bucket string, count int) []Model {
	res := make([]Model, count)
	for i := range res {
		res[i] = Pair(
			[]byte(fmt.Sprintf("%s:%08d", bucket, i+1)),
			[]byte(fmt.Sprintf("%s value %d", bucket, i+1)),
		)
	}
	return res
}

func prefixStart(bucket string) []byte {
	return []byte(bucket + ":")
}

// prefixEnd is the first key after all keys of a bucket.
func prefixEnd(bucket string) []byte {
	return []byte(bucket + ";")
}

type iterCase struct {
	pre     []Op
	child   []Op
	queries []rangeQuery
}

func (i iterCase) verify(t testing.TB, base CacheableKVStore) {
	t.Helper()
	for _, op := range i.pre {
		require.NoError(t, op.Apply(base))
	}
	child := base.CacheWrap()
	for _, op := range i.child {
		require.NoError(t, op.Apply(child))
	}

	for qi, q := range i.queries {
		var iter Iterator
		var err error
		if q.reverse {
			iter, err = child.ReverseIterator(q.start, q.end)
		} else {
			iter, err = child.Iterator(q.start, q.end)
		}
		require.NoError(t, err)

		for n, want := range q.expected {
			k, v, err := iter.Next()
			require.NoError(t, err, "query %d, item %d", qi, n)
			if !bytes.Equal(want.Key, k) {
				t.Fatalf("query %d, item %d: want key %q, got %q", qi, n, want.Key, k)
			}
			assert.Equal(t, want.Value, v)
		}
		if _, _, err := iter.Next(); !errors.ErrIteratorDone.Is(err) {
			t.Fatalf("query %d: want ErrIteratorDone, got %+v", qi, err)
		}
		iter.Release()
	}
}

type rangeQuery struct {
	start    []byte
	end      []byte
	reverse  bool
	expected []Model
}

func reverse(models []Model) []Model {
	res := make([]Model, len(models))
	for i, m := range models {
		res[len(models)-1-i] = m
	}
	return res
}

func sortModels(models []Model) []Model {
	res := make([]Model, len(models))
	copy(res, models)
	sort.Slice(res, func(i, j int) bool {
		return bytes.Compare(res[i].Key, res[j].Key) < 0
	})
	return res
}

func makeSetOps(ms ...Model) []Op {
	res := make([]Op, len(ms))
	for i, m := range ms {
		res[i] = SetOp(m.Key, m.Value)
	}
	return res
}

func makeDelOps(ms ...Model) []Op {
	res := make([]Op, len(ms))
	for i, m := range ms {
		res[i] = DelOp(m.Key)
	}
	return res
}
