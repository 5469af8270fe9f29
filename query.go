package crowdfund

import "fmt"

// Query modes understood by query handlers. An empty mode asks for an
// exact key.
const (
	KeyQueryMod    = ""
	PrefixQueryMod = "prefix"
)

// Model is a key value pair returned by a query.
type Model struct {
	Key   []byte
	Value []byte
}

func Pair(key, value []byte) Model {
	return Model{Key: key, Value: value}
}

// QueryHandler answers abci queries for one path, usually a bucket or one
// of its indexes.
type QueryHandler interface {
	Query(db ReadOnlyKVStore, mod string, data []byte) ([]Model, error)
}

// QueryRegister adds the query handlers of an extension.
type QueryRegister func(QueryRouter)

// QueryRouter dispatches abci queries by path.
type QueryRouter struct {
	routes map[string]QueryHandler
}

func NewQueryRouter() QueryRouter {
	return QueryRouter{routes: make(map[string]QueryHandler)}
}

// RegisterAll calls each register on r.
func (r QueryRouter) RegisterAll(regs ...QueryRegister) {
	for _, reg := range regs {
		reg(r)
	}
}

// Register routes path to h. A path can be registered only once.
func (r QueryRouter) Register(path string, h QueryHandler) {
	if _, dup := r.routes[path]; dup {
		panic(fmt.Sprintf("query path %q registered twice", path))
	}
	r.routes[path] = h
}

// Handler returns the handler of path, or nil.
func (r QueryRouter) Handler(path string) QueryHandler {
	return r.routes[path]
}
