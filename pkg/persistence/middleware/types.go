package middleware

import "github.com/claritydental/walkout/pkg/ports"

// Middleware wraps a WalkoutStore to add behavior on the persistence
// path.
type Middleware func(ports.WalkoutStore) ports.WalkoutStore

// Chain applies middlewares outermost-first: Chain(store, a, b) routes
// a call through a, then b, then the store.
func Chain(store ports.WalkoutStore, mws ...Middleware) ports.WalkoutStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
