// Package middleware wraps a RunStore to transform runs on their way to
// persistence: masking sensitive keys or encrypting the whole record.
package middleware

import "github.com/aretw0/stepflow/pkg/ports"

// Middleware allows wrapping a RunStore to add behavior.
type Middleware func(ports.RunStore) ports.RunStore

// Chain applies middlewares so that the first one sees the run first.
func Chain(store ports.RunStore, mws ...Middleware) ports.RunStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
