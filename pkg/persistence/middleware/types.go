// Package middleware wraps a ports.QuizStore with cross-cutting behavior.
package middleware

import "github.com/aretw0/quizgraph/pkg/ports"

// Middleware allows wrapping a QuizStore to add behavior.
type Middleware func(ports.QuizStore) ports.QuizStore

// Chain applies middlewares so that the first one listed is outermost.
func Chain(store ports.QuizStore, mws ...Middleware) ports.QuizStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
