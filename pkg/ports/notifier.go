package ports

import (
	"context"
	"errors"

	"github.com/aretw0/quizgraph/pkg/domain"
)

// ChangeNotifier receives change events for the rendering collaborator.
// Implementations must not block the caller for long; the editor notifies
// while the mutation that caused the event is still being reported.
type ChangeNotifier interface {
	Notify(ctx context.Context, event domain.ChangeEvent) error
}

// NotifierFunc adapts a function to ChangeNotifier.
type NotifierFunc func(ctx context.Context, event domain.ChangeEvent) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, event domain.ChangeEvent) error {
	return f(ctx, event)
}

// Fanout returns a notifier that forwards every event to all of ns.
// Nil notifiers are skipped; every notifier is called even if one fails.
func Fanout(ns ...ChangeNotifier) ChangeNotifier {
	return NotifierFunc(func(ctx context.Context, event domain.ChangeEvent) error {
		var errs []error
		for _, n := range ns {
			if n == nil {
				continue
			}
			if err := n.Notify(ctx, event); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}
