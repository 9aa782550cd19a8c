package ordering

import "context"

// Notifier is told which collections a committed operation touched, so that
// cached listings and connected clients can refresh. Delivery is advisory.
type Notifier interface {
	CollectionsChanged(ctx context.Context, collections ...string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, collections ...string)

func (f NotifierFunc) CollectionsChanged(ctx context.Context, collections ...string) {
	f(ctx, collections...)
}

// Notifiers fans a notification out to every non-nil notifier.
type Notifiers []Notifier

func (ns Notifiers) CollectionsChanged(ctx context.Context, collections ...string) {
	for _, n := range ns {
		if n != nil {
			n.CollectionsChanged(ctx, collections...)
		}
	}
}

func (e *Engine) notify(ctx context.Context, collections ...string) {
	if e.notifier == nil || len(collections) == 0 {
		return
	}
	seen := make(map[string]struct{}, len(collections))
	unique := collections[:0:0]
	for _, c := range collections {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		unique = append(unique, c)
	}
	// the write is committed; a cancelled request must still invalidate
	e.notifier.CollectionsChanged(context.WithoutCancel(ctx), unique...)
}
