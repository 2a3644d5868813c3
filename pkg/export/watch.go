package export

import (
	"context"
	"fmt"

	"github.com/aretw0/forge/pkg/adapters/lifecycle"
	"github.com/aretw0/forge/pkg/core"
)

// Watch exports the collection, then exports again each time the store reports
// a change under the collection key, until ctx is cancelled.
// report, if set, is called after every run.
func (e *Exporter) Watch(ctx context.Context, col *core.Collection, store core.Watchable, report func(Result, error)) error {
	if report == nil {
		report = func(Result, error) {}
	}

	res, err := e.Export(ctx, col.Load())
	report(res, err)
	if err != nil {
		return err
	}

	events, err := store.Watch(ctx, col.Key())
	if err != nil {
		return fmt.Errorf("watch %q: %w", col.Key(), err)
	}

	source := lifecycle.NewSource(events)
	if err := source.Start(ctx); err != nil {
		return err
	}

	for ev := range source.Events() {
		e.config.Logger.Debug("store changed, re-exporting", "event", ev.String())
		col.Reload(ctx)

		res, err := e.Export(ctx, col.Load())
		if err != nil && ctx.Err() == nil {
			e.config.Logger.Error("re-export failed", "error", err)
		}
		report(res, err)
	}
	return nil
}
