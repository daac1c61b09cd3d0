package engine

import (
	"context"
	"errors"
	"fmt"
)

// Clears every user's history and every target log. Lifetime counters are kept.
func (e *Engine) ClearActionLog(ctx context.Context) error {
	if !e.ensureNotBanned(ctx) {
		return ErrBanned
	}
	if err := e.ensureStore(); err != nil {
		return err
	}
	usernames, herr := e.History.Clear(ctx)
	if herr != nil {
		herr = fmt.Errorf("clearing action histories: %w", herr)
	}
	targets, terr := e.Targets.ClearAll(ctx)
	if terr != nil {
		terr = fmt.Errorf("clearing target logs: %w", terr)
	}
	if err := errors.Join(herr, terr); err != nil {
		return e.reportFailure("Failed to clear action log.", err)
	}
	e.logger().Info("action log cleared", "usernames", usernames, "targets", targets)
	e.toast("Action log cleared (counts preserved).")
	return nil
}

// Drops the combined remove/restore counters kept from before those actions were split. Returns how many count maps changed.
func (e *Engine) StripLegacyCounters(ctx context.Context) (int, error) {
	if err := e.ensureStore(); err != nil {
		return 0, err
	}
	n, err := e.History.StripLegacyCounters(ctx)
	if err != nil {
		return n, e.reportFailure("Failed to strip legacy counters.", err)
	}
	e.logger().Info("stripped legacy counters", "changed", n)
	e.toast(fmt.Sprintf("Legacy counters removed from %d records.", n))
	return n, nil
}
