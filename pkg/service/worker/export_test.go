package worker

import "context"

// ReapOnce runs a single reap pass for tests
func (w *StaleJobReaper) ReapOnce(ctx context.Context) error {
	return w.reap(ctx)
}
