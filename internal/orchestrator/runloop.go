package orchestrator

import (
	"context"
	"time"
)

// Start launches the interval-driven scheduling loop. Each tick runs one
// scheduling step; the loop exits when the context is cancelled or Stop is
// called. Start is a no-op if the loop is already running.
func (o *Orchestrator) Start(ctx context.Context) {
	o.loopMu.Lock()
	defer o.loopMu.Unlock()
	if o.stopLoop != nil {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	o.stopLoop = cancel
	o.loopDone = make(chan struct{})

	go func() {
		defer close(o.loopDone)
		ticker := time.NewTicker(o.tickInterval)
		defer ticker.Stop()

		// Run an immediate tick so queued work is not delayed by one interval.
		o.Tick(loopCtx)
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				o.Tick(loopCtx)
			}
		}
	}()

	o.logger.Log("[orchestrator] run loop started (interval=%s)", o.tickInterval)
}

// Stop halts the scheduling loop and waits for it to exit. In-flight tasks
// run to completion or failure; there is no cancellation primitive for a
// dispatched task.
func (o *Orchestrator) Stop() {
	o.loopMu.Lock()
	cancel := o.stopLoop
	done := o.loopDone
	o.stopLoop = nil
	o.loopDone = nil
	o.loopMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	o.logger.Log("[orchestrator] run loop stopped")
}
