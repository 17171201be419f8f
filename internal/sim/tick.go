package sim

import (
	"context"
	"time"

	"aether-sim/internal/logging"
)

// Run feeds snapshots through the pipeline in order. With a positive interval
// rounds are paced by a ticker; otherwise they run back to back. It stops early
// when ctx is done and returns the number of rounds processed.
func (p *Pipeline) Run(ctx context.Context, rounds []RoundSnapshot, interval time.Duration) (int, error) {
	log := logging.FromContext(ctx)
	log.Info("starting pipeline", "run_id", p.runID, "rounds", len(rounds), "interval", interval)

	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for i, snap := range rounds {
		if i > 0 && tick != nil {
			select {
			case <-tick:
			case <-ctx.Done():
				log.Info("stopping pipeline", "processed", i)
				return i, ctx.Err()
			}
		}
		if _, err := p.Round(ctx, snap); err != nil {
			return i, err
		}
	}
	log.Info("pipeline finished", "processed", len(rounds))
	return len(rounds), nil
}
