package sim

import (
	"context"
	"time"
)

// Run self-paces UpdateFrame at the clock's configured real-time factor
// (§4.7: "the driver calls updateFrame() at a wall-clock cadence of
// step_time/realtime_factor"), grounded in the teacher's Run loop
// (task/simulet.go: prepare/update each iteration, exit when closed).
// It returns when the scenario's stop trigger fires, a tick returns an
// error, or ctx is canceled — matching §5's "top-level shutdown signal
// causes the simulation thread to exit after the current tick completes".
func (l *Loop) Run(ctx context.Context) error {
	period := l.Clock.WallClockPeriod()
	var ticker *time.Ticker
	if period > 0 {
		ticker = time.NewTicker(time.Duration(period * float64(time.Second)))
		defer ticker.Stop()
	}

	for {
		select {
		case <-ctx.Done():
			log.Infof("shutdown signal received, exiting after current tick")
			return nil
		default:
		}

		if err := l.UpdateFrame(); err != nil {
			return err
		}
		if l.IsEnded() {
			log.Infof("scenario complete at t=%s", l.Clock)
			return nil
		}

		if ticker != nil {
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// IsEnded reports whether the storyboard's stop trigger has fired or a
// fatal evaluation error ended the run.
func (l *Loop) IsEnded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Ended
}
