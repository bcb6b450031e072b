package engine

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/bamsammich/dirmirror/internal/event"
)

// DefaultInterval is the delay between cycles when none is configured.
const DefaultInterval = 24 * time.Hour

// DriverConfig describes the cycle loop.
type DriverConfig struct {
	// Clock paces the wait between cycles. Nil means the real clock.
	Clock    clockwork.Clock
	Src      string
	Dst      string
	Interval time.Duration
	// Cycles bounds the number of cycles; zero runs until ctx is done.
	Cycles int
	// ExitOnError stops the loop at the first failed cycle instead of
	// logging it and waiting for the next one.
	ExitOnError bool
}

// Driver runs the reconciler once per cycle and waits Interval between the
// end of one cycle and the start of the next.
type Driver struct {
	rec *Reconciler
	cfg DriverConfig
}

// NewDriver creates a Driver around r.
func NewDriver(r *Reconciler, cfg DriverConfig) *Driver {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	return &Driver{rec: r, cfg: cfg}
}

// Run executes cycles until ctx is cancelled or the configured cycle count
// is reached. Cancellation is a normal stop and returns nil. A failed cycle
// is reported through the recorder and, unless ExitOnError is set, does not
// end the loop.
func (d *Driver) Run(ctx context.Context) error {
	for cycle := 1; d.cfg.Cycles == 0 || cycle <= d.cfg.Cycles; cycle++ {
		err := d.RunCycle(ctx, cycle)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil && d.cfg.ExitOnError {
			return err
		}
		if cycle == d.cfg.Cycles {
			break
		}

		select {
		case <-ctx.Done():
			return nil
		case <-d.cfg.Clock.After(d.cfg.Interval):
		}
	}
	return nil
}

// RunCycle performs one complete reconciliation of the configured roots.
func (d *Driver) RunCycle(ctx context.Context, cycle int) error {
	clock := d.cfg.Clock
	st := d.rec.Stats()
	st.Reset()

	start := clock.Now()
	d.record(event.Event{
		Type:  event.CycleStarted,
		Cycle: cycle,
		Src:   d.cfg.Src,
		Dst:   d.cfg.Dst,
	})

	err := d.rec.Reconcile(ctx, d.cfg.Src, d.cfg.Dst)
	if err != nil && errors.Is(err, ctx.Err()) {
		return err
	}

	ev := event.Event{
		Type:    event.CycleCompleted,
		Cycle:   cycle,
		Src:     d.cfg.Src,
		Dst:     d.cfg.Dst,
		Stats:   st.Snapshot(),
		Elapsed: clock.Since(start),
	}
	// Interval is the wait before the next cycle; the last one has none.
	if cycle != d.cfg.Cycles {
		ev.Interval = d.cfg.Interval
	}
	if err != nil {
		ev.Type = event.CycleFailed
		ev.Error = err
	}
	d.record(ev)
	return err
}

func (d *Driver) record(ev event.Event) {
	ev.Timestamp = d.cfg.Clock.Now()
	ev.DryRun = d.rec.opts.DryRun
	d.rec.opts.Recorder.Record(ev)
}
