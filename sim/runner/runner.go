// Package runner drives a sim.Simulator in real time: it steps the simulation
// on a ticker and serializes every caller behind one mutex, so an interactive
// front end can pause, resume, admit or block processes while a run is live.
package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lottery-sim/lottery-sim/sim"
	"github.com/lottery-sim/lottery-sim/sim/trace"
)

// Options configures a Runner.
type Options struct {
	// Speed is the pace in cycles per second; 0 steps as fast as possible.
	Speed float64
	// MaxCycles stops the run with sim.ErrCycleLimit after this many steps; 0 means no limit.
	MaxCycles int
	// IOBlockEvery forces the running process into an I/O block after every
	// N-th cycle; 0 disables it.
	IOBlockEvery int
	// OnCycle, if set, receives every history entry. It is called without the
	// runner's lock held, so it may call back into the Runner.
	OnCycle func(trace.CycleRecord)
}

// Snapshot is a consistent copy of the observable simulation state.
type Snapshot struct {
	Clock       int64
	Running     *sim.Process
	QuantumLeft int
	Ready       []sim.Process
	Terminated  []sim.Process
	LastDraw    *trace.DrawRecord
	Paused      bool
}

// Runner owns a Simulator for the duration of a run. All access to the
// simulator must go through the Runner once Run has started.
type Runner struct {
	mu      sync.Mutex
	sim     *sim.Simulator
	opts    Options
	cycles  int
	resumed chan struct{}
}

// New wraps s. Fails on a negative Speed, MaxCycles or IOBlockEvery.
func New(s *sim.Simulator, opts Options) (*Runner, error) {
	if s == nil {
		return nil, fmt.Errorf("simulator must not be nil: %w", sim.ErrConfiguration)
	}
	if opts.Speed < 0 || opts.MaxCycles < 0 || opts.IOBlockEvery < 0 {
		return nil, fmt.Errorf("runner options must be non-negative, got %+v: %w", opts, sim.ErrConfiguration)
	}
	return &Runner{sim: s, opts: opts, resumed: make(chan struct{}, 1)}, nil
}

// Run steps the simulation until nothing is pending, the cycle cap is hit
// (sim.ErrCycleLimit) or ctx is done (ctx.Err()). It returns the number of
// cycles this call executed. While paused, Run blocks until Resume.
func (r *Runner) Run(ctx context.Context) (int, error) {
	var tick <-chan time.Time
	if r.opts.Speed > 0 {
		ticker := time.NewTicker(time.Duration(float64(time.Second) / r.opts.Speed))
		defer ticker.Stop()
		tick = ticker.C
	}

	executed := 0
	for {
		if err := ctx.Err(); err != nil {
			return executed, err
		}

		r.mu.Lock()
		pending, paused := r.sim.Pending(), r.sim.Paused()
		r.mu.Unlock()

		if !pending {
			logrus.Infof("Run finished after %d cycles", executed)
			return executed, nil
		}
		if paused {
			select {
			case <-ctx.Done():
				return executed, ctx.Err()
			case <-r.resumed:
			}
			continue
		}
		if tick != nil {
			select {
			case <-ctx.Done():
				return executed, ctx.Err()
			case <-tick:
			}
		}

		record, stepped, err := r.step()
		if err != nil {
			return executed, err
		}
		if !stepped {
			continue
		}
		executed++
		if r.opts.OnCycle != nil {
			r.opts.OnCycle(record)
		}
	}
}

// step advances one cycle under the lock. stepped is false when the simulation
// was paused or drained between the caller's check and the lock.
func (r *Runner) step() (record trace.CycleRecord, stepped bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sim.Paused() || !r.sim.Pending() {
		return record, false, nil
	}
	if r.opts.MaxCycles > 0 && r.cycles >= r.opts.MaxCycles {
		return record, false, fmt.Errorf("runner stopped at clock %d after %d cycles: %w",
			r.sim.Clock, r.cycles, sim.ErrCycleLimit)
	}

	r.advance()
	record, _ = r.sim.LastCycle()
	return record, true, nil
}

// advance steps the simulator once and applies the I/O-block hook. Callers
// hold r.mu.
func (r *Runner) advance() {
	r.sim.Step()
	r.cycles++
	if r.opts.IOBlockEvery > 0 && r.cycles%r.opts.IOBlockEvery == 0 {
		r.sim.ForceIOBlock()
	}
}

// Step advances exactly one cycle, as a manual single-step while paused or idle.
// Unlike Run it ignores the pause flag, but it honours MaxCycles and
// IOBlockEvery. It does nothing once no work is pending or the cycle cap is
// reached. Returns whether work is still pending.
func (r *Runner) Step() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.sim.Pending() {
		return false
	}
	if r.opts.MaxCycles > 0 && r.cycles >= r.opts.MaxCycles {
		logrus.Warnf("[tick %07d] Step ignored: cycle limit %d reached", r.sim.Clock, r.opts.MaxCycles)
		return true
	}
	wasPaused := r.sim.Paused()
	r.sim.Resume()
	r.advance()
	if wasPaused {
		r.sim.Pause()
	}
	return r.sim.Pending()
}

// Pause suspends Run after the cycle in progress.
func (r *Runner) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sim.Pause()
	logrus.Debugf("[tick %07d] Paused", r.sim.Clock)
}

// Resume lets a paused Run continue.
func (r *Runner) Resume() {
	r.mu.Lock()
	r.sim.Resume()
	logrus.Debugf("[tick %07d] Resumed", r.sim.Clock)
	r.mu.Unlock()

	select {
	case r.resumed <- struct{}{}:
	default:
	}
}

// ForceIOBlock sends the running process back to the ready set. Returns false
// if the CPU was idle.
func (r *Runner) ForceIOBlock() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sim.ForceIOBlock()
}

// Admit creates and admits a process into the live simulation.
func (r *Runner) Admit(id, burst, priority, serverID int, tickets ...int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, err := r.sim.CreateProcess(id, burst, priority, serverID)
	if err != nil {
		return err
	}
	return r.sim.Admit(p, tickets...)
}

// Do runs fn with exclusive access to the simulator. fn must not retain it.
func (r *Runner) Do(fn func(s *sim.Simulator)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.sim)
}

// Snapshot returns a consistent copy of the simulation state.
func (r *Runner) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := Snapshot{
		Clock:       r.sim.Clock,
		QuantumLeft: r.sim.QuantumLeft(),
		Ready:       r.sim.Ready(),
		Terminated:  r.sim.Terminated(),
		LastDraw:    r.sim.LastDraw(),
		Paused:      r.sim.Paused(),
	}
	if p, ok := r.sim.Running(); ok {
		snap.Running = &p
	}
	return snap
}

// Cycles returns the number of cycles stepped through this runner.
func (r *Runner) Cycles() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cycles
}
