// sim/simulator.go
package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/lottery-sim/lottery-sim/sim/trace"
)

// Simulator is the core object that holds the simulation clock, the ready set,
// the CPU slot and the history of a lottery scheduling run.
//
// Simulator is NOT safe for concurrent use: at most one mutating call
// (CreateProcess, Admit, Step, ForceIOBlock, Pause, Resume, Reset) may be in
// flight at a time. sim/runner serializes access for paced or interactive use.
type Simulator struct {
	Clock  int64
	Config Config

	ready       ReadySet
	running     *Process
	terminated  []*Process
	quantumLeft int
	// ids that have terminated at least once; unblocks their clients
	completed map[int]bool
	// every process created or admitted, for duplicate and server checks
	known    map[int]*Process
	lastDraw *trace.DrawRecord
	paused   bool

	tickets TicketPolicy
	lottery *Lottery
	trace   *trace.SimulationTrace
}

// NewSimulator validates cfg and returns an empty simulation drawing from rng.
func NewSimulator(cfg Config, rng UniformSource, traceConfig trace.TraceConfig) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("random source must not be nil: %w", ErrConfiguration)
	}
	if !trace.IsValidTraceLevel(string(traceConfig.Level)) {
		return nil, fmt.Errorf("unknown trace level %q: %w", traceConfig.Level, ErrConfiguration)
	}
	if cfg.TicketMode == "" {
		cfg.TicketMode = TicketsAutomatic
	}
	return &Simulator{
		Config:    cfg,
		completed: make(map[int]bool),
		known:     make(map[int]*Process),
		tickets:   NewTicketPolicy(cfg.TicketMode),
		lottery:   NewLottery(cfg.Pool, rng),
		trace:     trace.NewSimulationTrace(traceConfig),
	}, nil
}

// CreateProcess validates and registers a new process without admitting it.
// Fails on duplicate id or on a server id the simulation has never seen.
func (sim *Simulator) CreateProcess(id, burst, priority, serverID int) (*Process, error) {
	p, err := NewProcess(id, burst, priority, serverID)
	if err != nil {
		return nil, err
	}
	if err := sim.checkIdentity(p); err != nil {
		return nil, err
	}
	sim.known[p.ID] = p
	return p, nil
}

func (sim *Simulator) checkIdentity(p *Process) error {
	if existing, ok := sim.known[p.ID]; ok && existing != p {
		return fmt.Errorf("P%d: %w", p.ID, ErrDuplicateID)
	}
	if p.IsClient() {
		if _, ok := sim.known[p.ServerID]; !ok {
			return fmt.Errorf("P%d: server P%d does not exist: %w", p.ID, p.ServerID, ErrConfiguration)
		}
	}
	return nil
}

// Admit moves a new process into the ready set.
//
// In manual mode exactly one explicit ticket count >= 1 is required; in
// automatic mode none may be given and tickets are derived from priority.
// If p's server is ready, p lends it all its tickets. Any ready clients still
// waiting to lend to p do so now.
func (sim *Simulator) Admit(p *Process, tickets ...int) error {
	if p == nil {
		return fmt.Errorf("process must not be nil: %w", ErrConfiguration)
	}
	if p.State != StateNew {
		return fmt.Errorf("P%d: cannot admit a process in state %s: %w", p.ID, p.State, ErrConfiguration)
	}
	if err := sim.checkIdentity(p); err != nil {
		return err
	}
	if len(tickets) > 1 {
		return fmt.Errorf("P%d: at most one ticket count may be given, got %d: %w", p.ID, len(tickets), ErrConfiguration)
	}

	var initial int
	if sim.Config.Manual() {
		if len(tickets) == 0 {
			return fmt.Errorf("P%d: manual ticket mode requires an explicit ticket count: %w", p.ID, ErrConfiguration)
		}
		if tickets[0] < 1 {
			return fmt.Errorf("P%d: ticket count must be >= 1, got %d: %w", p.ID, tickets[0], ErrConfiguration)
		}
		initial = tickets[0]
		if sim.Config.PoolMode() && initial > sim.Config.Pool {
			logrus.Warnf("P%d holds %d tickets, more than the global pool of %d; draws stay within [1, %d]",
				p.ID, initial, sim.Config.Pool, sim.Config.Pool)
		}
	} else {
		if len(tickets) > 0 {
			return fmt.Errorf("P%d: explicit ticket counts require manual ticket mode: %w", p.ID, ErrConfiguration)
		}
		initial = BaseTickets(p.Priority)
	}

	p.Tickets = initial
	p.OriginalTickets = initial
	p.ArrivalTime = sim.Clock
	p.State = StateReady
	sim.known[p.ID] = p
	sim.ready.Add(p)

	sim.assignTickets()

	logrus.Infof("[tick %07d] Admitted P%d (priority=%d, burst=%d, tickets=%d, server=%d)",
		sim.Clock, p.ID, p.Priority, p.Burst, p.Tickets, p.ServerID)

	sim.lendTickets(p)
	for _, client := range sim.ready.Items() {
		if client.ServerID == p.ID {
			sim.lendTickets(client)
		}
	}
	return nil
}

// assignTickets recomputes tickets for every ready process (automatic mode only).
func (sim *Simulator) assignTickets() {
	if sim.Config.Manual() {
		return
	}
	for _, p := range sim.ready.Items() {
		sim.tickets.Assign(p)
	}
}

// Step advances the simulation by one cycle and reports whether any process
// is still ready or running. A paused simulation does nothing.
func (sim *Simulator) Step() bool {
	if sim.paused {
		return sim.Pending()
	}

	sim.Clock++

	for _, p := range sim.ready.Items() {
		p.WaitTime++
	}

	drew := false
	if sim.running == nil || sim.quantumLeft == 0 {
		if sim.running != nil {
			sim.preempt()
		}
		drew = sim.dispatch()
	}

	event := trace.EventIdle
	executedID := 0
	if sim.running != nil {
		sim.running.execute()
		sim.quantumLeft--
		executedID = sim.running.ID
		event = trace.EventRun

		if sim.running.Remaining == 0 {
			sim.complete()
			event = trace.EventComplete
		}
	}

	sim.recordCycle(event, executedID, drew)
	return sim.Pending()
}

// preempt returns the running process to the ready set after its quantum expired.
func (sim *Simulator) preempt() {
	p := sim.running
	logrus.Debugf("[tick %07d] P%d preempted (quantum expired, remaining=%d)", sim.Clock, p.ID, p.Remaining)
	sim.requeue(p)
}

func (sim *Simulator) requeue(p *Process) {
	p.State = StateReady
	sim.ready.Add(p)
	sim.running = nil
	sim.quantumLeft = 0
}

// dispatch runs a lottery among eligible ready processes and puts the winner on the CPU.
// Returns true if a draw took place.
func (sim *Simulator) dispatch() bool {
	sim.assignTickets()

	eligible := sim.ready.Eligible(sim.completed)
	record := sim.lottery.Draw(eligible, sim.Clock)
	if record == nil {
		if len(eligible) == 0 {
			logrus.Debugf("[tick %07d] CPU idle: no eligible process among %d ready", sim.Clock, sim.ready.Len())
		} else {
			logrus.Warnf("[tick %07d] CPU idle: %d eligible processes hold 0 tickets", sim.Clock, len(eligible))
		}
		return false
	}

	sim.lastDraw = record
	sim.trace.RecordDraw(*record)

	winner := sim.ready.Remove(record.WinnerID)
	if winner == nil {
		panic(fmt.Sprintf("dispatch: draw winner P%d is not ready", record.WinnerID))
	}
	winner.State = StateRunning
	sim.running = winner
	sim.quantumLeft = sim.Config.Quantum
	if winner.FirstDispatch == -1 {
		winner.FirstDispatch = sim.Clock
	}
	logrus.Debugf("[tick %07d] Draw: ticket %d/%d -> P%d", sim.Clock, record.Ticket, record.Total, winner.ID)

	sim.restituteTickets(winner)
	return true
}

// complete retires the running process, which has just reached 0 remaining time.
func (sim *Simulator) complete() {
	p := sim.running
	p.terminate(sim.Clock)
	sim.terminated = append(sim.terminated, p)
	sim.completed[p.ID] = true
	sim.running = nil
	sim.quantumLeft = 0
	logrus.Debugf("[tick %07d] P%d terminated (turnaround=%d)", sim.Clock, p.ID, p.Turnaround)
}

func (sim *Simulator) recordCycle(event trace.CycleEvent, executedID int, drew bool) {
	rec := trace.CycleRecord{
		Clock:      sim.Clock,
		Event:      event,
		ExecutedID: executedID,
		ReadyIDs:   sim.ready.IDs(),
		Terminated: len(sim.terminated),
		Drew:       drew,
	}
	if sim.running != nil {
		rec.RunningID = sim.running.ID
	}
	if sim.lastDraw != nil {
		rec.Ticket = sim.lastDraw.Ticket
		rec.Total = sim.lastDraw.Total
	}
	sim.trace.RecordCycle(rec)
}

// ForceIOBlock sends the running process back to the ready set as if it had
// started an I/O wait. It re-enters the next draw with no penalty or bonus.
// Returns false if the CPU is idle.
func (sim *Simulator) ForceIOBlock() bool {
	if sim.running == nil {
		return false
	}
	p := sim.running
	logrus.Infof("[tick %07d] P%d blocked on I/O, back to ready", sim.Clock, p.ID)
	sim.requeue(p)
	return true
}

// Pause makes Step a no-op until Resume is called.
func (sim *Simulator) Pause() {
	sim.paused = true
}

// Resume re-enables Step.
func (sim *Simulator) Resume() {
	sim.paused = false
}

// Paused reports whether the simulation is paused.
func (sim *Simulator) Paused() bool {
	return sim.paused
}

// Pending reports whether any process is still ready or running.
func (sim *Simulator) Pending() bool {
	return sim.ready.Len() > 0 || sim.running != nil
}

// RunToCompletion steps until nothing is pending and returns the number of
// cycles executed. It stops with ErrCycleLimit after maxCycles steps
// (maxCycles <= 0 means no limit), e.g. when a client's server never terminates.
func (sim *Simulator) RunToCompletion(maxCycles int) (int, error) {
	cycles := 0
	for sim.Pending() {
		if maxCycles > 0 && cycles >= maxCycles {
			return cycles, fmt.Errorf("after %d cycles with %d ready: %w", cycles, sim.ready.Len(), ErrCycleLimit)
		}
		if sim.paused {
			return cycles, fmt.Errorf("simulation is paused: %w", ErrConfiguration)
		}
		sim.Step()
		cycles++
	}
	logrus.Infof("[tick %07d] Simulation ended, %d processes terminated", sim.Clock, len(sim.terminated))
	return cycles, nil
}

// Reset clears every piece of mutable state back to construction defaults.
// Configuration, ticket policy and random source are kept; the random stream
// is not rewound.
func (sim *Simulator) Reset() {
	sim.Clock = 0
	sim.ready.Clear()
	sim.running = nil
	sim.terminated = nil
	sim.quantumLeft = 0
	sim.completed = make(map[int]bool)
	sim.known = make(map[int]*Process)
	sim.lastDraw = nil
	sim.paused = false
	sim.trace.Reset()
	logrus.Debug("Simulator reset")
}

// LastDraw returns a copy of the most recent draw, or nil if none has happened.
func (sim *Simulator) LastDraw() *trace.DrawRecord {
	if sim.lastDraw == nil {
		return nil
	}
	d := *sim.lastDraw
	d.Participants = append([]trace.Participant(nil), sim.lastDraw.Participants...)
	return &d
}

// Running returns a snapshot of the running process, if any.
func (sim *Simulator) Running() (Process, bool) {
	if sim.running == nil {
		return Process{}, false
	}
	return *sim.running, true
}

// QuantumLeft returns the cycles left in the running process's quantum.
func (sim *Simulator) QuantumLeft() int {
	return sim.quantumLeft
}

// Ready returns snapshots of the ready processes in ascending id order.
func (sim *Simulator) Ready() []Process {
	procs := sortedByID(sim.ready.Items())
	out := make([]Process, len(procs))
	for i, p := range procs {
		out[i] = *p
	}
	return out
}

// Terminated returns snapshots of terminated processes in completion order.
func (sim *Simulator) Terminated() []Process {
	out := make([]Process, len(sim.terminated))
	for i, p := range sim.terminated {
		out[i] = *p
	}
	return out
}

// Lookup returns a snapshot of any process known to the simulation.
func (sim *Simulator) Lookup(id int) (Process, bool) {
	p, ok := sim.known[id]
	if !ok {
		return Process{}, false
	}
	return *p, true
}

// History returns a copy of the per-cycle log.
func (sim *Simulator) History() []trace.CycleRecord {
	return append([]trace.CycleRecord(nil), sim.trace.Cycles...)
}

// LastCycle returns the most recent history entry, or false before the first Step.
func (sim *Simulator) LastCycle() (trace.CycleRecord, bool) {
	n := len(sim.trace.Cycles)
	if n == 0 {
		return trace.CycleRecord{}, false
	}
	return sim.trace.Cycles[n-1], true
}

// Trace returns the run's trace. Callers must treat it as read-only.
func (sim *Simulator) Trace() *trace.SimulationTrace {
	return sim.trace
}
