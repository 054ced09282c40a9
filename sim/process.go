// Defines the Process struct that models one schedulable unit in the lottery simulation.
// Tracks burst, priority, ticket holdings, and the timestamps behind wait/turnaround/response.

package sim

import (
	"fmt"
)

// ProcessState represents the lifecycle state of a process.
type ProcessState string

const (
	StateNew        ProcessState = "new"
	StateReady      ProcessState = "ready"
	StateRunning    ProcessState = "running"
	StateTerminated ProcessState = "terminated"
)

const (
	MinPriority = 1
	MaxPriority = 5
)

// NoServer is the ServerID of a process without a client/server dependency.
const NoServer = 0

type Process struct {
	ID       int // Unique within a simulation, > 0
	Burst    int // Total CPU cycles required
	Priority int // 1 (lowest) to 5 (highest)
	ServerID int // Process this client depends on; NoServer when independent

	Tickets         int // Current lottery weight; the single authoritative count
	OriginalTickets int // Base count fixed at admission, restored by ResetTickets
	LentTickets     int // Client side: tickets handed to the server, owed back on server dispatch
	BorrowedTickets int // Server side: tickets held on loan from waiting clients

	Remaining     int   // CPU cycles still needed; 0 means terminated
	WaitTime      int   // Cycles spent ready but not running
	ArrivalTime   int64 // Clock at admission
	FirstDispatch int64 // Clock of first dispatch, -1 until scheduled
	Turnaround    int64 // Clock at completion minus ArrivalTime
	State         ProcessState
}

// NewProcess validates static attributes and returns a process in StateNew.
// Duplicate ids are checked by the simulation the process is admitted to.
func NewProcess(id, burst, priority, serverID int) (*Process, error) {
	if id <= 0 {
		return nil, fmt.Errorf("process id must be positive, got %d: %w", id, ErrConfiguration)
	}
	if burst <= 0 {
		return nil, fmt.Errorf("P%d: burst must be positive, got %d: %w", id, burst, ErrConfiguration)
	}
	if priority < MinPriority || priority > MaxPriority {
		return nil, fmt.Errorf("P%d: priority must be in [%d, %d], got %d: %w",
			id, MinPriority, MaxPriority, priority, ErrConfiguration)
	}
	if serverID < 0 {
		return nil, fmt.Errorf("P%d: server id must be non-negative, got %d: %w", id, serverID, ErrConfiguration)
	}
	if serverID == id {
		return nil, fmt.Errorf("P%d: a process cannot be its own server: %w", id, ErrConfiguration)
	}
	return &Process{
		ID:            id,
		Burst:         burst,
		Priority:      priority,
		ServerID:      serverID,
		Remaining:     burst,
		FirstDispatch: -1,
		State:         StateNew,
	}, nil
}

// IsClient reports whether the process depends on a server.
func (p *Process) IsClient() bool {
	return p.ServerID != NoServer
}

// IsEligible reports whether p may take part in a draw: it must be ready and,
// if it is a client, its server must have terminated at least once.
func IsEligible(p *Process, completed map[int]bool) bool {
	if p.State != StateReady {
		return false
	}
	return !p.IsClient() || completed[p.ServerID]
}

// ResetTickets restores the admission-time ticket count and clears any loan.
func (p *Process) ResetTickets() {
	p.Tickets = p.OriginalTickets
	p.LentTickets = 0
	p.BorrowedTickets = 0
}

// ResponseTime is the delay between arrival and first dispatch, or -1 if never dispatched.
func (p *Process) ResponseTime() int64 {
	if p.FirstDispatch < 0 {
		return -1
	}
	return p.FirstDispatch - p.ArrivalTime
}

// execute consumes one CPU cycle.
func (p *Process) execute() {
	if p.State != StateRunning {
		panic(fmt.Sprintf("P%d executed while %s", p.ID, p.State))
	}
	if p.Remaining <= 0 {
		panic(fmt.Sprintf("P%d executed with remaining time %d", p.ID, p.Remaining))
	}
	p.Remaining--
}

// terminate moves a finished process to its terminal state.
func (p *Process) terminate(clock int64) {
	if p.State == StateTerminated {
		panic(fmt.Sprintf("P%d terminated twice", p.ID))
	}
	if p.Remaining != 0 {
		panic(fmt.Sprintf("P%d terminated with remaining time %d", p.ID, p.Remaining))
	}
	p.State = StateTerminated
	p.Turnaround = clock - p.ArrivalTime
}

// This method returns a human-readable string representation of a Process.
func (p Process) String() string {
	return fmt.Sprintf("P%d: (State: %s, Tickets: %d, CPU: %d/%d, Priority: %d, Wait: %d)",
		p.ID, p.State, p.Tickets, p.Remaining, p.Burst, p.Priority, p.WaitTime)
}
