// Implements the ReadySet, which holds every process waiting for the CPU.
// Processes enter on admission, preemption and I/O block; they leave when they win a draw.

package sim

import (
	"fmt"
	"sort"
	"strings"
)

// ReadySet is the unordered collection of READY processes owned by a Simulator.
// Insertion order is kept for display only; draws order participants by id.
type ReadySet struct {
	procs []*Process
}

// Add inserts a process. Adding a process that is already present is an invariant violation.
func (rs *ReadySet) Add(p *Process) {
	if p == nil {
		panic("ReadySet.Add: process must not be nil")
	}
	if rs.Contains(p.ID) {
		panic(fmt.Sprintf("ReadySet.Add: P%d already ready", p.ID))
	}
	rs.procs = append(rs.procs, p)
}

// Remove takes the process with the given id out of the set and returns it, or nil.
func (rs *ReadySet) Remove(id int) *Process {
	for i, p := range rs.procs {
		if p.ID == id {
			rs.procs = append(rs.procs[:i], rs.procs[i+1:]...)
			return p
		}
	}
	return nil
}

// Get returns the process with the given id, or nil.
func (rs *ReadySet) Get(id int) *Process {
	for _, p := range rs.procs {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Contains reports whether a process with the given id is ready.
func (rs *ReadySet) Contains(id int) bool {
	return rs.Get(id) != nil
}

// Len returns the number of ready processes.
func (rs *ReadySet) Len() int {
	return len(rs.procs)
}

// Items returns the set contents for iteration.
// The returned slice is the set's internal storage -- callers within the
// sim package may iterate over it but MUST NOT append to or reslice it.
func (rs *ReadySet) Items() []*Process {
	return rs.procs
}

// Eligible returns the ready processes allowed into a draw, given the ids
// that have completed at least once.
func (rs *ReadySet) Eligible(completed map[int]bool) []*Process {
	out := make([]*Process, 0, len(rs.procs))
	for _, p := range rs.procs {
		if IsEligible(p, completed) {
			out = append(out, p)
		}
	}
	return out
}

// IDs returns the ids of all ready processes in ascending order.
func (rs *ReadySet) IDs() []int {
	ids := make([]int, len(rs.procs))
	for i, p := range rs.procs {
		ids[i] = p.ID
	}
	sort.Ints(ids)
	return ids
}

// Clear drops every process.
func (rs *ReadySet) Clear() {
	rs.procs = nil
}

func (rs *ReadySet) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, p := range rs.procs {
		sb.WriteString(fmt.Sprintf("P%d", p.ID))
		if i < len(rs.procs)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}
