// Package trace provides draw and cycle recording for lottery scheduling runs.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// Participant captures one eligible process as it stood when a draw was made.
// Low and High bound the process's ticket range inside the draw: in direct mode
// the range is (Low, High] over the summed tickets; in pool mode it is the
// integer slice of [1, Total] the participant's share of the pool maps to.
type Participant struct {
	ID       int     `json:"id"`
	Tickets  int     `json:"tickets"`
	Priority int     `json:"priority"`
	WaitTime int     `json:"wait_time"`
	Low      float64 `json:"low"`
	High     float64 `json:"high"`
}

// DrawRecord captures a single lottery draw.
type DrawRecord struct {
	Clock        int64         `json:"clock"`
	Ticket       int           `json:"ticket"`
	Total        int           `json:"total"`
	WinnerID     int           `json:"winner_id"`
	PoolMode     bool          `json:"pool_mode"`
	Uniform      bool          `json:"uniform,omitempty"` // pool mode fallback when every participant holds 0 tickets
	Participants []Participant `json:"participants"`
}

// Winner returns the winning participant, or false if the record names a winner
// that did not take part (never the case for records produced by the lottery).
func (d *DrawRecord) Winner() (Participant, bool) {
	for _, p := range d.Participants {
		if p.ID == d.WinnerID {
			return p, true
		}
	}
	return Participant{}, false
}

// Share is the probability that p wins d: its fraction of the draw space, or
// an equal split among participants for a uniform fallback draw.
func (d *DrawRecord) Share(p Participant) float64 {
	if d.Uniform {
		if len(d.Participants) == 0 {
			return 0
		}
		return 1 / float64(len(d.Participants))
	}
	if d.Total <= 0 {
		return 0
	}
	return (p.High - p.Low) / float64(d.Total)
}

// ParticipantTickets sums the tickets held by all participants.
func (d *DrawRecord) ParticipantTickets() int {
	sum := 0
	for _, p := range d.Participants {
		sum += p.Tickets
	}
	return sum
}

// TransferKind distinguishes the two directions of a ticket transfer.
type TransferKind string

const (
	TransferLend    TransferKind = "lend"    // client -> server at admission
	TransferRestore TransferKind = "restore" // server -> client at server dispatch
)

// TransferRecord captures one movement of tickets between a client and its server.
type TransferRecord struct {
	Clock  int64        `json:"clock"`
	Kind   TransferKind `json:"kind"`
	From   int          `json:"from"`
	To     int          `json:"to"`
	Amount int          `json:"amount"`
}

// CycleEvent names what happened on the CPU during one cycle.
type CycleEvent string

const (
	EventRun      CycleEvent = "run"      // the running process executed one unit
	EventComplete CycleEvent = "complete" // the running process finished this cycle
	EventIdle     CycleEvent = "idle"     // no eligible process, or zero tickets in play
)

// CycleRecord is the per-cycle snapshot appended to the history.
// RunningID is 0 when the CPU was idle at the end of the cycle.
// Ticket and Total carry the most recent draw, which may be from an earlier cycle.
type CycleRecord struct {
	Clock      int64      `json:"clock"`
	Event      CycleEvent `json:"event"`
	RunningID  int        `json:"running_id"`
	ExecutedID int        `json:"executed_id"`
	ReadyIDs   []int      `json:"ready_ids"`
	Terminated int        `json:"terminated"`
	Drew       bool       `json:"drew"`
	Ticket     int        `json:"ticket"`
	Total      int        `json:"total"`
}
