package sim

import (
	"sort"

	"github.com/lottery-sim/lottery-sim/sim/trace"
)

// Lottery draws a winning ticket among eligible processes.
//
// Direct mode (Pool == 0): the ticket is uniform over [1, Σ tickets] and
// process i owns the range (cumulative_before_i, cumulative_before_i + tickets_i].
//
// Global-pool mode (Pool > 0): the ticket is uniform over [1, Pool] and each
// process owns the integer tickets (floor(Pool*cum_before_i/Σ), floor(Pool*cum_i/Σ)],
// laid out in the same ascending-id order (see PoolBoundaries). When every
// participant holds 0 tickets the winner is a uniform pick among them.
type Lottery struct {
	Pool int
	rng  UniformSource
}

// NewLottery creates a Lottery drawing from rng. pool == 0 selects direct mode.
func NewLottery(pool int, rng UniformSource) *Lottery {
	if rng == nil {
		panic("NewLottery: rng must not be nil")
	}
	return &Lottery{Pool: pool, rng: rng}
}

// Draw selects a winner among eligible. It returns nil when no draw is possible:
// no eligible process, or zero tickets in play in direct mode.
// eligible is not modified; participants are ordered by ascending id.
func (l *Lottery) Draw(eligible []*Process, clock int64) *trace.DrawRecord {
	if len(eligible) == 0 {
		return nil
	}
	ordered := sortedByID(eligible)
	sum := 0
	for _, p := range ordered {
		sum += p.Tickets
	}

	if l.Pool > 0 {
		return l.drawFromPool(ordered, sum, clock)
	}
	if sum == 0 {
		return nil
	}

	ticket := l.rng.Intn(sum) + 1
	record := &trace.DrawRecord{Clock: clock, Ticket: ticket, Total: sum}
	record.Participants = TicketRanges(ordered)
	for _, part := range record.Participants {
		if float64(ticket) <= part.High {
			record.WinnerID = part.ID
			break
		}
	}
	return record
}

func (l *Lottery) drawFromPool(ordered []*Process, sum int, clock int64) *trace.DrawRecord {
	ticket := l.rng.Intn(l.Pool) + 1
	record := &trace.DrawRecord{Clock: clock, Ticket: ticket, Total: l.Pool, PoolMode: true}

	if sum == 0 {
		// No participant holds a ticket: every one of them is equally preferred.
		record.Uniform = true
		record.WinnerID = ordered[l.rng.Intn(len(ordered))].ID
		weights := make([]int, len(ordered))
		for i := range weights {
			weights[i] = 1
		}
		record.Participants = poolParticipants(ordered, weights, l.Pool)
		return record
	}

	weights := make([]int, len(ordered))
	for i, p := range ordered {
		weights[i] = p.Tickets
	}
	record.Participants = poolParticipants(ordered, weights, l.Pool)

	// ticket <= Pool*cum/sum, compared exactly in integers.
	cum := int64(0)
	for _, p := range ordered {
		cum += int64(p.Tickets)
		if int64(ticket)*int64(sum) <= int64(l.Pool)*cum {
			record.WinnerID = p.ID
			return record
		}
	}
	// Unreachable with exact arithmetic; the last participant absorbs any residual.
	record.WinnerID = ordered[len(ordered)-1].ID
	return record
}

// TicketRanges lays out direct-mode ticket ranges in the order given.
// Each participant owns (Low, High]; the last High equals the ticket sum.
func TicketRanges(ordered []*Process) []trace.Participant {
	out := make([]trace.Participant, 0, len(ordered))
	cum := 0
	for _, p := range ordered {
		out = append(out, trace.Participant{
			ID:       p.ID,
			Tickets:  p.Tickets,
			Priority: p.Priority,
			WaitTime: p.WaitTime,
			Low:      float64(cum),
			High:     float64(cum + p.Tickets),
		})
		cum += p.Tickets
	}
	return out
}

// poolParticipants records each participant's share of [1, pool] using the
// same integer boundaries the draw compares against.
func poolParticipants(ordered []*Process, weights []int, pool int) []trace.Participant {
	bounds := PoolBoundaries(pool, weights)
	out := make([]trace.Participant, 0, len(ordered))
	prev := 0
	for i, p := range ordered {
		out = append(out, trace.Participant{
			ID:       p.ID,
			Tickets:  p.Tickets,
			Priority: p.Priority,
			WaitTime: p.WaitTime,
			Low:      float64(prev),
			High:     float64(bounds[i]),
		})
		prev = bounds[i]
	}
	return out
}

// PoolBoundaries maps weights onto the integer tickets [1, pool] the way a
// pool-mode draw does. Entry i is the highest ticket owned by weight i, so
// weight i owns (boundaries[i-1], boundaries[i]]. The last boundary is always
// pool, so the ranges partition [1, pool] with no gaps or overlaps.
// Returns nil when weights is empty, pool < 1, or every weight is 0.
func PoolBoundaries(pool int, weights []int) []int {
	if len(weights) == 0 || pool < 1 {
		return nil
	}
	sum := int64(0)
	for _, w := range weights {
		sum += int64(w)
	}
	if sum == 0 {
		return nil
	}
	out := make([]int, len(weights))
	cum := int64(0)
	for i, w := range weights {
		cum += int64(w)
		out[i] = int(int64(pool) * cum / sum)
	}
	out[len(out)-1] = pool
	return out
}

// PoolShares returns the number of pool tickets each weight owns under PoolBoundaries.
// The shares always sum to pool.
func PoolShares(pool int, weights []int) []int {
	bounds := PoolBoundaries(pool, weights)
	if bounds == nil {
		return nil
	}
	shares := make([]int, len(bounds))
	prev := 0
	for i, b := range bounds {
		shares[i] = b - prev
		prev = b
	}
	return shares
}

func sortedByID(procs []*Process) []*Process {
	out := make([]*Process, len(procs))
	copy(out, procs)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
