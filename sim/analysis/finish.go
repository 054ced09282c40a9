package analysis

import (
	"fmt"
	"strings"

	"github.com/lottery-sim/lottery-sim/sim"
	"github.com/lottery-sim/lottery-sim/sim/trace"
)

// luckMargin is how far, in percentage points, a win rate must stray from
// expectation to be called luck.
const luckMargin = 10.0

// FinishFact explains one process's place in the completion order.
type FinishFact struct {
	Position        int // 1-based
	ID              int
	Priority        int
	Burst           int
	OriginalTickets int
	WaitTime        int
	Turnaround      int64

	Wins           int
	Participations int
	WinRate        float64 // percent of draws entered that were won
	ExpectedRate   float64 // percent predicted by ticket shares in those draws
	MeanTickets    float64
}

// Luck is the win rate minus the expected rate, in percentage points.
func (f FinishFact) Luck() float64 {
	return f.WinRate - f.ExpectedRate
}

// FinishOrder explains a run's completion order.
type FinishOrder struct {
	Facts []FinishFact
	// Inversions counts pairs that finished before a process of strictly
	// higher priority. Zero means the order followed priority.
	Inversions int
}

// FollowsPriority reports whether no lower-priority process finished ahead
// of a higher-priority one.
func (o *FinishOrder) FollowsPriority() bool {
	return o.Inversions == 0
}

// AnalyzeFinishOrder joins terminated-process statistics with the draw history.
// Returns nil when stats is nil.
func AnalyzeFinishOrder(stats *sim.Statistics, draws []trace.DrawRecord) *FinishOrder {
	if stats == nil {
		return nil
	}
	expected := make(map[int]float64)
	for _, d := range draws {
		if d.Total <= 0 {
			continue
		}
		for _, p := range d.Participants {
			expected[p.ID] += d.Share(p)
		}
	}
	summary := trace.Summarize(&trace.SimulationTrace{Draws: draws})

	order := &FinishOrder{}
	for i, ps := range stats.Terminated {
		fact := FinishFact{
			Position:        i + 1,
			ID:              ps.ID,
			Priority:        ps.Priority,
			Burst:           ps.Burst,
			OriginalTickets: ps.OriginalTickets,
			WaitTime:        ps.WaitTime,
			Turnaround:      ps.Turnaround,
		}
		if ds, ok := summary.PerProcess[ps.ID]; ok {
			fact.Wins = ds.Wins
			fact.Participations = ds.Participations
			fact.WinRate = ds.WinRate * 100
			fact.MeanTickets = ds.MeanTickets
			fact.ExpectedRate = expected[ps.ID] / float64(ds.Participations) * 100
		}
		order.Facts = append(order.Facts, fact)
	}

	for i := range order.Facts {
		for j := i + 1; j < len(order.Facts); j++ {
			if order.Facts[i].Priority < order.Facts[j].Priority {
				order.Inversions++
			}
		}
	}
	return order
}

// Render formats the finishing order as a short plain-text report.
func (o *FinishOrder) Render() string {
	var sb strings.Builder
	sb.WriteString("Finishing order\n")
	for _, f := range o.Facts {
		fmt.Fprintf(&sb, "%2d. P%-3d priority %d, burst %d, won %d/%d draws (%.1f%% vs %.1f%% expected)",
			f.Position, f.ID, f.Priority, f.Burst, f.Wins, f.Participations, f.WinRate, f.ExpectedRate)
		switch luck := f.Luck(); {
		case f.Participations == 0:
		case luck > luckMargin:
			sb.WriteString(", lucky")
		case luck < -luckMargin:
			sb.WriteString(", unlucky")
		}
		sb.WriteString("\n")
	}
	if o.FollowsPriority() {
		sb.WriteString("Completion followed priority.\n")
	} else {
		fmt.Fprintf(&sb, "%d priority inversions: lower-priority processes finished first.\n", o.Inversions)
	}
	return sb.String()
}
