// Package analysis derives the numeric facts behind a lottery scheduling run:
// why a draw went the way it did, why processes finished in their order, and
// whether observed wins are consistent with ticket shares.
//
// Everything here is a pure function of sim/trace records and sim statistics;
// nothing mutates a simulation.
package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/lottery-sim/lottery-sim/sim"
	"github.com/lottery-sim/lottery-sim/sim/trace"
)

// RangeFact describes one participant's stake in a draw.
type RangeFact struct {
	ID       int
	Tickets  int
	Priority int
	WaitTime int
	// First and Last bound the integer tickets the participant owned, inclusive.
	// First > Last means it owned none.
	First       int
	Last        int
	Probability float64 // percent chance of winning the draw
}

// Owned reports whether the participant owned at least one ticket.
func (r RangeFact) Owned() bool {
	return r.First <= r.Last
}

// DrawAnalysis is the set of facts that explain a single draw.
type DrawAnalysis struct {
	Clock    int64
	Ticket   int
	Total    int
	PoolMode bool
	Uniform  bool

	Winner RangeFact
	Losers []RangeFact // ascending id

	WinnerHasMaxPriority bool
	HigherPriority       []int // ids of participants with higher priority than the winner
	// WaitBonus is the share of the winner's tickets earned by waiting under
	// automatic ticket assignment.
	WaitBonus int
	// Upset is set when some loser owned more of the draw space than the winner.
	Upset bool
}

// AnalyzeDraw derives the facts of d. Fails if d names a winner that did not
// take part.
func AnalyzeDraw(d trace.DrawRecord) (*DrawAnalysis, error) {
	if _, ok := d.Winner(); !ok {
		return nil, fmt.Errorf("draw at clock %d: winner P%d is not a participant", d.Clock, d.WinnerID)
	}
	parts := append([]trace.Participant(nil), d.Participants...)
	sort.Slice(parts, func(i, j int) bool { return parts[i].ID < parts[j].ID })

	a := &DrawAnalysis{
		Clock:    d.Clock,
		Ticket:   d.Ticket,
		Total:    d.Total,
		PoolMode: d.PoolMode,
		Uniform:  d.Uniform,
	}

	maxPriority := 0
	for _, p := range parts {
		maxPriority = max(maxPriority, p.Priority)
	}

	for _, p := range parts {
		fact := rangeFact(&d, p)
		if p.ID == d.WinnerID {
			a.Winner = fact
			continue
		}
		a.Losers = append(a.Losers, fact)
	}
	for _, p := range parts {
		if p.Priority > a.Winner.Priority {
			a.HigherPriority = append(a.HigherPriority, p.ID)
		}
	}
	a.WinnerHasMaxPriority = a.Winner.Priority == maxPriority
	a.WaitBonus = sim.WaitBonus(a.Winner.WaitTime)
	for _, l := range a.Losers {
		if l.Probability > a.Winner.Probability {
			a.Upset = true
		}
	}
	return a, nil
}

func rangeFact(d *trace.DrawRecord, p trace.Participant) RangeFact {
	fact := RangeFact{
		ID:       p.ID,
		Tickets:  p.Tickets,
		Priority: p.Priority,
		WaitTime: p.WaitTime,
		First:    int(math.Floor(p.Low)) + 1,
		Last:     int(math.Floor(p.High)),
	}
	fact.Probability = d.Share(p) * 100
	return fact
}

// Render formats the analysis as a short plain-text report.
func (a *DrawAnalysis) Render() string {
	var sb strings.Builder
	mode := "direct"
	if a.PoolMode {
		mode = "global pool"
	}
	fmt.Fprintf(&sb, "Draw at cycle %d (%s): ticket %d of %d\n", a.Clock, mode, a.Ticket, a.Total)
	if a.Uniform {
		sb.WriteString("  No participant held tickets; the winner was picked uniformly.\n")
	}

	all := append([]RangeFact{a.Winner}, a.Losers...)
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	for _, f := range all {
		marker := ""
		if f.ID == a.Winner.ID {
			marker = "  <- winner"
		}
		fmt.Fprintf(&sb, "  P%-3d %4d tickets  %s  %5.1f%%%s\n", f.ID, f.Tickets, formatRange(f), f.Probability, marker)
	}

	fmt.Fprintf(&sb, "P%d won with %.1f%% odds, priority %d", a.Winner.ID, a.Winner.Probability, a.Winner.Priority)
	if a.WinnerHasMaxPriority {
		sb.WriteString(" (highest in the draw)")
	} else {
		fmt.Fprintf(&sb, " (outranked by %s)", formatIDs(a.HigherPriority))
	}
	sb.WriteString(".\n")
	if a.WaitBonus > 0 {
		fmt.Fprintf(&sb, "It had waited %d cycles, worth %d bonus tickets.\n", a.Winner.WaitTime, a.WaitBonus)
	}
	if a.Upset {
		sb.WriteString("At least one loser held better odds.\n")
	}
	return sb.String()
}

func formatRange(f RangeFact) string {
	if !f.Owned() {
		return "[  none  ]"
	}
	return fmt.Sprintf("[%3d-%3d]", f.First, f.Last)
}

func formatIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("P%d", id)
	}
	return strings.Join(parts, ", ")
}
