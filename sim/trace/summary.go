package trace

import "sort"

// ProcessDrawStats aggregates one process's history across all draws it took part in.
type ProcessDrawStats struct {
	ID             int
	Wins           int
	Participations int
	TicketsSum     int
	MeanTickets    float64
	WinRate        float64 // Wins / Participations
}

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalDraws   int
	TotalCycles  int
	IdleCycles   int
	UniformDraws int
	LendCount    int
	RestoreCount int
	TicketsLent  int
	PerProcess   map[int]*ProcessDrawStats
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		PerProcess: make(map[int]*ProcessDrawStats),
	}
	if st == nil {
		return summary
	}

	summary.TotalDraws = len(st.Draws)
	for _, d := range st.Draws {
		if d.Uniform {
			summary.UniformDraws++
		}
		for _, p := range d.Participants {
			ps, ok := summary.PerProcess[p.ID]
			if !ok {
				ps = &ProcessDrawStats{ID: p.ID}
				summary.PerProcess[p.ID] = ps
			}
			ps.Participations++
			ps.TicketsSum += p.Tickets
			if p.ID == d.WinnerID {
				ps.Wins++
			}
		}
	}
	for _, ps := range summary.PerProcess {
		ps.MeanTickets = float64(ps.TicketsSum) / float64(ps.Participations)
		ps.WinRate = float64(ps.Wins) / float64(ps.Participations)
	}

	summary.TotalCycles = len(st.Cycles)
	for _, c := range st.Cycles {
		if c.Event == EventIdle {
			summary.IdleCycles++
		}
	}

	for _, tr := range st.Transfers {
		switch tr.Kind {
		case TransferLend:
			summary.LendCount++
			summary.TicketsLent += tr.Amount
		case TransferRestore:
			summary.RestoreCount++
		}
	}

	return summary
}

// SortedProcesses returns the per-process stats in ascending id order.
func (s *TraceSummary) SortedProcesses() []*ProcessDrawStats {
	out := make([]*ProcessDrawStats, 0, len(s.PerProcess))
	for _, ps := range s.PerProcess {
		out = append(out, ps)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
