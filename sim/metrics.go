package sim

import (
	"gonum.org/v1/gonum/stat"
)

// ProcessStats is the per-process row of a Statistics report.
type ProcessStats struct {
	ID              int
	Priority        int
	Burst           int
	OriginalTickets int
	ServerID        int
	ArrivalTime     int64
	FirstDispatch   int64
	CompletionTime  int64
	WaitTime        int
	Turnaround      int64
	Response        int64
}

// Statistics summarizes the terminated processes of a run.
type Statistics struct {
	TotalTime      int64
	Completed      int
	MeanWait       float64
	MeanTurnaround float64
	MeanResponse   float64
	Terminated     []ProcessStats // completion order
}

// Statistics computes means over terminated processes.
// Returns nil when nothing has terminated yet. Read-only.
func (sim *Simulator) Statistics() *Statistics {
	return ComputeStatistics(sim.terminated, sim.Clock)
}

// ComputeStatistics aggregates wait, turnaround and response times over
// terminated, which must be in completion order. Returns nil if it is empty.
func ComputeStatistics(terminated []*Process, clock int64) *Statistics {
	if len(terminated) == 0 {
		return nil
	}
	n := len(terminated)
	waits := make([]float64, n)
	turnarounds := make([]float64, n)
	responses := make([]float64, n)
	rows := make([]ProcessStats, n)

	for i, p := range terminated {
		waits[i] = float64(p.WaitTime)
		turnarounds[i] = float64(p.Turnaround)
		responses[i] = float64(p.ResponseTime())
		rows[i] = ProcessStats{
			ID:              p.ID,
			Priority:        p.Priority,
			Burst:           p.Burst,
			OriginalTickets: p.OriginalTickets,
			ServerID:        p.ServerID,
			ArrivalTime:     p.ArrivalTime,
			FirstDispatch:   p.FirstDispatch,
			CompletionTime:  p.ArrivalTime + p.Turnaround,
			WaitTime:        p.WaitTime,
			Turnaround:      p.Turnaround,
			Response:        p.ResponseTime(),
		}
	}

	return &Statistics{
		TotalTime:      clock,
		Completed:      n,
		MeanWait:       stat.Mean(waits, nil),
		MeanTurnaround: stat.Mean(turnarounds, nil),
		MeanResponse:   stat.Mean(responses, nil),
		Terminated:     rows,
	}
}
