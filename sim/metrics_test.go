package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatistics_NilBeforeAnyCompletion(t *testing.T) {
	s := newTestSimulator(t, DefaultConfig(), constantSource{})
	assert.Nil(t, s.Statistics())
	mustAdmit(t, s, 1, 3, 1, NoServer)
	s.Step()
	assert.Nil(t, s.Statistics())
}

func TestStatistics_ClientServerRun(t *testing.T) {
	// GIVEN server P1 (burst 3) and its client P2 (burst 2), quantum 2
	s := newTestSimulator(t, Config{Quantum: 2, TicketMode: TicketsManual}, constantSource{})
	mustAdmit(t, s, 1, 3, 1, NoServer, 10)
	mustAdmit(t, s, 2, 2, 5, 1, 20)

	// WHEN run to completion
	_, err := s.RunToCompletion(0)
	require.NoError(t, err)

	// THEN P1 runs [1,3] and P2 runs [4,5]
	stats := s.Statistics()
	require.NotNil(t, stats)
	assert.Equal(t, int64(5), stats.TotalTime)
	assert.Equal(t, 2, stats.Completed)

	want := []ProcessStats{
		{ID: 1, Priority: 1, Burst: 3, OriginalTickets: 10, ServerID: 0,
			ArrivalTime: 0, FirstDispatch: 1, CompletionTime: 3, WaitTime: 1, Turnaround: 3, Response: 1},
		{ID: 2, Priority: 5, Burst: 2, OriginalTickets: 20, ServerID: 1,
			ArrivalTime: 0, FirstDispatch: 4, CompletionTime: 5, WaitTime: 4, Turnaround: 5, Response: 4},
	}
	assert.Equal(t, want, stats.Terminated)
	assert.InDelta(t, 2.5, stats.MeanWait, 1e-9)
	assert.InDelta(t, 4.0, stats.MeanTurnaround, 1e-9)
	assert.InDelta(t, 2.5, stats.MeanResponse, 1e-9)
}

func TestComputeStatistics_LateArrival(t *testing.T) {
	procs := []*Process{
		{ID: 4, Priority: 2, Burst: 1, ArrivalTime: 10, FirstDispatch: 12, WaitTime: 2, Turnaround: 3},
	}
	stats := ComputeStatistics(procs, 20)
	require.NotNil(t, stats)
	assert.Equal(t, int64(13), stats.Terminated[0].CompletionTime)
	assert.Equal(t, int64(2), stats.Terminated[0].Response)
	assert.Equal(t, int64(20), stats.TotalTime)
	assert.Nil(t, ComputeStatistics(nil, 5))
}
