package sim

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lottery-sim/lottery-sim/sim/trace"
)

// scriptedSource replays a fixed sequence of Intn results.
// Each value must be below the n it is asked for; running out of values panics.
type scriptedSource struct {
	values []int
	next   int
}

func (s *scriptedSource) Intn(n int) int {
	if s.next >= len(s.values) {
		panic("scriptedSource: out of values")
	}
	v := s.values[s.next]
	s.next++
	if v < 0 || v >= n {
		panic(fmt.Sprintf("scriptedSource: value %d outside [0, %d)", v, n))
	}
	return v
}

// constantSource always returns min(v, n-1).
type constantSource struct {
	v int
}

func (c constantSource) Intn(n int) int {
	return min(c.v, n-1)
}

// ticket is the scripted Intn result that draws ticket t.
func ticket(t int) int {
	return t - 1
}

func newTestSimulator(t *testing.T, cfg Config, rng UniformSource) *Simulator {
	t.Helper()
	s, err := NewSimulator(cfg, rng, trace.TraceConfig{Level: trace.TraceLevelDraws})
	require.NoError(t, err)
	return s
}

func seededSimulator(t *testing.T, cfg Config, seed int64) *Simulator {
	t.Helper()
	rng := NewPartitionedRNG(NewSimulationKey(seed)).ForSubsystem(SubsystemLottery)
	return newTestSimulator(t, cfg, rng)
}

// mustAdmit creates and admits a process, failing the test on error.
func mustAdmit(t *testing.T, s *Simulator, id, burst, priority, server int, tickets ...int) *Process {
	t.Helper()
	p, err := s.CreateProcess(id, burst, priority, server)
	require.NoError(t, err)
	require.NoError(t, s.Admit(p, tickets...))
	return p
}

func procsWithTickets(tickets ...int) []*Process {
	out := make([]*Process, len(tickets))
	for i, tk := range tickets {
		out[i] = &Process{ID: i + 1, Priority: 1, Tickets: tk, State: StateReady, FirstDispatch: -1}
	}
	return out
}
