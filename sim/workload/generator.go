package workload

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/lottery-sim/lottery-sim/sim"
)

// Ranges used for random processes when a RandomSpec leaves them unset.
const (
	DefaultBurstMin    = 3
	DefaultBurstMax    = 10
	DefaultPriorityMin = 1
	DefaultPriorityMax = 3
)

// GenerateProcesses returns r.Count independent processes with ids starting at
// firstID. Burst and priority are drawn uniformly from r's inclusive ranges.
// Tickets are left at 0; Resolve fills them in for manual ticket mode.
func GenerateProcesses(rng *rand.Rand, firstID int, r RandomSpec) []ProcessSpec {
	r = r.withDefaults()
	out := make([]ProcessSpec, 0, r.Count)
	for i := 0; i < r.Count; i++ {
		out = append(out, ProcessSpec{
			ID:       firstID + i,
			Burst:    r.BurstMin + rng.Intn(r.BurstMax-r.BurstMin+1),
			Priority: r.PriorityMin + rng.Intn(r.PriorityMax-r.PriorityMin+1),
		})
	}
	return out
}

// DistributePool splits pool tickets among n processes: one each, the rest
// handed out one at a time to random processes, then shuffled.
// The result always sums to pool. Fails when pool < n.
func DistributePool(pool, n int, rng *rand.Rand) ([]int, error) {
	if n <= 0 {
		return nil, nil
	}
	if pool < n {
		return nil, fmt.Errorf("pool of %d tickets cannot give %d processes one ticket each: %w",
			pool, n, sim.ErrConfiguration)
	}
	tickets := make([]int, n)
	for i := range tickets {
		tickets[i] = 1
	}
	for left := pool - n; left > 0; left-- {
		tickets[rng.Intn(n)]++
	}
	rng.Shuffle(n, func(i, j int) { tickets[i], tickets[j] = tickets[j], tickets[i] })
	return tickets, nil
}

// Resolve validates the spec and expands it into the ordered list of processes
// to admit under cfg. Random processes get ids after the largest explicit id.
// In manual ticket mode they are given tickets: a pool-mode run splits the pool
// among them with DistributePool, otherwise each gets sim.BaseTickets(priority).
// rng is only consumed when the spec has a random block.
func (s *Spec) Resolve(cfg sim.Config, rng *rand.Rand) ([]ProcessSpec, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	procs := append([]ProcessSpec(nil), s.Processes...)
	if s.Random == nil || s.Random.Count == 0 {
		return procs, nil
	}

	firstID := 1
	for _, p := range procs {
		if p.ID >= firstID {
			firstID = p.ID + 1
		}
	}
	generated := GenerateProcesses(rng, firstID, *s.Random)

	if cfg.Manual() {
		if cfg.PoolMode() {
			shares, err := DistributePool(cfg.Pool, len(generated), rng)
			if err != nil {
				return nil, err
			}
			for i := range generated {
				generated[i].Tickets = shares[i]
			}
			logrus.Infof("Distributed a pool of %d tickets over %d random processes", cfg.Pool, len(generated))
		} else {
			for i := range generated {
				generated[i].Tickets = sim.BaseTickets(generated[i].Priority)
			}
		}
	}
	return append(procs, generated...), nil
}

// Apply creates and admits procs into s, in order. Tickets are passed to
// Admit only when set, so automatic mode rejects explicit counts and manual
// mode rejects missing ones. Stops at the first error.
func Apply(s *sim.Simulator, procs []ProcessSpec) error {
	for _, ps := range procs {
		p, err := s.CreateProcess(ps.ID, ps.Burst, ps.Priority, ps.Server)
		if err != nil {
			return err
		}
		var tickets []int
		if ps.Tickets > 0 {
			tickets = []int{ps.Tickets}
		}
		if err := s.Admit(p, tickets...); err != nil {
			return err
		}
	}
	return nil
}
