package workload

import (
	"bytes"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/lottery-sim/lottery-sim/sim"
)

// CurrentVersion is written by Save and accepted (along with "") by LoadSpec.
const CurrentVersion = "1"

// Spec is the top-level workload file: an optional simulator config, an
// explicit process list and an optional block of randomly generated processes.
// Loaded from YAML via LoadSpec(path).
type Spec struct {
	Version   string        `yaml:"version"`
	Seed      int64         `yaml:"seed"`
	Config    *sim.Config   `yaml:"config,omitempty"`
	Processes []ProcessSpec `yaml:"processes,omitempty"`
	Random    *RandomSpec   `yaml:"random,omitempty"`
}

// ProcessSpec describes one process to create and admit.
type ProcessSpec struct {
	ID       int `yaml:"id"`
	Burst    int `yaml:"burst"`
	Priority int `yaml:"priority"`
	Server   int `yaml:"server,omitempty"`  // 0 = independent; must be listed earlier
	Tickets  int `yaml:"tickets,omitempty"` // manual ticket mode only
}

// RandomSpec asks for Count extra processes with burst and priority drawn
// uniformly from the given inclusive ranges. Zero bounds take the defaults.
type RandomSpec struct {
	Count       int `yaml:"count"`
	BurstMin    int `yaml:"burst_min,omitempty"`
	BurstMax    int `yaml:"burst_max,omitempty"`
	PriorityMin int `yaml:"priority_min,omitempty"`
	PriorityMax int `yaml:"priority_max,omitempty"`
}

// LoadSpec reads and parses a YAML workload file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadSpec(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workload spec: %w", err)
	}
	return ParseSpec(data)
}

// ParseSpec decodes a YAML workload document with strict field checking.
func ParseSpec(data []byte) (*Spec, error) {
	var spec Spec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing workload spec: %w", err)
	}
	return &spec, nil
}

// Save writes the spec as YAML, stamping the current version.
func (s *Spec) Save(path string) error {
	s.Version = CurrentVersion
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding workload spec: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing workload spec: %w", err)
	}
	logrus.Infof("Wrote %d processes to %s", len(s.Processes), path)
	return nil
}

// Validate checks the spec without touching any simulator. Errors wrap
// sim.ErrConfiguration.
func (s *Spec) Validate() error {
	if s.Version != "" && s.Version != CurrentVersion {
		return fmt.Errorf("unsupported workload version %q: %w", s.Version, sim.ErrConfiguration)
	}
	if err := s.SimConfig().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	seen := make(map[int]bool, len(s.Processes))
	for i, p := range s.Processes {
		if err := validateProcess(p, i, seen); err != nil {
			return err
		}
		seen[p.ID] = true
	}
	if s.Random != nil {
		if err := s.Random.Validate(); err != nil {
			return err
		}
	}
	if len(s.Processes) == 0 && (s.Random == nil || s.Random.Count == 0) {
		return fmt.Errorf("workload defines no processes: %w", sim.ErrConfiguration)
	}
	return nil
}

func validateProcess(p ProcessSpec, idx int, seen map[int]bool) error {
	prefix := fmt.Sprintf("processes[%d]", idx)
	if p.ID <= 0 {
		return fmt.Errorf("%s: id must be positive, got %d: %w", prefix, p.ID, sim.ErrConfiguration)
	}
	if seen[p.ID] {
		return fmt.Errorf("%s: P%d: %w", prefix, p.ID, sim.ErrDuplicateID)
	}
	if p.Burst <= 0 {
		return fmt.Errorf("%s: burst must be positive, got %d: %w", prefix, p.Burst, sim.ErrConfiguration)
	}
	if p.Priority < sim.MinPriority || p.Priority > sim.MaxPriority {
		return fmt.Errorf("%s: priority must be in [%d, %d], got %d: %w",
			prefix, sim.MinPriority, sim.MaxPriority, p.Priority, sim.ErrConfiguration)
	}
	if p.Server != sim.NoServer && !seen[p.Server] {
		return fmt.Errorf("%s: server P%d must be listed before its client: %w", prefix, p.Server, sim.ErrConfiguration)
	}
	if p.Tickets < 0 {
		return fmt.Errorf("%s: tickets must be non-negative, got %d: %w", prefix, p.Tickets, sim.ErrConfiguration)
	}
	return nil
}

// Validate checks the random block after defaults are applied.
func (r *RandomSpec) Validate() error {
	if r.Count < 0 {
		return fmt.Errorf("random.count must be non-negative, got %d: %w", r.Count, sim.ErrConfiguration)
	}
	d := r.withDefaults()
	if d.BurstMin < 1 || d.BurstMin > d.BurstMax {
		return fmt.Errorf("random burst range [%d, %d] is invalid: %w", d.BurstMin, d.BurstMax, sim.ErrConfiguration)
	}
	if d.PriorityMin < sim.MinPriority || d.PriorityMax > sim.MaxPriority || d.PriorityMin > d.PriorityMax {
		return fmt.Errorf("random priority range [%d, %d] is invalid: %w", d.PriorityMin, d.PriorityMax, sim.ErrConfiguration)
	}
	return nil
}

func (r RandomSpec) withDefaults() RandomSpec {
	if r.BurstMin == 0 {
		r.BurstMin = DefaultBurstMin
	}
	if r.BurstMax == 0 {
		r.BurstMax = DefaultBurstMax
	}
	if r.PriorityMin == 0 {
		r.PriorityMin = DefaultPriorityMin
	}
	if r.PriorityMax == 0 {
		r.PriorityMax = DefaultPriorityMax
	}
	return r
}

// SimConfig returns sim.DefaultConfig overlaid with every non-zero field of
// the spec's config block.
func (s *Spec) SimConfig() sim.Config {
	cfg := sim.DefaultConfig()
	if s.Config == nil {
		return cfg
	}
	if s.Config.Quantum != 0 {
		cfg.Quantum = s.Config.Quantum
	}
	if s.Config.Speed != 0 {
		cfg.Speed = s.Config.Speed
	}
	if s.Config.TicketMode != "" {
		cfg.TicketMode = s.Config.TicketMode
	}
	if s.Config.Pool != 0 {
		cfg.Pool = s.Config.Pool
	}
	return cfg
}
