package workload

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lottery-sim/lottery-sim/sim"
)

func writeSpec(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workload.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSpec_ValidYAML_LoadsCorrectly(t *testing.T) {
	path := writeSpec(t, `
version: "1"
seed: 42
config:
  quantum: 3
  ticket_mode: manual
  pool: 30
processes:
  - id: 1
    burst: 4
    priority: 3
    tickets: 10
  - id: 2
    burst: 6
    priority: 1
    server: 1
    tickets: 6
random:
  count: 2
  burst_max: 5
`)
	spec, err := LoadSpec(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.Seed != 42 {
		t.Errorf("seed = %d, want 42", spec.Seed)
	}
	if spec.Config == nil || spec.Config.Quantum != 3 || spec.Config.TicketMode != sim.TicketsManual || spec.Config.Pool != 30 {
		t.Errorf("config = %+v, want quantum 3, manual, pool 30", spec.Config)
	}
	if len(spec.Processes) != 2 {
		t.Fatalf("processes = %d, want 2", len(spec.Processes))
	}
	if got := spec.Processes[1]; got.Server != 1 || got.Tickets != 6 {
		t.Errorf("processes[1] = %+v, want server 1, tickets 6", got)
	}
	if spec.Random == nil || spec.Random.Count != 2 || spec.Random.BurstMax != 5 {
		t.Errorf("random = %+v, want count 2, burst_max 5", spec.Random)
	}
	if err := spec.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadSpec_UnknownField_Rejected(t *testing.T) {
	path := writeSpec(t, `
processes:
  - id: 1
    burst: 4
    priorty: 3
`)
	_, err := LoadSpec(path)
	if err == nil {
		t.Fatal("expected error for misspelled field")
	}
	if !strings.Contains(err.Error(), "priorty") {
		t.Errorf("error %q should name the unknown field", err)
	}
}

func TestLoadSpec_MissingFile(t *testing.T) {
	if _, err := LoadSpec(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSpec_Validate_Errors(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		dup  bool
	}{
		{"empty", Spec{}, false},
		{"bad version", Spec{Version: "2", Processes: []ProcessSpec{{ID: 1, Burst: 1, Priority: 1}}}, false},
		{"bad config", Spec{Config: &sim.Config{Quantum: -1}, Processes: []ProcessSpec{{ID: 1, Burst: 1, Priority: 1}}}, false},
		{"zero id", Spec{Processes: []ProcessSpec{{ID: 0, Burst: 1, Priority: 1}}}, false},
		{"zero burst", Spec{Processes: []ProcessSpec{{ID: 1, Burst: 0, Priority: 1}}}, false},
		{"priority 6", Spec{Processes: []ProcessSpec{{ID: 1, Burst: 1, Priority: 6}}}, false},
		{"negative tickets", Spec{Processes: []ProcessSpec{{ID: 1, Burst: 1, Priority: 1, Tickets: -1}}}, false},
		{"server listed later", Spec{Processes: []ProcessSpec{
			{ID: 1, Burst: 1, Priority: 1, Server: 2},
			{ID: 2, Burst: 1, Priority: 1},
		}}, false},
		{"duplicate id", Spec{Processes: []ProcessSpec{
			{ID: 1, Burst: 1, Priority: 1},
			{ID: 1, Burst: 2, Priority: 2},
		}}, true},
		{"inverted burst range", Spec{Random: &RandomSpec{Count: 2, BurstMin: 8, BurstMax: 4}}, false},
		{"priority range above max", Spec{Random: &RandomSpec{Count: 2, PriorityMax: 9}}, false},
		{"negative count", Spec{Random: &RandomSpec{Count: -1}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if !errors.Is(err, sim.ErrConfiguration) {
				t.Fatalf("Validate() = %v, want ErrConfiguration", err)
			}
			if tt.dup && !errors.Is(err, sim.ErrDuplicateID) {
				t.Errorf("Validate() = %v, want ErrDuplicateID", err)
			}
		})
	}
}

func TestSpec_Validate_RandomOnly(t *testing.T) {
	spec := Spec{Random: &RandomSpec{Count: 5}}
	if err := spec.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSpec_SaveThenLoad_PreservesProcesses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := sim.Config{Quantum: 2, Speed: 4, TicketMode: sim.TicketsManual, Pool: 30}
	spec := &Spec{
		Seed:   7,
		Config: &cfg,
		Processes: []ProcessSpec{
			{ID: 1, Burst: 3, Priority: 2, Tickets: 12},
			{ID: 2, Burst: 5, Priority: 1, Server: 1, Tickets: 18},
		},
	}
	if err := spec.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := LoadSpec(path)
	if err != nil {
		t.Fatalf("LoadSpec: %v", err)
	}
	if loaded.Version != CurrentVersion {
		t.Errorf("version = %q, want %q", loaded.Version, CurrentVersion)
	}
	if loaded.SimConfig() != cfg {
		t.Errorf("config = %+v, want %+v", loaded.SimConfig(), cfg)
	}
	if len(loaded.Processes) != 2 || loaded.Processes[1] != spec.Processes[1] {
		t.Errorf("processes = %+v, want %+v", loaded.Processes, spec.Processes)
	}
}

func TestSpec_SimConfig_DefaultsWhenAbsent(t *testing.T) {
	if got := (&Spec{}).SimConfig(); got != sim.DefaultConfig() {
		t.Errorf("SimConfig() = %+v, want defaults", got)
	}
}

func TestSpec_SimConfig_OverlaysSetFields(t *testing.T) {
	spec := &Spec{Config: &sim.Config{Pool: 50}}
	got := spec.SimConfig()
	want := sim.DefaultConfig()
	want.Pool = 50
	if got != want {
		t.Errorf("SimConfig() = %+v, want %+v", got, want)
	}
}
