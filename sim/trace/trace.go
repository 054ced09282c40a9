package trace

// TraceLevel controls the verbosity of draw tracing.
type TraceLevel string

const (
	// TraceLevelNone keeps only the per-cycle history.
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDraws additionally retains every draw and transfer record.
	TraceLevelDraws TraceLevel = "draws"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:  true,
	TraceLevelDraws: true,
	"":              true, // empty defaults to draws
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
	RunID string // opaque identifier stamped on exports; never compared by replay tests
}

// SimulationTrace collects the history of a lottery scheduling run.
type SimulationTrace struct {
	Config    TraceConfig
	Cycles    []CycleRecord
	Draws     []DrawRecord
	Transfers []TransferRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config:    config,
		Cycles:    make([]CycleRecord, 0),
		Draws:     make([]DrawRecord, 0),
		Transfers: make([]TransferRecord, 0),
	}
}

func (st *SimulationTrace) keepDecisions() bool {
	return st.Config.Level != TraceLevelNone
}

// RecordCycle appends a per-cycle snapshot. Cycles are recorded at every level.
func (st *SimulationTrace) RecordCycle(record CycleRecord) {
	st.Cycles = append(st.Cycles, record)
}

// RecordDraw appends a draw record.
func (st *SimulationTrace) RecordDraw(record DrawRecord) {
	if !st.keepDecisions() {
		return
	}
	st.Draws = append(st.Draws, record)
}

// RecordTransfer appends a transfer record.
func (st *SimulationTrace) RecordTransfer(record TransferRecord) {
	if !st.keepDecisions() {
		return
	}
	st.Transfers = append(st.Transfers, record)
}

// Reset drops every recorded entry but keeps the configuration. Slices handed
// out before the reset keep their contents.
func (st *SimulationTrace) Reset() {
	st.Cycles = make([]CycleRecord, 0)
	st.Draws = make([]DrawRecord, 0)
	st.Transfers = make([]TransferRecord, 0)
}
