package trace

import (
	"testing"
)

func TestSimulationTrace_RecordDraw_AppendsRecord(t *testing.T) {
	// GIVEN a trace configured for draws
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDraws})

	// WHEN a draw record is recorded
	st.RecordDraw(DrawRecord{
		Clock:    3,
		Ticket:   17,
		Total:    40,
		WinnerID: 2,
		Participants: []Participant{
			{ID: 1, Tickets: 10, Low: 0, High: 10},
			{ID: 2, Tickets: 30, Low: 10, High: 40},
		},
	})

	// THEN the trace contains one draw record with correct data
	if len(st.Draws) != 1 {
		t.Fatalf("expected 1 draw, got %d", len(st.Draws))
	}
	if st.Draws[0].WinnerID != 2 {
		t.Errorf("expected winner 2, got %d", st.Draws[0].WinnerID)
	}
	if st.Draws[0].ParticipantTickets() != 40 {
		t.Errorf("expected 40 participant tickets, got %d", st.Draws[0].ParticipantTickets())
	}
}

func TestSimulationTrace_LevelNone_KeepsOnlyCycles(t *testing.T) {
	// GIVEN a trace with decisions disabled
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelNone})

	// WHEN every kind of record is offered
	st.RecordDraw(DrawRecord{Ticket: 1, Total: 1, WinnerID: 1})
	st.RecordTransfer(TransferRecord{Kind: TransferLend, From: 2, To: 1, Amount: 10})
	st.RecordCycle(CycleRecord{Clock: 1, Event: EventRun, RunningID: 1})

	// THEN only the cycle history is retained
	if len(st.Draws) != 0 || len(st.Transfers) != 0 {
		t.Errorf("expected no draws or transfers, got %d/%d", len(st.Draws), len(st.Transfers))
	}
	if len(st.Cycles) != 1 {
		t.Errorf("expected 1 cycle, got %d", len(st.Cycles))
	}
}

func TestSimulationTrace_Reset_KeepsConfig(t *testing.T) {
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDraws, RunID: "run-1"})
	st.RecordCycle(CycleRecord{Clock: 1})
	st.RecordDraw(DrawRecord{Ticket: 1})

	st.Reset()

	if len(st.Cycles) != 0 || len(st.Draws) != 0 {
		t.Error("expected empty trace after reset")
	}
	if st.Config.RunID != "run-1" {
		t.Errorf("expected run id to survive reset, got %q", st.Config.RunID)
	}
}

func TestSimulationTrace_Reset_LeavesEarlierSlicesIntact(t *testing.T) {
	// GIVEN a caller holding the draws recorded before a reset
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDraws})
	st.RecordDraw(DrawRecord{Clock: 1, Ticket: 4})
	st.RecordCycle(CycleRecord{Clock: 1})
	st.RecordTransfer(TransferRecord{Clock: 1, Amount: 3})
	draws, cycles, transfers := st.Draws, st.Cycles, st.Transfers

	// WHEN the trace is reset and recording resumes
	st.Reset()
	st.RecordDraw(DrawRecord{Clock: 9, Ticket: 99})
	st.RecordCycle(CycleRecord{Clock: 9})
	st.RecordTransfer(TransferRecord{Clock: 9, Amount: 7})

	// THEN the earlier slices still hold the old records
	if draws[0].Ticket != 4 || cycles[0].Clock != 1 || transfers[0].Amount != 3 {
		t.Errorf("reset overwrote earlier records: %+v %+v %+v", draws[0], cycles[0], transfers[0])
	}
	if len(st.Draws) != 1 || st.Draws[0].Ticket != 99 {
		t.Errorf("draws after reset = %+v", st.Draws)
	}
}

func TestDrawRecord_Share(t *testing.T) {
	d := DrawRecord{Total: 7, PoolMode: true, Participants: []Participant{{ID: 1, Low: 0, High: 2}, {ID: 2, Low: 2, High: 7}}}
	if got := d.Share(d.Participants[1]); got != 5.0/7 {
		t.Errorf("Share = %v, want 5/7", got)
	}
	d.Uniform = true
	if got := d.Share(d.Participants[1]); got != 0.5 {
		t.Errorf("uniform Share = %v, want 0.5", got)
	}
}

func TestDrawRecord_Winner_FindsParticipant(t *testing.T) {
	d := DrawRecord{WinnerID: 3, Participants: []Participant{{ID: 1, Tickets: 5}, {ID: 3, Tickets: 7}}}

	w, ok := d.Winner()
	if !ok {
		t.Fatal("expected winner to be found")
	}
	if w.Tickets != 7 {
		t.Errorf("expected winner tickets 7, got %d", w.Tickets)
	}

	d.WinnerID = 9
	if _, ok := d.Winner(); ok {
		t.Error("expected missing winner to report false")
	}
}

func TestIsValidTraceLevel(t *testing.T) {
	tests := []struct {
		level string
		want  bool
	}{
		{"", true},
		{"none", true},
		{"draws", true},
		{"decisions", false},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if got := IsValidTraceLevel(tt.level); got != tt.want {
				t.Errorf("IsValidTraceLevel(%q) = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}
