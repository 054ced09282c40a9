package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"

	"github.com/lottery-sim/lottery-sim/sim"
	"github.com/lottery-sim/lottery-sim/sim/analysis"
	"github.com/lottery-sim/lottery-sim/sim/trace"
)

// fairnessAlpha is the significance level reported against the chi-square test.
const fairnessAlpha = 0.05

// printReport writes the per-process table, the draw table and, when explain
// is set, a narrative for every draw and the finishing order.
func printReport(w io.Writer, s *sim.Simulator, explain bool) {
	stats := s.Statistics()
	st := s.Trace()
	if stats == nil {
		_, _ = fmt.Fprintf(w, "No process completed in %d cycles.\n", s.Clock)
	} else {
		outputProcessTable(w, stats)
	}
	outputDrawTable(w, trace.Summarize(st), analysis.Fairness(st.Draws))

	if !explain {
		return
	}
	_, _ = fmt.Fprintln(w)
	for _, d := range st.Draws {
		a, err := analysis.AnalyzeDraw(d)
		if err != nil {
			logrus.Warnf("Skipping draw at cycle %d: %v", d.Clock, err)
			continue
		}
		_, _ = fmt.Fprintln(w, a.Render())
	}
	if order := analysis.AnalyzeFinishOrder(stats, st.Draws); order != nil {
		_, _ = fmt.Fprint(w, order.Render())
	}
}

func outputProcessTable(w io.Writer, stats *sim.Statistics) {
	rows := make([][]string, 0, len(stats.Terminated))
	for _, p := range stats.Terminated {
		server := "-"
		if p.ServerID != sim.NoServer {
			server = "P" + strconv.Itoa(p.ServerID)
		}
		rows = append(rows, []string{
			"P" + strconv.Itoa(p.ID),
			strconv.Itoa(p.Priority),
			strconv.Itoa(p.Burst),
			strconv.Itoa(p.OriginalTickets),
			server,
			fmt.Sprint(p.ArrivalTime),
			fmt.Sprint(p.FirstDispatch),
			fmt.Sprint(p.CompletionTime),
			strconv.Itoa(p.WaitTime),
			fmt.Sprint(p.Turnaround),
			fmt.Sprint(p.Response),
		})
	}

	_, _ = fmt.Fprintf(w, "Completed %d processes in %d cycles\n", stats.Completed, stats.TotalTime)
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Priority", "Burst", "Tickets", "Server", "Arrival", "First Run", "Exit", "Wait", "Turnaround", "Response"})
	table.AppendBulk(rows)
	table.SetFooter([]string{"", "", "", "", "", "", "", "",
		fmt.Sprintf("Average\n%.2f", stats.MeanWait),
		fmt.Sprintf("Average\n%.2f", stats.MeanTurnaround),
		fmt.Sprintf("Average\n%.2f", stats.MeanResponse)})
	table.Render()
}

func outputDrawTable(w io.Writer, summary *trace.TraceSummary, fairness *analysis.FairnessResult) {
	expected := make(map[int]float64, len(fairness.Rows))
	for _, row := range fairness.Rows {
		if row.Draws > 0 {
			expected[row.ID] = row.Expected / float64(row.Draws) * 100
		}
	}

	rows := make([][]string, 0, len(summary.PerProcess))
	for _, ps := range summary.SortedProcesses() {
		rows = append(rows, []string{
			"P" + strconv.Itoa(ps.ID),
			strconv.Itoa(ps.Participations),
			strconv.Itoa(ps.Wins),
			fmt.Sprintf("%.1f%%", ps.WinRate*100),
			fmt.Sprintf("%.1f%%", expected[ps.ID]),
			fmt.Sprintf("%.1f", ps.MeanTickets),
		})
	}

	_, _ = fmt.Fprintf(w, "\n%d draws (%d uniform), %d idle cycles, %d loans of %d tickets, %d restores\n",
		summary.TotalDraws, summary.UniformDraws, summary.IdleCycles,
		summary.LendCount, summary.TicketsLent, summary.RestoreCount)
	if len(rows) == 0 {
		return
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Draws", "Wins", "Win Rate", "Contested Share", "Mean Tickets"})
	table.AppendBulk(rows)
	table.Render()

	if fairness.DegreesOfFreedom == 0 {
		return
	}
	verdict := "consistent with"
	if !fairness.Consistent(fairnessAlpha) {
		verdict = "inconsistent with"
	}
	_, _ = fmt.Fprintf(w, "Chi-square %.3f over %d contested draws (df %d, p=%.4f): %s ticket shares at alpha %.2f\n",
		fairness.ChiSquare, fairness.Draws, fairness.DegreesOfFreedom, fairness.PValue, verdict, fairnessAlpha)
}

// liveLine is the one-line progress view printed by paced runs.
func liveLine(c trace.CycleRecord) string {
	line := fmt.Sprintf("[cycle %5d] %-8s", c.Clock, c.Event)
	if c.ExecutedID != 0 {
		line += fmt.Sprintf(" P%-3d", c.ExecutedID)
	} else {
		line += "     "
	}
	line += fmt.Sprintf(" ready %v done %d", c.ReadyIDs, c.Terminated)
	if c.Drew {
		line += fmt.Sprintf(" drew %d/%d", c.Ticket, c.Total)
	}
	return line
}

// historyLine is one JSON-lines history entry.
type historyLine struct {
	RunID string `json:"run_id"`
	trace.CycleRecord
}

// writeHistory dumps cycles to path as JSON lines tagged with runID.
func writeHistory(path, runID string, cycles []trace.CycleRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating history file: %w", err)
	}
	enc := json.NewEncoder(f)
	for _, c := range cycles {
		if err := enc.Encode(historyLine{RunID: runID, CycleRecord: c}); err != nil {
			_ = f.Close()
			return fmt.Errorf("encoding cycle %d: %w", c.Clock, err)
		}
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing history file: %w", err)
	}
	logrus.Infof("Wrote %d history entries to %s", len(cycles), path)
	return nil
}
