package analysis

import (
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/lottery-sim/lottery-sim/sim/trace"
)

// FairnessRow compares one process's observed wins with the wins its ticket
// shares predict.
type FairnessRow struct {
	ID       int
	Draws    int     // contested draws the process took part in
	Observed int     // draws won
	Expected float64 // sum of the process's win probability over those draws
}

// FairnessResult is a chi-square goodness-of-fit test of observed wins against
// ticket-proportional expectations.
type FairnessResult struct {
	Draws            int // contested draws considered
	Rows             []FairnessRow
	ChiSquare        float64
	DegreesOfFreedom int
	// PValue is the probability of a deviation at least this large if draws
	// are proportional to tickets. 1 when there is nothing to test.
	PValue float64
}

// Fairness tests whether the winners of draws are consistent with ticket shares.
// Draws with a single participant are skipped: they carry no information.
// Uniform fallback draws count every participant as equally likely.
func Fairness(draws []trace.DrawRecord) *FairnessResult {
	rows := make(map[int]*FairnessRow)
	result := &FairnessResult{PValue: 1}

	for _, d := range draws {
		if len(d.Participants) < 2 || d.Total <= 0 {
			continue
		}
		result.Draws++
		for _, p := range d.Participants {
			row, ok := rows[p.ID]
			if !ok {
				row = &FairnessRow{ID: p.ID}
				rows[p.ID] = row
			}
			row.Draws++
			row.Expected += d.Share(p)
			if p.ID == d.WinnerID {
				row.Observed++
			}
		}
	}

	ids := make([]int, 0, len(rows))
	for id := range rows {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var obs, exp []float64
	for _, id := range ids {
		row := rows[id]
		result.Rows = append(result.Rows, *row)
		if row.Expected > 0 {
			obs = append(obs, float64(row.Observed))
			exp = append(exp, row.Expected)
		}
	}

	if len(obs) < 2 {
		return result
	}
	result.ChiSquare = stat.ChiSquare(obs, exp)
	result.DegreesOfFreedom = len(obs) - 1
	result.PValue = distuv.ChiSquared{K: float64(result.DegreesOfFreedom)}.Survival(result.ChiSquare)
	return result
}

// Consistent reports whether the test fails to reject proportional fairness
// at significance level alpha.
func (r *FairnessResult) Consistent(alpha float64) bool {
	return r.PValue >= alpha
}
