// Package timeseries computes lag and rolling-window aggregates of quantity
// sold for the offline training pipeline. The serving path has no history
// and never calls into this package; it zero-fills instead.
package timeseries

import (
	"fmt"
	"math"
	"sort"

	"github.com/retailops/quantclass/internal/featureschema"
)

// Observation is one transaction's contribution to its group history.
// Group is the hashed item x branch bucket; grouping on the hash, not the
// raw identifiers, keeps the history aligned with what the model sees.
type Observation struct {
	Group    int
	Year     int
	Month    int
	Day      int
	Quantity float64
	// Index is the caller's row position, carried through so surviving
	// feature rows can be joined back to their source transactions.
	Index int
}

// RowFeatures holds the 13 time-series values for one surviving row, keyed
// by feature column name.
type RowFeatures struct {
	Index  int
	Values map[string]float64
}

// Generator produces lag and trailing-window features per group. Rows
// whose group has not yet accumulated enough prior observations are
// dropped entirely; the model never trains on partially populated history.
type Generator struct {
	lags    []int
	windows []int
	need    int
}

// NewGenerator builds a generator for the contract lag/window configuration.
func NewGenerator() *Generator {
	return newGenerator(featureschema.Lags, featureschema.RollingWindows)
}

func newGenerator(lags, windows []int) *Generator {
	need := 0
	for _, k := range lags {
		if k > need {
			need = k
		}
	}
	for _, w := range windows {
		if w > need {
			need = w
		}
	}
	return &Generator{lags: lags, windows: windows, need: need}
}

// Generate sorts the observations ascending by (group, year, month, day)
// with ties broken by input order, then emits features for every row with a
// complete history. Feature values only ever come from rows strictly before
// the current one within its group, so a row's own quantity never leaks
// into its own features.
func (g *Generator) Generate(obs []Observation) []RowFeatures {
	sorted := append([]Observation(nil), obs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Group != b.Group {
			return a.Group < b.Group
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Month != b.Month {
			return a.Month < b.Month
		}
		return a.Day < b.Day
	})

	history := map[int][]float64{}
	out := make([]RowFeatures, 0, len(sorted))
	for _, o := range sorted {
		prior := history[o.Group]
		if len(prior) >= g.need {
			out = append(out, RowFeatures{Index: o.Index, Values: g.rowValues(prior)})
		}
		history[o.Group] = append(prior, o.Quantity)
	}
	return out
}

func (g *Generator) rowValues(prior []float64) map[string]float64 {
	values := make(map[string]float64, len(g.lags)+2*len(g.windows))
	n := len(prior)
	for _, k := range g.lags {
		values[fmt.Sprintf("qty_lag_%d", k)] = prior[n-k]
	}
	for _, w := range g.windows {
		window := prior[n-w:]
		mean, std := meanStd(window)
		values[fmt.Sprintf("qty_roll_mean_%d", w)] = mean
		values[fmt.Sprintf("qty_roll_std_%d", w)] = std
	}
	return values
}

// meanStd returns the mean and sample standard deviation (n-1 denominator)
// of a window.
func meanStd(window []float64) (float64, float64) {
	n := float64(len(window))
	sum := 0.0
	for _, v := range window {
		sum += v
	}
	mean := sum / n

	if len(window) < 2 {
		return mean, 0
	}
	ss := 0.0
	for _, v := range window {
		d := v - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / (n - 1))
}
