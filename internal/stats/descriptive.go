// Package stats computes the analyses that run locally without the backend:
// descriptive statistics, correlations, distributions, outliers and
// categorical summaries.
package stats

import (
	"math"
	"sort"

	"github.com/datavue/datavue-cli/internal/dataset"
)

// Descriptive holds the summary statistics of one numeric column.
type Descriptive struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Q1     float64 `json:"q1"`
	Q3     float64 `json:"q3"`
	Std    float64 `json:"std"`
}

// Describe computes per-column descriptive statistics for the named numeric
// columns. Columns with no numeric values are omitted.
func Describe(rows []dataset.Row, numericColumns []string) map[string]Descriptive {
	out := make(map[string]Descriptive, len(numericColumns))
	for _, col := range numericColumns {
		nums := columnNumbers(rows, col)
		if len(nums) == 0 {
			continue
		}
		sorted := append([]float64(nil), nums...)
		sort.Float64s(sorted)

		out[col] = Descriptive{
			Count:  len(nums),
			Mean:   mean(nums),
			Median: median(sorted),
			Min:    sorted[0],
			Max:    sorted[len(sorted)-1],
			Q1:     sorted[int(float64(len(sorted))*0.25)],
			Q3:     sorted[int(float64(len(sorted))*0.75)],
			Std:    math.Sqrt(variance(nums)),
		}
	}
	return out
}

// CorrelationMatrix computes pairwise Pearson correlations between numeric
// columns. Only rows where both values are numeric enter a pair; columns with
// zero variance correlate 0 with everything.
func CorrelationMatrix(rows []dataset.Row, numericColumns []string) map[string]map[string]float64 {
	matrix := make(map[string]map[string]float64, len(numericColumns))
	for _, a := range numericColumns {
		matrix[a] = make(map[string]float64, len(numericColumns))
		for _, b := range numericColumns {
			if a == b {
				matrix[a][b] = 1
				continue
			}
			matrix[a][b] = pearson(rows, a, b)
		}
	}
	return matrix
}

func pearson(rows []dataset.Row, a, b string) float64 {
	var xs, ys []float64
	for _, row := range rows {
		x, okX := dataset.AsNumber(row[a])
		y, okY := dataset.AsNumber(row[b])
		if okX && okY {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	if len(xs) < 2 {
		return 0
	}
	mx, my := mean(xs), mean(ys)
	var cov, vx, vy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return 0
	}
	return cov / math.Sqrt(vx*vy)
}

// Histogram is a fixed-width binning of one numeric column.
type Histogram struct {
	BinEdges []float64 `json:"binEdges"`
	Counts   []int     `json:"counts"`
}

const histogramBins = 10

// Histograms bins each numeric column into 10 equal-width intervals. Values
// equal to the maximum land in the last bin.
func Histograms(rows []dataset.Row, numericColumns []string) map[string]Histogram {
	out := make(map[string]Histogram, len(numericColumns))
	for _, col := range numericColumns {
		nums := columnNumbers(rows, col)
		if len(nums) == 0 {
			continue
		}
		lo, hi := nums[0], nums[0]
		for _, f := range nums {
			if f < lo {
				lo = f
			}
			if f > hi {
				hi = f
			}
		}

		h := Histogram{
			BinEdges: make([]float64, histogramBins+1),
			Counts:   make([]int, histogramBins),
		}
		width := (hi - lo) / histogramBins
		for i := 0; i <= histogramBins; i++ {
			h.BinEdges[i] = lo + width*float64(i)
		}
		for _, f := range nums {
			bin := histogramBins - 1
			if width > 0 {
				bin = int((f - lo) / width)
				if bin >= histogramBins {
					bin = histogramBins - 1
				}
			}
			h.Counts[bin]++
		}
		out[col] = h
	}
	return out
}

// OutlierReport lists the values outside the 1.5×IQR fences of a column.
type OutlierReport struct {
	LowerBound float64        `json:"lowerBound"`
	UpperBound float64        `json:"upperBound"`
	Count      int            `json:"count"`
	Percentage float64        `json:"percentage"`
	Points     []OutlierPoint `json:"points"`
}

// OutlierPoint pins one outlying value to its row index.
type OutlierPoint struct {
	Index int     `json:"index"`
	Value float64 `json:"value"`
}

const outlierPointsKept = 10

// DetectOutliers flags values outside [Q1-1.5*IQR, Q3+1.5*IQR] per numeric
// column, keeping the first few offending points for display.
func DetectOutliers(rows []dataset.Row, numericColumns []string) map[string]OutlierReport {
	out := make(map[string]OutlierReport, len(numericColumns))
	for _, col := range numericColumns {
		nums := columnNumbers(rows, col)
		if len(nums) == 0 {
			continue
		}
		sorted := append([]float64(nil), nums...)
		sort.Float64s(sorted)
		q1 := sorted[int(float64(len(sorted))*0.25)]
		q3 := sorted[int(float64(len(sorted))*0.75)]
		iqr := q3 - q1

		rep := OutlierReport{
			LowerBound: q1 - 1.5*iqr,
			UpperBound: q3 + 1.5*iqr,
		}
		for i, row := range rows {
			f, ok := dataset.AsNumber(row[col])
			if !ok {
				continue
			}
			if f < rep.LowerBound || f > rep.UpperBound {
				rep.Count++
				if len(rep.Points) < outlierPointsKept {
					rep.Points = append(rep.Points, OutlierPoint{Index: i, Value: f})
				}
			}
		}
		rep.Percentage = float64(rep.Count) / float64(len(rows)) * 100
		out[col] = rep
	}
	return out
}

func columnNumbers(rows []dataset.Row, col string) []float64 {
	var nums []float64
	for _, row := range rows {
		if f, ok := dataset.AsNumber(row[col]); ok {
			nums = append(nums, f)
		}
	}
	return nums
}

func mean(nums []float64) float64 {
	var sum float64
	for _, f := range nums {
		sum += f
	}
	return sum / float64(len(nums))
}

// median expects sorted input. Even lengths average the two middle values.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// variance is the population variance.
func variance(nums []float64) float64 {
	m := mean(nums)
	var sq float64
	for _, f := range nums {
		sq += (f - m) * (f - m)
	}
	return sq / float64(len(nums))
}
