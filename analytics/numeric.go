package analytics

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

const histogramBuckets = 10

// MaxMagnitude bounds the numeric answers that are aggregated. Larger
// values are skipped, so sums and bucket widths stay finite.
const MaxMagnitude = 1e15

// Aggregatable reports whether v takes part in numeric stats.
func Aggregatable(v float64) bool {
	return !math.IsNaN(v) && math.Abs(v) <= MaxMagnitude
}

type NumericStats struct {
	Count     int            `json:"count"`
	Sum       float64        `json:"sum"`
	Mean      float64        `json:"mean"`
	Min       float64        `json:"min"`
	Max       float64        `json:"max"`
	Histogram []HistogramBin `json:"histogram"`
}

type HistogramBin struct {
	Bin   string `json:"bin"`
	Count int    `json:"count"`
}

// SummarizeNumbers computes the descriptive stats and histogram of one
// numeric field. Values failing Aggregatable are ignored. An empty input
// yields zeros and an empty histogram.
func SummarizeNumbers(values []float64) NumericStats {
	values = aggregatable(values)
	if len(values) == 0 {
		return NumericStats{Histogram: []HistogramBin{}}
	}

	data := stats.Float64Data(values)
	// errors are only returned for empty input
	sum, _ := data.Sum()
	mean, _ := data.Mean()
	lo, _ := data.Min()
	hi, _ := data.Max()

	return NumericStats{
		Count:     len(values),
		Sum:       sum,
		Mean:      mean,
		Min:       lo,
		Max:       hi,
		Histogram: Histogram(values, lo, hi),
	}
}

// Histogram splits [lo, hi] into ten equal-width buckets. Every bucket is
// half-open except the last, which also holds hi. When lo equals hi a
// single bucket holds every value.
func Histogram(values []float64, lo, hi float64) []HistogramBin {
	if len(values) == 0 {
		return []HistogramBin{}
	}
	if lo == hi {
		return []HistogramBin{{Bin: fmt.Sprintf("%.2f", lo), Count: len(values)}}
	}

	width := (hi - lo) / histogramBuckets
	if math.IsInf(width, 0) {
		width = hi/histogramBuckets - lo/histogramBuckets
	}

	last := histogramBuckets - 1
	bins := make([]HistogramBin, histogramBuckets)
	for i := range bins {
		upper := lo + float64(i+1)*width
		if i == last {
			upper = hi
		}
		bins[i].Bin = fmt.Sprintf("%.2f-%.2f", lo+float64(i)*width, upper)
	}

	for _, v := range values {
		bins[bucketOf(v, lo, width, last)].Count++
	}
	return bins
}

// bucketOf clamps to [0, last], so hi and any rounding overshoot land in
// the last bucket.
func bucketOf(v, lo, width float64, last int) int {
	pos := (v - lo) / width
	if math.IsInf(pos, 0) {
		pos = v/width - lo/width
	}
	switch {
	case !(pos < float64(last)):
		return last
	case pos < 0:
		return 0
	default:
		return int(pos)
	}
}

func aggregatable(values []float64) []float64 {
	for i, v := range values {
		if Aggregatable(v) {
			continue
		}
		kept := append([]float64(nil), values[:i]...)
		for _, v := range values[i+1:] {
			if Aggregatable(v) {
				kept = append(kept, v)
			}
		}
		return kept
	}
	return values
}
