package latency

import (
	"errors"
	"sort"
)

// ErrNoRecords is returned when percentile selection is attempted over an
// empty record set. There is no meaningful default to fall back to, so the
// condition must reach the caller.
var ErrNoRecords = errors.New("no valid records to select from")

// Metric identifies one of the scalar delay summaries of a Record.
type Metric int

const (
	FirstTokenDelay Metric = iota
	LastTokenDelay
	AvgTokenDelay
)

// Metrics lists all delay metrics in reporting order.
var Metrics = []Metric{FirstTokenDelay, LastTokenDelay, AvgTokenDelay}

// String implements fmt.Stringer with the names used in report headers and
// artifact file names.
func (m Metric) String() string {
	switch m {
	case FirstTokenDelay:
		return "FirstTokenDelay"
	case LastTokenDelay:
		return "LastTokenDelay"
	case AvgTokenDelay:
		return "AvgTokenDelay"
	default:
		return "unknown"
	}
}

// Of extracts this metric's value from a record, in milliseconds.
//
// The accessor is an explicit method rather than a stored closure so that
// multi-metric loops cannot accidentally capture a loop variable.
func (m Metric) Of(r Record) float64 {
	switch m {
	case FirstTokenDelay:
		return float64(r.FirstTokenDelay)
	case LastTokenDelay:
		return float64(r.LastTokenDelay)
	case AvgTokenDelay:
		return r.AvgTokenDelay
	default:
		return 0
	}
}

// RankLabels lists the percentile ranks at which representative utterances
// are picked, in reporting order.
var RankLabels = []string{"max", "P90", "P75", "P50", "P25", "min"}

// rankIndex computes the sorted-slice index for a rank label given n
// records. The indices use floor truncation, not interpolation, so for
// small n several labels can land on the same record. That duplication is
// part of the contract, downstream consumers key artifacts off it.
func rankIndex(label string, n int) int {
	switch label {
	case "max":
		return n - 1
	case "P90":
		return int(float64(n) * 0.90)
	case "P75":
		return int(float64(n) * 0.75)
	case "P50":
		return int(float64(n) * 0.50)
	case "P25":
		return int(float64(n) * 0.25)
	default: // min
		return 0
	}
}

// Pick is one representative utterance: the record found at a percentile
// rank of one metric, along with that metric's value for it.
type Pick struct {
	Rank   string
	Value  float64
	Record Record
}

// Select sorts records ascending by the given metric and picks the
// representative record at each percentile rank.
//
// The sort is stable, ties keep their input order, so results are
// deterministic for equal metric values. The input slice is not modified.
func Select(records []Record, metric Metric) ([]Pick, error) {
	n := len(records)
	if n == 0 {
		return nil, ErrNoRecords
	}

	sorted := make([]Record, n)
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return metric.Of(sorted[i]) < metric.Of(sorted[j])
	})

	picks := make([]Pick, 0, len(RankLabels))
	for _, label := range RankLabels {
		// The P90 formula can collide with the max index at small n, e.g.
		// n=10 gives floor(9.0)=9. Duplicate picks across labels are
		// expected and kept.
		idx := rankIndex(label, n)
		picks = append(picks, Pick{
			Rank:   label,
			Value:  metric.Of(sorted[idx]),
			Record: sorted[idx],
		})
	}
	return picks, nil
}
