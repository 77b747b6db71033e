package latency

import (
	"fmt"
)

// MetricPicks holds the six percentile picks of one delay metric.
type MetricPicks struct {
	Metric Metric
	Picks  []Pick
}

// Report is the consumer-facing result of a run: the per-run counters and
// one set of percentile picks per delay metric, 18 picks in total.
type Report struct {
	Counts  Counts
	Metrics []MetricPicks
}

// BuildReport runs percentile selection for every delay metric.
//
// An empty record set fails the whole report: with zero valid utterances
// there is nothing to default to, and the skip counters (inside Counts) are
// the place to look for why.
func BuildReport(records []Record, counts Counts) (Report, error) {
	report := Report{Counts: counts, Metrics: make([]MetricPicks, 0, len(Metrics))}
	for _, metric := range Metrics {
		picks, err := Select(records, metric)
		if err != nil {
			return Report{}, fmt.Errorf("selection failed for %s: %w", metric, err)
		}
		report.Metrics = append(report.Metrics, MetricPicks{Metric: metric, Picks: picks})
	}
	return report, nil
}

// ArtifactName is the file stem under which the rendering consumer saves
// the visualization of one pick, e.g. "BAC009S0768W0342_LastTokenDelay_P90_120ms".
func (p Pick) ArtifactName(metric Metric) string {
	return fmt.Sprintf("%s_%s_%s_%gms", p.Record.Key, metric, p.Rank, p.Value)
}
