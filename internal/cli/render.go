package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/spchkit/ctcspike/pkg/latency"
)

// renderReport prints the run counters and the 18 percentile picks as
// terminal tables.
func renderReport(report latency.Report) {
	fmt.Println(text.FgCyan.Sprint("Utterance outcomes"))

	counters := table.NewWriter()
	counters.SetOutputMirror(os.Stdout)
	counters.SetStyle(table.StyleLight)
	counters.AppendHeader(table.Row{"Outcome", "Count"})
	counters.AppendRows([]table.Row{
		{"valid", report.Counts.Valid},
		{"not_found", report.Counts.NotFound},
		{"length_unequal", report.Counts.LengthUnequal},
		{"ignored", report.Counts.Ignored},
	})
	counters.AppendFooter(table.Row{"total", report.Counts.Total()})
	counters.Render()

	fmt.Println(text.FgCyan.Sprint("Delay percentiles"))

	picks := table.NewWriter()
	picks.SetOutputMirror(os.Stdout)
	picks.SetStyle(table.StyleLight)
	picks.AppendHeader(table.Row{"Metric", "Rank", "Delay", "Utterance"})
	for _, mp := range report.Metrics {
		for _, pick := range mp.Picks {
			picks.AppendRow(table.Row{
				mp.Metric, pick.Rank, formatMs(pick.Value), pick.Record.Key,
			})
		}
		picks.AppendSeparator()
	}
	picks.Render()
}

// formatMs renders a millisecond value the same way the run logs do.
func formatMs(ms float64) string {
	return fmt.Sprintf("%.3f ms", ms)
}

// manifestPick is one entry of the artifact manifest handed to the plotting
// collaborator.
type manifestPick struct {
	Metric   string  `json:"metric"`
	Rank     string  `json:"rank"`
	ValueMs  float64 `json:"value_ms"`
	Key      string  `json:"key"`
	Audio    string  `json:"audio,omitempty"`
	Artifact string  `json:"artifact"`
}

// manifest is the JSON document written to the result directory. It names
// one visualization artifact per (metric, rank) pair.
type manifest struct {
	Tag    string `json:"tag,omitempty"`
	Counts struct {
		NotFound      int `json:"not_found"`
		LengthUnequal int `json:"length_unequal"`
		Ignored       int `json:"ignored"`
		Valid         int `json:"valid"`
	} `json:"counts"`
	Picks []manifestPick `json:"picks"`
}

// writeManifest writes the artifact manifest into resultDir and returns its
// path.
func writeManifest(resultDir, tag string, report latency.Report) (string, error) {
	if err := os.MkdirAll(resultDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create result dir: %w", err)
	}

	var m manifest
	m.Tag = tag
	m.Counts.NotFound = report.Counts.NotFound
	m.Counts.LengthUnequal = report.Counts.LengthUnequal
	m.Counts.Ignored = report.Counts.Ignored
	m.Counts.Valid = report.Counts.Valid

	for _, mp := range report.Metrics {
		for _, pick := range mp.Picks {
			artifact := pick.ArtifactName(mp.Metric)
			if tag != "" {
				artifact = tag + "_" + artifact
			}
			m.Picks = append(m.Picks, manifestPick{
				Metric:   mp.Metric.String(),
				Rank:     pick.Rank,
				ValueMs:  pick.Value,
				Key:      pick.Record.Key,
				Audio:    pick.Record.AudioRef,
				Artifact: artifact,
			})
		}
	}

	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal manifest: %w", err)
	}

	path := filepath.Join(resultDir, "latency_report.json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}
	return path, nil
}
