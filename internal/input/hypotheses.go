// Package input reads the run inputs produced by the external
// collaborators: the per-frame hypothesis dump of the streaming model, the
// forced-alignment file, and the model configuration.
package input

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spchkit/ctcspike/pkg/ctc"
	"github.com/spchkit/ctcspike/pkg/latency"
)

// hypothesisLine is the wire form of one utterance in the hypothesis dump:
// JSON lines with parallel per-frame token and probability arrays, already
// argmax-reduced and pad-masked by the inference side.
type hypothesisLine struct {
	Key    string    `json:"key"`
	Audio  string    `json:"audio"`
	Tokens []int     `json:"tokens"`
	Probs  []float64 `json:"probs"`
}

// ReadHypotheses loads a hypothesis dump into a key-indexed table.
//
// The table is built fully before the alignment pass starts; it is the
// first of the pipeline's two passes. A probs array shorter than tokens is
// padded with zeros rather than rejected, truncated frames carry no useful
// probability anyway.
func ReadHypotheses(path string) (map[string]latency.Hypothesis, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open hypothesis file: %w", err)
	}
	defer func() { _ = file.Close() }()

	table := make(map[string]latency.Hypothesis)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)

	for lineNum := 1; scanner.Scan(); lineNum++ {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var line hypothesisLine
		if err := json.Unmarshal(raw, &line); err != nil {
			return nil, fmt.Errorf("malformed hypothesis on line %d: %w", lineNum, err)
		}
		if line.Key == "" {
			return nil, fmt.Errorf("missing key on hypothesis line %d", lineNum)
		}

		frames := make([]ctc.FrameToken, len(line.Tokens))
		for i, id := range line.Tokens {
			var prob float64
			if i < len(line.Probs) {
				prob = line.Probs[i]
			}
			frames[i] = ctc.FrameToken{ID: id, Frame: i, Prob: prob}
		}

		table[line.Key] = latency.Hypothesis{
			Key:      line.Key,
			Frames:   frames,
			AudioRef: line.Audio,
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read hypothesis file: %w", err)
	}

	return table, nil
}
