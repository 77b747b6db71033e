// Package pipeline orchestrates a full analysis run: pass one loads the
// key-indexed hypothesis table, pass two streams the alignment file through
// the matcher and collects records and skip counters.
package pipeline

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/texttheater/golang-levenshtein/levenshtein"

	"github.com/spchkit/ctcspike/internal/input"
	"github.com/spchkit/ctcspike/pkg/ctc"
	"github.com/spchkit/ctcspike/pkg/latency"
	"github.com/spchkit/ctcspike/pkg/streams"
)

// progressEvery is the utterance interval between progress log lines.
const progressEvery = 100

// Result is the outcome of the alignment pass: the valid records in
// alignment-file order, and the per-outcome counters.
type Result struct {
	Records []latency.Record
	Counts  latency.Counts
}

// Run executes the alignment pass.
//
// Each alignment entry independently yields either a record or a counted
// skip; nothing per-utterance is fatal. The context is honored between
// utterances so a long run can be interrupted cleanly.
func Run(
	ctx context.Context,
	log *logrus.Logger,
	matcher *latency.Matcher,
	hypotheses map[string]latency.Hypothesis,
	alignments streams.Stream[input.Alignment],
) (Result, error) {
	var result Result

	processed := 0
	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		align, ok := alignments.Next()
		if !ok {
			break
		}
		if align.Err != nil {
			return Result{}, align.Err
		}

		hyp, found := hypotheses[align.Key]
		if !found {
			result.Counts.Observe(latency.SkipNotFound)
			log.WithField("key", align.Key).Debug("no hypothesis for alignment key")
			continue
		}

		record, reason := matcher.Match(hyp, align.Tokens)
		result.Counts.Observe(reason)
		switch reason {
		case latency.SkipNone:
			result.Records = append(result.Records, record)
		case latency.SkipLengthMismatch:
			logLengthMismatch(log, matcher, hyp, align.Tokens)
		case latency.SkipFrameCountMismatch:
			log.WithField("key", align.Key).Debug("frame count mismatch, utterance ignored")
		}

		if processed++; processed%progressEvery == 0 {
			log.WithField("processed", processed).Info("processing alignments")
		}
	}

	log.WithFields(logrus.Fields{
		"not_found":      result.Counts.NotFound,
		"length_unequal": result.Counts.LengthUnequal,
		"ignored":        result.Counts.Ignored,
		"valid":          result.Counts.Valid,
	}).Info("alignment pass complete")

	return result, nil
}

// logLengthMismatch logs a length-mismatch skip with the rune-level edit
// distance between the two texts. A small distance points at a stray or
// dropped symbol; a large one at a transcription problem upstream.
func logLengthMismatch(log *logrus.Logger, matcher *latency.Matcher, hyp latency.Hypothesis, refTokens []string) {
	if !log.IsLevelEnabled(logrus.DebugLevel) {
		return
	}

	collapsed := ctc.Collapse(hyp.Frames, matcher.Dict.BlankID())
	hypText := matcher.Dict.Render(collapsed)

	var refText string
	for _, token := range refTokens {
		if token != matcher.BlankSymbol {
			refText += token
		}
	}

	dist := levenshtein.DistanceForStrings([]rune(refText), []rune(hypText), levenshtein.DefaultOptions)
	log.WithFields(logrus.Fields{
		"key":           hyp.Key,
		"ref_symbols":   len([]rune(refText)),
		"hyp_symbols":   len(collapsed),
		"edit_distance": dist,
	}).Debug("symbol count mismatch, utterance skipped")
}

// Analyze is the full engine entry point: it runs the alignment pass and
// summarizes the surviving records at every metric and percentile rank.
func Analyze(
	ctx context.Context,
	log *logrus.Logger,
	matcher *latency.Matcher,
	hypotheses map[string]latency.Hypothesis,
	alignments streams.Stream[input.Alignment],
) (latency.Report, error) {
	result, err := Run(ctx, log, matcher, hypotheses, alignments)
	if err != nil {
		return latency.Report{}, err
	}

	report, err := latency.BuildReport(result.Records, result.Counts)
	if err != nil {
		return latency.Report{}, fmt.Errorf("no usable utterances in this run: %w", err)
	}
	return report, nil
}
