package pipeline_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spchkit/ctcspike/internal/input"
	"github.com/spchkit/ctcspike/internal/pipeline"
	"github.com/spchkit/ctcspike/pkg/ctc"
	"github.com/spchkit/ctcspike/pkg/latency"
	"github.com/spchkit/ctcspike/pkg/streams"
)

// quietLogger returns a logger that swallows output, at debug level so the
// diagnostic paths run too.
func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	log.SetLevel(logrus.DebugLevel)
	return log
}

func testMatcher() *latency.Matcher {
	dict := ctc.NewDict(map[string]int{ctc.BlankSymbol: 0, "A": 1, "B": 2, "C": 3})
	return latency.NewMatcher(dict, 1)
}

// blankFrames builds an all-blank raw hypothesis with the given symbol
// placements.
func blankFrames(frameCount int, placements map[int]int) []ctc.FrameToken {
	frames := make([]ctc.FrameToken, frameCount)
	for i := range frames {
		frames[i] = ctc.FrameToken{ID: 0, Frame: i}
	}
	for frame, id := range placements {
		frames[frame].ID = id
	}
	return frames
}

// blankLine builds an all-blank reference line with the given symbol
// placements.
func blankLine(frameCount int, placements map[int]string) []string {
	tokens := make([]string, frameCount)
	for i := range tokens {
		tokens[i] = ctc.BlankSymbol
	}
	for frame, sym := range placements {
		tokens[frame] = sym
	}
	return tokens
}

// alignStream adapts a slice of alignments into the lazy stream form the
// pipeline consumes.
func alignStream(aligns ...input.Alignment) streams.Stream[input.Alignment] {
	ch := make(chan input.Alignment, len(aligns))
	for _, a := range aligns {
		ch <- a
	}
	close(ch)
	return streams.New(ch)
}

// TestRun_AllOutcomes drives one utterance through each outcome and checks
// the counters and collected records.
func TestRun_AllOutcomes(t *testing.T) {
	hypotheses := map[string]latency.Hypothesis{
		"utt-ok": {
			Key:    "utt-ok",
			Frames: blankFrames(11, map[int]int{0: 1, 5: 2, 10: 3}),
		},
		"utt-short": {
			Key:    "utt-short",
			Frames: blankFrames(11, map[int]int{0: 1, 5: 2}),
		},
		"utt-frames": {
			Key:    "utt-frames",
			Frames: blankFrames(5, map[int]int{0: 1}),
		},
	}

	threeSymbols := blankLine(11, map[int]string{0: "A", 5: "B", 10: "C"})
	alignments := alignStream(
		input.Alignment{Key: "utt-ok", Tokens: threeSymbols},
		input.Alignment{Key: "utt-short", Tokens: threeSymbols},
		input.Alignment{Key: "utt-frames", Tokens: blankLine(20, map[int]string{0: "A"})},
		input.Alignment{Key: "utt-missing", Tokens: threeSymbols},
	)

	result, err := pipeline.Run(context.Background(), quietLogger(), testMatcher(), hypotheses, alignments)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Counts.Valid)
	assert.Equal(t, 1, result.Counts.LengthUnequal)
	assert.Equal(t, 1, result.Counts.Ignored)
	assert.Equal(t, 1, result.Counts.NotFound)

	require.Len(t, result.Records, 1)
	assert.Equal(t, "utt-ok", result.Records[0].Key)
	assert.Equal(t, []int{0, 0, 0}, result.Records[0].Diffs)
}

// TestRun_RecordsKeepAlignmentOrder verifies that records come out in
// alignment-file order, the order percentile ties are broken by.
func TestRun_RecordsKeepAlignmentOrder(t *testing.T) {
	line := blankLine(11, map[int]string{0: "A", 5: "B", 10: "C"})
	frames := blankFrames(11, map[int]int{0: 1, 5: 2, 10: 3})

	hypotheses := map[string]latency.Hypothesis{
		"utt-z": {Key: "utt-z", Frames: frames},
		"utt-a": {Key: "utt-a", Frames: frames},
	}
	alignments := alignStream(
		input.Alignment{Key: "utt-z", Tokens: line},
		input.Alignment{Key: "utt-a", Tokens: line},
	)

	result, err := pipeline.Run(context.Background(), quietLogger(), testMatcher(), hypotheses, alignments)
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	assert.Equal(t, "utt-z", result.Records[0].Key)
	assert.Equal(t, "utt-a", result.Records[1].Key)
}

// TestRun_ContextCancellation verifies a run aborts between utterances.
func TestRun_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pipeline.Run(ctx, quietLogger(), testMatcher(), nil, alignStream())
	assert.ErrorIs(t, err, context.Canceled)
}

// TestRun_ReadError verifies an in-band reader error halts the run.
func TestRun_ReadError(t *testing.T) {
	readErr := errors.New("disk went away")
	alignments := alignStream(input.Alignment{Err: readErr})

	_, err := pipeline.Run(context.Background(), quietLogger(), testMatcher(), nil, alignments)
	assert.ErrorIs(t, err, readErr)
}

// TestAnalyze verifies the full engine path down to the report.
func TestAnalyze(t *testing.T) {
	line := blankLine(11, map[int]string{0: "A", 5: "B", 10: "C"})
	hypotheses := map[string]latency.Hypothesis{
		"utt-ok": {Key: "utt-ok", Frames: blankFrames(11, map[int]int{0: 1, 5: 2, 10: 3})},
	}
	alignments := alignStream(input.Alignment{Key: "utt-ok", Tokens: line})

	report, err := pipeline.Analyze(context.Background(), quietLogger(), testMatcher(), hypotheses, alignments)
	require.NoError(t, err)

	require.Len(t, report.Metrics, 3)
	for _, mp := range report.Metrics {
		require.Len(t, mp.Picks, 6)
		for _, pick := range mp.Picks {
			assert.Equal(t, "utt-ok", pick.Record.Key)
			assert.Zero(t, pick.Value)
		}
	}
}

// TestAnalyze_NoValidRecords verifies the empty-record-set precondition is
// escalated rather than defaulted.
func TestAnalyze_NoValidRecords(t *testing.T) {
	alignments := alignStream(
		input.Alignment{Key: "utt-missing", Tokens: blankLine(3, nil)},
	)

	_, err := pipeline.Analyze(context.Background(), quietLogger(), testMatcher(), nil, alignments)
	require.Error(t, err)
	assert.ErrorIs(t, err, latency.ErrNoRecords)
}
