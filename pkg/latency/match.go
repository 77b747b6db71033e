package latency

import (
	"github.com/spchkit/ctcspike/pkg/ctc"
)

// DefaultFrameTolerance is the exclusive bound on the disagreement between
// the reference frame count and the hypothesis's estimated frame span. A
// difference of this many native frames or more marks the utterance as a
// segmentation error rather than a latency artifact, and it is skipped.
//
// The value (7 frames, i.e. 70 ms at a 10 ms shift) is a calibration
// constant inherited from the corpus this tool was tuned on.
const DefaultFrameTolerance = 7

// SkipReason categorizes why an utterance was excluded from the statistics.
type SkipReason int

const (
	// SkipNone means the utterance produced a valid Record.
	SkipNone SkipReason = iota
	// SkipNotFound means the alignment key has no hypothesis.
	SkipNotFound
	// SkipFrameCountMismatch means the estimated frame spans disagree
	// beyond the tolerance.
	SkipFrameCountMismatch
	// SkipLengthMismatch means the collapsed symbol counts differ, so
	// positional pairing is undefined.
	SkipLengthMismatch
)

// String implements fmt.Stringer with the counter names used in run logs.
func (r SkipReason) String() string {
	switch r {
	case SkipNone:
		return "valid"
	case SkipNotFound:
		return "not_found"
	case SkipFrameCountMismatch:
		return "ignored"
	case SkipLengthMismatch:
		return "length_unequal"
	default:
		return "unknown"
	}
}

// Counts tracks per-run utterance outcomes. The skip counters are the
// primary data-quality signal of a run: malformed inputs never error out of
// the matcher, they surface here.
type Counts struct {
	NotFound      int
	LengthUnequal int
	Ignored       int
	Valid         int
}

// Observe increments the counter for the given outcome.
func (c *Counts) Observe(r SkipReason) {
	switch r {
	case SkipNone:
		c.Valid++
	case SkipNotFound:
		c.NotFound++
	case SkipFrameCountMismatch:
		c.Ignored++
	case SkipLengthMismatch:
		c.LengthUnequal++
	}
}

// Total reports the number of observed utterances across all outcomes.
func (c *Counts) Total() int {
	return c.NotFound + c.LengthUnequal + c.Ignored + c.Valid
}

// Hypothesis is the raw model output for one utterance: the per-frame
// argmax tokens (already pad-masked to blank by the inference collaborator)
// and an identifier of the source waveform.
type Hypothesis struct {
	Key      string
	Frames   []ctc.FrameToken
	AudioRef string
}

// Record is the latency measurement of one accepted utterance. It is
// immutable once built and shared read-only with the selector and any
// rendering consumers.
type Record struct {
	Key            string
	ReferenceText  string
	HypothesisText string

	// Diffs holds hypothesis minus reference timestamp per aligned symbol,
	// in milliseconds. Its length always equals the collapsed symbol count
	// of both sides.
	Diffs []int

	FirstTokenDelay int
	LastTokenDelay  int
	AvgTokenDelay   float64

	// Hypothesis is the collapsed hypothesis sequence, kept for the
	// spike-plot consumer.
	Hypothesis []ctc.FrameToken
	AudioRef   string

	// ReferenceTokens is the full reference token line, blanks included,
	// kept for the alignment-plot consumer.
	ReferenceTokens []string
}

// Matcher pairs collapsed hypotheses against reference alignments for one
// run. Fields may be tuned after construction but not once matching starts.
type Matcher struct {
	Dict        *ctc.Dict
	Subsampling int

	FrameShiftMs   int
	FrameTolerance int

	// BlankSymbol is the spelling of the blank marker in reference lines.
	BlankSymbol string
}

// NewMatcher returns a Matcher with the standard frame shift, tolerance and
// blank spelling.
func NewMatcher(dict *ctc.Dict, subsampling int) *Matcher {
	return &Matcher{
		Dict:           dict,
		Subsampling:    subsampling,
		FrameShiftMs:   FrameShiftMs,
		FrameTolerance: DefaultFrameTolerance,
		BlankSymbol:    ctc.BlankSymbol,
	}
}

// Match measures one utterance against its reference alignment.
//
// It either produces a Record or a SkipReason, never both: the returned
// Record is meaningful only when the reason is SkipNone. Skips are expected,
// non-fatal outcomes that the caller counts and moves past.
func (m *Matcher) Match(hyp Hypothesis, refTokens []string) (Record, SkipReason) {
	// Reference timing: one token per native frame, blanks carry no symbol.
	var refText string
	var refTs []int
	for i, token := range refTokens {
		if token == m.BlankSymbol {
			continue
		}
		refText += token
		refTs = append(refTs, FrameToMs(i, 1, m.FrameShiftMs))
	}

	// A large disagreement between the reference line length and the
	// hypothesis's estimated native frame span indicates a segmentation
	// error, not a timing artifact worth measuring. The span estimate uses
	// the raw (pre-collapse) frame count, one entry per encoder frame.
	framesRef := len(refTokens)
	framesHyp := len(hyp.Frames) * m.Subsampling
	if abs(framesHyp-framesRef) >= m.FrameTolerance {
		return Record{}, SkipFrameCountMismatch
	}

	collapsed := ctc.Collapse(hyp.Frames, m.Dict.BlankID())

	// Hypothesis timing: collapsed indices are in subsampled encoder frames.
	hypTs := make([]int, len(collapsed))
	for i, ft := range collapsed {
		hypTs[i] = FrameToMs(ft.Frame, m.Subsampling, m.FrameShiftMs)
	}

	// Pairing is positional, so it is undefined for unequal counts. No
	// partial or approximate alignment is attempted. Two empty sides are
	// degenerate in the same way, so they land in the same bucket.
	if len(hypTs) != len(refTs) || len(hypTs) == 0 {
		return Record{}, SkipLengthMismatch
	}

	diffs := make([]int, len(hypTs))
	var sum int
	for i := range hypTs {
		diffs[i] = hypTs[i] - refTs[i]
		sum += diffs[i]
	}

	return Record{
		Key:             hyp.Key,
		ReferenceText:   refText,
		HypothesisText:  m.Dict.Render(collapsed),
		Diffs:           diffs,
		FirstTokenDelay: diffs[0],
		LastTokenDelay:  diffs[len(diffs)-1],
		AvgTokenDelay:   float64(sum) / float64(len(diffs)),
		Hypothesis:      collapsed,
		AudioRef:        hyp.AudioRef,
		ReferenceTokens: refTokens,
	}, SkipNone
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
