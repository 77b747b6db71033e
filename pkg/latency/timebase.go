// Package latency turns pairs of token streams — greedy CTC output from a
// streaming model and a forced-alignment ground truth — into per-utterance
// delay records, and summarizes those records at fixed percentile ranks.
package latency

// FrameShiftMs is the frame shift of the acoustic front end, in
// milliseconds. Reference alignments are expressed at this resolution.
const FrameShiftMs = 10

// FrameToMs converts a frame index to a millisecond timestamp, undoing the
// encoder's temporal subsampling.
//
// Hypothesis-side indices are in subsampled encoder frames; reference-side
// indices are already at native resolution, so callers pass subsampling 1
// for them.
func FrameToMs(frame, subsampling, frameShiftMs int) int {
	return frame * subsampling * frameShiftMs
}
