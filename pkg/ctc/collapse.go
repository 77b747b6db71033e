// Package ctc provides the greedy-decoding primitives for frame-synchronous
// CTC model output: the per-frame token representation, blank/duplicate
// collapsing, and the symbol dictionary used to render token ids.
package ctc

// FrameToken is one frame of argmax-reduced model output: the winning token
// id, the frame index it was emitted at, and its probability.
//
// On the reference side the probability is unused and left at 1.0.
type FrameToken struct {
	ID    int
	Frame int
	Prob  float64
}

// Collapse reduces a raw per-frame token sequence to its compact symbol
// sequence: blank frames are dropped, and consecutive repeats of the same
// non-blank id are merged into a single token keeping the first occurrence's
// frame index.
//
// This is the greedy CTC decoding rule. It assumes the caller has already
// argmax-reduced each frame and masked padded frames to blankID. The scan is
// a single left-to-right pass; malformed input degrades to a short or empty
// output rather than an error.
func Collapse(frames []FrameToken, blankID int) []FrameToken {
	// The blank check runs before the duplicate check, so blankID doubles as
	// a safe initial value for prev.
	prev := blankID

	var out []FrameToken
	for _, ft := range frames {
		if ft.ID == blankID {
			prev = blankID
			continue
		}
		if ft.ID == prev {
			// Continuation of the previous emission.
			continue
		}
		out = append(out, ft)
		prev = ft.ID
	}
	return out
}
