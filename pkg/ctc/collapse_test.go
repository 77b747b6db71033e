package ctc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spchkit/ctcspike/pkg/ctc"
)

// frames builds a FrameToken sequence from bare ids, one per frame.
func frames(ids ...int) []ctc.FrameToken {
	out := make([]ctc.FrameToken, len(ids))
	for i, id := range ids {
		out[i] = ctc.FrameToken{ID: id, Frame: i, Prob: 1.0}
	}
	return out
}

// ids extracts the token ids of a sequence for compact assertions.
func ids(tokens []ctc.FrameToken) []int {
	if len(tokens) == 0 {
		return nil
	}
	out := make([]int, len(tokens))
	for i, ft := range tokens {
		out[i] = ft.ID
	}
	return out
}

// TestCollapse verifies the greedy decoding rule across the interesting
// input shapes.
func TestCollapse(t *testing.T) {
	const blank = 0

	type testCase struct {
		name        string
		input       []ctc.FrameToken
		expectedIDs []int
	}

	testCases := []testCase{
		{
			name:        "Blanks Removed",
			input:       frames(0, 1, 0, 2, 0, 3, 0),
			expectedIDs: []int{1, 2, 3},
		},
		{
			name:        "Consecutive Duplicates Merged",
			input:       frames(1, 1, 1, 2, 2, 3),
			expectedIDs: []int{1, 2, 3},
		},
		{
			name: "Blank Separates Repeats",
			// A genuine double emission: the blank between the two runs of
			// 1 means both must survive.
			input:       frames(1, 1, 0, 1, 1),
			expectedIDs: []int{1, 1},
		},
		{
			name:        "All Blank Input",
			input:       frames(0, 0, 0, 0),
			expectedIDs: nil,
		},
		{
			name:        "Empty Input",
			input:       nil,
			expectedIDs: nil,
		},
		{
			name:        "Single Token",
			input:       frames(5),
			expectedIDs: []int{5},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			collapsed := ctc.Collapse(tc.input, blank)
			assert.Equal(t, tc.expectedIDs, ids(collapsed))
		})
	}
}

// TestCollapse_KeepsFirstFrame verifies that a merged run of duplicates
// retains the frame index of its first occurrence.
func TestCollapse_KeepsFirstFrame(t *testing.T) {
	input := frames(0, 0, 7, 7, 7, 0, 8, 8)
	collapsed := ctc.Collapse(input, 0)

	assert.Equal(t, []int{7, 8}, ids(collapsed))
	assert.Equal(t, 2, collapsed[0].Frame, "First emission of 7 is at frame 2.")
	assert.Equal(t, 6, collapsed[1].Frame, "First emission of 8 is at frame 6.")
}

// TestCollapse_Invariants checks the output guarantees on a mixed sequence:
// no blank entries, no adjacent duplicates, and idempotence on an already
// collapsed sequence.
func TestCollapse_Invariants(t *testing.T) {
	const blank = 0
	input := frames(0, 3, 3, 0, 3, 5, 5, 0, 0, 6, 5, 5, 0)

	collapsed := ctc.Collapse(input, blank)

	for i, ft := range collapsed {
		assert.NotEqual(t, blank, ft.ID, "No blank may survive collapsing.")
		if i > 0 {
			assert.NotEqual(t, collapsed[i-1].ID, ft.ID, "No adjacent duplicates may survive.")
		}
	}

	// Re-collapsing a blank-free collapsed sequence is a no-op.
	assert.Equal(t, collapsed, ctc.Collapse(collapsed, blank))
}
