package input

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spchkit/ctcspike/pkg/streams"
)

// Alignment is one line of the forced-alignment file: an utterance key and
// one token per native frame, blanks included.
type Alignment struct {
	Key    string
	Tokens []string
	// Err is set on the final item when reading failed mid-file.
	Err error
}

// ReadAlignments opens a forced-alignment file ("key tok tok ..." per line)
// and returns a lazy stream over its entries plus a close function.
//
// The stream keeps only one line in memory at a time, so the alignment pass
// never materializes the whole file. A read error is delivered in-band as
// the last item's Err field, mirroring how line order matters downstream:
// records are collected in alignment-file order.
func ReadAlignments(path string) (streams.Stream[Alignment], func() error, error) {
	file, err := os.Open(path)
	if err != nil {
		return streams.Stream[Alignment]{}, nil, fmt.Errorf("failed to open alignment file: %w", err)
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)

	done := false
	stream := streams.FromFunc(func() (Alignment, bool) {
		if done {
			return Alignment{}, false
		}
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			return parseAlignmentLine(line), true
		}
		done = true
		if err := scanner.Err(); err != nil && err != io.EOF {
			return Alignment{Err: fmt.Errorf("failed to read alignment file: %w", err)}, true
		}
		return Alignment{}, false
	})

	return stream, file.Close, nil
}

// parseAlignmentLine splits "key tok tok tok ..." into its parts. A line
// with a key but no tokens is legal and yields an empty token sequence,
// which the matcher later counts as a length mismatch.
func parseAlignmentLine(line string) Alignment {
	fields := strings.Fields(line)
	return Alignment{Key: fields[0], Tokens: fields[1:]}
}
