package ctc

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// BlankSymbol is the conventional spelling of the blank token in dictionary
// and alignment files.
const BlankSymbol = "<blank>"

// Dict is the bidirectional token-id <-> symbol mapping for a run.
//
// It is built once at startup and read-only afterwards, so it is safe to
// share across any parallel utterance processing. It is always passed
// explicitly, never held as package state.
type Dict struct {
	idToSym map[int]string
	symToID map[string]int
}

// NewDict builds a Dict from a symbol -> id mapping.
func NewDict(symbols map[string]int) *Dict {
	d := &Dict{
		idToSym: make(map[int]string, len(symbols)),
		symToID: make(map[string]int, len(symbols)),
	}
	for sym, id := range symbols {
		d.symToID[sym] = id
		d.idToSym[id] = sym
	}
	return d
}

// LoadDict reads a dictionary file with one "symbol id" pair per line, the
// format used by kaldi/wenet symbol tables. Blank lines are ignored.
func LoadDict(path string) (*Dict, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dict file: %w", err)
	}
	defer func() { _ = file.Close() }()

	symbols := make(map[string]int)
	scanner := bufio.NewScanner(file)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("malformed dict line %d: %q", lineNum, line)
		}
		id, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("bad token id on dict line %d: %w", lineNum, err)
		}
		symbols[fields[0]] = id
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dict file: %w", err)
	}

	return NewDict(symbols), nil
}

// Symbol returns the spelling of the given token id.
func (d *Dict) Symbol(id int) (string, bool) {
	sym, ok := d.idToSym[id]
	return sym, ok
}

// ID returns the token id of the given spelling.
func (d *Dict) ID(sym string) (int, bool) {
	id, ok := d.symToID[sym]
	return id, ok
}

// BlankID returns the id of the blank symbol, defaulting to 0 when the
// dictionary does not list it explicitly.
func (d *Dict) BlankID() int {
	if id, ok := d.symToID[BlankSymbol]; ok {
		return id
	}
	return 0
}

// Render concatenates the spellings of the given tokens. Ids missing from
// the dictionary render as "<unk-N>" so a bad dictionary is visible in the
// output rather than silently dropped.
func (d *Dict) Render(tokens []FrameToken) string {
	var sb strings.Builder
	for _, ft := range tokens {
		sym, ok := d.idToSym[ft.ID]
		if !ok {
			sym = fmt.Sprintf("<unk-%d>", ft.ID)
		}
		sb.WriteString(sym)
	}
	return sb.String()
}

// Len reports the number of symbols in the dictionary.
func (d *Dict) Len() int { return len(d.symToID) }
