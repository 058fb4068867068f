// Package ledger reads ledger files into transaction records.
//
// A ledger file is a stream of whitespace-separated integers taken four at a
// time: account, other account, amount, mode. Line breaks carry no meaning.
// Text after '#' on a line is ignored.
package ledger

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"ledger-bank/internal/model"
)

// ParseError reports a token that is not an integer.
type ParseError struct {
	Line  int
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("ledger line %d: invalid token %q: %v", e.Line, e.Token, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Load reads records from r and numbers them from 0 in read order. A trailing
// group of fewer than four integers is dropped.
func Load(r io.Reader) ([]model.TransactionRecord, error) {
	var (
		records []model.TransactionRecord
		tuple   [4]int64
		n       int
		lineNo  int
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}

		for _, tok := range strings.Fields(line) {
			v, err := strconv.ParseInt(tok, 10, 64)
			if err != nil {
				return nil, &ParseError{Line: lineNo, Token: tok, Err: err}
			}
			tuple[n] = v
			n++
			if n == len(tuple) {
				records = append(records, model.TransactionRecord{
					Account:    int(tuple[0]),
					Other:      int(tuple[1]),
					Amount:     tuple[2],
					Mode:       model.Mode(tuple[3]),
					SequenceID: len(records),
				})
				n = 0
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}

	return records, nil
}

// LoadFile opens path and loads it with Load.
func LoadFile(path string) ([]model.TransactionRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Write renders records in ledger format, one entry per line.
func Write(w io.Writer, records []model.TransactionRecord) error {
	bw := bufio.NewWriter(w)
	for _, r := range records {
		if _, err := fmt.Fprintf(bw, "%d %d %d %d\n", r.Account, r.Other, r.Amount, int(r.Mode)); err != nil {
			return err
		}
	}
	return bw.Flush()
}
