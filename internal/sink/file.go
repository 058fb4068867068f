package sink

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"ledger-bank/internal/interfaces"
)

// FileSink writes each account's log to <dir>/account_<id>.log. All files are
// created (and truncated) by NewFileSink and stay open until Close.
type FileSink struct {
	dir   string
	mu    sync.RWMutex
	files []*os.File
}

func NewFileSink(dir string, accounts int) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log dir: %w", err)
	}

	s := &FileSink{dir: dir, files: make([]*os.File, accounts)}
	for i := 0; i < accounts; i++ {
		f, err := os.OpenFile(s.Path(i), os.O_CREATE|os.O_TRUNC|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to open account %d log: %w", i, err)
		}
		s.files[i] = f
	}
	return s, nil
}

// Path returns the log file path of account.
func (s *FileSink) Path(account int) string {
	return filepath.Join(s.dir, fmt.Sprintf("account_%d.log", account))
}

func (s *FileSink) file(account int) (*os.File, error) {
	if account < 0 || account >= len(s.files) || s.files[account] == nil {
		return nil, fmt.Errorf("account %d log: %w", account, os.ErrClosed)
	}
	return s.files[account], nil
}

func (s *FileSink) Append(_ context.Context, account int, line string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := s.file(account)
	if err != nil {
		return err
	}
	_, err = f.WriteString(line + "\n")
	return err
}

// Open opens a separate read handle on account's log file.
func (s *FileSink) Open(_ context.Context, account int) (interfaces.LineReader, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.file(account); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path(account))
	if err != nil {
		return nil, err
	}
	return &fileReader{f: f, r: bufio.NewReader(f)}, nil
}

// Close closes every account log file.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for i, f := range s.files {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil {
			errs = append(errs, err)
		}
		s.files[i] = nil
	}
	return errors.Join(errs...)
}

type fileReader struct {
	f *os.File
	r *bufio.Reader
}

func (r *fileReader) ReadLine() (string, error) {
	line, err := r.r.ReadString('\n')
	if len(line) > 0 && line[len(line)-1] == '\n' {
		return line[:len(line)-1], nil
	}
	if err == nil || (errors.Is(err, io.EOF) && line != "") {
		return line, nil
	}
	return "", err
}

func (r *fileReader) Close() error {
	return r.f.Close()
}

var _ interfaces.LogSink = (*FileSink)(nil)
