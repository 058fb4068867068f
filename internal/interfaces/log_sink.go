package interfaces

import "context"

// LogSink stores the append-only text log of every account, keyed by account ID.
type LogSink interface {
	Append(ctx context.Context, account int, line string) error
	Open(ctx context.Context, account int) (LineReader, error)
}

// LineReader yields log lines one at a time and returns io.EOF after the last
// line. Lines appended after the reader was opened may still be returned.
type LineReader interface {
	ReadLine() (string, error)
	Close() error
}
