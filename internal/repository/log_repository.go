package repository

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"ledger-bank/internal/interfaces"
	"ledger-bank/internal/model"
)

// LogRepository stores account log lines of a single run in the database.
type LogRepository struct {
	db    *gorm.DB
	log   *logrus.Logger
	runID string
}

func NewLogRepository(db *gorm.DB, log *logrus.Logger, runID string) *LogRepository {
	return &LogRepository{
		db:    db,
		log:   log,
		runID: runID,
	}
}

// Append saves one log line for account
func (r *LogRepository) Append(ctx context.Context, account int, line string) error {
	return r.db.WithContext(ctx).Create(&model.LogLine{
		RunID:     r.runID,
		AccountID: account,
		Line:      line,
	}).Error
}

// Open returns a reader over account's lines in insertion order. The reader
// fetches one row per call, so lines saved after Open are still returned.
func (r *LogRepository) Open(ctx context.Context, account int) (interfaces.LineReader, error) {
	if account < 0 {
		return nil, fmt.Errorf("no log for account %d", account)
	}
	return &lineCursor{ctx: ctx, repo: r, account: account}, nil
}

// Lines returns every stored line of account.
func (r *LogRepository) Lines(ctx context.Context, account int) ([]string, error) {
	var lines []string
	err := r.db.WithContext(ctx).
		Model(&model.LogLine{}).
		Where("run_id = ? AND account_id = ?", r.runID, account).
		Order("id").
		Pluck("line", &lines).Error

	return lines, err
}

// CountLines returns the number of lines stored for the run
func (r *LogRepository) CountLines(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.LogLine{}).
		Where("run_id = ?", r.runID).
		Count(&count).Error

	return count, err
}

type lineCursor struct {
	ctx     context.Context
	repo    *LogRepository
	account int
	lastID  uint
	closed  bool
}

func (c *lineCursor) ReadLine() (string, error) {
	if c.closed {
		return "", io.EOF
	}

	var row model.LogLine
	err := c.repo.db.WithContext(c.ctx).
		Where("run_id = ? AND account_id = ? AND id > ?", c.repo.runID, c.account, c.lastID).
		Order("id").
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", io.EOF
	}
	if err != nil {
		return "", fmt.Errorf("failed to read log line: %w", err)
	}

	c.lastID = row.ID
	return row.Line, nil
}

func (c *lineCursor) Close() error {
	c.closed = true
	return nil
}

var _ interfaces.LogSink = (*LogRepository)(nil)
