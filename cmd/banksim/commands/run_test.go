package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger-bank/cmd/banksim/output"
	"ledger-bank/internal/config"
	"ledger-bank/internal/database"
	"ledger-bank/internal/model"
)

const scenario = `0 0 100 0
0 0 30 1
0 1 50 2
`

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := output.Out
	output.Out = &buf
	t.Cleanup(func() { output.Out = prev })
	return &buf
}

func testConfig(t *testing.T, ledgerText string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.txt")
	require.NoError(t, os.WriteFile(path, []byte(ledgerText), 0o644))

	return &config.Config{
		Bank:   config.BankConfig{Accounts: 3, Workers: 1},
		Ledger: config.LedgerConfig{Source: "file", Path: path},
		Sink:   config.SinkConfig{Kind: "memory", Dir: filepath.Join(dir, "logs")},
	}
}

func TestSimulate_Memory(t *testing.T) {
	out := captureOutput(t)
	log, _ := test.NewNullLogger()

	require.NoError(t, simulate(context.Background(), testConfig(t, scenario), log))

	text := out.String()
	assert.Contains(t, text, "ID# 0 | 0\nID# 1 | 0\nID# 2 | 0\nSuccess: 0 Fails: 0\n")
	assert.Contains(t, text, "ID# 0 | 20\nID# 1 | 50\nID# 2 | 0\nSuccess: 3 Fails: 0\n")
	assert.Contains(t, text, "Worker 0 completed ledger 2: transfer 50 from account 0 to account 1")
	assert.Contains(t, text, "Time taken by program is:")
}

func TestSimulate_FileSink(t *testing.T) {
	captureOutput(t)
	log, _ := test.NewNullLogger()
	cfg := testConfig(t, scenario)
	cfg.Sink.Kind = "file"
	cfg.Monitor.Interval = time.Millisecond

	require.NoError(t, simulate(context.Background(), cfg, log))

	data, err := os.ReadFile(filepath.Join(cfg.Sink.Dir, "account_1.log"))
	require.NoError(t, err)
	assert.Equal(t, "Transaction Type: Transfer, Amount: 50, Sender: 0, Status: Success\n", string(data))
}

func TestSimulate_DatabaseSink(t *testing.T) {
	captureOutput(t)
	log, _ := test.NewNullLogger()
	cfg := testConfig(t, scenario)
	cfg.Sink.Kind = "db"
	cfg.Database = config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "bank.db")}

	require.NoError(t, simulate(context.Background(), cfg, log))

	db, err := database.New(cfg.Database, log)
	require.NoError(t, err)
	defer db.Close()

	var runs []model.RunSummary
	require.NoError(t, db.DB.Find(&runs).Error)
	require.Len(t, runs, 1)
	assert.Equal(t, 3, runs[0].Success)

	var lines int64
	require.NoError(t, db.DB.Model(&model.LogLine{}).Count(&lines).Error)
	assert.Equal(t, int64(4), lines)
}

func TestSimulate_Errors(t *testing.T) {
	captureOutput(t)
	log, _ := test.NewNullLogger()

	cfg := testConfig(t, scenario)
	cfg.Ledger.Path = filepath.Join(t.TempDir(), "missing.txt")
	assert.ErrorIs(t, simulate(context.Background(), cfg, log), os.ErrNotExist)

	cfg = testConfig(t, scenario)
	cfg.Sink.Kind = "s3"
	assert.ErrorContains(t, simulate(context.Background(), cfg, log), `unknown sink "s3"`)

	cfg = testConfig(t, scenario)
	cfg.Ledger.Source = "kafka"
	assert.ErrorContains(t, simulate(context.Background(), cfg, log), `unknown ledger source "kafka"`)
}

func TestSimulate_CancelledBeforeRun(t *testing.T) {
	out := captureOutput(t)
	log, _ := test.NewNullLogger()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, simulate(ctx, testConfig(t, scenario), log))
	assert.Contains(t, out.String(), "run interrupted: 0 of 3 ledger entries processed")
}
