package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg := Load()
	assert.Equal(t, 10, cfg.Bank.Accounts)
	assert.Equal(t, 4, cfg.Bank.Workers)
	assert.Equal(t, "file", cfg.Ledger.Source)
	assert.Equal(t, "file", cfg.Sink.Kind)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "ledger_entries", cfg.Rabbit.Queue)
	assert.Nil(t, cfg.Kafka.Brokers)
	assert.Zero(t, cfg.Monitor.Interval)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("BANK_ACCOUNTS", "25")
	t.Setenv("BANK_WORKERS", "500")
	t.Setenv("LEDGER_SOURCE", "amqp")
	t.Setenv("DB_PORT", "not-a-number")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("MONITOR_INTERVAL_MS", "250")

	cfg := Load()
	assert.Equal(t, 25, cfg.Bank.Accounts)
	assert.Equal(t, maxWorkers, cfg.Bank.Workers)
	assert.Equal(t, "amqp", cfg.Ledger.Source)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 250*time.Millisecond, cfg.Monitor.Interval)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1, ClampWorkers(0))
	assert.Equal(t, 8, ClampWorkers(8))
	assert.Equal(t, maxAccounts, ClampAccounts(5000))
	assert.Equal(t, 1, ClampAccounts(-3))
}

// chdir changes the working directory for the duration of the test, like
// testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}
