//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"ledger-bank/internal/config"
	"ledger-bank/internal/database"
)

func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:alpine",
		postgres.WithDatabase("bank_db"),
		postgres.WithUsername("bank"),
		postgres.WithPassword("bank"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	db, err := database.New(config.DatabaseConfig{
		Driver:   "postgres",
		Host:     host,
		Port:     port.Int(),
		User:     "bank",
		Password: "bank",
		DBName:   "bank_db",
		SSLMode:  "disable",
	}, quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db.DB
}

func TestPostgres_RunArchive(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()

	logs := NewLogRepository(db, quietLogger(), "run-pg")
	require.NoError(t, logs.Append(ctx, 0, "Transaction Type: Deposit, Amount: 30, Status: Success"))
	require.NoError(t, logs.Append(ctx, 0, "Transaction Type: Check Balance, Amount: 30, Status: Success"))
	assert.Len(t, readAll(t, logs, 0), 2)

	summaries := NewSummaryRepository(db, quietLogger())
	require.NoError(t, summaries.SaveRun(ctx, "run-pg", 2, []int64{30, 0}, 2, 0))
	require.NoError(t, summaries.SaveRun(ctx, "run-pg", 2, []int64{25, 5}, 3, 0))

	summary, balances, err := summaries.GetRun(ctx, "run-pg")
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Success)
	require.Len(t, balances, 2)
	assert.Equal(t, int64(25), balances[0].Balance)
	assert.Equal(t, int64(5), balances[1].Balance)
}
