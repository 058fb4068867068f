package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"ledger-bank/cmd/banksim/output"
	"ledger-bank/internal/bank"
	"ledger-bank/internal/config"
	"ledger-bank/internal/consumer"
	"ledger-bank/internal/database"
	"ledger-bank/internal/events/kafka"
	"ledger-bank/internal/interfaces"
	"ledger-bank/internal/ledger"
	"ledger-bank/internal/model"
	"ledger-bank/internal/monitor"
	"ledger-bank/internal/processor"
	"ledger-bank/internal/queue"
	"ledger-bank/internal/repository"
	"ledger-bank/internal/sink"
)

const archiveTimeout = 30 * time.Second

var (
	// Run flags
	ledgerPath string
	workers    int
	accounts   int
	sinkKind   string
	logDir     string
	sourceKind string
	interval   time.Duration
)

// runCmd replays a ledger against a fresh bank
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replay a ledger with a pool of workers",
	Long: `Load every ledger entry, then let the workers drain them concurrently.

The account table is printed before and after the run, followed by the
success and failure tally and the time taken.

Examples:
  banksim run --ledger ledger.txt --workers 8
  banksim run --source amqp --sink db
  banksim run --ledger ledger.txt --sink memory --monitor 500ms`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log := loadConfig()
		applyRunFlags(cmd, cfg)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return simulate(ctx, cfg, log)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&ledgerPath, "ledger", "l", "", "Ledger file (overrides LEDGER_PATH)")
	runCmd.Flags().IntVarP(&workers, "workers", "w", 0, "Number of workers (overrides BANK_WORKERS)")
	runCmd.Flags().IntVarP(&accounts, "accounts", "a", 0, "Number of accounts (overrides BANK_ACCOUNTS)")
	runCmd.Flags().StringVar(&sinkKind, "sink", "", "Account log sink: file, memory or db (overrides SINK_KIND)")
	runCmd.Flags().StringVar(&logDir, "log-dir", "", "Directory of account log files (overrides SINK_DIR)")
	runCmd.Flags().StringVar(&sourceKind, "source", "", "Ledger source: file or amqp (overrides LEDGER_SOURCE)")
	runCmd.Flags().DurationVar(&interval, "monitor", 0, "Log run progress at this interval, 0 disables")
}

func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("ledger") {
		cfg.Ledger.Path = ledgerPath
	}
	if flags.Changed("workers") {
		cfg.Bank.Workers = config.ClampWorkers(workers)
	}
	if flags.Changed("accounts") {
		cfg.Bank.Accounts = config.ClampAccounts(accounts)
	}
	if flags.Changed("sink") {
		cfg.Sink.Kind = sinkKind
	}
	if flags.Changed("log-dir") {
		cfg.Sink.Dir = logDir
	}
	if flags.Changed("source") {
		cfg.Ledger.Source = sourceKind
	}
	if flags.Changed("monitor") {
		cfg.Monitor.Interval = interval
	}
}

// simulate runs one full simulation: load, replay, report and archive.
func simulate(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	start := time.Now()
	runID := uuid.NewString()
	log.WithFields(logrus.Fields{
		"run_id":   runID,
		"workers":  cfg.Bank.Workers,
		"accounts": cfg.Bank.Accounts,
		"source":   cfg.Ledger.Source,
		"sink":     cfg.Sink.Kind,
	}).Info("starting run")

	records, err := loadRecords(ctx, cfg, log)
	if err != nil {
		return err
	}

	logSink, db, closeSink, err := openSink(cfg, runID, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeSink(); err != nil {
			log.WithError(err).Warn("failed to close account log sink")
		}
	}()

	opts := []bank.Option{bank.WithReport(output.Out), bank.WithRunID(runID)}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher := kafka.NewPublisher(cfg.Kafka.Brokers, log)
		defer publisher.Close()
		opts = append(opts, bank.WithPublisher(publisher, cfg.Kafka.Topic))
	}

	b := bank.New(cfg.Bank.Accounts, logSink, log, opts...)

	output.Section("Accounts before run")
	b.PrintAccounts(output.Out)

	output.Section(fmt.Sprintf("Replaying %d ledger entries with %d workers", len(records), cfg.Bank.Workers))
	pool := processor.NewPool(b, queue.New(records), cfg.Bank.Workers, log)
	stats := runPool(ctx, pool, b, cfg.Monitor.Interval, log)

	output.Section("Accounts after run")
	b.PrintAccounts(output.Out)

	if stats.Processed < len(records) {
		output.Warning("run interrupted: %d of %d ledger entries processed", stats.Processed, len(records))
	}

	if db != nil {
		archiveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
		success, failure := b.Tally()
		err := repository.NewSummaryRepository(db.DB, log).
			SaveRun(archiveCtx, runID, cfg.Bank.Workers, b.Balances(), success, failure)
		cancel()
		if err != nil {
			output.Error("failed to archive run %s: %v", runID, err)
		} else {
			output.Info("run %s archived", runID)
		}
	}

	if err := b.Close(); err != nil {
		return fmt.Errorf("failed to close bank: %w", err)
	}

	output.Success("Time taken by program is: %d sec", int(time.Since(start).Seconds()))
	return nil
}

func runPool(ctx context.Context, pool *processor.Pool, b *bank.Bank, every time.Duration, log *logrus.Logger) processor.Stats {
	if every <= 0 {
		return pool.Run(ctx)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		monitor.Watch(watchCtx, b, pool, every, log)
	}()

	stats := pool.Run(ctx)
	cancel()
	<-done
	return stats
}

func loadRecords(ctx context.Context, cfg *config.Config, log *logrus.Logger) ([]model.TransactionRecord, error) {
	switch cfg.Ledger.Source {
	case "file", "":
		records, err := ledger.LoadFile(cfg.Ledger.Path)
		if err != nil {
			return nil, err
		}
		log.WithFields(logrus.Fields{
			"path":    cfg.Ledger.Path,
			"records": len(records),
		}).Info("ledger loaded")
		return records, nil
	case "amqp":
		client, err := consumer.New(ctx, cfg.Rabbit, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		defer client.Close()
		return client.Drain(ctx)
	default:
		return nil, fmt.Errorf("unknown ledger source %q", cfg.Ledger.Source)
	}
}

func openSink(cfg *config.Config, runID string, log *logrus.Logger) (interfaces.LogSink, *database.Database, func() error, error) {
	switch cfg.Sink.Kind {
	case "file", "":
		fs, err := sink.NewFileSink(cfg.Sink.Dir, cfg.Bank.Accounts)
		if err != nil {
			return nil, nil, nil, err
		}
		return fs, nil, fs.Close, nil
	case "memory":
		return sink.NewMemorySink(), nil, func() error { return nil }, nil
	case "db":
		db, err := database.New(cfg.Database, log)
		if err != nil {
			return nil, nil, nil, err
		}
		return repository.NewLogRepository(db.DB, log, runID), db, db.Close, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown sink %q", cfg.Sink.Kind)
	}
}
