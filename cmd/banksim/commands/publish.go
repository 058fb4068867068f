package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"ledger-bank/cmd/banksim/output"
	"ledger-bank/internal/consumer"
	"ledger-bank/internal/ledger"
)

// publishCmd loads a ledger file onto the RabbitMQ queue
var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish a ledger file to RabbitMQ",
	Long: `Read a ledger file and put every entry on the ledger queue, in order.

A later "banksim run --source amqp" drains the queue and replays it.

Examples:
  banksim publish --ledger ledger.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log := loadConfig()
		if cmd.Flags().Changed("ledger") {
			cfg.Ledger.Path = ledgerPath
		}

		records, err := ledger.LoadFile(cfg.Ledger.Path)
		if err != nil {
			return err
		}

		client, err := consumer.New(cmd.Context(), cfg.Rabbit, log)
		if err != nil {
			return fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		defer client.Close()

		if err := client.Publish(cmd.Context(), records); err != nil {
			return err
		}

		output.Success("published %d ledger entries to %s", len(records), cfg.Rabbit.Queue)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(publishCmd)

	publishCmd.Flags().StringVarP(&ledgerPath, "ledger", "l", "", "Ledger file (overrides LEDGER_PATH)")
}
