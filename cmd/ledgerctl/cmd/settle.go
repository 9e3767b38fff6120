package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/bizledger/internal/ledgersync"
	"github.com/spf13/cobra"
)

var settleCmd = &cobra.Command{
	Use:     "settle <outstanding-id> <amount>",
	Short:   "Pay an amount against an outstanding balance",
	Example: `  ledgerctl settle 1790012345678901248 250.00`,
	Args:    cobra.ExactArgs(2),
	RunE:    runSettle,
}

func init() {
	rootCmd.AddCommand(settleCmd)
}

func runSettle(cmd *cobra.Command, args []string) error {
	amount, err := decimal.NewFromString(args[1])
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", args[1], err)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("amount must be positive")
	}

	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.log.Sync()

	ctx := cmd.Context()
	result, err := sess.remote.Settle(ctx, args[0], amount)
	if err != nil {
		return err
	}

	// refresh so the local outstanding list matches the server
	sync := ledgersync.New(ledgersync.Params{Log: sess.log, Remote: sess.remote, Initial: sess.snapshot.State})
	defer sync.Close()
	if err := sync.FetchOnLogin(ctx, sess.snapshot.State.Session); err != nil {
		return fmt.Errorf("fetch state: %w", err)
	}
	if err := sess.save(sync); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(result))
	return nil
}
