package cmd

import (
	"fmt"

	"github.com/smallbiznis/bizledger/internal/ledgersync"
	"github.com/spf13/cobra"
)

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Replace the local copy with the server's ledger",
	RunE:  runPull,
}

func init() {
	rootCmd.AddCommand(pullCmd)
}

func runPull(cmd *cobra.Command, args []string) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.log.Sync()

	sync := ledgersync.New(ledgersync.Params{Log: sess.log, Remote: sess.remote, Initial: sess.snapshot.State})
	defer sync.Close()
	if err := sync.FetchOnLogin(cmd.Context(), sess.snapshot.State.Session); err != nil {
		return fmt.Errorf("fetch state: %w", err)
	}
	if err := sess.save(sync); err != nil {
		return err
	}

	state := sync.State()
	fmt.Fprintf(cmd.OutOrStdout(), "%d departments, %d employees, %d expenses, %d outstanding, %d incomes\n",
		len(state.Departments), len(state.Employees), len(state.Expenses), len(state.Outstanding), len(state.Incomes))
	return nil
}
