package cmd

import (
	"fmt"
	"os"
	"sync"

	"github.com/smallbiznis/bizledger/internal/ledgersync"
	statedomain "github.com/smallbiznis/bizledger/internal/state/domain"
	"github.com/spf13/cobra"
)

var applyCmd = &cobra.Command{
	Use:   "apply <collection> <file>",
	Short: "Replace a catalog collection with the records in a JSON file",
	Long: `Replace one diff-synced collection (departments, employees, expense_groups,
expense_categories, income_services or tasks) with the JSON array in <file>.

Only the difference against the local copy is sent to the server. Records
without an id are created with a new one.`,
	Example: `  ledgerctl apply departments departments.json`,
	Args:    cobra.ExactArgs(2),
	RunE:    runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	collection, file := args[0], args[1]
	raw, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.log.Sync()

	var (
		mu     sync.Mutex
		failed []*ledgersync.SyncError
	)
	syncer := ledgersync.New(ledgersync.Params{
		Log:     sess.log,
		Remote:  sess.remote,
		Initial: sess.snapshot.State,
		OnError: func(e *ledgersync.SyncError) {
			mu.Lock()
			failed = append(failed, e)
			mu.Unlock()
		},
	})
	ctx := cmd.Context()
	syncer.Run(ctx)
	defer syncer.Close()

	err = syncer.Update(ctx, func(state *statedomain.AppState) error {
		return ledgersync.ReplaceCollection(state, collection, raw)
	})
	if err != nil {
		return err
	}
	if err := syncer.Flush(ctx); err != nil {
		return err
	}
	if err := sess.save(syncer); err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	for _, e := range failed {
		fmt.Fprintf(cmd.ErrOrStderr(), "failed: %v\n", e)
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d record(s) were not saved on the server; run pull to resync", len(failed))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s applied\n", collection)
	return nil
}
