package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/smallbiznis/bizledger/internal/ledgersync"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and download the ledger",
	Example: `  ledgerctl login --email admin@example.com
  LEDGERCTL_PASSWORD=secret ledgerctl login --email admin@example.com --server https://ledger.example.com`,
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().String("email", "", "account email")
	loginCmd.Flags().String("password", "", "account password (default: $LEDGERCTL_PASSWORD)")
	_ = loginCmd.MarkFlagRequired("email")
}

func runLogin(cmd *cobra.Command, args []string) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	serverURL, _ := cmd.Flags().GetString("server")
	statePath, _ := cmd.Flags().GetString("state")
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		password = os.Getenv("LEDGERCTL_PASSWORD")
	}
	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("password is required")
	}

	ctx := cmd.Context()
	remote := ledgersync.NewHTTPRemote(serverURL, "")
	result, err := remote.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	sync := ledgersync.New(ledgersync.Params{Log: log, Remote: remote.WithToken(result.Token)})
	defer sync.Close()
	if err := sync.FetchOnLogin(ctx, result.Session); err != nil {
		return fmt.Errorf("fetch state: %w", err)
	}

	snap := ledgersync.Snapshot{
		ServerURL: serverURL,
		Token:     result.Token,
		SavedAt:   time.Now().UTC(),
		State:     sync.State(),
	}
	if err := ledgersync.SaveSnapshot(statePath, snap); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", result.Session.Email, result.Session.Role)
	return nil
}
