package cmd

import (
	"time"

	"github.com/smallbiznis/bizledger/internal/ledgersync"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// session is the state shared by commands that need a signed-in user.
type session struct {
	log       *zap.Logger
	statePath string
	snapshot  ledgersync.Snapshot
	remote    *ledgersync.HTTPRemote
}

func openSession(cmd *cobra.Command) (*session, error) {
	log, err := newLogger(cmd)
	if err != nil {
		return nil, err
	}
	statePath, _ := cmd.Flags().GetString("state")

	snap, err := ledgersync.LoadSnapshot(statePath)
	if err != nil {
		return nil, err
	}
	if snap.Token == "" {
		return nil, ledgersync.ErrNotLoggedIn
	}

	return &session{
		log:       log,
		statePath: statePath,
		snapshot:  snap,
		remote:    ledgersync.NewHTTPRemote(snap.ServerURL, snap.Token),
	}, nil
}

func (s *session) save(sync *ledgersync.Synchronizer) error {
	s.snapshot.State = sync.State()
	s.snapshot.SavedAt = time.Now().UTC()
	return ledgersync.SaveSnapshot(s.statePath, s.snapshot)
}
