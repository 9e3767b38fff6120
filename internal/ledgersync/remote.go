package ledgersync

//go:generate mockgen -source=remote.go -destination=mock_remote.go -package=ledgersync

import (
	"context"
	"encoding/json"

	statedomain "github.com/smallbiznis/bizledger/internal/state/domain"
)

// Remote persists diff-synced records and serves the full ledger.
type Remote interface {
	Upsert(ctx context.Context, collection string, record json.RawMessage) error
	Delete(ctx context.Context, collection, id string) error
	FetchState(ctx context.Context) (statedomain.AppState, error)
}
