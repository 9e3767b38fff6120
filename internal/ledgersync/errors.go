package ledgersync

import (
	"errors"
	"fmt"
)

const (
	OpUpsert = "upsert"
	OpDelete = "delete"
)

var (
	ErrClosed            = errors.New("synchronizer_closed")
	ErrUnknownCollection = errors.New("unknown_collection")
	ErrNotLoggedIn       = errors.New("not_logged_in")
)

// SyncError reports one record that could not be persisted remotely. Local state keeps
// the change.
type SyncError struct {
	Collection string
	Op         string
	ID         string
	Err        error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync %s %s/%s: %v", e.Op, e.Collection, e.ID, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// RemoteError is a non-2xx answer from the server API.
type RemoteError struct {
	Status  int
	Type    string
	Message string
}

func (e *RemoteError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("remote returned %d", e.Status)
	}
	return fmt.Sprintf("remote returned %d: %s", e.Status, e.Type)
}
