package ledgersync

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	catalogdomain "github.com/smallbiznis/bizledger/internal/catalog/domain"
	statedomain "github.com/smallbiznis/bizledger/internal/state/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "snapshot.bin")

	_, err := LoadSnapshot(path)
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	snap := Snapshot{
		ServerURL: "http://localhost:8080",
		Token:     "tok",
		SavedAt:   time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
		State: statedomain.AppState{
			Session:     statedomain.Session{UserID: "u1", Token: "tok"},
			Departments: []catalogdomain.Department{{ID: "a", Name: "Ops"}},
		},
	}
	require.NoError(t, SaveSnapshot(path, snap))

	got, err := LoadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, snap.ServerURL, got.ServerURL)
	assert.True(t, snap.SavedAt.Equal(got.SavedAt))
	assert.Equal(t, "tok", got.State.Session.Token)
	assert.Equal(t, snap.State.Departments, got.State.Departments)
}

func TestReadSnapshotRejectsGarbage(t *testing.T) {
	_, err := ReadSnapshot(bytes.NewReader([]byte("not snappy at all")))
	assert.Error(t, err)
}
