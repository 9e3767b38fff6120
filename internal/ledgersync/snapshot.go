package ledgersync

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/golang/snappy"
	statedomain "github.com/smallbiznis/bizledger/internal/state/domain"
)

// Snapshot is the on-disk form of a client session.
type Snapshot struct {
	ServerURL string               `json:"server_url"`
	Token     string               `json:"token"`
	SavedAt   time.Time            `json:"saved_at"`
	State     statedomain.AppState `json:"state"`
}

// WriteSnapshot writes snap as snappy-compressed JSON.
func WriteSnapshot(w io.Writer, snap Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = w.Write(snappy.Encode(nil, payload))
	return err
}

func ReadSnapshot(r io.Reader) (Snapshot, error) {
	compressed, err := io.ReadAll(r)
	if err != nil {
		return Snapshot{}, err
	}
	payload, err := snappy.Decode(nil, compressed)
	if err != nil {
		return Snapshot{}, fmt.Errorf("decompress snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	snap.State.Session.Token = snap.Token
	return snap, nil
}

// SaveSnapshot replaces the file at path atomically.
func SaveSnapshot(path string, snap Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := WriteSnapshot(tmp, snap); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// LoadSnapshot reads the file at path. A missing file yields ErrNotLoggedIn.
func LoadSnapshot(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return Snapshot{}, ErrNotLoggedIn
	}
	if err != nil {
		return Snapshot{}, err
	}
	defer f.Close()
	return ReadSnapshot(f)
}
