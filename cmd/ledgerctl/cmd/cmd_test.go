package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/smallbiznis/bizledger/internal/ledgersync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeServer struct {
	mu      sync.Mutex
	upserts []string
}

func (f *fakeServer) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":{"user":{"id":"u1","email":"sara@example.com","role":"editor"},"token":"tok"}}`)
	})
	mux.HandleFunc("/api/state", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"data":{"departments":[{"id":"a","name":"Ops"}]}}`)
	})
	mux.HandleFunc("/api/catalog/departments", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var rec map[string]any
		require.NoError(t, json.Unmarshal(body, &rec))
		f.mu.Lock()
		f.upserts = append(f.upserts, rec["name"].(string))
		f.mu.Unlock()
		_, _ = w.Write(append([]byte(`{"data":`), append(body, '}')...))
	})
	return mux
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func TestLoginThenApply(t *testing.T) {
	fake := &fakeServer{}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	dir := t.TempDir()
	statePath := filepath.Join(dir, "state.snap")

	out := execute(t, "login", "--server", srv.URL, "--state", statePath, "--email", "sara@example.com", "--password", "secret-pass")
	assert.Contains(t, out, "Signed in as sara@example.com (editor)")

	snap, err := ledgersync.LoadSnapshot(statePath)
	require.NoError(t, err)
	assert.Equal(t, "tok", snap.Token)
	require.Len(t, snap.State.Departments, 1)

	file := filepath.Join(dir, "departments.json")
	require.NoError(t, writeFile(file, `[{"id":"a","name":"Ops"},{"name":"Sales"}]`))

	out = execute(t, "apply", "departments", file, "--state", statePath)
	assert.Contains(t, out, "departments applied")

	fake.mu.Lock()
	assert.Equal(t, []string{"Sales"}, fake.upserts)
	fake.mu.Unlock()

	snap, err = ledgersync.LoadSnapshot(statePath)
	require.NoError(t, err)
	require.Len(t, snap.State.Departments, 2)
	assert.NotEmpty(t, snap.State.Departments[1].ID)
}

func TestCommandsRequireLogin(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "missing.snap")
	rootCmd.SetArgs([]string{"pull", "--state", statePath})
	rootCmd.SetOut(io.Discard)
	err := rootCmd.Execute()
	assert.ErrorIs(t, err, ledgersync.ErrNotLoggedIn)
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}
