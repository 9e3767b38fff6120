package ledgersync

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPRemoteLoginAndFetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "sara@example.com", body["email"])
		_, _ = io.WriteString(w, `{"data":{"user":{"id":"u1","name":"Sara","email":"sara@example.com","role":"editor"},"token":"tok"}}`)
	})
	mux.HandleFunc("/api/state", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"data":{"session":{"user_id":"u1"},"departments":[{"id":"a","name":"Ops"}]}}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	remote := NewHTTPRemote(srv.URL+"/", "")
	login, err := remote.Login(context.Background(), "sara@example.com", "secret-pass")
	require.NoError(t, err)
	assert.Equal(t, "tok", login.Token)
	assert.Equal(t, "u1", login.Session.UserID)
	assert.Equal(t, "editor", login.Session.Role)
	assert.Equal(t, "tok", login.Session.Token)

	state, err := remote.WithToken(login.Token).FetchState(context.Background())
	require.NoError(t, err)
	require.Len(t, state.Departments, 1)
	assert.Equal(t, "Ops", state.Departments[0].Name)
}

func TestHTTPRemoteCatalogWrites(t *testing.T) {
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		switch r.Method {
		case http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"id":"a","name":"Ops"}`, string(body))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			_, _ = io.WriteString(w, `{"data":{"id":"a","name":"Ops"}}`)
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer srv.Close()

	remote := NewHTTPRemote(srv.URL, "tok")
	require.NoError(t, remote.Upsert(context.Background(), "departments", json.RawMessage(`{"id":"a","name":"Ops"}`)))
	require.NoError(t, remote.Delete(context.Background(), "departments", "a"))
	assert.Equal(t, []string{"PUT /api/catalog/departments", "DELETE /api/catalog/departments/a"}, calls)
}

func TestHTTPRemoteErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"type":"not_found","message":"not found"}}`)
	}))
	defer srv.Close()

	_, err := NewHTTPRemote(srv.URL, "tok").Settle(context.Background(), "missing", decimal.NewFromInt(5))
	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusNotFound, remoteErr.Status)
	assert.Equal(t, "not_found", remoteErr.Type)
}
