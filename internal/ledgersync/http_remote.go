package ledgersync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	obstracing "github.com/smallbiznis/bizledger/internal/observability/tracing"
	statedomain "github.com/smallbiznis/bizledger/internal/state/domain"
)

const defaultRequestTimeout = 15 * time.Second

// HTTPRemote talks to the bizledger server API.
type HTTPRemote struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// LoginResult is what the server returns for a successful login.
type LoginResult struct {
	Token   string
	Session statedomain.Session
}

func NewHTTPRemote(baseURL, token string) *HTTPRemote {
	return &HTTPRemote{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:   strings.TrimSpace(token),
		httpClient: obstracing.WrapHTTPClient(&http.Client{
			Timeout: defaultRequestTimeout,
		}),
	}
}

// WithToken returns a remote that authenticates with token.
func (r *HTTPRemote) WithToken(token string) *HTTPRemote {
	out := *r
	out.token = strings.TrimSpace(token)
	return &out
}

func (r *HTTPRemote) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var resp struct {
		User struct {
			ID    string `json:"id"`
			Name  string `json:"name"`
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
		Token string `json:"token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := r.do(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return LoginResult{}, err
	}
	return LoginResult{
		Token: resp.Token,
		Session: statedomain.Session{
			UserID: resp.User.ID,
			Name:   resp.User.Name,
			Email:  resp.User.Email,
			Role:   resp.User.Role,
			Token:  resp.Token,
		},
	}, nil
}

func (r *HTTPRemote) FetchState(ctx context.Context) (statedomain.AppState, error) {
	var state statedomain.AppState
	if err := r.do(ctx, http.MethodGet, "/api/state", nil, &state); err != nil {
		return statedomain.AppState{}, err
	}
	return state, nil
}

func (r *HTTPRemote) Upsert(ctx context.Context, collection string, record json.RawMessage) error {
	return r.do(ctx, http.MethodPut, "/api/catalog/"+url.PathEscape(collection), record, nil)
}

func (r *HTTPRemote) Delete(ctx context.Context, collection, id string) error {
	return r.do(ctx, http.MethodDelete, "/api/catalog/"+url.PathEscape(collection)+"/"+url.PathEscape(id), nil, nil)
}

// Settle pays amount against an outstanding balance and returns the server's result.
func (r *HTTPRemote) Settle(ctx context.Context, outstandingID string, amount decimal.Decimal) (json.RawMessage, error) {
	var result json.RawMessage
	body := map[string]decimal.Decimal{"amount_to_pay": amount}
	if err := r.do(ctx, http.MethodPost, "/api/outstanding/"+url.PathEscape(outstandingID)+"/settle", body, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *HTTPRemote) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case json.RawMessage:
		reader = bytes.NewReader(b)
	default:
		payload, err := json.Marshal(b)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return decodeRemoteError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeRemoteError(resp *http.Response) error {
	remoteErr := &RemoteError{Status: resp.StatusCode}
	var envelope struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&envelope); err == nil {
		remoteErr.Type = envelope.Error.Type
		remoteErr.Message = envelope.Error.Message
	}
	return remoteErr
}
