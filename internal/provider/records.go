package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TokenSource supplies the bearer token for record-store requests. The auth
// HTTPClient satisfies it with the session it already holds.
type TokenSource interface {
	AccessToken() string
}

// RESTRecords reads and writes application rows through the backend's
// table REST endpoints. Row-level security on the server decides what the
// bearer token may touch; this client only relays.
type RESTRecords struct {
	baseURL string
	apiKey  string
	hc      *http.Client
	tokens  TokenSource
}

func NewRESTRecords(baseURL, apiKey string, timeout time.Duration, tokens TokenSource) *RESTRecords {
	return &RESTRecords{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		hc:      &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
}

func (r *RESTRecords) Insert(ctx context.Context, table string, record any) error {
	_, err := r.do(ctx, http.MethodPost, r.tableURL(table), record, false)
	return err
}

func (r *RESTRecords) Update(ctx context.Context, table, id string, partial map[string]any) error {
	_, err := r.do(ctx, http.MethodPatch, r.rowURL(table, id), partial, false)
	return err
}

// SelectByID fetches a single row into dest. A missing row is reported as
// ErrRecordNotFound rather than a provider error.
func (r *RESTRecords) SelectByID(ctx context.Context, table, id string, dest any) error {
	data, err := r.do(ctx, http.MethodGet, r.rowURL(table, id)+"&select=*", nil, true)
	if err != nil {
		var perr *Error
		if errors.As(err, &perr) && (perr.Status == http.StatusNotFound || perr.Status == http.StatusNotAcceptable) {
			return ErrRecordNotFound
		}
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return &Error{Message: fmt.Sprintf("malformed record: %v", err)}
	}
	return nil
}

func (r *RESTRecords) tableURL(table string) string {
	return r.baseURL + "/rest/v1/" + url.PathEscape(table)
}

func (r *RESTRecords) rowURL(table, id string) string {
	return r.tableURL(table) + "?id=eq." + url.QueryEscape(id)
}

func (r *RESTRecords) do(ctx context.Context, method, rawURL string, body any, single bool) ([]byte, error) {
	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Message: fmt.Sprintf("encode record: %v", err)}
		}
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, payload)
	if err != nil {
		return nil, &Error{Message: err.Error()}
	}
	req.Header.Set("apikey", r.apiKey)
	if tok := r.tokens.AccessToken(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "return=minimal")
	}
	if single {
		// Asks the row endpoint for exactly one object; zero rows answer 406.
		req.Header.Set("Accept", "application/vnd.pgrst.object+json")
	}

	resp, err := r.hc.Do(req)
	if err != nil {
		return nil, &Error{Message: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Message: err.Error(), Status: resp.StatusCode}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, decodeError(resp.StatusCode, data)
	}
	return data, nil
}
