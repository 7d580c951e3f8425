// Package fetcher talks to the station's single query endpoint. Both the
// latest-reading and recent-history requests go to the same URL and are
// distinguished only by the limit carried in the POST body.
package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/idea-21/WEB-Smart-Flower-Cultivation-System/src/logging"
	"github.com/idea-21/WEB-Smart-Flower-Cultivation-System/src/types"
)

// ErrorKind classifies a failed fetch for user-facing message mapping.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindNetwork: the transport produced no response at all.
	KindNetwork
	// KindOriginBlocked: the endpoint rejected the request outright
	// (403-class origin policy refusal).
	KindOriginBlocked
	// KindMalformed: a response arrived but was unusable (success=false,
	// undecodable body, or an unexpected status).
	KindMalformed
)

// String names the kind for logs and metrics labels.
func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindOriginBlocked:
		return "origin_blocked"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Error is the classified failure returned by fetch operations. Message
// carries the server-provided explanation when the endpoint supplied one.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.cause)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.cause }

// KindOf extracts the classification from any error chain.
func KindOf(err error) ErrorKind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// MessageOf extracts the server-provided message, if any, from an error chain.
func MessageOf(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Message
	}
	return ""
}

// apiRequest is the discriminating POST body: action is fixed, limit selects
// between latest-single (1) and recent-history (N).
type apiRequest struct {
	Action string `json:"action"`
	Limit  int    `json:"limit"`
}

// apiResponse is the endpoint's envelope.
type apiResponse struct {
	Success bool                `json:"success"`
	Data    []types.WireReading `json:"data"`
	Message string              `json:"message,omitempty"`
}

const defaultTimeout = 10 * time.Second

// Client issues reading queries against one endpoint URL.
type Client struct {
	endpoint string
	http     *http.Client
}

// New returns a client for the given endpoint. A zero timeout falls back to
// a conservative default so a hung origin can never wedge the poll loop.
func New(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

// FetchLatest requests the single most recent reading. A (nil, nil) return
// means the endpoint answered successfully with no records yet, a valid
// terminal state, not a failure; callers must not surface it as an error.
func (c *Client) FetchLatest(ctx context.Context) (*types.SensorReading, error) {
	resp, err := c.query(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		logging.Debugf("fetch latest: endpoint has no readings yet")
		return nil, nil
	}
	r, err := resp.Data[0].ToReading()
	if err != nil {
		return nil, &Error{Kind: KindMalformed, cause: err}
	}
	return &r, nil
}

// FetchHistory requests the most recent limit readings. The wire delivers
// them newest-first; the returned sequence is always oldest-first; ordering
// is this package's responsibility, never the caller's. An empty sequence is
// a valid result.
func (c *Client) FetchHistory(ctx context.Context, limit int) ([]types.SensorReading, error) {
	resp, err := c.query(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]types.SensorReading, 0, len(resp.Data))
	for i := range resp.Data {
		r, err := resp.Data[i].ToReading()
		if err != nil {
			return nil, &Error{Kind: KindMalformed, cause: err}
		}
		out = append(out, r)
	}
	// Sort rather than blindly reverse: the contract is oldest-first
	// regardless of what order the transport produced.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

// query POSTs the discriminated request and classifies every failure mode.
func (c *Client) query(ctx context.Context, limit int) (*apiResponse, error) {
	body, err := json.Marshal(apiRequest{Action: "get", Limit: limit})
	if err != nil {
		return nil, &Error{Kind: KindMalformed, cause: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Kind: KindMalformed, cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		// No response at all: unreachable host, refused connection, timeout.
		logging.Warnf("fetch limit=%d transport error after %s: %v", limit, time.Since(start), err)
		return nil, &Error{Kind: KindNetwork, cause: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden:
		logging.Warnf("fetch limit=%d rejected by origin policy (status %d)", limit, resp.StatusCode)
		return nil, &Error{Kind: KindOriginBlocked}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &Error{Kind: KindMalformed, Message: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &Error{Kind: KindMalformed, cause: err}
	}
	if !parsed.Success {
		return nil, &Error{Kind: KindMalformed, Message: parsed.Message}
	}
	logging.Debugf("fetch limit=%d ok: %d record(s) in %s", limit, len(parsed.Data), time.Since(start))
	return &parsed, nil
}
