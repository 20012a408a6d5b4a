// Package backoffice is the external collaborator boundary (spec §6.1,
// §6.3): an HTTP client over the tool surface the core consumes, with a
// typed error taxonomy the Action Processor can branch on without string
// matching.
package backoffice

import (
	"context"
	"net/http"
	"time"

	"github.com/medvedikur/erc3-mine-sub001/internal/toolerrors"
)

// ErrorKind distinguishes back-office failures the Action Processor must
// treat differently: a not-found drops a link silently, a validation
// error is surfaced verbatim to the model, a transport error counts as an
// ordinary action failure but never aborts the task.
type ErrorKind int

const (
	ErrNotFound ErrorKind = iota
	ErrValidation
	ErrTransport
)

// Error is the structured shape every back-office call can fail with.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Cause }

// ToToolError maps a back-office Error onto the dispatch-failure kind the
// rest of the pipeline understands.
func (e *Error) ToToolError() *toolerrors.ToolError {
	switch e.Kind {
	case ErrNotFound:
		return toolerrors.NewKind(toolerrors.KindDispatchFailure, e.Message)
	case ErrValidation:
		return toolerrors.NewKind(toolerrors.KindValidation, e.Message)
	default:
		return toolerrors.NewKind(toolerrors.KindTransportTransient, e.Message)
	}
}

// Client is the HTTP boundary to the back-office; one instance per worker,
// since the underlying http.Client is reused but never shared across
// goroutines that might race on cookies/auth state (spec §4.10, §5).
type Client struct {
	baseURL string
	http    *http.Client
	apiKey  string
}

// NewClient builds a Client bound to one worker's HTTP connection pool.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// call invokes one back-office endpoint and decodes its JSON response into
// out. The concrete per-tool request/response marshaling lives in
// executor.go; this is the shared transport plumbing every call funnels
// through so auth headers and error classification stay in one place. Each
// call makes a single attempt; a failed request is not retried.
func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	req, err := newJSONRequest(ctx, method, c.baseURL+path, body, c.apiKey)
	if err != nil {
		return &Error{Kind: ErrTransport, Message: err.Error(), Cause: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Kind: ErrTransport, Message: "back-office request failed: " + err.Error(), Cause: err}
	}
	defer resp.Body.Close()

	return decodeResponse(resp, out)
}

// ValidateEmployee reports whether an employee id resolves, satisfying
// links.EmployeeValidator.
func (c *Client) ValidateEmployee(id string) (bool, error) {
	var resp map[string]any
	err := c.call(context.Background(), "GET", "/employees_get?id="+id, nil, &resp)
	if err == nil {
		return true, nil
	}
	if be, ok := err.(*Error); ok && be.Kind == ErrNotFound {
		return false, nil
	}
	return false, err
}
