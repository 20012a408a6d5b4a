package backoffice

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
)

func newJSONRequest(ctx context.Context, method, url string, body any, apiKey string) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	return req, nil
}

func decodeResponse(resp *http.Response, out any) error {
	switch resp.StatusCode {
	case http.StatusNotFound:
		return &Error{Kind: ErrNotFound, Message: readErrorBody(resp)}
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return &Error{Kind: ErrValidation, Message: readErrorBody(resp)}
	}
	if resp.StatusCode >= 500 {
		return &Error{Kind: ErrTransport, Message: readErrorBody(resp)}
	}
	if resp.StatusCode >= 300 {
		return &Error{Kind: ErrTransport, Message: readErrorBody(resp)}
	}
	if out == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(out); err != nil && err != io.EOF {
		return &Error{Kind: ErrTransport, Message: "decode response: " + err.Error(), Cause: err}
	}
	return nil
}

func readErrorBody(resp *http.Response) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return resp.Status
}
