package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const requestTimeout = 30 * time.Second

// apiError is returned when the server responds with a non-2xx status;
// its Message holds the body's decoded {"error": "..."} field when
// present, or the raw body otherwise.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// GetJSON issues a GET request against baseURL+path and decodes a JSON
// response body into out (ignored if nil).
func GetJSON(ctx context.Context, baseURL, path string, out any) error {
	return doJSON(ctx, http.MethodGet, baseURL, path, nil, out)
}

// PostJSON issues a POST request with body marshaled as JSON (skipped if
// nil) against baseURL+path and decodes a JSON response body into out.
func PostJSON(ctx context.Context, baseURL, path string, body, out any) error {
	return doJSON(ctx, http.MethodPost, baseURL, path, body, out)
}

func doJSON(ctx context.Context, method, baseURL, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode >= 300 {
		var decoded struct {
			Error string `json:"error"`
		}
		message := string(respBody)
		if json.Unmarshal(respBody, &decoded) == nil && decoded.Error != "" {
			message = decoded.Error
		}
		return &apiError{Status: resp.StatusCode, Message: message}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
