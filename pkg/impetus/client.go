package impetus

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// Client is the main entry point for interacting with an impetus9-backend server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Client for the given server URL.
// baseURL should be the root URL of the server, e.g., "https://reg.example.com".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// doRequest performs an HTTP request with retry logic.
// Retries up to 3 times with exponential backoff on 5xx responses or network
// errors. The body is re-created per attempt from payload.
func (c *Client) doRequest(ctx context.Context, method, path string, payload []byte) (*http.Response, error) {
	url := c.baseURL + path
	delays := []time.Duration{500 * time.Millisecond, time.Second, 2 * time.Second}

	var lastErr error
	for attempt := 0; attempt <= 3; attempt++ {
		// If not the first attempt, wait with backoff
		if attempt > 0 {
			if attempt-1 < len(delays) {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(delays[attempt-1]):
				}
			}
		}

		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, body)
		if err != nil {
			return nil, fmt.Errorf("impetus: failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			// Check for network/timeout errors — these are retryable
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				lastErr = err
				continue
			}
			var opErr *net.OpError
			if errors.As(err, &opErr) {
				lastErr = err
				continue
			}
			return nil, err
		}

		// 5xx responses are retryable (except on last attempt)
		if resp.StatusCode >= 500 && attempt < 3 {
			resp.Body.Close()
			lastErr = fmt.Errorf("impetus: server error %d", resp.StatusCode)
			continue
		}

		// Non-2xx responses after retries exhausted → APIError
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			bodyBytes, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, newAPIError(resp.StatusCode, bodyBytes)
		}

		return resp, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("impetus: request failed after retries: %w", lastErr)
	}
	return nil, fmt.Errorf("impetus: request failed after retries")
}

// Download requests the registration export for an event. On success the xlsx
// document is decoded into Result.Excel; contact cards are present only when
// the server granted full access (admin caller or first coordinator).
func (c *Client) Download(ctx context.Context, req DownloadRequest) (*DownloadResult, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("impetus: failed to encode request: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/downloads", payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var dr downloadResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return nil, fmt.Errorf("impetus: failed to decode download response: %w", err)
	}

	result := &DownloadResult{
		Message:          dr.Message,
		HasRegistrations: dr.Success,
	}
	if !dr.Success {
		return result, nil
	}

	result.Excel, err = base64.StdEncoding.DecodeString(dr.ExcelBase64)
	if err != nil {
		return nil, fmt.Errorf("impetus: failed to decode spreadsheet: %w", err)
	}
	if dr.VCF != nil {
		result.FullAccess = true
		result.VCF = *dr.VCF
	}
	return result, nil
}

// Register stores a team registration for an event.
func (c *Client) Register(ctx context.Context, reg Registration) (*CreatedRegistration, error) {
	payload, err := json.Marshal(reg)
	if err != nil {
		return nil, fmt.Errorf("impetus: failed to encode registration: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/registrations", payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var created CreatedRegistration
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("impetus: failed to decode registration response: %w", err)
	}
	return &created, nil
}
