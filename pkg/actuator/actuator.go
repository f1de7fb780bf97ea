// Package actuator provides a client for the dispenser-side queue API.
// The firmware controller polls for work, dispenses, and reports back
// through this interface.
package actuator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/canteenlab/mealqueue/internal/logger"
	"github.com/canteenlab/mealqueue/internal/models"
)

// NextJob is the poll response: either the claimed job or an empty queue.
type NextJob struct {
	HasItem bool                `json:"hasItem"`
	Item    *models.DispenseJob `json:"item,omitempty"`
	Message string              `json:"message,omitempty"`
}

// Ack is a generic success acknowledgement from the queue API
type Ack struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// apiError is the error body the queue API returns on non-2xx statuses
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"error"`
}

// Client defines the interface for dispenser-side queue operations
type Client interface {
	// PollNext claims the head-of-queue job, if any
	PollNext(ctx context.Context) (*models.DispenseJob, error)
	// Complete reports a claimed job as dispensed
	Complete(ctx context.Context, studentID string, slot models.Slot) error
	// Abandon returns a claimed job to the tail of the queue
	Abandon(ctx context.Context, studentID string, slot models.Slot, reason string) error
	// BaseURL returns the configured server URL
	BaseURL() string
	// SetBaseURL updates the server URL
	SetBaseURL(url string)
}

// HTTPClient implements Client against a running mealqueue server
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	log        logger.Logger
}

// NewHTTPClient creates a new HTTP client for the queue API
func NewHTTPClient(baseURL string, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// NewHTTPClientWithHTTPClient creates a client with a custom http.Client (for testing)
func NewHTTPClientWithHTTPClient(baseURL string, httpClient *http.Client, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: httpClient,
		log:        log,
	}
}

// BaseURL returns the configured server URL
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// SetBaseURL updates the server URL
func (c *HTTPClient) SetBaseURL(url string) {
	c.baseURL = url
}

// PollNext claims the head-of-queue job. It returns (nil, nil) when the
// queue is empty or another job is already being processed.
func (c *HTTPClient) PollNext(ctx context.Context) (*models.DispenseJob, error) {
	var next NextJob
	if err := c.doRequest(ctx, http.MethodGet, "/api/queue/next", nil, nil, &next); err != nil {
		return nil, err
	}
	if !next.HasItem {
		return nil, nil
	}
	return next.Item, nil
}

// Complete reports a claimed job as dispensed
func (c *HTTPClient) Complete(ctx context.Context, studentID string, slot models.Slot) error {
	params := jobParams(studentID, slot)
	var ack Ack
	if err := c.doRequest(ctx, http.MethodPost, "/api/queue/complete", params, nil, &ack); err != nil {
		return err
	}
	c.log.Info("Job completed", "student_id", studentID, "date", slot.Date, "type", slot.Type)
	return nil
}

// Abandon returns a claimed job to the tail of the queue
func (c *HTTPClient) Abandon(ctx context.Context, studentID string, slot models.Slot, reason string) error {
	params := jobParams(studentID, slot)
	body := map[string]string{"reason": reason}
	var resp struct {
		Success bool `json:"success"`
	}
	if err := c.doRequest(ctx, http.MethodPost, "/api/queue/abandon", params, body, &resp); err != nil {
		return err
	}
	c.log.Info("Job abandoned", "student_id", studentID, "reason", reason)
	return nil
}

// jobParams builds the (studentId, slot) query key shared by complete and abandon
func jobParams(studentID string, slot models.Slot) url.Values {
	params := url.Values{}
	params.Set("studentId", studentID)
	params.Set("date", slot.Date)
	params.Set("type", string(slot.Type))
	return params
}

// doRequest executes a request against the queue API and handles common
// error checking. Non-2xx statuses are surfaced with the server's error
// message when the body parses as an API error.
func (c *HTTPClient) doRequest(ctx context.Context, method, path string, params url.Values, reqBody interface{}, response interface{}) error {
	apiURL := c.baseURL + path
	if len(params) > 0 {
		apiURL += "?" + params.Encode()
	}

	var bodyReader io.Reader
	if reqBody != nil {
		encoded, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	c.log.Debug("Queue API request", "method", method, "url", apiURL)

	req, err := http.NewRequestWithContext(ctx, method, apiURL, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to queue server: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debug("Queue API response", "status", resp.StatusCode, "body", string(body))

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
			return fmt.Errorf("queue server error: %s (%s)", apiErr.Message, apiErr.Code)
		}
		return fmt.Errorf("queue server returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, response); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}
