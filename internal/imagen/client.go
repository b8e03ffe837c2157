// Package imagen is a client for the external image generation API.
// The API accepts a multipart request with the source photo and prompt
// and either returns result URLs directly or a task ID that must be
// polled until the task reaches a terminal state.
package imagen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"
)

var (
	// ErrNoResults is returned when a completed task carries no images.
	ErrNoResults = errors.New("imagen: completed task returned no images")
	// ErrTaskFailed is returned when the remote task ends in failure.
	ErrTaskFailed = errors.New("imagen: task failed")
	// ErrPollTimeout is returned when the task does not finish before
	// the poll deadline.
	ErrPollTimeout = errors.New("imagen: poll deadline exceeded")
)

// Task states reported by the generation API.
const (
	statusCompleted = "COMPLETED"
	statusFailed    = "FAILED"
	statusCancelled = "CANCELLED"
)

// Request describes one generation call.
type Request struct {
	ImageData []byte // source photo bytes
	Filename  string
	Prompt    string
	Location  string // optional context hint passed through to the API
}

// Client calls the image generation API.
type Client struct {
	endpoint     string
	apiKey       string
	httpClient   *http.Client
	pollInterval time.Duration
	pollDeadline time.Duration
	logger       *slog.Logger
}

// NewClient creates a generation API client.
func NewClient(endpoint, apiKey string, pollInterval, pollDeadline time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		endpoint:     endpoint,
		apiKey:       apiKey,
		httpClient:   &http.Client{Timeout: 2 * time.Minute},
		pollInterval: pollInterval,
		pollDeadline: pollDeadline,
		logger:       logger,
	}
}

// generateResponse is the initial API response. Either ImageURLs is
// populated (synchronous mode) or TaskID points at a pollable task.
type generateResponse struct {
	ImageURLs []string `json:"image_urls"`
	TaskID    string   `json:"task_id"`
}

type taskStatusResponse struct {
	Status    string   `json:"status"`
	ImageURLs []string `json:"image_urls"`
	Error     string   `json:"error"`
}

// Generate submits the photo and prompt and returns the generated
// image URLs, polling the task to completion when the API responds
// asynchronously.
func (c *Client) Generate(ctx context.Context, req *Request) ([]string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("image", req.Filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(req.ImageData); err != nil {
		return nil, fmt.Errorf("failed to write image part: %w", err)
	}
	if err := writer.WriteField("prompt", req.Prompt); err != nil {
		return nil, fmt.Errorf("failed to write prompt field: %w", err)
	}
	if req.Location != "" {
		if err := writer.WriteField("location", req.Location); err != nil {
			return nil, fmt.Errorf("failed to write location field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/generate", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("generation request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("generation request returned status %d: %s", resp.StatusCode, string(data))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, fmt.Errorf("failed to decode generation response: %w", err)
	}

	if len(genResp.ImageURLs) > 0 {
		return genResp.ImageURLs, nil
	}
	if genResp.TaskID == "" {
		return nil, ErrNoResults
	}

	return c.pollTask(ctx, genResp.TaskID)
}

// pollTask polls the task until it completes, fails, is cancelled, or
// the deadline passes.
func (c *Client) pollTask(ctx context.Context, taskID string) ([]string, error) {
	deadline := time.Now().Add(c.pollDeadline)
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		if time.Now().After(deadline) {
			return nil, ErrPollTimeout
		}

		status, err := c.getTaskStatus(ctx, taskID)
		if err != nil {
			// Transient poll errors are retried until the deadline.
			c.logger.Warn("task status poll failed", "task_id", taskID, "error", err)
			continue
		}

		switch status.Status {
		case statusCompleted:
			if len(status.ImageURLs) == 0 {
				return nil, ErrNoResults
			}
			return status.ImageURLs, nil
		case statusFailed, statusCancelled:
			if status.Error != "" {
				return nil, fmt.Errorf("%w: %s", ErrTaskFailed, status.Error)
			}
			return nil, ErrTaskFailed
		}
	}
}

func (c *Client) getTaskStatus(ctx context.Context, taskID string) (*taskStatusResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/tasks/"+taskID, nil)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("task status returned %d", resp.StatusCode)
	}

	var status taskStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, err
	}
	return &status, nil
}
