// Package humand is the client for the Humand time-tracking API.
package humand

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/PratikDhanave/badge-clock-relay/internal/models"
)

const (
	clockInPath  = "/public/api/v1/time-tracking/entries/clockIn"
	clockOutPath = "/public/api/v1/time-tracking/entries/clockOut"

	// Comment is attached to every entry so HR can tell relayed entries apart.
	Comment = "Integración HikCentral"

	maxErrorBody = 4 << 10
)

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("humand returned %d: %s", e.StatusCode, e.Body)
}

// HTTPStatus exposes the response status to callers that only know the
// error interface.
func (e *StatusError) HTTPStatus() int { return e.StatusCode }

type entryRequest struct {
	EmployeeID string `json:"employeeId"`
	Now        string `json:"now"`
	Comment    string `json:"comment"`
}

// Client posts clock-in and clock-out entries. In dry-run mode it only logs.
type Client struct {
	baseURL    string
	token      string
	dryRun     bool
	httpClient *http.Client
}

func NewClient(baseURL, token string, dryRun bool, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		dryRun:     dryRun,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// DryRun reports whether deliveries are simulated.
func (c *Client) DryRun() bool { return c.dryRun }

// Deliver records ev as a clock-in or clock-out for its subject.
func (c *Client) Deliver(ctx context.Context, ev models.DirectionalEvent) (models.DeliveryResult, error) {
	if c.dryRun {
		log.Printf("[DRY-RUN] %s | subject %s | %s", ev.Kind, ev.SubjectID, ev.Timestamp)
		return models.DeliveryResult{DryRun: true}, nil
	}

	path, err := endpoint(ev.Kind)
	if err != nil {
		return models.DeliveryResult{}, err
	}

	body, err := json.Marshal(entryRequest{
		EmployeeID: ev.SubjectID,
		Now:        ev.Timestamp,
		Comment:    Comment,
	})
	if err != nil {
		return models.DeliveryResult{}, fmt.Errorf("encode entry: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return models.DeliveryResult{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Basic "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.DeliveryResult{}, fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return models.DeliveryResult{StatusCode: resp.StatusCode}, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(b)),
		}
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	return models.DeliveryResult{StatusCode: resp.StatusCode}, nil
}

func endpoint(kind models.Kind) (string, error) {
	switch kind {
	case models.ClockIn:
		return clockInPath, nil
	case models.ClockOut:
		return clockOutPath, nil
	default:
		return "", fmt.Errorf("unknown event kind %q", kind)
	}
}
