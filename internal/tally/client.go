package tally

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a thin wrapper around the Tally forms and submissions API,
// authenticated with a static bearer key. No retries: callers decide.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// Form describes a Tally form as returned by the list endpoint
type Form struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// Submission is one response to a form. Fields is a free-form bag keyed by
// whatever labels the form was built with.
type Submission struct {
	ID        string                 `json:"id"`
	CreatedAt time.Time              `json:"createdAt"`
	Fields    map[string]interface{} `json:"fields"`
}

type formsResponse struct {
	Data []Form `json:"data"`
}

type submissionsResponse struct {
	Data []Submission `json:"data"`
}

// NewClient creates a Tally API client
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// ListForms fetches all forms visible to the API key
func (c *Client) ListForms(ctx context.Context) ([]Form, error) {
	var resp formsResponse
	if err := c.get(ctx, "/forms", &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// ListSubmissions fetches all submissions for a form
func (c *Client) ListSubmissions(ctx context.Context, formID string) ([]Submission, error) {
	var resp submissionsResponse
	if err := c.get(ctx, fmt.Sprintf("/forms/%s/submissions", formID), &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("tally API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("tally API response read failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("tally API error: %d %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("tally API response parse failed: %w", err)
	}

	return nil
}
