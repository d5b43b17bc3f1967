package expense

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client is the HTTP implementation of the persistence collaborator.
type Client struct {
	apiURL string
	apiKey string
	client *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		apiURL: strings.TrimRight(baseURL, "/") + "/v1/expenses",
		apiKey: apiKey,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

type validationResponse struct {
	Error struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) Create(ctx context.Context, r Record) (Saved, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return Saved{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return Saved{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.client.Do(req)
	if err != nil {
		return Saved{}, fmt.Errorf("submitting expense: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		var saved Saved
		if err := json.NewDecoder(resp.Body).Decode(&saved); err != nil {
			return Saved{}, fmt.Errorf("expense response parse error: %w", err)
		}
		return saved, nil
	case http.StatusBadRequest:
		var vr validationResponse
		if err := json.NewDecoder(resp.Body).Decode(&vr); err == nil && vr.Error.Message != "" {
			return Saved{}, &ValidationError{Field: vr.Error.Field, Message: vr.Error.Message}
		}
		return Saved{}, fmt.Errorf("expense API rejected the record")
	default:
		return Saved{}, fmt.Errorf("expense API error %d", resp.StatusCode)
	}
}
