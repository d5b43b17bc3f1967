package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"voxpense/capture"
	"voxpense/encoder"
	"voxpense/log"
)

// Client is the HTTP implementation of the extraction collaborator.
type Client struct {
	apiURL string
	apiKey string
	client *TracedClient
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		apiURL: strings.TrimRight(baseURL, "/") + "/v1/voice/extract",
		apiKey: apiKey,
		client: NewTracedClient(),
	}
}

func (c *Client) Name() string { return "voxpense-api" }

// Accepted lists the payload encodings the collaborator takes.
func (c *Client) Accepted() []string {
	return []string{encoder.MIMEFlac, encoder.MIMEWav}
}

type extractResponse struct {
	Amount          json.Number `json:"amount"`
	Merchant        string      `json:"merchant"`
	Category        string      `json:"category"`
	TranscribedText string      `json:"transcribed_text"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) Extract(ctx context.Context, p capture.Payload, lang string) (*Result, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "utterance."+extensionFor(p.MIME))
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(p.Bytes); err != nil {
		return nil, err
	}
	writer.WriteField("language", lang)
	writer.WriteField("mime_type", p.MIME)
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submitting audio: %w", err)
	}

	if resp.StatusCode == http.StatusUnprocessableEntity {
		var er errorResponse
		if err := json.Unmarshal(resp.Body, &er); err == nil && er.Error.Message != "" {
			return nil, &SemanticError{Code: er.Error.Code, Message: er.Error.Message}
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("extraction API error %d: %s", resp.StatusCode, resp.Body)
	}

	var raw extractResponse
	if err := json.Unmarshal(resp.Body, &raw); err != nil {
		return nil, fmt.Errorf("extraction response parse error: %w", err)
	}
	// the collaborator sends amount as either a number or a quoted string
	amount, err := raw.Amount.Float64()
	if err != nil {
		return nil, fmt.Errorf("malformed amount %q in extraction response", raw.Amount)
	}
	if raw.Merchant == "" {
		return nil, fmt.Errorf("extraction response missing merchant")
	}

	log.Extraction(p.MIME, len(p.Bytes), p.Duration.Seconds(),
		resp.Metrics.Total.Milliseconds(), resp.Metrics.ConnReused)

	return &Result{
		Amount:          amount,
		Merchant:        raw.Merchant,
		Category:        raw.Category,
		TranscribedText: raw.TranscribedText,
	}, nil
}

func extensionFor(mime string) string {
	if mime == encoder.MIMEWav {
		return "wav"
	}
	return "flac"
}
