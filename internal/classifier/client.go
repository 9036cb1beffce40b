package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/halcyon-labs/dermatrack/internal/models"
	"github.com/sony/gobreaker"
)

var (
	ErrClassifierUnavailable = errors.New("classifier unavailable")
	ErrMalformedResponse     = errors.New("malformed classifier response")
)

// Client talks to the remote skin-condition inference endpoint. A
// failing endpoint trips the breaker so callers fail fast instead of
// stacking timeouts; the core never retries classifier calls.
type Client struct {
	endpoint string
	client   *http.Client
	breaker  *gobreaker.CircuitBreaker
}

func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "classifier",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

// Detect sends one image and returns the structured diagnosis. Any
// non-2xx status or undecodable body is a hard failure for the
// request; no partial result is returned.
func (client *Client) Detect(ctx context.Context, fileName string, image io.Reader) (models.Diagnosis, error) {
	result, err := client.breaker.Execute(func() (any, error) {
		return client.detect(ctx, fileName, image)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return models.Diagnosis{}, fmt.Errorf("%w: circuit open", ErrClassifierUnavailable)
		}
		return models.Diagnosis{}, err
	}
	return result.(models.Diagnosis), nil
}

func (client *Client) detect(ctx context.Context, fileName string, image io.Reader) (models.Diagnosis, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return models.Diagnosis{}, fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return models.Diagnosis{}, fmt.Errorf("copy image payload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return models.Diagnosis{}, fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, client.endpoint, &body)
	if err != nil {
		return models.Diagnosis{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := client.client.Do(req)
	if err != nil {
		return models.Diagnosis{}, fmt.Errorf("%w: %v", ErrClassifierUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return models.Diagnosis{}, fmt.Errorf("%w: status %d: %s", ErrClassifierUnavailable, resp.StatusCode, string(snippet))
	}

	var diagnosis models.Diagnosis
	if err := json.NewDecoder(resp.Body).Decode(&diagnosis); err != nil {
		return models.Diagnosis{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if diagnosis.DiseaseName == "" {
		return models.Diagnosis{}, fmt.Errorf("%w: missing disease_name", ErrMalformedResponse)
	}

	return diagnosis, nil
}
