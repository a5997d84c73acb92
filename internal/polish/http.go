package polish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// HTTPPolisher calls a Hugging-Face-style inference endpoint:
// POST {endpoint}/{model} with {"inputs": content}, answered by
// [{"generated_text": "..."}]. Transient failures (5xx, network) are
// retried with doubling backoff; 4xx responses fail immediately.
type HTTPPolisher struct {
	Endpoint     string
	APIKey       string
	DefaultModel string
	Client       *http.Client
	MaxAttempts  int
	Backoff      time.Duration // initial retry delay, doubled per attempt
}

func NewHTTPPolisher(endpoint, apiKey, defaultModel string) *HTTPPolisher {
	return &HTTPPolisher{
		Endpoint:     strings.TrimRight(endpoint, "/"),
		APIKey:       apiKey,
		DefaultModel: defaultModel,
		Client:       &http.Client{Timeout: 30 * time.Second},
		MaxAttempts:  3,
		Backoff:      time.Second,
	}
}

type inferenceRequest struct {
	Inputs string `json:"inputs"`
}

type inferenceResult struct {
	GeneratedText string `json:"generated_text"`
}

func (p *HTTPPolisher) Polish(ctx context.Context, content, model string) (string, error) {
	if p.APIKey == "" {
		return "", errors.New("polish api key is not configured")
	}
	if strings.TrimSpace(model) == "" {
		model = p.DefaultModel
	}
	body, err := json.Marshal(inferenceRequest{Inputs: content})
	if err != nil {
		return "", err
	}
	url := p.Endpoint + "/" + model

	backoff := p.Backoff
	if backoff <= 0 {
		backoff = time.Second
	}
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		out, retryable, err := p.once(ctx, url, body)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !retryable {
			return "", err
		}
		log.Printf("polish: attempt %d/%d against %s failed: %v", attempt, p.MaxAttempts, model, err)
		if attempt == p.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return "", lastErr
}

func (p *HTTPPolisher) once(ctx context.Context, url string, body []byte) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.APIKey)

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", true, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", true, err
	}
	if resp.StatusCode >= 500 {
		return "", true, fmt.Errorf("inference server error: %s", resp.Status)
	}
	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("inference request rejected: %s", resp.Status)
	}

	var results []inferenceResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return "", false, fmt.Errorf("decode inference response: %w", err)
	}
	if len(results) == 0 || results[0].GeneratedText == "" {
		return "", false, errors.New("inference response held no generated text")
	}
	return results[0].GeneratedText, false, nil
}
