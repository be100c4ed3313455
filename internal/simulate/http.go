package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/poprzeczka/internal/domain/types"
	"github.com/okian/poprzeczka/pkg/logger"
)

// HTTPClient wraps http.Client with a timeout.
type HTTPClient struct {
	client *http.Client
}

func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, url string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// getJSON fetches url into v, failing on any non-200 answer.
func (c *HTTPClient) getJSON(ctx context.Context, url string, v any) error {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

type counters struct {
	submitted, accepted, duplicate, failed atomic.Int64
}

// submitBatch posts reqs concurrently and waits for all of them.
func submitBatch(ctx context.Context, cfg *Config, client *HTTPClient, reqs []types.SubmitRequest, c *counters) {
	url := fmt.Sprintf("%s/editions/%s/submissions", cfg.BaseURL, cfg.Edition)
	log := logger.OrGlobal(nil).Named("simulate")

	ch := make(chan types.SubmitRequest, cfg.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup
	for range cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for req := range ch {
				c.submitted.Add(1)
				switch outcome, err := submitOne(ctx, client, url, req); {
				case err != nil:
					c.failed.Add(1)
					if cfg.Verbose {
						log.Warn(ctx, "submission failed",
							logger.String("participant", req.Participant),
							logger.Int("day", req.Day),
							logger.Error(err))
					}
				case outcome == outcomeDuplicate:
					c.duplicate.Add(1)
				default:
					c.accepted.Add(1)
				}
			}
		}()
	}

	go func() {
		defer close(ch)
		for _, r := range reqs {
			select {
			case <-ctx.Done():
				return
			case ch <- r:
			}
		}
	}()
	wg.Wait()
}

const (
	outcomeAccepted  = "accepted"
	outcomeDuplicate = "duplicate"
)

func submitOne(ctx context.Context, client *HTTPClient, url string, req types.SubmitRequest) (string, error) {
	resp, err := client.Post(ctx, url, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	switch resp.StatusCode {
	case http.StatusCreated:
		return outcomeAccepted, nil
	case http.StatusOK:
		var res types.SubmitResult
		if err := json.Unmarshal(body, &res); err == nil && res.Duplicate {
			return outcomeDuplicate, nil
		}
		return outcomeAccepted, nil
	default:
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}
}
