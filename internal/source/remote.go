package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/typelit/typelit/internal/model"
)

// RemoteSource is an optional fallback passage service. Failures are
// reported as ordinary errors so the caller can fall back to the
// repository or the local generator.
type RemoteSource struct {
	client  *http.Client
	baseURL string
}

// NewRemoteSource returns a client for the passage service at baseURL.
func NewRemoteSource(baseURL string) *RemoteSource {
	return &RemoteSource{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
	}
}

type remotePassage struct {
	ID          string  `json:"id"`
	Text        string  `json:"text"`
	Difficulty  string  `json:"difficulty"`
	Grade       float64 `json:"grade"`
	Ease        float64 `json:"ease"`
	Length      int     `json:"length"`
	WordCount   int     `json:"wordCount"`
	Fingerprint string  `json:"fingerprint"`
}

type remoteResponse struct {
	Success  bool            `json:"success"`
	Passages []remotePassage `json:"passages"`
}

// FetchPassages requests up to count passages for a difficulty. A
// success:false response, a malformed payload, or a transport error
// all surface as an error with no partial result.
func (r *RemoteSource) FetchPassages(ctx context.Context, difficulty model.Difficulty, count int) ([]model.Passage, error) {
	endpoint := fmt.Sprintf("%s/passages?difficulty=%s&count=%s",
		r.baseURL, url.QueryEscape(string(difficulty)), strconv.Itoa(count))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("passage request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected passage status: %s", resp.Status)
	}

	var payload remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode passage response: %w", err)
	}
	if !payload.Success {
		return nil, fmt.Errorf("passage service reported failure")
	}

	passages := make([]model.Passage, 0, len(payload.Passages))
	for _, rp := range payload.Passages {
		if rp.ID == "" || rp.Text == "" {
			continue
		}
		passages = append(passages, model.Passage{
			ID:          rp.ID,
			Text:        rp.Text,
			Difficulty:  difficulty,
			Grade:       rp.Grade,
			Ease:        rp.Ease,
			Length:      rp.Length,
			WordCount:   rp.WordCount,
			Fingerprint: rp.Fingerprint,
		})
	}
	if len(passages) == 0 {
		return nil, fmt.Errorf("passage service returned no usable passages")
	}
	return passages, nil
}
