package matching

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/lost2found/backend/internal/models"
)

// Match is one scored candidate returned by the AI service.
type Match struct {
	ItemID string  `json:"item_id"`
	Score  float64 `json:"score"` // 0-100
	Reason string  `json:"reason"`
}

// itemPayload is the item shape the AI service expects.
type itemPayload struct {
	ID          string   `json:"id,omitempty"`
	Labels      []string `json:"labels"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Location    string   `json:"location"`
	Date        string   `json:"date"`
}

func toPayload(item *models.Item) itemPayload {
	labels := item.Labels
	if labels == nil {
		labels = []string{}
	}
	return itemPayload{
		ID:          item.ID,
		Labels:      labels,
		Description: item.Description,
		Category:    item.Category,
		Location:    item.Location,
		Date:        item.Date,
	}
}

// Client talks to the external AI matching service.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for the service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// MatchItems scores candidates against the target item.
func (c *Client) MatchItems(ctx context.Context, target *models.Item, candidates []models.Item) ([]Match, error) {
	candidatePayloads := make([]itemPayload, 0, len(candidates))
	for i := range candidates {
		candidatePayloads = append(candidatePayloads, toPayload(&candidates[i]))
	}

	body, err := json.Marshal(map[string]any{
		"target_item": toPayload(target),
		"candidates":  candidatePayloads,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/match-items", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("matching service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("matching service returned status %d", resp.StatusCode)
	}

	var out struct {
		Matches []Match `json:"matches"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding matching response: %w", err)
	}
	return out.Matches, nil
}
