package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Sender delivers one rendered email. Implemented by the mail relay client;
// faked in tests.
type Sender interface {
	Send(ctx context.Context, to, name, template string, data map[string]any) error
}

// RelayClient posts send requests to the transactional mail relay. The relay
// does templating and actual SMTP; we get back only an accepted/rejected.
type RelayClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewRelayClient(baseURL string, timeout time.Duration) *RelayClient {
	return &RelayClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *RelayClient) Send(ctx context.Context, to, name, template string, data map[string]any) error {
	body, err := json.Marshal(map[string]any{
		"to":       to,
		"name":     name,
		"template": template,
		"data":     data,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/send", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("mail relay returned status %d", resp.StatusCode)
	}
	return nil
}
