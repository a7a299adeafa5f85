package classes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gojek/heimdall/v7"

	"github.com/ritmofit/cupos/pkg/request"
	"github.com/ritmofit/cupos/pkg/request/httpclient"
)

const (
	serviceName = "classes"
	classesPath = "/api/clases"
)

// NewClient creates a catalog client backed by a hystrix heimdall client
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("classes configuration is missing required field: baseURL")
	}

	client, err := httpclient.InitializeClient(
		serviceName,
		cfg.ConnPool,
		cfg.Hystrix,
		heimdall.NewRetrier(heimdall.NewConstantBackoff(100*time.Millisecond, 50*time.Millisecond)),
		cfg.RetryCount,
		nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize http client: %w", err)
	}

	return NewClientWithDoer(cfg, client), nil
}

// NewClientWithDoer wraps an existing heimdall.Doer
func NewClientWithDoer(cfg Config, doer heimdall.Doer) *Client {
	return &Client{
		client:   doer,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiToken: cfg.APIToken,
	}
}

// ListClasses fetches every class of the catalog.
// Both a bare JSON array and an object with a "clases" or "data" array are accepted.
func (c *Client) ListClasses(ctx context.Context) ([]Class, error) {
	req, err := request.NewRequest(ctx, http.MethodGet, c.baseURL+classesPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	headers := map[string]string{"Accept": "application/json"}
	if c.apiToken != "" {
		headers["Authorization"] = "Bearer " + c.apiToken
	}
	req.SetHeaders(headers)

	body, statusCode, err := req.MakeRequest(c.client, "classes.ListClasses", serviceName)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if statusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d, response: %s", statusCode, string(body))
	}

	return decodeClasses(body)
}

func decodeClasses(body []byte) ([]Class, error) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var list []Class
		if err := json.Unmarshal(body, &list); err != nil {
			return nil, fmt.Errorf("failed to unmarshal classes: %w", err)
		}
		return list, nil
	}

	var envelope struct {
		Clases []Class `json:"clases"`
		Data   []Class `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal classes: %w", err)
	}
	if envelope.Clases != nil {
		return envelope.Clases, nil
	}
	if envelope.Data != nil {
		return envelope.Data, nil
	}
	return []Class{}, nil
}
