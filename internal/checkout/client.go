// Package checkout creates payment-provider checkouts for the paid plan.
//
// The provider is Lemon Squeezy; its failures are reported to callers as an
// opaque error, upstream diagnostics stay in the server log.
package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrProviderUnavailable is the only error callers see for provider-side
// failures.
var ErrProviderUnavailable = errors.New("checkout provider unavailable")

// Checkout is the provider-generated checkout handed back to the caller.
type Checkout struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Client creates checkouts via the Lemon Squeezy API.
type Client struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	storeID    string
}

// NewClient creates a Lemon Squeezy checkout client.
func NewClient(apiURL, apiKey, storeID string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		apiURL:  strings.TrimRight(apiURL, "/"),
		apiKey:  apiKey,
		storeID: storeID,
	}
}

type checkoutPayload struct {
	Data checkoutData `json:"data"`
}

type checkoutData struct {
	Type          string                `json:"type"`
	Relationships checkoutRelationships `json:"relationships"`
}

type checkoutRelationships struct {
	Store   relationship `json:"store"`
	Variant relationship `json:"variant"`
}

type relationship struct {
	Data relationshipData `json:"data"`
}

type relationshipData struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type checkoutResponse struct {
	Data struct {
		ID         string `json:"id"`
		Attributes struct {
			URL string `json:"url"`
		} `json:"attributes"`
	} `json:"data"`
}

// CreateCheckout creates a checkout for the given product variant.
func (c *Client) CreateCheckout(ctx context.Context, variantID string) (*Checkout, error) {
	if strings.TrimSpace(variantID) == "" {
		return nil, errors.New("variantId is required")
	}

	payload := checkoutPayload{
		Data: checkoutData{
			Type: "checkouts",
			Relationships: checkoutRelationships{
				Store:   relationship{Data: relationshipData{Type: "stores", ID: c.storeID}},
				Variant: relationship{Data: relationshipData{Type: "variants", ID: variantID}},
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode checkout payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/checkouts", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.api+json")
	req.Header.Set("Content-Type", "application/vnd.api+json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	var result checkoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: malformed response", ErrProviderUnavailable)
	}
	if result.Data.Attributes.URL == "" {
		return nil, fmt.Errorf("%w: response missing checkout url", ErrProviderUnavailable)
	}

	return &Checkout{
		ID:  result.Data.ID,
		URL: result.Data.Attributes.URL,
	}, nil
}
