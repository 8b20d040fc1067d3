package freight

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/spf13/viper"

	"github.com/ordermanager/oms/internal/service/models/order"
)

// QuoteRequest describes the shipment to quote.
type QuoteRequest struct {
	DestinationCep string  `json:"destinationCep"`
	WeightKg       float64 `json:"weightKg"`
	VolumeM3       float64 `json:"volumeM3"`
}

// Quote is the freight service answer.
type Quote struct {
	PriceCents    int64             `json:"priceCents"`
	Type          order.FreightType `json:"type"`
	EstimatedDays int               `json:"estimatedDays"`
}

// Client quotes freight against the external freight service, with a
// local fallback when the service is unreachable.
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient creates a new freight client.
func NewClient() *Client {
	return NewClientWithBaseURL(viper.GetString("integrations.freight.base_url"))
}

// NewClientWithBaseURL creates a client against a specific endpoint.
func NewClientWithBaseURL(baseURL string) *Client {
	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// GetQuote obtains a freight quote. When the remote service keeps
// failing past the retry budget, a locally computed quote is returned
// so order creation does not depend on the freight service being up.
func (c *Client) GetQuote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal quote request: %w", err)
	}

	var quote Quote

	backoff := retry.WithMaxRetries(3, retry.NewExponential(250*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		httpReq, err := http.NewRequestWithContext(
			ctx,
			http.MethodPost,
			c.baseURL+"/quote",
			bytes.NewReader(payload),
		)
		if err != nil {
			return err
		}
		httpReq.Header.Set("Content-Type", "application/json")

		res, err := c.http.Do(httpReq)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer res.Body.Close()

		if res.StatusCode != http.StatusOK {
			return retry.RetryableError(fmt.Errorf("freight service returned status %d", res.StatusCode))
		}

		return json.NewDecoder(res.Body).Decode(&quote)
	})
	if err != nil {
		slog.Warn("Freight service unavailable, using fallback quote", "error", err)

		return fallbackQuote(req), nil
	}

	return &quote, nil
}

func fallbackQuote(req QuoteRequest) *Quote {
	price := 10 + req.WeightKg*2 + req.VolumeM3*50

	return &Quote{
		PriceCents:    int64(math.Round(price * 100)),
		Type:          order.FreightExpress,
		EstimatedDays: 5,
	}
}
