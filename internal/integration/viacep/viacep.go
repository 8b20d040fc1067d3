package viacep

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/spf13/viper"

	"github.com/ordermanager/oms/internal/service/models/address"
)

// response is the ViaCep wire format.
type response struct {
	Cep         string `json:"cep"`
	Logradouro  string `json:"logradouro"`
	Complemento string `json:"complemento"`
	Bairro      string `json:"bairro"`
	Localidade  string `json:"localidade"`
	Uf          string `json:"uf"`
	Erro        bool   `json:"erro"`
}

// Client looks up addresses by postal code against the ViaCep API.
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient creates a new ViaCep client.
func NewClient() *Client {
	baseURL := viper.GetString("integrations.viacep.base_url")
	if baseURL == "" {
		baseURL = "https://viacep.com.br/ws"
	}

	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// NewClientWithBaseURL creates a client against a specific endpoint.
func NewClientWithBaseURL(baseURL string) *Client {
	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// GetAddressByCep resolves a postal code to an address. Returns
// (nil, nil) when the code resolves to nothing. Transient upstream
// failures are retried with exponential backoff before giving up.
func (c *Client) GetAddressByCep(ctx context.Context, cep string) (*address.Address, error) {
	digits := onlyDigits(cep)
	url := fmt.Sprintf("%s/%s/json/", c.baseURL, digits)

	var body response
	var notFound bool

	backoff := retry.WithMaxRetries(3, retry.NewExponential(250*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}

		res, err := c.http.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer res.Body.Close()

		if res.StatusCode >= http.StatusInternalServerError {
			return retry.RetryableError(fmt.Errorf("viacep returned status %d", res.StatusCode))
		}
		if res.StatusCode != http.StatusOK {
			notFound = true

			return nil
		}

		return json.NewDecoder(res.Body).Decode(&body)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to look up cep %s: %w", digits, err)
	}

	// ViaCep answers 200 with an erro flag for well-formed but unknown codes.
	if notFound || body.Erro {
		return nil, nil
	}

	return address.New(
		body.Cep,
		body.Logradouro,
		body.Complemento,
		body.Bairro,
		body.Localidade,
		body.Uf,
	)
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	return b.String()
}
