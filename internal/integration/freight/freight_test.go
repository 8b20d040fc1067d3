package freight_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordermanager/oms/internal/integration/freight"
	"github.com/ordermanager/oms/internal/service/models/order"
)

func TestGetQuote(t *testing.T) {
	t.Run("should return the remote quote", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/quote", r.URL.Path)

			var req freight.QuoteRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "01310100", req.DestinationCep)

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"priceCents": 2500, "type": "PAC", "estimatedDays": 7}`))
		}))
		defer srv.Close()

		client := freight.NewClientWithBaseURL(srv.URL)

		quote, err := client.GetQuote(context.Background(), freight.QuoteRequest{
			DestinationCep: "01310100",
			WeightKg:       1,
			VolumeM3:       0.01,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(2500), quote.PriceCents)
		assert.Equal(t, order.FreightPAC, quote.Type)
		assert.Equal(t, 7, quote.EstimatedDays)
	})

	t.Run("should fall back to a local quote when the service keeps failing", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		client := freight.NewClientWithBaseURL(srv.URL)

		quote, err := client.GetQuote(context.Background(), freight.QuoteRequest{
			DestinationCep: "01310100",
			WeightKg:       1,
			VolumeM3:       0.01,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(1250), quote.PriceCents)
		assert.Equal(t, order.FreightExpress, quote.Type)
		assert.Equal(t, 5, quote.EstimatedDays)
	})
}
