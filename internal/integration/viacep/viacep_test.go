package viacep_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordermanager/oms/internal/integration/viacep"
)

func TestGetAddressByCep(t *testing.T) {
	t.Run("should map a known postal code to an address", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/01310100/json/", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"cep": "01310-100",
				"logradouro": "Avenida Paulista",
				"complemento": "de 612 a 1510",
				"bairro": "Bela Vista",
				"localidade": "Sao Paulo",
				"uf": "SP"
			}`))
		}))
		defer srv.Close()

		client := viacep.NewClientWithBaseURL(srv.URL)

		addr, err := client.GetAddressByCep(context.Background(), "01310-100")

		require.NoError(t, err)
		require.NotNil(t, addr)
		assert.Equal(t, "Avenida Paulista", addr.Street)
		assert.Equal(t, "Bela Vista", addr.Neighborhood)
		assert.Equal(t, "SP", addr.State)
	})

	t.Run("should return nil for an unknown postal code", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"erro": true}`))
		}))
		defer srv.Close()

		client := viacep.NewClientWithBaseURL(srv.URL)

		addr, err := client.GetAddressByCep(context.Background(), "99999999")

		require.NoError(t, err)
		assert.Nil(t, addr)
	})

	t.Run("should retry transient upstream failures", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusBadGateway)

				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"cep": "01310-100",
				"logradouro": "Avenida Paulista",
				"bairro": "Bela Vista",
				"localidade": "Sao Paulo",
				"uf": "SP"
			}`))
		}))
		defer srv.Close()

		client := viacep.NewClientWithBaseURL(srv.URL)

		addr, err := client.GetAddressByCep(context.Background(), "01310100")

		require.NoError(t, err)
		require.NotNil(t, addr)
		assert.Equal(t, int32(2), calls.Load())
	})
}
