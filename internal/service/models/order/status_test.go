package order_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordermanager/oms/internal/errs"
	"github.com/ordermanager/oms/internal/service/models/order"
)

func TestParseStatus(t *testing.T) {
	t.Run("should accept every known status", func(t *testing.T) {
		for _, s := range []string{"Pending", "Paid", "Processing", "Shipped", "Completed", "Cancelled", "Rejected"} {
			parsed, err := order.ParseStatus(s)

			require.NoError(t, err)
			assert.Equal(t, s, parsed.String())
		}
	})

	t.Run("should reject unknown status", func(t *testing.T) {
		_, err := order.ParseStatus("Delivered")

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrInvalidArgument)
	})

	t.Run("should be case sensitive", func(t *testing.T) {
		_, err := order.ParseStatus("pending")

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrInvalidArgument)
	})
}

func TestParsePaymentStatus(t *testing.T) {
	t.Run("should accept every known payment status", func(t *testing.T) {
		for _, s := range []string{"Pending", "Authorized", "Paid", "Refused", "Refunded"} {
			parsed, err := order.ParsePaymentStatus(s)

			require.NoError(t, err)
			assert.Equal(t, s, parsed.String())
		}
	})

	t.Run("should reject unknown payment status", func(t *testing.T) {
		_, err := order.ParsePaymentStatus("Chargeback")

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrInvalidArgument)
	})
}

func TestParseFreightType(t *testing.T) {
	t.Run("should accept known freight types", func(t *testing.T) {
		for _, s := range []string{"PAC", "Express"} {
			parsed, err := order.ParseFreightType(s)

			require.NoError(t, err)
			assert.Equal(t, s, parsed.String())
		}
	})

	t.Run("should reject unknown freight type", func(t *testing.T) {
		_, err := order.ParseFreightType("Drone")

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrInvalidArgument)
	})
}
