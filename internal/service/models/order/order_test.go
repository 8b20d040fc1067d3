package order_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordermanager/oms/internal/errs"
	"github.com/ordermanager/oms/internal/service/models/address"
	"github.com/ordermanager/oms/internal/service/models/order"
	"github.com/ordermanager/oms/internal/service/models/orderitem"
)

func mustItem(t *testing.T, sku string, quantity int, unitPriceCents int64) orderitem.OrderItem {
	t.Helper()

	item, err := orderitem.New(sku, "item "+sku, quantity, unitPriceCents)
	require.NoError(t, err)

	return *item
}

func TestNew(t *testing.T) {
	customerID := uuid.New()

	o := order.New(customerID, "Ana Souza", "ana@example.com")

	assert.NotEqual(t, uuid.Nil, o.ID)
	assert.Equal(t, customerID, o.CustomerID)
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, order.PaymentPending, o.PaymentStatus)
	assert.Empty(t, o.OrderItems)
	assert.Zero(t, o.TotalCents)
}

func TestAddItem(t *testing.T) {
	o := order.New(uuid.New(), "Ana Souza", "ana@example.com")

	o.AddItem(mustItem(t, "SKU1", 2, 1000))

	require.Len(t, o.OrderItems, 1)
	assert.Equal(t, o.ID, o.OrderItems[0].OrderID)
}

func TestRecalculateTotal(t *testing.T) {
	t.Run("should sum line totals over all items", func(t *testing.T) {
		o := order.New(uuid.New(), "Ana Souza", "ana@example.com")
		o.AddItem(mustItem(t, "SKU1", 2, 1000))
		o.AddItem(mustItem(t, "SKU2", 3, 500))

		o.RecalculateTotal()

		assert.Equal(t, int64(3500), o.TotalCents)
	})

	t.Run("should reset total when items are cleared", func(t *testing.T) {
		o := order.New(uuid.New(), "Ana Souza", "ana@example.com")
		o.AddItem(mustItem(t, "SKU1", 2, 1000))
		o.RecalculateTotal()

		o.ClearItems()
		o.RecalculateTotal()

		assert.Zero(t, o.TotalCents)
	})
}

func TestSetItems(t *testing.T) {
	o := order.New(uuid.New(), "Ana Souza", "ana@example.com")
	o.AddItem(mustItem(t, "OLD", 1, 100))

	o.SetItems([]orderitem.OrderItem{
		mustItem(t, "NEW1", 1, 200),
		mustItem(t, "NEW2", 2, 300),
	})
	o.RecalculateTotal()

	require.Len(t, o.OrderItems, 2)
	assert.Equal(t, "NEW1", o.OrderItems[0].Sku)
	assert.Equal(t, o.ID, o.OrderItems[1].OrderID)
	assert.Equal(t, int64(800), o.TotalCents)
}

func TestSetShippingAddress(t *testing.T) {
	o := order.New(uuid.New(), "Ana Souza", "ana@example.com")

	t.Run("should reject nil address", func(t *testing.T) {
		err := o.SetShippingAddress(nil)

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrInvalidArgument)
	})

	t.Run("should attach a valid address", func(t *testing.T) {
		addr, err := address.New("01310100", "Av. Paulista", "", "Bela Vista", "Sao Paulo", "SP")
		require.NoError(t, err)

		require.NoError(t, o.SetShippingAddress(addr))
		assert.Equal(t, addr, o.ShippingAddress)
	})
}

func TestSetFreight(t *testing.T) {
	o := order.New(uuid.New(), "Ana Souza", "ana@example.com")

	t.Run("should reject negative cost", func(t *testing.T) {
		err := o.SetFreight(-1, order.FreightExpress, 3)

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrInvalidArgument)
	})

	t.Run("should record the quote", func(t *testing.T) {
		require.NoError(t, o.SetFreight(2500, order.FreightPAC, 7))

		assert.Equal(t, int64(2500), o.FreightCostCents)
		assert.Equal(t, order.FreightPAC, o.FreightType)
		assert.Equal(t, 7, o.EstimatedDeliveryDays)
	})
}

func TestCancel(t *testing.T) {
	t.Run("should cancel a pending order", func(t *testing.T) {
		o := order.New(uuid.New(), "Ana Souza", "ana@example.com")

		require.NoError(t, o.Cancel("customer request"))
		assert.Equal(t, order.StatusCancelled, o.Status)
	})

	t.Run("should cancel a shipped order", func(t *testing.T) {
		o := order.New(uuid.New(), "Ana Souza", "ana@example.com")
		o.UpdateStatus(order.StatusShipped)

		require.NoError(t, o.Cancel(""))
		assert.Equal(t, order.StatusCancelled, o.Status)
	})

	t.Run("should reject cancelling a completed order", func(t *testing.T) {
		o := order.New(uuid.New(), "Ana Souza", "ana@example.com")
		o.UpdateStatus(order.StatusCompleted)

		err := o.Cancel("")

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrInvalidOperation)
		assert.Equal(t, order.StatusCompleted, o.Status)
	})

	t.Run("should reject cancelling twice", func(t *testing.T) {
		o := order.New(uuid.New(), "Ana Souza", "ana@example.com")
		require.NoError(t, o.Cancel(""))

		err := o.Cancel("")

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrInvalidOperation)
	})
}

func TestUpdateStatusIndependence(t *testing.T) {
	o := order.New(uuid.New(), "Ana Souza", "ana@example.com")

	o.UpdateStatus(order.StatusShipped)
	o.UpdatePaymentStatus(order.PaymentRefused)

	assert.Equal(t, order.StatusShipped, o.Status)
	assert.Equal(t, order.PaymentRefused, o.PaymentStatus)
}

func TestUpdateCustomerName(t *testing.T) {
	o := order.New(uuid.New(), "Ana Souza", "ana@example.com")

	t.Run("should reject empty name", func(t *testing.T) {
		err := o.UpdateCustomerName("")

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrInvalidArgument)
	})

	t.Run("should replace the name", func(t *testing.T) {
		require.NoError(t, o.UpdateCustomerName("Ana Lima"))
		assert.Equal(t, "Ana Lima", o.CustomerName)
	})
}
