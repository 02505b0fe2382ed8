package orders

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/secufur/commerce-api/internal/database"
	"github.com/secufur/commerce-api/internal/events"
	"github.com/secufur/commerce-api/internal/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	return db
}

func seedBuyer(t *testing.T, db *gorm.DB) (userID, addressID string) {
	t.Helper()
	userID = uuid.New().String()
	require.NoError(t, db.Create(&types.User{
		UserID: userID,
		Name:   "Test Buyer",
		Email:  "buyer@test.local",
		Role:   types.RoleBuyer,
	}).Error)

	addressID = uuid.New().String()
	require.NoError(t, db.Create(&types.Address{
		AddressID: addressID,
		UserID:    userID,
		Line1:     "1 Test Street",
		City:      "Pune",
		State:     "Maharashtra",
		Pincode:   "411001",
	}).Error)
	return userID, addressID
}

func seedProduct(t *testing.T, db *gorm.DB, price float64, stock int) string {
	t.Helper()
	productID := uuid.New().String()
	require.NoError(t, db.Create(&types.Product{
		ProductID: productID,
		SellerID:  uuid.New().String(),
		Name:      "Test Product",
		Category:  "test",
		Price:     price,
		Stock:     stock,
		IsActive:  true,
		Status:    types.ProductStatusLive,
	}).Error)
	return productID
}

func TestCreateOrder(t *testing.T) {
	t.Run("creates order with pending payment and items", func(t *testing.T) {
		db := newTestDB(t)
		userID, addressID := seedBuyer(t, db)
		productID := seedProduct(t, db, 250, 10)

		service := NewService(db, events.NoopPublisher{})
		order, err := service.CreateOrder(userID, &CreateOrderRequest{
			Items:             []OrderLine{{ProductID: productID, Quantity: 2}},
			ShippingAddressID: addressID,
			TotalAmount:       500,
		}, "")
		require.NoError(t, err)

		assert.Equal(t, types.OrderStatusPending, order.Status)
		assert.Equal(t, 500.0, order.TotalAmount)
		assert.Equal(t, "INR", order.Currency)
		require.Len(t, order.Items, 1)
		assert.Equal(t, 250.0, order.Items[0].Price)

		// Payment row created in the same transaction
		var payment types.Payment
		require.NoError(t, db.Where("order_id = ?", order.OrderID).First(&payment).Error)
		assert.Equal(t, types.PaymentStatusPending, payment.Status)
		assert.Equal(t, 500.0, payment.Amount)

		// Stock reserved but not consumed
		var product types.Product
		require.NoError(t, db.Where("product_id = ?", productID).First(&product).Error)
		assert.Equal(t, 10, product.Stock)
		assert.Equal(t, 2, product.ReservedStock)
	})

	t.Run("rejects empty cart", func(t *testing.T) {
		db := newTestDB(t)
		userID, addressID := seedBuyer(t, db)

		service := NewService(db, nil)
		_, err := service.CreateOrder(userID, &CreateOrderRequest{
			Items:             nil,
			ShippingAddressID: addressID,
			TotalAmount:       100,
		}, "")
		assert.ErrorIs(t, err, types.ErrValidation)

		var count int64
		require.NoError(t, db.Model(&types.Order{}).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("rejects address belonging to another user", func(t *testing.T) {
		db := newTestDB(t)
		userID, _ := seedBuyer(t, db)
		productID := seedProduct(t, db, 100, 5)

		otherAddress := uuid.New().String()
		require.NoError(t, db.Create(&types.Address{
			AddressID: otherAddress,
			UserID:    uuid.New().String(),
			Line1:     "2 Other Street",
		}).Error)

		service := NewService(db, nil)
		_, err := service.CreateOrder(userID, &CreateOrderRequest{
			Items:             []OrderLine{{ProductID: productID, Quantity: 1}},
			ShippingAddressID: otherAddress,
			TotalAmount:       100,
		}, "")
		assert.ErrorIs(t, err, types.ErrValidation)
	})

	t.Run("rejects mismatched total", func(t *testing.T) {
		db := newTestDB(t)
		userID, addressID := seedBuyer(t, db)
		productID := seedProduct(t, db, 250, 10)

		service := NewService(db, nil)
		_, err := service.CreateOrder(userID, &CreateOrderRequest{
			Items:             []OrderLine{{ProductID: productID, Quantity: 2}},
			ShippingAddressID: addressID,
			TotalAmount:       450, // catalog says 500
		}, "")
		assert.ErrorIs(t, err, types.ErrValidation)
	})

	t.Run("ignores client-supplied line price", func(t *testing.T) {
		db := newTestDB(t)
		userID, addressID := seedBuyer(t, db)
		productID := seedProduct(t, db, 250, 10)

		service := NewService(db, nil)
		order, err := service.CreateOrder(userID, &CreateOrderRequest{
			Items:             []OrderLine{{ProductID: productID, Quantity: 2, Price: 1}},
			ShippingAddressID: addressID,
			TotalAmount:       500,
		}, "")
		require.NoError(t, err)
		assert.Equal(t, 250.0, order.Items[0].Price)
	})

	t.Run("rejects inactive product", func(t *testing.T) {
		db := newTestDB(t)
		userID, addressID := seedBuyer(t, db)
		productID := seedProduct(t, db, 100, 5)
		require.NoError(t, db.Model(&types.Product{}).
			Where("product_id = ?", productID).
			Update("is_active", false).Error)

		service := NewService(db, nil)
		_, err := service.CreateOrder(userID, &CreateOrderRequest{
			Items:             []OrderLine{{ProductID: productID, Quantity: 1}},
			ShippingAddressID: addressID,
			TotalAmount:       100,
		}, "")
		assert.ErrorIs(t, err, types.ErrValidation)
	})

	t.Run("rejects quantity above available stock", func(t *testing.T) {
		db := newTestDB(t)
		userID, addressID := seedBuyer(t, db)
		productID := seedProduct(t, db, 100, 3)

		service := NewService(db, nil)
		_, err := service.CreateOrder(userID, &CreateOrderRequest{
			Items:             []OrderLine{{ProductID: productID, Quantity: 4}},
			ShippingAddressID: addressID,
			TotalAmount:       400,
		}, "")
		assert.ErrorIs(t, err, types.ErrValidation)

		// No partial reservation left behind
		var product types.Product
		require.NoError(t, db.Where("product_id = ?", productID).First(&product).Error)
		assert.Zero(t, product.ReservedStock)
	})

	t.Run("replays idempotency key", func(t *testing.T) {
		db := newTestDB(t)
		userID, addressID := seedBuyer(t, db)
		productID := seedProduct(t, db, 250, 10)

		service := NewService(db, nil)
		req := &CreateOrderRequest{
			Items:             []OrderLine{{ProductID: productID, Quantity: 1}},
			ShippingAddressID: addressID,
			TotalAmount:       250,
		}

		key := uuid.New().String()
		first, err := service.CreateOrder(userID, req, key)
		require.NoError(t, err)

		second, err := service.CreateOrder(userID, req, key)
		require.NoError(t, err)
		assert.Equal(t, first.OrderID, second.OrderID)

		var count int64
		require.NoError(t, db.Model(&types.Order{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)

		// Reservation taken exactly once
		var product types.Product
		require.NoError(t, db.Where("product_id = ?", productID).First(&product).Error)
		assert.Equal(t, 1, product.ReservedStock)
	})

	t.Run("expired idempotency key allows a fresh checkout", func(t *testing.T) {
		db := newTestDB(t)
		userID, addressID := seedBuyer(t, db)
		productID := seedProduct(t, db, 250, 10)

		key := uuid.New().String()
		require.NoError(t, db.Create(&types.IdempotencyRecord{
			IdempotencyKey: key,
			ResourceID:     uuid.New().String(),
			ResourceType:   "order",
			ExpiresAt:      time.Now().Add(-time.Hour),
		}).Error)

		service := NewService(db, nil)
		order, err := service.CreateOrder(userID, &CreateOrderRequest{
			Items:             []OrderLine{{ProductID: productID, Quantity: 1}},
			ShippingAddressID: addressID,
			TotalAmount:       250,
		}, key)
		require.NoError(t, err)

		// The stale record is replaced, not collided with
		var record types.IdempotencyRecord
		require.NoError(t, db.Where("idempotency_key = ?", key).First(&record).Error)
		assert.Equal(t, order.OrderID, record.ResourceID)
		assert.True(t, record.ExpiresAt.After(time.Now()))
	})
}

func TestAddresses(t *testing.T) {
	db := newTestDB(t)
	userID, _ := seedBuyer(t, db)
	service := NewService(db, nil)

	created, err := service.CreateAddress(userID, &AddressRequest{
		Line1:   "42 MG Road",
		City:    "Bengaluru",
		State:   "Karnataka",
		Pincode: "560001",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.AddressID)

	t.Run("created address is usable for checkout", func(t *testing.T) {
		productID := seedProduct(t, db, 100, 5)
		_, err := service.CreateOrder(userID, &CreateOrderRequest{
			Items:             []OrderLine{{ProductID: productID, Quantity: 1}},
			ShippingAddressID: created.AddressID,
			TotalAmount:       100,
		}, "")
		require.NoError(t, err)
	})

	t.Run("listing is scoped to the caller", func(t *testing.T) {
		addresses, err := service.ListAddresses(userID)
		require.NoError(t, err)
		assert.Len(t, addresses, 2) // seeded + created

		other, err := service.ListAddresses(uuid.New().String())
		require.NoError(t, err)
		assert.Empty(t, other)
	})
}

func TestGetOrder(t *testing.T) {
	db := newTestDB(t)
	userID, addressID := seedBuyer(t, db)
	productID := seedProduct(t, db, 100, 5)

	service := NewService(db, nil)
	order, err := service.CreateOrder(userID, &CreateOrderRequest{
		Items:             []OrderLine{{ProductID: productID, Quantity: 1}},
		ShippingAddressID: addressID,
		TotalAmount:       100,
	}, "")
	require.NoError(t, err)

	t.Run("owner sees the order with items and payment", func(t *testing.T) {
		got, err := service.GetOrder(order.OrderID, userID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Len(t, got.Items, 1)
		require.NotNil(t, got.Payment)
		assert.Equal(t, types.PaymentStatusPending, got.Payment.Status)
	})

	t.Run("other users cannot see the order", func(t *testing.T) {
		got, err := service.GetOrder(order.OrderID, uuid.New().String())
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
