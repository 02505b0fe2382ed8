package seller

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/secufur/commerce-api/internal/audit"
	"github.com/secufur/commerce-api/internal/database"
	"github.com/secufur/commerce-api/internal/events"
	"github.com/secufur/commerce-api/internal/types"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	return NewService(db, audit.NewService(db), events.NoopPublisher{}), db
}

func seedProfile(t *testing.T, db *gorm.DB, status string) (userID, sellerID string) {
	t.Helper()
	userID = uuid.New().String()
	sellerID = uuid.New().String()
	require.NoError(t, db.Create(&types.SellerProfile{
		SellerID:     sellerID,
		UserID:       userID,
		BusinessName: "Test Traders",
		Status:       status,
	}).Error)
	return userID, sellerID
}

// seedSellerOrder creates a confirmed order containing one product owned by
// the seller.
func seedSellerOrder(t *testing.T, db *gorm.DB, sellerID, status string, qty int) (orderID, productID string) {
	t.Helper()
	productID = uuid.New().String()
	require.NoError(t, db.Create(&types.Product{
		ProductID:     productID,
		SellerID:      sellerID,
		Name:          "Test Product",
		Price:         100,
		Stock:         50,
		ReservedStock: qty,
		IsActive:      true,
		Status:        types.ProductStatusLive,
	}).Error)

	orderID = uuid.New().String()
	acceptBy := time.Now().Add(4 * time.Hour)
	dispatchBy := time.Now().Add(48 * time.Hour)
	require.NoError(t, db.Create(&types.Order{
		OrderID:     orderID,
		UserID:      uuid.New().String(),
		TotalAmount: 100 * float64(qty),
		Currency:    "INR",
		Status:      status,
		AcceptBy:    &acceptBy,
		DispatchBy:  &dispatchBy,
	}).Error)
	require.NoError(t, db.Create(&types.OrderItem{
		ItemID:    uuid.New().String(),
		OrderID:   orderID,
		ProductID: productID,
		Quantity:  qty,
		Price:     100,
	}).Error)
	return orderID, productID
}

func TestSubmitDocuments(t *testing.T) {
	t.Run("applied seller moves to review", func(t *testing.T) {
		service, db := newTestService(t)
		userID, _ := seedProfile(t, db, types.SellerStatusApplied)

		profile, err := service.SubmitDocuments(userID, SubmitDocumentsRequest{
			GSTNumber:         "27AAPFU0939F1ZV",
			PANNumber:         "AAPFU0939F",
			AgreementAccepted: true,
		})
		require.NoError(t, err)
		assert.Equal(t, types.SellerStatusUnderReview, profile.Status)
		assert.True(t, profile.DocumentsSubmitted)
	})

	t.Run("agreement must be accepted", func(t *testing.T) {
		service, db := newTestService(t)
		userID, _ := seedProfile(t, db, types.SellerStatusApplied)

		_, err := service.SubmitDocuments(userID, SubmitDocumentsRequest{
			GSTNumber: "27AAPFU0939F1ZV",
			PANNumber: "AAPFU0939F",
		})
		assert.ErrorIs(t, err, types.ErrValidation)
	})

	t.Run("rejected seller can resubmit", func(t *testing.T) {
		service, db := newTestService(t)
		userID, sellerID := seedProfile(t, db, types.SellerStatusRejected)
		require.NoError(t, db.Model(&types.SellerProfile{}).
			Where("seller_id = ?", sellerID).
			Update("rejection_reason", "blurry documents").Error)

		profile, err := service.SubmitDocuments(userID, SubmitDocumentsRequest{
			GSTNumber:         "27AAPFU0939F1ZV",
			PANNumber:         "AAPFU0939F",
			AgreementAccepted: true,
		})
		require.NoError(t, err)
		assert.Equal(t, types.SellerStatusUnderReview, profile.Status)
		assert.Empty(t, profile.RejectionReason)
	})

	t.Run("cannot resubmit while under review", func(t *testing.T) {
		service, db := newTestService(t)
		userID, _ := seedProfile(t, db, types.SellerStatusUnderReview)

		_, err := service.SubmitDocuments(userID, SubmitDocumentsRequest{
			GSTNumber:         "27AAPFU0939F1ZV",
			PANNumber:         "AAPFU0939F",
			AgreementAccepted: true,
		})
		assert.ErrorIs(t, err, types.ErrInvalidState)
	})
}

func TestReviewSeller(t *testing.T) {
	adminID := uuid.New().String()

	t.Run("approve then activate", func(t *testing.T) {
		service, db := newTestService(t)
		_, sellerID := seedProfile(t, db, types.SellerStatusUnderReview)

		profile, err := service.ReviewSeller(sellerID, adminID, ReviewSellerRequest{Decision: "approve"})
		require.NoError(t, err)
		assert.Equal(t, types.SellerStatusApproved, profile.Status)
		require.NotNil(t, profile.ApprovedAt)

		profile, err = service.ReviewSeller(sellerID, adminID, ReviewSellerRequest{Decision: "activate"})
		require.NoError(t, err)
		assert.Equal(t, types.SellerStatusLive, profile.Status)
	})

	t.Run("cannot approve a seller not under review", func(t *testing.T) {
		service, db := newTestService(t)
		_, sellerID := seedProfile(t, db, types.SellerStatusApplied)

		_, err := service.ReviewSeller(sellerID, adminID, ReviewSellerRequest{Decision: "approve"})
		assert.ErrorIs(t, err, types.ErrInvalidState)
	})

	t.Run("rejection requires a reason", func(t *testing.T) {
		service, db := newTestService(t)
		_, sellerID := seedProfile(t, db, types.SellerStatusUnderReview)

		_, err := service.ReviewSeller(sellerID, adminID, ReviewSellerRequest{Decision: "reject"})
		assert.ErrorIs(t, err, types.ErrValidation)

		profile, err := service.ReviewSeller(sellerID, adminID, ReviewSellerRequest{
			Decision: "reject", Reason: "invalid GSTIN",
		})
		require.NoError(t, err)
		assert.Equal(t, types.SellerStatusRejected, profile.Status)
		assert.Equal(t, "invalid GSTIN", profile.RejectionReason)
	})

	t.Run("suspend a live seller", func(t *testing.T) {
		service, db := newTestService(t)
		_, sellerID := seedProfile(t, db, types.SellerStatusLive)

		profile, err := service.ReviewSeller(sellerID, adminID, ReviewSellerRequest{
			Decision: "suspend", Reason: "policy violation",
		})
		require.NoError(t, err)
		assert.Equal(t, types.SellerStatusSuspended, profile.Status)
	})

	t.Run("unknown decision is rejected", func(t *testing.T) {
		service, db := newTestService(t)
		_, sellerID := seedProfile(t, db, types.SellerStatusUnderReview)

		_, err := service.ReviewSeller(sellerID, adminID, ReviewSellerRequest{Decision: "promote"})
		assert.ErrorIs(t, err, types.ErrValidation)
	})
}

func TestOrderFulfilment(t *testing.T) {
	t.Run("accept ship deliver updates stock and locks products", func(t *testing.T) {
		service, db := newTestService(t)
		userID, sellerID := seedProfile(t, db, types.SellerStatusLive)
		orderID, productID := seedSellerOrder(t, db, sellerID, types.OrderStatusConfirmed, 3)

		order, err := service.AcceptOrder(userID, orderID)
		require.NoError(t, err)
		assert.Equal(t, types.OrderStatusAccepted, order.Status)

		order, err = service.ShipOrder(userID, orderID, ShipOrderRequest{
			Courier:        "Delhivery",
			TrackingNumber: "DL123456789",
		})
		require.NoError(t, err)
		assert.Equal(t, types.OrderStatusShipped, order.Status)
		assert.Equal(t, "Delhivery", order.Courier)

		order, err = service.DeliverOrder(userID, orderID)
		require.NoError(t, err)
		assert.Equal(t, types.OrderStatusDelivered, order.Status)

		var product types.Product
		require.NoError(t, db.Where("product_id = ?", productID).First(&product).Error)
		assert.Equal(t, 47, product.Stock)
		assert.Zero(t, product.ReservedStock)
		assert.Equal(t, 3, product.SoldCount)
		assert.True(t, product.IsLocked)
	})

	t.Run("cannot accept an unpaid order", func(t *testing.T) {
		service, db := newTestService(t)
		userID, sellerID := seedProfile(t, db, types.SellerStatusLive)
		orderID, _ := seedSellerOrder(t, db, sellerID, types.OrderStatusPending, 1)

		_, err := service.AcceptOrder(userID, orderID)
		assert.ErrorIs(t, err, types.ErrInvalidState)
	})

	t.Run("cannot ship before accepting", func(t *testing.T) {
		service, db := newTestService(t)
		userID, sellerID := seedProfile(t, db, types.SellerStatusLive)
		orderID, _ := seedSellerOrder(t, db, sellerID, types.OrderStatusConfirmed, 1)

		_, err := service.ShipOrder(userID, orderID, ShipOrderRequest{
			Courier: "Delhivery", TrackingNumber: "DL1",
		})
		assert.ErrorIs(t, err, types.ErrInvalidState)
	})

	t.Run("cancel releases reservations", func(t *testing.T) {
		service, db := newTestService(t)
		userID, sellerID := seedProfile(t, db, types.SellerStatusLive)
		orderID, productID := seedSellerOrder(t, db, sellerID, types.OrderStatusConfirmed, 2)

		order, err := service.CancelOrder(userID, orderID, "out of stock")
		require.NoError(t, err)
		assert.Equal(t, types.OrderStatusCancelled, order.Status)

		var product types.Product
		require.NoError(t, db.Where("product_id = ?", productID).First(&product).Error)
		assert.Zero(t, product.ReservedStock)
		assert.Equal(t, 50, product.Stock)
		assert.False(t, product.IsLocked)
	})

	t.Run("cannot cancel a shipped order", func(t *testing.T) {
		service, db := newTestService(t)
		userID, sellerID := seedProfile(t, db, types.SellerStatusLive)
		orderID, _ := seedSellerOrder(t, db, sellerID, types.OrderStatusShipped, 1)

		_, err := service.CancelOrder(userID, orderID, "too late")
		assert.ErrorIs(t, err, types.ErrInvalidState)
	})

	t.Run("suspended seller cannot operate", func(t *testing.T) {
		service, db := newTestService(t)
		userID, sellerID := seedProfile(t, db, types.SellerStatusSuspended)
		orderID, _ := seedSellerOrder(t, db, sellerID, types.OrderStatusConfirmed, 1)

		_, err := service.AcceptOrder(userID, orderID)
		assert.ErrorIs(t, err, types.ErrForbidden)
	})

	t.Run("seller cannot touch another seller's order", func(t *testing.T) {
		service, db := newTestService(t)
		userID, _ := seedProfile(t, db, types.SellerStatusLive)
		_, otherSellerID := seedProfile(t, db, types.SellerStatusLive)
		orderID, _ := seedSellerOrder(t, db, otherSellerID, types.OrderStatusConfirmed, 1)

		_, err := service.AcceptOrder(userID, orderID)
		assert.ErrorIs(t, err, types.ErrForbidden)
	})
}

func TestPerformance(t *testing.T) {
	service, db := newTestService(t)
	userID, sellerID := seedProfile(t, db, types.SellerStatusLive)

	seedSellerOrder(t, db, sellerID, types.OrderStatusConfirmed, 1)
	seedSellerOrder(t, db, sellerID, types.OrderStatusDelivered, 1)
	seedSellerOrder(t, db, sellerID, types.OrderStatusDelivered, 1)
	seedSellerOrder(t, db, sellerID, types.OrderStatusCancelled, 1)

	perf, err := service.Performance(userID)
	require.NoError(t, err)
	assert.Equal(t, 4, perf.OrdersReceived)
	assert.Equal(t, 2, perf.OrdersAccepted)
	assert.Equal(t, 2, perf.OrdersDelivered)
	assert.Equal(t, 1, perf.OrdersCancelled)
	assert.InDelta(t, 0.25, perf.CancellationRate, 1e-9)
}

func TestSweeper(t *testing.T) {
	service, db := newTestService(t)
	_, sellerID := seedProfile(t, db, types.SellerStatusLive)

	// Confirmed order past its accept deadline
	overdueID, _ := seedSellerOrder(t, db, sellerID, types.OrderStatusConfirmed, 1)
	past := time.Now().Add(-time.Hour)
	require.NoError(t, db.Model(&types.Order{}).
		Where("order_id = ?", overdueID).
		Update("accept_by", past).Error)

	// Accepted order still inside its dispatch window
	onTimeID, _ := seedSellerOrder(t, db, sellerID, types.OrderStatusAccepted, 1)

	flagged, err := service.db.FlagOverdueOrders(time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), flagged)

	var overdue, onTime types.Order
	require.NoError(t, db.Where("order_id = ?", overdueID).First(&overdue).Error)
	require.NoError(t, db.Where("order_id = ?", onTimeID).First(&onTime).Error)
	assert.True(t, overdue.IsDelayed)
	assert.False(t, onTime.IsDelayed)

	// A second sweep flags nothing new
	flagged, err = service.db.FlagOverdueOrders(time.Now())
	require.NoError(t, err)
	assert.Zero(t, flagged)
}
