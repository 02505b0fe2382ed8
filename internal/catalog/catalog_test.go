package catalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/secufur/commerce-api/internal/audit"
	"github.com/secufur/commerce-api/internal/database"
	"github.com/secufur/commerce-api/internal/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	return db
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return NewService(db, nil, audit.NewService(db)), db
}

func seedSeller(t *testing.T, db *gorm.DB, status string) (userID, sellerID string) {
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

func seedListedProduct(t *testing.T, db *gorm.DB, sellerID, name, category string, price float64, active bool, createdAt time.Time) string {
	t.Helper()
	productID := uuid.New().String()
	status := types.ProductStatusLive
	if !active {
		status = types.ProductStatusDraft
	}
	require.NoError(t, db.Create(&types.Product{
		ProductID: productID,
		SellerID:  sellerID,
		Name:      name,
		Category:  category,
		Price:     price,
		Stock:     100,
		IsActive:  active,
		Status:    status,
		CreatedAt: createdAt,
	}).Error)
	return productID
}

func TestListProducts(t *testing.T) {
	service, db := newTestService(t)
	_, sellerID := seedSeller(t, db, types.SellerStatusLive)

	now := time.Now()
	newest := seedListedProduct(t, db, sellerID, "AA Battery Pack", "batteries", 249, true, now)
	middle := seedListedProduct(t, db, sellerID, "AAA Battery Pack", "batteries", 229, true, now.Add(-time.Hour))
	seedListedProduct(t, db, sellerID, "9V Battery", "batteries", 199, true, now.Add(-2*time.Hour))
	seedListedProduct(t, db, sellerID, "Desk Lamp", "electronics", 1299, true, now)
	seedListedProduct(t, db, sellerID, "Hidden Draft", "batteries", 99, false, now)

	t.Run("category filter with limit returns newest first", func(t *testing.T) {
		listing, err := service.ListProducts(context.Background(), "batteries", "", 2)
		require.NoError(t, err)
		require.Len(t, listing, 2)
		assert.Equal(t, newest, listing[0].ProductID)
		assert.Equal(t, middle, listing[1].ProductID)
	})

	t.Run("inactive products are never listed", func(t *testing.T) {
		listing, err := service.ListProducts(context.Background(), "batteries", "", 0)
		require.NoError(t, err)
		assert.Len(t, listing, 3)
		for _, p := range listing {
			assert.True(t, p.IsActive)
		}
	})

	t.Run("search matches name", func(t *testing.T) {
		listing, err := service.ListProducts(context.Background(), "", "lamp", 0)
		require.NoError(t, err)
		require.Len(t, listing, 1)
		assert.Equal(t, "Desk Lamp", listing[0].Name)
	})

	t.Run("average rating computed over reviews", func(t *testing.T) {
		for _, rating := range []int{5, 4, 4} {
			require.NoError(t, db.Create(&types.Review{
				ReviewID:  uuid.New().String(),
				ProductID: newest,
				UserID:    uuid.New().String(),
				Rating:    rating,
			}).Error)
		}

		listing, err := service.ListProducts(context.Background(), "batteries", "", 1)
		require.NoError(t, err)
		require.Len(t, listing, 1)
		assert.InDelta(t, 13.0/3.0, listing[0].Rating.Average, 1e-9)
		assert.Equal(t, 3, listing[0].ReviewCount)
	})
}

func TestCreateProduct(t *testing.T) {
	t.Run("live seller creates inactive draft", func(t *testing.T) {
		service, db := newTestService(t)
		userID, sellerID := seedSeller(t, db, types.SellerStatusLive)

		product, err := service.CreateProduct(context.Background(), userID, &CreateProductRequest{
			Name:           "Power Bank",
			Description:    "10000mAh",
			Price:          1599,
			Category:       "electronics",
			Stock:          50,
			Specifications: map[string]string{"capacity": "10000mAh"},
		})
		require.NoError(t, err)

		assert.Equal(t, sellerID, product.SellerID)
		assert.Equal(t, types.ProductStatusDraft, product.Status)
		assert.False(t, product.IsActive)
		assert.Contains(t, product.Specifications, "10000mAh")
	})

	t.Run("non-live seller is rejected", func(t *testing.T) {
		service, db := newTestService(t)
		userID, _ := seedSeller(t, db, types.SellerStatusApproved)

		_, err := service.CreateProduct(context.Background(), userID, &CreateProductRequest{
			Name:        "Power Bank",
			Description: "10000mAh",
			Price:       1599,
			Category:    "electronics",
		})
		assert.ErrorIs(t, err, types.ErrForbidden)
	})

	t.Run("user without profile is rejected", func(t *testing.T) {
		service, _ := newTestService(t)
		_, err := service.CreateProduct(context.Background(), uuid.New().String(), &CreateProductRequest{
			Name:        "Power Bank",
			Description: "10000mAh",
			Price:       1599,
			Category:    "electronics",
		})
		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}

func TestProductReviewWorkflow(t *testing.T) {
	service, db := newTestService(t)
	userID, _ := seedSeller(t, db, types.SellerStatusLive)

	product, err := service.CreateProduct(context.Background(), userID, &CreateProductRequest{
		Name:        "Bluetooth Speaker",
		Description: "Portable",
		Price:       2499,
		Category:    "electronics",
		Stock:       10,
	})
	require.NoError(t, err)

	t.Run("draft cannot be reviewed", func(t *testing.T) {
		_, err := service.ReviewProduct(context.Background(), product.ProductID, "approve", "")
		assert.ErrorIs(t, err, types.ErrInvalidState)
	})

	t.Run("submit then approve goes live", func(t *testing.T) {
		submitted, err := service.SubmitProduct(context.Background(), userID, product.ProductID)
		require.NoError(t, err)
		assert.Equal(t, types.ProductStatusSubmitted, submitted.Status)

		approved, err := service.ReviewProduct(context.Background(), product.ProductID, "approve", "")
		require.NoError(t, err)
		assert.Equal(t, types.ProductStatusLive, approved.Status)
		assert.True(t, approved.IsActive)

		listing, err := service.ListProducts(context.Background(), "electronics", "", 0)
		require.NoError(t, err)
		require.Len(t, listing, 1)
	})

	t.Run("only drafts can be submitted", func(t *testing.T) {
		_, err := service.SubmitProduct(context.Background(), userID, product.ProductID)
		assert.ErrorIs(t, err, types.ErrInvalidState)
	})
}

func TestReviewProductReject(t *testing.T) {
	service, db := newTestService(t)
	userID, _ := seedSeller(t, db, types.SellerStatusLive)

	product, err := service.CreateProduct(context.Background(), userID, &CreateProductRequest{
		Name:        "LED Lamp",
		Description: "Desk lamp",
		Price:       1299,
		Category:    "electronics",
	})
	require.NoError(t, err)
	_, err = service.SubmitProduct(context.Background(), userID, product.ProductID)
	require.NoError(t, err)

	rejected, err := service.ReviewProduct(context.Background(), product.ProductID, "reject", "missing certification")
	require.NoError(t, err)
	assert.Equal(t, types.ProductStatusRejected, rejected.Status)
	assert.Equal(t, "missing certification", rejected.RejectionReason)
	assert.False(t, rejected.IsActive)
}

func TestAdjustInventory(t *testing.T) {
	service, db := newTestService(t)
	userID, sellerID := seedSeller(t, db, types.SellerStatusLive)
	productID := seedListedProduct(t, db, sellerID, "AA Battery Pack", "batteries", 249, true, time.Now())

	t.Run("applies delta", func(t *testing.T) {
		updated, err := service.AdjustInventory(context.Background(), userID, productID, -30, "damaged batch")
		require.NoError(t, err)
		assert.Equal(t, 70, updated.Stock)
	})

	t.Run("clamps stock at zero", func(t *testing.T) {
		updated, err := service.AdjustInventory(context.Background(), userID, productID, -1000, "writeoff")
		require.NoError(t, err)
		assert.Zero(t, updated.Stock)
	})

	t.Run("locked product cannot be adjusted", func(t *testing.T) {
		require.NoError(t, db.Model(&types.Product{}).
			Where("product_id = ?", productID).
			Update("is_locked", true).Error)

		_, err := service.AdjustInventory(context.Background(), userID, productID, 10, "restock")
		assert.ErrorIs(t, err, types.ErrInvalidState)
	})

	t.Run("other sellers cannot adjust", func(t *testing.T) {
		otherUser, _ := seedSeller(t, db, types.SellerStatusLive)
		_, err := service.AdjustInventory(context.Background(), otherUser, productID, 10, "restock")
		assert.ErrorIs(t, err, types.ErrForbidden)
	})
}
