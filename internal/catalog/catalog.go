package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/secufur/commerce-api/internal/audit"
	"github.com/secufur/commerce-api/internal/types"
	"github.com/secufur/commerce-api/pkg/response"
)

// Service handles the product catalog: buyer-facing listings and the seller
// product lifecycle (draft, submission, review, inventory).
type Service struct {
	db    *Database
	cache *Cache
	audit *audit.Service
}

// NewService creates a catalog service. cache may be nil to run uncached.
func NewService(gormDB *gorm.DB, cache *Cache, auditSvc *audit.Service) *Service {
	return &Service{
		db:    NewDatabase(gormDB),
		cache: cache,
		audit: auditSvc,
	}
}

// ListProducts returns active products filtered by category and search term,
// each annotated with its average review rating and review count.
func (s *Service) ListProducts(ctx context.Context, category, search string, limit int) ([]types.ListedProduct, error) {
	if s.cache != nil {
		if listing, ok := s.cache.GetListing(ctx, category, search, limit); ok {
			return listing, nil
		}
	}

	products, err := s.db.ListActiveProducts(category, search, limit)
	if err != nil {
		return nil, err
	}

	listing := make([]types.ListedProduct, 0, len(products))
	for _, p := range products {
		var sum int
		for _, r := range p.Reviews {
			sum += r.Rating
		}
		average := 0.0
		if len(p.Reviews) > 0 {
			average = float64(sum) / float64(len(p.Reviews))
		}
		listing = append(listing, types.ListedProduct{
			Product:     p,
			Rating:      types.ProductRating{Average: average},
			ReviewCount: len(p.Reviews),
		})
	}

	if s.cache != nil {
		s.cache.SetListing(ctx, category, search, limit, listing)
	}

	return listing, nil
}

// CreateProductRequest is the seller's new-product payload.
type CreateProductRequest struct {
	Name           string            `json:"name" binding:"required"`
	Description    string            `json:"description" binding:"required"`
	Price          float64           `json:"price" binding:"required,gt=0"`
	Category       string            `json:"category" binding:"required"`
	Stock          int               `json:"stock"`
	Specifications map[string]string `json:"specifications"`
}

// CreateProduct creates a draft product owned by the caller's seller profile.
// The profile must be LIVE before products can be listed.
func (s *Service) CreateProduct(ctx context.Context, userID string, req *CreateProductRequest) (*types.Product, error) {
	profile, err := s.db.GetSellerProfileByUserID(userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, fmt.Errorf("%w: seller profile not found", types.ErrNotFound)
	}
	if profile.Status != types.SellerStatusLive {
		return nil, fmt.Errorf("%w: seller must be live to list products", types.ErrForbidden)
	}
	if req.Stock < 0 {
		return nil, fmt.Errorf("%w: stock must be non-negative", types.ErrValidation)
	}

	specs := "{}"
	if len(req.Specifications) > 0 {
		data, err := json.Marshal(req.Specifications)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid specifications", types.ErrValidation)
		}
		specs = string(data)
	}

	product := &types.Product{
		ProductID:      uuid.New().String(),
		SellerID:       profile.SellerID,
		Name:           req.Name,
		Description:    req.Description,
		Category:       req.Category,
		Price:          req.Price,
		Stock:          req.Stock,
		IsActive:       false,
		Status:         types.ProductStatusDraft,
		Specifications: specs,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if err := s.db.CreateProduct(product); err != nil {
		return nil, err
	}

	s.audit.Log(profile.SellerID, userID, "Product Created", audit.CategoryProduct,
		fmt.Sprintf("New product %s (%s) created as draft.", product.Name, product.ProductID), "")

	return product, nil
}

// SubmitProduct moves a draft product into review.
func (s *Service) SubmitProduct(ctx context.Context, userID, productID string) (*types.Product, error) {
	profile, product, err := s.ownedProduct(userID, productID)
	if err != nil {
		return nil, err
	}

	if product.Status != types.ProductStatusDraft {
		return nil, fmt.Errorf("%w: product %s is %s, only drafts can be submitted",
			types.ErrInvalidState, productID, product.Status)
	}

	product.Status = types.ProductStatusSubmitted
	product.UpdatedAt = time.Now()
	if err := s.db.UpdateProduct(product); err != nil {
		return nil, err
	}

	s.audit.Log(profile.SellerID, userID, "Product Submitted", audit.CategoryProduct,
		fmt.Sprintf("Product %s submitted for approval.", productID), "")

	return product, nil
}

// ReviewProduct applies an admin approval decision to a submitted product.
func (s *Service) ReviewProduct(ctx context.Context, productID, decision, reason string) (*types.Product, error) {
	product, err := s.db.GetProduct(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: product %s", types.ErrNotFound, productID)
	}
	if product.Status != types.ProductStatusSubmitted {
		return nil, fmt.Errorf("%w: product %s is %s, only submitted products can be reviewed",
			types.ErrInvalidState, productID, product.Status)
	}

	switch decision {
	case "approve":
		product.Status = types.ProductStatusLive
		product.IsActive = true
		s.audit.Log(product.SellerID, "", "Product Approved", audit.CategoryProduct,
			fmt.Sprintf("Product %s approved and now live.", productID), "")
	case "reject":
		product.Status = types.ProductStatusRejected
		product.RejectionReason = reason
		s.audit.Log(product.SellerID, "", "Product Rejected", audit.CategoryProduct,
			fmt.Sprintf("Product %s rejected: %s.", productID, reason), audit.SeverityWarning)
	default:
		return nil, fmt.Errorf("%w: unknown decision %q", types.ErrValidation, decision)
	}

	product.UpdatedAt = time.Now()
	if err := s.db.UpdateProduct(product); err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}

	return product, nil
}

// AdjustInventory applies a stock delta to a product the caller owns. Stock is
// clamped at zero; every adjustment is audited with its reason.
func (s *Service) AdjustInventory(ctx context.Context, userID, productID string, adjustment int, reason string) (*types.Product, error) {
	profile, product, err := s.ownedProduct(userID, productID)
	if err != nil {
		return nil, err
	}
	if product.IsLocked {
		return nil, fmt.Errorf("%w: product %s is locked", types.ErrInvalidState, productID)
	}

	updated, err := s.db.AdjustStock(productID, adjustment)
	if err != nil {
		return nil, err
	}

	s.audit.Log(profile.SellerID, userID, "Inventory Adjusted", audit.CategoryProduct,
		fmt.Sprintf("Product %s stock adjusted by %d. Reason: %s", productID, adjustment, reason), "")

	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}

	return updated, nil
}

// ownedProduct loads the caller's seller profile and a product, verifying
// ownership.
func (s *Service) ownedProduct(userID, productID string) (*types.SellerProfile, *types.Product, error) {
	profile, err := s.db.GetSellerProfileByUserID(userID)
	if err != nil {
		return nil, nil, err
	}
	if profile == nil {
		return nil, nil, fmt.Errorf("%w: seller profile not found", types.ErrNotFound)
	}

	product, err := s.db.GetProduct(productID)
	if err != nil {
		return nil, nil, err
	}
	if product == nil {
		return nil, nil, fmt.Errorf("%w: product %s", types.ErrNotFound, productID)
	}
	if product.SellerID != profile.SellerID {
		return nil, nil, fmt.Errorf("%w: product belongs to another seller", types.ErrForbidden)
	}

	return profile, product, nil
}

// GinHandlers contains HTTP handlers for catalog endpoints
type GinHandlers struct {
	service *Service
}

func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{
		service: service,
	}
}

// ListProductsHandler handles GET requests for the buyer-facing catalog
// Query parameters: category, search, limit
func (h *GinHandlers) ListProductsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 0
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				response.BadRequest(c, "limit must be a non-negative integer")
				return
			}
			limit = parsed
		}

		listing, err := h.service.ListProducts(c.Request.Context(), c.Query("category"), c.Query("search"), limit)
		if err != nil {
			log.Error().Err(err).Msg("failed to list products")
			response.InternalError(c, "Failed to fetch products")
			return
		}

		response.Success(c, gin.H{
			"products":    listing,
			"total_count": len(listing),
		})
	}
}

// CreateProductHandler handles POST requests to create seller products
// Requires a seller-role JWT
func (h *GinHandlers) CreateProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		product, err := h.service.CreateProduct(c.Request.Context(), c.GetString("userID"), &req)
		response.Handle(c, product, err)
	}
}

// SubmitProductHandler handles POST requests to submit a draft for approval
// URL parameter: product_id
func (h *GinHandlers) SubmitProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := h.service.SubmitProduct(c.Request.Context(), c.GetString("userID"), c.Param("product_id"))
		response.HandleOK(c, product, err)
	}
}

// AdjustInventoryHandler handles POST requests to adjust product stock
// URL parameter: product_id
func (h *GinHandlers) AdjustInventoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Adjustment int    `json:"adjustment" binding:"required"`
			Reason     string `json:"reason" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		product, err := h.service.AdjustInventory(c.Request.Context(), c.GetString("userID"), c.Param("product_id"), req.Adjustment, req.Reason)
		response.Handle(c, product, err)
	}
}

// ReviewProductHandler handles POST requests for admin product review
// URL parameter: product_id
func (h *GinHandlers) ReviewProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Decision string `json:"decision" binding:"required"`
			Reason   string `json:"reason"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		product, err := h.service.ReviewProduct(c.Request.Context(), c.Param("product_id"), req.Decision, req.Reason)
		response.HandleOK(c, product, err)
	}
}
