package orders

import (
	"fmt"
	"math"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/secufur/commerce-api/internal/events"
	"github.com/secufur/commerce-api/internal/types"
	"github.com/secufur/commerce-api/pkg/response"
)

const defaultCurrency = "INR"

// totalTolerance absorbs client-side floating point drift when comparing the
// submitted total against the server-derived one.
const totalTolerance = 0.01

// CreateOrderRequest is the checkout payload. Line item prices are accepted for
// compatibility but ignored: every line is re-priced from the catalog at write
// time.
type CreateOrderRequest struct {
	Items             []OrderLine `json:"items" binding:"required"`
	ShippingAddressID string      `json:"shippingAddressId" binding:"required"`
	TotalAmount       float64     `json:"totalAmount" binding:"required"`
	Currency          string      `json:"currency"`
}

type OrderLine struct {
	ProductID string  `json:"productId" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,gt=0"`
	Price     float64 `json:"price"`
}

// Service handles order creation and retrieval
type Service struct {
	db        *Database
	publisher events.Publisher
}

// NewService creates a new order service with the given database connection
func NewService(gormDB *gorm.DB, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Service{
		db:        NewDatabase(gormDB),
		publisher: publisher,
	}
}

// CreateOrder validates a cart submission and atomically creates the order,
// its pending payment and one item row per line, reserving stock as it goes.
// Prices come from the product rows, never from the client. An idempotency key
// makes retried submissions return the original order.
func (s *Service) CreateOrder(userID string, req *CreateOrderRequest, idempotencyKey string) (*types.Order, error) {
	logger := log.With().
		Str("user_id", userID).
		Str("service", "orders").
		Logger()

	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: order must contain at least one item", types.ErrValidation)
	}
	if req.ShippingAddressID == "" {
		return nil, fmt.Errorf("%w: shipping address is required", types.ErrValidation)
	}

	// Check for existing idempotency record
	if idempotencyKey != "" {
		record, err := s.db.GetIdempotencyRecord(idempotencyKey)
		if err == nil && record != nil && record.ResourceID != "" && record.ExpiresAt.After(time.Now()) {
			existing, err := s.db.GetOrderByOrderIDAndUserID(record.ResourceID, userID)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				logger.Debug().Str("order_id", existing.OrderID).Msg("returning order for replayed idempotency key")
				return existing, nil
			}
		}
	}

	address, err := s.db.GetAddressByIDAndUserID(req.ShippingAddressID, userID)
	if err != nil {
		return nil, err
	}
	if address == nil {
		return nil, fmt.Errorf("%w: shipping address not found", types.ErrValidation)
	}

	currency := req.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	orderID := uuid.New().String()

	// Re-price every line from the catalog and build the item snapshots.
	var total float64
	items := make([]types.OrderItem, 0, len(req.Items))
	for _, line := range req.Items {
		product, err := s.db.GetProduct(line.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil || !product.IsActive {
			return nil, fmt.Errorf("%w: product %s is not available", types.ErrValidation, line.ProductID)
		}
		if product.AvailableStock() < line.Quantity {
			return nil, fmt.Errorf("%w: insufficient stock for product %s", types.ErrValidation, line.ProductID)
		}

		total += product.Price * float64(line.Quantity)
		items = append(items, types.OrderItem{
			ItemID:    uuid.New().String(),
			OrderID:   orderID,
			ProductID: product.ProductID,
			Quantity:  line.Quantity,
			Price:     product.Price,
		})
	}

	if math.Abs(total-req.TotalAmount) > totalTolerance {
		logger.Warn().
			Float64("client_total", req.TotalAmount).
			Float64("server_total", total).
			Msg("rejecting order with mismatched total")
		return nil, fmt.Errorf("%w: total amount does not match catalog prices", types.ErrValidation)
	}

	order := &types.Order{
		OrderID:           orderID,
		UserID:            userID,
		TotalAmount:       total,
		Currency:          currency,
		Status:            types.OrderStatusPending,
		ShippingAddressID: req.ShippingAddressID,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}

	payment := &types.Payment{
		PaymentID: uuid.New().String(),
		OrderID:   orderID,
		Amount:    total,
		Status:    types.PaymentStatusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.db.CreateCheckout(order, payment, items, idempotencyKey); err != nil {
		return nil, err
	}

	order.Items = items
	order.Payment = payment

	logger.Info().
		Str("order_id", order.OrderID).
		Float64("total_amount", order.TotalAmount).
		Str("currency", order.Currency).
		Int("items", len(items)).
		Msg("order created")

	if err := s.publisher.PublishOrderEvent(events.OrderEvent{
		Type:        events.OrderCreated,
		OrderID:     order.OrderID,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		Currency:    order.Currency,
		Status:      order.Status,
		Timestamp:   time.Now(),
	}); err != nil {
		logger.Error().Err(err).Msg("failed to publish order created event")
	}

	return order, nil
}

// GetOrder retrieves an order scoped to its owner.
func (s *Service) GetOrder(orderID, userID string) (*types.Order, error) {
	return s.db.GetOrderByOrderIDAndUserID(orderID, userID)
}

// GinHandlers contains HTTP handlers for order endpoints
type GinHandlers struct {
	service *Service
}

// NewGinHandlers creates a new set of HTTP handlers for order endpoints
func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{
		service: service,
	}
}

// CreateOrderHandler handles POST requests to create orders
// Requires a valid JWT; an Idempotency-Key header makes retries safe
func (h *GinHandlers) CreateOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")
		if userID == "" {
			response.Unauthorized(c, "Missing authentication claims")
			return
		}

		var req CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		order, err := h.service.CreateOrder(userID, &req, c.GetHeader("Idempotency-Key"))
		response.Handle(c, order, err)
	}
}

// GetOrderHandler handles GET requests to retrieve an order
// Requires a valid JWT; the order must belong to the caller
// URL parameter: order_id
func (h *GinHandlers) GetOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")
		if userID == "" {
			response.Unauthorized(c, "Missing authentication claims")
			return
		}

		orderID := c.Param("order_id")
		if orderID == "" {
			response.BadRequest(c, "Order ID is required")
			return
		}

		order, err := h.service.GetOrder(orderID, userID)
		if err != nil || order == nil {
			response.NotFound(c, "Order not found")
			return
		}

		response.Success(c, order)
	}
}
