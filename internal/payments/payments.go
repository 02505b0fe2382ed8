package payments

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/secufur/commerce-api/internal/events"
	"github.com/secufur/commerce-api/internal/types"
	"github.com/secufur/commerce-api/pkg/middleware"
	"github.com/secufur/commerce-api/pkg/response"
)

// Seller SLA windows stamped on the order when payment confirms.
const (
	acceptWindow   = 4 * time.Hour
	dispatchWindow = 48 * time.Hour
)

// Service handles payment initialization and callback verification
type Service struct {
	db        *Database
	gateway   Gateway
	keyID     string
	keySecret []byte
	publisher events.Publisher
}

// NewService creates a payment service. keyID is the public gateway key handed
// to clients; keySecret signs and verifies gateway callbacks.
func NewService(gormDB *gorm.DB, gateway Gateway, keyID, keySecret string, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Service{
		db:        NewDatabase(gormDB),
		gateway:   gateway,
		keyID:     keyID,
		keySecret: []byte(keySecret),
		publisher: publisher,
	}
}

// InitPayment creates a hosted payment session for the order and records the
// gateway's order id on the payment. Local state is only mutated after the
// gateway confirms session creation.
func (s *Service) InitPayment(ctx context.Context, orderID, userID string) (*types.PaymentInitResponse, error) {
	logger := log.With().
		Str("order_id", orderID).
		Str("service", "payments").
		Logger()

	order, err := s.db.GetOrderWithPayment(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: order %s", types.ErrNotFound, orderID)
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("%w: order belongs to another user", types.ErrForbidden)
	}
	if order.Payment == nil {
		return nil, fmt.Errorf("order %s has no payment record", orderID)
	}
	// Re-initializing a settled order would reassign the gateway order id and
	// strand the callback for the session already paid. Init only applies while
	// both rows are still pending.
	if order.Status != types.OrderStatusPending || order.Payment.Status != types.PaymentStatusPending {
		return nil, fmt.Errorf("%w: order already %s", types.ErrInvalidState, order.Status)
	}

	// The gateway takes integer minor units; round rather than truncate so
	// fractional paisa never systematically undercharges.
	amountMinor := int64(math.Round(order.TotalAmount * 100))

	gatewayOrderID, err := s.gateway.CreateOrder(ctx, amountMinor, order.Currency, order.OrderID)
	if err != nil {
		logger.Error().Err(err).Msg("gateway session creation failed")
		return nil, fmt.Errorf("%w: %v", types.ErrExternalService, err)
	}

	if err := s.db.SetGatewayOrderID(order.Payment.PaymentID, gatewayOrderID); err != nil {
		return nil, err
	}

	logger.Info().
		Str("gateway_order_id", gatewayOrderID).
		Int64("amount_minor", amountMinor).
		Str("currency", order.Currency).
		Msg("payment session initialized")

	return &types.PaymentInitResponse{
		OrderID:  gatewayOrderID,
		Amount:   order.TotalAmount,
		Currency: order.Currency,
		Key:      s.keyID,
	}, nil
}

// VerifyRequest is the signed gateway callback payload.
type VerifyRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
}

// VerifyPayment validates the callback signature and, exactly once, moves the
// payment to SUCCESS and the order to CONFIRMED in a single transaction. A
// replay of an already-applied valid callback is a no-op success; any mismatch
// leaves both rows untouched.
func (s *Service) VerifyPayment(orderID string, req *VerifyRequest) error {
	logger := log.With().
		Str("order_id", orderID).
		Str("service", "payments").
		Logger()

	order, err := s.db.GetOrderWithPayment(orderID)
	if err != nil {
		return err
	}
	// Fail closed: a missing payment or an unset gateway order id means
	// initialization never completed.
	if order == nil || order.Payment == nil || order.Payment.GatewayOrderID == "" {
		return fmt.Errorf("%w: invalid order state", types.ErrInvalidState)
	}

	payment := order.Payment

	if payment.GatewayOrderID != req.RazorpayOrderID {
		logger.Warn().
			Str("stored_gateway_order_id", payment.GatewayOrderID).
			Str("callback_gateway_order_id", req.RazorpayOrderID).
			Msg("gateway order id mismatch on verification")
		return fmt.Errorf("%w: order id mismatch", types.ErrValidation)
	}

	if !VerifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature, s.keySecret) {
		logger.Warn().Msg("signature mismatch on verification")
		middleware.RecordPaymentVerified("rejected")
		return fmt.Errorf("%w: invalid signature", types.ErrSignatureMismatch)
	}

	if payment.Status != types.PaymentStatusPending {
		// Terminal already. A replay of the applied callback succeeds
		// without side effects; anything else is rejected.
		if payment.Status == types.PaymentStatusSuccess && payment.GatewayPaymentID == req.RazorpayPaymentID {
			logger.Info().Msg("verification replay, no state change")
			middleware.RecordPaymentVerified("replay")
			return nil
		}
		return fmt.Errorf("%w: payment already %s", types.ErrInvalidState, payment.Status)
	}

	now := time.Now()
	applied, err := s.db.ConfirmPayment(
		payment.PaymentID, orderID,
		req.RazorpayPaymentID, req.RazorpaySignature,
		now.Add(acceptWindow), now.Add(dispatchWindow),
	)
	if err != nil {
		return err
	}
	if !applied {
		// Lost a race with another verification; re-read to decide.
		current, err := s.db.GetOrderWithPayment(orderID)
		if err != nil {
			return err
		}
		if current != nil && current.Payment != nil &&
			current.Payment.Status == types.PaymentStatusSuccess &&
			current.Payment.GatewayPaymentID == req.RazorpayPaymentID {
			middleware.RecordPaymentVerified("replay")
			return nil
		}
		return fmt.Errorf("%w: payment no longer pending", types.ErrInvalidState)
	}

	logger.Info().
		Str("gateway_payment_id", req.RazorpayPaymentID).
		Msg("payment verified, order confirmed")
	middleware.RecordPaymentVerified("success")

	if err := s.publisher.PublishOrderEvent(events.OrderEvent{
		Type:        events.OrderConfirmed,
		OrderID:     order.OrderID,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		Currency:    order.Currency,
		Status:      types.OrderStatusConfirmed,
		Timestamp:   time.Now(),
	}); err != nil {
		logger.Error().Err(err).Msg("failed to publish order confirmed event")
	}

	return nil
}

// GinHandlers contains HTTP handlers for payment endpoints
type GinHandlers struct {
	service *Service
}

func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{
		service: service,
	}
}

// InitPaymentHandler handles POST requests to start checkout for an order
// Requires a valid JWT and order ownership
// URL parameter: order_id
func (h *GinHandlers) InitPaymentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")
		if userID == "" {
			response.Unauthorized(c, "Missing authentication claims")
			return
		}

		result, err := h.service.InitPayment(c.Request.Context(), c.Param("order_id"), userID)
		response.HandleOK(c, result, err)
	}
}

// VerifyPaymentHandler handles the signed gateway callback. The response shape
// follows the gateway contract: {success, orderId} or {success, message}.
// URL parameter: order_id
func (h *GinHandlers) VerifyPaymentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("order_id")

		var req VerifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
			return
		}

		if err := h.service.VerifyPayment(orderID, &req); err != nil {
			status := http.StatusBadRequest
			message := err.Error()
			switch {
			case isClientError(err):
			default:
				status = http.StatusInternalServerError
				message = "Verification failed"
				log.Error().Err(err).Str("order_id", orderID).Msg("payment verification error")
			}
			c.JSON(status, gin.H{"success": false, "message": message})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "orderId": orderID})
	}
}

func isClientError(err error) bool {
	for _, target := range []error{
		types.ErrValidation,
		types.ErrInvalidState,
		types.ErrSignatureMismatch,
		types.ErrNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
