package seller

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/secufur/commerce-api/internal/audit"
	"github.com/secufur/commerce-api/internal/events"
	"github.com/secufur/commerce-api/internal/types"
)

// sellerOrder resolves the caller's operational profile and the order, and
// verifies the seller owns every product on it.
func (s *Service) sellerOrder(userID, orderID string) (*types.SellerProfile, *types.Order, error) {
	profile, err := s.operationalProfile(userID)
	if err != nil {
		return nil, nil, err
	}

	order, err := s.db.GetOrderForSeller(orderID, profile.SellerID)
	if err != nil {
		return nil, nil, err
	}
	if order == nil {
		return nil, nil, fmt.Errorf("%w: order not found", types.ErrNotFound)
	}

	return profile, order, nil
}

// AcceptOrder moves a confirmed order into fulfilment.
func (s *Service) AcceptOrder(userID, orderID string) (*types.Order, error) {
	profile, order, err := s.sellerOrder(userID, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status != types.OrderStatusConfirmed {
		return nil, fmt.Errorf("%w: order cannot be accepted from status %s", types.ErrInvalidState, order.Status)
	}

	order.Status = types.OrderStatusAccepted
	if err := s.db.UpdateOrder(order); err != nil {
		return nil, fmt.Errorf("failed to accept order: %w", err)
	}

	s.audit.Log(profile.SellerID, userID, "Order Accepted", audit.CategoryOrder,
		fmt.Sprintf("Order %s accepted for fulfilment", order.OrderID), audit.SeverityInfo)
	s.publishTransition(events.OrderAccepted, order)

	log.Info().
		Str("order_id", order.OrderID).
		Str("seller_id", profile.SellerID).
		Msg("order accepted")

	return order, nil
}

// ShipOrderRequest carries the courier handoff details.
type ShipOrderRequest struct {
	Courier        string `json:"courier" binding:"required"`
	TrackingNumber string `json:"tracking_number" binding:"required"`
}

// ShipOrder records the courier handoff for an accepted order.
func (s *Service) ShipOrder(userID, orderID string, req ShipOrderRequest) (*types.Order, error) {
	profile, order, err := s.sellerOrder(userID, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status != types.OrderStatusAccepted {
		return nil, fmt.Errorf("%w: order cannot be shipped from status %s", types.ErrInvalidState, order.Status)
	}

	order.Status = types.OrderStatusShipped
	order.Courier = req.Courier
	order.TrackingNumber = req.TrackingNumber
	if err := s.db.UpdateOrder(order); err != nil {
		return nil, fmt.Errorf("failed to ship order: %w", err)
	}

	s.audit.Log(profile.SellerID, userID, "Order Shipped", audit.CategoryOrder,
		fmt.Sprintf("Order %s handed to %s, tracking %s", order.OrderID, req.Courier, req.TrackingNumber),
		audit.SeverityInfo)
	s.publishTransition(events.OrderShipped, order)

	log.Info().
		Str("order_id", order.OrderID).
		Str("courier", req.Courier).
		Msg("order shipped")

	return order, nil
}

// DeliverOrder completes fulfilment. Reserved stock is consumed, sold counts
// updated and the products locked against further edits.
func (s *Service) DeliverOrder(userID, orderID string) (*types.Order, error) {
	profile, order, err := s.sellerOrder(userID, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status != types.OrderStatusShipped {
		return nil, fmt.Errorf("%w: order cannot be delivered from status %s", types.ErrInvalidState, order.Status)
	}

	if err := s.db.DeliverOrder(order); err != nil {
		return nil, fmt.Errorf("failed to deliver order: %w", err)
	}

	s.audit.Log(profile.SellerID, userID, "Order Delivered", audit.CategoryOrder,
		fmt.Sprintf("Order %s delivered, stock consumed and SKUs locked", order.OrderID), audit.SeverityInfo)
	s.publishTransition(events.OrderDelivered, order)

	log.Info().
		Str("order_id", order.OrderID).
		Str("seller_id", profile.SellerID).
		Msg("order delivered")

	return order, nil
}

// CancelOrder cancels an order before shipment and releases its stock
// reservations.
func (s *Service) CancelOrder(userID, orderID, reason string) (*types.Order, error) {
	profile, order, err := s.sellerOrder(userID, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status != types.OrderStatusConfirmed && order.Status != types.OrderStatusAccepted {
		return nil, fmt.Errorf("%w: order cannot be cancelled from status %s", types.ErrInvalidState, order.Status)
	}

	if err := s.db.CancelOrder(order); err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	s.audit.Log(profile.SellerID, userID, "Order Cancelled", audit.CategoryOrder,
		fmt.Sprintf("Order %s cancelled by seller. %s", order.OrderID, reason), audit.SeverityWarning)
	s.publishTransition(events.OrderCancelled, order)

	log.Info().
		Str("order_id", order.OrderID).
		Str("reason", reason).
		Msg("order cancelled by seller")

	return order, nil
}

// publishTransition emits the lifecycle event. Publish failures are logged and
// do not fail the operation.
func (s *Service) publishTransition(eventType string, order *types.Order) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.PublishOrderEvent(events.OrderEvent{
		Type:        eventType,
		OrderID:     order.OrderID,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		Currency:    order.Currency,
		Status:      order.Status,
		Timestamp:   time.Now(),
	})
	if err != nil {
		log.Error().Err(err).
			Str("order_id", order.OrderID).
			Str("type", eventType).
			Msg("failed to publish order event")
	}
}
