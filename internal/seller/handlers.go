package seller

import (
	"github.com/gin-gonic/gin"

	"github.com/secufur/commerce-api/pkg/response"
)

// SubmitDocumentsHandler handles POST requests submitting verification
// documents for review
func (h *GinHandlers) SubmitDocumentsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")
		if userID == "" {
			response.Unauthorized(c, "Missing authentication claims")
			return
		}

		var req SubmitDocumentsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		profile, err := h.service.SubmitDocuments(userID, req)
		response.HandleOK(c, profile, err)
	}
}

// ReviewSellerHandler handles admin review decisions for a seller
// URL parameter: seller_id
func (h *GinHandlers) ReviewSellerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID := c.GetString("userID")
		if adminID == "" {
			response.Unauthorized(c, "Missing authentication claims")
			return
		}

		var req ReviewSellerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		profile, err := h.service.ReviewSeller(c.Param("seller_id"), adminID, req)
		response.HandleOK(c, profile, err)
	}
}

// PerformanceHandler returns the seller's fulfilment metrics
func (h *GinHandlers) PerformanceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")
		if userID == "" {
			response.Unauthorized(c, "Missing authentication claims")
			return
		}

		perf, err := h.service.Performance(userID)
		response.Handle(c, perf, err)
	}
}

// AcceptOrderHandler moves a confirmed order into fulfilment
// URL parameter: order_id
func (h *GinHandlers) AcceptOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")
		if userID == "" {
			response.Unauthorized(c, "Missing authentication claims")
			return
		}

		order, err := h.service.AcceptOrder(userID, c.Param("order_id"))
		response.HandleOK(c, order, err)
	}
}

// ShipOrderHandler records the courier handoff
// URL parameter: order_id
func (h *GinHandlers) ShipOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")
		if userID == "" {
			response.Unauthorized(c, "Missing authentication claims")
			return
		}

		var req ShipOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		order, err := h.service.ShipOrder(userID, c.Param("order_id"), req)
		response.HandleOK(c, order, err)
	}
}

// DeliverOrderHandler completes fulfilment for a shipped order
// URL parameter: order_id
func (h *GinHandlers) DeliverOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")
		if userID == "" {
			response.Unauthorized(c, "Missing authentication claims")
			return
		}

		order, err := h.service.DeliverOrder(userID, c.Param("order_id"))
		response.HandleOK(c, order, err)
	}
}

// CancelOrderHandler cancels an unshipped order and releases its reservations
// URL parameter: order_id
func (h *GinHandlers) CancelOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")
		if userID == "" {
			response.Unauthorized(c, "Missing authentication claims")
			return
		}

		var req struct {
			Reason string `json:"reason"`
		}
		// Reason is optional; ignore body parse errors for an empty body.
		_ = c.ShouldBindJSON(&req)

		order, err := h.service.CancelOrder(userID, c.Param("order_id"), req.Reason)
		response.HandleOK(c, order, err)
	}
}
