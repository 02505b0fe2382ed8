package orders

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/secufur/commerce-api/internal/types"
	"github.com/secufur/commerce-api/pkg/response"
)

// AddressRequest is the shipping address payload.
type AddressRequest struct {
	Line1   string `json:"line1" binding:"required"`
	Line2   string `json:"line2"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state" binding:"required"`
	Pincode string `json:"pincode" binding:"required"`
}

// CreateAddress stores a shipping address for the caller.
func (s *Service) CreateAddress(userID string, req *AddressRequest) (*types.Address, error) {
	address := &types.Address{
		AddressID: uuid.New().String(),
		UserID:    userID,
		Line1:     req.Line1,
		Line2:     req.Line2,
		City:      req.City,
		State:     req.State,
		Pincode:   req.Pincode,
	}
	if err := s.db.CreateAddress(address); err != nil {
		return nil, err
	}
	return address, nil
}

// ListAddresses returns the caller's saved addresses, newest first.
func (s *Service) ListAddresses(userID string) ([]types.Address, error) {
	return s.db.ListAddressesByUserID(userID)
}

// CreateAddressHandler handles POST requests to save a shipping address
func (h *GinHandlers) CreateAddressHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")
		if userID == "" {
			response.Unauthorized(c, "Missing authentication claims")
			return
		}

		var req AddressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		address, err := h.service.CreateAddress(userID, &req)
		response.Handle(c, address, err)
	}
}

// ListAddressesHandler handles GET requests for the caller's addresses
func (h *GinHandlers) ListAddressesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")
		if userID == "" {
			response.Unauthorized(c, "Missing authentication claims")
			return
		}

		addresses, err := h.service.ListAddresses(userID)
		response.Handle(c, addresses, err)
	}
}
