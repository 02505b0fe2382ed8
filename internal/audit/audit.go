package audit

import (
	"fmt"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/secufur/commerce-api/internal/types"
	"github.com/secufur/commerce-api/pkg/response"
)

// Audit categories
const (
	CategoryAuth       = "Auth"
	CategoryProduct    = "Product"
	CategoryOrder      = "Order"
	CategoryFinancial  = "Financial"
	CategoryCompliance = "Compliance"
	CategorySettings   = "Settings"
	CategorySystem     = "System"
)

// Severities
const (
	SeverityInfo     = "Info"
	SeverityWarning  = "Warning"
	SeverityCritical = "Critical"
)

// PII patterns masked before an entry is stored.
var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`(\+91[\-\s]?)?[0-9]{10}`)
	gstinPattern = regexp.MustCompile(`[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z]{1}[1-9A-Z]{1}Z[0-9A-Z]{1}`)
)

// Mask replaces email, phone and GSTIN occurrences with redacted placeholders.
func Mask(details string) string {
	masked := emailPattern.ReplaceAllString(details, "***@***.com")
	masked = phonePattern.ReplaceAllString(masked, "+91-XXXXX-XXXXX")
	masked = gstinPattern.ReplaceAllString(masked, "XX-GSTIN-XX")
	return masked
}

// Service appends masked audit entries and serves seller-scoped queries.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Log records an audit entry, masking PII in details first. Failures are logged
// and swallowed so auditing never fails the operation it describes.
func (s *Service) Log(sellerID, userID, action, category, details, severity string) {
	if severity == "" {
		severity = SeverityInfo
	}

	entry := types.AuditLog{
		LogID:     fmt.Sprintf("LOG-%d", time.Now().UnixNano()),
		SellerID:  sellerID,
		UserID:    userID,
		Action:    action,
		Category:  category,
		Details:   Mask(details),
		Severity:  severity,
		CreatedAt: time.Now(),
	}

	if err := s.db.Create(&entry).Error; err != nil {
		log.Error().Err(err).
			Str("action", action).
			Str("category", category).
			Msg("failed to write audit log entry")
	}
}

// SellerLogs returns a seller's audit entries, newest first.
func (s *Service) SellerLogs(sellerID string, limit int) ([]types.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var logs []types.AuditLog
	err := s.db.Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

// GinHandlers contains HTTP handlers for audit endpoints
type GinHandlers struct {
	service *Service
	lookup  SellerLookup
}

// SellerLookup resolves the seller profile for the authenticated user.
type SellerLookup interface {
	GetProfileByUserID(userID string) (*types.SellerProfile, error)
}

func NewGinHandlers(service *Service, lookup SellerLookup) *GinHandlers {
	return &GinHandlers{service: service, lookup: lookup}
}

// SellerLogsHandler handles GET requests for the caller's audit trail
func (h *GinHandlers) SellerLogsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, err := h.lookup.GetProfileByUserID(c.GetString("userID"))
		if err != nil {
			response.Handle(c, nil, err)
			return
		}
		if profile == nil {
			response.NotFound(c, "Seller profile not found")
			return
		}

		logs, err := h.service.SellerLogs(profile.SellerID, 100)
		response.Handle(c, logs, err)
	}
}
