// Package seller implements the seller lifecycle: onboarding and verification,
// admin review, fulfilment of confirmed orders and performance reporting.
package seller

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/secufur/commerce-api/internal/audit"
	"github.com/secufur/commerce-api/internal/events"
	"github.com/secufur/commerce-api/internal/types"
)

type Service struct {
	db        *Database
	audit     *audit.Service
	publisher events.Publisher
}

func NewService(db *gorm.DB, auditSvc *audit.Service, publisher events.Publisher) *Service {
	return &Service{
		db:        NewDatabase(db),
		audit:     auditSvc,
		publisher: publisher,
	}
}

func (s *Service) GetProfileByUserID(userID string) (*types.SellerProfile, error) {
	return s.db.GetProfileByUserID(userID)
}

// SubmitDocumentsRequest carries the verification submission. Document files
// are stored out of band; the API records that the packet was submitted.
type SubmitDocumentsRequest struct {
	GSTNumber         string `json:"gst_number" binding:"required"`
	PANNumber         string `json:"pan_number" binding:"required"`
	AgreementAccepted bool   `json:"agreement_accepted"`
}

// SubmitDocuments moves an applied or previously rejected seller into review.
func (s *Service) SubmitDocuments(userID string, req SubmitDocumentsRequest) (*types.SellerProfile, error) {
	profile, err := s.db.GetProfileByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load seller profile: %w", err)
	}
	if profile == nil {
		return nil, fmt.Errorf("%w: seller profile not found", types.ErrNotFound)
	}

	if profile.Status != types.SellerStatusApplied && profile.Status != types.SellerStatusRejected {
		return nil, fmt.Errorf("%w: documents already submitted", types.ErrInvalidState)
	}
	if !req.AgreementAccepted {
		return nil, fmt.Errorf("%w: seller agreement must be accepted", types.ErrValidation)
	}

	profile.GSTNumber = req.GSTNumber
	profile.PANNumber = req.PANNumber
	profile.DocumentsSubmitted = true
	profile.AgreementAccepted = true
	profile.RejectionReason = ""
	profile.Status = types.SellerStatusUnderReview

	if err := s.db.UpdateProfile(profile); err != nil {
		return nil, fmt.Errorf("failed to update seller profile: %w", err)
	}

	s.audit.Log(profile.SellerID, userID, "Verification Documents Submitted", audit.CategoryCompliance,
		fmt.Sprintf("GSTIN %s and PAN submitted for review", req.GSTNumber), audit.SeverityInfo)

	log.Info().
		Str("seller_id", profile.SellerID).
		Msg("seller moved to review")

	return profile, nil
}

// ReviewSellerRequest is the admin decision payload.
type ReviewSellerRequest struct {
	Decision string `json:"decision" binding:"required"` // approve, activate, reject, suspend
	Reason   string `json:"reason"`
}

// ReviewSeller applies an admin decision to a seller's onboarding state.
// Approval requires a completed review, activation requires approval, and
// suspension is only valid for approved or live sellers.
func (s *Service) ReviewSeller(sellerID, adminID string, req ReviewSellerRequest) (*types.SellerProfile, error) {
	profile, err := s.db.GetProfileBySellerID(sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load seller profile: %w", err)
	}
	if profile == nil {
		return nil, fmt.Errorf("%w: seller not found", types.ErrNotFound)
	}

	severity := audit.SeverityInfo

	switch req.Decision {
	case "approve":
		if profile.Status != types.SellerStatusUnderReview {
			return nil, fmt.Errorf("%w: seller is not under review", types.ErrInvalidState)
		}
		now := time.Now()
		profile.Status = types.SellerStatusApproved
		profile.ApprovedAt = &now
	case "activate":
		if profile.Status != types.SellerStatusApproved {
			return nil, fmt.Errorf("%w: seller is not approved", types.ErrInvalidState)
		}
		profile.Status = types.SellerStatusLive
	case "reject":
		if profile.Status != types.SellerStatusUnderReview {
			return nil, fmt.Errorf("%w: seller is not under review", types.ErrInvalidState)
		}
		if req.Reason == "" {
			return nil, fmt.Errorf("%w: rejection requires a reason", types.ErrValidation)
		}
		profile.Status = types.SellerStatusRejected
		profile.RejectionReason = req.Reason
	case "suspend":
		if profile.Status != types.SellerStatusApproved && profile.Status != types.SellerStatusLive {
			return nil, fmt.Errorf("%w: only approved or live sellers can be suspended", types.ErrInvalidState)
		}
		profile.Status = types.SellerStatusSuspended
		severity = audit.SeverityCritical
	default:
		return nil, fmt.Errorf("%w: unknown decision %q", types.ErrValidation, req.Decision)
	}

	if err := s.db.UpdateProfile(profile); err != nil {
		return nil, fmt.Errorf("failed to update seller profile: %w", err)
	}

	s.audit.Log(profile.SellerID, adminID, "Seller Review Decision", audit.CategoryCompliance,
		fmt.Sprintf("Decision %s, status now %s. %s", req.Decision, profile.Status, req.Reason), severity)

	log.Info().
		Str("seller_id", profile.SellerID).
		Str("decision", req.Decision).
		Str("status", profile.Status).
		Msg("seller review decision applied")

	return profile, nil
}

// Performance aggregates the seller's order counts and cancellation rate.
func (s *Service) Performance(userID string) (*types.SellerPerformance, error) {
	profile, err := s.operationalProfile(userID)
	if err != nil {
		return nil, err
	}

	counts, err := s.db.CountSellerOrdersByStatus(profile.SellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate seller orders: %w", err)
	}
	delayed, err := s.db.CountSellerDelayed(profile.SellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count delayed orders: %w", err)
	}

	perf := &types.SellerPerformance{
		OrdersReceived: counts[types.OrderStatusConfirmed] +
			counts[types.OrderStatusAccepted] +
			counts[types.OrderStatusShipped] +
			counts[types.OrderStatusDelivered] +
			counts[types.OrderStatusCancelled],
		OrdersAccepted: counts[types.OrderStatusAccepted] +
			counts[types.OrderStatusShipped] +
			counts[types.OrderStatusDelivered],
		OrdersDelivered: counts[types.OrderStatusDelivered],
		OrdersCancelled: counts[types.OrderStatusCancelled],
		DelayedCount:    delayed,
	}
	if perf.OrdersReceived > 0 {
		perf.CancellationRate = float64(perf.OrdersCancelled) / float64(perf.OrdersReceived)
	}

	return perf, nil
}

// operationalProfile resolves the caller's seller profile and checks the
// account may operate. Suspended and not-yet-approved sellers are blocked.
func (s *Service) operationalProfile(userID string) (*types.SellerProfile, error) {
	profile, err := s.db.GetProfileByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load seller profile: %w", err)
	}
	if profile == nil {
		return nil, fmt.Errorf("%w: seller profile not found", types.ErrNotFound)
	}
	if profile.Status != types.SellerStatusApproved && profile.Status != types.SellerStatusLive {
		return nil, fmt.Errorf("%w: seller account is not operational", types.ErrForbidden)
	}
	return profile, nil
}

type GinHandlers struct {
	service *Service
}

func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{service: service}
}
