package types

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleBuyer  = "BUYER"
	RoleSeller = "SELLER"
	RoleAdmin  = "ADMIN"
)

// Order statuses
const (
	OrderStatusPending   = "PENDING"
	OrderStatusConfirmed = "CONFIRMED"
	OrderStatusAccepted  = "ACCEPTED"
	OrderStatusShipped   = "SHIPPED"
	OrderStatusDelivered = "DELIVERED"
	OrderStatusCancelled = "CANCELLED"
)

// Payment statuses
const (
	PaymentStatusPending = "PENDING"
	PaymentStatusSuccess = "SUCCESS"
	PaymentStatusFailed  = "FAILED"
)

// Seller profile statuses
const (
	SellerStatusApplied     = "APPLIED"
	SellerStatusUnderReview = "UNDER_REVIEW"
	SellerStatusApproved    = "APPROVED"
	SellerStatusLive        = "LIVE"
	SellerStatusSuspended   = "SUSPENDED"
	SellerStatusRejected    = "REJECTED"
)

// Product statuses
const (
	ProductStatusDraft     = "DRAFT"
	ProductStatusSubmitted = "SUBMITTED"
	ProductStatusLive      = "LIVE"
	ProductStatusRejected  = "REJECTED"
	ProductStatusArchived  = "ARCHIVED"
)

type User struct {
	gorm.Model   `json:"-"`
	UserID       string    `gorm:"uniqueIndex" json:"user_id"`
	Name         string    `json:"name"`
	Email        string    `gorm:"uniqueIndex" json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"` // BUYER, SELLER, ADMIN
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Address struct {
	gorm.Model `json:"-"`
	AddressID  string `gorm:"uniqueIndex" json:"address_id"`
	UserID     string `json:"user_id"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	Pincode    string `json:"pincode"`
}

type SellerProfile struct {
	gorm.Model         `json:"-"`
	SellerID           string     `gorm:"uniqueIndex" json:"seller_id"`
	UserID             string     `gorm:"uniqueIndex" json:"user_id"`
	BusinessName       string     `json:"business_name"`
	BrandName          string     `json:"brand_name"`
	GSTNumber          string     `json:"gst_number"`
	PANNumber          string     `json:"pan_number"`
	ContactPhone       string     `json:"contact_phone"`
	CommissionRate     float64    `json:"commission_rate"`
	Status             string     `json:"status"` // APPLIED, UNDER_REVIEW, APPROVED, LIVE, SUSPENDED, REJECTED
	DocumentsSubmitted bool       `json:"documents_submitted"`
	AgreementAccepted  bool       `json:"agreement_accepted"`
	RejectionReason    string     `json:"rejection_reason,omitempty"`
	ApprovedAt         *time.Time `json:"approved_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

type Product struct {
	gorm.Model     `json:"-"`
	ProductID      string    `gorm:"uniqueIndex" json:"product_id"`
	SellerID       string    `gorm:"index" json:"seller_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Category       string    `gorm:"index" json:"category"`
	Price          float64   `json:"price"`
	Stock          int       `json:"stock"`
	ReservedStock  int       `json:"reserved_stock"`
	SoldCount      int       `json:"sold_count"`
	IsActive       bool      `json:"is_active"`
	IsLocked       bool      `json:"is_locked"`
	Status         string    `json:"status"` // DRAFT, SUBMITTED, LIVE, REJECTED, ARCHIVED
	Specifications string    `json:"specifications,omitempty"` // JSON object
	RejectionReason string   `json:"rejection_reason,omitempty"`
	Reviews        []Review  `json:"-" gorm:"foreignKey:ProductID;references:ProductID"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AvailableStock is the stock not held by open orders.
func (p *Product) AvailableStock() int {
	return p.Stock - p.ReservedStock
}

type Review struct {
	gorm.Model `json:"-"`
	ReviewID   string    `gorm:"uniqueIndex" json:"review_id"`
	ProductID  string    `gorm:"index" json:"product_id"`
	UserID     string    `json:"user_id"`
	Rating     int       `json:"rating"` // 1-5
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type Order struct {
	gorm.Model        `json:"-"`
	OrderID           string      `gorm:"uniqueIndex" json:"order_id"`
	UserID            string      `gorm:"index" json:"user_id"`
	TotalAmount       float64     `json:"total_amount"`
	Currency          string      `json:"currency"`
	Status            string      `json:"status"` // PENDING, CONFIRMED, ACCEPTED, SHIPPED, DELIVERED, CANCELLED
	ShippingAddressID string      `json:"shipping_address_id"`
	Courier           string      `json:"courier,omitempty"`
	TrackingNumber    string      `json:"tracking_number,omitempty"`
	AcceptBy          *time.Time  `json:"accept_by,omitempty"`
	DispatchBy        *time.Time  `json:"dispatch_by,omitempty"`
	IsDelayed         bool        `json:"is_delayed"`
	Items             []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID;references:OrderID"`
	Payment           *Payment    `json:"payment,omitempty" gorm:"foreignKey:OrderID;references:OrderID"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

type OrderItem struct {
	gorm.Model `json:"-"`
	ItemID     string  `gorm:"uniqueIndex" json:"item_id"`
	OrderID    string  `gorm:"index" json:"order_id"`
	ProductID  string  `json:"product_id"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"` // unit price snapshot at order time
}

type Payment struct {
	gorm.Model       `json:"-"`
	PaymentID        string    `gorm:"uniqueIndex" json:"payment_id"`
	OrderID          string    `gorm:"uniqueIndex" json:"order_id"`
	Amount           float64   `json:"amount"`
	Status           string    `json:"status"` // PENDING, SUCCESS, FAILED
	GatewayOrderID   string    `json:"gateway_order_id,omitempty"`
	GatewayPaymentID string    `json:"gateway_payment_id,omitempty"`
	GatewaySignature string    `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type AuditLog struct {
	gorm.Model `json:"-"`
	LogID      string    `gorm:"uniqueIndex" json:"log_id"`
	SellerID   string    `gorm:"index" json:"seller_id,omitempty"`
	UserID     string    `json:"user_id,omitempty"`
	Action     string    `json:"action"`
	Category   string    `json:"category"` // Auth, Product, Order, Financial, Compliance, Settings, System
	Details    string    `json:"details"`
	Severity   string    `json:"severity"` // Info, Warning, Critical
	CreatedAt  time.Time `json:"created_at"`
}

// IdempotencyRecord maps an idempotency key to the resource it produced.
type IdempotencyRecord struct {
	gorm.Model     `json:"-"`
	IdempotencyKey string    `gorm:"uniqueIndex" json:"idempotency_key"`
	ResourceID     string    `json:"resource_id"`
	ResourceType   string    `json:"resource_type"`
	ExpiresAt      time.Time `json:"expires_at"`
}
