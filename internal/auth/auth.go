package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/secufur/commerce-api/internal/types"
	"github.com/secufur/commerce-api/pkg/response"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTokenGeneration    = errors.New("failed to generate token")
)

// RegisterRequest is the account-creation payload. Sellers supply a business
// name and get a profile in APPLIED status.
type RegisterRequest struct {
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	Role         string `json:"role"`
	BusinessName string `json:"business_name"`
	BrandName    string `json:"brand_name"`
	GSTNumber    string `json:"gst_number"`
	PANNumber    string `json:"pan_number"`
	Phone        string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse represents the JWT token response
type TokenResponse struct {
	Token      string    `json:"jwt_token"`
	Expiration time.Time `json:"expiration"`
}

// Claims represents the JWT claims structure
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Email  string `json:"email"`
}

// Service handles account registration, login and token issuance
type Service struct {
	db        *Database
	jwtSecret []byte
}

// NewService creates a new authentication service with the given JWT secret
func NewService(gormDB *gorm.DB, jwtSecret string) *Service {
	return &Service{
		db:        NewDatabase(gormDB),
		jwtSecret: []byte(jwtSecret),
	}
}

// Register creates a user account. Seller registrations also create a seller
// profile in APPLIED status within the same transaction.
func (s *Service) Register(req *RegisterRequest) (*types.User, error) {
	role := strings.ToUpper(req.Role)
	switch role {
	case "":
		role = types.RoleBuyer
	case types.RoleBuyer, types.RoleSeller:
	default:
		return nil, fmt.Errorf("%w: unsupported role %q", types.ErrValidation, req.Role)
	}

	if existing, err := s.db.GetUserByEmail(req.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("%w: email already registered", types.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &types.User{
		UserID:       uuid.New().String(),
		Name:         req.Name,
		Email:        strings.ToLower(req.Email),
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	var profile *types.SellerProfile
	if role == types.RoleSeller {
		if req.BusinessName == "" {
			return nil, fmt.Errorf("%w: business_name is required for seller accounts", types.ErrValidation)
		}
		profile = &types.SellerProfile{
			SellerID:       uuid.New().String(),
			UserID:         user.UserID,
			BusinessName:   req.BusinessName,
			BrandName:      req.BrandName,
			GSTNumber:      req.GSTNumber,
			PANNumber:      req.PANNumber,
			ContactPhone:   req.Phone,
			CommissionRate: 10,
			Status:         types.SellerStatusApplied,
			CreatedAt:      time.Now(),
			UpdatedAt:      time.Now(),
		}
	}

	if err := s.db.CreateUserWithProfile(user, profile); err != nil {
		return nil, err
	}

	return user, nil
}

// Login verifies the credentials and returns a signed JWT with a 24-hour expiry
func (s *Service) Login(req *LoginRequest) (*TokenResponse, error) {
	user, err := s.db.GetUserByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	expiration := time.Now().Add(24 * time.Hour)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiration),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
		UserID: user.UserID,
		Role:   user.Role,
		Email:  user.Email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, ErrTokenGeneration
	}

	return &TokenResponse{
		Token:      tokenString,
		Expiration: expiration,
	}, nil
}

// ValidateToken validates a JWT token and returns the claims
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// GinHandlers contains HTTP handlers for authentication endpoints
type GinHandlers struct {
	service *Service
}

// NewGinHandlers creates a new set of HTTP handlers for authentication endpoints
func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{
		service: service,
	}
}

// RegisterHandler handles POST requests to create accounts
func (h *GinHandlers) RegisterHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		user, err := h.service.Register(&req)
		response.Handle(c, user, err)
	}
}

// LoginHandler handles POST requests to exchange credentials for a JWT
func (h *GinHandlers) LoginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}

		token, err := h.service.Login(&req)
		if errors.Is(err, ErrInvalidCredentials) {
			response.Unauthorized(c, err.Error())
			return
		}
		response.Handle(c, token, err)
	}
}
