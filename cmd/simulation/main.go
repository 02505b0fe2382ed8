package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/secufur/commerce-api/internal/audit"
	"github.com/secufur/commerce-api/internal/auth"
	"github.com/secufur/commerce-api/internal/catalog"
	"github.com/secufur/commerce-api/internal/database"
	"github.com/secufur/commerce-api/internal/events"
	"github.com/secufur/commerce-api/internal/orders"
	"github.com/secufur/commerce-api/internal/payments"
	"github.com/secufur/commerce-api/internal/seller"
	"github.com/secufur/commerce-api/internal/types"
	"github.com/secufur/commerce-api/pkg/middleware"
)

const (
	minCheckouts  = 15
	maxCheckouts  = 150
	numWorkers    = 5
	numBuyers     = 10
	serverAddress = "http://localhost:8080"
	jwtSecret     = "commerce-sim-secret"
	gatewaySecret = "sim-gateway-secret"
	buyerPassword = "simulation-pass"
)

var productSeeds = []struct {
	name     string
	category string
	price    float64
}{
	{"AA Alkaline Battery 8-Pack", "batteries", 249},
	{"AAA Alkaline Battery 8-Pack", "batteries", 229},
	{"9V Battery 2-Pack", "batteries", 199},
	{"USB-C Charging Cable 1m", "accessories", 349},
	{"Wireless Mouse", "accessories", 799},
	{"Bluetooth Speaker", "electronics", 2499},
	{"LED Desk Lamp", "electronics", 1299},
	{"Power Bank 10000mAh", "electronics", 1599},
}

// init configures the logger for the simulation with pretty printing and timestamp
func init() {
	// Configure pretty logging
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
}

// routeStats tracks performance statistics for an API endpoint
type routeStats struct {
	name       string
	durations  []time.Duration
	totalCalls int
	failures   int
}

// addDuration records a new duration measurement for the route
func (rs *routeStats) addDuration(d time.Duration) {
	rs.durations = append(rs.durations, d)
	rs.totalCalls++
}

// calculate computes performance statistics from recorded durations
// Returns min, max, mean, median, 95th percentile, and 99th percentile durations
func (rs *routeStats) calculate() (min, max, mean, median, p95, p99 time.Duration) {
	if len(rs.durations) == 0 {
		return 0, 0, 0, 0, 0, 0
	}

	// Sort durations for percentile calculations
	sort.Slice(rs.durations, func(i, j int) bool {
		return rs.durations[i] < rs.durations[j]
	})

	min = rs.durations[0]
	max = rs.durations[len(rs.durations)-1]

	// Calculate mean
	var sum time.Duration
	for _, d := range rs.durations {
		sum += d
	}
	mean = sum / time.Duration(len(rs.durations))

	// Calculate median
	median = rs.durations[len(rs.durations)/2]

	// Calculate percentiles
	p95idx := int(math.Ceil(float64(len(rs.durations))*0.95)) - 1
	p99idx := int(math.Ceil(float64(len(rs.durations))*0.99)) - 1
	p95 = rs.durations[p95idx]
	p99 = rs.durations[p99idx]

	return
}

// buyer is a seeded shopper account with a shipping address.
type buyer struct {
	email     string
	addressID string
	token     string
}

// simulationClient drives the checkout flow over HTTP
type simulationClient struct {
	baseURL string
	client  *http.Client
	buyers  []*buyer
	stats   map[string]*routeStats
	mu      sync.Mutex
}

// newSimulationClient logs every seeded buyer in and prepares performance
// tracking
func newSimulationClient(buyers []*buyer) (*simulationClient, error) {
	sc := &simulationClient{
		baseURL: serverAddress,
		client:  &http.Client{Timeout: 10 * time.Second},
		buyers:  buyers,
		stats: map[string]*routeStats{
			"login":  {name: "Login"},
			"browse": {name: "Browse Products"},
			"create": {name: "Create Order"},
			"init":   {name: "Init Payment"},
			"verify": {name: "Verify Payment"},
			"get":    {name: "Get Order"},
		},
	}

	for _, b := range buyers {
		token, err := sc.login(b.email)
		if err != nil {
			return nil, fmt.Errorf("failed to log in %s: %w", b.email, err)
		}
		b.token = token
	}

	return sc, nil
}

func (sc *simulationClient) track(route string, start time.Time, failed bool) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.stats[route].addDuration(time.Since(start))
	if failed {
		sc.stats[route].failures++
	}
}

// login exchanges seeded credentials for a JWT
func (sc *simulationClient) login(email string) (string, error) {
	start := time.Now()
	var failed bool
	defer func() { sc.track("login", start, failed) }()

	body, err := json.Marshal(map[string]string{
		"email":    email,
		"password": buyerPassword,
	})
	if err != nil {
		return "", err
	}

	resp, err := sc.client.Post(
		fmt.Sprintf("%s/api/v1/auth/login", sc.baseURL),
		"application/json",
		bytes.NewBuffer(body),
	)
	if err != nil {
		failed = true
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		failed = true
		return "", fmt.Errorf("login failed with status: %d", resp.StatusCode)
	}

	var result struct {
		Success bool `json:"success"`
		Data    struct {
			Token string `json:"jwt_token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		failed = true
		return "", err
	}
	if result.Data.Token == "" {
		failed = true
		return "", fmt.Errorf("no token in login response")
	}

	return result.Data.Token, nil
}

// browseProducts lists the live catalog, optionally filtered by category
func (sc *simulationClient) browseProducts(category string) ([]types.ListedProduct, error) {
	start := time.Now()
	var failed bool
	defer func() { sc.track("browse", start, failed) }()

	url := fmt.Sprintf("%s/api/v1/products", sc.baseURL)
	if category != "" {
		url += "?category=" + category
	}

	resp, err := sc.client.Get(url)
	if err != nil {
		failed = true
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		failed = true
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		failed = true
		return nil, fmt.Errorf("browse failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Success bool `json:"success"`
		Data    struct {
			Products []types.ListedProduct `json:"products"`
		} `json:"data"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		failed = true
		return nil, fmt.Errorf("failed to decode response: %w, body: %s", err, string(respBody))
	}

	return result.Data.Products, nil
}

// createOrder submits a checkout for the buyer
// Returns the order ID on success
func (sc *simulationClient) createOrder(b *buyer, items []map[string]interface{}, total float64) (string, error) {
	start := time.Now()
	var failed bool
	defer func() { sc.track("create", start, failed) }()

	body, err := json.Marshal(map[string]interface{}{
		"items":             items,
		"shippingAddressId": b.addressID,
		"totalAmount":       total,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest(
		"POST",
		fmt.Sprintf("%s/api/v1/orders", sc.baseURL),
		bytes.NewBuffer(body),
	)
	if err != nil {
		return "", err
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", b.token))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", uuid.New().String())

	resp, err := sc.client.Do(req)
	if err != nil {
		failed = true
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		failed = true
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	log.Debug().Str("response", string(respBody)).Msg("Create order response")

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		failed = true
		return "", fmt.Errorf("create order failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Success bool `json:"success"`
		Data    struct {
			OrderID string `json:"order_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		failed = true
		return "", fmt.Errorf("failed to decode response: %w, body: %s", err, string(respBody))
	}

	if result.Data.OrderID == "" {
		failed = true
		return "", fmt.Errorf("no order ID in response: %s", string(respBody))
	}

	return result.Data.OrderID, nil
}

// initPayment creates the gateway order for a pending checkout
// Returns the gateway order ID and payable amount
func (sc *simulationClient) initPayment(b *buyer, orderID string) (string, float64, error) {
	start := time.Now()
	var failed bool
	defer func() { sc.track("init", start, failed) }()

	req, err := http.NewRequest(
		"POST",
		fmt.Sprintf("%s/api/v1/orders/%s/payment/init", sc.baseURL, orderID),
		nil,
	)
	if err != nil {
		return "", 0, err
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", b.token))

	resp, err := sc.client.Do(req)
	if err != nil {
		failed = true
		return "", 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		failed = true
		return "", 0, fmt.Errorf("failed to read response body: %w", err)
	}
	log.Debug().Str("response", string(respBody)).Msg("Init payment response")

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		failed = true
		return "", 0, fmt.Errorf("init payment failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Success bool                       `json:"success"`
		Data    types.PaymentInitResponse `json:"data"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		failed = true
		return "", 0, fmt.Errorf("failed to decode response: %w, body: %s", err, string(respBody))
	}

	if result.Data.OrderID == "" {
		failed = true
		return "", 0, fmt.Errorf("no gateway order ID in response: %s", string(respBody))
	}

	return result.Data.OrderID, result.Data.Amount, nil
}

// verifyPayment plays the gateway callback with a locally computed signature
func (sc *simulationClient) verifyPayment(orderID, gatewayOrderID string) error {
	start := time.Now()
	var failed bool
	defer func() { sc.track("verify", start, failed) }()

	paymentID := fmt.Sprintf("pay_sim_%s", uuid.New().String()[:8])
	signature := payments.Signature(gatewayOrderID, paymentID, []byte(gatewaySecret))

	body, err := json.Marshal(map[string]string{
		"razorpay_order_id":   gatewayOrderID,
		"razorpay_payment_id": paymentID,
		"razorpay_signature":  signature,
	})
	if err != nil {
		return err
	}

	resp, err := sc.client.Post(
		fmt.Sprintf("%s/api/v1/orders/%s/payment/verify", sc.baseURL, orderID),
		"application/json",
		bytes.NewBuffer(body),
	)
	if err != nil {
		failed = true
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		failed = true
		return fmt.Errorf("failed to read response body: %w", err)
	}
	log.Debug().Str("response", string(respBody)).Msg("Verify payment response")

	if resp.StatusCode != http.StatusOK {
		failed = true
		return fmt.Errorf("verify failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Success bool   `json:"success"`
		OrderID string `json:"orderId"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		failed = true
		return fmt.Errorf("failed to decode response: %w, body: %s", err, string(respBody))
	}
	if !result.Success {
		failed = true
		return fmt.Errorf("verification rejected: %s", string(respBody))
	}

	return nil
}

// getOrder retrieves the current state of an order
func (sc *simulationClient) getOrder(b *buyer, orderID string) (*types.Order, error) {
	start := time.Now()
	var failed bool
	defer func() { sc.track("get", start, failed) }()

	req, err := http.NewRequest(
		"GET",
		fmt.Sprintf("%s/api/v1/orders/%s", sc.baseURL, orderID),
		nil,
	)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", b.token))

	resp, err := sc.client.Do(req)
	if err != nil {
		failed = true
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		failed = true
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		failed = true
		return nil, fmt.Errorf("get order failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Success bool        `json:"success"`
		Data    types.Order `json:"data"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		failed = true
		return nil, fmt.Errorf("failed to decode response: %w, body: %s", err, string(respBody))
	}

	return &result.Data, nil
}

// printPerformanceStats outputs formatted performance statistics for all API endpoints
func (sc *simulationClient) printPerformanceStats() {
	fmt.Println("\nAPI Performance Statistics")
	fmt.Println(strings.Repeat("-", 100))
	fmt.Printf("%-20s %10s %10s %10s %10s %10s %10s %10s %10s\n",
		"Endpoint", "Calls", "Errors", "Min", "Max", "Mean", "Median", "P95", "P99")
	fmt.Println(strings.Repeat("-", 100))

	for _, stats := range sc.stats {
		min, max, mean, median, p95, p99 := stats.calculate()
		fmt.Printf("%-20s %10d %10d %10s %10s %10s %10s %10s %10s\n",
			stats.name,
			stats.totalCalls,
			stats.failures,
			min.Round(time.Millisecond),
			max.Round(time.Millisecond),
			mean.Round(time.Millisecond),
			median.Round(time.Millisecond),
			p95.Round(time.Millisecond),
			p99.Round(time.Millisecond))
	}
	fmt.Println(strings.Repeat("-", 100))
}

// checkoutResult carries the outcome of one simulated checkout
type checkoutResult struct {
	orderID string
	buyer   *buyer
	total   float64
	items   map[string]int
}

// main runs the checkout simulation
// It starts a local API server and simulates multiple concurrent shoppers
func main() {
	// Start the server in a goroutine
	buyersChan := make(chan []*buyer, 1)
	go func() {
		if err := startServer(buyersChan); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	buyers := <-buyersChan

	// Wait for server to start
	time.Sleep(2 * time.Second)

	// Initialize simulation client
	simClient, err := newSimulationClient(buyers)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize simulation client")
	}

	// Browse the catalog once to drive purchases off live data
	products, err := simClient.browseProducts("")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to browse products")
	}
	log.Info().Int("products", len(products)).Msg("Catalog loaded")

	// Generate random number of checkouts to run
	targetCheckouts := rand.Intn(maxCheckouts-minCheckouts) + minCheckouts
	log.Info().Int("target_checkouts", targetCheckouts).Msg("Starting simulation")

	resultsChan := make(chan checkoutResult, targetCheckouts)
	var wg sync.WaitGroup

	// Start worker goroutines
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			runCheckouts(workerID, targetCheckouts/numWorkers, simClient, products, resultsChan)
		}(i)
	}

	wg.Wait()
	close(resultsChan)

	// Collect statistics during processing
	stats := struct {
		TotalCheckouts int
		PaidOrders     int
		FailedPayments int
		TotalValue     float64
		StartTime      time.Time
		Products       map[string]int
	}{
		StartTime: time.Now(),
		Products:  make(map[string]int),
	}
	stats.TotalCheckouts = targetCheckouts

	var results []checkoutResult
	for r := range resultsChan {
		results = append(results, r)
	}

	// Pay for every created order
	for _, r := range results {
		b := r.buyer

		gatewayOrderID, amount, err := simClient.initPayment(b, r.orderID)
		if err != nil {
			log.Error().Err(err).Str("order_id", r.orderID).Msg("Failed to init payment")
			stats.FailedPayments++
			continue
		}

		if err := simClient.verifyPayment(r.orderID, gatewayOrderID); err != nil {
			log.Error().Err(err).Str("order_id", r.orderID).Msg("Failed to verify payment")
			stats.FailedPayments++
			continue
		}

		stats.PaidOrders++
		stats.TotalValue += amount
		for name, qty := range r.items {
			stats.Products[name] += qty
		}

		order, err := simClient.getOrder(b, r.orderID)
		if err == nil && order.Status != types.OrderStatusConfirmed {
			log.Error().
				Str("order_id", r.orderID).
				Str("status", order.Status).
				Msg("Paid order not confirmed")
		}

		log.Info().
			Str("order_id", r.orderID).
			Float64("amount", amount).
			Msg("Order paid")
	}

	// Print summary
	duration := time.Since(stats.StartTime)
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("CHECKOUT SIMULATION SUMMARY")
	fmt.Println(strings.Repeat("=", 80))

	fmt.Printf(`
Order Statistics
----------------
Target Checkouts: %d
Orders Created:   %d
Orders Paid:      %d
Failed Payments:  %d
Total Value:      INR %.2f
Duration:         %v

Product Distribution
--------------------
`, stats.TotalCheckouts, len(results), stats.PaidOrders, stats.FailedPayments,
		stats.TotalValue, duration.Round(time.Millisecond))

	// Print product distribution with simple ASCII bar chart
	maxProductCount := 0
	for _, count := range stats.Products {
		if count > maxProductCount {
			maxProductCount = count
		}
	}

	for name, count := range stats.Products {
		barLength := int(float64(count) / float64(maxProductCount) * 20)
		bar := strings.Repeat("#", barLength)
		fmt.Printf("%-30s: %s (%d)\n", name, bar, count)
	}

	fmt.Println("\n" + strings.Repeat("=", 80))

	// Success rate calculation
	successRate := float64(stats.PaidOrders) / float64(stats.TotalCheckouts) * 100
	log.Info().
		Float64("success_rate", successRate).
		Int("target_checkouts", stats.TotalCheckouts).
		Int("paid_orders", stats.PaidOrders).
		Float64("total_value", stats.TotalValue).
		Dur("duration", duration).
		Msg("Simulation completed")

	simClient.printPerformanceStats()
}

// runCheckouts creates random carts and submits them as orders
// Runs as a worker goroutine, sending results to resultsChan
func runCheckouts(workerID, numCheckouts int, simClient *simulationClient, products []types.ListedProduct, resultsChan chan<- checkoutResult) {
	for i := 0; i < numCheckouts; i++ {
		b := simClient.buyers[rand.Intn(len(simClient.buyers))]

		// Build a cart of 1-3 distinct products
		cartSize := rand.Intn(3) + 1
		picked := rand.Perm(len(products))[:cartSize]

		var items []map[string]interface{}
		itemNames := make(map[string]int)
		var total float64
		for _, idx := range picked {
			p := products[idx]
			qty := rand.Intn(3) + 1
			items = append(items, map[string]interface{}{
				"productId": p.ProductID,
				"quantity":  qty,
			})
			itemNames[p.Name] = qty
			total += p.Price * float64(qty)
		}

		orderID, err := simClient.createOrder(b, items, total)
		if err != nil {
			log.Error().Err(err).
				Int("worker_id", workerID).
				Msg("Failed to create order")
			continue
		}

		resultsChan <- checkoutResult{orderID: orderID, buyer: b, total: total, items: itemNames}
		log.Info().
			Int("worker_id", workerID).
			Str("order_id", orderID).
			Int("cart_size", cartSize).
			Float64("total", total).
			Msg("Order created")

		// Random sleep between checkouts
		time.Sleep(time.Duration(rand.Intn(500)) * time.Millisecond)
	}
}

// simGateway stands in for the hosted payment gateway so the simulation runs
// offline. It hands out gateway order IDs without any network calls.
type simGateway struct{}

func (simGateway) CreateOrder(_ context.Context, _ int64, _, _ string) (string, error) {
	return fmt.Sprintf("order_sim_%s", uuid.New().String()[:8]), nil
}

// startServer initializes and starts the commerce API server with seeded data
// Sets up all required services, handlers and routes
func startServer(buyersChan chan<- []*buyer) error {
	if os.Getenv("DATABASE_PATH") == "" {
		os.Setenv("DATABASE_PATH", "simulation.db")
	}

	// Initialize database
	db, err := database.NewDatabase()
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	buyers, err := seedData(db)
	if err != nil {
		return fmt.Errorf("failed to seed simulation data: %w", err)
	}
	buyersChan <- buyers

	publisher, err := events.NewPublisherFromEnv()
	if err != nil {
		return fmt.Errorf("failed to initialize event publisher: %w", err)
	}

	// Initialize services
	authService := auth.NewService(db, jwtSecret)
	auditService := audit.NewService(db)
	catalogService := catalog.NewService(db, catalog.NewCacheFromEnv(), auditService)
	ordersService := orders.NewService(db, publisher)
	paymentsService := payments.NewService(db, simGateway{}, "rzp_test_sim", gatewaySecret, publisher)
	sellerService := seller.NewService(db, auditService, publisher)

	// Initialize router
	router := gin.Default()
	router.Use(middleware.Metrics())

	setupRoutes(router, []byte(jwtSecret),
		auth.NewGinHandlers(authService),
		catalog.NewGinHandlers(catalogService),
		orders.NewGinHandlers(ordersService),
		payments.NewGinHandlers(paymentsService),
		seller.NewGinHandlers(sellerService),
		audit.NewGinHandlers(auditService, sellerService))

	// Start the server
	return router.Run(":8080")
}

// seedData provisions a live seller with products, plus buyer accounts with
// shipping addresses, directly against the database
func seedData(db *gorm.DB) ([]*buyer, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(buyerPassword), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	sellerUser := &types.User{
		UserID:       uuid.New().String(),
		Name:         "Simulation Seller",
		Email:        "seller@simulation.local",
		PasswordHash: string(hash),
		Role:         types.RoleSeller,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := db.Create(sellerUser).Error; err != nil {
		return nil, err
	}

	profile := &types.SellerProfile{
		SellerID:           uuid.New().String(),
		UserID:             sellerUser.UserID,
		BusinessName:       "Simulation Traders",
		CommissionRate:     10,
		Status:             types.SellerStatusLive,
		DocumentsSubmitted: true,
		AgreementAccepted:  true,
		ApprovedAt:         &now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := db.Create(profile).Error; err != nil {
		return nil, err
	}

	for _, seed := range productSeeds {
		product := &types.Product{
			ProductID: uuid.New().String(),
			SellerID:  profile.SellerID,
			Name:      seed.name,
			Category:  seed.category,
			Price:     seed.price,
			Stock:     10000,
			IsActive:  true,
			Status:    types.ProductStatusLive,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := db.Create(product).Error; err != nil {
			return nil, err
		}
	}

	buyers := make([]*buyer, 0, numBuyers)
	for i := 0; i < numBuyers; i++ {
		user := &types.User{
			UserID:       uuid.New().String(),
			Name:         fmt.Sprintf("Buyer %d", i),
			Email:        fmt.Sprintf("buyer%d@simulation.local", i),
			PasswordHash: string(hash),
			Role:         types.RoleBuyer,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := db.Create(user).Error; err != nil {
			return nil, err
		}

		address := &types.Address{
			AddressID: uuid.New().String(),
			UserID:    user.UserID,
			Line1:     fmt.Sprintf("%d Simulation Street", i+1),
			City:      "Bengaluru",
			State:     "Karnataka",
			Pincode:   "560001",
		}
		if err := db.Create(address).Error; err != nil {
			return nil, err
		}

		buyers = append(buyers, &buyer{email: user.Email, addressID: address.AddressID})
	}

	return buyers, nil
}

// setupRoutes configures all API endpoints and their handlers
// Groups routes by functionality and applies appropriate middleware
func setupRoutes(
	router *gin.Engine,
	secret []byte,
	authHandlers *auth.GinHandlers,
	catalogHandlers *catalog.GinHandlers,
	ordersHandlers *orders.GinHandlers,
	paymentsHandlers *payments.GinHandlers,
	sellerHandlers *seller.GinHandlers,
	auditHandlers *audit.GinHandlers,
) {
	v1 := router.Group("/api/v1")
	{
		// Auth routes
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", authHandlers.RegisterHandler())
			authGroup.POST("/login", authHandlers.LoginHandler())
		}

		v1.GET("/products", catalogHandlers.ListProductsHandler())

		addresses := v1.Group("/addresses")
		addresses.Use(middleware.JWTAuth(secret))
		{
			addresses.POST("", ordersHandlers.CreateAddressHandler())
			addresses.GET("", ordersHandlers.ListAddressesHandler())
		}

		// Order routes
		ordersGroup := v1.Group("/orders")
		{
			ordersGroup.POST("/:order_id/payment/verify", paymentsHandlers.VerifyPaymentHandler())

			authed := ordersGroup.Group("")
			authed.Use(middleware.JWTAuth(secret))
			{
				authed.POST("", ordersHandlers.CreateOrderHandler())
				authed.GET("/:order_id", ordersHandlers.GetOrderHandler())
				authed.POST("/:order_id/payment/init", paymentsHandlers.InitPaymentHandler())
			}
		}

		// Seller routes
		sellerGroup := v1.Group("/seller")
		sellerGroup.Use(middleware.JWTAuth(secret), middleware.RequireRole("SELLER"))
		{
			sellerGroup.POST("/products", catalogHandlers.CreateProductHandler())
			sellerGroup.POST("/products/:product_id/submit", catalogHandlers.SubmitProductHandler())
			sellerGroup.PATCH("/products/:product_id/inventory", catalogHandlers.AdjustInventoryHandler())

			sellerGroup.POST("/orders/:order_id/accept", sellerHandlers.AcceptOrderHandler())
			sellerGroup.POST("/orders/:order_id/ship", sellerHandlers.ShipOrderHandler())
			sellerGroup.POST("/orders/:order_id/deliver", sellerHandlers.DeliverOrderHandler())
			sellerGroup.POST("/orders/:order_id/cancel", sellerHandlers.CancelOrderHandler())

			sellerGroup.POST("/verification/documents", sellerHandlers.SubmitDocumentsHandler())
			sellerGroup.GET("/performance", sellerHandlers.PerformanceHandler())
			sellerGroup.GET("/audit-logs", auditHandlers.SellerLogsHandler())
		}

		// Admin routes
		adminGroup := v1.Group("/admin")
		adminGroup.Use(middleware.JWTAuth(secret), middleware.RequireRole("ADMIN"))
		{
			adminGroup.POST("/sellers/:seller_id/review", sellerHandlers.ReviewSellerHandler())
			adminGroup.POST("/products/:product_id/review", catalogHandlers.ReviewProductHandler())
		}
	}
}
