package types

// ProductRating is the aggregate review annotation on buyer-facing listings.
type ProductRating struct {
	Average float64 `json:"average"`
}

// ListedProduct is a catalog entry annotated with review aggregates.
type ListedProduct struct {
	Product
	Rating      ProductRating `json:"rating"`
	ReviewCount int           `json:"review_count"`
}

// PaymentInitResponse is returned to the client to boot the checkout widget.
type PaymentInitResponse struct {
	OrderID  string  `json:"orderId"` // gateway order id
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Key      string  `json:"key"`
}

// SellerPerformance summarizes a seller's order handling record.
type SellerPerformance struct {
	OrdersReceived   int     `json:"orders_received"`
	OrdersAccepted   int     `json:"orders_accepted"`
	OrdersDelivered  int     `json:"orders_delivered"`
	OrdersCancelled  int     `json:"orders_cancelled"`
	CancellationRate float64 `json:"cancellation_rate"`
	DelayedCount     int     `json:"delayed_count"`
}
