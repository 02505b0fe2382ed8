package orders

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/secufur/commerce-api/internal/types"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

func (d *Database) GetOrder(orderID string) (*types.Order, error) {
	var order types.Order
	err := d.db.Preload("Items").Preload("Payment").
		Where("order_id = ?", orderID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (d *Database) GetOrderByOrderIDAndUserID(orderID, userID string) (*types.Order, error) {
	var order types.Order
	err := d.db.Preload("Items").Preload("Payment").
		Where("order_id = ? AND user_id = ?", orderID, userID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (d *Database) GetProduct(productID string) (*types.Product, error) {
	var product types.Product
	if err := d.db.Where("product_id = ?", productID).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (d *Database) CreateAddress(address *types.Address) error {
	return d.db.Create(address).Error
}

func (d *Database) ListAddressesByUserID(userID string) ([]types.Address, error) {
	var addresses []types.Address
	err := d.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&addresses).Error
	return addresses, err
}

func (d *Database) GetAddressByIDAndUserID(addressID, userID string) (*types.Address, error) {
	var address types.Address
	if err := d.db.Where("address_id = ? AND user_id = ?", addressID, userID).First(&address).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &address, nil
}

// GetIdempotencyRecord retrieves an idempotency record by key
func (d *Database) GetIdempotencyRecord(key string) (*types.IdempotencyRecord, error) {
	var record types.IdempotencyRecord
	if err := d.db.Where("idempotency_key = ?", key).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &record, nil
		}
		return nil, err
	}
	return &record, nil
}

// CreateCheckout writes the order, its 1:1 payment, its items, the stock
// reservations and the optional idempotency record in a single transaction.
// Any failure rolls the whole checkout back.
func (d *Database) CreateCheckout(order *types.Order, payment *types.Payment, items []types.OrderItem, idempotencyKey string) error {
	tx := d.db.Begin()
	if err := tx.Error; err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(order).Error; err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Create(payment).Error; err != nil {
		tx.Rollback()
		return err
	}

	for i := range items {
		if err := tx.Create(&items[i]).Error; err != nil {
			tx.Rollback()
			return err
		}

		// Reserve stock; the guard re-checks availability inside the
		// transaction so concurrent checkouts cannot oversell.
		res := tx.Model(&types.Product{}).
			Where("product_id = ? AND stock - reserved_stock >= ?", items[i].ProductID, items[i].Quantity).
			Update("reserved_stock", gorm.Expr("reserved_stock + ?", items[i].Quantity))
		if res.Error != nil {
			tx.Rollback()
			return res.Error
		}
		if res.RowsAffected == 0 {
			tx.Rollback()
			return fmt.Errorf("%w: insufficient stock for product %s", types.ErrValidation, items[i].ProductID)
		}
	}

	if idempotencyKey != "" {
		// A retry after the key expired must not collide with the stale row's
		// unique index.
		if err := tx.Where("idempotency_key = ? AND expires_at <= ?", idempotencyKey, time.Now()).
			Delete(&types.IdempotencyRecord{}).Error; err != nil {
			tx.Rollback()
			return err
		}
		record := types.IdempotencyRecord{
			IdempotencyKey: idempotencyKey,
			ResourceID:     order.OrderID,
			ResourceType:   "order",
			ExpiresAt:      time.Now().Add(24 * time.Hour),
		}
		if err := tx.Create(&record).Error; err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit().Error
}
