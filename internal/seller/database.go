package seller

import (
	"errors"
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

func (d *Database) GetProfileByUserID(userID string) (*types.SellerProfile, error) {
	var profile types.SellerProfile
	if err := d.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (d *Database) GetProfileBySellerID(sellerID string) (*types.SellerProfile, error) {
	var profile types.SellerProfile
	if err := d.db.Where("seller_id = ?", sellerID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (d *Database) UpdateProfile(profile *types.SellerProfile) error {
	return d.db.Save(profile).Error
}

// GetOrderForSeller loads an order and verifies every line item belongs to the
// seller's catalog.
func (d *Database) GetOrderForSeller(orderID, sellerID string) (*types.Order, error) {
	var order types.Order
	err := d.db.Preload("Items").Where("order_id = ?", orderID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var foreign int64
	err = d.db.Model(&types.Product{}).
		Joins("JOIN order_items ON order_items.product_id = products.product_id").
		Where("order_items.order_id = ? AND products.seller_id != ?", orderID, sellerID).
		Count(&foreign).Error
	if err != nil {
		return nil, err
	}
	if foreign > 0 {
		return nil, types.ErrForbidden
	}

	return &order, nil
}

func (d *Database) UpdateOrder(order *types.Order) error {
	return d.db.Save(order).Error
}

// DeliverOrder marks the order delivered and, per item, releases the stock
// reservation, decrements stock, bumps the sold count and locks the product.
// All writes happen in one transaction.
func (d *Database) DeliverOrder(order *types.Order) error {
	tx := d.db.Begin()
	if err := tx.Error; err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	order.Status = types.OrderStatusDelivered
	order.UpdatedAt = time.Now()
	if err := tx.Save(order).Error; err != nil {
		tx.Rollback()
		return err
	}

	for _, item := range order.Items {
		err := tx.Model(&types.Product{}).
			Where("product_id = ?", item.ProductID).
			Updates(map[string]interface{}{
				"reserved_stock": gorm.Expr("reserved_stock - ?", item.Quantity),
				"stock":          gorm.Expr("stock - ?", item.Quantity),
				"sold_count":     gorm.Expr("sold_count + ?", item.Quantity),
				"is_locked":      true,
				"updated_at":     time.Now(),
			}).Error
		if err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit().Error
}

// CancelOrder marks the order cancelled and releases its stock reservations.
func (d *Database) CancelOrder(order *types.Order) error {
	tx := d.db.Begin()
	if err := tx.Error; err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	order.Status = types.OrderStatusCancelled
	order.UpdatedAt = time.Now()
	if err := tx.Save(order).Error; err != nil {
		tx.Rollback()
		return err
	}

	for _, item := range order.Items {
		err := tx.Model(&types.Product{}).
			Where("product_id = ?", item.ProductID).
			Updates(map[string]interface{}{
				"reserved_stock": gorm.Expr("reserved_stock - ?", item.Quantity),
				"updated_at":     time.Now(),
			}).Error
		if err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit().Error
}

// sellerOrderIDs is the subquery selecting orders containing the seller's
// products.
func (d *Database) sellerOrderIDs(sellerID string) *gorm.DB {
	return d.db.Model(&types.OrderItem{}).
		Select("order_items.order_id").
		Joins("JOIN products ON products.product_id = order_items.product_id").
		Where("products.seller_id = ?", sellerID)
}

// CountSellerOrdersByStatus returns the seller's order counts keyed by status.
func (d *Database) CountSellerOrdersByStatus(sellerID string) (map[string]int, error) {
	type row struct {
		Status string
		Total  int
	}
	var rows []row
	err := d.db.Model(&types.Order{}).
		Select("status, COUNT(*) as total").
		Where("order_id IN (?)", d.sellerOrderIDs(sellerID)).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Total
	}
	return counts, nil
}

// CountSellerDelayed returns how many of the seller's orders are flagged
// delayed.
func (d *Database) CountSellerDelayed(sellerID string) (int, error) {
	var total int64
	err := d.db.Model(&types.Order{}).
		Where("is_delayed = ? AND order_id IN (?)", true, d.sellerOrderIDs(sellerID)).
		Count(&total).Error
	return int(total), err
}

// FlagOverdueOrders marks confirmed orders past their accept-by deadline and
// accepted orders past their dispatch-by deadline as delayed. Returns the
// number of newly flagged orders.
func (d *Database) FlagOverdueOrders(now time.Time) (int64, error) {
	res := d.db.Model(&types.Order{}).
		Where("is_delayed = ?", false).
		Where(
			d.db.Where("status = ? AND accept_by IS NOT NULL AND accept_by < ?", types.OrderStatusConfirmed, now).
				Or("status = ? AND dispatch_by IS NOT NULL AND dispatch_by < ?", types.OrderStatusAccepted, now),
		).
		Update("is_delayed", true)
	return res.RowsAffected, res.Error
}
