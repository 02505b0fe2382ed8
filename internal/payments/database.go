package payments

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

func (d *Database) GetOrderWithPayment(orderID string) (*types.Order, error) {
	var order types.Order
	err := d.db.Preload("Payment").Where("order_id = ?", orderID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// SetGatewayOrderID records the hosted session identifier on the payment.
// Called only after the gateway confirmed session creation. The update is
// conditional on the payment still being PENDING so a settled row can never be
// re-pointed at a new session.
func (d *Database) SetGatewayOrderID(paymentID, gatewayOrderID string) error {
	res := d.db.Model(&types.Payment{}).
		Where("payment_id = ? AND status = ?", paymentID, types.PaymentStatusPending).
		Updates(map[string]interface{}{
			"gateway_order_id": gatewayOrderID,
			"updated_at":       time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: payment no longer pending", types.ErrInvalidState)
	}
	return nil
}

// ConfirmPayment transitions the payment to SUCCESS and the order to CONFIRMED
// in one transaction. The payment update is conditional on the status still
// being PENDING; applied reports whether this call performed the transition.
func (d *Database) ConfirmPayment(paymentID, orderID, gatewayPaymentID, signature string, acceptBy, dispatchBy time.Time) (applied bool, err error) {
	tx := d.db.Begin()
	if err := tx.Error; err != nil {
		return false, err
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	res := tx.Model(&types.Payment{}).
		Where("payment_id = ? AND status = ?", paymentID, types.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":             types.PaymentStatusSuccess,
			"gateway_payment_id": gatewayPaymentID,
			"gateway_signature":  signature,
			"updated_at":         time.Now(),
		})
	if res.Error != nil {
		tx.Rollback()
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		// Already terminal; leave order and payment untouched.
		tx.Rollback()
		return false, nil
	}

	if err := tx.Model(&types.Order{}).
		Where("order_id = ?", orderID).
		Updates(map[string]interface{}{
			"status":      types.OrderStatusConfirmed,
			"accept_by":   acceptBy,
			"dispatch_by": dispatchBy,
			"updated_at":  time.Now(),
		}).Error; err != nil {
		tx.Rollback()
		return false, err
	}

	return true, tx.Commit().Error
}
