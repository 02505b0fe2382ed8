package catalog

import (
	"errors"

	"gorm.io/gorm"

	"github.com/secufur/commerce-api/internal/types"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

// ListActiveProducts returns buyer-visible products, newest first, with their
// reviews preloaded for rating aggregation.
func (d *Database) ListActiveProducts(category, search string, limit int) ([]types.Product, error) {
	query := d.db.Preload("Reviews").Where("is_active = ?", true)

	if category != "" {
		query = query.Where("category = ?", category)
	}
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", pattern, pattern)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var products []types.Product
	if err := query.Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
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

func (d *Database) GetSellerProfileByUserID(userID string) (*types.SellerProfile, error) {
	var profile types.SellerProfile
	if err := d.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (d *Database) CreateProduct(product *types.Product) error {
	return d.db.Create(product).Error
}

func (d *Database) UpdateProduct(product *types.Product) error {
	return d.db.Save(product).Error
}

// AdjustStock applies a stock delta, clamping the result at zero.
func (d *Database) AdjustStock(productID string, adjustment int) (*types.Product, error) {
	var product types.Product

	err := d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).First(&product).Error; err != nil {
			return err
		}

		newStock := product.Stock + adjustment
		if newStock < 0 {
			newStock = 0
		}
		product.Stock = newStock

		return tx.Model(&types.Product{}).
			Where("product_id = ?", productID).
			Update("stock", newStock).Error
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}
