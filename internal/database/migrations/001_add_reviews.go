package migrations

import (
	"gorm.io/gorm"

	"github.com/secufur/commerce-api/internal/types"
)

func AddReviews(db *gorm.DB) error {
	if err := db.AutoMigrate(&types.Review{}); err != nil {
		return err
	}

	return nil
}
