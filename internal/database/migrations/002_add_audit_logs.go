package migrations

import (
	"gorm.io/gorm"

	"github.com/secufur/commerce-api/internal/types"
)

func AddAuditLogs(db *gorm.DB) error {
	if err := db.AutoMigrate(&types.AuditLog{}); err != nil {
		return err
	}

	return nil
}
