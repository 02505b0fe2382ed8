package audit

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/secufur/commerce-api/internal/database"
	"github.com/secufur/commerce-api/internal/types"
)

func TestMask(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "email",
			input: "Contact changed to ravi.kumar@example.co.in",
			want:  "Contact changed to ***@***.com",
		},
		{
			name:  "phone with country code",
			input: "OTP sent to +91 9876543210",
			want:  "OTP sent to +91-XXXXX-XXXXX",
		},
		{
			name:  "bare ten digit phone",
			input: "callback number 9876543210 saved",
			want:  "callback number +91-XXXXX-XXXXX saved",
		},
		{
			name:  "gstin",
			input: "GSTIN updated to 27AAPFU0939F1ZV",
			want:  "GSTIN updated to XX-GSTIN-XX",
		},
		{
			name:  "no pii untouched",
			input: "Stock adjusted by -5",
			want:  "Stock adjusted by -5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Mask(tt.input))
		})
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	return db
}

func TestLog(t *testing.T) {
	db := newTestDB(t)
	service := NewService(db)

	service.Log("seller-1", "user-1", "Contact Updated", CategorySettings,
		"Email set to ravi@example.com", "")

	var entry types.AuditLog
	require.NoError(t, db.Where("seller_id = ?", "seller-1").First(&entry).Error)
	assert.Equal(t, "Contact Updated", entry.Action)
	assert.Equal(t, CategorySettings, entry.Category)
	assert.Equal(t, SeverityInfo, entry.Severity)
	assert.Equal(t, "Email set to ***@***.com", entry.Details)
	assert.NotContains(t, entry.Details, "ravi@example.com")
}

func TestSellerLogs(t *testing.T) {
	db := newTestDB(t)
	service := NewService(db)

	service.Log("seller-1", "user-1", "First", CategoryProduct, "a", "")
	service.Log("seller-1", "user-1", "Second", CategoryProduct, "b", SeverityWarning)
	service.Log("seller-2", "user-2", "Other", CategoryProduct, "c", "")

	logs, err := service.SellerLogs("seller-1", 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	for _, entry := range logs {
		assert.Equal(t, "seller-1", entry.SellerID)
	}
}
