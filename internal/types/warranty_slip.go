package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// WarrantySlip is one stored warranty: the product, its coverage
// window, and the receipt document reference. IPFSHash is the sha256
// content address of the uploaded document; StorageKey is where the
// bytes actually live in the bucket.
type WarrantySlip struct {
	ID                uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID            uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User              *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	ProductName       string         `gorm:"column:product_name;not null" json:"product_name"`
	Brand             string         `gorm:"column:brand" json:"brand"`
	Model             string         `gorm:"column:model" json:"model"`
	SerialNumber      string         `gorm:"column:serial_number" json:"serial_number"`
	IMEINumber        string         `gorm:"column:imei_number;index" json:"imei_number"`
	IPFSHash          string         `gorm:"column:ipfs_hash" json:"ipfs_hash"`
	StorageKey        string         `gorm:"column:storage_key" json:"storage_key"`
	FileURL           string         `gorm:"column:file_url" json:"file_url"`
	WarrantyStartDate time.Time      `gorm:"column:warranty_start_date;type:date" json:"warranty_start_date"`
	WarrantyEndDate   time.Time      `gorm:"column:warranty_end_date;type:date;not null" json:"warranty_end_date"`
	UploadedAt        time.Time      `gorm:"column:uploaded_at;not null;default:now()" json:"uploaded_at"`
	ReminderSet       bool           `gorm:"column:reminder_set;not null;default:false" json:"reminder_set"`
	Notes             string         `gorm:"column:notes" json:"notes"`
	QRPayload         datatypes.JSON `gorm:"column:qr_payload;type:jsonb" json:"qr_payload,omitempty"`
	CreatedAt         time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (WarrantySlip) TableName() string { return "warranty_slip" }
