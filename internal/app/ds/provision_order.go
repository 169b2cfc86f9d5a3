package ds

import "time"

// Payment status values for a recorded provisioning order.
const (
	OrderPendingPayment   = "pending_payment"
	OrderAwaitingTransfer = "awaiting_transfer"
	OrderPaid             = "paid"
	OrderFailed           = "failed"
)

// ProvisionOrder is the durable record of one submitted batch: the upstream
// reference used for payment plus totals and payment progress. The wizard
// session itself lives in redis; this table is what order history and
// reconciliation read.
type ProvisionOrder struct {
	ID          uint       `gorm:"primaryKey"`
	Reference   string     `gorm:"type:varchar(64);uniqueIndex;not null"`
	CreatorID   uint       `gorm:"not null;index"`
	Status      string     `gorm:"type:varchar(20);not null"`
	Title       string     `gorm:"type:varchar(100)"`
	Total       float64    `gorm:"type:decimal(12,2)"`
	Currency    string     `gorm:"type:varchar(8);default:'NGN'"`
	FastTrack   bool       `gorm:"type:boolean;default:false"`
	CreatedAt   time.Time  `gorm:"not null"`
	PaidAt      *time.Time `gorm:"default:null"`
	ProofObject *string    `gorm:"type:varchar(255)"` // minio object with the transfer receipt

	Creator User        `gorm:"foreignKey:CreatorID"`
	Items   []OrderItem `gorm:"foreignKey:OrderID"`
}

// OrderItem is one pricing request inside a recorded order.
type OrderItem struct {
	ID                uint   `gorm:"primaryKey"`
	OrderID           uint   `gorm:"not null;index"`
	Name              string `gorm:"type:varchar(100);not null"`
	ProjectID         string `gorm:"type:varchar(64);not null"`
	Region            string `gorm:"type:varchar(32)"`
	ComputeInstanceID string `gorm:"type:varchar(64);not null"`
	OSImageID         string `gorm:"type:varchar(64);not null"`
	Months            int    `gorm:"type:int;not null"`
	ReplicaCount      int    `gorm:"type:int;default:1"`
	StorageSizeGB     int    `gorm:"type:int"`
	ComputeLabel      string `gorm:"type:varchar(100)"`
	StorageLabel      string `gorm:"type:varchar(100)"`
	OSLabel           string `gorm:"type:varchar(100)"`
}
