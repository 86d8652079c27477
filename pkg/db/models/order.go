package models

import (
	"time"

	"github.com/koxixo/orders-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Order is a print/production job tracked through the approval-to-delivery
// lifecycle. The actor/timestamp pairs are each set by exactly one
// transition and stay null until then; the rejection triple is cleared
// again on resubmission.
type Order struct {
	ID          int64               `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title       string              `gorm:"column:title;type:text;not null" json:"title"`
	Description string              `gorm:"column:description;type:text;not null;default:''" json:"description"`
	Value       *decimal.Decimal    `gorm:"column:value;type:numeric(12,2)" json:"value,omitempty"`
	Priority    enums.OrderPriority `gorm:"column:priority;type:text;not null;default:'medium'" json:"priority"`
	Dimensions  *string             `gorm:"column:dimensions;type:text" json:"dimensions,omitempty"`
	Finish      *string             `gorm:"column:finish;type:text" json:"finish,omitempty"`
	Material    *string             `gorm:"column:material;type:text" json:"material,omitempty"`

	Status enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'" json:"status"`

	// Version increments with every write and backs optimistic updates.
	Version int64 `gorm:"column:version;not null;default:1" json:"version"`

	CreatedByID     int64      `gorm:"column:created_by_id;not null" json:"created_by_id"`
	ApprovedByID    *int64     `gorm:"column:approved_by_id" json:"approved_by_id,omitempty"`
	ApprovedAt      *time.Time `gorm:"column:approved_at" json:"approved_at,omitempty"`
	RejectedByID    *int64     `gorm:"column:rejected_by_id" json:"rejected_by_id,omitempty"`
	RejectedAt      *time.Time `gorm:"column:rejected_at" json:"rejected_at,omitempty"`
	RejectionReason *string    `gorm:"column:rejection_reason;type:text" json:"rejection_reason,omitempty"`
	CompletedByID   *int64     `gorm:"column:completed_by_id" json:"completed_by_id,omitempty"`
	CompletedAt     *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	DeliveredByID   *int64     `gorm:"column:delivered_by_id" json:"delivered_by_id,omitempty"`
	DeliveredAt     *time.Time `gorm:"column:delivered_at" json:"delivered_at,omitempty"`
	LastEditedByID  *int64     `gorm:"column:last_edited_by_id" json:"last_edited_by_id,omitempty"`
	LastEditedAt    *time.Time `gorm:"column:last_edited_at" json:"last_edited_at,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
