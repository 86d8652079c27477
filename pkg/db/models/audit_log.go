package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/koxixo/orders-backend/pkg/enums"
)

// AuditLog records an immutable before/after snapshot of a mutating
// operation. Rows are append-only; nothing updates or deletes them.
type AuditLog struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ActorUserID *int64            `gorm:"column:actor_user_id"`
	Action      enums.AuditAction `gorm:"column:action;type:text;not null"`
	EntityType  string            `gorm:"column:entity_type;type:text;not null"`
	EntityID    int64             `gorm:"column:entity_id;not null"`
	FromState   json.RawMessage   `gorm:"column:from_state;type:jsonb"`
	ToState     json.RawMessage   `gorm:"column:to_state;type:jsonb"`
	Metadata    json.RawMessage   `gorm:"column:metadata;type:jsonb"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
}
