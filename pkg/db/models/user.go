package models

import (
	"time"

	"github.com/koxixo/orders-backend/pkg/enums"
)

// User is the identity entity referenced by orders. Credentials and
// session issuance live with the external identity provider; this table
// only carries what order listing and auditing need.
type User struct {
	ID        int64          `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string         `gorm:"column:name;type:text;not null"`
	Email     string         `gorm:"column:email;type:text;not null;uniqueIndex"`
	Role      enums.UserRole `gorm:"column:role;type:text;not null"`
	IsActive  bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
