package audit

import (
	"context"

	"github.com/koxixo/orders-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists audit log rows. Entries are append-only; there is
// no update or delete surface.
type Repository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an audit repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}
