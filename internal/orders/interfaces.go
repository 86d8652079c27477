package orders

import (
	"context"

	"github.com/koxixo/orders-backend/pkg/db/models"
	"github.com/koxixo/orders-backend/pkg/enums"
	"github.com/koxixo/orders-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository defines persistence operations for the orders table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id int64) (*models.Order, error)
	List(ctx context.Context, filters ListFilters, sort Sort, params pagination.Params) (*OrderList, error)
	ListAfterID(ctx context.Context, afterID int64, limit int) ([]models.Order, error)
	// UpdateGuarded applies updates only while the row still holds the
	// expected status and version, reporting whether a row was written.
	// A false return means a concurrent writer got there first.
	UpdateGuarded(ctx context.Context, id int64, expectedStatus enums.OrderStatus, expectedVersion int64, updates map[string]any) (bool, error)
}

// Service exposes the order lifecycle operations consumed by the
// transport layer.
type Service interface {
	CreateOrder(ctx context.Context, actor Actor, input CreateOrderInput) (*models.Order, error)
	EditOrder(ctx context.Context, actor Actor, orderID int64, input EditOrderInput) (*models.Order, error)
	TransitionOrder(ctx context.Context, actor Actor, orderID int64, action enums.OrderAction, payload TransitionPayload) (*models.Order, error)
	GetOrder(ctx context.Context, orderID int64) (*models.Order, error)
	ListOrders(ctx context.Context, filters ListFilters, sort Sort, params pagination.Params) (*OrderList, error)
	StreamOrders(ctx context.Context, cursor string, limit int) (*ExportPage, error)
}
