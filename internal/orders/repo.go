package orders

import (
	"context"
	"strings"

	"github.com/koxixo/orders-backend/pkg/db/models"
	"github.com/koxixo/orders-backend/pkg/enums"
	"github.com/koxixo/orders-backend/pkg/pagination"
	"gorm.io/gorm"
)

// sortColumns whitelists the orderable fields; anything else falls back
// to the primary key so callers cannot inject arbitrary ORDER BY text.
var sortColumns = map[string]string{
	"id":         "orders.id",
	"created_at": "orders.created_at",
	"title":      "orders.title",
	"priority":   "orders.priority",
	"status":     "orders.status",
	"value":      "orders.value",
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, filters ListFilters, sort Sort, params pagination.Params) (*OrderList, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	offset := pagination.NormalizeOffset(params.Offset)

	query := r.db.WithContext(ctx).Model(&models.Order{})
	query = applyFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var items []models.Order
	err := query.
		Order(orderClause(sort)).
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return &OrderList{
		Items:  items,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}

func (r *repository) ListAfterID(ctx context.Context, afterID int64, limit int) ([]models.Order, error) {
	var items []models.Order
	err := r.db.WithContext(ctx).
		Where("id > ?", afterID).
		Order("id ASC").
		Limit(pagination.NormalizeLimit(limit)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) UpdateGuarded(ctx context.Context, id int64, expectedStatus enums.OrderStatus, expectedVersion int64, updates map[string]any) (bool, error) {
	guarded := make(map[string]any, len(updates)+1)
	for k, v := range updates {
		guarded[k] = v
	}
	guarded["version"] = gorm.Expr("version + 1")

	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ? AND version = ?", id, expectedStatus, expectedVersion).
		Updates(guarded)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func applyFilters(query *gorm.DB, filters ListFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("orders.status = ?", *filters.Status)
	}
	if filters.Priority != nil {
		query = query.Where("orders.priority = ?", *filters.Priority)
	}
	if filters.CreatedFrom != nil {
		query = query.Where("orders.created_at >= ?", *filters.CreatedFrom)
	}
	if filters.CreatedTo != nil {
		query = query.Where("orders.created_at <= ?", *filters.CreatedTo)
	}
	if search := strings.TrimSpace(filters.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(orders.title) LIKE ? OR LOWER(orders.description) LIKE ?", pattern, pattern)
	}
	if creator := strings.TrimSpace(filters.CreatorName); creator != "" {
		pattern := "%" + strings.ToLower(creator) + "%"
		query = query.
			Joins("JOIN users ON users.id = orders.created_by_id").
			Where("LOWER(users.name) LIKE ?", pattern)
	}
	return query
}

func orderClause(sort Sort) string {
	column, ok := sortColumns[strings.ToLower(strings.TrimSpace(sort.Field))]
	if !ok {
		column = "orders.id"
	}
	direction := "ASC"
	if sort.Desc {
		direction = "DESC"
	}
	return column + " " + direction
}
