package orders

import (
	"time"

	"github.com/koxixo/orders-backend/pkg/db/models"
	"github.com/koxixo/orders-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Actor identifies the authenticated caller of a service operation.
// The identity provider resolves it; the service trusts it as-is.
type Actor struct {
	UserID int64
	Role   enums.UserRole
}

// CreateOrderInput carries the fields accepted when opening an order.
type CreateOrderInput struct {
	Title       string
	Description string
	Value       *decimal.Decimal
	Priority    enums.OrderPriority
	Dimensions  *string
	Finish      *string
	Material    *string
}

// EditOrderInput is a partial field set: nil pointers are left untouched.
type EditOrderInput struct {
	Title       *string
	Description *string
	Value       *decimal.Decimal
	Priority    *enums.OrderPriority
	Dimensions  *string
	Finish      *string
	Material    *string
}

// IsEmpty reports whether no editable field was provided.
func (in EditOrderInput) IsEmpty() bool {
	return in.Title == nil &&
		in.Description == nil &&
		in.Value == nil &&
		in.Priority == nil &&
		in.Dimensions == nil &&
		in.Finish == nil &&
		in.Material == nil
}

// TransitionPayload carries optional data attached to a transition.
type TransitionPayload struct {
	Reason *string
}

// ListFilters narrows an order listing.
type ListFilters struct {
	Status      *enums.OrderStatus
	Priority    *enums.OrderPriority
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Search      string
	CreatorName string
}

// Sort selects a whitelisted ordering for listings.
type Sort struct {
	Field string
	Desc  bool
}

// OrderList is one page of orders plus the unpaged total.
type OrderList struct {
	Items  []models.Order `json:"items"`
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// ExportPage is one chunk of the ascending-ID cursor stream used for
// bulk export.
type ExportPage struct {
	Items      []models.Order `json:"items"`
	NextCursor string         `json:"next_cursor,omitempty"`
	HasMore    bool           `json:"has_more"`
}
