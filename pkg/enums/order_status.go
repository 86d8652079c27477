package enums

import "fmt"

// OrderStatus tracks the lifecycle of a production order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusApproved   OrderStatus = "approved"
	OrderStatusRejected   OrderStatus = "rejected"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusApproved,
	OrderStatusRejected,
	OrderStatusInProgress,
	OrderStatusCompleted,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsEditable reports whether order fields may still be changed in this status.
func (s OrderStatus) IsEditable() bool {
	return s == OrderStatusPending || s == OrderStatusRejected
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
