package enums

import "fmt"

// OrderPriority ranks how urgently an order should move through production.
type OrderPriority string

const (
	OrderPriorityLow    OrderPriority = "low"
	OrderPriorityMedium OrderPriority = "medium"
	OrderPriorityHigh   OrderPriority = "high"
)

var validOrderPriorities = []OrderPriority{
	OrderPriorityLow,
	OrderPriorityMedium,
	OrderPriorityHigh,
}

// String implements fmt.Stringer.
func (p OrderPriority) String() string {
	return string(p)
}

// IsValid reports whether the value is a known OrderPriority.
func (p OrderPriority) IsValid() bool {
	for _, candidate := range validOrderPriorities {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseOrderPriority converts raw input into an OrderPriority.
func ParseOrderPriority(value string) (OrderPriority, error) {
	for _, candidate := range validOrderPriorities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order priority %q", value)
}
