package enums

import "fmt"

// AuditAction tags the kind of mutation an audit log entry records.
type AuditAction string

const (
	AuditActionOrderCreate AuditAction = "ORDER_CREATE"
	AuditActionOrderUpdate AuditAction = "ORDER_UPDATE"
	AuditActionOrderStatus AuditAction = "ORDER_STATUS"
)

var validAuditActions = []AuditAction{
	AuditActionOrderCreate,
	AuditActionOrderUpdate,
	AuditActionOrderStatus,
}

// String implements fmt.Stringer.
func (a AuditAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AuditAction.
func (a AuditAction) IsValid() bool {
	for _, candidate := range validAuditActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAuditAction converts raw input into an AuditAction.
func ParseAuditAction(value string) (AuditAction, error) {
	for _, candidate := range validAuditActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid audit action %q", value)
}
