package orders

import (
	"github.com/koxixo/orders-backend/pkg/enums"
)

// Capability names a permission checked before any mutation proceeds.
type Capability string

const (
	CapabilityCreateOrder        Capability = "createOrder"
	CapabilityEditOrder          Capability = "editOrder"
	CapabilityApproveOrder       Capability = "approveOrder"
	CapabilityRejectOrder        Capability = "rejectOrder"
	CapabilityStartProduction    Capability = "startProduction"
	CapabilityCompleteProduction Capability = "completeProduction"
	CapabilityDeliverOrder       Capability = "deliverOrder"
	CapabilityResubmitOrder      Capability = "resubmitOrder"
)

// OrderContext carries the order facts a contextual condition evaluates.
type OrderContext struct {
	CreatedByID int64
	Status      enums.OrderStatus
}

// policyRule is one row of the capability table: which roles may act,
// from which statuses, and which roles are further restricted to orders
// they created. Admin passes the role and ownership gates implicitly
// but is still bound by the status condition.
type policyRule struct {
	roles       []enums.UserRole
	statuses    []enums.OrderStatus
	creatorOnly map[enums.UserRole]bool
}

var policyTable = map[Capability]policyRule{
	CapabilityCreateOrder: {
		roles: []enums.UserRole{enums.UserRoleVendedor, enums.UserRoleOrcamento},
	},
	CapabilityEditOrder: {
		roles:       []enums.UserRole{enums.UserRoleOrcamento, enums.UserRoleVendedor},
		statuses:    []enums.OrderStatus{enums.OrderStatusPending, enums.OrderStatusRejected},
		creatorOnly: map[enums.UserRole]bool{enums.UserRoleVendedor: true},
	},
	CapabilityApproveOrder: {
		roles:    []enums.UserRole{enums.UserRoleOrcamento},
		statuses: []enums.OrderStatus{enums.OrderStatusPending},
	},
	CapabilityRejectOrder: {
		roles:    []enums.UserRole{enums.UserRoleOrcamento},
		statuses: []enums.OrderStatus{enums.OrderStatusPending},
	},
	CapabilityStartProduction: {
		roles:    []enums.UserRole{enums.UserRoleProducao},
		statuses: []enums.OrderStatus{enums.OrderStatusApproved},
	},
	CapabilityCompleteProduction: {
		roles:    []enums.UserRole{enums.UserRoleProducao},
		statuses: []enums.OrderStatus{enums.OrderStatusInProgress},
	},
	CapabilityDeliverOrder: {
		roles:    []enums.UserRole{enums.UserRoleVendedor},
		statuses: []enums.OrderStatus{enums.OrderStatusCompleted},
	},
	CapabilityResubmitOrder: {
		roles:    []enums.UserRole{enums.UserRoleVendedor},
		statuses: []enums.OrderStatus{enums.OrderStatusRejected},
	},
}

var capabilityByAction = map[enums.OrderAction]Capability{
	enums.OrderActionApprove:         CapabilityApproveOrder,
	enums.OrderActionReject:          CapabilityRejectOrder,
	enums.OrderActionStartProduction: CapabilityStartProduction,
	enums.OrderActionComplete:        CapabilityCompleteProduction,
	enums.OrderActionDeliver:         CapabilityDeliverOrder,
	enums.OrderActionResubmit:        CapabilityResubmitOrder,
}

// CapabilityForAction resolves the capability guarding a transition action.
func CapabilityForAction(action enums.OrderAction) (Capability, bool) {
	cap, ok := capabilityByAction[action]
	return cap, ok
}

// RoleAllowed reports whether the role passes the capability's role gate,
// ignoring any contextual condition. Used before the order is loaded.
func RoleAllowed(role enums.UserRole, cap Capability) bool {
	rule, ok := policyTable[cap]
	if !ok {
		return false
	}
	if role == enums.UserRoleAdmin {
		return true
	}
	for _, candidate := range rule.roles {
		if candidate == role {
			return true
		}
	}
	return false
}

// Allowed evaluates the full capability rule against the freshly loaded
// order context. Pure: no I/O, no side effects.
func Allowed(role enums.UserRole, cap Capability, actorID int64, octx OrderContext) bool {
	rule, ok := policyTable[cap]
	if !ok {
		return false
	}

	if !RoleAllowed(role, cap) {
		return false
	}

	if len(rule.statuses) > 0 {
		matched := false
		for _, status := range rule.statuses {
			if status == octx.Status {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if role != enums.UserRoleAdmin && rule.creatorOnly[role] && octx.CreatedByID != actorID {
		return false
	}

	return true
}
