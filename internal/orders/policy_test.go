package orders

import (
	"testing"

	"github.com/koxixo/orders-backend/pkg/enums"
)

func TestCapabilityForAction(t *testing.T) {
	actions := []enums.OrderAction{
		enums.OrderActionApprove,
		enums.OrderActionReject,
		enums.OrderActionStartProduction,
		enums.OrderActionComplete,
		enums.OrderActionDeliver,
		enums.OrderActionResubmit,
	}
	for _, action := range actions {
		if _, ok := CapabilityForAction(action); !ok {
			t.Fatalf("no capability mapped for action %s", action)
		}
	}
	if _, ok := CapabilityForAction(enums.OrderAction("launch")); ok {
		t.Fatal("expected unmapped action to resolve to nothing")
	}
}

func TestRoleAllowedGrid(t *testing.T) {
	cases := []struct {
		role enums.UserRole
		cap  Capability
		want bool
	}{
		{enums.UserRoleVendedor, CapabilityCreateOrder, true},
		{enums.UserRoleOrcamento, CapabilityCreateOrder, true},
		{enums.UserRoleProducao, CapabilityCreateOrder, false},
		{enums.UserRoleVendedor, CapabilityApproveOrder, false},
		{enums.UserRoleOrcamento, CapabilityApproveOrder, true},
		{enums.UserRoleProducao, CapabilityApproveOrder, false},
		{enums.UserRoleOrcamento, CapabilityRejectOrder, true},
		{enums.UserRoleProducao, CapabilityStartProduction, true},
		{enums.UserRoleVendedor, CapabilityStartProduction, false},
		{enums.UserRoleProducao, CapabilityCompleteProduction, true},
		{enums.UserRoleOrcamento, CapabilityCompleteProduction, false},
		{enums.UserRoleVendedor, CapabilityDeliverOrder, true},
		{enums.UserRoleProducao, CapabilityDeliverOrder, false},
		{enums.UserRoleVendedor, CapabilityResubmitOrder, true},
		{enums.UserRoleOrcamento, CapabilityResubmitOrder, false},
		{enums.UserRoleAdmin, CapabilityApproveOrder, true},
		{enums.UserRoleAdmin, CapabilityDeliverOrder, true},
	}

	for _, tc := range cases {
		if got := RoleAllowed(tc.role, tc.cap); got != tc.want {
			t.Fatalf("RoleAllowed(%s, %s) = %v, want %v", tc.role, tc.cap, got, tc.want)
		}
	}
}

func TestAllowedChecksStatusCondition(t *testing.T) {
	octx := OrderContext{CreatedByID: 1, Status: enums.OrderStatusApproved}
	if Allowed(enums.UserRoleOrcamento, CapabilityApproveOrder, 2, octx) {
		t.Fatal("approve must be blocked when the order is not pending")
	}

	octx.Status = enums.OrderStatusPending
	if !Allowed(enums.UserRoleOrcamento, CapabilityApproveOrder, 2, octx) {
		t.Fatal("approve must be allowed for orcamento on a pending order")
	}
}

func TestAllowedOwnershipForVendedorEdits(t *testing.T) {
	octx := OrderContext{CreatedByID: 7, Status: enums.OrderStatusPending}

	if !Allowed(enums.UserRoleVendedor, CapabilityEditOrder, 7, octx) {
		t.Fatal("vendedor must edit their own pending order")
	}
	if Allowed(enums.UserRoleVendedor, CapabilityEditOrder, 8, octx) {
		t.Fatal("vendedor must not edit another user's order")
	}

	// Orcamento is not creator-restricted.
	if !Allowed(enums.UserRoleOrcamento, CapabilityEditOrder, 8, octx) {
		t.Fatal("orcamento must edit regardless of creator")
	}
}

func TestAdminBypassesOwnershipButNotStatus(t *testing.T) {
	octx := OrderContext{CreatedByID: 7, Status: enums.OrderStatusPending}
	if !Allowed(enums.UserRoleAdmin, CapabilityEditOrder, 99, octx) {
		t.Fatal("admin must edit any pending order")
	}

	octx.Status = enums.OrderStatusDelivered
	if Allowed(enums.UserRoleAdmin, CapabilityEditOrder, 99, octx) {
		t.Fatal("admin must still respect the status condition")
	}
	if Allowed(enums.UserRoleAdmin, CapabilityApproveOrder, 99, octx) {
		t.Fatal("admin cannot approve an order that is not pending")
	}
}
