package orders

import (
	"testing"
	"time"

	"github.com/koxixo/orders-backend/pkg/db/models"
	"github.com/koxixo/orders-backend/pkg/enums"
	pkgerrors "github.com/koxixo/orders-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

var allStatuses = []enums.OrderStatus{
	enums.OrderStatusPending,
	enums.OrderStatusApproved,
	enums.OrderStatusRejected,
	enums.OrderStatusInProgress,
	enums.OrderStatusCompleted,
	enums.OrderStatusDelivered,
	enums.OrderStatusCancelled,
}

func TestComputeTransitionRejectsEveryIllegalPair(t *testing.T) {
	now := time.Now().UTC()
	for action, rule := range transitionTable {
		for _, status := range allStatuses {
			order := &models.Order{ID: 1, Status: status}
			updates, err := ComputeTransition(order, action, 10, now, TransitionPayload{})
			if status == rule.from {
				if err != nil {
					t.Fatalf("%s from %s: unexpected error %v", action, status, err)
				}
				if updates["status"] != rule.to {
					t.Fatalf("%s from %s: expected status %s, got %v", action, status, rule.to, updates["status"])
				}
				continue
			}
			if err == nil {
				t.Fatalf("%s from %s: expected state conflict", action, status)
			}
			if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
				t.Fatalf("%s from %s: expected state conflict, got %v", action, status, err)
			}
		}
	}
}

func TestComputeTransitionIsNotIdempotent(t *testing.T) {
	// Approving an already approved order is a conflict, not a no-op.
	order := &models.Order{ID: 1, Status: enums.OrderStatusApproved}
	_, err := ComputeTransition(order, enums.OrderActionApprove, 10, time.Now().UTC(), TransitionPayload{})
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestComputeTransitionUnknownAction(t *testing.T) {
	order := &models.Order{ID: 1, Status: enums.OrderStatusPending}
	_, err := ComputeTransition(order, enums.OrderAction("archive"), 10, time.Now().UTC(), TransitionPayload{})
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnknownAction) {
		t.Fatalf("expected unknown action error, got %v", err)
	}
}

func TestComputeTransitionStampsApproval(t *testing.T) {
	now := time.Now().UTC()
	order := &models.Order{ID: 1, Status: enums.OrderStatusPending}

	updates, err := ComputeTransition(order, enums.OrderActionApprove, 42, now, TransitionPayload{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updates["approved_by_id"] != int64(42) {
		t.Fatalf("expected approver 42, got %v", updates["approved_by_id"])
	}
	if updates["approved_at"] != now {
		t.Fatalf("expected approval timestamp %v, got %v", now, updates["approved_at"])
	}
}

func TestComputeTransitionRejectDefaultsReason(t *testing.T) {
	now := time.Now().UTC()
	order := &models.Order{ID: 1, Status: enums.OrderStatusPending}

	updates, err := ComputeTransition(order, enums.OrderActionReject, 42, now, TransitionPayload{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updates["rejection_reason"] != DefaultRejectionReason {
		t.Fatalf("expected default reason, got %v", updates["rejection_reason"])
	}

	reason := "  too expensive  "
	updates, err = ComputeTransition(order, enums.OrderActionReject, 42, now, TransitionPayload{Reason: &reason})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updates["rejection_reason"] != "too expensive" {
		t.Fatalf("expected trimmed reason, got %v", updates["rejection_reason"])
	}
}

func TestComputeTransitionResubmitClearsRejection(t *testing.T) {
	actorID := int64(42)
	at := time.Now().UTC()
	reason := "wrong dimensions"
	order := &models.Order{
		ID:              1,
		Status:          enums.OrderStatusRejected,
		RejectedByID:    &actorID,
		RejectedAt:      &at,
		RejectionReason: &reason,
	}

	updates, err := ComputeTransition(order, enums.OrderActionResubmit, 7, at, TransitionPayload{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updates["status"] != enums.OrderStatusPending {
		t.Fatalf("expected resubmit to return to pending, got %v", updates["status"])
	}
	for _, column := range []string{"rejected_by_id", "rejected_at", "rejection_reason"} {
		value, ok := updates[column]
		if !ok {
			t.Fatalf("expected %s to be cleared", column)
		}
		if value != nil {
			t.Fatalf("expected %s to clear to NULL, got %v", column, value)
		}
	}
}

func TestComputeEditBlocksNonEditableStatuses(t *testing.T) {
	title := "banner"
	input := EditOrderInput{Title: &title}

	for _, status := range allStatuses {
		order := &models.Order{ID: 1, Status: status}
		_, err := ComputeEdit(order, input, 7, time.Now().UTC())
		if status.IsEditable() {
			if err != nil {
				t.Fatalf("edit in %s: unexpected error %v", status, err)
			}
			continue
		}
		if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
			t.Fatalf("edit in %s: expected state conflict, got %v", status, err)
		}
	}
}

func TestComputeEditValidatesFields(t *testing.T) {
	order := &models.Order{ID: 1, Status: enums.OrderStatusPending}

	empty := "   "
	if _, err := ComputeEdit(order, EditOrderInput{Title: &empty}, 7, time.Now().UTC()); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for blank title, got %v", err)
	}

	bad := enums.OrderPriority("extreme")
	if _, err := ComputeEdit(order, EditOrderInput{Priority: &bad}, 7, time.Now().UTC()); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for bad priority, got %v", err)
	}
}

func TestComputeEditAlwaysStampsEditor(t *testing.T) {
	now := time.Now().UTC()
	order := &models.Order{ID: 1, Status: enums.OrderStatusPending, Title: "banner"}

	value := decimal.NewFromFloat(149.90)
	updates, err := ComputeEdit(order, EditOrderInput{Value: &value}, 7, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updates["last_edited_by_id"] != int64(7) {
		t.Fatalf("expected editor stamp, got %v", updates["last_edited_by_id"])
	}
	if updates["last_edited_at"] != now {
		t.Fatalf("expected edit timestamp, got %v", updates["last_edited_at"])
	}
	if _, ok := updates["title"]; ok {
		t.Fatal("absent fields must stay untouched")
	}
}
