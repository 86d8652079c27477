package orders

import (
	"fmt"
	"strings"
	"time"

	"github.com/koxixo/orders-backend/pkg/db/models"
	"github.com/koxixo/orders-backend/pkg/enums"
	pkgerrors "github.com/koxixo/orders-backend/pkg/errors"
)

// DefaultRejectionReason is stamped when a reject carries no reason.
const DefaultRejectionReason = "no reason given"

// transitionRule is one row of the transition table: the status the
// action requires, the status it produces, and the columns it stamps or
// clears beyond the status itself.
type transitionRule struct {
	from  enums.OrderStatus
	to    enums.OrderStatus
	stamp func(updates map[string]any, actorID int64, now time.Time, payload TransitionPayload)
}

var transitionTable = map[enums.OrderAction]transitionRule{
	enums.OrderActionApprove: {
		from: enums.OrderStatusPending,
		to:   enums.OrderStatusApproved,
		stamp: func(updates map[string]any, actorID int64, now time.Time, _ TransitionPayload) {
			updates["approved_by_id"] = actorID
			updates["approved_at"] = now
		},
	},
	enums.OrderActionReject: {
		from: enums.OrderStatusPending,
		to:   enums.OrderStatusRejected,
		stamp: func(updates map[string]any, actorID int64, now time.Time, payload TransitionPayload) {
			reason := DefaultRejectionReason
			if payload.Reason != nil && strings.TrimSpace(*payload.Reason) != "" {
				reason = strings.TrimSpace(*payload.Reason)
			}
			updates["rejected_by_id"] = actorID
			updates["rejected_at"] = now
			updates["rejection_reason"] = reason
		},
	},
	enums.OrderActionStartProduction: {
		from: enums.OrderStatusApproved,
		to:   enums.OrderStatusInProgress,
	},
	enums.OrderActionComplete: {
		from: enums.OrderStatusInProgress,
		to:   enums.OrderStatusCompleted,
		stamp: func(updates map[string]any, actorID int64, now time.Time, _ TransitionPayload) {
			updates["completed_by_id"] = actorID
			updates["completed_at"] = now
		},
	},
	enums.OrderActionDeliver: {
		from: enums.OrderStatusCompleted,
		to:   enums.OrderStatusDelivered,
		stamp: func(updates map[string]any, actorID int64, now time.Time, _ TransitionPayload) {
			updates["delivered_by_id"] = actorID
			updates["delivered_at"] = now
		},
	},
	enums.OrderActionResubmit: {
		from: enums.OrderStatusRejected,
		to:   enums.OrderStatusPending,
		stamp: func(updates map[string]any, _ int64, _ time.Time, _ TransitionPayload) {
			updates["rejected_by_id"] = nil
			updates["rejected_at"] = nil
			updates["rejection_reason"] = nil
		},
	},
}

// ComputeTransition resolves the action against the transition table and
// returns the column updates it produces. Transitions are deliberately
// not idempotent: re-running approve on an approved order fails so that
// duplicate client submissions surface instead of silently no-opping.
func ComputeTransition(order *models.Order, action enums.OrderAction, actorID int64, now time.Time, payload TransitionPayload) (map[string]any, error) {
	rule, ok := transitionTable[action]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnknownAction, fmt.Sprintf("unknown order action %q", action))
	}

	if order.Status != rule.from {
		return nil, pkgerrors.New(
			pkgerrors.CodeStateConflict,
			fmt.Sprintf("%s not allowed from status %s", action, order.Status),
		).WithDetails(map[string]any{
			"action":          action.String(),
			"current_status":  order.Status.String(),
			"required_status": rule.from.String(),
		})
	}

	updates := map[string]any{"status": rule.to}
	if rule.stamp != nil {
		rule.stamp(updates, actorID, now, payload)
	}
	return updates, nil
}

// editableColumns maps edit input onto columns. Only these fields may
// change after creation, and only while the status permits editing.
func editableUpdates(input EditOrderInput) map[string]any {
	updates := map[string]any{}
	if input.Title != nil {
		updates["title"] = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Value != nil {
		updates["value"] = *input.Value
	}
	if input.Priority != nil {
		updates["priority"] = *input.Priority
	}
	if input.Dimensions != nil {
		updates["dimensions"] = *input.Dimensions
	}
	if input.Finish != nil {
		updates["finish"] = *input.Finish
	}
	if input.Material != nil {
		updates["material"] = *input.Material
	}
	return updates
}

// ComputeEdit applies partial-update semantics: provided fields change,
// absent fields stay, and the editor stamp is always written even when
// the provided values equal the current ones.
func ComputeEdit(order *models.Order, input EditOrderInput, actorID int64, now time.Time) (map[string]any, error) {
	if !order.Status.IsEditable() {
		return nil, pkgerrors.New(
			pkgerrors.CodeStateConflict,
			fmt.Sprintf("order is not editable in status %s", order.Status),
		).WithDetails(map[string]any{"current_status": order.Status.String()})
	}

	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
	}
	if input.Priority != nil && !input.Priority.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid priority %q", *input.Priority))
	}

	updates := editableUpdates(input)
	updates["last_edited_by_id"] = actorID
	updates["last_edited_at"] = now
	return updates, nil
}
