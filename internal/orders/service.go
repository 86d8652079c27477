package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/koxixo/orders-backend/internal/audit"
	"github.com/koxixo/orders-backend/pkg/db"
	"github.com/koxixo/orders-backend/pkg/db/models"
	"github.com/koxixo/orders-backend/pkg/enums"
	pkgerrors "github.com/koxixo/orders-backend/pkg/errors"
	"github.com/koxixo/orders-backend/pkg/logger"
	"github.com/koxixo/orders-backend/pkg/pagination"
	"gorm.io/gorm"
)

const defaultRequestTimeout = 10 * time.Second

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo    Repository
	tx      txRunner
	audit   audit.Recorder
	logg    *logger.Logger
	timeout time.Duration
	now     func() time.Time
}

// ServiceParams collects the dependencies an order service needs.
type ServiceParams struct {
	Repo           Repository
	Tx             txRunner
	Audit          audit.Recorder
	Logger         *logger.Logger
	RequestTimeout time.Duration
}

// NewService builds the order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Audit == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	timeout := params.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &service{
		repo:    params.Repo,
		tx:      params.Tx,
		audit:   params.Audit,
		logg:    params.Logger,
		timeout: timeout,
		now:     time.Now,
	}, nil
}

func (s *service) CreateOrder(ctx context.Context, actor Actor, input CreateOrderInput) (*models.Order, error) {
	if err := validateActor(actor); err != nil {
		return nil, err
	}
	if !Allowed(actor.Role, CapabilityCreateOrder, actor.UserID, OrderContext{}) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot create orders")
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	priority := input.Priority
	if priority == "" {
		priority = enums.OrderPriorityMedium
	}
	if !priority.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid priority %q", priority))
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	order := &models.Order{
		Title:       title,
		Description: input.Description,
		Value:       input.Value,
		Priority:    priority,
		Dimensions:  input.Dimensions,
		Finish:      input.Finish,
		Material:    input.Material,
		Status:      enums.OrderStatusPending,
		CreatedByID: actor.UserID,
	}

	created, err := s.repo.Create(ctx, order)
	if err != nil {
		return nil, s.classifyRepoError(err, "create order")
	}
	s.logg.Info(s.logg.WithOrderID(ctx, created.ID), "orders.created")

	s.audit.Record(ctx, audit.RecordInput{
		ActorUserID: &actor.UserID,
		Action:      enums.AuditActionOrderCreate,
		EntityType:  audit.EntityTypeOrder,
		EntityID:    created.ID,
		To: map[string]any{
			"title":         created.Title,
			"status":        created.Status,
			"priority":      created.Priority,
			"created_by_id": created.CreatedByID,
		},
	})

	return created, nil
}

func (s *service) EditOrder(ctx context.Context, actor Actor, orderID int64, input EditOrderInput) (*models.Order, error) {
	if err := validateActor(actor); err != nil {
		return nil, err
	}
	if orderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !RoleAllowed(actor.Role, CapabilityEditOrder) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot edit orders")
	}
	if input.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no editable fields provided")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var updated *models.Order
	var before map[string]any
	var touched map[string]any

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			return s.classifyLoadError(err)
		}

		// Condition checked against the freshly loaded row, not a value
		// cached before the lock: closes the check/act race.
		octx := OrderContext{CreatedByID: order.CreatedByID, Status: order.Status}
		if !Allowed(actor.Role, CapabilityEditOrder, actor.UserID, octx) {
			if !order.Status.IsEditable() {
				return pkgerrors.New(
					pkgerrors.CodeStateConflict,
					fmt.Sprintf("order is not editable in status %s", order.Status),
				)
			}
			return pkgerrors.New(pkgerrors.CodeForbidden, "cannot edit an order created by another user")
		}

		updates, err := ComputeEdit(order, input, actor.UserID, s.now().UTC())
		if err != nil {
			return err
		}

		ok, err := repo.UpdateGuarded(ctx, order.ID, order.Status, order.Version, updates)
		if err != nil {
			return s.classifyRepoError(err, "update order")
		}
		if !ok {
			return s.resolveGuardFailure(ctx, repo, order.ID)
		}

		updated, err = repo.FindByID(ctx, order.ID)
		if err != nil {
			return s.classifyLoadError(err)
		}

		before = snapshotColumns(order, updates)
		touched = updates
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.RecordInput{
		ActorUserID: &actor.UserID,
		Action:      enums.AuditActionOrderUpdate,
		EntityType:  audit.EntityTypeOrder,
		EntityID:    updated.ID,
		From:        before,
		To:          snapshotColumns(updated, touched),
	})

	return updated, nil
}

func (s *service) TransitionOrder(ctx context.Context, actor Actor, orderID int64, action enums.OrderAction, payload TransitionPayload) (*models.Order, error) {
	if err := validateActor(actor); err != nil {
		return nil, err
	}
	if orderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	capability, ok := CapabilityForAction(action)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnknownAction, fmt.Sprintf("unknown order action %q", action))
	}

	// Role gate before touching the store; contextual conditions are
	// re-checked after the load inside the transaction.
	if !RoleAllowed(actor.Role, capability) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, fmt.Sprintf("role cannot perform %s", action))
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var updated *models.Order
	var before map[string]any
	var touched map[string]any

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			return s.classifyLoadError(err)
		}

		octx := OrderContext{CreatedByID: order.CreatedByID, Status: order.Status}
		if !Allowed(actor.Role, capability, actor.UserID, octx) {
			// Role already passed the gate above, so the contextual
			// condition failed: surface it as an illegal transition,
			// which is what the state machine would report anyway.
			return pkgerrors.New(
				pkgerrors.CodeStateConflict,
				fmt.Sprintf("%s not allowed from status %s", action, order.Status),
			)
		}

		updates, err := ComputeTransition(order, action, actor.UserID, s.now().UTC(), payload)
		if err != nil {
			return err
		}

		ok, err := repo.UpdateGuarded(ctx, order.ID, order.Status, order.Version, updates)
		if err != nil {
			return s.classifyRepoError(err, "apply transition")
		}
		if !ok {
			return s.resolveGuardFailure(ctx, repo, order.ID)
		}

		updated, err = repo.FindByID(ctx, order.ID)
		if err != nil {
			return s.classifyLoadError(err)
		}

		before = snapshotColumns(order, updates)
		touched = updates
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.RecordInput{
		ActorUserID: &actor.UserID,
		Action:      enums.AuditActionOrderStatus,
		EntityType:  audit.EntityTypeOrder,
		EntityID:    updated.ID,
		From:        before,
		To:          snapshotColumns(updated, touched),
		Metadata:    map[string]any{"action": action.String()},
	})

	return updated, nil
}

func (s *service) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	if orderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, s.classifyLoadError(err)
	}
	return order, nil
}

func (s *service) ListOrders(ctx context.Context, filters ListFilters, sort Sort, params pagination.Params) (*OrderList, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	list, err := s.repo.List(ctx, filters, sort, params)
	if err != nil {
		return nil, s.classifyRepoError(err, "list orders")
	}
	return list, nil
}

func (s *service) StreamOrders(ctx context.Context, cursor string, limit int) (*ExportPage, error) {
	afterID, err := pagination.ParseCursor(cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	limit = pagination.NormalizeLimit(limit)
	items, err := s.repo.ListAfterID(ctx, afterID, limit)
	if err != nil {
		return nil, s.classifyRepoError(err, "stream orders")
	}

	page := &ExportPage{Items: items}
	if len(items) == limit {
		page.HasMore = true
		page.NextCursor = pagination.EncodeCursor(items[len(items)-1].ID)
	}
	return page, nil
}

// resolveGuardFailure distinguishes why a guarded update wrote nothing:
// the row vanished, or a concurrent writer moved it first.
func (s *service) resolveGuardFailure(ctx context.Context, repo Repository, orderID int64) error {
	current, err := repo.FindByID(ctx, orderID)
	if err != nil {
		return s.classifyLoadError(err)
	}
	s.logg.Warn(s.logg.WithOrderID(ctx, orderID), "orders.guarded_update_conflict")
	return pkgerrors.New(
		pkgerrors.CodeStateConflict,
		fmt.Sprintf("order no longer in expected state, now %s", current.Status),
	).WithDetails(map[string]any{"current_status": current.Status.String()})
}

func (s *service) classifyLoadError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return s.classifyRepoError(err, "load order")
}

func (s *service) classifyRepoError(err error, operation string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "order store timed out")
	}
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, operation)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, operation)
}

func validateActor(actor Actor) error {
	if actor.UserID <= 0 {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !actor.Role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, fmt.Sprintf("unknown role %q", actor.Role))
	}
	return nil
}

// snapshotColumns extracts the audit-relevant view of an order limited
// to the touched columns.
func snapshotColumns(order *models.Order, updates map[string]any) map[string]any {
	snapshot := make(map[string]any, len(updates))
	for column := range updates {
		snapshot[column] = columnValue(order, column)
	}
	return snapshot
}

func columnValue(order *models.Order, column string) any {
	switch column {
	case "status":
		return order.Status
	case "title":
		return order.Title
	case "description":
		return order.Description
	case "value":
		return order.Value
	case "priority":
		return order.Priority
	case "dimensions":
		return order.Dimensions
	case "finish":
		return order.Finish
	case "material":
		return order.Material
	case "approved_by_id":
		return order.ApprovedByID
	case "approved_at":
		return order.ApprovedAt
	case "rejected_by_id":
		return order.RejectedByID
	case "rejected_at":
		return order.RejectedAt
	case "rejection_reason":
		return order.RejectionReason
	case "completed_by_id":
		return order.CompletedByID
	case "completed_at":
		return order.CompletedAt
	case "delivered_by_id":
		return order.DeliveredByID
	case "delivered_at":
		return order.DeliveredAt
	case "last_edited_by_id":
		return order.LastEditedByID
	case "last_edited_at":
		return order.LastEditedAt
	default:
		return nil
	}
}
