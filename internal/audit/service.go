package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/koxixo/orders-backend/pkg/db/models"
	"github.com/koxixo/orders-backend/pkg/enums"
	"github.com/koxixo/orders-backend/pkg/logger"
)

// EntityTypeOrder tags audit entries targeting an order record.
const EntityTypeOrder = "order"

// RecordInput captures one mutation's before/after state. Snapshots are
// structural: only the fields the action touched, not the full schema.
type RecordInput struct {
	ActorUserID *int64
	Action      enums.AuditAction
	EntityType  string
	EntityID    int64
	From        any
	To          any
	Metadata    map[string]any
}

// Recorder appends immutable audit entries. Record never propagates
// failure to the caller: a lost audit row must not abort the mutation
// that triggered it.
type Recorder interface {
	Record(ctx context.Context, input RecordInput)
}

type recorder struct {
	repo Repository
	logg *logger.Logger
}

// NewRecorder wires an audit recorder with the provided repository.
func NewRecorder(repo Repository, logg *logger.Logger) (Recorder, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	return &recorder{repo: repo, logg: logg}, nil
}

func (r *recorder) Record(ctx context.Context, input RecordInput) {
	entry, err := buildEntry(input)
	if err != nil {
		r.swallow(ctx, err)
		return
	}

	// The triggering operation has already committed; a canceled request
	// context must not drop the trail.
	ctx = context.WithoutCancel(ctx)
	if err := r.repo.Create(ctx, entry); err != nil {
		r.swallow(ctx, err)
	}
}

func buildEntry(input RecordInput) (*models.AuditLog, error) {
	if !input.Action.IsValid() {
		return nil, fmt.Errorf("invalid audit action %q", input.Action)
	}
	if input.EntityType == "" {
		return nil, fmt.Errorf("entity type is required")
	}
	if input.EntityID <= 0 {
		return nil, fmt.Errorf("entity id is required")
	}

	from, err := marshalSnapshot(input.From)
	if err != nil {
		return nil, fmt.Errorf("marshal from snapshot: %w", err)
	}
	to, err := marshalSnapshot(input.To)
	if err != nil {
		return nil, fmt.Errorf("marshal to snapshot: %w", err)
	}
	meta, err := marshalSnapshot(input.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}

	return &models.AuditLog{
		ID:          uuid.New(),
		ActorUserID: input.ActorUserID,
		Action:      input.Action,
		EntityType:  input.EntityType,
		EntityID:    input.EntityID,
		FromState:   from,
		ToState:     to,
		Metadata:    meta,
	}, nil
}

func marshalSnapshot(value any) (json.RawMessage, error) {
	if value == nil {
		return nil, nil
	}
	if m, ok := value.(map[string]any); ok && len(m) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (r *recorder) swallow(ctx context.Context, err error) {
	if r.logg == nil {
		return
	}
	r.logg.Error(ctx, "audit.write_failed", err)
}
