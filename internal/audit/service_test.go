package audit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/koxixo/orders-backend/pkg/db/models"
	"github.com/koxixo/orders-backend/pkg/enums"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuditRepo struct {
	entries []*models.AuditLog
	err     error
}

func (s *stubAuditRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, entry)
	return nil
}

func TestNewRecorderRequiresRepo(t *testing.T) {
	_, err := NewRecorder(nil, nil)
	assert.Error(t, err)
}

func TestRecordAppendsEntry(t *testing.T) {
	repo := &stubAuditRepo{}
	rec, err := NewRecorder(repo, nil)
	require.NoError(t, err)

	actor := int64(2)
	rec.Record(context.Background(), RecordInput{
		ActorUserID: &actor,
		Action:      enums.AuditActionOrderStatus,
		EntityType:  EntityTypeOrder,
		EntityID:    42,
		From:        map[string]any{"status": "pending"},
		To:          map[string]any{"status": "approved", "approved_by_id": 2},
		Metadata:    map[string]any{"action": "approve"},
	})

	require.Len(t, repo.entries, 1)
	entry := repo.entries[0]
	assert.Equal(t, enums.AuditActionOrderStatus, entry.Action)
	assert.Equal(t, int64(42), entry.EntityID)
	require.NotNil(t, entry.ActorUserID)
	assert.Equal(t, int64(2), *entry.ActorUserID)

	var to map[string]any
	require.NoError(t, json.Unmarshal(entry.ToState, &to))
	assert.Equal(t, "approved", to["status"])
}

func TestRecordSwallowsRepoFailure(t *testing.T) {
	repo := &stubAuditRepo{err: errors.New("insert failed")}
	rec, err := NewRecorder(repo, nil)
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		rec.Record(context.Background(), RecordInput{
			Action:     enums.AuditActionOrderCreate,
			EntityType: EntityTypeOrder,
			EntityID:   1,
			To:         map[string]any{"status": "pending"},
		})
	})
}

func TestRecordSwallowsInvalidInput(t *testing.T) {
	repo := &stubAuditRepo{}
	rec, err := NewRecorder(repo, nil)
	require.NoError(t, err)

	rec.Record(context.Background(), RecordInput{
		Action:     enums.AuditAction("bogus"),
		EntityType: EntityTypeOrder,
		EntityID:   1,
	})
	assert.Empty(t, repo.entries)
}

func TestRecordSurvivesCanceledContext(t *testing.T) {
	repo := &stubAuditRepo{}
	rec, err := NewRecorder(repo, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec.Record(ctx, RecordInput{
		Action:     enums.AuditActionOrderUpdate,
		EntityType: EntityTypeOrder,
		EntityID:   7,
		To:         map[string]any{"title": "new"},
	})
	assert.Len(t, repo.entries, 1)
}
