package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/lucaramirezo/products-ga/pkg/db/models"
	pkgerrors "github.com/lucaramirezo/products-ga/pkg/errors"
)

// DefaultActor is recorded when the caller did not identify itself.
const DefaultActor = "admin"

// Service records field-level changes on catalog entities.
type Service interface {
	RecordChanges(ctx context.Context, tx *gorm.DB, entity, entityID, actor string, before, after any) error
	ListByEntity(ctx context.Context, entity, entityID string, limit int) ([]models.AuditRecord, error)
}

type service struct {
	repo Repository
}

// NewService wires an audit service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	return &service{repo: repo}, nil
}

// RecordChanges diffs two snapshots of the same entity field by field and
// appends one record per changed field. A nil before means creation, a
// nil after means deletion. Passing tx keeps the audit rows in the same
// transaction as the mutation they describe.
func (s *service) RecordChanges(ctx context.Context, tx *gorm.DB, entity, entityID, actor string, before, after any) error {
	if actor == "" {
		actor = DefaultActor
	}

	beforeFields, err := snapshotFields(before)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "snapshot previous state")
	}
	afterFields, err := snapshotFields(after)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "snapshot new state")
	}

	now := time.Now().UTC()
	var records []models.AuditRecord
	for field, afterValue := range afterFields {
		beforeValue, existed := beforeFields[field]
		if existed && bytes.Equal(beforeValue, afterValue) {
			continue
		}
		records = append(records, models.AuditRecord{
			Entity:   entity,
			EntityID: entityID,
			Field:    field,
			Before:   beforeValue,
			After:    afterValue,
			Actor:    actor,
			At:       now,
		})
	}
	for field, beforeValue := range beforeFields {
		if _, still := afterFields[field]; still {
			continue
		}
		records = append(records, models.AuditRecord{
			Entity:   entity,
			EntityID: entityID,
			Field:    field,
			Before:   beforeValue,
			Actor:    actor,
			At:       now,
		})
	}

	repo := s.repo
	if tx != nil {
		repo = repo.WithTx(tx)
	}
	if err := repo.Append(ctx, records); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append audit records")
	}
	return nil
}

func (s *service) ListByEntity(ctx context.Context, entity, entityID string, limit int) ([]models.AuditRecord, error) {
	records, err := s.repo.ListByEntity(ctx, entity, entityID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list audit records")
	}
	return records, nil
}

// snapshotFields flattens an entity into its top-level JSON fields.
// Timestamps are excluded; they change on every write and carry no
// audit value of their own.
func snapshotFields(entity any) (map[string]json.RawMessage, error) {
	if entity == nil {
		return map[string]json.RawMessage{}, nil
	}
	raw, err := json.Marshal(entity)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	delete(fields, "CreatedAt")
	delete(fields, "UpdatedAt")
	delete(fields, "created_at")
	delete(fields, "updated_at")
	return fields, nil
}
