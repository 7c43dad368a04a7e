package models

import (
	"encoding/json"
	"time"
)

// AuditRecord is one field-level change in the append-only audit log.
type AuditRecord struct {
	ID       int64           `gorm:"column:id;primaryKey;autoIncrement"`
	Entity   string          `gorm:"column:entity;not null;index:idx_audit_entity"`
	EntityID string          `gorm:"column:entity_id;not null;index:idx_audit_entity"`
	Field    string          `gorm:"column:field;not null"`
	Before   json.RawMessage `gorm:"column:before;type:jsonb"`
	After    json.RawMessage `gorm:"column:after;type:jsonb"`
	Actor    string          `gorm:"column:actor;not null"`
	At       time.Time       `gorm:"column:at;not null;index"`
}

func (AuditRecord) TableName() string { return "audit_log" }
