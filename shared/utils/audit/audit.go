package audit

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"sinpd-backend/shared/database/models/notification"
)

// Entry describes one audited mutation. Before/After take any
// JSON-marshalable snapshot of the mutated fields and may be nil.
type Entry struct {
	OrganizationID *uuid.UUID
	ActorID        *uuid.UUID
	EntityTable    string
	EntityID       *uuid.UUID
	Action         string
	Before         interface{}
	After          interface{}
}

// Record appends an immutable audit entry. It runs on the caller's
// *gorm.DB, so inside a transaction an audit failure aborts the
// triggering mutation with it.
func Record(db *gorm.DB, entry Entry) error {
	row := notification.AuditLog{
		OrganizationID: entry.OrganizationID,
		ActorID:        entry.ActorID,
		EntityTable:    entry.EntityTable,
		EntityID:       entry.EntityID,
		Action:         entry.Action,
	}

	var err error
	if row.Before, err = marshalSnapshot(entry.Before); err != nil {
		return err
	}
	if row.After, err = marshalSnapshot(entry.After); err != nil {
		return err
	}

	if err := db.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func marshalSnapshot(v interface{}) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal audit snapshot: %w", err)
	}
	return datatypes.JSON(data), nil
}
