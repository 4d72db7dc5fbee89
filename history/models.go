package history

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Entry is one row in view_preference_changes.
type Entry struct {
	bun.BaseModel `bun:"table:view_preference_changes"`

	ID        uuid.UUID      `bun:"id,pk,type:uuid" json:"id"`
	UserID    uuid.UUID      `bun:"user_id,type:uuid" json:"user_id"`
	TenantID  uuid.UUID      `bun:"tenant_id,type:uuid,nullzero" json:"tenant_id"`
	OrgID     uuid.UUID      `bun:"org_id,type:uuid,nullzero" json:"org_id"`
	TableName string         `bun:"table_name" json:"table_name"`
	Kind      string         `bun:"kind" json:"kind"`
	ViewName  string         `bun:"view_name,nullzero" json:"view_name"`
	Details   map[string]any `bun:"details,type:jsonb" json:"details"`
	CreatedAt time.Time      `bun:"created_at" json:"created_at"`
}
