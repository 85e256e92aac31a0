package models

import "time"

// AuditFields are the row timestamps every table carries.
type AuditFields struct {
	CreatedAt     time.Time `db:"created_at"`
	LastUpdatedAt time.Time `db:"updated_at"`
}
