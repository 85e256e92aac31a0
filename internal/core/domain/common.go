package domain

import "time"

// AuditFields holds the store-maintained timestamps shared by ledger records.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"updatedAt"`
}
