package model

import (
	"database/sql"
	"time"
)

// Sync run statuses. A run has exactly one terminal transition:
// running -> completed or running -> failed.
const (
	SyncStatusRunning   = "running"
	SyncStatusCompleted = "completed"
	SyncStatusFailed    = "failed"
)

// SyncRun is one audit row in the sync ledger
type SyncRun struct {
	ID            int
	StartedAt     time.Time
	CompletedAt   sql.NullTime
	Status        string
	TotalFetched  int
	TotalInserted int
	TotalUpdated  int
	ErrorMessage  sql.NullString
}

// FeaturedSlot is an active paid placement for an officiant. Scope columns
// are null when the slot applies everywhere.
type FeaturedSlot struct {
	ID           int
	OfficiantID  int
	SlotType     string
	Municipality sql.NullString
	Affiliation  sql.NullString
	IsActive     bool
	StartsAt     time.Time
	EndsAt       time.Time
}
