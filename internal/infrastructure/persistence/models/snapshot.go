package models

import (
	"time"

	"github.com/agencyos/backend/internal/domain/activity"
)

// RecordSnapshot is the latest serialized collection of one module
type RecordSnapshot struct {
	Module    string    `gorm:"type:varchar(64);primaryKey"`
	Payload   []byte    `gorm:"not null"`
	Records   int       `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (RecordSnapshot) TableName() string {
	return "record_snapshots"
}

// ActivityEntry is a persisted activity log line
type ActivityEntry struct {
	ID         string    `gorm:"type:varchar(64);primaryKey"`
	Module     string    `gorm:"type:varchar(64);not null;index:idx_activity_module_record"`
	RecordID   string    `gorm:"type:varchar(64);index:idx_activity_module_record"`
	Kind       string    `gorm:"type:varchar(32);not null"`
	FromStatus string    `gorm:"type:varchar(32)"`
	ToStatus   string    `gorm:"type:varchar(32)"`
	Patch      string    `gorm:"type:text"`
	Actor      string    `gorm:"type:varchar(128)"`
	At         time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (ActivityEntry) TableName() string {
	return "activity_entries"
}

// ActivityEntryFromDomain maps a domain entry onto its row
func ActivityEntryFromDomain(e activity.Entry) *ActivityEntry {
	return &ActivityEntry{
		ID:         e.ID,
		Module:     e.Module,
		RecordID:   e.RecordID,
		Kind:       string(e.Kind),
		FromStatus: e.FromStatus,
		ToStatus:   e.ToStatus,
		Patch:      e.Patch,
		Actor:      e.Actor,
		At:         e.At.UTC(),
	}
}

// ToDomain maps the row back onto a domain entry
func (m *ActivityEntry) ToDomain() activity.Entry {
	return activity.Entry{
		ID:         m.ID,
		Module:     m.Module,
		RecordID:   m.RecordID,
		Kind:       activity.Kind(m.Kind),
		FromStatus: m.FromStatus,
		ToStatus:   m.ToStatus,
		Patch:      m.Patch,
		Actor:      m.Actor,
		At:         m.At,
	}
}
