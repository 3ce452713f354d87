package persistence

import (
	"context"
	"fmt"

	"github.com/agencyos/backend/internal/domain/activity"
	"github.com/agencyos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormActivityRepository implements activity.Repository using GORM
type GormActivityRepository struct {
	db *gorm.DB
}

// NewGormActivityRepository creates a new GormActivityRepository
func NewGormActivityRepository(db *gorm.DB) *GormActivityRepository {
	return &GormActivityRepository{db: db}
}

// Append stores one entry
func (r *GormActivityRepository) Append(ctx context.Context, entry activity.Entry) error {
	if err := r.db.WithContext(ctx).Create(models.ActivityEntryFromDomain(entry)).Error; err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	return nil
}

// Find returns matching entries newest first
func (r *GormActivityRepository) Find(ctx context.Context, q activity.Query) ([]activity.Entry, error) {
	query := r.db.WithContext(ctx).Model(&models.ActivityEntry{})
	if q.Module != "" {
		query = query.Where("module = ?", q.Module)
	}
	if q.RecordID != "" {
		query = query.Where("record_id = ?", q.RecordID)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	var rows []models.ActivityEntry
	if err := query.Order("at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find activity: %w", err)
	}

	entries := make([]activity.Entry, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToDomain()
	}
	return entries, nil
}
