package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agencyos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSnapshotRepository implements shared.SnapshotRepository using GORM
type GormSnapshotRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormSnapshotRepository creates a new GormSnapshotRepository
func NewGormSnapshotRepository(db *gorm.DB) *GormSnapshotRepository {
	return &GormSnapshotRepository{db: db, now: time.Now}
}

// Load returns the stored payload for module
func (r *GormSnapshotRepository) Load(ctx context.Context, module string) ([]byte, bool, error) {
	var model models.RecordSnapshot
	err := r.db.WithContext(ctx).Where("module = ?", module).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load snapshot %s: %w", module, err)
	}
	return model.Payload, true, nil
}

// Save upserts the snapshot row for module
func (r *GormSnapshotRepository) Save(ctx context.Context, module string, payload []byte) error {
	model := models.RecordSnapshot{
		Module:    module,
		Payload:   payload,
		Records:   countRecords(payload),
		UpdatedAt: r.now().UTC(),
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "module"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "records", "updated_at"}),
		}).
		Create(&model).Error
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", module, err)
	}
	return nil
}

// countRecords counts top-level elements of a JSON array without decoding them.
func countRecords(payload []byte) int {
	depth, count := 0, 0
	inString, escaped := false, false
	for _, b := range payload {
		switch {
		case escaped:
			escaped = false
		case inString && b == '\\':
			escaped = true
		case b == '"':
			inString = !inString
		case inString:
		case b == '[' || b == '{':
			if depth == 1 && b == '{' {
				count++
			}
			depth++
		case b == ']' || b == '}':
			depth--
		}
	}
	return count
}
