package records

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"intervai/server/internal/models"
)

// Store accepts completed interview records. Implementations never mutate
// a record after it is appended.
type Store interface {
	Append(ctx context.Context, record *models.InterviewRecord) error
}

// Repository keeps interview records in a relational database.
type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

func (r *Repository) Migrate() error {
	return r.DB.AutoMigrate(&models.InterviewRecord{})
}

// Append inserts the record. A second record for the same user and
// completion time is ignored.
func (r *Repository) Append(ctx context.Context, record *models.InterviewRecord) error {
	if record.CompletedAt.IsZero() {
		record.CompletedAt = time.Now()
	}
	record.CompletedAt = record.CompletedAt.UTC().Truncate(time.Microsecond)

	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "completed_at"}},
			DoNothing: true,
		}).
		Create(record).Error
}

// ListByUser returns the user's records, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string, limit int) ([]models.InterviewRecord, error) {
	records := []models.InterviewRecord{}
	query := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("completed_at DESC").
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&records).Error
	return records, err
}

// Unexported returns records the exporter has not written yet, oldest first.
func (r *Repository) Unexported(ctx context.Context, limit int) ([]models.InterviewRecord, error) {
	records := []models.InterviewRecord{}
	query := r.DB.WithContext(ctx).
		Where("exported = ?", false).
		Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&records).Error
	return records, err
}

func (r *Repository) MarkExported(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	now := time.Now()
	return r.DB.WithContext(ctx).
		Model(&models.InterviewRecord{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"exported":    true,
			"exported_at": now,
		}).Error
}

// Ping checks the database connection for readiness probes.
func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
