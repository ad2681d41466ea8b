package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mocapboston/onboarding/internal/models"
)

// DatabaseStore keeps sessions in a postgres table through gorm
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore wraps an open gorm connection
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// Migrate creates or updates the sessions table
func (d *DatabaseStore) Migrate() error {
	if err := d.db.AutoMigrate(&models.Session{}); err != nil {
		return fmt.Errorf("failed to migrate sessions table: %w", err)
	}
	return nil
}

func (d *DatabaseStore) GetSession(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	err := d.db.WithContext(ctx).Where("id = ?", id).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session %s: %w", id, err)
	}
	return &session, nil
}

func (d *DatabaseStore) MergeSession(ctx context.Context, id string, patch models.SessionPatch) error {
	columns := patch.Columns()
	columns["updated_at"] = time.Now()

	result := d.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("id = ?", id).
		Updates(columns)
	if result.Error != nil {
		return fmt.Errorf("failed to update session %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (d *DatabaseStore) ListGallery(ctx context.Context, limit int) ([]*models.Session, error) {
	query := d.db.WithContext(ctx).
		Where("gallery_visible = ? AND processed = ?", true, true).
		Order("updated_at DESC").
		Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var sessions []*models.Session
	if err := query.Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("failed to list gallery: %w", err)
	}
	return sessions, nil
}

func (d *DatabaseStore) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *DatabaseStore) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
