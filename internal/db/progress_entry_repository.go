package db

import (
	"context"

	"github.com/halcyon-labs/dermatrack/internal/models"
	"gorm.io/gorm"
)

type ProgressEntryRepository struct {
	database *gorm.DB
}

func NewProgressEntryRepository(database *gorm.DB) *ProgressEntryRepository {
	return &ProgressEntryRepository{database: database}
}

func (repo *ProgressEntryRepository) ListByConditionAndUser(ctx context.Context, conditionID uint, userID uint) ([]models.ProgressEntry, error) {
	entries := make([]models.ProgressEntry, 0)
	if err := repo.database.WithContext(ctx).
		Where("condition_id = ? AND user_id = ?", conditionID, userID).
		Order("recorded_at DESC, id DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (repo *ProgressEntryRepository) FindLatestByCondition(ctx context.Context, conditionID uint) (models.ProgressEntry, bool, error) {
	var entry models.ProgressEntry
	result := repo.database.WithContext(ctx).
		Where("condition_id = ?", conditionID).
		Order("recorded_at DESC, id DESC").
		Limit(1).
		Find(&entry)
	if result.Error != nil {
		return models.ProgressEntry{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.ProgressEntry{}, false, nil
	}
	return entry, true, nil
}
