package db

import (
	"context"
	"time"

	"github.com/halcyon-labs/dermatrack/internal/models"
	"gorm.io/gorm"
)

type ConditionRepository struct {
	database *gorm.DB
}

func NewConditionRepository(database *gorm.DB) *ConditionRepository {
	return &ConditionRepository{database: database}
}

func (repo *ConditionRepository) Create(ctx context.Context, condition *models.MonitoredCondition) error {
	return repo.database.WithContext(ctx).Create(condition).Error
}

func (repo *ConditionRepository) FindByID(ctx context.Context, conditionID uint) (models.MonitoredCondition, bool, error) {
	var condition models.MonitoredCondition
	result := repo.database.WithContext(ctx).Limit(1).Find(&condition, conditionID)
	if result.Error != nil {
		return models.MonitoredCondition{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.MonitoredCondition{}, false, nil
	}
	return condition, true, nil
}

func (repo *ConditionRepository) ExistsByID(ctx context.Context, conditionID uint) (bool, error) {
	var matched int64
	if err := repo.database.WithContext(ctx).Model(&models.MonitoredCondition{}).
		Where("id = ?", conditionID).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *ConditionRepository) ListActiveByUser(ctx context.Context, userID uint) ([]models.MonitoredCondition, error) {
	conditions := make([]models.MonitoredCondition, 0)
	if err := repo.database.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.StatusActive).
		Order("start_date DESC, id DESC").
		Find(&conditions).Error; err != nil {
		return nil, err
	}
	return conditions, nil
}

func (repo *ConditionRepository) UpdateByID(ctx context.Context, conditionID uint, updates map[string]any) error {
	return repo.database.WithContext(ctx).Model(&models.MonitoredCondition{}).
		Where("id = ?", conditionID).
		Updates(updates).Error
}

// RecordCheckIn inserts the entry and refreshes the parent condition's
// last-check-in summary in one transaction. The two writes belong to a
// single retry unit; a transient failure re-runs both.
func (repo *ConditionRepository) RecordCheckIn(ctx context.Context, entry *models.ProgressEntry, nextCheckInDue time.Time) error {
	return repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		return tx.Model(&models.MonitoredCondition{}).
			Where("id = ?", entry.ConditionID).
			Updates(map[string]any{
				"last_check_in_at":          entry.RecordedAt,
				"last_check_in_confidence":  entry.Confidence,
				"last_check_in_improvement": entry.Improvement,
				"next_check_in_due":         nextCheckInDue,
			}).Error
	})
}

// DeleteWithEntries removes the condition and every progress entry
// attached to it.
func (repo *ConditionRepository) DeleteWithEntries(ctx context.Context, conditionID uint) error {
	return repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("condition_id = ?", conditionID).Delete(&models.ProgressEntry{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.MonitoredCondition{}, conditionID).Error
	})
}
