package repository

import (
	"context"
	"errors"
	"time"

	"github.com/niagahub/niaga-rate-service/internal/domain"
	"github.com/niagahub/niaga-rate-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultQuotaRepository struct {
	DB *gorm.DB
}

func NewDefaultQuotaRepository(db *gorm.DB) *DefaultQuotaRepository {
	return &DefaultQuotaRepository{DB: db}
}

func (r *DefaultQuotaRepository) GetForProvider(ctx context.Context, providerID string, year int, month time.Month) (*domain.QuotaTracker, error) {
	var model models.QuotaModel
	err := r.DB.WithContext(ctx).
		Where("provider_id = ? AND year = ? AND month = ?", providerID, year, int(month)).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	tracker, err := domain.NewQuotaTracker(model.ProviderID, model.RequestsMade, model.QuotaLimit, model.Year, time.Month(model.Month), model.LastResetAt)
	if err != nil {
		return nil, err
	}
	return &tracker, nil
}

func (r *DefaultQuotaRepository) Save(ctx context.Context, tracker domain.QuotaTracker) error {
	model := models.QuotaModel{
		ProviderID:   tracker.ProviderID,
		Year:         tracker.Year,
		Month:        int(tracker.Month),
		RequestsMade: tracker.RequestsMade,
		QuotaLimit:   tracker.QuotaLimit,
		LastResetAt:  tracker.LastResetAt,
	}

	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "provider_id"}, {Name: "year"}, {Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"requests_made", "quota_limit", "last_reset_at", "updated_at",
		}),
	}).Create(&model).Error
}

// IncrementUsage reserves the increment in one conditional UPDATE so
// concurrent acquisitions can neither lose counts nor jointly push the
// tracker past its limit. A zero row count means the remaining budget was
// claimed by a concurrent acquisition.
func (r *DefaultQuotaRepository) IncrementUsage(ctx context.Context, providerID string, year int, month time.Month, count int) (bool, error) {
	if count < 0 {
		return false, domain.ErrInvalidArgument
	}

	res := r.DB.WithContext(ctx).Model(&models.QuotaModel{}).
		Where("provider_id = ? AND year = ? AND month = ? AND requests_made + ? <= quota_limit",
			providerID, year, int(month), count).
		Updates(map[string]interface{}{
			"requests_made": gorm.Expr("requests_made + ?", count),
			"updated_at":    time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
