package repository

import (
	"context"

	"github.com/niagahub/niaga-rate-service/internal/domain"
	"github.com/niagahub/niaga-rate-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultProviderSwitchRepository struct {
	DB *gorm.DB
}

func NewDefaultProviderSwitchRepository(db *gorm.DB) *DefaultProviderSwitchRepository {
	return &DefaultProviderSwitchRepository{DB: db}
}

func (r *DefaultProviderSwitchRepository) Append(ctx context.Context, event *domain.ProviderSwitchEvent) error {
	model := models.SwitchEventModel{
		ID:              event.ID,
		TenantID:        event.TenantID,
		OldProviderID:   event.OldProviderID,
		NewProviderID:   event.NewProviderID,
		OldProviderName: event.OldProviderName,
		NewProviderName: event.NewProviderName,
		Reason:          string(event.Reason),
		OccurredAt:      event.OccurredAt,
	}
	return r.DB.WithContext(ctx).Create(&model).Error
}

func (r *DefaultProviderSwitchRepository) GetForTenant(ctx context.Context, tenantID string, limit int) ([]*domain.ProviderSwitchEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	var eventModels []models.SwitchEventModel
	err := r.DB.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&eventModels).Error
	if err != nil {
		return nil, err
	}

	events := make([]*domain.ProviderSwitchEvent, len(eventModels))
	for i, model := range eventModels {
		events[i] = &domain.ProviderSwitchEvent{
			ID:              model.ID,
			TenantID:        model.TenantID,
			OldProviderID:   model.OldProviderID,
			NewProviderID:   model.NewProviderID,
			OldProviderName: model.OldProviderName,
			NewProviderName: model.NewProviderName,
			Reason:          domain.SwitchReason(model.Reason),
			OccurredAt:      model.OccurredAt,
		}
	}
	return events, nil
}
