package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/niagahub/niaga-rate-service/internal/domain"
	"github.com/niagahub/niaga-rate-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultRateHistoryRepository struct {
	DB *gorm.DB
}

func NewDefaultRateHistoryRepository(db *gorm.DB) *DefaultRateHistoryRepository {
	return &DefaultRateHistoryRepository{DB: db}
}

func (r *DefaultRateHistoryRepository) Append(ctx context.Context, observation *domain.RateObservation) error {
	var metadata string
	if len(observation.Metadata) > 0 {
		raw, err := json.Marshal(observation.Metadata)
		if err != nil {
			return err
		}
		metadata = string(raw)
	}

	model := models.RateObservationModel{
		ID:         observation.ID,
		TenantID:   observation.TenantID,
		Rate:       observation.Rate,
		ProviderID: observation.ProviderID,
		Source:     string(observation.Source),
		EventType:  string(observation.EventType),
		Metadata:   metadata,
		ObservedAt: observation.ObservedAt,
	}
	return r.DB.WithContext(ctx).Create(&model).Error
}

func (r *DefaultRateHistoryRepository) GetLatest(ctx context.Context, tenantID string) (*domain.RateObservation, error) {
	var model models.RateObservationModel
	err := r.DB.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("observed_at DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var metadata map[string]string
	if model.Metadata != "" {
		if err := json.Unmarshal([]byte(model.Metadata), &metadata); err != nil {
			metadata = nil
		}
	}

	return &domain.RateObservation{
		ID:         model.ID,
		TenantID:   model.TenantID,
		Rate:       model.Rate,
		ProviderID: model.ProviderID,
		Source:     domain.RateSource(model.Source),
		EventType:  domain.RateEventType(model.EventType),
		Metadata:   metadata,
		ObservedAt: model.ObservedAt,
	}, nil
}
