package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bilalhaider11/ale-backend-sub000/internal/model"
)

type SeriesRepository interface {
	Create(ctx context.Context, s *model.SlotSeries) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.SlotSeries, error)
	// ListByOwner возвращает серии владельца, новые первыми.
	ListByOwner(ctx context.Context, kind model.OwnerKind, ownerID uuid.UUID) ([]model.SlotSeries, error)
}

type GormSeriesRepository struct {
	db *gorm.DB
}

func NewGormSeriesRepository(db *gorm.DB) *GormSeriesRepository {
	return &GormSeriesRepository{db: db}
}

func (r *GormSeriesRepository) Create(ctx context.Context, s *model.SlotSeries) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *GormSeriesRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.SlotSeries, error) {
	var s model.SlotSeries
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormSeriesRepository) ListByOwner(ctx context.Context, kind model.OwnerKind, ownerID uuid.UUID) ([]model.SlotSeries, error) {
	var series []model.SlotSeries
	err := r.db.WithContext(ctx).
		Where("owner_kind = ? AND owner_id = ?", kind, ownerID).
		Order("created_at DESC").
		Find(&series).Error
	if err != nil {
		return nil, err
	}
	return series, nil
}
