package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bilalhaider11/ale-backend-sub000/internal/model"
)

type PatientRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	// Создать или обновить справочные поля пациента; квота и период ухода не трогаются.
	Upsert(ctx context.Context, p *model.Patient) error
	// nil снимает квоту.
	UpdateWeeklyQuota(ctx context.Context, id uuid.UUID, quota *float64) error
	UpdateCarePeriod(ctx context.Context, id uuid.UUID, start, end *model.Date) error
}

type GormPatientRepository struct {
	db *gorm.DB
}

func NewGormPatientRepository(db *gorm.DB) *GormPatientRepository {
	return &GormPatientRepository{db: db}
}

func (r *GormPatientRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	var p model.Patient
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormPatientRepository) Upsert(ctx context.Context, p *model.Patient) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"organization_id", "display_name", "active", "updated_at"}),
		}).
		Create(p).Error
}

func (r *GormPatientRepository) UpdateWeeklyQuota(ctx context.Context, id uuid.UUID, quota *float64) error {
	return r.updateFields(ctx, id, map[string]any{"weekly_quota": quota})
}

func (r *GormPatientRepository) UpdateCarePeriod(ctx context.Context, id uuid.UUID, start, end *model.Date) error {
	return r.updateFields(ctx, id, map[string]any{
		"care_period_start": start,
		"care_period_end":   end,
	})
}

func (r *GormPatientRepository) updateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&model.Patient{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
