package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bilalhaider11/ale-backend-sub000/internal/model"
)

type VisitRepository interface {
	// Создать новый визит.
	Create(ctx context.Context, v *model.CareVisit) error
	// Получить визит по ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.CareVisit, error)
	// Обновить статус визита; отменённый визит перестаёт занимать слоты.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.VisitStatus) error
	// Визиты владельца на дату, по времени начала.
	ListByOwnerDate(ctx context.Context, kind model.OwnerKind, ownerID uuid.UUID, date model.Date) ([]model.CareVisit, error)
}

// Реализация на GORM.
type GormVisitRepository struct {
	db *gorm.DB
}

func NewGormVisitRepository(db *gorm.DB) *GormVisitRepository {
	return &GormVisitRepository{db: db}
}

func (r *GormVisitRepository) Create(ctx context.Context, v *model.CareVisit) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *GormVisitRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.CareVisit, error) {
	var v model.CareVisit
	if err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *GormVisitRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.VisitStatus) error {
	res := r.db.WithContext(ctx).
		Model(&model.CareVisit{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormVisitRepository) ListByOwnerDate(
	ctx context.Context,
	kind model.OwnerKind,
	ownerID uuid.UUID,
	date model.Date,
) ([]model.CareVisit, error) {
	column := "employee_id"
	if kind == model.OwnerKindPatient {
		column = "patient_id"
	}

	var visits []model.CareVisit
	err := r.db.WithContext(ctx).
		Where(column+" = ?", ownerID).
		Where("visit_date = ?", date).
		Order("scheduled_start_time ASC").
		Find(&visits).Error
	if err != nil {
		return nil, err
	}
	return visits, nil
}
