package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bilalhaider11/ale-backend-sub000/internal/model"
)

// SlotRecord — модели, которые хранит обобщённый репозиторий слотов.
type SlotRecord interface {
	model.AvailabilitySlot | model.PatientCareSlot
}

type SlotRepository[T SlotRecord] interface {
	// Создать слот.
	Create(ctx context.Context, slot *T) error
	// Найти слот по ID (включая деактивированные).
	GetByID(ctx context.Context, id uuid.UUID) (*T, error)
	// Сохранить все поля слота, logical_key пересчитывается хуком.
	Update(ctx context.Context, slot *T) error
	// Мягкое удаление.
	Deactivate(ctx context.Context, id uuid.UUID) error
	// Мягкое удаление всех экземпляров серии начиная с даты.
	DeactivateSeriesFrom(ctx context.Context, seriesID uuid.UUID, from model.Date) (int64, error)
	// Активные слоты владельца за неделю с понедельника weekStart.
	ListByOwnerWeek(ctx context.Context, ownerID uuid.UUID, weekStart model.Date) ([]T, error)
	// Активные слоты серии.
	ListBySeries(ctx context.Context, seriesID uuid.UUID) ([]T, error)
}

// Реализация на GORM: обе модели различаются только колонкой владельца.
type GormSlotRepository[T SlotRecord] struct {
	db          *gorm.DB
	ownerColumn string
}

func NewGormAvailabilitySlotRepository(db *gorm.DB) *GormSlotRepository[model.AvailabilitySlot] {
	return &GormSlotRepository[model.AvailabilitySlot]{db: db, ownerColumn: "employee_id"}
}

func NewGormPatientCareSlotRepository(db *gorm.DB) *GormSlotRepository[model.PatientCareSlot] {
	return &GormSlotRepository[model.PatientCareSlot]{db: db, ownerColumn: "patient_id"}
}

func (r *GormSlotRepository[T]) Create(ctx context.Context, slot *T) error {
	return r.db.WithContext(ctx).Create(slot).Error
}

func (r *GormSlotRepository[T]) GetByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var slot T
	if err := r.db.WithContext(ctx).First(&slot, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *GormSlotRepository[T]) Update(ctx context.Context, slot *T) error {
	return r.db.WithContext(ctx).Save(slot).Error
}

func (r *GormSlotRepository[T]) Deactivate(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(new(T)).
		Where("id = ?", id).
		Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormSlotRepository[T]) DeactivateSeriesFrom(ctx context.Context, seriesID uuid.UUID, from model.Date) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(new(T)).
		Where("series_id = ?", seriesID).
		Where("start_date >= ?", from).
		Where("active = ?", true).
		Update("active", false)
	return res.RowsAffected, res.Error
}

func (r *GormSlotRepository[T]) ListByOwnerWeek(ctx context.Context, ownerID uuid.UUID, weekStart model.Date) ([]T, error) {
	var slots []T
	err := r.db.WithContext(ctx).
		Where(r.ownerColumn+" = ?", ownerID).
		Where("week_start_date = ?", weekStart).
		Where("active = ?", true).
		Order("start_date ASC, start_time ASC").
		Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *GormSlotRepository[T]) ListBySeries(ctx context.Context, seriesID uuid.UUID) ([]T, error) {
	var slots []T
	err := r.db.WithContext(ctx).
		Where("series_id = ?", seriesID).
		Where("active = ?", true).
		Order("start_date ASC, start_time ASC").
		Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}
