package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bilalhaider11/ale-backend-sub000/internal/model"
)

type EmployeeRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Employee, error)
	// Создать или обновить справочную запись сотрудника.
	Upsert(ctx context.Context, e *model.Employee) error
}

type GormEmployeeRepository struct {
	db *gorm.DB
}

func NewGormEmployeeRepository(db *gorm.DB) *GormEmployeeRepository {
	return &GormEmployeeRepository{db: db}
}

func (r *GormEmployeeRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Employee, error) {
	var e model.Employee
	if err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *GormEmployeeRepository) Upsert(ctx context.Context, e *model.Employee) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"organization_id", "display_name", "active", "updated_at"}),
		}).
		Create(e).Error
}
