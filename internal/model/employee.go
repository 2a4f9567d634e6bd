package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Employee — сотрудник (сиделка), владелец слотов доступности.
// Запись справочная: создаётся внешним сервисом, ядро только читает её и синхронизирует.
type Employee struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index"`

	DisplayName string `gorm:"type:varchar(255);not null"`

	Active bool `gorm:"not null;index"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (e *Employee) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
