package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// slot_series — одно развёртывание шаблона повторения.
// ID совпадает с series_id, которым помечены все экземпляры.
type SlotSeries struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	OwnerKind OwnerKind `gorm:"type:varchar(16);not null;index:idx_slot_series_owner"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;index:idx_slot_series_owner"`

	StartDate Date `gorm:"type:date;not null"`

	// Исходный шаблон (duration_weeks, selected_days, shifts) в JSON.
	Pattern datatypes.JSON

	InstanceCount int `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
}

func (s *SlotSeries) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
