package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Patient — пациент, владелец слотов ухода.
type Patient struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index"`

	DisplayName string `gorm:"type:varchar(255);not null"`

	// Потолок часов ухода в неделю; nil — квота не настроена.
	WeeklyQuota *float64

	// Период ухода; nil в конце — период открыт.
	CarePeriodStart *Date `gorm:"type:date"`
	CarePeriodEnd   *Date `gorm:"type:date"`

	Active bool `gorm:"not null;index"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (p *Patient) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// InCarePeriod — дата внутри [care_period_start, care_period_end].
func (p *Patient) InCarePeriod(d Date) bool {
	if p.CarePeriodStart != nil && d.Before(*p.CarePeriodStart) {
		return false
	}
	if p.CarePeriodEnd != nil && d.After(*p.CarePeriodEnd) {
		return false
	}
	return true
}
