package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VisitStatus string

const (
	VisitStatusScheduled  VisitStatus = "scheduled"
	VisitStatusClockedIn  VisitStatus = "clocked_in"
	VisitStatusClockedOut VisitStatus = "clocked_out"
	VisitStatusCompleted  VisitStatus = "completed"
	VisitStatusCancelled  VisitStatus = "cancelled"
	VisitStatusMissed     VisitStatus = "missed"
)

var visitTransitions = map[VisitStatus][]VisitStatus{
	VisitStatusScheduled:  {VisitStatusClockedIn, VisitStatusCancelled, VisitStatusMissed},
	VisitStatusClockedIn:  {VisitStatusClockedOut},
	VisitStatusClockedOut: {VisitStatusCompleted},
}

// CanTransition проверяет переход по машине состояний визита.
func (s VisitStatus) CanTransition(to VisitStatus) bool {
	for _, next := range visitTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal — из состояния нет переходов.
func (s VisitStatus) Terminal() bool {
	return len(visitTransitions[s]) == 0
}

func (s VisitStatus) Valid() bool {
	switch s {
	case VisitStatusScheduled, VisitStatusClockedIn, VisitStatusClockedOut,
		VisitStatusCompleted, VisitStatusCancelled, VisitStatusMissed:
		return true
	}
	return false
}

// care_visits — бронирование: один слот доступности + один слот ухода на конкретную дату.
type CareVisit struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	PatientID  uuid.UUID `gorm:"type:uuid;not null;index:idx_care_visits_patient_date"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_care_visits_employee_date"`

	VisitDate Date `gorm:"type:date;not null;index:idx_care_visits_patient_date;index:idx_care_visits_employee_date"`

	ScheduledStartTime TimeOfDay `gorm:"type:varchar(5);not null"`
	ScheduledEndTime   TimeOfDay `gorm:"type:varchar(5);not null"`

	// Логические ключи занятых слотов.
	AvailabilitySlotKey string `gorm:"type:varchar(128);not null;index"`
	PatientCareSlotKey  string `gorm:"type:varchar(128);not null;index"`

	Status VisitStatus `gorm:"type:varchar(32);not null;index"`
	Active bool        `gorm:"not null;index"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Patient  *Patient  `gorm:"foreignKey:PatientID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Employee *Employee `gorm:"foreignKey:EmployeeID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (v *CareVisit) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
