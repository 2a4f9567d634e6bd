package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OwnerKind — сторона, которой принадлежит слот.
type OwnerKind string

const (
	OwnerKindEmployee OwnerKind = "employee"
	OwnerKindPatient  OwnerKind = "patient"
)

// SlotWindow — общие поля слота доступности и слота ухода.
// Встраивается в обе модели, GORM разворачивает поля в колонки таблицы.
type SlotWindow struct {
	// Устаревшее поле "один день", 0=понедельник..6=воскресенье.
	DayOfWeek int `gorm:"not null;index"`

	// Диапазон дней: (6, 0) — единственный допустимый переход через конец недели.
	StartDayOfWeek int `gorm:"not null"`
	EndDayOfWeek   int `gorm:"not null"`

	StartTime TimeOfDay `gorm:"type:varchar(5);not null"`
	EndTime   TimeOfDay `gorm:"type:varchar(5);not null"`

	// Неделя (с понедельника), к которой относится экземпляр.
	WeekStartDate *Date `gorm:"type:date;index"`
	WeekEndDate   *Date `gorm:"type:date"`

	// Окно действия экземпляра, привязанного к датам.
	StartDate *Date `gorm:"type:date;index"`
	EndDate   *Date `gorm:"type:date"`

	// Все экземпляры одного развёртывания шаблона; nil для одиночного слота.
	SeriesID *uuid.UUID `gorm:"type:uuid;index"`

	// Производный ключ owner+day+start+end, никогда не приходит из запроса.
	LogicalKey string `gorm:"type:varchar(128);not null;index"`

	Active bool `gorm:"not null;index"`
}

func (w *SlotWindow) Window() *SlotWindow { return w }

// Overnight — окно переходит через полночь.
func (w *SlotWindow) Overnight() bool { return w.EndTime <= w.StartTime }

// EffectiveEnd — конец окна в пределах дня начала: для ночного слота это "24:00".
func (w *SlotWindow) EffectiveEnd() TimeOfDay {
	if w.Overnight() {
		return EndOfDay
	}
	return w.EndTime
}

// CoversDate проверяет, что дата попадает в окно действия слота (границы открыты при nil).
func (w *SlotWindow) CoversDate(d Date) bool {
	if w.StartDate != nil && d.Before(*w.StartDate) {
		return false
	}
	if w.EndDate != nil && d.After(*w.EndDate) {
		return false
	}
	return true
}

// Slot — общий интерфейс двух видов слотов.
type Slot interface {
	SlotID() uuid.UUID
	OwnerID() uuid.UUID
	Kind() OwnerKind
	Window() *SlotWindow
}

// LogicalKey строит устойчивую идентичность слота для проверки конфликтов бронирования.
func LogicalKey(ownerID uuid.UUID, dayOfWeek int, start, end TimeOfDay) string {
	return fmt.Sprintf("%s_%d_%s_%s", ownerID, dayOfWeek, start, end)
}

// availability_slots
type AvailabilitySlot struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index"`

	SlotWindow

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Employee *Employee `gorm:"foreignKey:EmployeeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func NewAvailabilitySlot(employeeID uuid.UUID, w SlotWindow) *AvailabilitySlot {
	w.LogicalKey = LogicalKey(employeeID, w.DayOfWeek, w.StartTime, w.EndTime)
	return &AvailabilitySlot{EmployeeID: employeeID, SlotWindow: w}
}

func (s *AvailabilitySlot) SlotID() uuid.UUID  { return s.ID }
func (s *AvailabilitySlot) OwnerID() uuid.UUID { return s.EmployeeID }
func (s *AvailabilitySlot) Kind() OwnerKind    { return OwnerKindEmployee }

func (s *AvailabilitySlot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (s *AvailabilitySlot) BeforeSave(tx *gorm.DB) error {
	s.LogicalKey = LogicalKey(s.EmployeeID, s.DayOfWeek, s.StartTime, s.EndTime)
	return nil
}

// patient_care_slots
type PatientCareSlot struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	PatientID uuid.UUID `gorm:"type:uuid;not null;index"`

	SlotWindow

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Patient *Patient `gorm:"foreignKey:PatientID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func NewPatientCareSlot(patientID uuid.UUID, w SlotWindow) *PatientCareSlot {
	w.LogicalKey = LogicalKey(patientID, w.DayOfWeek, w.StartTime, w.EndTime)
	return &PatientCareSlot{PatientID: patientID, SlotWindow: w}
}

func (s *PatientCareSlot) SlotID() uuid.UUID  { return s.ID }
func (s *PatientCareSlot) OwnerID() uuid.UUID { return s.PatientID }
func (s *PatientCareSlot) Kind() OwnerKind    { return OwnerKindPatient }

func (s *PatientCareSlot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (s *PatientCareSlot) BeforeSave(tx *gorm.DB) error {
	s.LogicalKey = LogicalKey(s.PatientID, s.DayOfWeek, s.StartTime, s.EndTime)
	return nil
}
