package service

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bilalhaider11/ale-backend-sub000/internal/calendar"
	"github.com/bilalhaider11/ale-backend-sub000/internal/model"
	"github.com/bilalhaider11/ale-backend-sub000/internal/repository"
)

type EmployeeInput struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	DisplayName    string
	Active         bool
}

type PatientInput struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	DisplayName    string
	Active         bool
}

// DirectoryService синхронизирует справочные записи сотрудников и пациентов
// и хранит настройки пациента, от которых зависит расписание.
type DirectoryService struct {
	employees repository.EmployeeRepository
	patients  repository.PatientRepository
	log       zerolog.Logger
}

func NewDirectoryService(
	employees repository.EmployeeRepository,
	patients repository.PatientRepository,
	log zerolog.Logger,
) *DirectoryService {
	return &DirectoryService{
		employees: employees,
		patients:  patients,
		log:       log.With().Str("component", "directory_service").Logger(),
	}
}

func (s *DirectoryService) UpsertEmployee(ctx context.Context, in EmployeeInput) (*model.Employee, error) {
	if in.OrganizationID == uuid.Nil {
		return nil, calendar.Invalid("organization_id", "is required")
	}
	e := &model.Employee{
		ID:             in.ID,
		OrganizationID: in.OrganizationID,
		DisplayName:    in.DisplayName,
		Active:         in.Active,
	}
	if err := s.employees.Upsert(ctx, e); err != nil {
		return nil, fmt.Errorf("upsert employee: %w", err)
	}
	s.log.Debug().Str("employee_id", e.ID.String()).Bool("active", e.Active).Msg("employee synced")
	return e, nil
}

func (s *DirectoryService) UpsertPatient(ctx context.Context, in PatientInput) (*model.Patient, error) {
	if in.OrganizationID == uuid.Nil {
		return nil, calendar.Invalid("organization_id", "is required")
	}
	p := &model.Patient{
		ID:             in.ID,
		OrganizationID: in.OrganizationID,
		DisplayName:    in.DisplayName,
		Active:         in.Active,
	}
	if err := s.patients.Upsert(ctx, p); err != nil {
		return nil, fmt.Errorf("upsert patient: %w", err)
	}
	s.log.Debug().Str("patient_id", p.ID.String()).Bool("active", p.Active).Msg("patient synced")
	return s.GetPatient(ctx, p.ID)
}

func (s *DirectoryService) GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "patient", id.String())
	}
	return p, nil
}

// SetWeeklyQuota задаёт потолок часов в неделю; nil снимает квоту.
func (s *DirectoryService) SetWeeklyQuota(ctx context.Context, patientID uuid.UUID, quota *float64) (*model.Patient, error) {
	if quota != nil && (*quota <= 0 || *quota > 7*24 || math.IsNaN(*quota)) {
		return nil, calendar.Invalid("weekly_quota", fmt.Sprintf("must be within (0, 168] hours, got %v", *quota))
	}
	if err := s.patients.UpdateWeeklyQuota(ctx, patientID, quota); err != nil {
		return nil, lookupErr(err, "patient", patientID.String())
	}
	s.log.Info().Str("patient_id", patientID.String()).Interface("weekly_quota", quota).Msg("weekly quota set")
	return s.GetPatient(ctx, patientID)
}

// SetCarePeriod задаёт период ухода; пустой конец оставляет период открытым.
func (s *DirectoryService) SetCarePeriod(ctx context.Context, patientID uuid.UUID, start, end *string) (*model.Patient, error) {
	from, err := calendar.ParseDate(start, true)
	if err != nil {
		return nil, err
	}
	to, err := calendar.ParseDate(end, true)
	if err != nil {
		return nil, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, calendar.Invalid("care_period_end", "is before care_period_start")
	}

	if err := s.patients.UpdateCarePeriod(ctx, patientID, from, to); err != nil {
		return nil, lookupErr(err, "patient", patientID.String())
	}
	return s.GetPatient(ctx, patientID)
}
