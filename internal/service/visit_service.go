package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/bilalhaider11/ale-backend-sub000/internal/calendar"
	"github.com/bilalhaider11/ale-backend-sub000/internal/lock"
	"github.com/bilalhaider11/ale-backend-sub000/internal/metrics"
	"github.com/bilalhaider11/ale-backend-sub000/internal/model"
	"github.com/bilalhaider11/ale-backend-sub000/internal/repository"
)

// BookVisitInput — пара слотов на дату. Без явного времени визит занимает окно слота ухода.
type BookVisitInput struct {
	AvailabilitySlotID uuid.UUID
	PatientCareSlotID  uuid.UUID
	VisitDate          string
	StartTime          *string
	EndTime            *string
}

// VisitService бронирует визиты и ведёт их по машине состояний.
type VisitService struct {
	db     *gorm.DB
	locker lock.Locker
	log    zerolog.Logger
}

func NewVisitService(db *gorm.DB, locker lock.Locker, log zerolog.Logger) *VisitService {
	return &VisitService{
		db:     db,
		locker: locker,
		log:    log.With().Str("component", "visit_service").Logger(),
	}
}

// Book берёт блокировки сотрудника и пациента на дату и в одной транзакции
// перепроверяет занятость и пишет визит в статусе scheduled.
func (s *VisitService) Book(ctx context.Context, in BookVisitInput) (*model.CareVisit, error) {
	date, err := calendar.ParseDate(in.VisitDate, true)
	if err != nil {
		return nil, err
	}
	if date == nil {
		return nil, calendar.Invalid("visit_date", "is required")
	}

	avail, err := repository.NewGormAvailabilitySlotRepository(s.db).GetByID(ctx, in.AvailabilitySlotID)
	if err != nil {
		return nil, lookupErr(err, "employee_slot", in.AvailabilitySlotID.String())
	}
	care, err := repository.NewGormPatientCareSlotRepository(s.db).GetByID(ctx, in.PatientCareSlotID)
	if err != nil {
		return nil, lookupErr(err, "patient_slot", in.PatientCareSlotID.String())
	}

	start, end := care.StartTime, care.EndTime
	if in.StartTime != nil {
		if start, err = calendar.ParseTime(*in.StartTime); err != nil {
			return nil, err
		}
	}
	if in.EndTime != nil {
		if end, err = calendar.ParseTime(*in.EndTime); err != nil {
			return nil, err
		}
	}
	if !calendar.IsValidTimeRange(start, end) {
		return nil, calendar.Invalid("time_range", "has no duration")
	}

	visitWindow := calendar.NewTimeRange(start, end)
	for _, w := range []*model.SlotWindow{&avail.SlotWindow, &care.SlotWindow} {
		if w.DayOfWeek != date.Weekday() || !w.CoversDate(*date) {
			return nil, calendar.Invalid("visit_date", fmt.Sprintf("%s is outside the slot window", date))
		}
		// Визит целиком внутри обоих слотов.
		if score, _ := calendar.Classify(calendar.NewTimeRange(w.StartTime, w.EndTime), visitWindow); score.MatchType != calendar.MatchFull {
			return nil, calendar.Invalid("time_range", fmt.Sprintf("%s-%s is not inside the slot %s-%s", start, end, w.StartTime, w.EndTime))
		}
	}

	release, err := s.locker.Acquire(ctx,
		lock.Key(string(model.OwnerKindEmployee), avail.EmployeeID.String(), date.String()),
		lock.Key(string(model.OwnerKindPatient), care.PatientID.String(), date.String()),
	)
	if errors.Is(err, lock.ErrNotAcquired) {
		metrics.IncVisitBooked("busy")
		return nil, fmt.Errorf("%w: %v", ErrSlotBusy, err)
	}
	if err != nil {
		return nil, fmt.Errorf("acquire booking lock: %w", err)
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.log.Warn().Err(err).Msg("release booking lock")
		}
	}()

	visit := &model.CareVisit{
		PatientID:           care.PatientID,
		EmployeeID:          avail.EmployeeID,
		VisitDate:           *date,
		ScheduledStartTime:  start,
		ScheduledEndTime:    end,
		AvailabilitySlotKey: avail.LogicalKey,
		PatientCareSlotKey:  care.LogicalKey,
		Status:              model.VisitStatusScheduled,
		Active:              true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.checkAndInsert(ctx, tx, avail.ID, care.ID, visit)
	})
	if err != nil {
		if errors.Is(err, ErrSlotBusy) {
			metrics.IncVisitBooked("busy")
		} else {
			metrics.IncVisitBooked("error")
		}
		return nil, err
	}

	metrics.IncVisitBooked("scheduled")
	s.log.Info().
		Str("visit_id", visit.ID.String()).
		Str("employee_id", visit.EmployeeID.String()).
		Str("patient_id", visit.PatientID.String()).
		Str("visit_date", date.String()).
		Msg("visit booked")
	return visit, nil
}

// Внутри транзакции все чтения идут через tx.
func (s *VisitService) checkAndInsert(ctx context.Context, tx *gorm.DB, availID, careID uuid.UUID, v *model.CareVisit) error {
	avail, err := repository.NewGormAvailabilitySlotRepository(tx).GetByID(ctx, availID)
	if err != nil {
		return lookupErr(err, "employee_slot", availID.String())
	}
	care, err := repository.NewGormPatientCareSlotRepository(tx).GetByID(ctx, careID)
	if err != nil {
		return lookupErr(err, "patient_slot", careID.String())
	}
	if !avail.Active || !care.Active {
		return calendar.Invalid("slot", "is inactive")
	}

	employee, err := repository.NewGormEmployeeRepository(tx).GetByID(ctx, avail.EmployeeID)
	if err != nil {
		return lookupErr(err, "employee", avail.EmployeeID.String())
	}
	patient, err := repository.NewGormPatientRepository(tx).GetByID(ctx, care.PatientID)
	if err != nil {
		return lookupErr(err, "patient", care.PatientID.String())
	}
	if !employee.Active || !patient.Active {
		return calendar.Invalid("owner", "is inactive")
	}
	if !patient.InCarePeriod(v.VisitDate) {
		return calendar.Invalid("visit_date", "is outside the patient's care period")
	}

	matches := repository.NewGormMatchRepository(tx)
	checks := []func() (bool, error){
		func() (bool, error) {
			return matches.SlotKeyConsumed(ctx, model.OwnerKindEmployee, avail.LogicalKey, v.VisitDate, v.ScheduledStartTime, v.ScheduledEndTime)
		},
		func() (bool, error) {
			return matches.SlotKeyConsumed(ctx, model.OwnerKindPatient, care.LogicalKey, v.VisitDate, v.ScheduledStartTime, v.ScheduledEndTime)
		},
		func() (bool, error) {
			return matches.OwnerBusy(ctx, model.OwnerKindEmployee, avail.EmployeeID, v.VisitDate, v.ScheduledStartTime, v.ScheduledEndTime)
		},
		func() (bool, error) {
			return matches.OwnerBusy(ctx, model.OwnerKindPatient, care.PatientID, v.VisitDate, v.ScheduledStartTime, v.ScheduledEndTime)
		},
	}
	for _, check := range checks {
		busy, err := check()
		if err != nil {
			return fmt.Errorf("check visit conflicts: %w", err)
		}
		if busy {
			return ErrSlotBusy
		}
	}

	if err := repository.NewGormVisitRepository(tx).Create(ctx, v); err != nil {
		return fmt.Errorf("create visit: %w", err)
	}
	return nil
}

// Transition переводит визит в новый статус; из терминальных статусов переходов нет.
func (s *VisitService) Transition(ctx context.Context, visitID uuid.UUID, to model.VisitStatus) (*model.CareVisit, error) {
	if !to.Valid() {
		return nil, calendar.Invalid("status", fmt.Sprintf("unknown status %q", to))
	}

	visits := repository.NewGormVisitRepository(s.db)
	v, err := visits.GetByID(ctx, visitID)
	if err != nil {
		return nil, lookupErr(err, "visit", visitID.String())
	}
	if !v.Status.CanTransition(to) {
		return nil, calendar.Invalid("status", fmt.Sprintf("cannot move visit from %s to %s", v.Status, to))
	}

	if err := visits.UpdateStatus(ctx, visitID, to); err != nil {
		return nil, lookupErr(err, "visit", visitID.String())
	}
	v.Status = to

	metrics.IncVisitTransition(string(to))
	s.log.Info().Str("visit_id", visitID.String()).Str("status", string(to)).Msg("visit transitioned")
	return v, nil
}

// ListForDate — визиты владельца на дату.
func (s *VisitService) ListForDate(ctx context.Context, kind model.OwnerKind, ownerID uuid.UUID, date string) ([]model.CareVisit, error) {
	d, err := calendar.ParseDate(date, true)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, calendar.Invalid("date", "is required")
	}
	visits, err := repository.NewGormVisitRepository(s.db).ListByOwnerDate(ctx, kind, ownerID, *d)
	if err != nil {
		return nil, fmt.Errorf("list visits: %w", err)
	}
	return visits, nil
}
