package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bilalhaider11/ale-backend-sub000/internal/calendar"
	"github.com/bilalhaider11/ale-backend-sub000/internal/metrics"
	"github.com/bilalhaider11/ale-backend-sub000/internal/model"
	"github.com/bilalhaider11/ale-backend-sub000/internal/repository"
)

// CareSlotRequest — создание слотов ухода, опционально сразу с визитами к сотруднику.
type CareSlotRequest struct {
	SlotRequest

	// Заданы вместе: каждый созданный слот на VisitDate бронируется за AssignedEmployeeID.
	AssignedEmployeeID *uuid.UUID
	VisitDate          *string
}

type CareSlotResult struct {
	Slots  []*model.PatientCareSlot
	Visits []*model.CareVisit
}

// CareSlotService управляет слотами ухода пациентов.
//
// Политика квоты: при создании квота обязана быть настроена,
// при обновлении отсутствие квоты означает отсутствие ограничения.
type CareSlotService struct {
	*SlotManager[model.PatientCareSlot, *model.PatientCareSlot]

	matches *MatchService
	visits  *VisitService
	log     zerolog.Logger
}

func NewCareSlotService(
	slots repository.SlotRepository[model.PatientCareSlot],
	series repository.SeriesRepository,
	patients repository.PatientRepository,
	matches *MatchService,
	visits *VisitService,
	log zerolog.Logger,
) *CareSlotService {
	log = log.With().Str("component", "care_slot_service").Logger()

	m := newSlotManager[model.PatientCareSlot](
		model.OwnerKindPatient,
		slots,
		series,
		patientOwners{repo: patients},
		model.NewPatientCareSlot,
		log,
	)
	m.beforeCreate = requireQuota
	m.checkWeek = checkWeeklyQuota

	return &CareSlotService{
		SlotManager: m,
		matches:     matches,
		visits:      visits,
		log:         log,
	}
}

func requireQuota(owner *calendar.Owner) error {
	if owner.WeeklyQuota == nil {
		metrics.IncQuotaRejected()
		return calendar.Invalid("weekly_quota", "is not configured for patient "+owner.ID.String())
	}
	return nil
}

// Слоты недели проверяются по очереди поверх уже запланированных часов этой недели.
func checkWeeklyQuota(
	_ context.Context,
	owner *calendar.Owner,
	_ model.Date,
	existing []model.Slot,
	batch []*model.PatientCareSlot,
	excludeID *uuid.UUID,
) error {
	baseline := existing
	if excludeID != nil {
		baseline = make([]model.Slot, 0, len(existing))
		for _, s := range existing {
			if s.SlotID() != *excludeID {
				baseline = append(baseline, s)
			}
		}
	}
	if err := calendar.ValidateWeekBatch(owner.WeeklyQuota, baseline, batch); err != nil {
		metrics.IncQuotaRejected()
		return err
	}
	return nil
}

// CreatePatientCareSlots создаёт слоты ухода пациента.
// Без настроенной квоты не создаётся ни один слот.
func (s *CareSlotService) CreatePatientCareSlots(ctx context.Context, patientID uuid.UUID, req CareSlotRequest) (*CareSlotResult, error) {
	visitDate, err := s.bookingDate(req)
	if err != nil {
		return nil, err
	}

	owner, err := calendar.ValidateOwner(ctx, s.owners, model.OwnerKindPatient, patientID)
	if err != nil {
		return nil, err
	}
	slots, err := s.Create(ctx, patientID, req.SlotRequest)
	if err != nil {
		return nil, err
	}

	res := &CareSlotResult{Slots: slots, Visits: []*model.CareVisit{}}
	if visitDate == nil {
		return res, nil
	}

	for _, slot := range slots {
		if slot.DayOfWeek != visitDate.Weekday() || !slot.CoversDate(*visitDate) {
			continue
		}
		visit, err := s.assign(ctx, owner, slot, *req.AssignedEmployeeID, *visitDate)
		if err != nil {
			return res, err
		}
		res.Visits = append(res.Visits, visit)
	}
	return res, nil
}

func (s *CareSlotService) bookingDate(req CareSlotRequest) (*model.Date, error) {
	switch {
	case req.AssignedEmployeeID == nil && req.VisitDate == nil:
		return nil, nil
	case req.AssignedEmployeeID == nil || *req.AssignedEmployeeID == uuid.Nil:
		return nil, calendar.Invalid("assigned_employee_id", "is required with visit_date")
	case req.VisitDate == nil:
		return nil, calendar.Invalid("visit_date", "is required with assigned_employee_id")
	}
	d, err := calendar.ParseDate(*req.VisitDate, true)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, calendar.Invalid("visit_date", "is required with assigned_employee_id")
	}
	return d, nil
}

// assign бронирует слот за первым полным совпадением доступности сотрудника.
func (s *CareSlotService) assign(
	ctx context.Context,
	owner *calendar.Owner,
	slot *model.PatientCareSlot,
	employeeID uuid.UUID,
	date model.Date,
) (*model.CareVisit, error) {
	if !owner.InCarePeriod(date) {
		return nil, calendar.Invalid("visit_date", date.String()+" is outside the patient's care period")
	}

	matches, err := s.matches.availabilityMatches(ctx,
		target{date: date, start: slot.StartTime, end: slot.EndTime},
		[]uuid.UUID{owner.OrganizationID},
		&employeeID,
	)
	if err != nil {
		return nil, err
	}

	for _, m := range matches {
		if m.MatchType != calendar.MatchFull {
			continue
		}
		visit, err := s.visits.Book(ctx, BookVisitInput{
			AvailabilitySlotID: m.Slot.ID,
			PatientCareSlotID:  slot.ID,
			VisitDate:          date.String(),
		})
		if err != nil {
			return nil, fmt.Errorf("book care slot %s: %w", slot.ID, err)
		}
		return visit, nil
	}

	s.log.Warn().
		Str("employee_id", employeeID.String()).
		Str("slot_id", slot.ID.String()).
		Str("visit_date", date.String()).
		Msg("assigned employee has no covering availability")
	return nil, calendar.Invalid("assigned_employee_id",
		fmt.Sprintf("employee %s has no free availability covering %s-%s on %s", employeeID, slot.StartTime, slot.EndTime, date))
}

// UpdatePatientCareSlot меняет заданные поля; квота проверяется, только если она настроена.
func (s *CareSlotService) UpdatePatientCareSlot(ctx context.Context, slotID uuid.UUID, upd SlotUpdate) (*model.PatientCareSlot, error) {
	return s.Update(ctx, slotID, upd)
}

// ScheduledHours — часы активных слотов ухода пациента за неделю.
func (s *CareSlotService) ScheduledHours(ctx context.Context, patientID uuid.UUID, weekStart *string) (float64, error) {
	slots, err := s.ListForWeek(ctx, patientID, weekStart)
	if err != nil {
		return 0, err
	}
	return calendar.TotalHours(slots), nil
}
