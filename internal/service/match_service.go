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

// AvailabilityQuery — поиск сотрудников под окно пациента.
type AvailabilityQuery struct {
	PatientID uuid.UUID
	StartTime string
	EndTime   string
	VisitDate string
	OrgIDs    []uuid.UUID
	// Только слоты этого сотрудника.
	EmployeeID *uuid.UUID
	Page       int
	PageSize   int
}

// CareSlotQuery — поиск слотов ухода под окно сотрудника.
type CareSlotQuery struct {
	EmployeeID uuid.UUID
	StartTime  string
	EndTime    string
	VisitDate  string
	OrgIDs     []uuid.UUID
	Page       int
	PageSize   int
}

type AvailabilityMatch struct {
	Slot          model.AvailabilitySlot
	MatchType     calendar.MatchType
	Offset        float64
	AvailableFrom model.TimeOfDay
	AvailableTo   model.TimeOfDay
}

type CareSlotMatch struct {
	Slot      model.PatientCareSlot
	MatchType calendar.MatchType
	Offset    float64
}

// MatchService ищет и ранжирует встречные слоты для целевого окна.
type MatchService struct {
	matches  repository.MatchRepository
	patients repository.PatientRepository
	care     repository.SlotRepository[model.PatientCareSlot]
	log      zerolog.Logger
}

func NewMatchService(
	matches repository.MatchRepository,
	patients repository.PatientRepository,
	care repository.SlotRepository[model.PatientCareSlot],
	log zerolog.Logger,
) *MatchService {
	return &MatchService{
		matches:  matches,
		patients: patients,
		care:     care,
		log:      log.With().Str("component", "match_service").Logger(),
	}
}

type target struct {
	date       model.Date
	start, end model.TimeOfDay
}

func (t target) window() calendar.TimeRange { return calendar.NewTimeRange(t.start, t.end) }

// Входные значения проверяются до любого запроса.
func parseTarget(startTime, endTime, visitDate string) (target, error) {
	start, err := calendar.ParseTime(startTime)
	if err != nil {
		return target{}, err
	}
	end, err := calendar.ParseTime(endTime)
	if err != nil {
		return target{}, err
	}
	if !calendar.IsValidTimeRange(start, end) {
		return target{}, calendar.Invalid("time_range", "has no duration")
	}
	date, err := calendar.ParseDate(visitDate, true)
	if err != nil {
		return target{}, err
	}
	if date == nil {
		return target{}, calendar.Invalid("visit_date", "is required")
	}
	return target{date: *date, start: start, end: end}, nil
}

// FindAvailableEmployees — сотрудники, способные покрыть окно пациента на дату.
// Дата вне периода ухода пациента даёт пустой результат.
func (s *MatchService) FindAvailableEmployees(ctx context.Context, q AvailabilityQuery) (calendar.Page[AvailabilityMatch], error) {
	t, err := parseTarget(q.StartTime, q.EndTime, q.VisitDate)
	if err != nil {
		return calendar.Page[AvailabilityMatch]{}, err
	}
	if q.PatientID == uuid.Nil || len(q.OrgIDs) == 0 {
		return calendar.Paginate([]AvailabilityMatch{}, q.Page, q.PageSize), nil
	}

	patient, err := s.patients.GetByID(ctx, q.PatientID)
	if err != nil {
		return calendar.Page[AvailabilityMatch]{}, lookupErr(err, "patient", q.PatientID.String())
	}
	if !patient.Active || !patient.InCarePeriod(t.date) {
		return calendar.Paginate([]AvailabilityMatch{}, q.Page, q.PageSize), nil
	}

	matches, err := s.availabilityMatches(ctx, t, q.OrgIDs, q.EmployeeID)
	if err != nil {
		return calendar.Page[AvailabilityMatch]{}, err
	}
	return calendar.Paginate(matches, q.Page, q.PageSize), nil
}

// FindAvailabilityForCareSlot берёт окно из сохранённого слота ухода.
// Если слот уже занят визитом на эту дату, результат пустой.
func (s *MatchService) FindAvailabilityForCareSlot(
	ctx context.Context,
	careSlotID uuid.UUID,
	visitDate string,
	orgIDs []uuid.UUID,
) ([]AvailabilityMatch, error) {
	date, err := calendar.ParseDate(visitDate, true)
	if err != nil {
		return nil, err
	}
	if date == nil {
		return nil, calendar.Invalid("visit_date", "is required")
	}
	if careSlotID == uuid.Nil || len(orgIDs) == 0 {
		return []AvailabilityMatch{}, nil
	}

	slot, err := s.care.GetByID(ctx, careSlotID)
	if err != nil {
		return nil, lookupErr(err, "patient_slot", careSlotID.String())
	}
	if !slot.Active || slot.DayOfWeek != date.Weekday() || !slot.CoversDate(*date) {
		return []AvailabilityMatch{}, nil
	}

	patient, err := s.patients.GetByID(ctx, slot.PatientID)
	if err != nil {
		return nil, lookupErr(err, "patient", slot.PatientID.String())
	}
	if !patient.Active || !patient.InCarePeriod(*date) {
		return []AvailabilityMatch{}, nil
	}

	consumed, err := s.matches.SlotKeyConsumed(ctx, model.OwnerKindPatient, slot.LogicalKey, *date, slot.StartTime, slot.EndTime)
	if err != nil {
		return nil, fmt.Errorf("check care slot usage: %w", err)
	}
	if consumed {
		return []AvailabilityMatch{}, nil
	}

	return s.availabilityMatches(ctx, target{date: *date, start: slot.StartTime, end: slot.EndTime}, orgIDs, nil)
}

func (s *MatchService) availabilityMatches(
	ctx context.Context,
	t target,
	orgIDs []uuid.UUID,
	employeeID *uuid.UUID,
) ([]AvailabilityMatch, error) {
	rows, err := s.matches.FindAvailabilityCandidates(ctx, repository.WindowCriteria{
		VisitDate: t.date,
		Start:     t.start,
		End:       t.end,
		OrgIDs:    orgIDs,
		OwnerID:   employeeID,
	})
	if err != nil {
		return nil, fmt.Errorf("find availability candidates: %w", err)
	}

	tw := t.window()
	out := make([]AvailabilityMatch, 0, len(rows))
	for _, row := range rows {
		cw := calendar.NewTimeRange(row.StartTime, row.EndTime)
		score, ok := calendar.Classify(cw, tw)
		if !ok {
			continue
		}

		prev, err := nullableMinutes(row.PrevBookingEnd.String, row.PrevBookingEnd.Valid)
		if err != nil {
			return nil, err
		}
		next, err := nullableMinutes(row.NextBookingStart.String, row.NextBookingStart.Valid)
		if err != nil {
			return nil, err
		}
		free := calendar.FreeWindow(cw, prev, next)

		out = append(out, AvailabilityMatch{
			Slot:          row.AvailabilitySlot,
			MatchType:     score.MatchType,
			Offset:        score.Offset,
			AvailableFrom: model.TimeOfDay(free.Start),
			AvailableTo:   model.TimeOfDay(free.End),
		})
	}

	calendar.Rank(out, func(m AvailabilityMatch) calendar.Score {
		return calendar.Score{MatchType: m.MatchType, Offset: m.Offset}
	})

	metrics.ObserveMatchResults("availability", len(out))
	s.log.Debug().
		Str("visit_date", t.date.String()).
		Str("window", t.start.String()+"-"+t.end.String()).
		Int("candidates", len(out)).
		Msg("availability matched")
	return out, nil
}

// FindCareSlotsForEmployee — слоты ухода, которые сотрудник может взять в своё окно.
// Если сотрудник уже занят в это окно, результат пустой.
func (s *MatchService) FindCareSlotsForEmployee(ctx context.Context, q CareSlotQuery) (calendar.Page[CareSlotMatch], error) {
	t, err := parseTarget(q.StartTime, q.EndTime, q.VisitDate)
	if err != nil {
		return calendar.Page[CareSlotMatch]{}, err
	}
	if q.EmployeeID == uuid.Nil || len(q.OrgIDs) == 0 {
		return calendar.Paginate([]CareSlotMatch{}, q.Page, q.PageSize), nil
	}

	busy, err := s.matches.OwnerBusy(ctx, model.OwnerKindEmployee, q.EmployeeID, t.date, t.start, t.end)
	if err != nil {
		return calendar.Page[CareSlotMatch]{}, fmt.Errorf("check employee visits: %w", err)
	}
	if busy {
		return calendar.Paginate([]CareSlotMatch{}, q.Page, q.PageSize), nil
	}

	rows, err := s.matches.FindCareSlotCandidates(ctx, repository.WindowCriteria{
		VisitDate: t.date,
		Start:     t.start,
		End:       t.end,
		OrgIDs:    q.OrgIDs,
	})
	if err != nil {
		return calendar.Page[CareSlotMatch]{}, fmt.Errorf("find care slot candidates: %w", err)
	}

	tw := t.window()
	out := make([]CareSlotMatch, 0, len(rows))
	for _, row := range rows {
		score, ok := calendar.Classify(calendar.NewTimeRange(row.StartTime, row.EndTime), tw)
		if !ok {
			continue
		}
		out = append(out, CareSlotMatch{Slot: row.PatientCareSlot, MatchType: score.MatchType, Offset: score.Offset})
	}

	calendar.Rank(out, func(m CareSlotMatch) calendar.Score {
		return calendar.Score{MatchType: m.MatchType, Offset: m.Offset}
	})

	metrics.ObserveMatchResults("care_slot", len(out))
	return calendar.Paginate(out, q.Page, q.PageSize), nil
}

func nullableMinutes(raw string, valid bool) (*int, error) {
	if !valid {
		return nil, nil
	}
	var t model.TimeOfDay
	if err := t.Scan(raw); err != nil {
		return nil, fmt.Errorf("scan booking time %q: %w", raw, err)
	}
	m := t.Minutes()
	return &m, nil
}
