package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bilalhaider11/ale-backend-sub000/internal/model"
)

// WindowCriteria — целевое окно на дату и допустимые организации владельцев.
type WindowCriteria struct {
	VisitDate model.Date
	Start     model.TimeOfDay
	End       model.TimeOfDay
	OrgIDs    []uuid.UUID
	// Ограничить выдачу одним владельцем.
	OwnerID *uuid.UUID
}

// Ночное окно сравнивается в пределах дня начала, конец — "24:00".
func (c WindowCriteria) effectiveEnd() model.TimeOfDay {
	if c.End <= c.Start {
		return model.EndOfDay
	}
	return c.End
}

func (c WindowCriteria) args() map[string]any {
	return map[string]any{
		"date":      c.VisitDate,
		"dow":       c.VisitDate.Weekday(),
		"tStart":    c.Start,
		"tEnd":      c.effectiveEnd(),
		"orgs":      c.OrgIDs,
		"owner":     c.OwnerID,
		"cancelled": model.VisitStatusCancelled,
	}
}

// AvailabilityCandidate — слот доступности и соседние визиты сотрудника на дату.
type AvailabilityCandidate struct {
	model.AvailabilitySlot
	PrevBookingEnd   sql.NullString
	NextBookingStart sql.NullString
}

type CareSlotCandidate struct {
	model.PatientCareSlot
}

type MatchRepository interface {
	// Незанятые слоты доступности, пересекающие окно, у свободных сотрудников.
	FindAvailabilityCandidates(ctx context.Context, c WindowCriteria) ([]AvailabilityCandidate, error)
	// Незанятые слоты ухода пациентов в периоде ухода, пересекающие окно.
	FindCareSlotCandidates(ctx context.Context, c WindowCriteria) ([]CareSlotCandidate, error)
	// Есть ли у владельца активный визит, пересекающий окно.
	OwnerBusy(ctx context.Context, kind model.OwnerKind, ownerID uuid.UUID, date model.Date, start, end model.TimeOfDay) (bool, error)
	// Занят ли слот с данным logical_key визитом, пересекающим окно.
	SlotKeyConsumed(ctx context.Context, kind model.OwnerKind, key string, date model.Date, start, end model.TimeOfDay) (bool, error)
}

type GormMatchRepository struct {
	db *gorm.DB
}

func NewGormMatchRepository(db *gorm.DB) *GormMatchRepository {
	return &GormMatchRepository{db: db}
}

// Визит пересекает цель: ночной визит тоже тянется до конца дня.
const visitOverlapsTarget = `v.visit_date = @date
	AND v.active = true AND v.status <> @cancelled
	AND v.scheduled_start_time < @tEnd
	AND (v.scheduled_end_time > @tStart OR v.scheduled_end_time <= v.scheduled_start_time)`

const availabilityCandidatesSQL = `
SELECT a.*,
	(SELECT MAX(v.scheduled_end_time) FROM care_visits v
		WHERE v.employee_id = a.employee_id AND v.visit_date = @date
		AND v.active = true AND v.status <> @cancelled
		AND v.scheduled_end_time > v.scheduled_start_time
		AND v.scheduled_end_time <= @tStart) AS prev_booking_end,
	(SELECT MIN(v.scheduled_start_time) FROM care_visits v
		WHERE v.employee_id = a.employee_id AND v.visit_date = @date
		AND v.active = true AND v.status <> @cancelled
		AND v.scheduled_start_time >= @tStart) AS next_booking_start
FROM availability_slots a
JOIN employees e ON e.id = a.employee_id
WHERE a.day_of_week = @dow
	AND a.active = true AND e.active = true
	AND e.organization_id IN @orgs
	AND (a.start_date IS NULL OR a.start_date <= @date)
	AND (a.end_date IS NULL OR a.end_date >= @date)
	AND a.start_time < @tEnd
	AND (a.end_time > @tStart OR a.end_time <= a.start_time)
	AND NOT EXISTS (SELECT 1 FROM care_visits v
		WHERE v.availability_slot_key = a.logical_key AND ` + visitOverlapsTarget + `)
	AND NOT EXISTS (SELECT 1 FROM care_visits v
		WHERE v.employee_id = a.employee_id AND ` + visitOverlapsTarget + `)`

const careSlotCandidatesSQL = `
SELECT c.*
FROM patient_care_slots c
JOIN patients p ON p.id = c.patient_id
WHERE c.day_of_week = @dow
	AND c.active = true AND p.active = true
	AND p.organization_id IN @orgs
	AND (c.start_date IS NULL OR c.start_date <= @date)
	AND (c.end_date IS NULL OR c.end_date >= @date)
	AND (p.care_period_start IS NULL OR p.care_period_start <= @date)
	AND (p.care_period_end IS NULL OR p.care_period_end >= @date)
	AND c.start_time < @tEnd
	AND (c.end_time > @tStart OR c.end_time <= c.start_time)
	AND NOT EXISTS (SELECT 1 FROM care_visits v
		WHERE v.patient_care_slot_key = c.logical_key AND ` + visitOverlapsTarget + `)
	AND NOT EXISTS (SELECT 1 FROM care_visits v
		WHERE v.patient_id = c.patient_id AND ` + visitOverlapsTarget + `)`

func (r *GormMatchRepository) FindAvailabilityCandidates(ctx context.Context, c WindowCriteria) ([]AvailabilityCandidate, error) {
	if len(c.OrgIDs) == 0 {
		return []AvailabilityCandidate{}, nil
	}

	query := availabilityCandidatesSQL
	if c.OwnerID != nil {
		query += "\n\tAND a.employee_id = @owner"
	}
	query += "\nORDER BY a.start_time ASC, a.id ASC"

	var rows []AvailabilityCandidate
	if err := r.db.WithContext(ctx).Raw(query, c.args()).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *GormMatchRepository) FindCareSlotCandidates(ctx context.Context, c WindowCriteria) ([]CareSlotCandidate, error) {
	if len(c.OrgIDs) == 0 {
		return []CareSlotCandidate{}, nil
	}

	query := careSlotCandidatesSQL
	if c.OwnerID != nil {
		query += "\n\tAND c.patient_id = @owner"
	}
	query += "\nORDER BY c.start_time ASC, c.id ASC"

	var rows []CareSlotCandidate
	if err := r.db.WithContext(ctx).Raw(query, c.args()).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *GormMatchRepository) OwnerBusy(
	ctx context.Context,
	kind model.OwnerKind,
	ownerID uuid.UUID,
	date model.Date,
	start, end model.TimeOfDay,
) (bool, error) {
	column := "v.employee_id"
	if kind == model.OwnerKindPatient {
		column = "v.patient_id"
	}
	return r.visitExists(ctx, column+" = @ref", ownerID, date, start, end)
}

func (r *GormMatchRepository) SlotKeyConsumed(
	ctx context.Context,
	kind model.OwnerKind,
	key string,
	date model.Date,
	start, end model.TimeOfDay,
) (bool, error) {
	column := "v.availability_slot_key"
	if kind == model.OwnerKindPatient {
		column = "v.patient_care_slot_key"
	}
	return r.visitExists(ctx, column+" = @ref", key, date, start, end)
}

func (r *GormMatchRepository) visitExists(
	ctx context.Context,
	refCond string,
	ref any,
	date model.Date,
	start, end model.TimeOfDay,
) (bool, error) {
	c := WindowCriteria{VisitDate: date, Start: start, End: end}
	args := c.args()
	args["ref"] = ref

	var count int64
	err := r.db.WithContext(ctx).
		Raw("SELECT COUNT(*) FROM care_visits v WHERE "+refCond+" AND "+visitOverlapsTarget, args).
		Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
