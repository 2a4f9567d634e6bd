package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bilalhaider11/ale-backend-sub000/internal/db/dbtest"
	"github.com/bilalhaider11/ale-backend-sub000/internal/lock"
	"github.com/bilalhaider11/ale-backend-sub000/internal/model"
	"github.com/bilalhaider11/ale-backend-sub000/internal/repository"
)

// Понедельник, от которого считаются даты в тестах.
var monday = model.NewDate(2025, time.January, 6)

type fixture struct {
	ctx context.Context
	db  *gorm.DB
	org uuid.UUID

	directory    *DirectoryService
	availability *AvailabilityService
	care         *CareSlotService
	matches      *MatchService
	visits       *VisitService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	gdb := dbtest.Open(t)
	log := zerolog.Nop()

	employees := repository.NewGormEmployeeRepository(gdb)
	patients := repository.NewGormPatientRepository(gdb)
	series := repository.NewGormSeriesRepository(gdb)
	availSlots := repository.NewGormAvailabilitySlotRepository(gdb)
	careSlots := repository.NewGormPatientCareSlotRepository(gdb)

	matches := NewMatchService(repository.NewGormMatchRepository(gdb), patients, careSlots, log)
	visits := NewVisitService(gdb, lock.NewLocalLocker(), log)

	return &fixture{
		ctx:          context.Background(),
		db:           gdb,
		org:          uuid.New(),
		directory:    NewDirectoryService(employees, patients, log),
		availability: NewAvailabilityService(availSlots, series, employees, log),
		care:         NewCareSlotService(careSlots, series, patients, matches, visits, log),
		matches:      matches,
		visits:       visits,
	}
}

func (f *fixture) employee(t *testing.T, name string) uuid.UUID {
	t.Helper()
	e, err := f.directory.UpsertEmployee(f.ctx, EmployeeInput{OrganizationID: f.org, DisplayName: name, Active: true})
	require.NoError(t, err)
	return e.ID
}

// patient создаёт активного пациента; quota == nil — квота не настроена.
func (f *fixture) patient(t *testing.T, quota *float64) uuid.UUID {
	t.Helper()
	p, err := f.directory.UpsertPatient(f.ctx, PatientInput{OrganizationID: f.org, DisplayName: "patient", Active: true})
	require.NoError(t, err)
	if quota != nil {
		_, err = f.directory.SetWeeklyQuota(f.ctx, p.ID, quota)
		require.NoError(t, err)
	}
	return p.ID
}

// availability создаёт один слот сотрудника на конкретную дату.
func (f *fixture) availabilitySlot(t *testing.T, employeeID uuid.UUID, date model.Date, start, end string) *model.AvailabilitySlot {
	t.Helper()
	d := date.String()
	slots, err := f.availability.Create(f.ctx, employeeID, SlotRequest{StartTime: start, EndTime: end, StartDate: &d, EndDate: &d})
	require.NoError(t, err)
	require.Len(t, slots, 1)
	return slots[0]
}

func (f *fixture) careSlot(t *testing.T, patientID uuid.UUID, date model.Date, start, end string) *model.PatientCareSlot {
	t.Helper()
	d := date.String()
	res, err := f.care.CreatePatientCareSlots(f.ctx, patientID, CareSlotRequest{
		SlotRequest: SlotRequest{StartTime: start, EndTime: end, StartDate: &d, EndDate: &d},
	})
	require.NoError(t, err)
	require.Len(t, res.Slots, 1)
	return res.Slots[0]
}

func (f *fixture) orgs() []uuid.UUID { return []uuid.UUID{f.org} }

func strPtr(s string) *string { return &s }
func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool { return &v }
func uuidPtr(v uuid.UUID) *uuid.UUID { return &v }
