package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bilalhaider11/ale-backend-sub000/internal/calendar"
	"github.com/bilalhaider11/ale-backend-sub000/internal/model"
)

func (f *fixture) book(t *testing.T, avail *model.AvailabilitySlot, care *model.PatientCareSlot, date model.Date) *model.CareVisit {
	t.Helper()
	v, err := f.visits.Book(f.ctx, BookVisitInput{
		AvailabilitySlotID: avail.ID,
		PatientCareSlotID:  care.ID,
		VisitDate:          date.String(),
	})
	require.NoError(t, err)
	return v
}

func (f *fixture) findEmployees(t *testing.T, patientID uuid.UUID, start, end string, date model.Date) []AvailabilityMatch {
	t.Helper()
	page, err := f.matches.FindAvailableEmployees(f.ctx, AvailabilityQuery{
		PatientID: patientID,
		StartTime: start,
		EndTime:   end,
		VisitDate: date.String(),
		OrgIDs:    f.orgs(),
		PageSize:  100,
	})
	require.NoError(t, err)
	return page.Items
}

func matchedEmployees(matches []AvailabilityMatch) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Slot.EmployeeID)
	}
	return out
}

func TestFindAvailableEmployees_ExcludesConsumedSlot(t *testing.T) {
	f := newFixture(t)
	busy := f.employee(t, "busy")
	free := f.employee(t, "free")
	booked := f.patient(t, floatPtr(40))
	asking := f.patient(t, floatPtr(40))

	avail := f.availabilitySlot(t, busy, monday, "09:00", "17:00")
	f.availabilitySlot(t, free, monday, "10:00", "12:00")
	f.book(t, avail, f.careSlot(t, booked, monday, "10:00", "12:00"), monday)

	got := f.findEmployees(t, asking, "10:30", "11:30", monday)
	assert.Equal(t, []uuid.UUID{free}, matchedEmployees(got))

	// Другая дата: визит слот не занимает.
	nextMonday := monday.AddDays(7)
	f.availabilitySlot(t, busy, nextMonday, "09:00", "17:00")
	got = f.findEmployees(t, asking, "10:30", "11:30", nextMonday)
	assert.Equal(t, []uuid.UUID{busy}, matchedEmployees(got))
}

func TestFindAvailableEmployees_ExcludesBusyOwnerThroughOtherSlot(t *testing.T) {
	f := newFixture(t)
	employee := f.employee(t, "anna")
	booked := f.patient(t, floatPtr(40))
	asking := f.patient(t, floatPtr(40))

	morning := f.availabilitySlot(t, employee, monday, "09:00", "12:00")
	f.availabilitySlot(t, employee, monday, "10:00", "13:00")
	f.book(t, morning, f.careSlot(t, booked, monday, "10:00", "12:00"), monday)

	// Второй слот не занят, но сотрудник уже на визите в это время.
	assert.Empty(t, f.findEmployees(t, asking, "11:00", "12:30", monday))

	// После визита второй слот снова доступен.
	got := f.findEmployees(t, asking, "12:00", "13:00", monday)
	require.Len(t, got, 1)
	assert.Equal(t, "10:00", got[0].Slot.StartTime.String())
	assert.Equal(t, calendar.MatchFull, got[0].MatchType)
}

func TestFindAvailableEmployees_CancelledVisitFreesSlot(t *testing.T) {
	f := newFixture(t)
	employee := f.employee(t, "anna")
	booked := f.patient(t, floatPtr(40))
	asking := f.patient(t, floatPtr(40))

	avail := f.availabilitySlot(t, employee, monday, "09:00", "17:00")
	v := f.book(t, avail, f.careSlot(t, booked, monday, "10:00", "12:00"), monday)
	assert.Empty(t, f.findEmployees(t, asking, "10:30", "11:30", monday))

	_, err := f.visits.Transition(f.ctx, v.ID, model.VisitStatusCancelled)
	require.NoError(t, err)
	assert.Len(t, f.findEmployees(t, asking, "10:30", "11:30", monday), 1)
}

func TestFindAvailableEmployees_Ranking(t *testing.T) {
	f := newFixture(t)
	wide := f.employee(t, "wide")
	partial := f.employee(t, "partial")
	exact := f.employee(t, "exact")
	patientID := f.patient(t, floatPtr(40))

	f.availabilitySlot(t, wide, monday, "09:00", "17:00")
	f.availabilitySlot(t, partial, monday, "10:30", "11:30")
	f.availabilitySlot(t, exact, monday, "10:00", "12:00")
	// не тот день недели
	f.availabilitySlot(t, exact, monday.AddDays(1), "10:00", "12:00")
	// не пересекается
	f.availabilitySlot(t, partial, monday, "13:00", "15:00")

	got := f.findEmployees(t, patientID, "10:00", "12:00", monday)
	require.Len(t, got, 3)
	assert.Equal(t, []uuid.UUID{exact, wide, partial}, matchedEmployees(got))

	assert.Equal(t, calendar.MatchFull, got[0].MatchType)
	assert.Equal(t, 0.0, got[0].Offset)
	assert.Equal(t, calendar.MatchFull, got[1].MatchType)
	assert.Equal(t, 120.0, got[1].Offset)
	// частичное совпадение идёт последним, хотя его середина ближе
	assert.Equal(t, calendar.MatchPartial, got[2].MatchType)
	assert.Equal(t, 0.0, got[2].Offset)
}

func TestFindAvailableEmployees_FreeWindow(t *testing.T) {
	f := newFixture(t)
	employee := f.employee(t, "anna")
	booked := f.patient(t, floatPtr(40))
	asking := f.patient(t, floatPtr(40))

	avail := f.availabilitySlot(t, employee, monday, "08:00", "18:00")
	f.book(t, avail, f.careSlot(t, booked, monday, "08:00", "09:00"), monday)
	f.book(t, avail, f.careSlot(t, booked, monday, "15:00", "16:00"), monday)

	got := f.findEmployees(t, asking, "10:00", "12:00", monday)
	require.Len(t, got, 1)
	assert.Equal(t, "09:00", got[0].AvailableFrom.String())
	assert.Equal(t, "15:00", got[0].AvailableTo.String())

	// Без соседних визитов свободное окно совпадает со слотом.
	other := f.employee(t, "boris")
	f.availabilitySlot(t, other, monday, "10:00", "14:00")
	got = f.findEmployees(t, asking, "10:00", "12:00", monday)
	require.Len(t, got, 2)
	for _, m := range got {
		if m.Slot.EmployeeID == other {
			assert.Equal(t, "10:00", m.AvailableFrom.String())
			assert.Equal(t, "14:00", m.AvailableTo.String())
		}
	}
}

func TestFindAvailableEmployees_OvernightCandidate(t *testing.T) {
	f := newFixture(t)
	employee := f.employee(t, "night")
	patientID := f.patient(t, floatPtr(40))
	f.availabilitySlot(t, employee, monday, "22:00", "06:00")

	got := f.findEmployees(t, patientID, "22:30", "23:30", monday)
	require.Len(t, got, 1)
	assert.Equal(t, calendar.MatchFull, got[0].MatchType)

	got = f.findEmployees(t, patientID, "21:00", "23:00", monday)
	require.Len(t, got, 1)
	assert.Equal(t, calendar.MatchPartial, got[0].MatchType)
}

func TestFindAvailableEmployees_CarePeriodAndEmptyInputs(t *testing.T) {
	f := newFixture(t)
	employee := f.employee(t, "anna")
	patientID := f.patient(t, floatPtr(40))
	f.availabilitySlot(t, employee, monday, "09:00", "17:00")

	_, err := f.directory.SetCarePeriod(f.ctx, patientID, strPtr(monday.AddDays(-30).String()), strPtr(monday.AddDays(-1).String()))
	require.NoError(t, err)
	assert.Empty(t, f.findEmployees(t, patientID, "10:00", "12:00", monday))

	_, err = f.directory.SetCarePeriod(f.ctx, patientID, strPtr(monday.AddDays(-30).String()), nil)
	require.NoError(t, err)
	assert.Len(t, f.findEmployees(t, patientID, "10:00", "12:00", monday), 1)

	page, err := f.matches.FindAvailableEmployees(f.ctx, AvailabilityQuery{
		PatientID: patientID, StartTime: "10:00", EndTime: "12:00", VisitDate: monday.String(),
	})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	page, err = f.matches.FindAvailableEmployees(f.ctx, AvailabilityQuery{
		StartTime: "10:00", EndTime: "12:00", VisitDate: monday.String(), OrgIDs: f.orgs(),
	})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	_, err = f.matches.FindAvailableEmployees(f.ctx, AvailabilityQuery{
		PatientID: patientID, StartTime: "10", EndTime: "12:00", VisitDate: monday.String(), OrgIDs: f.orgs(),
	})
	assert.ErrorIs(t, err, calendar.ErrValidation)

	_, err = f.matches.FindAvailableEmployees(f.ctx, AvailabilityQuery{
		PatientID: patientID, StartTime: "10:00", EndTime: "12:00", VisitDate: "06.01.2025", OrgIDs: f.orgs(),
	})
	assert.ErrorIs(t, err, calendar.ErrValidation)

	_, err = f.matches.FindAvailableEmployees(f.ctx, AvailabilityQuery{
		PatientID: uuid.New(), StartTime: "10:00", EndTime: "12:00", VisitDate: monday.String(), OrgIDs: f.orgs(),
	})
	assert.ErrorIs(t, err, calendar.ErrNotFound)
}

func TestFindAvailableEmployees_Paging(t *testing.T) {
	f := newFixture(t)
	patientID := f.patient(t, floatPtr(40))
	for _, name := range []string{"a", "b", "c"} {
		f.availabilitySlot(t, f.employee(t, name), monday, "09:00", "17:00")
	}

	page, err := f.matches.FindAvailableEmployees(f.ctx, AvailabilityQuery{
		PatientID: patientID, StartTime: "10:00", EndTime: "12:00", VisitDate: monday.String(),
		OrgIDs: f.orgs(), Page: 2, PageSize: 2,
	})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 3, page.Total)
	assert.True(t, page.HasPrev)
	assert.False(t, page.HasNext)
}

func TestFindAvailabilityForCareSlot(t *testing.T) {
	f := newFixture(t)
	employee := f.employee(t, "anna")
	patientID := f.patient(t, floatPtr(40))
	avail := f.availabilitySlot(t, employee, monday, "08:00", "18:00")
	care := f.careSlot(t, patientID, monday, "10:00", "12:00")

	got, err := f.matches.FindAvailabilityForCareSlot(f.ctx, care.ID, monday.String(), f.orgs())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, avail.ID, got[0].Slot.ID)
	assert.Equal(t, calendar.MatchFull, got[0].MatchType)

	// Не тот день недели слота.
	got, err = f.matches.FindAvailabilityForCareSlot(f.ctx, care.ID, monday.AddDays(1).String(), f.orgs())
	require.NoError(t, err)
	assert.Empty(t, got)

	f.book(t, avail, care, monday)
	got, err = f.matches.FindAvailabilityForCareSlot(f.ctx, care.ID, monday.String(), f.orgs())
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = f.matches.FindAvailabilityForCareSlot(f.ctx, uuid.New(), monday.String(), f.orgs())
	assert.ErrorIs(t, err, calendar.ErrNotFound)

	got, err = f.matches.FindAvailabilityForCareSlot(f.ctx, care.ID, monday.String(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFindCareSlotsForEmployee(t *testing.T) {
	f := newFixture(t)
	employee := f.employee(t, "anna")
	near := f.patient(t, floatPtr(40))
	far := f.patient(t, floatPtr(40))
	wide := f.patient(t, floatPtr(40))

	full := f.careSlot(t, near, monday, "10:00", "12:00")
	part := f.careSlot(t, far, monday, "12:30", "14:00")
	f.careSlot(t, far, monday, "15:00", "16:00")
	// Полное совпадение: слот ухода покрывает всё окно сотрудника.
	cover := f.careSlot(t, wide, monday, "08:30", "13:30")

	page, err := f.matches.FindCareSlotsForEmployee(f.ctx, CareSlotQuery{
		EmployeeID: employee, StartTime: "09:00", EndTime: "13:00", VisitDate: monday.String(), OrgIDs: f.orgs(),
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, cover.ID, page.Items[0].Slot.ID)
	assert.Equal(t, calendar.MatchFull, page.Items[0].MatchType)
	// Слот внутри окна — частичное совпадение, ближе к середине окна идёт раньше.
	assert.Equal(t, full.ID, page.Items[1].Slot.ID)
	assert.Equal(t, calendar.MatchPartial, page.Items[1].MatchType)
	assert.Zero(t, page.Items[1].Offset)
	assert.Equal(t, part.ID, page.Items[2].Slot.ID)
	assert.Equal(t, calendar.MatchPartial, page.Items[2].MatchType)

	// Слоты чужой организации не видны.
	page, err = f.matches.FindCareSlotsForEmployee(f.ctx, CareSlotQuery{
		EmployeeID: employee, StartTime: "09:00", EndTime: "13:00", VisitDate: monday.String(), OrgIDs: []uuid.UUID{uuid.New()},
	})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	// Занятый сотрудник ничего не получает.
	avail := f.availabilitySlot(t, employee, monday, "08:00", "18:00")
	f.book(t, avail, full, monday)
	page, err = f.matches.FindCareSlotsForEmployee(f.ctx, CareSlotQuery{
		EmployeeID: employee, StartTime: "09:00", EndTime: "13:00", VisitDate: monday.String(), OrgIDs: f.orgs(),
	})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	// Другой сотрудник видит только незанятые слоты.
	other := f.employee(t, "boris")
	page, err = f.matches.FindCareSlotsForEmployee(f.ctx, CareSlotQuery{
		EmployeeID: other, StartTime: "09:00", EndTime: "13:00", VisitDate: monday.String(), OrgIDs: f.orgs(),
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, cover.ID, page.Items[0].Slot.ID)
	assert.Equal(t, part.ID, page.Items[1].Slot.ID)
}
