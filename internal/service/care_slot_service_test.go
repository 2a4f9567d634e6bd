package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bilalhaider11/ale-backend-sub000/internal/calendar"
	"github.com/bilalhaider11/ale-backend-sub000/internal/model"
)

func TestCreatePatientCareSlots_RequiresConfiguredQuota(t *testing.T) {
	f := newFixture(t)
	patientID := f.patient(t, nil)
	d := monday.String()

	_, err := f.care.CreatePatientCareSlots(f.ctx, patientID, CareSlotRequest{
		SlotRequest: SlotRequest{StartTime: "09:00", EndTime: "10:00", StartDate: &d},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, calendar.ErrValidation)
	assert.Contains(t, err.Error(), "weekly_quota")

	slots, err := f.care.ListForWeek(f.ctx, patientID, &d)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestCreatePatientCareSlots_WeeklyQuotaEndToEnd(t *testing.T) {
	f := newFixture(t)
	patientID := f.patient(t, floatPtr(16))

	f.careSlot(t, patientID, monday, "09:00", "17:00")
	f.careSlot(t, patientID, monday.AddDays(2), "09:00", "17:00")

	friday := monday.AddDays(4).String()
	_, err := f.care.CreatePatientCareSlots(f.ctx, patientID, CareSlotRequest{
		SlotRequest: SlotRequest{StartTime: "09:00", EndTime: "10:00", StartDate: &friday},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, calendar.ErrValidation)

	week := monday.String()
	slots, err := f.care.ListForWeek(f.ctx, patientID, &week)
	require.NoError(t, err)
	assert.Len(t, slots, 2)

	hours, err := f.care.ScheduledHours(f.ctx, patientID, &week)
	require.NoError(t, err)
	assert.Equal(t, 16.0, hours)
}

func TestCreatePatientCareSlots_RecurringQuotaPerWeek(t *testing.T) {
	f := newFixture(t)
	patientID := f.patient(t, floatPtr(16))
	start := monday.String()

	res, err := f.care.CreatePatientCareSlots(f.ctx, patientID, CareSlotRequest{
		SlotRequest: SlotRequest{
			StartDate:     &start,
			DurationWeeks: 2,
			SelectedDays:  []int{0, 2},
			Shifts:        []calendar.Shift{{StartTime: "09:00", EndTime: "17:00"}},
		},
	})
	require.NoError(t, err)
	require.Len(t, res.Slots, 4)

	seriesID := res.Slots[0].SeriesID
	require.NotNil(t, seriesID)
	for _, s := range res.Slots {
		assert.Equal(t, *seriesID, *s.SeriesID)
	}

	var series model.SlotSeries
	require.NoError(t, f.db.First(&series, "id = ?", *seriesID).Error)
	assert.Equal(t, 4, series.InstanceCount)
	assert.Equal(t, model.OwnerKindPatient, series.OwnerKind)
	assert.JSONEq(t, `{"duration_weeks":2,"selected_days":[0,2],"shifts":[{"start_time":"09:00","end_time":"17:00"}]}`, string(series.Pattern))

	// Неделя до якоря свободна, неделя якоря уже заполнена: первая запись остаётся.
	earlier := monday.AddDays(-7).String()
	_, err = f.care.CreatePatientCareSlots(f.ctx, patientID, CareSlotRequest{
		SlotRequest: SlotRequest{
			StartDate:     &earlier,
			DurationWeeks: 2,
			SelectedDays:  []int{4},
			Shifts:        []calendar.Shift{{StartTime: "09:00", EndTime: "12:00"}},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, calendar.ErrValidation)

	slots, err := f.care.ListForWeek(f.ctx, patientID, &earlier)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, 4, slots[0].DayOfWeek)
}

func TestCreatePatientCareSlots_SeriesOnlyWithSavedInstances(t *testing.T) {
	f := newFixture(t)
	patientID := f.patient(t, floatPtr(8))
	start := monday.String()
	weekly := SlotRequest{
		StartDate:     &start,
		DurationWeeks: 2,
		SelectedDays:  []int{0},
		Shifts:        []calendar.Shift{{StartTime: "09:00", EndTime: "17:00"}},
	}

	// Первая неделя уже заполнена: ни слотов, ни серии.
	f.careSlot(t, patientID, monday.AddDays(2), "09:00", "17:00")
	created, err := f.care.Create(f.ctx, patientID, weekly)
	assert.ErrorIs(t, err, calendar.ErrValidation)
	assert.Empty(t, created)

	series, err := f.care.ListSeries(f.ctx, patientID)
	require.NoError(t, err)
	assert.Empty(t, series)

	// Вторая неделя заполнена: серия считает только сохранённые экземпляры.
	other := f.patient(t, floatPtr(8))
	f.careSlot(t, other, monday.AddDays(9), "09:00", "17:00")
	created, err = f.care.Create(f.ctx, other, weekly)
	assert.ErrorIs(t, err, calendar.ErrValidation)
	require.Len(t, created, 1)
	require.NotNil(t, created[0].SeriesID)

	stored, instances, err := f.care.GetSeries(f.ctx, *created[0].SeriesID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.InstanceCount)
	assert.Len(t, instances, 1)
}

func TestCreatePatientCareSlots_OvernightCountsAgainstQuota(t *testing.T) {
	f := newFixture(t)
	patientID := f.patient(t, floatPtr(8))

	slot := f.careSlot(t, patientID, monday, "22:00", "06:00")
	assert.Equal(t, 1, slot.EndDayOfWeek)
	assert.Nil(t, slot.SeriesID)

	d := monday.AddDays(1).String()
	_, err := f.care.CreatePatientCareSlots(f.ctx, patientID, CareSlotRequest{
		SlotRequest: SlotRequest{StartTime: "10:00", EndTime: "10:30", StartDate: &d},
	})
	assert.ErrorIs(t, err, calendar.ErrValidation)
}

func TestUpdatePatientCareSlot_Quota(t *testing.T) {
	f := newFixture(t)
	patientID := f.patient(t, floatPtr(8))
	slot := f.careSlot(t, patientID, monday, "09:00", "17:00")

	// Сам обновляемый слот в сумму недели не входит.
	moved, err := f.care.UpdatePatientCareSlot(f.ctx, slot.ID, SlotUpdate{StartTime: strPtr("10:00"), EndTime: strPtr("18:00")})
	require.NoError(t, err)
	assert.Equal(t, model.NewTimeOfDay(10, 0), moved.StartTime)
	assert.Equal(t, model.LogicalKey(patientID, 0, moved.StartTime, moved.EndTime), moved.LogicalKey)

	_, err = f.care.UpdatePatientCareSlot(f.ctx, slot.ID, SlotUpdate{EndTime: strPtr("19:00")})
	assert.ErrorIs(t, err, calendar.ErrValidation)

	// Без квоты обновление не ограничено.
	_, err = f.directory.SetWeeklyQuota(f.ctx, patientID, nil)
	require.NoError(t, err)

	widened, err := f.care.UpdatePatientCareSlot(f.ctx, slot.ID, SlotUpdate{StartTime: strPtr("06:00"), EndTime: strPtr("22:00")})
	require.NoError(t, err)
	assert.Equal(t, 16*60, calendar.SlotDurationMinutes(widened.StartTime, widened.EndTime))

	// ...но создание без квоты запрещено.
	d := monday.AddDays(1).String()
	_, err = f.care.CreatePatientCareSlots(f.ctx, patientID, CareSlotRequest{
		SlotRequest: SlotRequest{StartTime: "09:00", EndTime: "10:00", StartDate: &d},
	})
	assert.ErrorIs(t, err, calendar.ErrValidation)
}

func TestUpdatePatientCareSlot_WeekFollowsStartDate(t *testing.T) {
	f := newFixture(t)
	patientID := f.patient(t, floatPtr(8))
	slot := f.careSlot(t, patientID, monday, "09:00", "17:00")
	f.careSlot(t, patientID, monday.AddDays(7), "09:00", "17:00")

	// Перенос в заполненную неделю проверяется по квоте этой недели.
	next := monday.AddDays(7).String()
	_, err := f.care.UpdatePatientCareSlot(f.ctx, slot.ID, SlotUpdate{StartDate: &next, EndDate: &next})
	assert.ErrorIs(t, err, calendar.ErrValidation)

	free := monday.AddDays(14).String()
	moved, err := f.care.UpdatePatientCareSlot(f.ctx, slot.ID, SlotUpdate{StartDate: &free, EndDate: &free})
	require.NoError(t, err)
	require.NotNil(t, moved.WeekStartDate)
	assert.Equal(t, free, moved.WeekStartDate.String())
	assert.Equal(t, monday.AddDays(20).String(), moved.WeekEndDate.String())

	// Неделя, не совпадающая с start_date, отклоняется.
	_, err = f.care.UpdatePatientCareSlot(f.ctx, slot.ID, SlotUpdate{WeekStartDate: &next})
	assert.ErrorIs(t, err, calendar.ErrValidation)

	week := monday.String()
	slots, err := f.care.ListForWeek(f.ctx, patientID, &week)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestCreatePatientCareSlots_WeekStartMustMatchStartDate(t *testing.T) {
	f := newFixture(t)
	patientID := f.patient(t, floatPtr(40))
	d := monday.String()
	next := monday.AddDays(7).String()

	_, err := f.care.CreatePatientCareSlots(f.ctx, patientID, CareSlotRequest{
		SlotRequest: SlotRequest{StartTime: "09:00", EndTime: "10:00", StartDate: &d, WeekStartDate: &next},
	})
	assert.ErrorIs(t, err, calendar.ErrValidation)

	res, err := f.care.CreatePatientCareSlots(f.ctx, patientID, CareSlotRequest{
		SlotRequest: SlotRequest{StartTime: "09:00", EndTime: "10:00", StartDate: &d, WeekStartDate: &d},
	})
	require.NoError(t, err)
	require.Len(t, res.Slots, 1)
	assert.Equal(t, d, res.Slots[0].WeekStartDate.String())
}

func TestUpdatePatientCareSlot_FieldValidation(t *testing.T) {
	f := newFixture(t)
	patientID := f.patient(t, floatPtr(40))
	slot := f.careSlot(t, patientID, monday, "09:00", "17:00")

	cases := []struct {
		name string
		upd  SlotUpdate
	}{
		{name: "bad time", upd: SlotUpdate{StartTime: strPtr("9am")}},
		{name: "bad day", upd: SlotUpdate{DayOfWeek: intPtr(7)}},
		{name: "reversed day range", upd: SlotUpdate{StartDayOfWeek: intPtr(3), EndDayOfWeek: intPtr(1)}},
		{name: "week start not monday", upd: SlotUpdate{WeekStartDate: strPtr(monday.AddDays(1).String())}},
		{name: "bad date", upd: SlotUpdate{EndDate: strPtr("2025-13-01")}},
		{name: "end before start", upd: SlotUpdate{EndDate: strPtr(monday.AddDays(-1).String())}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.care.UpdatePatientCareSlot(f.ctx, slot.ID, tc.upd)
			assert.ErrorIs(t, err, calendar.ErrValidation)
		})
	}

	stored, err := f.care.Get(f.ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, slot.LogicalKey, stored.LogicalKey)
	assert.Equal(t, model.NewTimeOfDay(9, 0), stored.StartTime)
}

func TestCreatePatientCareSlots_AssignsEmployee(t *testing.T) {
	f := newFixture(t)
	employeeID := f.employee(t, "anna")
	patientID := f.patient(t, floatPtr(20))
	avail := f.availabilitySlot(t, employeeID, monday, "08:00", "18:00")

	d := monday.String()
	res, err := f.care.CreatePatientCareSlots(f.ctx, patientID, CareSlotRequest{
		SlotRequest:        SlotRequest{StartTime: "09:00", EndTime: "12:00", StartDate: &d, EndDate: &d},
		AssignedEmployeeID: uuidPtr(employeeID),
		VisitDate:          &d,
	})
	require.NoError(t, err)
	require.Len(t, res.Slots, 1)
	require.Len(t, res.Visits, 1)

	v := res.Visits[0]
	assert.Equal(t, model.VisitStatusScheduled, v.Status)
	assert.Equal(t, employeeID, v.EmployeeID)
	assert.Equal(t, avail.LogicalKey, v.AvailabilitySlotKey)
	assert.Equal(t, res.Slots[0].LogicalKey, v.PatientCareSlotKey)
	assert.Equal(t, "09:00", v.ScheduledStartTime.String())
	assert.Equal(t, "12:00", v.ScheduledEndTime.String())
}

func TestCreatePatientCareSlots_AssignmentNeedsBothFields(t *testing.T) {
	f := newFixture(t)
	employeeID := f.employee(t, "anna")
	patientID := f.patient(t, floatPtr(20))
	d := monday.String()

	_, err := f.care.CreatePatientCareSlots(f.ctx, patientID, CareSlotRequest{
		SlotRequest:        SlotRequest{StartTime: "09:00", EndTime: "12:00", StartDate: &d},
		AssignedEmployeeID: uuidPtr(employeeID),
	})
	assert.ErrorIs(t, err, calendar.ErrValidation)

	_, err = f.care.CreatePatientCareSlots(f.ctx, patientID, CareSlotRequest{
		SlotRequest: SlotRequest{StartTime: "09:00", EndTime: "12:00", StartDate: &d},
		VisitDate:   &d,
	})
	assert.ErrorIs(t, err, calendar.ErrValidation)

	slots, err := f.care.ListForWeek(f.ctx, patientID, &d)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestCreatePatientCareSlots_AssignedEmployeeWithoutAvailability(t *testing.T) {
	f := newFixture(t)
	employeeID := f.employee(t, "anna")
	patientID := f.patient(t, floatPtr(20))
	f.availabilitySlot(t, employeeID, monday, "10:00", "11:00")

	d := monday.String()
	res, err := f.care.CreatePatientCareSlots(f.ctx, patientID, CareSlotRequest{
		SlotRequest:        SlotRequest{StartTime: "09:00", EndTime: "12:00", StartDate: &d, EndDate: &d},
		AssignedEmployeeID: uuidPtr(employeeID),
		VisitDate:          &d,
	})
	assert.ErrorIs(t, err, calendar.ErrValidation)
	// Слот уже сохранён, визит не создан.
	require.NotNil(t, res)
	assert.Len(t, res.Slots, 1)
	assert.Empty(t, res.Visits)
}
