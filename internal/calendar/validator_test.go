package calendar

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bilalhaider11/ale-backend-sub000/internal/model"
)

func freezeNow(t *testing.T, at time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = prev })
}

func TestValidateDayOfWeek(t *testing.T) {
	three := 3
	cases := []struct {
		name      string
		value     any
		allowNone bool
		want      *int
		wantErr   bool
	}{
		{name: "int", value: 0, want: intPtr(0)},
		{name: "sunday", value: 6, want: intPtr(6)},
		{name: "int64", value: int64(4), want: intPtr(4)},
		{name: "json number", value: float64(2), want: intPtr(2)},
		{name: "pointer", value: &three, want: intPtr(3)},
		{name: "nil allowed", value: nil, allowNone: true, want: nil},
		{name: "nil required", value: nil, wantErr: true},
		{name: "negative", value: -1, wantErr: true},
		{name: "too large", value: 7, wantErr: true},
		{name: "fraction", value: 1.5, wantErr: true},
		{name: "string", value: "1", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ValidateDayOfWeek(tc.value, tc.allowNone)
			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseTime(t *testing.T) {
	got, err := ParseTime("09:30")
	require.NoError(t, err)
	assert.Equal(t, model.NewTimeOfDay(9, 30), got)

	got, err = ParseTime("00:00")
	require.NoError(t, err)
	assert.Equal(t, model.TimeOfDay(0), got)

	got, err = ParseTime(model.NewTimeOfDay(23, 59))
	require.NoError(t, err)
	assert.Equal(t, "23:59", got.String())

	got, err = ParseTime(time.Date(2025, 1, 6, 22, 15, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "22:15", got.String())

	for _, bad := range []any{"9:30", "24:00", "12:60", "12:00:00", "noon", "", nil, 930} {
		_, err := ParseTime(bad)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr, "value %v", bad)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-05", false)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-05", d.String())

	typed := model.NewDate(2025, time.March, 7)
	d, err = ParseDate(typed, false)
	require.NoError(t, err)
	assert.True(t, d.Equal(typed))

	d, err = ParseDate(nil, true)
	require.NoError(t, err)
	assert.Nil(t, d)

	_, err = ParseDate("05.03.2025", false)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ParseDate(20250305, false)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestParseDate_DefaultsToCurrentMonday(t *testing.T) {
	// четверг
	freezeNow(t, time.Date(2025, time.March, 6, 15, 0, 0, 0, time.UTC))

	d, err := ParseDate(nil, false)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "2025-03-03", d.String())

	d, err = ParseDate("", false)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-03", d.String())
}

func TestValidateDayRange_AllPairs(t *testing.T) {
	for start := 0; start <= 6; start++ {
		for end := 0; end <= 6; end++ {
			err := ValidateDayRange(start, end)
			want := start <= end || (start == 6 && end == 0)
			if want {
				assert.NoError(t, err, "(%d, %d)", start, end)
			} else {
				assert.ErrorIs(t, err, ErrValidation, "(%d, %d)", start, end)
			}
		}
	}

	assert.Error(t, ValidateDayRange(-1, 3))
	assert.Error(t, ValidateDayRange(2, 7))
}

func TestIsValidTimeRange_MidnightAwareDuration(t *testing.T) {
	// шаг 15 минут по всем парам в сутках
	for s := 0; s < model.MinutesPerDay; s += 15 {
		for e := 0; e < model.MinutesPerDay; e += 15 {
			start, end := model.TimeOfDay(s), model.TimeOfDay(e)
			duration := e - s
			if e <= s {
				duration = model.MinutesPerDay - s + e
			}
			if got := IsValidTimeRange(start, end); got != (duration > 0) {
				t.Fatalf("IsValidTimeRange(%s, %s) = %v, duration %d", start, end, got, duration)
			}
			if got := SlotDurationMinutes(start, end); got != duration {
				t.Fatalf("SlotDurationMinutes(%s, %s) = %d, want %d", start, end, got, duration)
			}
		}
	}
}

func TestValidateTimeWindow(t *testing.T) {
	nine, five := model.NewTimeOfDay(9, 0), model.NewTimeOfDay(17, 0)
	ten, six := model.NewTimeOfDay(22, 0), model.NewTimeOfDay(6, 0)

	assert.NoError(t, ValidateTimeWindow(nine, five, 1, 1))
	assert.NoError(t, ValidateTimeWindow(ten, six, 1, 2))
	assert.NoError(t, ValidateTimeWindow(ten, six, 6, 0))

	err := ValidateTimeWindow(ten, six, 1, 1)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "time_range", verr.Field)

	assert.Error(t, ValidateTimeWindow(nine, nine, 3, 3))
}

func TestValidateWeekStart(t *testing.T) {
	monday := model.NewDate(2025, time.January, 6)
	for i := 0; i < 28; i++ {
		d := monday.AddDays(i)
		err := ValidateWeekStart(d)
		if i%7 == 0 {
			assert.NoError(t, err, d.String())
		} else {
			assert.ErrorIs(t, err, ErrValidation, d.String())
		}
	}
}

func TestWeekStartAndEnd(t *testing.T) {
	sunday := model.NewDate(2025, time.January, 12)
	assert.Equal(t, "2025-01-06", WeekStart(sunday).String())
	assert.Equal(t, "2025-01-12", WeekEnd(sunday).String())
	assert.Equal(t, 6, DayOfWeek(sunday))

	monday := model.NewDate(2025, time.January, 6)
	assert.True(t, WeekStart(monday).Equal(monday))
}

func TestValidationErrorMessage(t *testing.T) {
	err := Invalid("start_time", "is required")
	assert.Equal(t, "validation failed: start_time: is required", err.Error())
	assert.True(t, errors.Is(err, ErrValidation))

	nf := NotFound("patient", "42")
	assert.True(t, errors.Is(nf, ErrNotFound))
	assert.False(t, errors.Is(nf, ErrValidation))
}

func intPtr(v int) *int { return &v }
