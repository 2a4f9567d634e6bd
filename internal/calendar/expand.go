package calendar

import (
	"github.com/google/uuid"

	"github.com/bilalhaider11/ale-backend-sub000/internal/model"
)

// Shift — одна смена шаблона, время в формате "HH:MM".
type Shift struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// RecurringPattern — запрос на развёртывание повторяющихся слотов.
type RecurringPattern struct {
	DurationWeeks int     `json:"duration_weeks"`
	SelectedDays  []int   `json:"selected_days"`
	Shifts        []Shift `json:"shifts"`
}

// Empty — шаблон не порождает ни одного экземпляра.
func (p RecurringPattern) Empty() bool {
	return p.DurationWeeks <= 0 || len(p.SelectedDays) == 0 || len(p.Shifts) == 0
}

// InstanceCount — сколько экземпляров даст развёртывание.
func (p RecurringPattern) InstanceCount() int {
	if p.Empty() {
		return 0
	}
	return p.DurationWeeks * len(p.SelectedDays) * len(p.Shifts)
}

type parsedShift struct {
	start, end model.TimeOfDay
}

// ExpandPattern разворачивает шаблон в несохранённые слоты владельца.
// Порядок: неделя, затем выбранный день, затем смена.
// Все экземпляры получают один series_id; единственный экземпляр остаётся без серии.
func ExpandPattern[S model.Slot](
	pattern RecurringPattern,
	startDate model.Date,
	ownerID uuid.UUID,
	build func(ownerID uuid.UUID, w model.SlotWindow) S,
) ([]S, error) {
	if pattern.Empty() {
		return []S{}, nil
	}

	for _, day := range pattern.SelectedDays {
		if _, err := ValidateDayOfWeek(day, false); err != nil {
			return nil, err
		}
	}

	shifts := make([]parsedShift, 0, len(pattern.Shifts))
	for _, sh := range pattern.Shifts {
		start, err := ParseTime(sh.StartTime)
		if err != nil {
			return nil, err
		}
		end, err := ParseTime(sh.EndTime)
		if err != nil {
			return nil, err
		}
		if !IsValidTimeRange(start, end) {
			return nil, invalid("shifts", "%s-%s has no duration", start, end)
		}
		shifts = append(shifts, parsedShift{start: start, end: end})
	}

	var seriesID *uuid.UUID
	if pattern.InstanceCount() > 1 {
		id := uuid.New()
		seriesID = &id
	}

	startDow := startDate.Weekday()
	result := make([]S, 0, pattern.InstanceCount())

	for week := 0; week < pattern.DurationWeeks; week++ {
		for _, day := range pattern.SelectedDays {
			daysAhead := ((day-startDow)%DaysPerWeek+DaysPerWeek)%DaysPerWeek + week*DaysPerWeek
			slotDate := startDate.AddDays(daysAhead)
			weekStart := WeekStart(slotDate)
			weekEnd := WeekEnd(slotDate)

			for _, sh := range shifts {
				slotEndDate := slotDate
				endDow := day
				if sh.end <= sh.start {
					slotEndDate = slotDate.AddDays(1)
					endDow = (day + 1) % DaysPerWeek
				}

				sd, ed := slotDate, slotEndDate
				ws, we := weekStart, weekEnd
				w := model.SlotWindow{
					DayOfWeek:      day,
					StartDayOfWeek: day,
					EndDayOfWeek:   endDow,
					StartTime:      sh.start,
					EndTime:        sh.end,
					WeekStartDate:  &ws,
					WeekEndDate:    &we,
					StartDate:      &sd,
					EndDate:        &ed,
					SeriesID:       seriesID,
					Active:         true,
				}
				result = append(result, build(ownerID, w))
			}
		}
	}

	return result, nil
}
