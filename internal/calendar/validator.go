package calendar

import (
	"math"
	"regexp"
	"strconv"
	"time"

	"github.com/bilalhaider11/ale-backend-sub000/internal/model"
)

// Неделя начинается с понедельника: 0=понедельник..6=воскресенье.
const (
	Monday = 0
	Sunday = 6

	DaysPerWeek = 7
)

var timePattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

// now подменяется в тестах.
var now = time.Now

// ValidateDayOfWeek приводит значение к дню недели 0..6.
// Принимает целые типы Go и целые числа из JSON (float64).
func ValidateDayOfWeek(value any, allowNone bool) (*int, error) {
	if value == nil {
		if allowNone {
			return nil, nil
		}
		return nil, invalid("day_of_week", "is required")
	}

	var day int
	switch v := value.(type) {
	case int:
		day = v
	case *int:
		if v == nil {
			return ValidateDayOfWeek(nil, allowNone)
		}
		day = *v
	case int32:
		day = int(v)
	case int64:
		day = int(v)
	case float64:
		if v != math.Trunc(v) {
			return nil, invalid("day_of_week", "must be a whole number, got %v", v)
		}
		day = int(v)
	default:
		return nil, invalid("day_of_week", "must be an integer, got %T", value)
	}

	if day < Monday || day > Sunday {
		return nil, invalid("day_of_week", "must be between 0 and 6, got %d", day)
	}
	return &day, nil
}

// ParseTime разбирает время суток в каноническом формате "HH:MM".
func ParseTime(value any) (model.TimeOfDay, error) {
	switch v := value.(type) {
	case model.TimeOfDay:
		if v < 0 || v >= model.EndOfDay {
			return 0, invalid("time", "out of range: %d minutes", int(v))
		}
		return v, nil
	case time.Time:
		return model.NewTimeOfDay(v.Hour(), v.Minute()), nil
	case string:
		m := timePattern.FindStringSubmatch(v)
		if m == nil {
			return 0, invalid("time", "expected HH:MM, got %q", v)
		}
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		return model.NewTimeOfDay(hour, minute), nil
	case nil:
		return 0, invalid("time", "is required")
	default:
		return 0, invalid("time", "unsupported type %T", value)
	}
}

// ParseDate разбирает дату "YYYY-MM-DD".
// Пустое значение при allowNone=false — это понедельник текущей недели, а не ошибка.
func ParseDate(value any, allowNone bool) (*model.Date, error) {
	var d model.Date
	switch v := value.(type) {
	case nil:
		if allowNone {
			return nil, nil
		}
		d = WeekStart(model.DateOf(now()))
	case string:
		if v == "" {
			return ParseDate(nil, allowNone)
		}
		parsed, err := model.ParseDateString(v)
		if err != nil {
			return nil, invalid("date", "expected YYYY-MM-DD, got %q", v)
		}
		d = parsed
	case *string:
		if v == nil {
			return ParseDate(nil, allowNone)
		}
		return ParseDate(*v, allowNone)
	case model.Date:
		d = v
	case *model.Date:
		if v == nil {
			return ParseDate(nil, allowNone)
		}
		d = *v
	case time.Time:
		d = model.DateOf(v)
	default:
		return nil, invalid("date", "unsupported type %T", value)
	}
	return &d, nil
}

// ValidateDayRange: start <= end, либо (6, 0) — ночная смена с переходом через конец недели.
func ValidateDayRange(start, end int) error {
	if start < Monday || start > Sunday || end < Monday || end > Sunday {
		return invalid("day_range", "days must be between 0 and 6, got (%d, %d)", start, end)
	}
	if start <= end || (start == Sunday && end == Monday) {
		return nil
	}
	return invalid("day_range", "start day %d is after end day %d", start, end)
}

// DurationMinutes — длительность окна с учётом перехода через полночь: end <= start означает следующий день.
func DurationMinutes(start, end model.TimeOfDay) int {
	if end <= start {
		return (model.MinutesPerDay - start.Minutes()) + end.Minutes()
	}
	return end.Minutes() - start.Minutes()
}

// IsValidTimeRange — окно допустимо, если его длительность строго положительна.
func IsValidTimeRange(start, end model.TimeOfDay) bool {
	return DurationMinutes(start, end) > 0
}

// ValidateTimeWindow дополнительно требует start < end, когда окно укладывается в один день.
func ValidateTimeWindow(start, end model.TimeOfDay, startDay, endDay int) error {
	if !IsValidTimeRange(start, end) {
		return invalid("time_range", "%s-%s has no duration", start, end)
	}
	if startDay == endDay && start >= end {
		return invalid("time_range", "same-day window %s-%s must end after it starts", start, end)
	}
	return nil
}

// ValidateWeekStart: якорь недели всегда понедельник.
func ValidateWeekStart(d model.Date) error {
	if d.Weekday() != Monday {
		return invalid("week_start_date", "%s is not a Monday", d)
	}
	return nil
}

// WeekStart возвращает понедельник недели, которой принадлежит дата.
func WeekStart(d model.Date) model.Date {
	return d.AddDays(-d.Weekday())
}

// WeekEnd возвращает воскресенье той же недели.
func WeekEnd(d model.Date) model.Date {
	return WeekStart(d).AddDays(DaysPerWeek - 1)
}

// DayOfWeek — день недели даты в нумерации слотов.
func DayOfWeek(d model.Date) int {
	return d.Weekday()
}
