package calendar

import (
	"sort"

	"github.com/google/uuid"

	"github.com/bilalhaider11/ale-backend-sub000/internal/model"
)

// SlotDurationMinutes — длительность окна в минутах, end <= start переходит через полночь.
func SlotDurationMinutes(start, end model.TimeOfDay) int {
	return DurationMinutes(start, end)
}

// TotalHours суммирует длительности слотов в часах.
func TotalHours[S model.Slot](slots []S) float64 {
	minutes := 0
	for _, s := range slots {
		w := s.Window()
		minutes += SlotDurationMinutes(w.StartTime, w.EndTime)
	}
	return float64(minutes) / 60
}

// ValidateWeeklyQuota проверяет, что слоты недели вместе с candidate не превышают quota.
// quota == nil означает отсутствие ограничения. excludeID убирает обновляемый слот из existing.
func ValidateWeeklyQuota(quota *float64, candidate model.Slot, existing []model.Slot, excludeID *uuid.UUID) error {
	if quota == nil {
		return nil
	}

	week := make([]model.Slot, 0, len(existing)+1)
	for _, s := range existing {
		if excludeID != nil && s.SlotID() == *excludeID {
			continue
		}
		week = append(week, s)
	}
	week = append(week, candidate)

	total := TotalHours(week)
	if total > *quota {
		return invalid("weekly_quota", "scheduled %.2fh exceeds weekly quota of %.2fh", total, *quota)
	}
	return nil
}

// WeekGroup — слоты одной недели (с понедельника).
type WeekGroup[S model.Slot] struct {
	WeekStart model.Date
	Slots     []S
}

// GroupByWeek раскладывает слоты по week_start_date, недели идут по возрастанию.
// Слот без week_start_date относится к неделе своей start_date.
func GroupByWeek[S model.Slot](slots []S) []WeekGroup[S] {
	index := make(map[model.Date]int)
	var groups []WeekGroup[S]

	for _, s := range slots {
		ws := slotWeek(s.Window())
		i, ok := index[ws]
		if !ok {
			i = len(groups)
			index[ws] = i
			groups = append(groups, WeekGroup[S]{WeekStart: ws})
		}
		groups[i].Slots = append(groups[i].Slots, s)
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].WeekStart.Before(groups[b].WeekStart)
	})
	return groups
}

func slotWeek(w *model.SlotWindow) model.Date {
	switch {
	case w.WeekStartDate != nil:
		return *w.WeekStartDate
	case w.StartDate != nil:
		return WeekStart(*w.StartDate)
	default:
		return WeekStart(model.DateOf(now()))
	}
}

// ValidateWeekBatch проверяет кандидатов одной недели по очереди:
// baseline — уже запланированные слоты недели, каждый принятый кандидат добавляется к ним.
func ValidateWeekBatch[S model.Slot](quota *float64, baseline []model.Slot, batch []S) error {
	if quota == nil {
		return nil
	}
	scheduled := append([]model.Slot(nil), baseline...)
	for _, c := range batch {
		if err := ValidateWeeklyQuota(quota, c, scheduled, nil); err != nil {
			return err
		}
		scheduled = append(scheduled, c)
	}
	return nil
}
