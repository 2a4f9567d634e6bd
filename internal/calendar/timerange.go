package calendar

import (
	"github.com/bilalhaider11/ale-backend-sub000/internal/model"
)

// TimeRange — окно внутри одних суток [Start, End) в минутах от полуночи.
// End может быть равен 1440 ("24:00") для ночного окна, обрезанного по дню начала.
type TimeRange struct {
	Start int
	End   int
}

// NewTimeRange разворачивает окно слота в пределах дня начала.
func NewTimeRange(start, end model.TimeOfDay) TimeRange {
	tr := TimeRange{Start: start.Minutes(), End: end.Minutes()}
	if end <= start {
		tr.End = model.MinutesPerDay
	}
	return tr
}

func (tr TimeRange) Duration() int { return tr.End - tr.Start }

// Midpoint = (start + end) / 2, в минутах.
func (tr TimeRange) Midpoint() float64 {
	return float64(tr.Start+tr.End) / 2
}

// Contains — tr полностью покрывает other.
func (tr TimeRange) Contains(other TimeRange) bool {
	return tr.Start <= other.Start && tr.End >= other.End
}

// Overlaps — полуоткрытые интервалы пересекаются, касание концами не считается.
func (tr TimeRange) Overlaps(other TimeRange) bool {
	return tr.Start < other.End && other.Start < tr.End
}

// HasOverlap возвращает все интервалы existing, пересекающиеся с newRange.
func HasOverlap(newRange TimeRange, existing []TimeRange) (bool, []TimeRange) {
	var conflicts []TimeRange
	for _, tr := range existing {
		if newRange.Overlaps(tr) {
			conflicts = append(conflicts, tr)
		}
	}
	return len(conflicts) > 0, conflicts
}
