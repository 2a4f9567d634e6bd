package calendar

import (
	"math"
	"sort"
)

type MatchType string

const (
	MatchFull    MatchType = "full"
	MatchPartial MatchType = "partial"
)

// Score — класс совпадения и расстояние между серединами окон в минутах.
type Score struct {
	MatchType MatchType
	Offset    float64
}

// Classify сравнивает окно кандидата с целевым окном.
// ok == false, если окна не пересекаются: такой кандидат в выдачу не попадает.
func Classify(candidate, target TimeRange) (score Score, ok bool) {
	switch {
	case candidate.Contains(target):
		score.MatchType = MatchFull
	case candidate.Overlaps(target):
		score.MatchType = MatchPartial
	default:
		return Score{}, false
	}
	score.Offset = math.Abs(candidate.Midpoint() - target.Midpoint())
	return score, true
}

// Less: полные совпадения раньше частичных, внутри класса меньший offset раньше.
func (s Score) Less(o Score) bool {
	if s.MatchType != o.MatchType {
		return s.MatchType == MatchFull
	}
	return s.Offset < o.Offset
}

// Rank сортирует items по Score на месте, равные сохраняют исходный порядок.
func Rank[M any](items []M, score func(M) Score) {
	sort.SliceStable(items, func(i, j int) bool {
		return score(items[i]).Less(score(items[j]))
	})
}

// FreeWindow сужает окно кандидата до свободного промежутка между соседними визитами владельца.
// prevEnd — самый поздний конец визита не позже начала цели, nextStart — самое раннее начало не раньше него.
func FreeWindow(candidate TimeRange, prevEnd, nextStart *int) TimeRange {
	free := candidate
	if prevEnd != nil && *prevEnd > free.Start {
		free.Start = *prevEnd
	}
	if nextStart != nil && *nextStart < free.End {
		free.End = *nextStart
	}
	return free
}
