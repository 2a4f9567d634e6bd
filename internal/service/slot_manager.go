package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/bilalhaider11/ale-backend-sub000/internal/calendar"
	"github.com/bilalhaider11/ale-backend-sub000/internal/metrics"
	"github.com/bilalhaider11/ale-backend-sub000/internal/model"
	"github.com/bilalhaider11/ale-backend-sub000/internal/repository"
)

var timeNow = time.Now

// SlotPtr — указатель на модель слота, через который менеджер работает с обоими видами.
type SlotPtr[T repository.SlotRecord] interface {
	*T
	model.Slot
}

// SlotRequest — создание одного слота из явных полей или серии по шаблону.
// Значения времени и дат приходят сырыми ("HH:MM", "YYYY-MM-DD") и разбираются валидатором.
type SlotRequest struct {
	DayOfWeek      *int
	StartDayOfWeek *int
	EndDayOfWeek   *int
	StartTime      string
	EndTime        string
	WeekStartDate  *string
	StartDate      *string
	EndDate        *string

	// Шаблон повторения: если задано хоть одно поле, слот строится развёртыванием от StartDate.
	DurationWeeks int
	SelectedDays  []int
	Shifts        []calendar.Shift
}

func (r SlotRequest) recurring() bool {
	return r.DurationWeeks != 0 || len(r.SelectedDays) > 0 || len(r.Shifts) > 0
}

func (r SlotRequest) pattern() calendar.RecurringPattern {
	return calendar.RecurringPattern{
		DurationWeeks: r.DurationWeeks,
		SelectedDays:  r.SelectedDays,
		Shifts:        r.Shifts,
	}
}

// SlotUpdate — частичное обновление: меняются только заданные поля.
type SlotUpdate struct {
	DayOfWeek      *int
	StartDayOfWeek *int
	EndDayOfWeek   *int
	StartTime      *string
	EndTime        *string
	WeekStartDate  *string
	StartDate      *string
	EndDate        *string
	Active         *bool
}

// WeekCheck вызывается перед записью слотов одной недели.
// existing — активные слоты владельца за эту неделю, excludeID — обновляемый слот.
type WeekCheck[P model.Slot] func(ctx context.Context, owner *calendar.Owner, weekStart model.Date, existing []model.Slot, batch []P, excludeID *uuid.UUID) error

// SlotManager — создание, обновление и мягкое удаление слотов одного вида.
type SlotManager[T repository.SlotRecord, P SlotPtr[T]] struct {
	kind   model.OwnerKind
	slots  repository.SlotRepository[T]
	series repository.SeriesRepository
	owners calendar.OwnerStore
	build  func(ownerID uuid.UUID, w model.SlotWindow) P

	// Необязательные правила стороны владельца.
	beforeCreate func(owner *calendar.Owner) error
	checkWeek    WeekCheck[P]

	log zerolog.Logger
}

func newSlotManager[T repository.SlotRecord, P SlotPtr[T]](
	kind model.OwnerKind,
	slots repository.SlotRepository[T],
	series repository.SeriesRepository,
	owners calendar.OwnerStore,
	build func(ownerID uuid.UUID, w model.SlotWindow) P,
	log zerolog.Logger,
) *SlotManager[T, P] {
	return &SlotManager[T, P]{
		kind:   kind,
		slots:  slots,
		series: series,
		owners: owners,
		build:  build,
		log:    log,
	}
}

// Create строит и сохраняет слоты владельца.
// Недели пишутся последовательно: ошибка квоты на поздней неделе оставляет ранние недели сохранёнными.
func (m *SlotManager[T, P]) Create(ctx context.Context, ownerID uuid.UUID, req SlotRequest) ([]P, error) {
	owner, err := calendar.ValidateOwner(ctx, m.owners, m.kind, ownerID)
	if err != nil {
		return nil, err
	}
	if m.beforeCreate != nil {
		if err := m.beforeCreate(owner); err != nil {
			return nil, err
		}
	}

	built, err := m.buildSlots(ownerID, req)
	if err != nil {
		return nil, err
	}
	if len(built) == 0 {
		return []P{}, nil
	}

	created, createErr := m.createByWeek(ctx, owner, built)

	// Серия пишется только вместе с сохранёнными экземплярами.
	if seriesID := built[0].Window().SeriesID; seriesID != nil && len(created) > 0 {
		if err := m.saveSeries(ctx, *seriesID, ownerID, req, len(created)); err != nil {
			return created, err
		}
	}
	metrics.AddSlotsCreated(string(m.kind), len(created))
	if createErr != nil {
		return created, createErr
	}

	m.log.Info().
		Str("owner_id", ownerID.String()).
		Int("count", len(created)).
		Bool("recurring", req.recurring()).
		Msg("slots created")

	return created, nil
}

func (m *SlotManager[T, P]) createByWeek(ctx context.Context, owner *calendar.Owner, built []P) ([]P, error) {
	created := make([]P, 0, len(built))
	for _, group := range calendar.GroupByWeek(built) {
		existing, err := m.weekSlots(ctx, owner.ID, group.WeekStart)
		if err != nil {
			return created, err
		}
		if m.checkWeek != nil {
			if err := m.checkWeek(ctx, owner, group.WeekStart, existing, group.Slots, nil); err != nil {
				return created, err
			}
		}
		for _, s := range group.Slots {
			if err := m.slots.Create(ctx, (*T)(s)); err != nil {
				return created, fmt.Errorf("create %s slot: %w", m.kind, err)
			}
			created = append(created, s)
		}
	}
	return created, nil
}

func (m *SlotManager[T, P]) buildSlots(ownerID uuid.UUID, req SlotRequest) ([]P, error) {
	if req.recurring() {
		anchor, err := calendar.ParseDate(req.StartDate, false)
		if err != nil {
			return nil, err
		}
		return calendar.ExpandPattern(req.pattern(), *anchor, ownerID, m.build)
	}

	w, err := windowFromRequest(req)
	if err != nil {
		return nil, err
	}
	return []P{m.build(ownerID, w)}, nil
}

func windowFromRequest(req SlotRequest) (model.SlotWindow, error) {
	var w model.SlotWindow

	dow, err := calendar.ValidateDayOfWeek(req.DayOfWeek, true)
	if err != nil {
		return w, err
	}
	startDow, err := calendar.ValidateDayOfWeek(req.StartDayOfWeek, true)
	if err != nil {
		return w, err
	}
	endDow, err := calendar.ValidateDayOfWeek(req.EndDayOfWeek, true)
	if err != nil {
		return w, err
	}

	start, err := calendar.ParseTime(req.StartTime)
	if err != nil {
		return w, err
	}
	end, err := calendar.ParseTime(req.EndTime)
	if err != nil {
		return w, err
	}

	startDate, err := calendar.ParseDate(req.StartDate, true)
	if err != nil {
		return w, err
	}
	endDate, err := calendar.ParseDate(req.EndDate, true)
	if err != nil {
		return w, err
	}
	if startDate != nil && endDate != nil && endDate.Before(*startDate) {
		return w, calendar.Invalid("end_date", "is before start_date")
	}

	switch {
	case dow == nil && startDow != nil:
		dow = startDow
	case dow == nil && startDate != nil:
		d := startDate.Weekday()
		dow = &d
	case dow == nil:
		return w, calendar.Invalid("day_of_week", "is required")
	}
	if startDow == nil {
		startDow = dow
	}
	if endDow == nil {
		e := defaultEndDay(*startDow, start, end)
		endDow = &e
	}

	if err := calendar.ValidateDayRange(*startDow, *endDow); err != nil {
		return w, err
	}
	if err := calendar.ValidateTimeWindow(start, end, *startDow, *endDow); err != nil {
		return w, err
	}

	var weekStart *model.Date
	if req.WeekStartDate == nil && startDate != nil {
		ws := calendar.WeekStart(*startDate)
		weekStart = &ws
	} else if weekStart, err = calendar.ParseDate(req.WeekStartDate, false); err != nil {
		return w, err
	}
	if err := checkWeekAnchor(*weekStart, startDate); err != nil {
		return w, err
	}
	weekEnd := weekStart.AddDays(calendar.DaysPerWeek - 1)

	return model.SlotWindow{
		DayOfWeek:      *dow,
		StartDayOfWeek: *startDow,
		EndDayOfWeek:   *endDow,
		StartTime:      start,
		EndTime:        end,
		WeekStartDate:  weekStart,
		WeekEndDate:    &weekEnd,
		StartDate:      startDate,
		EndDate:        endDate,
		Active:         true,
	}, nil
}

// week_start_date — понедельник, и это неделя start_date, если она задана.
func checkWeekAnchor(weekStart model.Date, startDate *model.Date) error {
	if err := calendar.ValidateWeekStart(weekStart); err != nil {
		return err
	}
	if startDate != nil && !calendar.WeekStart(*startDate).Equal(weekStart) {
		return calendar.Invalid("week_start_date",
			fmt.Sprintf("%s is not the week of start_date %s", weekStart, startDate))
	}
	return nil
}

// Ночное окно заканчивается на следующий день.
func defaultEndDay(startDow int, start, end model.TimeOfDay) int {
	if end <= start {
		return (startDow + 1) % calendar.DaysPerWeek
	}
	return startDow
}

func (m *SlotManager[T, P]) saveSeries(ctx context.Context, id, ownerID uuid.UUID, req SlotRequest, count int) error {
	raw, err := json.Marshal(req.pattern())
	if err != nil {
		return fmt.Errorf("marshal pattern: %w", err)
	}
	anchor, err := calendar.ParseDate(req.StartDate, false)
	if err != nil {
		return err
	}

	series := &model.SlotSeries{
		ID:            id,
		OwnerKind:     m.kind,
		OwnerID:       ownerID,
		StartDate:     *anchor,
		Pattern:       datatypes.JSON(raw),
		InstanceCount: count,
	}
	if err := m.series.Create(ctx, series); err != nil {
		return fmt.Errorf("create slot series: %w", err)
	}
	return nil
}

func (m *SlotManager[T, P]) weekSlots(ctx context.Context, ownerID uuid.UUID, weekStart model.Date) ([]model.Slot, error) {
	rows, err := m.slots.ListByOwnerWeek(ctx, ownerID, weekStart)
	if err != nil {
		return nil, fmt.Errorf("list %s slots for week %s: %w", m.kind, weekStart, err)
	}
	out := make([]model.Slot, 0, len(rows))
	for i := range rows {
		out = append(out, P(&rows[i]))
	}
	return out, nil
}

// Get возвращает слот по ID.
func (m *SlotManager[T, P]) Get(ctx context.Context, slotID uuid.UUID) (P, error) {
	slot, err := m.slots.GetByID(ctx, slotID)
	if err != nil {
		return nil, lookupErr(err, string(m.kind)+"_slot", slotID.String())
	}
	return P(slot), nil
}

// GetSeries возвращает шаблон серии и её активные экземпляры.
func (m *SlotManager[T, P]) GetSeries(ctx context.Context, seriesID uuid.UUID) (*model.SlotSeries, []P, error) {
	series, err := m.series.GetByID(ctx, seriesID)
	if err != nil {
		return nil, nil, lookupErr(err, "slot_series", seriesID.String())
	}
	if series.OwnerKind != m.kind {
		return nil, nil, calendar.NotFound("slot_series", seriesID.String())
	}

	rows, err := m.slots.ListBySeries(ctx, seriesID)
	if err != nil {
		return nil, nil, fmt.Errorf("list series %s: %w", seriesID, err)
	}
	out := make([]P, 0, len(rows))
	for i := range rows {
		out = append(out, P(&rows[i]))
	}
	return series, out, nil
}

// ListSeries — серии владельца, новые первыми.
func (m *SlotManager[T, P]) ListSeries(ctx context.Context, ownerID uuid.UUID) ([]model.SlotSeries, error) {
	series, err := m.series.ListByOwner(ctx, m.kind, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list %s series: %w", m.kind, err)
	}
	return series, nil
}

// Update применяет заданные поля, проверяя каждое; logical_key пересчитывается при сохранении.
func (m *SlotManager[T, P]) Update(ctx context.Context, slotID uuid.UUID, upd SlotUpdate) (P, error) {
	slot, err := m.Get(ctx, slotID)
	if err != nil {
		return nil, err
	}
	w := slot.Window()

	if err := applyUpdate(w, upd); err != nil {
		return nil, err
	}

	owner, err := calendar.ValidateOwner(ctx, m.owners, m.kind, slot.OwnerID())
	if err != nil {
		return nil, err
	}

	if m.checkWeek != nil && w.Active {
		existing, err := m.weekSlots(ctx, slot.OwnerID(), *w.WeekStartDate)
		if err != nil {
			return nil, err
		}
		id := slot.SlotID()
		if err := m.checkWeek(ctx, owner, *w.WeekStartDate, existing, []P{slot}, &id); err != nil {
			return nil, err
		}
	}

	if err := m.slots.Update(ctx, (*T)(slot)); err != nil {
		return nil, fmt.Errorf("update %s slot: %w", m.kind, err)
	}

	m.log.Info().Str("slot_id", slotID.String()).Msg("slot updated")
	return slot, nil
}

func applyUpdate(w *model.SlotWindow, upd SlotUpdate) error {
	timesChanged := upd.StartTime != nil || upd.EndTime != nil

	if upd.DayOfWeek != nil {
		dow, err := calendar.ValidateDayOfWeek(upd.DayOfWeek, false)
		if err != nil {
			return err
		}
		w.DayOfWeek = *dow
		if upd.StartDayOfWeek == nil {
			w.StartDayOfWeek = *dow
		}
	}
	if upd.StartDayOfWeek != nil {
		dow, err := calendar.ValidateDayOfWeek(upd.StartDayOfWeek, false)
		if err != nil {
			return err
		}
		w.StartDayOfWeek = *dow
	}
	if upd.StartTime != nil {
		t, err := calendar.ParseTime(*upd.StartTime)
		if err != nil {
			return err
		}
		w.StartTime = t
	}
	if upd.EndTime != nil {
		t, err := calendar.ParseTime(*upd.EndTime)
		if err != nil {
			return err
		}
		w.EndTime = t
	}

	switch {
	case upd.EndDayOfWeek != nil:
		dow, err := calendar.ValidateDayOfWeek(upd.EndDayOfWeek, false)
		if err != nil {
			return err
		}
		w.EndDayOfWeek = *dow
	case timesChanged || upd.DayOfWeek != nil || upd.StartDayOfWeek != nil:
		w.EndDayOfWeek = defaultEndDay(w.StartDayOfWeek, w.StartTime, w.EndTime)
	}

	if err := calendar.ValidateDayRange(w.StartDayOfWeek, w.EndDayOfWeek); err != nil {
		return err
	}
	if err := calendar.ValidateTimeWindow(w.StartTime, w.EndTime, w.StartDayOfWeek, w.EndDayOfWeek); err != nil {
		return err
	}

	if upd.StartDate != nil {
		d, err := calendar.ParseDate(*upd.StartDate, true)
		if err != nil {
			return err
		}
		w.StartDate = d
	}
	if upd.EndDate != nil {
		d, err := calendar.ParseDate(*upd.EndDate, true)
		if err != nil {
			return err
		}
		w.EndDate = d
	}
	if w.StartDate != nil && w.EndDate != nil && w.EndDate.Before(*w.StartDate) {
		return calendar.Invalid("end_date", "is before start_date")
	}

	// Неделя слота следует за start_date: по ней считается квота.
	var ws *model.Date
	switch {
	case upd.WeekStartDate != nil:
		d, err := calendar.ParseDate(*upd.WeekStartDate, false)
		if err != nil {
			return err
		}
		ws = d
	case upd.StartDate != nil && w.StartDate != nil, w.WeekStartDate == nil:
		d := calendar.WeekStart(model.DateOf(timeNow()))
		if w.StartDate != nil {
			d = calendar.WeekStart(*w.StartDate)
		}
		ws = &d
	}
	if ws != nil {
		if err := checkWeekAnchor(*ws, w.StartDate); err != nil {
			return err
		}
		we := ws.AddDays(calendar.DaysPerWeek - 1)
		w.WeekStartDate, w.WeekEndDate = ws, &we
	}

	if upd.Active != nil {
		w.Active = *upd.Active
	}
	return nil
}

// Delete деактивирует слот; с fromDate и серией — все экземпляры серии с start_date >= fromDate.
func (m *SlotManager[T, P]) Delete(ctx context.Context, slotID uuid.UUID, fromDate *string) (int64, error) {
	slot, err := m.Get(ctx, slotID)
	if err != nil {
		return 0, err
	}

	w := slot.Window()
	var affected int64
	if fromDate != nil && w.SeriesID != nil {
		from, err := calendar.ParseDate(*fromDate, false)
		if err != nil {
			return 0, err
		}
		affected, err = m.slots.DeactivateSeriesFrom(ctx, *w.SeriesID, *from)
		if err != nil {
			return 0, fmt.Errorf("deactivate series %s: %w", *w.SeriesID, err)
		}
	} else {
		if err := m.slots.Deactivate(ctx, slotID); err != nil {
			return 0, lookupErr(err, string(m.kind)+"_slot", slotID.String())
		}
		affected = 1
	}

	metrics.AddSlotsDeactivated(string(m.kind), affected)
	m.log.Info().
		Str("slot_id", slotID.String()).
		Int64("deactivated", affected).
		Msg("slots deactivated")
	return affected, nil
}

// ListForWeek — активные слоты владельца за неделю; weekStart обязан быть понедельником.
func (m *SlotManager[T, P]) ListForWeek(ctx context.Context, ownerID uuid.UUID, weekStart *string) ([]P, error) {
	ws, err := calendar.ParseDate(weekStart, false)
	if err != nil {
		return nil, err
	}
	if err := calendar.ValidateWeekStart(*ws); err != nil {
		return nil, err
	}

	rows, err := m.slots.ListByOwnerWeek(ctx, ownerID, *ws)
	if err != nil {
		return nil, fmt.Errorf("list %s slots: %w", m.kind, err)
	}
	out := make([]P, 0, len(rows))
	for i := range rows {
		out = append(out, P(&rows[i]))
	}
	return out, nil
}
