package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	schedulingv1 "github.com/bilalhaider11/ale-backend-sub000/internal/api/scheduling/v1"
	"github.com/bilalhaider11/ale-backend-sub000/internal/calendar"
	"github.com/bilalhaider11/ale-backend-sub000/internal/model"
)

var validate = validator.New()

// SchedulingServer — gRPC-обёртка над сервисами расписания.
type SchedulingServer struct {
	schedulingv1.UnimplementedSchedulingServiceServer

	directory    *DirectoryService
	availability *AvailabilityService
	care         *CareSlotService
	matches      *MatchService
	visits       *VisitService
}

func NewSchedulingServer(
	directory *DirectoryService,
	availability *AvailabilityService,
	care *CareSlotService,
	matches *MatchService,
	visits *VisitService,
) *SchedulingServer {
	return &SchedulingServer{
		directory:    directory,
		availability: availability,
		care:         care,
		matches:      matches,
		visits:       visits,
	}
}

// toStatus переводит ошибки сервисов в коды gRPC.
func toStatus(err error) error {
	var verrs validator.ValidationErrors
	switch {
	case err == nil:
		return nil
	case errors.As(err, &verrs):
		return status.Error(codes.InvalidArgument, verrs.Error())
	case errors.Is(err, calendar.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, calendar.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ErrSlotBusy):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Errorf(codes.Internal, "%v", err)
	}
}

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, calendar.Invalid(field, "is not a valid uuid")
	}
	return id, nil
}

func parseOptionalID(field string, raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := parseID(field, *raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parseIDs(field string, raw []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := parseID(field, r)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func (s *SchedulingServer) UpsertEmployee(ctx context.Context, req *schedulingv1.UpsertEmployeeRequest) (*schedulingv1.Employee, error) {
	if err := validate.Struct(req); err != nil {
		return nil, toStatus(err)
	}
	in := EmployeeInput{DisplayName: req.DisplayName, Active: req.Active == nil || *req.Active}
	var err error
	if req.ID != "" {
		if in.ID, err = parseID("id", req.ID); err != nil {
			return nil, toStatus(err)
		}
	}
	if in.OrganizationID, err = parseID("organization_id", req.OrganizationID); err != nil {
		return nil, toStatus(err)
	}

	e, err := s.directory.UpsertEmployee(ctx, in)
	if err != nil {
		return nil, toStatus(err)
	}
	return &schedulingv1.Employee{
		ID:             e.ID.String(),
		OrganizationID: e.OrganizationID.String(),
		DisplayName:    e.DisplayName,
		Active:         e.Active,
	}, nil
}

func (s *SchedulingServer) UpsertPatient(ctx context.Context, req *schedulingv1.UpsertPatientRequest) (*schedulingv1.Patient, error) {
	if err := validate.Struct(req); err != nil {
		return nil, toStatus(err)
	}
	in := PatientInput{DisplayName: req.DisplayName, Active: req.Active == nil || *req.Active}
	var err error
	if req.ID != "" {
		if in.ID, err = parseID("id", req.ID); err != nil {
			return nil, toStatus(err)
		}
	}
	if in.OrganizationID, err = parseID("organization_id", req.OrganizationID); err != nil {
		return nil, toStatus(err)
	}

	p, err := s.directory.UpsertPatient(ctx, in)
	if err != nil {
		return nil, toStatus(err)
	}
	if req.WeeklyQuota != nil || req.ClearWeeklyQuota {
		quota := req.WeeklyQuota
		if req.ClearWeeklyQuota {
			quota = nil
		}
		if p, err = s.directory.SetWeeklyQuota(ctx, p.ID, quota); err != nil {
			return nil, toStatus(err)
		}
	}
	if req.CarePeriodStart != nil || req.CarePeriodEnd != nil {
		if p, err = s.directory.SetCarePeriod(ctx, p.ID, req.CarePeriodStart, req.CarePeriodEnd); err != nil {
			return nil, toStatus(err)
		}
	}
	return patientToPB(p), nil
}

func (s *SchedulingServer) CreateAvailabilitySlots(ctx context.Context, req *schedulingv1.CreateAvailabilitySlotsRequest) (*schedulingv1.SlotsResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, toStatus(err)
	}
	employeeID, err := parseID("employee_id", req.EmployeeID)
	if err != nil {
		return nil, toStatus(err)
	}

	slots, err := s.availability.Create(ctx, employeeID, slotRequestFromPB(req.Slot))
	if err != nil {
		return nil, toStatus(err)
	}
	return &schedulingv1.SlotsResponse{Slots: slotsToPB(slots)}, nil
}

func (s *SchedulingServer) CreatePatientCareSlots(ctx context.Context, req *schedulingv1.CreatePatientCareSlotsRequest) (*schedulingv1.SlotsResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, toStatus(err)
	}
	patientID, err := parseID("patient_id", req.PatientID)
	if err != nil {
		return nil, toStatus(err)
	}
	assigned, err := parseOptionalID("assigned_employee_id", req.AssignedEmployeeID)
	if err != nil {
		return nil, toStatus(err)
	}

	res, err := s.care.CreatePatientCareSlots(ctx, patientID, CareSlotRequest{
		SlotRequest:        slotRequestFromPB(req.Slot),
		AssignedEmployeeID: assigned,
		VisitDate:          req.VisitDate,
	})
	if err != nil {
		return nil, toStatus(err)
	}

	out := &schedulingv1.SlotsResponse{Slots: slotsToPB(res.Slots)}
	for _, v := range res.Visits {
		out.Visits = append(out.Visits, *visitToPB(v))
	}
	return out, nil
}

func (s *SchedulingServer) UpdatePatientCareSlot(ctx context.Context, req *schedulingv1.UpdatePatientCareSlotRequest) (*schedulingv1.Slot, error) {
	if err := validate.Struct(req); err != nil {
		return nil, toStatus(err)
	}
	slotID, err := parseID("slot_id", req.SlotID)
	if err != nil {
		return nil, toStatus(err)
	}

	slot, err := s.care.UpdatePatientCareSlot(ctx, slotID, SlotUpdate{
		DayOfWeek:      req.DayOfWeek,
		StartDayOfWeek: req.StartDayOfWeek,
		EndDayOfWeek:   req.EndDayOfWeek,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		WeekStartDate:  req.WeekStartDate,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		Active:         req.Active,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	pb := slotToPB(slot)
	return &pb, nil
}

func (s *SchedulingServer) DeleteSlot(ctx context.Context, req *schedulingv1.DeleteSlotRequest) (*schedulingv1.DeleteSlotResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, toStatus(err)
	}
	slotID, err := parseID("slot_id", req.SlotID)
	if err != nil {
		return nil, toStatus(err)
	}

	var n int64
	if model.OwnerKind(req.OwnerKind) == model.OwnerKindEmployee {
		n, err = s.availability.Delete(ctx, slotID, req.FromDate)
	} else {
		n, err = s.care.Delete(ctx, slotID, req.FromDate)
	}
	if err != nil {
		return nil, toStatus(err)
	}
	return &schedulingv1.DeleteSlotResponse{Deactivated: n}, nil
}

func (s *SchedulingServer) FindAvailableEmployees(ctx context.Context, req *schedulingv1.FindAvailableEmployeesRequest) (*schedulingv1.FindAvailableEmployeesResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, toStatus(err)
	}
	q := AvailabilityQuery{
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		VisitDate: req.VisitDate,
		Page:      req.Page,
		PageSize:  req.PageSize,
	}
	var err error
	if req.PatientID != "" {
		if q.PatientID, err = parseID("patient_id", req.PatientID); err != nil {
			return nil, toStatus(err)
		}
	}
	if q.OrgIDs, err = parseIDs("organization_ids", req.OrganizationIDs); err != nil {
		return nil, toStatus(err)
	}
	if q.EmployeeID, err = parseOptionalID("employee_id", req.EmployeeID); err != nil {
		return nil, toStatus(err)
	}

	page, err := s.matches.FindAvailableEmployees(ctx, q)
	if err != nil {
		return nil, toStatus(err)
	}

	out := calendar.MapPage(page, func(m AvailabilityMatch) schedulingv1.AvailabilityMatch {
		return schedulingv1.AvailabilityMatch{
			Slot:          slotToPB(&m.Slot),
			MatchType:     string(m.MatchType),
			Offset:        m.Offset,
			AvailableFrom: m.AvailableFrom.String(),
			AvailableTo:   m.AvailableTo.String(),
		}
	})
	return &schedulingv1.FindAvailableEmployeesResponse{Matches: out.Items, Page: pageInfo(out)}, nil
}

func (s *SchedulingServer) FindCareSlotsForEmployee(ctx context.Context, req *schedulingv1.FindCareSlotsForEmployeeRequest) (*schedulingv1.FindCareSlotsForEmployeeResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, toStatus(err)
	}
	q := CareSlotQuery{
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		VisitDate: req.VisitDate,
		Page:      req.Page,
		PageSize:  req.PageSize,
	}
	var err error
	if req.EmployeeID != "" {
		if q.EmployeeID, err = parseID("employee_id", req.EmployeeID); err != nil {
			return nil, toStatus(err)
		}
	}
	if q.OrgIDs, err = parseIDs("organization_ids", req.OrganizationIDs); err != nil {
		return nil, toStatus(err)
	}

	page, err := s.matches.FindCareSlotsForEmployee(ctx, q)
	if err != nil {
		return nil, toStatus(err)
	}

	out := calendar.MapPage(page, func(m CareSlotMatch) schedulingv1.CareSlotMatch {
		return schedulingv1.CareSlotMatch{
			Slot:      slotToPB(&m.Slot),
			MatchType: string(m.MatchType),
			Offset:    m.Offset,
		}
	})
	return &schedulingv1.FindCareSlotsForEmployeeResponse{Matches: out.Items, Page: pageInfo(out)}, nil
}

func (s *SchedulingServer) BookVisit(ctx context.Context, req *schedulingv1.BookVisitRequest) (*schedulingv1.Visit, error) {
	if err := validate.Struct(req); err != nil {
		return nil, toStatus(err)
	}
	availID, err := parseID("availability_slot_id", req.AvailabilitySlotID)
	if err != nil {
		return nil, toStatus(err)
	}
	careID, err := parseID("patient_care_slot_id", req.PatientCareSlotID)
	if err != nil {
		return nil, toStatus(err)
	}

	v, err := s.visits.Book(ctx, BookVisitInput{
		AvailabilitySlotID: availID,
		PatientCareSlotID:  careID,
		VisitDate:          req.VisitDate,
		StartTime:          req.StartTime,
		EndTime:            req.EndTime,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return visitToPB(v), nil
}

func (s *SchedulingServer) TransitionVisit(ctx context.Context, req *schedulingv1.TransitionVisitRequest) (*schedulingv1.Visit, error) {
	if err := validate.Struct(req); err != nil {
		return nil, toStatus(err)
	}
	visitID, err := parseID("visit_id", req.VisitID)
	if err != nil {
		return nil, toStatus(err)
	}

	v, err := s.visits.Transition(ctx, visitID, model.VisitStatus(req.Status))
	if err != nil {
		return nil, toStatus(err)
	}
	return visitToPB(v), nil
}

// LoggingInterceptor пишет метод, код ответа и длительность каждого вызова.
func LoggingInterceptor(log zerolog.Logger) grpc.UnaryServerInterceptor {
	log = log.With().Str("component", "grpc").Logger()
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		started := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		ev := log.Info()
		if code == codes.Internal || code == codes.Unknown {
			ev = log.Error().Err(err)
		}
		ev.Str("method", info.FullMethod).
			Str("code", code.String()).
			Dur("took", time.Since(started)).
			Msg("rpc")
		return resp, err
	}
}

func slotRequestFromPB(in schedulingv1.SlotInput) SlotRequest {
	shifts := make([]calendar.Shift, 0, len(in.Shifts))
	for _, sh := range in.Shifts {
		shifts = append(shifts, calendar.Shift{StartTime: sh.StartTime, EndTime: sh.EndTime})
	}
	return SlotRequest{
		DayOfWeek:      in.DayOfWeek,
		StartDayOfWeek: in.StartDayOfWeek,
		EndDayOfWeek:   in.EndDayOfWeek,
		StartTime:      in.StartTime,
		EndTime:        in.EndTime,
		WeekStartDate:  in.WeekStartDate,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		DurationWeeks:  in.DurationWeeks,
		SelectedDays:   in.SelectedDays,
		Shifts:         shifts,
	}
}

func dateString(d *model.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func slotToPB(s model.Slot) schedulingv1.Slot {
	w := s.Window()
	out := schedulingv1.Slot{
		ID:             s.SlotID().String(),
		OwnerKind:      string(s.Kind()),
		OwnerID:        s.OwnerID().String(),
		DayOfWeek:      w.DayOfWeek,
		StartDayOfWeek: w.StartDayOfWeek,
		EndDayOfWeek:   w.EndDayOfWeek,
		StartTime:      w.StartTime.String(),
		EndTime:        w.EndTime.String(),
		WeekStartDate:  dateString(w.WeekStartDate),
		WeekEndDate:    dateString(w.WeekEndDate),
		StartDate:      dateString(w.StartDate),
		EndDate:        dateString(w.EndDate),
		LogicalKey:     w.LogicalKey,
		Active:         w.Active,
	}
	if w.SeriesID != nil {
		out.SeriesID = w.SeriesID.String()
	}
	return out
}

func slotsToPB[S model.Slot](slots []S) []schedulingv1.Slot {
	out := make([]schedulingv1.Slot, 0, len(slots))
	for _, s := range slots {
		out = append(out, slotToPB(s))
	}
	return out
}

func patientToPB(p *model.Patient) *schedulingv1.Patient {
	return &schedulingv1.Patient{
		ID:              p.ID.String(),
		OrganizationID:  p.OrganizationID.String(),
		DisplayName:     p.DisplayName,
		Active:          p.Active,
		WeeklyQuota:     p.WeeklyQuota,
		CarePeriodStart: dateString(p.CarePeriodStart),
		CarePeriodEnd:   dateString(p.CarePeriodEnd),
	}
}

func visitToPB(v *model.CareVisit) *schedulingv1.Visit {
	return &schedulingv1.Visit{
		ID:                  v.ID.String(),
		PatientID:           v.PatientID.String(),
		EmployeeID:          v.EmployeeID.String(),
		VisitDate:           v.VisitDate.String(),
		ScheduledStartTime:  v.ScheduledStartTime.String(),
		ScheduledEndTime:    v.ScheduledEndTime.String(),
		AvailabilitySlotKey: v.AvailabilitySlotKey,
		PatientCareSlotKey:  v.PatientCareSlotKey,
		Status:              string(v.Status),
		Active:              v.Active,
	}
}

func pageInfo[T any](p calendar.Page[T]) schedulingv1.PageInfo {
	return schedulingv1.PageInfo{
		Page:     p.Page,
		PageSize: p.PageSize,
		Total:    p.Total,
		HasNext:  p.HasNext,
		HasPrev:  p.HasPrev,
	}
}
