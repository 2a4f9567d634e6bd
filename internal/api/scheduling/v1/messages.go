package schedulingv1

// Время приходит строкой "HH:MM", даты — "YYYY-MM-DD"; разбор и проверка значений на стороне сервиса.

type Employee struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
	DisplayName    string `json:"display_name"`
	Active         bool   `json:"active"`
}

type Patient struct {
	ID              string   `json:"id"`
	OrganizationID  string   `json:"organization_id"`
	DisplayName     string   `json:"display_name"`
	Active          bool     `json:"active"`
	WeeklyQuota     *float64 `json:"weekly_quota,omitempty"`
	CarePeriodStart string   `json:"care_period_start,omitempty"`
	CarePeriodEnd   string   `json:"care_period_end,omitempty"`
}

type UpsertEmployeeRequest struct {
	ID             string `json:"id" validate:"omitempty,uuid"`
	OrganizationID string `json:"organization_id" validate:"required,uuid"`
	DisplayName    string `json:"display_name" validate:"required,max=255"`
	Active         *bool  `json:"active"`
}

type UpsertPatientRequest struct {
	ID             string `json:"id" validate:"omitempty,uuid"`
	OrganizationID string `json:"organization_id" validate:"required,uuid"`
	DisplayName    string `json:"display_name" validate:"required,max=255"`
	Active         *bool  `json:"active"`

	// nil оставляет квоту как есть, ClearWeeklyQuota снимает её.
	WeeklyQuota      *float64 `json:"weekly_quota"`
	ClearWeeklyQuota bool     `json:"clear_weekly_quota"`

	// Период ухода меняется, только если задано хотя бы одно из полей.
	CarePeriodStart *string `json:"care_period_start"`
	CarePeriodEnd   *string `json:"care_period_end"`
}

type Shift struct {
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

// SlotInput — либо явные поля одного слота, либо шаблон повторения от start_date.
type SlotInput struct {
	DayOfWeek      *int    `json:"day_of_week"`
	StartDayOfWeek *int    `json:"start_day_of_week"`
	EndDayOfWeek   *int    `json:"end_day_of_week"`
	StartTime      string  `json:"start_time"`
	EndTime        string  `json:"end_time"`
	WeekStartDate  *string `json:"week_start_date"`
	StartDate      *string `json:"start_date"`
	EndDate        *string `json:"end_date"`

	DurationWeeks int     `json:"duration_weeks" validate:"gte=0,lte=104"`
	SelectedDays  []int   `json:"selected_days" validate:"dive,gte=0,lte=6"`
	Shifts        []Shift `json:"shifts" validate:"dive"`
}

type Slot struct {
	ID             string `json:"id"`
	OwnerKind      string `json:"owner_kind"`
	OwnerID        string `json:"owner_id"`
	DayOfWeek      int    `json:"day_of_week"`
	StartDayOfWeek int    `json:"start_day_of_week"`
	EndDayOfWeek   int    `json:"end_day_of_week"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	WeekStartDate  string `json:"week_start_date,omitempty"`
	WeekEndDate    string `json:"week_end_date,omitempty"`
	StartDate      string `json:"start_date,omitempty"`
	EndDate        string `json:"end_date,omitempty"`
	SeriesID       string `json:"series_id,omitempty"`
	LogicalKey     string `json:"logical_key"`
	Active         bool   `json:"active"`
}

type CreateAvailabilitySlotsRequest struct {
	EmployeeID string    `json:"employee_id" validate:"required,uuid"`
	Slot       SlotInput `json:"slot"`
}

type CreatePatientCareSlotsRequest struct {
	PatientID string    `json:"patient_id" validate:"required,uuid"`
	Slot      SlotInput `json:"slot"`

	AssignedEmployeeID *string `json:"assigned_employee_id" validate:"omitempty,uuid"`
	VisitDate          *string `json:"visit_date"`
}

type SlotsResponse struct {
	Slots  []Slot  `json:"slots"`
	Visits []Visit `json:"visits,omitempty"`
}

type UpdatePatientCareSlotRequest struct {
	SlotID string `json:"slot_id" validate:"required,uuid"`

	DayOfWeek      *int    `json:"day_of_week"`
	StartDayOfWeek *int    `json:"start_day_of_week"`
	EndDayOfWeek   *int    `json:"end_day_of_week"`
	StartTime      *string `json:"start_time"`
	EndTime        *string `json:"end_time"`
	WeekStartDate  *string `json:"week_start_date"`
	StartDate      *string `json:"start_date"`
	EndDate        *string `json:"end_date"`
	Active         *bool   `json:"active"`
}

type DeleteSlotRequest struct {
	OwnerKind string `json:"owner_kind" validate:"required,oneof=employee patient"`
	SlotID    string `json:"slot_id" validate:"required,uuid"`
	// С датой и серией деактивируются все экземпляры серии начиная с неё.
	FromDate *string `json:"from_date"`
}

type DeleteSlotResponse struct {
	Deactivated int64 `json:"deactivated"`
}

type FindAvailableEmployeesRequest struct {
	PatientID       string   `json:"patient_id" validate:"omitempty,uuid"`
	StartTime       string   `json:"start_time"`
	EndTime         string   `json:"end_time"`
	VisitDate       string   `json:"visit_date"`
	OrganizationIDs []string `json:"organization_ids" validate:"dive,uuid"`
	EmployeeID      *string  `json:"employee_id" validate:"omitempty,uuid"`
	Page            int      `json:"page" validate:"gte=0"`
	PageSize        int      `json:"page_size" validate:"gte=0,lte=500"`
}

type AvailabilityMatch struct {
	Slot          Slot    `json:"slot"`
	MatchType     string  `json:"match_type"`
	Offset        float64 `json:"offset"`
	AvailableFrom string  `json:"available_from"`
	AvailableTo   string  `json:"available_to"`
}

type FindAvailableEmployeesResponse struct {
	Matches []AvailabilityMatch `json:"matches"`
	Page    PageInfo            `json:"page"`
}

type FindCareSlotsForEmployeeRequest struct {
	EmployeeID      string   `json:"employee_id" validate:"omitempty,uuid"`
	StartTime       string   `json:"start_time"`
	EndTime         string   `json:"end_time"`
	VisitDate       string   `json:"visit_date"`
	OrganizationIDs []string `json:"organization_ids" validate:"dive,uuid"`
	Page            int      `json:"page" validate:"gte=0"`
	PageSize        int      `json:"page_size" validate:"gte=0,lte=500"`
}

type CareSlotMatch struct {
	Slot      Slot    `json:"slot"`
	MatchType string  `json:"match_type"`
	Offset    float64 `json:"offset"`
}

type FindCareSlotsForEmployeeResponse struct {
	Matches []CareSlotMatch `json:"matches"`
	Page    PageInfo        `json:"page"`
}

type PageInfo struct {
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	Total    int  `json:"total"`
	HasNext  bool `json:"has_next"`
	HasPrev  bool `json:"has_prev"`
}

type BookVisitRequest struct {
	AvailabilitySlotID string  `json:"availability_slot_id" validate:"required,uuid"`
	PatientCareSlotID  string  `json:"patient_care_slot_id" validate:"required,uuid"`
	VisitDate          string  `json:"visit_date" validate:"required"`
	StartTime          *string `json:"start_time"`
	EndTime            *string `json:"end_time"`
}

type TransitionVisitRequest struct {
	VisitID string `json:"visit_id" validate:"required,uuid"`
	Status  string `json:"status" validate:"required"`
}

type Visit struct {
	ID                  string `json:"id"`
	PatientID           string `json:"patient_id"`
	EmployeeID          string `json:"employee_id"`
	VisitDate           string `json:"visit_date"`
	ScheduledStartTime  string `json:"scheduled_start_time"`
	ScheduledEndTime    string `json:"scheduled_end_time"`
	AvailabilitySlotKey string `json:"availability_slot_key"`
	PatientCareSlotKey  string `json:"patient_care_slot_key"`
	Status              string `json:"status"`
	Active              bool   `json:"active"`
}
