package service

import (
	"github.com/rs/zerolog"

	"github.com/bilalhaider11/ale-backend-sub000/internal/model"
	"github.com/bilalhaider11/ale-backend-sub000/internal/repository"
)

// AvailabilityService управляет слотами доступности сотрудников.
type AvailabilityService struct {
	*SlotManager[model.AvailabilitySlot, *model.AvailabilitySlot]
}

func NewAvailabilityService(
	slots repository.SlotRepository[model.AvailabilitySlot],
	series repository.SeriesRepository,
	employees repository.EmployeeRepository,
	log zerolog.Logger,
) *AvailabilityService {
	m := newSlotManager[model.AvailabilitySlot](
		model.OwnerKindEmployee,
		slots,
		series,
		employeeOwners{repo: employees},
		model.NewAvailabilitySlot,
		log.With().Str("component", "availability_service").Logger(),
	)
	return &AvailabilityService{SlotManager: m}
}
