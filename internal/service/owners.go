package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bilalhaider11/ale-backend-sub000/internal/calendar"
	"github.com/bilalhaider11/ale-backend-sub000/internal/model"
	"github.com/bilalhaider11/ale-backend-sub000/internal/repository"
)

type employeeOwners struct {
	repo repository.EmployeeRepository
}

func (o employeeOwners) FindOwner(ctx context.Context, id uuid.UUID) (*calendar.Owner, error) {
	e, err := o.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &calendar.Owner{
		ID:             e.ID,
		OrganizationID: e.OrganizationID,
		Kind:           model.OwnerKindEmployee,
		Active:         e.Active,
	}, nil
}

type patientOwners struct {
	repo repository.PatientRepository
}

func (o patientOwners) FindOwner(ctx context.Context, id uuid.UUID) (*calendar.Owner, error) {
	p, err := o.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return patientOwner(p), nil
}

func patientOwner(p *model.Patient) *calendar.Owner {
	return &calendar.Owner{
		ID:              p.ID,
		OrganizationID:  p.OrganizationID,
		Kind:            model.OwnerKindPatient,
		Active:          p.Active,
		WeeklyQuota:     p.WeeklyQuota,
		CarePeriodStart: p.CarePeriodStart,
		CarePeriodEnd:   p.CarePeriodEnd,
	}
}
