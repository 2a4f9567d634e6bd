package calendar

import (
	"context"

	"github.com/google/uuid"

	"github.com/bilalhaider11/ale-backend-sub000/internal/model"
)

// Владелец слота: сотрудник или пациент.
type Owner struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Kind           model.OwnerKind
	Active         bool
	// Только для пациента.
	WeeklyQuota     *float64
	CarePeriodStart *model.Date
	CarePeriodEnd   *model.Date
}

// Источник данных о владельцах.
// В реале это репозиторий сотрудников или пациентов, в тестах — мок.
type OwnerStore interface {
	FindOwner(ctx context.Context, id uuid.UUID) (*Owner, error)
}

// ValidateOwner:
//   - проверяет идентификатор;
//   - вытаскивает владельца из хранилища;
//   - проверяет, что он активен.
func ValidateOwner(ctx context.Context, store OwnerStore, kind model.OwnerKind, id uuid.UUID) (*Owner, error) {
	if id == uuid.Nil {
		return nil, invalid(string(kind)+"_id", "is required")
	}

	o, err := store.FindOwner(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, NotFound(string(kind), id.String())
	}

	if !o.Active {
		return nil, invalid(string(kind)+"_id", "is inactive")
	}
	return o, nil
}

// InCarePeriod — дата внутри периода ухода; у сотрудника период не задан и всегда открыт.
func (o *Owner) InCarePeriod(d model.Date) bool {
	if o.CarePeriodStart != nil && d.Before(*o.CarePeriodStart) {
		return false
	}
	if o.CarePeriodEnd != nil && d.After(*o.CarePeriodEnd) {
		return false
	}
	return true
}
