package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/bilalhaider11/ale-backend-sub000/internal/calendar"
)

// ErrSlotBusy — слот или владелец уже заняты на это время, либо запись держит другой вызов.
var ErrSlotBusy = errors.New("slot is busy")

// lookupErr переводит gorm.ErrRecordNotFound в NotFoundError, остальное оборачивает.
func lookupErr(err error, resource, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return calendar.NotFound(resource, id)
	}
	return fmt.Errorf("load %s %s: %w", resource, id, err)
}
