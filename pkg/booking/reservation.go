package booking

import (
	"context"
	"fmt"
)

const operationReserve = "reserve"

// ReservationService performs the exclusive free-to-held transition of a
// lodging's single reservation slot. Held is terminal: no release operation
// exists.
type ReservationService struct {
	lodgings LodgingStore
	logger   OperationLogger
}

// NewReservationService wires a ReservationService. A nil logger discards
// events.
func NewReservationService(lodgings LodgingStore, logger OperationLogger) (*ReservationService, error) {
	if lodgings == nil {
		return nil, fmt.Errorf("%w: lodging store dependency is nil", ErrInvalidServiceConfig)
	}
	if logger == nil {
		logger = NopLogger{}
	}
	return &ReservationService{lodgings: lodgings, logger: logger}, nil
}

// Reserve marks the lodging held. The storage layer applies "set held where
// state is free" as one conditional update and its reported outcome decides
// the result; of N concurrent callers exactly one succeeds and the rest see
// ErrAlreadyReserved. Unknown lodgings yield ErrLodgingNotFound.
func (service *ReservationService) Reserve(ctx context.Context, lodgingID LodgingID) error {
	err := service.lodgings.MarkReserved(ctx, lodgingID)
	service.logger.LogOperation(ctx, OperationLog{
		Operation: operationReserve,
		LodgingID: lodgingID.String(),
		Error:     err,
	})
	return err
}
