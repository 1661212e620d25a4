package booking

import (
	"context"
	"fmt"
)

const (
	operationAddInstrument    = "add_instrument"
	operationRemoveInstrument = "remove_instrument"
)

// InstrumentService resolves a profile to its billing customer and delegates
// instrument management to the billing provider verbatim. No local state.
type InstrumentService struct {
	profiles ProfileStore
	billing  BillingProvider
	logger   OperationLogger
}

// NewInstrumentService wires an InstrumentService. A nil logger discards
// events.
func NewInstrumentService(profiles ProfileStore, billing BillingProvider, logger OperationLogger) (*InstrumentService, error) {
	if profiles == nil {
		return nil, fmt.Errorf("%w: profile store dependency is nil", ErrInvalidServiceConfig)
	}
	if billing == nil {
		return nil, fmt.Errorf("%w: billing provider dependency is nil", ErrInvalidServiceConfig)
	}
	if logger == nil {
		logger = NopLogger{}
	}
	return &InstrumentService{profiles: profiles, billing: billing, logger: logger}, nil
}

// AddInstrument attaches a tokenized instrument to the owner's billing
// customer.
func (service *InstrumentService) AddInstrument(ctx context.Context, owner AuthSubject, token string) (Instrument, error) {
	customerID, err := service.resolveCustomer(ctx, owner)
	if err != nil {
		return Instrument{}, err
	}
	instrument, err := service.billing.AttachInstrument(ctx, customerID, token)
	service.logger.LogOperation(ctx, OperationLog{
		Operation: operationAddInstrument,
		Subject:   owner.String(),
		Error:     err,
	})
	if err != nil {
		return Instrument{}, fmt.Errorf("%w: attach instrument: %v", ErrBillingProvider, err)
	}
	return instrument, nil
}

// ListInstruments returns the owner's instruments from the billing provider.
func (service *InstrumentService) ListInstruments(ctx context.Context, owner AuthSubject) ([]Instrument, error) {
	customerID, err := service.resolveCustomer(ctx, owner)
	if err != nil {
		return nil, err
	}
	instruments, err := service.billing.ListInstruments(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("%w: list instruments: %v", ErrBillingProvider, err)
	}
	return instruments, nil
}

// RemoveInstrument detaches an instrument from the owner's billing customer.
func (service *InstrumentService) RemoveInstrument(ctx context.Context, owner AuthSubject, instrumentID string) error {
	customerID, err := service.resolveCustomer(ctx, owner)
	if err != nil {
		return err
	}
	err = service.billing.RemoveInstrument(ctx, customerID, instrumentID)
	service.logger.LogOperation(ctx, OperationLog{
		Operation: operationRemoveInstrument,
		Subject:   owner.String(),
		Error:     err,
	})
	if err != nil {
		return fmt.Errorf("%w: remove instrument: %v", ErrBillingProvider, err)
	}
	return nil
}

func (service *InstrumentService) resolveCustomer(ctx context.Context, owner AuthSubject) (CustomerID, error) {
	profile, err := service.profiles.ProfileByAuthSubject(ctx, owner)
	if err != nil {
		return CustomerID{}, err
	}
	if profile == nil {
		return CustomerID{}, ErrProfileNotFound
	}
	if profile.BillingCustomer == "" {
		return CustomerID{}, ErrBillingNotLinked
	}
	return NewCustomerID(profile.BillingCustomer)
}
