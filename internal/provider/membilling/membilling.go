// Package membilling is a development-mode BillingProvider that keeps
// customers and instruments in memory. Production deployments point the core
// at a real billing provider instead.
package membilling

import (
	"context"
	"fmt"
	"sync"

	"github.com/MarkoPoloResearchLab/staybook/pkg/booking"
	"github.com/google/uuid"
)

// Provider implements booking.BillingProvider in memory.
type Provider struct {
	mu        sync.Mutex
	customers map[string][]booking.Instrument
}

// New returns an empty Provider.
func New() *Provider {
	return &Provider{customers: make(map[string][]booking.Instrument)}
}

// CreateCustomer issues a fresh customer id.
func (provider *Provider) CreateCustomer(ctx context.Context, email booking.EmailAddress) (booking.CustomerID, error) {
	provider.mu.Lock()
	defer provider.mu.Unlock()
	id := uuid.NewString()
	provider.customers[id] = nil
	return booking.NewCustomerID(id)
}

// DeleteCustomer removes the customer and its instruments. Compensation hook;
// deleting an unknown customer is not an error.
func (provider *Provider) DeleteCustomer(ctx context.Context, customerID booking.CustomerID) error {
	provider.mu.Lock()
	defer provider.mu.Unlock()
	delete(provider.customers, customerID.String())
	return nil
}

// AttachInstrument stores a stub instrument derived from the token.
func (provider *Provider) AttachInstrument(ctx context.Context, customerID booking.CustomerID, token string) (booking.Instrument, error) {
	provider.mu.Lock()
	defer provider.mu.Unlock()
	instruments, ok := provider.customers[customerID.String()]
	if !ok {
		return booking.Instrument{}, fmt.Errorf("unknown customer %s", customerID.String())
	}
	instrument := booking.Instrument{
		InstrumentID: uuid.NewString(),
		Brand:        "dev",
		Last4:        last4(token),
	}
	provider.customers[customerID.String()] = append(instruments, instrument)
	return instrument, nil
}

// ListInstruments returns the customer's instruments.
func (provider *Provider) ListInstruments(ctx context.Context, customerID booking.CustomerID) ([]booking.Instrument, error) {
	provider.mu.Lock()
	defer provider.mu.Unlock()
	instruments, ok := provider.customers[customerID.String()]
	if !ok {
		return nil, fmt.Errorf("unknown customer %s", customerID.String())
	}
	copied := make([]booking.Instrument, len(instruments))
	copy(copied, instruments)
	return copied, nil
}

// RemoveInstrument detaches one instrument.
func (provider *Provider) RemoveInstrument(ctx context.Context, customerID booking.CustomerID, instrumentID string) error {
	provider.mu.Lock()
	defer provider.mu.Unlock()
	instruments, ok := provider.customers[customerID.String()]
	if !ok {
		return fmt.Errorf("unknown customer %s", customerID.String())
	}
	for index, instrument := range instruments {
		if instrument.InstrumentID == instrumentID {
			provider.customers[customerID.String()] = append(instruments[:index], instruments[index+1:]...)
			return nil
		}
	}
	return fmt.Errorf("unknown instrument %s", instrumentID)
}

func last4(token string) string {
	if len(token) < 4 {
		return token
	}
	return token[len(token)-4:]
}

var _ booking.BillingProvider = (*Provider)(nil)
