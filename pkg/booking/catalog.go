package booking

import (
	"context"
	"fmt"
)

// CatalogService is the thin listing-management surface over the lodging
// store. Everything here is plain CRUD; the reservation transition lives in
// ReservationService.
type CatalogService struct {
	lodgings LodgingStore
}

// NewCatalogService wires a CatalogService.
func NewCatalogService(lodgings LodgingStore) (*CatalogService, error) {
	if lodgings == nil {
		return nil, fmt.Errorf("%w: lodging store dependency is nil", ErrInvalidServiceConfig)
	}
	return &CatalogService{lodgings: lodgings}, nil
}

// CreateLodging stores a new lodging with a free reservation slot.
func (service *CatalogService) CreateLodging(ctx context.Context, lodging *Lodging) error {
	if _, err := NewLodgingID(lodging.LodgingID); err != nil {
		return err
	}
	lodging.State = ReservationStateFree
	return service.lodgings.CreateLodging(ctx, lodging)
}

// Lodging returns one lodging by id.
func (service *CatalogService) Lodging(ctx context.Context, lodgingID LodgingID) (*Lodging, error) {
	lodging, err := service.lodgings.LodgingByID(ctx, lodgingID)
	if err != nil {
		return nil, err
	}
	if lodging == nil {
		return nil, ErrLodgingNotFound
	}
	return lodging, nil
}

// ListByCategory returns all lodgings of one category.
func (service *CatalogService) ListByCategory(ctx context.Context, category string) ([]Lodging, error) {
	return service.lodgings.ListByCategory(ctx, category)
}

// SearchByLocation returns lodgings whose location contains the query,
// case-insensitive.
func (service *CatalogService) SearchByLocation(ctx context.Context, location string) ([]Lodging, error) {
	return service.lodgings.SearchByLocation(ctx, location)
}
