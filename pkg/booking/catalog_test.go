package booking

import (
	"context"
	"errors"
	"testing"
)

func TestCreateLodgingForcesFreeState(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustCatalogService(test, store)

	lodging := &Lodging{LodgingID: "lodging-1", Name: "Cabin", State: ReservationStateHeld}
	if err := service.CreateLodging(context.Background(), lodging); err != nil {
		test.Fatalf("create lodging: %v", err)
	}
	stored, err := service.Lodging(context.Background(), mustLodgingID(test, "lodging-1"))
	if err != nil {
		test.Fatalf("lodging lookup: %v", err)
	}
	if stored.State != ReservationStateFree {
		test.Fatalf("expected new lodging free, got %s", stored.State)
	}
}

func TestCreateLodgingRequiresID(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustCatalogService(test, store)

	err := service.CreateLodging(context.Background(), &Lodging{Name: "No ID"})
	if !errors.Is(err, ErrInvalidLodgingID) {
		test.Fatalf("expected ErrInvalidLodgingID, got %v", err)
	}
}

func TestCreateLodgingDuplicateRejected(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustCatalogService(test, store)

	if err := service.CreateLodging(context.Background(), &Lodging{LodgingID: "lodging-1"}); err != nil {
		test.Fatalf("first create: %v", err)
	}
	err := service.CreateLodging(context.Background(), &Lodging{LodgingID: "lodging-1"})
	if !errors.Is(err, ErrDuplicateLodging) {
		test.Fatalf("expected ErrDuplicateLodging, got %v", err)
	}
}

func TestLodgingUnknownReported(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustCatalogService(test, store)

	_, err := service.Lodging(context.Background(), mustLodgingID(test, "lodging-absent"))
	if !errors.Is(err, ErrLodgingNotFound) {
		test.Fatalf("expected ErrLodgingNotFound, got %v", err)
	}
}

func TestListByCategoryFilters(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustCatalogService(test, store)

	seed := []Lodging{
		{LodgingID: "lodging-1", Category: "cabin"},
		{LodgingID: "lodging-2", Category: "cabin"},
		{LodgingID: "lodging-3", Category: "hotel"},
	}
	for index := range seed {
		if err := service.CreateLodging(context.Background(), &seed[index]); err != nil {
			test.Fatalf("seed lodging: %v", err)
		}
	}
	cabins, err := service.ListByCategory(context.Background(), "cabin")
	if err != nil {
		test.Fatalf("list by category: %v", err)
	}
	if len(cabins) != 2 {
		test.Fatalf("expected 2 cabins, got %d", len(cabins))
	}
}

func mustCatalogService(test *testing.T, store *stubStore) *CatalogService {
	test.Helper()
	service, err := NewCatalogService(store)
	if err != nil {
		test.Fatalf("catalog service: %v", err)
	}
	return service
}
