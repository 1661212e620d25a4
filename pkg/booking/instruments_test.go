package booking

import (
	"context"
	"errors"
	"testing"
)

func TestAddInstrumentAttachesToBillingCustomer(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	auth := newStubAuthenticator(test)
	billing := newStubBilling(test)
	identity := mustIdentityService(test, store, auth, billing, nil)
	profile := mustSignUp(test, identity, "ada", "ada@example.com")
	service := mustInstrumentService(test, store, billing)
	owner := mustAuthSubject(test, profile.AuthSubject)

	instrument, err := service.AddInstrument(context.Background(), owner, "tok_visa")
	if err != nil {
		test.Fatalf("add instrument: %v", err)
	}
	if instrument.InstrumentID == "" {
		test.Fatalf("expected provider-issued instrument id")
	}

	instruments, err := service.ListInstruments(context.Background(), owner)
	if err != nil {
		test.Fatalf("list instruments: %v", err)
	}
	if len(instruments) != 1 || instruments[0].InstrumentID != instrument.InstrumentID {
		test.Fatalf("unexpected instruments: %+v", instruments)
	}
}

func TestRemoveInstrumentDetaches(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	auth := newStubAuthenticator(test)
	billing := newStubBilling(test)
	identity := mustIdentityService(test, store, auth, billing, nil)
	profile := mustSignUp(test, identity, "ada", "ada@example.com")
	service := mustInstrumentService(test, store, billing)
	owner := mustAuthSubject(test, profile.AuthSubject)

	instrument, err := service.AddInstrument(context.Background(), owner, "tok_visa")
	if err != nil {
		test.Fatalf("add instrument: %v", err)
	}
	if err := service.RemoveInstrument(context.Background(), owner, instrument.InstrumentID); err != nil {
		test.Fatalf("remove instrument: %v", err)
	}
	instruments, err := service.ListInstruments(context.Background(), owner)
	if err != nil {
		test.Fatalf("list instruments: %v", err)
	}
	if len(instruments) != 0 {
		test.Fatalf("expected no instruments, got %d", len(instruments))
	}
}

func TestInstrumentUnknownSubject(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	billing := newStubBilling(test)
	service := mustInstrumentService(test, store, billing)

	_, err := service.ListInstruments(context.Background(), mustAuthSubject(test, "subject-absent"))
	if !errors.Is(err, ErrProfileNotFound) {
		test.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestInstrumentProfileWithoutBillingLink(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	billing := newStubBilling(test)
	profile := &UserProfile{
		DisplayName: "Ada",
		LoginName:   "ada",
		Email:       "ada@example.com",
		AuthSubject: "subject-unlinked",
	}
	if err := store.CreateProfile(context.Background(), profile); err != nil {
		test.Fatalf("seed profile: %v", err)
	}
	service := mustInstrumentService(test, store, billing)

	_, err := service.AddInstrument(context.Background(), mustAuthSubject(test, "subject-unlinked"), "tok_visa")
	if !errors.Is(err, ErrBillingNotLinked) {
		test.Fatalf("expected ErrBillingNotLinked, got %v", err)
	}
}

func TestAddInstrumentProviderFailureWrapped(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	auth := newStubAuthenticator(test)
	billing := newStubBilling(test)
	identity := mustIdentityService(test, store, auth, billing, nil)
	profile := mustSignUp(test, identity, "ada", "ada@example.com")
	billing.attachErr = errors.New("billing offline")
	service := mustInstrumentService(test, store, billing)

	_, err := service.AddInstrument(context.Background(), mustAuthSubject(test, profile.AuthSubject), "tok_visa")
	if !errors.Is(err, ErrBillingProvider) {
		test.Fatalf("expected ErrBillingProvider, got %v", err)
	}
}

func mustInstrumentService(test *testing.T, store *stubStore, billing *stubBilling) *InstrumentService {
	test.Helper()
	service, err := NewInstrumentService(store, billing, nil)
	if err != nil {
		test.Fatalf("instrument service: %v", err)
	}
	return service
}
