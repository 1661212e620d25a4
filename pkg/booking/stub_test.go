package booking

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

// stubStore implements ProfileStore, LodgingStore, and FavoriteStore in
// memory. All mutations run under one mutex so concurrent tests observe the
// same winner-picking the storage layer would provide.
type stubStore struct {
	mu        sync.Mutex
	profiles  []*UserProfile
	lodgings  map[string]*Lodging
	favorites map[string]Favorite
	nextID    int
}

func newStubStore(test *testing.T) *stubStore {
	test.Helper()
	return &stubStore{
		lodgings:  make(map[string]*Lodging),
		favorites: make(map[string]Favorite),
	}
}

func (store *stubStore) CreateProfile(ctx context.Context, profile *UserProfile) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, existing := range store.profiles {
		if existing.LoginName == profile.LoginName {
			return ErrDuplicateLoginName
		}
		if existing.Email == profile.Email {
			return ErrDuplicateEmail
		}
	}
	store.nextID++
	profile.ProfileID = fmt.Sprintf("profile-%d", store.nextID)
	copied := *profile
	store.profiles = append(store.profiles, &copied)
	return nil
}

func (store *stubStore) ProfileByLoginName(ctx context.Context, loginName LoginName) (*UserProfile, error) {
	return store.findProfile(func(profile *UserProfile) bool { return profile.LoginName == loginName.String() })
}

func (store *stubStore) ProfileByEmail(ctx context.Context, email EmailAddress) (*UserProfile, error) {
	return store.findProfile(func(profile *UserProfile) bool { return profile.Email == email.String() })
}

func (store *stubStore) ProfileByAuthSubject(ctx context.Context, subject AuthSubject) (*UserProfile, error) {
	return store.findProfile(func(profile *UserProfile) bool { return profile.AuthSubject == subject.String() })
}

func (store *stubStore) findProfile(match func(*UserProfile) bool) (*UserProfile, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, profile := range store.profiles {
		if match(profile) {
			copied := *profile
			return &copied, nil
		}
	}
	return nil, nil
}

func (store *stubStore) CreateLodging(ctx context.Context, lodging *Lodging) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if _, exists := store.lodgings[lodging.LodgingID]; exists {
		return ErrDuplicateLodging
	}
	copied := *lodging
	store.lodgings[lodging.LodgingID] = &copied
	return nil
}

func (store *stubStore) LodgingByID(ctx context.Context, lodgingID LodgingID) (*Lodging, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	lodging, exists := store.lodgings[lodgingID.String()]
	if !exists {
		return nil, nil
	}
	copied := *lodging
	return &copied, nil
}

func (store *stubStore) ListByCategory(ctx context.Context, category string) ([]Lodging, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	var matched []Lodging
	for _, lodging := range store.lodgings {
		if lodging.Category == category {
			matched = append(matched, *lodging)
		}
	}
	return matched, nil
}

func (store *stubStore) SearchByLocation(ctx context.Context, location string) ([]Lodging, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	var matched []Lodging
	for _, lodging := range store.lodgings {
		if lodging.Location == location {
			matched = append(matched, *lodging)
		}
	}
	return matched, nil
}

func (store *stubStore) MarkReserved(ctx context.Context, lodgingID LodgingID) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	lodging, exists := store.lodgings[lodgingID.String()]
	if !exists {
		return ErrLodgingNotFound
	}
	if lodging.State != ReservationStateFree {
		return ErrAlreadyReserved
	}
	lodging.State = ReservationStateHeld
	return nil
}

func (store *stubStore) CreateFavorite(ctx context.Context, favorite *Favorite) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	key := favorite.OwnerSubject + "/" + favorite.LodgingID
	if _, exists := store.favorites[key]; exists {
		return ErrDuplicateFavorite
	}
	store.nextID++
	favorite.FavoriteID = fmt.Sprintf("favorite-%d", store.nextID)
	store.favorites[key] = *favorite
	return nil
}

func (store *stubStore) DeleteFavorite(ctx context.Context, owner AuthSubject, lodgingID LodgingID) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	key := owner.String() + "/" + lodgingID.String()
	if _, exists := store.favorites[key]; !exists {
		return ErrFavoriteNotFound
	}
	delete(store.favorites, key)
	return nil
}

func (store *stubStore) ListByOwner(ctx context.Context, owner AuthSubject) ([]Favorite, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	var matched []Favorite
	for _, favorite := range store.favorites {
		if favorite.OwnerSubject == owner.String() {
			matched = append(matched, favorite)
		}
	}
	return matched, nil
}

// stubAuthenticator issues deterministic subjects and records compensation
// calls. Failure toggles simulate provider faults.
type stubAuthenticator struct {
	mu               sync.Mutex
	credentials      map[string]string
	subjects         map[string]string
	deletedSubjects  []string
	createSubjectErr error
	deleteSubjectErr error
	nextSubject      int
}

func newStubAuthenticator(test *testing.T) *stubAuthenticator {
	test.Helper()
	return &stubAuthenticator{
		credentials: make(map[string]string),
		subjects:    make(map[string]string),
	}
}

func (auth *stubAuthenticator) Authenticate(ctx context.Context, email EmailAddress, password Password) (AuthSubject, error) {
	auth.mu.Lock()
	defer auth.mu.Unlock()
	stored, exists := auth.credentials[email.String()]
	if !exists || stored != password.String() {
		return AuthSubject{}, ErrBadCredentials
	}
	return NewAuthSubject(auth.subjects[email.String()])
}

func (auth *stubAuthenticator) CreateSubject(ctx context.Context, email EmailAddress, password Password) (AuthSubject, error) {
	auth.mu.Lock()
	defer auth.mu.Unlock()
	if auth.createSubjectErr != nil {
		return AuthSubject{}, auth.createSubjectErr
	}
	auth.nextSubject++
	subject := fmt.Sprintf("subject-%d", auth.nextSubject)
	auth.credentials[email.String()] = password.String()
	auth.subjects[email.String()] = subject
	return NewAuthSubject(subject)
}

func (auth *stubAuthenticator) DeleteSubject(ctx context.Context, subject AuthSubject) error {
	auth.mu.Lock()
	defer auth.mu.Unlock()
	if auth.deleteSubjectErr != nil {
		return auth.deleteSubjectErr
	}
	auth.deletedSubjects = append(auth.deletedSubjects, subject.String())
	return nil
}

// stubBilling issues deterministic customer ids and records compensation
// calls.
type stubBilling struct {
	mu                sync.Mutex
	instruments       map[string][]Instrument
	deletedCustomers  []string
	createCustomerErr error
	deleteCustomerErr error
	attachErr         error
	nextCustomer      int
	nextInstrument    int
}

func newStubBilling(test *testing.T) *stubBilling {
	test.Helper()
	return &stubBilling{instruments: make(map[string][]Instrument)}
}

func (billing *stubBilling) CreateCustomer(ctx context.Context, email EmailAddress) (CustomerID, error) {
	billing.mu.Lock()
	defer billing.mu.Unlock()
	if billing.createCustomerErr != nil {
		return CustomerID{}, billing.createCustomerErr
	}
	billing.nextCustomer++
	customer := fmt.Sprintf("customer-%d", billing.nextCustomer)
	billing.instruments[customer] = nil
	return NewCustomerID(customer)
}

func (billing *stubBilling) DeleteCustomer(ctx context.Context, customerID CustomerID) error {
	billing.mu.Lock()
	defer billing.mu.Unlock()
	if billing.deleteCustomerErr != nil {
		return billing.deleteCustomerErr
	}
	billing.deletedCustomers = append(billing.deletedCustomers, customerID.String())
	delete(billing.instruments, customerID.String())
	return nil
}

func (billing *stubBilling) AttachInstrument(ctx context.Context, customerID CustomerID, token string) (Instrument, error) {
	billing.mu.Lock()
	defer billing.mu.Unlock()
	if billing.attachErr != nil {
		return Instrument{}, billing.attachErr
	}
	billing.nextInstrument++
	instrument := Instrument{
		InstrumentID: fmt.Sprintf("instrument-%d", billing.nextInstrument),
		Brand:        "visa",
		Last4:        "4242",
		ExpiryMonth:  12,
		ExpiryYear:   2030,
	}
	billing.instruments[customerID.String()] = append(billing.instruments[customerID.String()], instrument)
	return instrument, nil
}

func (billing *stubBilling) ListInstruments(ctx context.Context, customerID CustomerID) ([]Instrument, error) {
	billing.mu.Lock()
	defer billing.mu.Unlock()
	instruments := billing.instruments[customerID.String()]
	copied := make([]Instrument, len(instruments))
	copy(copied, instruments)
	return copied, nil
}

func (billing *stubBilling) RemoveInstrument(ctx context.Context, customerID CustomerID, instrumentID string) error {
	billing.mu.Lock()
	defer billing.mu.Unlock()
	instruments := billing.instruments[customerID.String()]
	for index, instrument := range instruments {
		if instrument.InstrumentID == instrumentID {
			billing.instruments[customerID.String()] = append(instruments[:index], instruments[index+1:]...)
			return nil
		}
	}
	return fmt.Errorf("unknown instrument %s", instrumentID)
}

// recordingLogger captures operation logs for assertions.
type recordingLogger struct {
	mu      sync.Mutex
	entries []OperationLog
}

func (logger *recordingLogger) LogOperation(ctx context.Context, entry OperationLog) {
	logger.mu.Lock()
	defer logger.mu.Unlock()
	logger.entries = append(logger.entries, entry)
}

func (logger *recordingLogger) snapshot() []OperationLog {
	logger.mu.Lock()
	defer logger.mu.Unlock()
	copied := make([]OperationLog, len(logger.entries))
	copy(copied, logger.entries)
	return copied
}

func mustLoginName(test *testing.T, raw string) LoginName {
	test.Helper()
	loginName, err := NewLoginName(raw)
	if err != nil {
		test.Fatalf("login name: %v", err)
	}
	return loginName
}

func mustEmail(test *testing.T, raw string) EmailAddress {
	test.Helper()
	email, err := NewEmailAddress(raw)
	if err != nil {
		test.Fatalf("email: %v", err)
	}
	return email
}

func mustPassword(test *testing.T, raw string) Password {
	test.Helper()
	password, err := NewPassword(raw)
	if err != nil {
		test.Fatalf("password: %v", err)
	}
	return password
}

func mustDisplayName(test *testing.T, raw string) DisplayName {
	test.Helper()
	displayName, err := NewDisplayName(raw)
	if err != nil {
		test.Fatalf("display name: %v", err)
	}
	return displayName
}

func mustAuthSubject(test *testing.T, raw string) AuthSubject {
	test.Helper()
	subject, err := NewAuthSubject(raw)
	if err != nil {
		test.Fatalf("auth subject: %v", err)
	}
	return subject
}

func mustLodgingID(test *testing.T, raw string) LodgingID {
	test.Helper()
	lodgingID, err := NewLodgingID(raw)
	if err != nil {
		test.Fatalf("lodging id: %v", err)
	}
	return lodgingID
}

func mustIdentityService(test *testing.T, store *stubStore, auth *stubAuthenticator, billing *stubBilling, logger OperationLogger) *IdentityService {
	test.Helper()
	service, err := NewIdentityService(store, auth, billing, logger)
	if err != nil {
		test.Fatalf("identity service: %v", err)
	}
	return service
}

func mustSignUp(test *testing.T, service *IdentityService, loginName string, email string) *UserProfile {
	test.Helper()
	profile, err := service.SignUp(
		context.Background(),
		mustDisplayName(test, "Test User"),
		mustLoginName(test, loginName),
		mustEmail(test, email),
		mustPassword(test, "secret-password"),
	)
	if err != nil {
		test.Fatalf("sign up: %v", err)
	}
	return profile
}

func mustAddLodging(test *testing.T, store *stubStore, lodgingID string) {
	test.Helper()
	err := store.CreateLodging(context.Background(), &Lodging{
		LodgingID: lodgingID,
		Name:      "Test Lodging",
		Location:  "Testville",
		Category:  "cabin",
		State:     ReservationStateFree,
	})
	if err != nil {
		test.Fatalf("create lodging: %v", err)
	}
}

var (
	_ ProfileStore    = (*stubStore)(nil)
	_ LodgingStore    = (*stubStore)(nil)
	_ FavoriteStore   = (*stubStore)(nil)
	_ Authenticator   = (*stubAuthenticator)(nil)
	_ BillingProvider = (*stubBilling)(nil)
	_ OperationLogger = (*recordingLogger)(nil)
)
