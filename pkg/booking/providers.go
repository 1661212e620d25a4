package booking

import "context"

// Authenticator is the external identity collaborator. Implementations verify
// credentials and issue opaque subjects; the core never sees how.
// Authenticate returns ErrBadCredentials when the credentials do not match;
// any other failure is a provider fault. DeleteSubject exists only as a
// compensation hook for partially failed signups and is best effort.
type Authenticator interface {
	Authenticate(ctx context.Context, email EmailAddress, password Password) (AuthSubject, error)
	CreateSubject(ctx context.Context, email EmailAddress, password Password) (AuthSubject, error)
	DeleteSubject(ctx context.Context, subject AuthSubject) error
}

// BillingProvider is the external payment collaborator. It owns customer
// records and payment instruments; the core only holds the customer id.
// DeleteCustomer exists only as a compensation hook for partially failed
// signups and is best effort.
type BillingProvider interface {
	CreateCustomer(ctx context.Context, email EmailAddress) (CustomerID, error)
	DeleteCustomer(ctx context.Context, customerID CustomerID) error
	AttachInstrument(ctx context.Context, customerID CustomerID, token string) (Instrument, error)
	ListInstruments(ctx context.Context, customerID CustomerID) ([]Instrument, error)
	RemoveInstrument(ctx context.Context, customerID CustomerID, instrumentID string) error
}
