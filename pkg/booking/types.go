package booking

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// ProfileID identifies a local user profile.
type ProfileID struct {
	value string
}

// LoginName is the globally unique login handle of a profile.
type LoginName struct {
	value string
}

// EmailAddress is the globally unique contact address of a profile.
type EmailAddress struct {
	value string
}

// Password carries a raw credential on its way to the authenticator.
type Password struct {
	value string
}

// DisplayName is the human-readable name of a profile.
type DisplayName struct {
	value string
}

// AuthSubject is the opaque identity issued by the external authenticator.
type AuthSubject struct {
	value string
}

// CustomerID is the opaque billing-customer id issued by the billing provider.
type CustomerID struct {
	value string
}

// LodgingID identifies a bookable lodging. Caller supplied.
type LodgingID struct {
	value string
}

// ReservationState defines the single-slot reservation lifecycle of a lodging.
type ReservationState string

const (
	ReservationStateFree ReservationState = "free"
	ReservationStateHeld ReservationState = "held"
)

// NewProfileID validates and normalizes a profile id.
func NewProfileID(raw string) (ProfileID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ProfileID{}, fmt.Errorf("%w: empty value", ErrInvalidProfileID)
	}
	return ProfileID{value: trimmed}, nil
}

// String returns the normalized identifier.
func (id ProfileID) String() string {
	return id.value
}

// NewLoginName validates and normalizes a login name.
func NewLoginName(raw string) (LoginName, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return LoginName{}, fmt.Errorf("%w: empty value", ErrInvalidLoginName)
	}
	return LoginName{value: trimmed}, nil
}

// String returns the normalized login name.
func (name LoginName) String() string {
	return name.value
}

// NewEmailAddress validates and normalizes an email address.
func NewEmailAddress(raw string) (EmailAddress, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return EmailAddress{}, fmt.Errorf("%w: empty value", ErrInvalidEmail)
	}
	if _, err := mail.ParseAddress(trimmed); err != nil {
		return EmailAddress{}, fmt.Errorf("%w: %q", ErrInvalidEmail, trimmed)
	}
	return EmailAddress{value: trimmed}, nil
}

// String returns the normalized address.
func (address EmailAddress) String() string {
	return address.value
}

// NewPassword validates a raw password.
func NewPassword(raw string) (Password, error) {
	if strings.TrimSpace(raw) == "" {
		return Password{}, fmt.Errorf("%w: empty value", ErrInvalidPassword)
	}
	return Password{value: raw}, nil
}

// String returns the raw credential.
func (password Password) String() string {
	return password.value
}

// NewDisplayName validates and normalizes a display name.
func NewDisplayName(raw string) (DisplayName, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return DisplayName{}, fmt.Errorf("%w: empty value", ErrInvalidDisplayName)
	}
	return DisplayName{value: trimmed}, nil
}

// String returns the normalized name.
func (name DisplayName) String() string {
	return name.value
}

// NewAuthSubject validates and normalizes an external auth subject.
func NewAuthSubject(raw string) (AuthSubject, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return AuthSubject{}, fmt.Errorf("%w: empty value", ErrInvalidAuthSubject)
	}
	return AuthSubject{value: trimmed}, nil
}

// String returns the normalized subject.
func (subject AuthSubject) String() string {
	return subject.value
}

// NewCustomerID validates and normalizes a billing customer id.
func NewCustomerID(raw string) (CustomerID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return CustomerID{}, fmt.Errorf("%w: empty value", ErrInvalidCustomerID)
	}
	return CustomerID{value: trimmed}, nil
}

// String returns the normalized identifier.
func (id CustomerID) String() string {
	return id.value
}

// NewLodgingID validates and normalizes a lodging id.
func NewLodgingID(raw string) (LodgingID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return LodgingID{}, fmt.Errorf("%w: empty value", ErrInvalidLodgingID)
	}
	return LodgingID{value: trimmed}, nil
}

// String returns the normalized identifier.
func (id LodgingID) String() string {
	return id.value
}

// ParseReservationState validates a stored reservation state.
func ParseReservationState(raw string) (ReservationState, error) {
	switch ReservationState(raw) {
	case ReservationStateFree, ReservationStateHeld:
		return ReservationState(raw), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidReservationState, raw)
}

// String returns the state label.
func (state ReservationState) String() string {
	return string(state)
}

// UserProfile links one human identity across the local record, the external
// auth subject, and the external billing customer. AuthSubject never changes
// once set.
type UserProfile struct {
	ProfileID       string
	DisplayName     string
	LoginName       string
	Email           string
	BirthDate       *time.Time
	Phone           string
	AvatarRef       string
	AuthSubject     string
	BillingCustomer string
	CreatedAt       time.Time
}

// Lodging is a bookable listing with a single reservation slot. Only State is
// owned by this core; the remaining fields belong to listing management.
type Lodging struct {
	LodgingID         string
	Name              string
	Location          string
	PriceCents        int64
	Capacity          int
	ImageRef          string
	CheckIn           time.Time
	CheckOut          time.Time
	RatingCount       int
	ReviewCount       int
	Category          string
	RoomCount         int
	BathCount         int
	BedCount          int
	BreakfastIncluded bool
	WiFi              bool
	State             ReservationState
}

// Favorite marks a lodging as favorited by an auth subject. The pair
// (OwnerSubject, LodgingID) is unique across all records.
type Favorite struct {
	FavoriteID   string
	OwnerSubject string
	LodgingID    string
}

// Instrument is a payment instrument attached to a billing customer. The
// billing provider owns all of it; the core only passes it through.
type Instrument struct {
	InstrumentID string `json:"instrument_id"`
	Brand        string `json:"brand"`
	Last4        string `json:"last4"`
	ExpiryMonth  int    `json:"expiry_month"`
	ExpiryYear   int    `json:"expiry_year"`
}
