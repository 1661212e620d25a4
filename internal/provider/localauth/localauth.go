// Package localauth is a development-mode Authenticator that keeps bcrypt
// credential hashes in the service database. Production deployments point the
// core at a real external authenticator instead.
package localauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MarkoPoloResearchLab/staybook/pkg/booking"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Credential represents the auth_credentials table.
type Credential struct {
	Subject      string    `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"not null;uniqueIndex:uniq_auth_credentials_email"`
	PasswordHash []byte    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (Credential) TableName() string { return "auth_credentials" }

// Provider implements booking.Authenticator over the local database.
type Provider struct {
	db *gorm.DB
}

// New returns a Provider backed by gorm.DB.
func New(db *gorm.DB) *Provider {
	return &Provider{db: db}
}

// Authenticate verifies the credentials and returns the stored subject.
// Unknown emails and wrong passwords both report ErrBadCredentials.
func (provider *Provider) Authenticate(ctx context.Context, email booking.EmailAddress, password booking.Password) (booking.AuthSubject, error) {
	var credential Credential
	err := provider.db.WithContext(ctx).Where("email = ?", email.String()).Take(&credential).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return booking.AuthSubject{}, booking.ErrBadCredentials
	}
	if err != nil {
		return booking.AuthSubject{}, fmt.Errorf("credential lookup: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword(credential.PasswordHash, []byte(password.String())); err != nil {
		return booking.AuthSubject{}, booking.ErrBadCredentials
	}
	return booking.NewAuthSubject(credential.Subject)
}

// CreateSubject hashes the password and issues a fresh subject.
func (provider *Provider) CreateSubject(ctx context.Context, email booking.EmailAddress, password booking.Password) (booking.AuthSubject, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password.String()), bcrypt.DefaultCost)
	if err != nil {
		return booking.AuthSubject{}, fmt.Errorf("hash password: %w", err)
	}
	credential := Credential{
		Subject:      uuid.NewString(),
		Email:        email.String(),
		PasswordHash: hash,
	}
	if err := provider.db.WithContext(ctx).Create(&credential).Error; err != nil {
		return booking.AuthSubject{}, fmt.Errorf("create credential: %w", err)
	}
	return booking.NewAuthSubject(credential.Subject)
}

// DeleteSubject removes the credential record. Compensation hook; deleting an
// unknown subject is not an error.
func (provider *Provider) DeleteSubject(ctx context.Context, subject booking.AuthSubject) error {
	return provider.db.WithContext(ctx).Where("subject = ?", subject.String()).Delete(&Credential{}).Error
}

var _ booking.Authenticator = (*Provider)(nil)
