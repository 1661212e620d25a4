package booking

import (
	"context"
	"errors"
	"fmt"
)

const (
	operationSignUp  = "sign_up"
	operationLogIn   = "log_in"
	detailCompensate = "compensation failed, record orphaned"
)

// IdentityService links one human identity across the local profile store, the
// external authenticator, and the external billing provider.
type IdentityService struct {
	profiles      ProfileStore
	authenticator Authenticator
	billing       BillingProvider
	logger        OperationLogger
}

// NewIdentityService wires an IdentityService. A nil logger discards events.
func NewIdentityService(profiles ProfileStore, authenticator Authenticator, billing BillingProvider, logger OperationLogger) (*IdentityService, error) {
	if profiles == nil {
		return nil, fmt.Errorf("%w: profile store dependency is nil", ErrInvalidServiceConfig)
	}
	if authenticator == nil {
		return nil, fmt.Errorf("%w: authenticator dependency is nil", ErrInvalidServiceConfig)
	}
	if billing == nil {
		return nil, fmt.Errorf("%w: billing provider dependency is nil", ErrInvalidServiceConfig)
	}
	if logger == nil {
		logger = NopLogger{}
	}
	return &IdentityService{
		profiles:      profiles,
		authenticator: authenticator,
		billing:       billing,
		logger:        logger,
	}, nil
}

// SignUp creates the billing customer, the auth subject, and the local profile
// as an explicit compensating-action sequence. Duplicate login names and
// emails are rejected before any external side effect. When a later step
// fails, the earlier external records are deleted best effort; a failed
// compensation is logged and the primary error still surfaces.
func (service *IdentityService) SignUp(ctx context.Context, displayName DisplayName, loginName LoginName, email EmailAddress, password Password) (*UserProfile, error) {
	profile, err := service.signUp(ctx, displayName, loginName, email, password)
	service.logger.LogOperation(ctx, OperationLog{
		Operation: operationSignUp,
		Email:     email.String(),
		Error:     err,
	})
	return profile, err
}

func (service *IdentityService) signUp(ctx context.Context, displayName DisplayName, loginName LoginName, email EmailAddress, password Password) (*UserProfile, error) {
	existing, err := service.profiles.ProfileByLoginName(ctx, loginName)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateLoginName
	}
	existing, err = service.profiles.ProfileByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateEmail
	}

	customerID, err := service.billing.CreateCustomer(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: create customer: %v", ErrBillingProvider, err)
	}

	subject, err := service.authenticator.CreateSubject(ctx, email, password)
	if err != nil {
		service.compensateCustomer(ctx, customerID)
		return nil, fmt.Errorf("%w: create subject: %v", ErrAuthProvider, err)
	}

	profile := &UserProfile{
		DisplayName:     displayName.String(),
		LoginName:       loginName.String(),
		Email:           email.String(),
		AuthSubject:     subject.String(),
		BillingCustomer: customerID.String(),
	}
	if err := service.profiles.CreateProfile(ctx, profile); err != nil {
		service.compensateSubject(ctx, subject)
		service.compensateCustomer(ctx, customerID)
		return nil, err
	}
	return profile, nil
}

// LogIn delegates credential verification to the authenticator and resolves
// the local profile by auth subject. A verified subject without a profile is
// an inconsistent-state signal (ErrProfileMissing), never silently recovered.
func (service *IdentityService) LogIn(ctx context.Context, email EmailAddress, password Password) (*UserProfile, error) {
	profile, err := service.logIn(ctx, email, password)
	service.logger.LogOperation(ctx, OperationLog{
		Operation: operationLogIn,
		Email:     email.String(),
		Error:     err,
	})
	return profile, err
}

func (service *IdentityService) logIn(ctx context.Context, email EmailAddress, password Password) (*UserProfile, error) {
	subject, err := service.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, ErrBadCredentials) {
			return nil, ErrBadCredentials
		}
		return nil, fmt.Errorf("%w: authenticate: %v", ErrAuthProvider, err)
	}
	profile, err := service.profiles.ProfileByAuthSubject(ctx, subject)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, fmt.Errorf("%w: subject %s", ErrProfileMissing, subject.String())
	}
	return profile, nil
}

// ProfileBySubject returns the profile linked to an auth subject.
func (service *IdentityService) ProfileBySubject(ctx context.Context, subject AuthSubject) (*UserProfile, error) {
	profile, err := service.profiles.ProfileByAuthSubject(ctx, subject)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

func (service *IdentityService) compensateCustomer(ctx context.Context, customerID CustomerID) {
	if err := service.billing.DeleteCustomer(ctx, customerID); err != nil {
		service.logger.LogOperation(ctx, OperationLog{
			Operation: operationSignUp,
			Detail:    detailCompensate,
			Error:     fmt.Errorf("delete customer %s: %w", customerID.String(), err),
		})
	}
}

func (service *IdentityService) compensateSubject(ctx context.Context, subject AuthSubject) {
	if err := service.authenticator.DeleteSubject(ctx, subject); err != nil {
		service.logger.LogOperation(ctx, OperationLog{
			Operation: operationSignUp,
			Detail:    detailCompensate,
			Error:     fmt.Errorf("delete subject %s: %w", subject.String(), err),
		})
	}
}
