package gormstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/MarkoPoloResearchLab/staybook/pkg/booking"
	gosqlite "github.com/glebarez/go-sqlite"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	constraintProfileLoginName = "uniq_profiles_login_name"
	constraintProfileEmail     = "uniq_profiles_email"
	constraintFavoritePair     = "uniq_favorites_owner_lodging"
	pgUniqueViolationCode      = "23505"
	sqliteConstraintCode       = 19
	errorOperationStore        = "store"
	errorSubjectProfile        = "profile"
	errorSubjectLodging        = "lodging"
	errorSubjectFavorite       = "favorite"
	errorCodeCreate            = "create"
	errorCodeDelete            = "delete"
	errorCodeGet               = "get"
	errorCodeInvalid           = "invalid"
	errorCodeList              = "list"
	errorCodeReserve           = "reserve"
)

// Store implements the booking store contracts using GORM.
type Store struct {
	db *gorm.DB
}

// New returns a Store backed by gorm.DB.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// CreateProfile inserts a profile. Uniqueness races on login name and email
// resolve through the table constraints; the violated constraint decides which
// duplicate error surfaces.
func (store *Store) CreateProfile(ctx context.Context, profile *booking.UserProfile) error {
	row := profileRow(profile)
	err := store.db.WithContext(ctx).Create(&row).Error
	if constraint, conflicted := uniqueViolation(err); conflicted {
		return store.classifyProfileConflict(ctx, row.LoginName, constraint)
	}
	if err != nil {
		return wrapStoreError(errorSubjectProfile, errorCodeCreate, err)
	}
	profile.ProfileID = row.ProfileID
	profile.CreatedAt = row.CreatedAt
	return nil
}

// ProfileByLoginName returns the profile with the given login name, or nil.
func (store *Store) ProfileByLoginName(ctx context.Context, loginName booking.LoginName) (*booking.UserProfile, error) {
	return store.profileWhere(ctx, "login_name = ?", loginName.String())
}

// ProfileByEmail returns the profile with the given email, or nil.
func (store *Store) ProfileByEmail(ctx context.Context, email booking.EmailAddress) (*booking.UserProfile, error) {
	return store.profileWhere(ctx, "email = ?", email.String())
}

// ProfileByAuthSubject returns the profile linked to the subject, or nil.
func (store *Store) ProfileByAuthSubject(ctx context.Context, subject booking.AuthSubject) (*booking.UserProfile, error) {
	return store.profileWhere(ctx, "auth_subject = ?", subject.String())
}

func (store *Store) profileWhere(ctx context.Context, query string, argument string) (*booking.UserProfile, error) {
	var row Profile
	err := store.db.WithContext(ctx).Where(query, argument).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapStoreError(errorSubjectProfile, errorCodeGet, err)
	}
	return mapProfile(row), nil
}

// CreateLodging inserts a lodging with its reservation slot free.
func (store *Store) CreateLodging(ctx context.Context, lodging *booking.Lodging) error {
	row := lodgingRow(lodging)
	err := store.db.WithContext(ctx).Create(&row).Error
	if _, conflicted := uniqueViolation(err); conflicted {
		return booking.ErrDuplicateLodging
	}
	if err != nil {
		return wrapStoreError(errorSubjectLodging, errorCodeCreate, err)
	}
	return nil
}

// LodgingByID returns one lodging, or nil when absent.
func (store *Store) LodgingByID(ctx context.Context, lodgingID booking.LodgingID) (*booking.Lodging, error) {
	var row Lodging
	err := store.db.WithContext(ctx).Where("lodging_id = ?", lodgingID.String()).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapStoreError(errorSubjectLodging, errorCodeGet, err)
	}
	return mapLodging(row)
}

// ListByCategory returns all lodgings of one category.
func (store *Store) ListByCategory(ctx context.Context, category string) ([]booking.Lodging, error) {
	var rows []Lodging
	err := store.db.WithContext(ctx).Where("category = ?", category).Find(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectLodging, errorCodeList, err)
	}
	return mapLodgings(rows)
}

// SearchByLocation returns lodgings whose location contains the query,
// case-insensitive.
func (store *Store) SearchByLocation(ctx context.Context, location string) ([]booking.Lodging, error) {
	var rows []Lodging
	pattern := "%" + strings.ToLower(location) + "%"
	err := store.db.WithContext(ctx).Where("lower(location) LIKE ?", pattern).Find(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectLodging, errorCodeList, err)
	}
	return mapLodgings(rows)
}

// MarkReserved flips the lodging from free to held. The conditional update's
// own row count is the decider: a prior read never is. Zero rows means either
// the slot was taken or the lodging is unknown; a follow-up existence check
// only picks between those two errors.
func (store *Store) MarkReserved(ctx context.Context, lodgingID booking.LodgingID) error {
	result := store.db.WithContext(ctx).
		Model(&Lodging{}).
		Where("lodging_id = ? AND state = ?", lodgingID.String(), booking.ReservationStateFree.String()).
		Update("state", booking.ReservationStateHeld.String())
	if result.Error != nil {
		return wrapStoreError(errorSubjectLodging, errorCodeReserve, result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}
	var count int64
	if err := store.db.WithContext(ctx).Model(&Lodging{}).Where("lodging_id = ?", lodgingID.String()).Count(&count).Error; err != nil {
		return wrapStoreError(errorSubjectLodging, errorCodeReserve, err)
	}
	if count == 0 {
		return booking.ErrLodgingNotFound
	}
	return booking.ErrAlreadyReserved
}

// CreateFavorite inserts the pair. The composite unique index resolves
// concurrent duplicates; losers see ErrDuplicateFavorite.
func (store *Store) CreateFavorite(ctx context.Context, favorite *booking.Favorite) error {
	row := Favorite{
		FavoriteID:   favorite.FavoriteID,
		OwnerSubject: favorite.OwnerSubject,
		LodgingID:    favorite.LodgingID,
	}
	err := store.db.WithContext(ctx).Create(&row).Error
	if _, conflicted := uniqueViolation(err); conflicted {
		return booking.ErrDuplicateFavorite
	}
	if err != nil {
		return wrapStoreError(errorSubjectFavorite, errorCodeCreate, err)
	}
	favorite.FavoriteID = row.FavoriteID
	return nil
}

// DeleteFavorite removes the pair; zero affected rows reports NotFound.
func (store *Store) DeleteFavorite(ctx context.Context, owner booking.AuthSubject, lodgingID booking.LodgingID) error {
	result := store.db.WithContext(ctx).
		Where("owner_subject = ? AND lodging_id = ?", owner.String(), lodgingID.String()).
		Delete(&Favorite{})
	if result.Error != nil {
		return wrapStoreError(errorSubjectFavorite, errorCodeDelete, result.Error)
	}
	if result.RowsAffected == 0 {
		return booking.ErrFavoriteNotFound
	}
	return nil
}

// ListByOwner returns the owner's favorites in storage order.
func (store *Store) ListByOwner(ctx context.Context, owner booking.AuthSubject) ([]booking.Favorite, error) {
	var rows []Favorite
	err := store.db.WithContext(ctx).Where("owner_subject = ?", owner.String()).Find(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectFavorite, errorCodeList, err)
	}
	favorites := make([]booking.Favorite, 0, len(rows))
	for _, row := range rows {
		favorites = append(favorites, booking.Favorite{
			FavoriteID:   row.FavoriteID,
			OwnerSubject: row.OwnerSubject,
			LodgingID:    row.LodgingID,
		})
	}
	return favorites, nil
}

func (store *Store) classifyProfileConflict(ctx context.Context, loginName string, constraint string) error {
	if strings.Contains(constraint, "login_name") {
		return booking.ErrDuplicateLoginName
	}
	if strings.Contains(constraint, "email") {
		return booking.ErrDuplicateEmail
	}
	// Driver reported a bare duplicate (no constraint name); look at which
	// field actually collided.
	var count int64
	if err := store.db.WithContext(ctx).Model(&Profile{}).Where("login_name = ?", loginName).Count(&count).Error; err == nil && count > 0 {
		return booking.ErrDuplicateLoginName
	}
	return booking.ErrDuplicateEmail
}

func wrapStoreError(subject string, code string, err error) error {
	return booking.WrapError(errorOperationStore, subject, code, err)
}

func profileRow(profile *booking.UserProfile) Profile {
	row := Profile{
		ProfileID:   profile.ProfileID,
		DisplayName: profile.DisplayName,
		LoginName:   profile.LoginName,
		Email:       profile.Email,
		Phone:       profile.Phone,
		AvatarRef:   profile.AvatarRef,
	}
	if profile.BirthDate != nil {
		birthDate := datatypes.Date(*profile.BirthDate)
		row.BirthDate = &birthDate
	}
	if profile.AuthSubject != "" {
		value := profile.AuthSubject
		row.AuthSubject = &value
	}
	if profile.BillingCustomer != "" {
		value := profile.BillingCustomer
		row.BillingCustomer = &value
	}
	return row
}

func mapProfile(row Profile) *booking.UserProfile {
	profile := &booking.UserProfile{
		ProfileID:   row.ProfileID,
		DisplayName: row.DisplayName,
		LoginName:   row.LoginName,
		Email:       row.Email,
		Phone:       row.Phone,
		AvatarRef:   row.AvatarRef,
		CreatedAt:   row.CreatedAt,
	}
	if row.BirthDate != nil {
		birthDate := time.Time(*row.BirthDate)
		profile.BirthDate = &birthDate
	}
	if row.AuthSubject != nil {
		profile.AuthSubject = *row.AuthSubject
	}
	if row.BillingCustomer != nil {
		profile.BillingCustomer = *row.BillingCustomer
	}
	return profile
}

func lodgingRow(lodging *booking.Lodging) Lodging {
	return Lodging{
		LodgingID:         lodging.LodgingID,
		Name:              lodging.Name,
		Location:          lodging.Location,
		PriceCents:        lodging.PriceCents,
		Capacity:          lodging.Capacity,
		ImageRef:          lodging.ImageRef,
		CheckIn:           lodging.CheckIn,
		CheckOut:          lodging.CheckOut,
		RatingCount:       lodging.RatingCount,
		ReviewCount:       lodging.ReviewCount,
		Category:          lodging.Category,
		RoomCount:         lodging.RoomCount,
		BathCount:         lodging.BathCount,
		BedCount:          lodging.BedCount,
		BreakfastIncluded: lodging.BreakfastIncluded,
		WiFi:              lodging.WiFi,
		State:             lodging.State.String(),
	}
}

func mapLodging(row Lodging) (*booking.Lodging, error) {
	state, err := booking.ParseReservationState(row.State)
	if err != nil {
		return nil, wrapStoreError(errorSubjectLodging, errorCodeInvalid, err)
	}
	return &booking.Lodging{
		LodgingID:         row.LodgingID,
		Name:              row.Name,
		Location:          row.Location,
		PriceCents:        row.PriceCents,
		Capacity:          row.Capacity,
		ImageRef:          row.ImageRef,
		CheckIn:           row.CheckIn,
		CheckOut:          row.CheckOut,
		RatingCount:       row.RatingCount,
		ReviewCount:       row.ReviewCount,
		Category:          row.Category,
		RoomCount:         row.RoomCount,
		BathCount:         row.BathCount,
		BedCount:          row.BedCount,
		BreakfastIncluded: row.BreakfastIncluded,
		WiFi:              row.WiFi,
		State:             state,
	}, nil
}

func mapLodgings(rows []Lodging) ([]booking.Lodging, error) {
	lodgings := make([]booking.Lodging, 0, len(rows))
	for _, row := range rows {
		lodging, err := mapLodging(row)
		if err != nil {
			return nil, err
		}
		lodgings = append(lodgings, *lodging)
	}
	return lodgings, nil
}

func uniqueViolation(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "", true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName, pgErr.Code == pgUniqueViolationCode
	}
	var sqliteErr *gosqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Error(), sqliteErr.Code()&0xFF == sqliteConstraintCode
	}
	return "", false
}

var (
	_ booking.ProfileStore  = (*Store)(nil)
	_ booking.LodgingStore  = (*Store)(nil)
	_ booking.FavoriteStore = (*Store)(nil)
)
