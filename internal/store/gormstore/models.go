package gormstore

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Profile represents the profiles table.
type Profile struct {
	ProfileID       string          `gorm:"type:uuid;primaryKey"`
	DisplayName     string          `gorm:"not null"`
	LoginName       string          `gorm:"not null;uniqueIndex:uniq_profiles_login_name"`
	Email           string          `gorm:"not null;uniqueIndex:uniq_profiles_email"`
	BirthDate       *datatypes.Date `gorm:""`
	Phone           string          `gorm:""`
	AvatarRef       string          `gorm:""`
	AuthSubject     *string         `gorm:"uniqueIndex:uniq_profiles_auth_subject"`
	BillingCustomer *string         `gorm:""`
	CreatedAt       time.Time       `gorm:"not null"`
	UpdatedAt       time.Time       `gorm:"not null"`
}

func (Profile) TableName() string { return "profiles" }

func (profile *Profile) BeforeCreate(tx *gorm.DB) error {
	if profile.ProfileID == "" {
		profile.ProfileID = uuid.NewString()
	}
	return nil
}

// Lodging mirrors the lodgings table. State is the only column this core
// mutates; the rest is listing-management data.
type Lodging struct {
	LodgingID         string    `gorm:"primaryKey"`
	Name              string    `gorm:"not null"`
	Location          string    `gorm:"not null;index:idx_lodgings_location"`
	PriceCents        int64     `gorm:"not null"`
	Capacity          int       `gorm:"not null"`
	ImageRef          string    `gorm:""`
	CheckIn           time.Time `gorm:""`
	CheckOut          time.Time `gorm:""`
	RatingCount       int       `gorm:"not null;default:0"`
	ReviewCount       int       `gorm:"not null;default:0"`
	Category          string    `gorm:"index:idx_lodgings_category"`
	RoomCount         int       `gorm:"not null;default:0"`
	BathCount         int       `gorm:"not null;default:0"`
	BedCount          int       `gorm:"not null;default:0"`
	BreakfastIncluded bool      `gorm:"not null;default:false"`
	WiFi              bool      `gorm:"not null;default:false"`
	State             string    `gorm:"not null;default:free"`
	CreatedAt         time.Time `gorm:"not null"`
	UpdatedAt         time.Time `gorm:"not null"`
}

func (Lodging) TableName() string { return "lodgings" }

// Favorite mirrors the favorites table. The (owner_subject, lodging_id) pair
// carries the unique index that makes concurrent duplicate adds lose.
type Favorite struct {
	FavoriteID   string    `gorm:"type:uuid;primaryKey"`
	OwnerSubject string    `gorm:"not null;index:uniq_favorites_owner_lodging,unique,priority:1"`
	LodgingID    string    `gorm:"not null;index:uniq_favorites_owner_lodging,unique,priority:2"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (Favorite) TableName() string { return "favorites" }

func (favorite *Favorite) BeforeCreate(tx *gorm.DB) error {
	if favorite.FavoriteID == "" {
		favorite.FavoriteID = uuid.NewString()
	}
	return nil
}
