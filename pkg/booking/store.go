package booking

import "context"

// ProfileStore persists user profiles. Lookups return (nil, nil) when the
// record is absent; CreateProfile maps storage uniqueness violations to
// ErrDuplicateLoginName / ErrDuplicateEmail so that insert races lose cleanly.
type ProfileStore interface {
	CreateProfile(ctx context.Context, profile *UserProfile) error
	ProfileByLoginName(ctx context.Context, loginName LoginName) (*UserProfile, error)
	ProfileByEmail(ctx context.Context, email EmailAddress) (*UserProfile, error)
	ProfileByAuthSubject(ctx context.Context, subject AuthSubject) (*UserProfile, error)
}

// LodgingStore persists lodgings and performs the exclusive reservation
// transition.
type LodgingStore interface {
	CreateLodging(ctx context.Context, lodging *Lodging) error
	LodgingByID(ctx context.Context, lodgingID LodgingID) (*Lodging, error)
	ListByCategory(ctx context.Context, category string) ([]Lodging, error)
	SearchByLocation(ctx context.Context, location string) ([]Lodging, error)

	// MarkReserved flips the lodging from free to held as a single conditional
	// update. The storage layer's reported row count decides the outcome:
	// ErrAlreadyReserved when the slot was not free, ErrLodgingNotFound when
	// the lodging does not exist.
	MarkReserved(ctx context.Context, lodgingID LodgingID) error
}

// FavoriteStore persists favorites. The (owner, lodging) pair is unique at the
// storage layer; CreateFavorite reports a lost race as ErrDuplicateFavorite and
// DeleteFavorite reports an absent pair as ErrFavoriteNotFound.
type FavoriteStore interface {
	CreateFavorite(ctx context.Context, favorite *Favorite) error
	DeleteFavorite(ctx context.Context, owner AuthSubject, lodgingID LodgingID) error
	ListByOwner(ctx context.Context, owner AuthSubject) ([]Favorite, error)
}
