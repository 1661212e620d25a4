package booking

import (
	"context"
	"fmt"
)

const (
	operationAddFavorite    = "add_favorite"
	operationRemoveFavorite = "remove_favorite"
)

// FavoritesService enforces at-most-one favorite per (owner, lodging) pair.
type FavoritesService struct {
	favorites FavoriteStore
	logger    OperationLogger
}

// NewFavoritesService wires a FavoritesService. A nil logger discards events.
func NewFavoritesService(favorites FavoriteStore, logger OperationLogger) (*FavoritesService, error) {
	if favorites == nil {
		return nil, fmt.Errorf("%w: favorite store dependency is nil", ErrInvalidServiceConfig)
	}
	if logger == nil {
		logger = NopLogger{}
	}
	return &FavoritesService{favorites: favorites, logger: logger}, nil
}

// AddFavorite records the pair. Uniqueness is the storage layer's unique
// index, not an application pre-check, so concurrent identical adds resolve to
// exactly one winner; losers see ErrDuplicateFavorite.
func (service *FavoritesService) AddFavorite(ctx context.Context, owner AuthSubject, lodgingID LodgingID) (*Favorite, error) {
	favorite := &Favorite{
		OwnerSubject: owner.String(),
		LodgingID:    lodgingID.String(),
	}
	err := service.favorites.CreateFavorite(ctx, favorite)
	service.logger.LogOperation(ctx, OperationLog{
		Operation: operationAddFavorite,
		Subject:   owner.String(),
		LodgingID: lodgingID.String(),
		Error:     err,
	})
	if err != nil {
		return nil, err
	}
	return favorite, nil
}

// RemoveFavorite deletes the pair. Removing an absent pair reports
// ErrFavoriteNotFound, never silent success.
func (service *FavoritesService) RemoveFavorite(ctx context.Context, owner AuthSubject, lodgingID LodgingID) error {
	err := service.favorites.DeleteFavorite(ctx, owner, lodgingID)
	service.logger.LogOperation(ctx, OperationLog{
		Operation: operationRemoveFavorite,
		Subject:   owner.String(),
		LodgingID: lodgingID.String(),
		Error:     err,
	})
	return err
}

// ListFavorites returns the owner's favorites. No ordering is guaranteed.
func (service *FavoritesService) ListFavorites(ctx context.Context, owner AuthSubject) ([]Favorite, error) {
	return service.favorites.ListByOwner(ctx, owner)
}
