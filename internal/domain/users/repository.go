package users

import "context"

type Repository interface {
	// CreateWithOwnedPets persists the user and their owned pets as one unit:
	// either everything lands or nothing does.
	CreateWithOwnedPets(ctx context.Context, u User, pets []OwnedPet) error

	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Update(ctx context.Context, u User) error

	ListOwnedPets(ctx context.Context, userID string) ([]OwnedPet, error)
	CountOwnedPets(ctx context.Context, userID string) (int, error)
}
