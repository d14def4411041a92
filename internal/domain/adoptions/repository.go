package adoptions

import "context"

type Repository interface {
	Create(ctx context.Context, a Application) error
	Update(ctx context.Context, a Application) error
	GetByID(ctx context.Context, id string) (Application, error)

	// GetByUserAndPet returns the single row for the pair, cancelled or not.
	GetByUserAndPet(ctx context.Context, userID, petID string) (Application, error)

	ListByUser(ctx context.Context, userID string) ([]Application, error)
	ListByPet(ctx context.Context, petID string) ([]Application, error)
	ListAll(ctx context.Context) ([]Application, error)
}
