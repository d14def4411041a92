package pets

import "context"

type Repository interface {
	Create(ctx context.Context, p Pet) error
	GetByID(ctx context.Context, id string) (Pet, error)
	List(ctx context.Context) ([]Pet, error)
	Update(ctx context.Context, p Pet) error
	// Delete removes the pet; the data layer cascades its applications.
	Delete(ctx context.Context, id string) error

	// UpdateStatus is reserved for the adoptions inventory recompute; the
	// pets service has no operation that reaches it.
	UpdateStatus(ctx context.Context, id string, status InventoryStatus) error
}
