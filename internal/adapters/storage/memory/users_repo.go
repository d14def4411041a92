package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"paws-and-claws/internal/domain/users"
)

type usersRepo struct {
	mu      sync.RWMutex
	byID    map[string]users.User
	byEmail map[string]string

	ownedByUser map[string][]users.OwnedPet
}

func NewUsersRepo() users.Repository {
	return &usersRepo{
		byID:        make(map[string]users.User),
		byEmail:     make(map[string]string),
		ownedByUser: make(map[string][]users.OwnedPet),
	}
}

// CreateWithOwnedPets inserts the account and its pets under one lock, so a
// reader can never observe the account without its pets.
func (r *usersRepo) CreateWithOwnedPets(ctx context.Context, u users.User, pets []users.OwnedPet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(u.ID) == "" {
		return users.ErrInvalidInput
	}
	if _, taken := r.byEmail[u.Email]; taken {
		return users.ErrEmailTaken
	}

	r.byID[u.ID] = u
	r.byEmail[u.Email] = u.ID
	if len(pets) > 0 {
		r.ownedByUser[u.ID] = append([]users.OwnedPet(nil), pets...)
	}
	return nil
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}

func (r *usersRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return r.byID[id], nil
}

func (r *usersRepo) Update(ctx context.Context, u users.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.byID[u.ID]
	if !ok {
		return users.ErrNotFound
	}

	if old.Email != u.Email {
		delete(r.byEmail, old.Email)
		r.byEmail[u.Email] = u.ID
	}
	r.byID[u.ID] = u
	return nil
}

func (r *usersRepo) ListOwnedPets(ctx context.Context, userID string) ([]users.OwnedPet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := append([]users.OwnedPet(nil), r.ownedByUser[userID]...)
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *usersRepo) CountOwnedPets(ctx context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.ownedByUser[userID]), nil
}
