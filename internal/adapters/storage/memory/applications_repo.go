package memory

import (
	"context"
	"errors"
	"sync"

	"paws-and-claws/internal/domain/adoptions"
)

type applicationsRepo struct {
	mu   sync.RWMutex
	byID map[string]adoptions.Application

	// byPair indexes the single row per (user, pet) pair.
	byPair map[pairKey]string
}

type pairKey struct {
	userID string
	petID  string
}

func NewApplicationsRepo() adoptions.Repository {
	return &applicationsRepo{
		byID:   make(map[string]adoptions.Application),
		byPair: make(map[pairKey]string),
	}
}

func (r *applicationsRepo) Create(ctx context.Context, a adoptions.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := pairKey{a.UserID, a.PetID}
	if _, exists := r.byPair[k]; exists {
		return errors.New("application already exists for this user and pet")
	}

	r.byID[a.ID] = a
	r.byPair[k] = a.ID
	return nil
}

func (r *applicationsRepo) Update(ctx context.Context, a adoptions.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[a.ID]; !ok {
		return adoptions.ErrNotFound
	}
	r.byID[a.ID] = a
	return nil
}

func (r *applicationsRepo) GetByID(ctx context.Context, id string) (adoptions.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return adoptions.Application{}, adoptions.ErrNotFound
	}
	return a, nil
}

func (r *applicationsRepo) GetByUserAndPet(ctx context.Context, userID, petID string) (adoptions.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byPair[pairKey{userID, petID}]
	if !ok {
		return adoptions.Application{}, adoptions.ErrNotFound
	}
	return r.byID[id], nil
}

func (r *applicationsRepo) ListByUser(ctx context.Context, userID string) ([]adoptions.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]adoptions.Application, 0)
	for _, a := range r.byID {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *applicationsRepo) ListByPet(ctx context.Context, petID string) ([]adoptions.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]adoptions.Application, 0)
	for _, a := range r.byID {
		if a.PetID == petID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *applicationsRepo) ListAll(ctx context.Context) ([]adoptions.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]adoptions.Application, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a)
	}
	return out, nil
}
