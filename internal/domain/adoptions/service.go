package adoptions

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"paws-and-claws/internal/domain/pets"
)

const minMessageLen = 20

var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrMessageTooShort = errors.New("message too short")
	ErrPetUnavailable  = errors.New("pet unavailable for new applications")
	ErrAlreadyApplied  = errors.New("application already submitted")
)

// PetInventory is the slice of the pets layer the state machine needs: lookups
// plus the one status writer. pets.Repository satisfies it.
type PetInventory interface {
	GetByID(ctx context.Context, id string) (pets.Pet, error)
	UpdateStatus(ctx context.Context, id string, status pets.InventoryStatus) error
}

type Service struct {
	repo Repository
	inv  PetInventory
	now  func() time.Time

	// Per-pet locks serialize the application-write + inventory-recompute
	// pair, so two near-simultaneous submissions cannot both observe a stale
	// Available status.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(repo Repository, inv PetInventory) *Service {
	return &Service{
		repo:  repo,
		inv:   inv,
		now:   time.Now,
		locks: make(map[string]*sync.Mutex),
	}
}

func (s *Service) petLock(petID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[petID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[petID] = l
	}
	return l
}

// Submit files an application for (userID, petID). One row per pair: a
// cancelled row is reactivated in place, any other existing row is a conflict.
func (s *Service) Submit(ctx context.Context, userID, petID, message string) (Application, error) {
	message = strings.TrimSpace(message)
	if utf8.RuneCountInString(message) < minMessageLen {
		return Application{}, ErrMessageTooShort
	}
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(petID) == "" {
		return Application{}, ErrNotFound
	}

	l := s.petLock(petID)
	l.Lock()
	defer l.Unlock()

	pet, err := s.inv.GetByID(ctx, petID)
	if err != nil {
		return Application{}, ErrNotFound
	}

	if pet.Status == pets.StatusPending || pet.Status == pets.StatusAdopted {
		return Application{}, ErrPetUnavailable
	}

	existing, err := s.repo.GetByUserAndPet(ctx, userID, petID)
	switch {
	case err == nil && existing.Status == StatusCancelled:
		// Reactivate in place, preserving the row and its ID.
		existing.Status = StatusReview
		existing.CurrentStep = 1
		existing.Message = message
		existing.CreatedAtUtc = s.now().UTC()

		if err := s.repo.Update(ctx, existing); err != nil {
			return Application{}, err
		}
		if err := s.recomputeLocked(ctx, petID); err != nil {
			return Application{}, err
		}
		return existing, nil

	case err == nil:
		return Application{}, ErrAlreadyApplied

	case !errors.Is(err, ErrNotFound):
		return Application{}, err
	}

	a := Application{
		ID:           uuid.NewString(),
		UserID:       userID,
		PetID:        petID,
		Message:      message,
		Status:       StatusReview,
		CurrentStep:  1,
		CreatedAtUtc: s.now().UTC(),
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return Application{}, err
	}
	if err := s.recomputeLocked(ctx, petID); err != nil {
		return Application{}, err
	}
	return a, nil
}

// Cancel sets the application to CANCELLED unconditionally. Owner or admin only.
func (s *Service) Cancel(ctx context.Context, id, callerID string, callerIsAdmin bool) error {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return ErrNotFound
	}

	if !callerIsAdmin && a.UserID != callerID {
		return ErrForbidden
	}

	l := s.petLock(a.PetID)
	l.Lock()
	defer l.Unlock()

	a.Status = StatusCancelled
	if err := s.repo.Update(ctx, a); err != nil {
		return err
	}
	return s.recomputeLocked(ctx, a.PetID)
}

// UpdateStatus overwrites status and progress step from the admin console.
// Any whitelisted status is reachable from any other; an unknown status is
// rejected with no state change.
func (s *Service) UpdateStatus(ctx context.Context, id, rawStatus string, currentStep int) (Application, error) {
	status, err := ParseStatus(rawStatus)
	if err != nil {
		return Application{}, err
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Application{}, ErrNotFound
	}

	l := s.petLock(a.PetID)
	l.Lock()
	defer l.Unlock()

	a.Status = status
	a.CurrentStep = ClampStep(currentStep)

	if err := s.repo.Update(ctx, a); err != nil {
		return Application{}, err
	}
	if err := s.recomputeLocked(ctx, a.PetID); err != nil {
		return Application{}, err
	}
	return a, nil
}

// ComputeInventoryStatus folds the full application set (cancelled included)
// into the pet's availability label. Pure and idempotent.
func ComputeInventoryStatus(apps []Application) pets.InventoryStatus {
	anyPendingOrApproved := false
	for _, a := range apps {
		switch a.Status {
		case StatusAdopted:
			return pets.StatusAdopted
		case StatusPending, StatusApproved:
			anyPendingOrApproved = true
		}
	}
	if anyPendingOrApproved {
		return pets.StatusPending
	}
	return pets.StatusAvailable
}

// Recompute refreshes the pet's derived status. Safe to call for a pet that
// was deleted in the meantime.
func (s *Service) Recompute(ctx context.Context, petID string) error {
	l := s.petLock(petID)
	l.Lock()
	defer l.Unlock()
	return s.recomputeLocked(ctx, petID)
}

func (s *Service) recomputeLocked(ctx context.Context, petID string) error {
	apps, err := s.repo.ListByPet(ctx, petID)
	if err != nil {
		return err
	}

	err = s.inv.UpdateStatus(ctx, petID, ComputeInventoryStatus(apps))
	if errors.Is(err, pets.ErrNotFound) {
		return nil
	}
	return err
}

func (s *Service) GetByID(ctx context.Context, id string) (Application, error) {
	return s.repo.GetByID(ctx, id)
}

// ListResult is one filtered page of applications plus the counts the filter
// tabs display. Counts always cover the unfiltered set.
type ListResult struct {
	Applications []Application
	Counts       map[string]int
}

// ListForUser returns the user's applications under the filter semantics:
// "All" hides cancelled, "Cancelled" shows only cancelled, any named status
// matches exactly.
func (s *Service) ListForUser(ctx context.Context, userID, filter string) (ListResult, error) {
	all, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return ListResult{}, err
	}
	return buildListResult(all, filter), nil
}

// ListAll is the admin view across every applicant.
func (s *Service) ListAll(ctx context.Context, filter string) (ListResult, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return ListResult{}, err
	}
	return buildListResult(all, filter), nil
}

func buildListResult(all []Application, filter string) ListResult {
	filtered := filterApplications(all, filter)

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAtUtc.After(filtered[j].CreatedAtUtc)
	})

	return ListResult{
		Applications: filtered,
		Counts:       buildCounts(all),
	}
}

func filterApplications(all []Application, filter string) []Application {
	normalized := strings.ToUpper(strings.TrimSpace(filter))
	if normalized == "" {
		normalized = "ALL"
	}

	out := make([]Application, 0, len(all))
	for _, a := range all {
		switch normalized {
		case "ALL":
			if a.Status != StatusCancelled {
				out = append(out, a)
			}
		case string(StatusCancelled):
			if a.Status == StatusCancelled {
				out = append(out, a)
			}
		default:
			if string(a.Status) == normalized {
				out = append(out, a)
			}
		}
	}
	return out
}

func buildCounts(all []Application) map[string]int {
	counts := map[string]int{
		"All":       0,
		"Review":    0,
		"Pending":   0,
		"Approved":  0,
		"Rejected":  0,
		"Adopted":   0,
		"Cancelled": 0,
	}

	for _, a := range all {
		switch a.Status {
		case StatusReview:
			counts["Review"]++
		case StatusPending:
			counts["Pending"]++
		case StatusApproved:
			counts["Approved"]++
		case StatusRejected:
			counts["Rejected"]++
		case StatusAdopted:
			counts["Adopted"]++
		case StatusCancelled:
			counts["Cancelled"]++
		}
	}
	counts["All"] = len(all) - counts["Cancelled"]
	return counts
}
