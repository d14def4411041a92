package pets

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Name        string
	Species     string
	Breed       string
	Age         int
	Gender      string
	Size        string
	Location    string
	Description string
	ImageURL    string
}

// Create adds a pet to the inventory. New pets always start Available; staff
// cannot pick a status, it belongs to the adoptions recompute.
func (s *Service) Create(ctx context.Context, in CreateInput) (Pet, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Species) == "" {
		return Pet{}, ErrInvalidInput
	}
	if in.Age < 0 {
		return Pet{}, ErrInvalidInput
	}

	now := s.now()
	p := Pet{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Species:     strings.TrimSpace(in.Species),
		Breed:       strings.TrimSpace(in.Breed),
		Age:         in.Age,
		Gender:      strings.TrimSpace(in.Gender),
		Size:        strings.TrimSpace(in.Size),
		Location:    strings.TrimSpace(in.Location),
		Status:      StatusAvailable,
		ImageURL:    in.ImageURL,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

type UpdateInput struct {
	Name        string
	Species     string
	Breed       string
	Age         int
	Gender      string
	Size        string
	Location    string
	Description string

	// Empty means keep the current image.
	ImageURL string
}

// Update edits the staff-editable fields. Status is untouched on purpose.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Pet, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Pet{}, err
	}

	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Species) == "" {
		return Pet{}, ErrInvalidInput
	}
	if in.Age < 0 {
		return Pet{}, ErrInvalidInput
	}

	p.Name = strings.TrimSpace(in.Name)
	p.Species = strings.TrimSpace(in.Species)
	p.Breed = strings.TrimSpace(in.Breed)
	p.Age = in.Age
	p.Gender = strings.TrimSpace(in.Gender)
	p.Size = strings.TrimSpace(in.Size)
	p.Location = strings.TrimSpace(in.Location)
	p.Description = in.Description
	if strings.TrimSpace(in.ImageURL) != "" {
		p.ImageURL = in.ImageURL
	}
	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Pet, error) {
	return s.repo.List(ctx)
}
