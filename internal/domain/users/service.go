package users

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"paws-and-claws/internal/ports/auth"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
	ErrEmailTaken    = errors.New("email is already registered")
	ErrUnknownEmail  = errors.New("no account found with this email")
	ErrWrongPassword = errors.New("invalid password")
	ErrWeakPassword  = errors.New("password must be at least 8 characters and contain a letter and a digit")
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

// ValidatePassword enforces the account password policy. Exposed so the
// registration wizard can fail step 1 early instead of at the final commit.
func (s *Service) ValidatePassword(password string) error {
	if len(password) < 8 {
		return ErrWeakPassword
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return ErrWeakPassword
	}
	return nil
}

// EmailExists reports whether an account already uses the address.
func (s *Service) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

type OwnedPetInput struct {
	Name    string
	Species string
	Gender  string
	Breed   string
	Age     int
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string

	Address         string
	LivingSituation string
	HasOtherPets    bool
	OwnedPets       []OwnedPetInput
}

// Register creates the account and its owned pets in one shot. This is the
// wizard's commit: nothing is persisted for a registration before this call.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	email := normalizeEmail(in.Email)
	if email == "" || strings.TrimSpace(in.Password) == "" {
		return User{}, ErrInvalidInput
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return User{}, ErrInvalidInput
	}
	if err := s.ValidatePassword(in.Password); err != nil {
		return User{}, err
	}

	if exists, err := s.EmailExists(ctx, email); err != nil {
		return User{}, err
	} else if exists {
		return User{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	now := s.now()
	u := User{
		ID:              uuid.NewString(),
		Email:           email,
		PasswordHash:    string(hash),
		FirstName:       strings.TrimSpace(in.FirstName),
		LastName:        strings.TrimSpace(in.LastName),
		Address:         strings.TrimSpace(in.Address),
		LivingSituation: defaultLiving(in.LivingSituation),
		HasOtherPets:    in.HasOtherPets,
		Role:            auth.RoleUser,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	var pets []OwnedPet
	if in.HasOtherPets {
		for _, p := range in.OwnedPets {
			pets = append(pets, OwnedPet{
				ID:        uuid.NewString(),
				UserID:    u.ID,
				Name:      strings.TrimSpace(p.Name),
				Species:   strings.TrimSpace(p.Species),
				Gender:    strings.TrimSpace(p.Gender),
				Breed:     strings.TrimSpace(p.Breed),
				Age:       p.Age,
				CreatedAt: now,
			})
		}
	}

	if err := s.repo.CreateWithOwnedPets(ctx, u, pets); err != nil {
		return User{}, err
	}
	return u, nil
}

// Authenticate checks credentials, keeping the "unknown email" and "wrong
// password" cases distinct so the login form can say which field is wrong.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrUnknownEmail
		}
		return User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrWrongPassword
	}
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	return s.repo.GetByID(ctx, id)
}

// Profile returns the user plus the number of pets they already own.
func (s *Service) Profile(ctx context.Context, userID string) (User, int, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return User{}, 0, err
	}
	n, err := s.repo.CountOwnedPets(ctx, userID)
	if err != nil {
		return User{}, 0, err
	}
	return u, n, nil
}

func (s *Service) ListOwnedPets(ctx context.Context, userID string) ([]OwnedPet, error) {
	return s.repo.ListOwnedPets(ctx, userID)
}

type UpdateProfileInput struct {
	FirstName       string
	LastName        string
	Email           string
	Address         string
	LivingSituation string

	// Set when a new profile picture was uploaded.
	ProfilePictureURL *string
}

// UpdateProfile edits names, address, living situation and (with a uniqueness
// re-check) the email address.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (User, error) {
	if strings.TrimSpace(in.FirstName) == "" ||
		strings.TrimSpace(in.LastName) == "" ||
		strings.TrimSpace(in.Email) == "" {
		return User{}, ErrInvalidInput
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return User{}, err
	}

	newEmail := normalizeEmail(in.Email)
	if newEmail != u.Email {
		existing, err := s.repo.GetByEmail(ctx, newEmail)
		if err == nil && existing.ID != u.ID {
			return User{}, ErrEmailTaken
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			return User{}, err
		}
		u.Email = newEmail
	}

	u.FirstName = strings.TrimSpace(in.FirstName)
	u.LastName = strings.TrimSpace(in.LastName)
	u.Address = strings.TrimSpace(in.Address)
	u.LivingSituation = defaultLiving(in.LivingSituation)
	if in.ProfilePictureURL != nil {
		u.ProfilePictureURL = *in.ProfilePictureURL
	}
	u.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func defaultLiving(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "House"
	}
	return s
}
