package registration

import (
	"context"
	"encoding/json"
	"errors"
	"net/mail"
	"strings"

	"paws-and-claws/internal/domain/users"
	"paws-and-claws/internal/ports/session"
)

// Session keys holding the in-progress registration. Nothing under these keys
// touches durable storage until Complete.
const (
	keyStep1   = "wizard.step1"
	keyHasPets = "wizard.haspets"
	keyPets    = "wizard.pets"
	keyHome    = "wizard.home"
)

var (
	// ErrExpired means the account step is gone from the session, either
	// because it timed out or the flow was never started.
	ErrExpired = errors.New("registration session expired")

	ErrPetFields = errors.New("pet name and species are required")

	ErrAddressRequired = errors.New("address is required")
)

type Step1 struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	// Confirmation is only compared, never stored.
	ConfirmPassword string `json:"-"`
}

type PetDraft struct {
	Name    string `json:"name"`
	Species string `json:"species"`
	Gender  string `json:"gender"`
	Breed   string `json:"breed"`
	Age     int    `json:"age"`
}

type Home struct {
	Address         string `json:"address"`
	LivingSituation string `json:"living_situation"`
}

// Wizard drives the four-step signup flow. All intermediate state lives in the
// session store under the visitor's anonymous session ID; the users service is
// only hit for validation until the final commit.
type Wizard struct {
	store session.Store
	users *users.Service
}

func NewWizard(store session.Store, usersSvc *users.Service) *Wizard {
	return &Wizard{store: store, users: usersSvc}
}

// SavedStep1 returns the stored account step, if the flow has one.
func (wz *Wizard) SavedStep1(ctx context.Context, sid string) (Step1, bool) {
	var s Step1
	if !wz.load(ctx, sid, keyStep1, &s) {
		return Step1{}, false
	}
	return s, true
}

// SubmitStep1 validates and stores the account step. Field-level problems come
// back in the map keyed by form field name; only infrastructure failures are
// returned as errors.
func (wz *Wizard) SubmitStep1(ctx context.Context, sid string, s Step1) (map[string]string, error) {
	s.Email = strings.TrimSpace(s.Email)
	s.FirstName = strings.TrimSpace(s.FirstName)
	s.LastName = strings.TrimSpace(s.LastName)

	fieldErrs := map[string]string{}
	if s.FirstName == "" {
		fieldErrs["first_name"] = "First name is required."
	}
	if s.LastName == "" {
		fieldErrs["last_name"] = "Last name is required."
	}
	if s.Email == "" {
		fieldErrs["email"] = "Email is required."
	} else if _, err := mail.ParseAddress(s.Email); err != nil {
		fieldErrs["email"] = "Please enter a valid email address."
	}
	if err := wz.users.ValidatePassword(s.Password); err != nil {
		fieldErrs["password"] = "Password must be at least 8 characters and contain a letter and a digit."
	}
	if s.Password != s.ConfirmPassword {
		fieldErrs["confirm_password"] = "Passwords do not match."
	}

	if _, ok := fieldErrs["email"]; !ok {
		taken, err := wz.users.EmailExists(ctx, s.Email)
		if err != nil {
			return nil, err
		}
		if taken {
			fieldErrs["email"] = "This email is already registered."
		}
	}

	if len(fieldErrs) > 0 {
		return fieldErrs, nil
	}

	if err := wz.save(ctx, sid, keyStep1, s); err != nil {
		return nil, err
	}
	return nil, nil
}

// HasOtherPets reports the step-2 answer, defaulting to yes so a fresh step-2
// form starts with the pet section open.
func (wz *Wizard) HasOtherPets(ctx context.Context, sid string) bool {
	var has bool
	if !wz.load(ctx, sid, keyHasPets, &has) {
		return true
	}
	return has
}

// SubmitStep2 records the answer. Answering no discards any pets already
// drafted, so flipping back and forth cannot leak stale drafts into the commit.
func (wz *Wizard) SubmitStep2(ctx context.Context, sid string, hasPets bool) error {
	if err := wz.save(ctx, sid, keyHasPets, hasPets); err != nil {
		return err
	}
	if !hasPets {
		return wz.store.Delete(ctx, sid, keyPets)
	}
	return nil
}

// Pets returns the drafted pet list, empty when none.
func (wz *Wizard) Pets(ctx context.Context, sid string) []PetDraft {
	var drafts []PetDraft
	wz.load(ctx, sid, keyPets, &drafts)
	return drafts
}

func (wz *Wizard) AddPet(ctx context.Context, sid string, d PetDraft) error {
	d.Name = strings.TrimSpace(d.Name)
	d.Species = strings.TrimSpace(d.Species)
	if d.Name == "" || d.Species == "" {
		return ErrPetFields
	}
	if d.Age < 0 {
		d.Age = 0
	}
	return wz.save(ctx, sid, keyPets, append(wz.Pets(ctx, sid), d))
}

// RemovePet drops the draft at index. Out-of-range indexes are a no-op, the
// list never errors on a stale remove button.
func (wz *Wizard) RemovePet(ctx context.Context, sid string, index int) error {
	drafts := wz.Pets(ctx, sid)
	if index < 0 || index >= len(drafts) {
		return nil
	}
	drafts = append(drafts[:index], drafts[index+1:]...)
	return wz.save(ctx, sid, keyPets, drafts)
}

func (wz *Wizard) SavedHome(ctx context.Context, sid string) (Home, bool) {
	var h Home
	if !wz.load(ctx, sid, keyHome, &h) {
		return Home{}, false
	}
	return h, true
}

func (wz *Wizard) SaveHome(ctx context.Context, sid string, h Home) error {
	h.Address = strings.TrimSpace(h.Address)
	h.LivingSituation = strings.TrimSpace(h.LivingSituation)
	return wz.save(ctx, sid, keyHome, h)
}

// BackTarget is where the step-4 back button goes: step 3 when pets were
// drafted, otherwise straight to step 2.
func (wz *Wizard) BackTarget(ctx context.Context, sid string) string {
	if len(wz.Pets(ctx, sid)) == 0 {
		return "/register/step2"
	}
	return "/register/step3"
}

// Complete commits the whole flow as one account. The email is re-checked here
// because another signup may have claimed it since step 1. The home data is
// saved before validation so a failed attempt redisplays what was typed.
func (wz *Wizard) Complete(ctx context.Context, sid string, h Home) (users.User, error) {
	s1, ok := wz.SavedStep1(ctx, sid)
	if !ok {
		return users.User{}, ErrExpired
	}

	if err := wz.SaveHome(ctx, sid, h); err != nil {
		return users.User{}, err
	}
	if strings.TrimSpace(h.Address) == "" {
		return users.User{}, ErrAddressRequired
	}

	hasPets := wz.HasOtherPets(ctx, sid)
	drafts := wz.Pets(ctx, sid)

	in := users.RegisterInput{
		Email:           s1.Email,
		Password:        s1.Password,
		FirstName:       s1.FirstName,
		LastName:        s1.LastName,
		Address:         strings.TrimSpace(h.Address),
		LivingSituation: strings.TrimSpace(h.LivingSituation),
		HasOtherPets:    hasPets && len(drafts) > 0,
	}
	for _, d := range drafts {
		in.OwnedPets = append(in.OwnedPets, users.OwnedPetInput{
			Name:    d.Name,
			Species: d.Species,
			Gender:  d.Gender,
			Breed:   d.Breed,
			Age:     d.Age,
		})
	}

	u, err := wz.users.Register(ctx, in)
	if err != nil {
		return users.User{}, err
	}

	wz.Discard(ctx, sid)
	return u, nil
}

// Discard drops all wizard state for the session.
func (wz *Wizard) Discard(ctx context.Context, sid string) {
	_ = wz.store.Clear(ctx, sid)
}

func (wz *Wizard) save(ctx context.Context, sid, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return wz.store.Set(ctx, sid, key, b)
}

func (wz *Wizard) load(ctx context.Context, sid, key string, v any) bool {
	b, err := wz.store.Get(ctx, sid, key)
	if err != nil {
		return false
	}
	return json.Unmarshal(b, v) == nil
}
