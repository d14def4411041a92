package registration

import (
	"context"
	"errors"
	"testing"
	"time"

	sessmem "paws-and-claws/internal/adapters/session/memory"
	storemem "paws-and-claws/internal/adapters/storage/memory"
	"paws-and-claws/internal/domain/users"
)

func newTestWizard() (*Wizard, *users.Service) {
	repo := storemem.NewUsersRepo()
	usersSvc := users.NewService(repo)
	return NewWizard(sessmem.NewStore(30*time.Minute), usersSvc), usersSvc
}

func validStep1() Step1 {
	return Step1{
		Email:           "ana@example.com",
		Password:        "hunter2hunter2",
		FirstName:       "Ana",
		LastName:        "Reyes",
		ConfirmPassword: "hunter2hunter2",
	}
}

func TestSubmitStep1_FieldErrors(t *testing.T) {
	wz, _ := newTestWizard()
	ctx := context.Background()

	fieldErrs, err := wz.SubmitStep1(ctx, "sid", Step1{
		Email:    "not-an-email",
		Password: "short",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	for _, f := range []string{"first_name", "last_name", "email", "password"} {
		if fieldErrs[f] == "" {
			t.Fatalf("expected error for %s, got %v", f, fieldErrs)
		}
	}

	// nothing stored on a failed step
	if _, ok := wz.SavedStep1(ctx, "sid"); ok {
		t.Fatal("step 1 should not be saved when validation fails")
	}
}

func TestSubmitStep1_PasswordMismatch(t *testing.T) {
	wz, _ := newTestWizard()
	ctx := context.Background()

	s := validStep1()
	s.ConfirmPassword = "completely-different-9"

	fieldErrs, err := wz.SubmitStep1(ctx, "sid", s)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if fieldErrs["confirm_password"] == "" {
		t.Fatalf("expected confirmation mismatch error, got %v", fieldErrs)
	}
	if _, ok := wz.SavedStep1(ctx, "sid"); ok {
		t.Fatal("step 1 should not be saved on mismatch")
	}
}

func TestSubmitStep1_TakenEmail(t *testing.T) {
	wz, usersSvc := newTestWizard()
	ctx := context.Background()

	if _, err := usersSvc.Register(ctx, users.RegisterInput{
		Email:    "ana@example.com",
		Password: "hunter2hunter2",
	}); err != nil {
		t.Fatalf("seed account: %v", err)
	}

	fieldErrs, err := wz.SubmitStep1(ctx, "sid", validStep1())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if fieldErrs["email"] == "" {
		t.Fatalf("expected taken-email error, got %v", fieldErrs)
	}
}

func TestStep2_DefaultsToHasPets(t *testing.T) {
	wz, _ := newTestWizard()
	ctx := context.Background()

	if !wz.HasOtherPets(ctx, "sid") {
		t.Fatal("fresh step 2 should default to yes")
	}

	if err := wz.SubmitStep2(ctx, "sid", false); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if wz.HasOtherPets(ctx, "sid") {
		t.Fatal("answer should stick")
	}
}

func TestStep2_AnsweringNoDiscardsDrafts(t *testing.T) {
	wz, _ := newTestWizard()
	ctx := context.Background()

	if err := wz.AddPet(ctx, "sid", PetDraft{Name: "Luna", Species: "Cat"}); err != nil {
		t.Fatalf("add pet: %v", err)
	}
	if err := wz.SubmitStep2(ctx, "sid", false); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got := wz.Pets(ctx, "sid"); len(got) != 0 {
		t.Fatalf("expected drafts discarded, got %d", len(got))
	}
}

func TestPetDrafts_AddAndRemove(t *testing.T) {
	wz, _ := newTestWizard()
	ctx := context.Background()

	if err := wz.AddPet(ctx, "sid", PetDraft{Species: "Cat"}); !errors.Is(err, ErrPetFields) {
		t.Fatalf("expected ErrPetFields without a name, got %v", err)
	}

	_ = wz.AddPet(ctx, "sid", PetDraft{Name: "Luna", Species: "Cat"})
	_ = wz.AddPet(ctx, "sid", PetDraft{Name: "Rocky", Species: "Dog", Age: 4})

	// out-of-range removals are no-ops
	if err := wz.RemovePet(ctx, "sid", -1); err != nil {
		t.Fatalf("remove -1: %v", err)
	}
	if err := wz.RemovePet(ctx, "sid", 5); err != nil {
		t.Fatalf("remove 5: %v", err)
	}
	if got := wz.Pets(ctx, "sid"); len(got) != 2 {
		t.Fatalf("expected 2 drafts, got %d", len(got))
	}

	if err := wz.RemovePet(ctx, "sid", 0); err != nil {
		t.Fatalf("remove 0: %v", err)
	}
	got := wz.Pets(ctx, "sid")
	if len(got) != 1 || got[0].Name != "Rocky" {
		t.Fatalf("wrong draft left: %+v", got)
	}
}

func TestBackTarget(t *testing.T) {
	wz, _ := newTestWizard()
	ctx := context.Background()

	if got := wz.BackTarget(ctx, "sid"); got != "/register/step2" {
		t.Fatalf("empty roster should go back to step 2, got %s", got)
	}
	_ = wz.AddPet(ctx, "sid", PetDraft{Name: "Luna", Species: "Cat"})
	if got := wz.BackTarget(ctx, "sid"); got != "/register/step3" {
		t.Fatalf("non-empty roster should go back to step 3, got %s", got)
	}
}

func TestComplete_CommitsAccountWithPets(t *testing.T) {
	wz, usersSvc := newTestWizard()
	ctx := context.Background()

	if fieldErrs, err := wz.SubmitStep1(ctx, "sid", validStep1()); err != nil || len(fieldErrs) > 0 {
		t.Fatalf("step 1: err=%v fieldErrs=%v", err, fieldErrs)
	}
	_ = wz.SubmitStep2(ctx, "sid", true)
	_ = wz.AddPet(ctx, "sid", PetDraft{Name: "Luna", Species: "Cat", Age: 2})
	_ = wz.AddPet(ctx, "sid", PetDraft{Name: "Rocky", Species: "Dog", Age: 4})

	u, err := wz.Complete(ctx, "sid", Home{Address: "123 Elm St", LivingSituation: "Apartment"})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if u.Email != "ana@example.com" || !u.HasOtherPets {
		t.Fatalf("unexpected user: %+v", u)
	}
	if u.LivingSituation != "Apartment" {
		t.Fatalf("living situation not persisted: %s", u.LivingSituation)
	}

	owned, err := usersSvc.ListOwnedPets(ctx, u.ID)
	if err != nil {
		t.Fatalf("list owned: %v", err)
	}
	if len(owned) != 2 {
		t.Fatalf("expected 2 owned pets, got %d", len(owned))
	}

	// the wizard is gone after commit
	if _, ok := wz.SavedStep1(ctx, "sid"); ok {
		t.Fatal("wizard state should be discarded after commit")
	}
}

func TestComplete_WithoutPets(t *testing.T) {
	wz, usersSvc := newTestWizard()
	ctx := context.Background()

	if fieldErrs, err := wz.SubmitStep1(ctx, "sid", validStep1()); err != nil || len(fieldErrs) > 0 {
		t.Fatalf("step 1: err=%v fieldErrs=%v", err, fieldErrs)
	}
	_ = wz.SubmitStep2(ctx, "sid", false)

	u, err := wz.Complete(ctx, "sid", Home{Address: "9 Oak Ave"})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if u.HasOtherPets {
		t.Fatal("expected HasOtherPets false")
	}
	if n, _ := usersSvc.ListOwnedPets(ctx, u.ID); len(n) != 0 {
		t.Fatalf("expected no owned pets, got %d", len(n))
	}
}

func TestComplete_ExpiredSession(t *testing.T) {
	wz, _ := newTestWizard()

	_, err := wz.Complete(context.Background(), "cold-session", Home{})
	if !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestComplete_EmailClaimedSinceStep1(t *testing.T) {
	wz, usersSvc := newTestWizard()
	ctx := context.Background()

	if fieldErrs, err := wz.SubmitStep1(ctx, "sid", validStep1()); err != nil || len(fieldErrs) > 0 {
		t.Fatalf("step 1: err=%v fieldErrs=%v", err, fieldErrs)
	}

	// another signup claims the address between step 1 and commit
	if _, err := usersSvc.Register(ctx, users.RegisterInput{
		Email:    "ana@example.com",
		Password: "hunter2hunter2",
	}); err != nil {
		t.Fatalf("competing signup: %v", err)
	}

	_, err := wz.Complete(ctx, "sid", Home{Address: "9 Oak Ave"})
	if !errors.Is(err, users.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestComplete_RequiresAddress(t *testing.T) {
	wz, _ := newTestWizard()
	ctx := context.Background()

	if fieldErrs, err := wz.SubmitStep1(ctx, "sid", validStep1()); err != nil || len(fieldErrs) > 0 {
		t.Fatalf("step 1: err=%v fieldErrs=%v", err, fieldErrs)
	}

	_, err := wz.Complete(ctx, "sid", Home{Address: "   ", LivingSituation: "Apartment"})
	if !errors.Is(err, ErrAddressRequired) {
		t.Fatalf("expected ErrAddressRequired, got %v", err)
	}

	// the partial home data is kept for redisplay and the flow survives
	h, ok := wz.SavedHome(ctx, "sid")
	if !ok || h.LivingSituation != "Apartment" {
		t.Fatalf("partial step 4 data lost: ok=%v home=%+v", ok, h)
	}
	if _, ok := wz.SavedStep1(ctx, "sid"); !ok {
		t.Fatal("wizard state should survive a failed commit")
	}

	if _, err := wz.Complete(ctx, "sid", Home{Address: "9 Oak Ave"}); err != nil {
		t.Fatalf("retry with address: %v", err)
	}
}
