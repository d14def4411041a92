package registration

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"paws-and-claws/internal/domain/users"
	"paws-and-claws/internal/middleware"
	"paws-and-claws/internal/platform/flash"
	"paws-and-claws/internal/ports/auth"
)

type HandlerDeps struct {
	Wizard     *Wizard
	Codec      auth.TokenCodec
	SessionTTL time.Duration
	Flash      *flash.Flash
}

func RegisterRoutes(r chi.Router, deps HandlerDeps) {
	r.Route("/register", func(rr chi.Router) {
		rr.Get("/", step1GetHandler(deps.Wizard))
		rr.Post("/", step1PostHandler(deps.Wizard))

		rr.Get("/step2", step2GetHandler(deps.Wizard))
		rr.Post("/step2", step2PostHandler(deps.Wizard))

		rr.Get("/step3", step3GetHandler(deps.Wizard))
		rr.Post("/step3", step3PostHandler(deps.Wizard))

		rr.Get("/step4", step4GetHandler(deps.Wizard))
		rr.Post("/step4", step4PostHandler(deps))
	})
}

// requireStep1 bounces any later step back to the start when the account step
// is missing, which covers both expiry and deep links into the middle of the
// flow.
func requireStep1(wz *Wizard, w http.ResponseWriter, r *http.Request) (string, bool) {
	sid := middleware.GetSessionID(r.Context())
	if _, ok := wz.SavedStep1(r.Context(), sid); !ok {
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return "", false
	}
	return sid, true
}

type step1Response struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func step1GetHandler(wz *Wizard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid := middleware.GetSessionID(r.Context())

		// password is never echoed back
		s, _ := wz.SavedStep1(r.Context(), sid)
		writeJSON(w, http.StatusOK, step1Response{
			Email:     s.Email,
			FirstName: s.FirstName,
			LastName:  s.LastName,
		})
	}
}

func step1PostHandler(wz *Wizard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid := middleware.GetSessionID(r.Context())

		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}

		fieldErrs, err := wz.SubmitStep1(r.Context(), sid, Step1{
			Email:           r.PostFormValue("email"),
			Password:        r.PostFormValue("password"),
			FirstName:       r.PostFormValue("first_name"),
			LastName:        r.PostFormValue("last_name"),
			ConfirmPassword: r.PostFormValue("confirm_password"),
		})
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if len(fieldErrs) > 0 {
			writeJSON(w, http.StatusBadRequest, map[string]any{"errors": fieldErrs})
			return
		}

		http.Redirect(w, r, "/register/step2", http.StatusSeeOther)
	}
}

func step2GetHandler(wz *Wizard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, ok := requireStep1(wz, w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"has_other_pets": wz.HasOtherPets(r.Context(), sid),
		})
	}
}

func step2PostHandler(wz *Wizard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, ok := requireStep1(wz, w, r)
		if !ok {
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}

		hasPets := parseBool(r.PostFormValue("has_other_pets"))
		if err := wz.SubmitStep2(r.Context(), sid, hasPets); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		// the pet roster step only exists for owners
		if hasPets {
			http.Redirect(w, r, "/register/step3", http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/register/step4", http.StatusSeeOther)
	}
}

func step3GetHandler(wz *Wizard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, ok := requireStep1(wz, w, r)
		if !ok {
			return
		}
		pets := wz.Pets(r.Context(), sid)
		if pets == nil {
			pets = []PetDraft{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"pets": pets})
	}
}

// step3PostHandler multiplexes the roster form on its action field: AddPet,
// RemovePet:<index>, or Proceed.
func step3PostHandler(wz *Wizard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, ok := requireStep1(wz, w, r)
		if !ok {
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}

		action := r.PostFormValue("action")
		switch {
		case action == "AddPet":
			age := 0
			if v := strings.TrimSpace(r.PostFormValue("pet_age")); v != "" {
				if n, err := strconv.Atoi(v); err == nil {
					age = n
				}
			}
			err := wz.AddPet(r.Context(), sid, PetDraft{
				Name:    r.PostFormValue("pet_name"),
				Species: r.PostFormValue("pet_species"),
				Gender:  r.PostFormValue("pet_gender"),
				Breed:   r.PostFormValue("pet_breed"),
				Age:     age,
			})
			if errors.Is(err, ErrPetFields) {
				writeJSON(w, http.StatusBadRequest, map[string]any{
					"errors": map[string]string{"pet_name": "Pet name and species are required."},
				})
				return
			}
			if err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			http.Redirect(w, r, "/register/step3", http.StatusSeeOther)

		case strings.HasPrefix(action, "RemovePet:"):
			idx, err := strconv.Atoi(strings.TrimPrefix(action, "RemovePet:"))
			if err != nil {
				http.Error(w, "invalid form", http.StatusBadRequest)
				return
			}
			if err := wz.RemovePet(r.Context(), sid, idx); err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			http.Redirect(w, r, "/register/step3", http.StatusSeeOther)

		case action == "Proceed":
			http.Redirect(w, r, "/register/step4", http.StatusSeeOther)

		default:
			// unknown or missing action redisplays the roster unchanged
			http.Redirect(w, r, "/register/step3", http.StatusSeeOther)
		}
	}
}

func step4GetHandler(wz *Wizard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, ok := requireStep1(wz, w, r)
		if !ok {
			return
		}
		h, _ := wz.SavedHome(r.Context(), sid)
		writeJSON(w, http.StatusOK, map[string]any{
			"address":          h.Address,
			"living_situation": h.LivingSituation,
			"back_target":      wz.BackTarget(r.Context(), sid),
		})
	}
}

func step4PostHandler(deps HandlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid := middleware.GetSessionID(r.Context())

		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}

		u, err := deps.Wizard.Complete(r.Context(), sid, Home{
			Address:         r.PostFormValue("address"),
			LivingSituation: r.PostFormValue("living_situation"),
		})
		switch {
		case errors.Is(err, ErrExpired):
			deps.Flash.Error(r.Context(), sid, "Your session expired. Please start again.")
			http.Redirect(w, r, "/register", http.StatusSeeOther)
			return
		case errors.Is(err, ErrAddressRequired):
			// the typed data is already saved, so redisplay carries it
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"errors": map[string]string{"address": "Address is required."},
			})
			return
		case errors.Is(err, users.ErrEmailTaken):
			deps.Flash.Error(r.Context(), sid, "This email is already registered.")
			http.Redirect(w, r, "/register", http.StatusSeeOther)
			return
		case err != nil:
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		// sign the new account in right away
		token, err := deps.Codec.Issue(auth.Claims{
			UserID: u.ID,
			Email:  u.Email,
			Role:   u.Role,
		}, deps.SessionTTL)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		middleware.SetSessionCookie(w, token, int(deps.SessionTTL.Seconds()))

		deps.Flash.Success(r.Context(), sid, "Welcome to Paws & Claws, "+u.DisplayName()+"!")
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "yes", "on", "1":
		return true
	default:
		return false
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
