package users

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"paws-and-claws/internal/adapters/uploads"
	"paws-and-claws/internal/middleware"
	"paws-and-claws/internal/platform/flash"
	"paws-and-claws/internal/ports/auth"
)

type HandlerDeps struct {
	Svc        *Service
	Codec      auth.TokenCodec
	SessionTTL time.Duration
	Uploads    uploads.Store
	Flash      *flash.Flash
}

func RegisterRoutes(r chi.Router, deps HandlerDeps) {
	r.Post("/login", loginHandler(deps))
	r.Post("/logout", logoutHandler())

	r.Route("/me", func(mr chi.Router) {
		mr.Get("/", profileHandler(deps.Svc))
		mr.Post("/", updateProfileHandler(deps))
	})
}

type profileResponse struct {
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	FullName          string `json:"full_name"`
	Email             string `json:"email"`
	Address           string `json:"address"`
	LivingSituation   string `json:"living_situation"`
	ProfilePictureURL string `json:"profile_picture_url"`
	CurrentPetCount   int    `json:"current_pet_count"`
}

func loginHandler(deps HandlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}

		email := r.PostFormValue("email")
		password := r.PostFormValue("password")
		if strings.TrimSpace(email) == "" || password == "" {
			writeFieldErrors(w, http.StatusBadRequest, map[string]string{
				"email": "Email and password are required.",
			})
			return
		}

		u, err := deps.Svc.Authenticate(r.Context(), email, password)
		if err != nil {
			switch {
			case errors.Is(err, ErrUnknownEmail):
				writeFieldErrors(w, http.StatusUnauthorized, map[string]string{
					"email": "Invalid email. No account found with this email.",
				})
			case errors.Is(err, ErrWrongPassword):
				writeFieldErrors(w, http.StatusUnauthorized, map[string]string{
					"password": "Invalid password. Please try again.",
				})
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		token, err := deps.Codec.Issue(auth.Claims{UserID: u.ID, Email: u.Email, Role: u.Role}, deps.SessionTTL)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		middleware.SetSessionCookie(w, token, int(deps.SessionTTL.Seconds()))

		// admins land on the review console
		target := "/"
		if u.Role == auth.RoleAdmin {
			target = "/admin/applications"
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}

func logoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		middleware.ClearSessionCookie(w)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func profileHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		u, petCount, err := svc.Profile(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		pic := u.ProfilePictureURL
		if strings.TrimSpace(pic) == "" {
			pic = "/images/profile-placeholder.jpg"
		}

		writeJSON(w, http.StatusOK, profileResponse{
			FirstName:         u.FirstName,
			LastName:          u.LastName,
			FullName:          u.FullName(),
			Email:             u.Email,
			Address:           u.Address,
			LivingSituation:   u.LivingSituation,
			ProfilePictureURL: pic,
			CurrentPetCount:   petCount,
		})
	}
}

func updateProfileHandler(deps HandlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		sid := middleware.GetSessionID(r.Context())

		if err := r.ParseMultipartForm(uploads.MaxBytes + 1024); err != nil {
			deps.Flash.Error(r.Context(), sid, "Could not read the submitted form.")
			http.Redirect(w, r, "/me", http.StatusSeeOther)
			return
		}

		in := UpdateProfileInput{
			FirstName:       r.PostFormValue("first_name"),
			LastName:        r.PostFormValue("last_name"),
			Email:           r.PostFormValue("email"),
			Address:         r.PostFormValue("address"),
			LivingSituation: r.PostFormValue("living_situation"),
		}

		if file, header, err := r.FormFile("profile_picture"); err == nil {
			defer file.Close()
			url, err := deps.Uploads.Save(r.Context(), header.Filename, file)
			if err != nil {
				switch {
				case errors.Is(err, uploads.ErrTooLarge):
					deps.Flash.Error(r.Context(), sid, "Image too large. Max is 4MB.")
				case errors.Is(err, uploads.ErrBadFileType):
					deps.Flash.Error(r.Context(), sid, "Invalid file type. Only JPG/PNG allowed.")
				default:
					deps.Flash.Error(r.Context(), sid, "Could not store the uploaded image.")
				}
				http.Redirect(w, r, "/me", http.StatusSeeOther)
				return
			}
			in.ProfilePictureURL = &url
		}

		if _, err := deps.Svc.UpdateProfile(r.Context(), claims.UserID, in); err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				deps.Flash.Error(r.Context(), sid, "First name, last name, and email are required.")
			case errors.Is(err, ErrEmailTaken):
				deps.Flash.Error(r.Context(), sid, "That email is already in use.")
			case errors.Is(err, ErrNotFound):
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			default:
				deps.Flash.Error(r.Context(), sid, "Could not update profile.")
			}
			http.Redirect(w, r, "/me", http.StatusSeeOther)
			return
		}

		deps.Flash.Success(r.Context(), sid, "Profile updated successfully.")
		http.Redirect(w, r, "/me", http.StatusSeeOther)
	}
}

func writeFieldErrors(w http.ResponseWriter, status int, fields map[string]string) {
	writeJSON(w, status, map[string]any{"errors": fields})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
