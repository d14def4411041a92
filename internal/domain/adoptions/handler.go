package adoptions

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"paws-and-claws/internal/domain/pets"
	"paws-and-claws/internal/domain/users"
	"paws-and-claws/internal/middleware"
	"paws-and-claws/internal/platform/flash"
)

type HandlerDeps struct {
	Svc      *Service
	PetsSvc  *pets.Service
	UsersSvc *users.Service
	Flash    *flash.Flash
}

func RegisterRoutes(r chi.Router, deps HandlerDeps) {
	r.Route("/adoptions", func(ar chi.Router) {
		ar.Post("/", submitHandler(deps))
		ar.Get("/", myApplicationsHandler(deps))
		ar.Post("/{applicationID}/cancel", cancelHandler(deps.Svc))
	})

	r.Route("/admin/applications", func(ar chi.Router) {
		ar.Get("/", manageApplicationsHandler(deps))
		ar.Post("/{applicationID}/status", updateStatusHandler(deps))
	})
}

type applicationCardResponse struct {
	ID    string `json:"id"`
	PetID string `json:"pet_id"`

	ApplicantName  string `json:"applicant_name,omitempty"`
	ApplicantEmail string `json:"applicant_email,omitempty"`

	PetName  string `json:"pet_name"`
	Breed    string `json:"breed"`
	Details  string `json:"details"`
	ImageURL string `json:"image_url"`

	Status      string `json:"status"`
	CurrentStep int    `json:"current_step"`

	DateApplied string `json:"date_applied"`
	Message     string `json:"message"`
}

type applicationsPageResponse struct {
	UserName      string                    `json:"user_name"`
	Applications  []applicationCardResponse `json:"applications"`
	StatusCounts  map[string]int            `json:"status_counts"`
	CurrentFilter string                    `json:"current_filter"`
}

const dateAppliedLayout = "Jan 02, 2006 • 3:04 PM"

func submitHandler(deps HandlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		sid := middleware.GetSessionID(r.Context())

		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		petID := r.PostFormValue("pet_id")
		message := r.PostFormValue("message")

		_, err := deps.Svc.Submit(r.Context(), claims.UserID, petID, message)
		switch {
		case err == nil:
			deps.Flash.Success(r.Context(), sid, "Application submitted!")
			http.Redirect(w, r, "/adoptions", http.StatusSeeOther)

		case errors.Is(err, ErrMessageTooShort):
			deps.Flash.Error(r.Context(), sid, "Please provide a bit more detail (at least 20 characters).")
			http.Redirect(w, r, "/pets/"+petID, http.StatusSeeOther)

		case errors.Is(err, ErrNotFound):
			deps.Flash.Error(r.Context(), sid, "Pet not found.")
			http.Redirect(w, r, "/pets", http.StatusSeeOther)

		case errors.Is(err, ErrPetUnavailable):
			deps.Flash.Error(r.Context(), sid, "This pet is currently unavailable for new applications.")
			http.Redirect(w, r, "/pets/"+petID, http.StatusSeeOther)

		case errors.Is(err, ErrAlreadyApplied):
			deps.Flash.Error(r.Context(), sid, "You already submitted an application for this pet.")
			http.Redirect(w, r, "/adoptions", http.StatusSeeOther)

		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
}

func myApplicationsHandler(deps HandlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		filter := filterParam(r)
		res, err := deps.Svc.ListForUser(r.Context(), claims.UserID, filter)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		userName := "User"
		if u, err := deps.UsersSvc.GetByID(r.Context(), claims.UserID); err == nil {
			userName = u.DisplayName()
		}

		cards := make([]applicationCardResponse, 0, len(res.Applications))
		for _, a := range res.Applications {
			c := deps.toCard(r, a)
			// applicants see the derived progress bar position
			c.CurrentStep = StatusToStep(a.Status)
			c.ApplicantName, c.ApplicantEmail = "", ""
			cards = append(cards, c)
		}

		writeJSON(w, http.StatusOK, applicationsPageResponse{
			UserName:      userName,
			Applications:  cards,
			StatusCounts:  res.Counts,
			CurrentFilter: filter,
		})
	}
}

func manageApplicationsHandler(deps HandlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}

		filter := filterParam(r)
		res, err := deps.Svc.ListAll(r.Context(), filter)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		cards := make([]applicationCardResponse, 0, len(res.Applications))
		for _, a := range res.Applications {
			// admins see the stored step, not the derived one
			cards = append(cards, deps.toCard(r, a))
		}

		writeJSON(w, http.StatusOK, applicationsPageResponse{
			UserName:      "Admin",
			Applications:  cards,
			StatusCounts:  res.Counts,
			CurrentFilter: filter,
		})
	}
}

func cancelHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		err := svc.Cancel(r.Context(), chi.URLParam(r, "applicationID"), claims.UserID, claims.IsAdmin())
		switch {
		case err == nil:
			w.WriteHeader(http.StatusOK)
		case errors.Is(err, ErrNotFound):
			http.Error(w, "application not found", http.StatusNotFound)
		case errors.Is(err, ErrForbidden):
			http.Error(w, "forbidden", http.StatusForbidden)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
}

func updateStatusHandler(deps HandlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}
		sid := middleware.GetSessionID(r.Context())

		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}

		step := 1
		if v := strings.TrimSpace(r.PostFormValue("current_step")); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				step = n
			}
		}

		back := "/admin/applications"
		if f := r.URL.Query().Get("status"); f != "" {
			back += "?status=" + f
		}

		_, err := deps.Svc.UpdateStatus(r.Context(),
			chi.URLParam(r, "applicationID"), r.PostFormValue("status"), step)
		switch {
		case err == nil:
			deps.Flash.Success(r.Context(), sid, "Application updated.")
			http.Redirect(w, r, back, http.StatusSeeOther)
		case errors.Is(err, ErrInvalidStatus):
			deps.Flash.Error(r.Context(), sid, "Invalid status value.")
			http.Redirect(w, r, back, http.StatusSeeOther)
		case errors.Is(err, ErrNotFound):
			http.Error(w, "application not found", http.StatusNotFound)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
}

func (deps HandlerDeps) toCard(r *http.Request, a Application) applicationCardResponse {
	c := applicationCardResponse{
		ID:          a.ID,
		PetID:       a.PetID,
		PetName:     "Unknown",
		Status:      string(a.Status),
		CurrentStep: a.CurrentStep,
		DateApplied: a.CreatedAtUtc.Local().Format(dateAppliedLayout),
		Message:     a.Message,
	}

	if p, err := deps.PetsSvc.GetByID(r.Context(), a.PetID); err == nil {
		c.PetName = p.Name
		c.Breed = p.Breed
		c.Details = p.Details()
		c.ImageURL = p.ImageURL
	}

	if u, err := deps.UsersSvc.GetByID(r.Context(), a.UserID); err == nil {
		name := u.FullName()
		if strings.TrimSpace(name) == "" {
			name = u.DisplayName()
		}
		c.ApplicantName = name
		c.ApplicantEmail = u.Email
	}

	return c
}

func filterParam(r *http.Request) string {
	f := strings.TrimSpace(r.URL.Query().Get("status"))
	if f == "" {
		return "All"
	}
	return f
}

func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	if !claims.IsAdmin() {
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
