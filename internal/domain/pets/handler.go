package pets

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"paws-and-claws/internal/adapters/uploads"
	"paws-and-claws/internal/middleware"
	"paws-and-claws/internal/platform/flash"
)

const placeholderImage = "/images/pet-placeholder.jpg"

type HandlerDeps struct {
	Svc     *Service
	Uploads uploads.Store
	Flash   *flash.Flash
}

func RegisterRoutes(r chi.Router, deps HandlerDeps) {
	r.Route("/pets", func(pr chi.Router) {
		pr.Get("/", listPetsHandler(deps.Svc))
		pr.Get("/{petID}", getPetHandler(deps.Svc))

		// staff console
		pr.Post("/", addPetHandler(deps))
		pr.Post("/{petID}", editPetHandler(deps))
		pr.Post("/{petID}/delete", deletePetHandler(deps.Svc))
	})
}

type petCardResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Breed       string `json:"breed"`
	Species     string `json:"species"`
	Age         int    `json:"age"`
	Gender      string `json:"gender"`
	Size        string `json:"size"`
	Location    string `json:"location"`
	Status      string `json:"status"`
	ImageURL    string `json:"image_url"`
	Description string `json:"description"`
}

func toCard(p Pet) petCardResponse {
	img := p.ImageURL
	if strings.TrimSpace(img) == "" {
		img = placeholderImage
	}
	return petCardResponse{
		ID:          p.ID,
		Name:        p.Name,
		Breed:       p.Breed,
		Species:     p.Species,
		Age:         p.Age,
		Gender:      p.Gender,
		Size:        p.Size,
		Location:    p.Location,
		Status:      string(p.Status),
		ImageURL:    img,
		Description: p.Description,
	}
}

func listPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]petCardResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toCard(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			http.Error(w, "pet not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toCard(p))
	}
}

// parsePetForm reads the shared add/edit multipart fields. The photo is
// optional in both flows.
func parsePetForm(r *http.Request) (CreateInput, error) {
	if err := r.ParseMultipartForm(uploads.MaxBytes + 1024); err != nil {
		return CreateInput{}, err
	}

	age := 0
	if v := strings.TrimSpace(r.PostFormValue("age")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return CreateInput{}, ErrInvalidInput
		}
		age = n
	}

	return CreateInput{
		Name:        r.PostFormValue("name"),
		Species:     r.PostFormValue("species"),
		Breed:       r.PostFormValue("breed"),
		Age:         age,
		Gender:      r.PostFormValue("gender"),
		Size:        r.PostFormValue("size"),
		Location:    r.PostFormValue("location"),
		Description: r.PostFormValue("description"),
	}, nil
}

func savePhoto(r *http.Request, deps HandlerDeps) (string, error) {
	file, header, err := r.FormFile("pet_photo")
	if err != nil {
		return "", nil // no photo submitted
	}
	defer file.Close()
	return deps.Uploads.Save(r.Context(), header.Filename, file)
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

func addPetHandler(deps HandlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}
		sid := middleware.GetSessionID(r.Context())

		in, err := parsePetForm(r)
		if err != nil {
			deps.Flash.Error(r.Context(), sid, "Please fill in required fields (Name and Species).")
			http.Redirect(w, r, "/pets", http.StatusSeeOther)
			return
		}

		url, err := savePhoto(r, deps)
		if err != nil {
			deps.Flash.Error(r.Context(), sid, uploadErrorMessage(err))
			http.Redirect(w, r, "/pets", http.StatusSeeOther)
			return
		}
		if url == "" {
			url = placeholderImage
		}
		in.ImageURL = url

		if _, err := deps.Svc.Create(r.Context(), in); err != nil {
			if errors.Is(err, ErrInvalidInput) {
				deps.Flash.Error(r.Context(), sid, "Please fill in required fields (Name and Species).")
			} else {
				deps.Flash.Error(r.Context(), sid, "Could not add pet.")
			}
			http.Redirect(w, r, "/pets", http.StatusSeeOther)
			return
		}

		deps.Flash.Success(r.Context(), sid, "Pet added successfully!")
		http.Redirect(w, r, "/pets", http.StatusSeeOther)
	}
}

func editPetHandler(deps HandlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}
		sid := middleware.GetSessionID(r.Context())
		petID := chi.URLParam(r, "petID")

		in, err := parsePetForm(r)
		if err != nil {
			deps.Flash.Error(r.Context(), sid, "Please fill in required fields (Name and Species).")
			http.Redirect(w, r, "/pets", http.StatusSeeOther)
			return
		}

		url, err := savePhoto(r, deps)
		if err != nil {
			deps.Flash.Error(r.Context(), sid, uploadErrorMessage(err))
			http.Redirect(w, r, "/pets", http.StatusSeeOther)
			return
		}
		// empty url keeps the existing image

		upd := UpdateInput{
			Name:        in.Name,
			Species:     in.Species,
			Breed:       in.Breed,
			Age:         in.Age,
			Gender:      in.Gender,
			Size:        in.Size,
			Location:    in.Location,
			Description: in.Description,
			ImageURL:    url,
		}

		if _, err := deps.Svc.Update(r.Context(), petID, upd); err != nil {
			switch {
			case errors.Is(err, ErrNotFound):
				http.Error(w, "pet not found", http.StatusNotFound)
			case errors.Is(err, ErrInvalidInput):
				deps.Flash.Error(r.Context(), sid, "Please fill in required fields (Name and Species).")
				http.Redirect(w, r, "/pets", http.StatusSeeOther)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		deps.Flash.Success(r.Context(), sid, "Pet updated successfully!")
		http.Redirect(w, r, "/pets", http.StatusSeeOther)
	}
}

func deletePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}

		if err := svc.Delete(r.Context(), chi.URLParam(r, "petID")); err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "pet not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func uploadErrorMessage(err error) string {
	switch {
	case errors.Is(err, uploads.ErrTooLarge):
		return "Image too large. Max is 4MB."
	case errors.Is(err, uploads.ErrBadFileType):
		return "Invalid file type. Only JPG/PNG allowed."
	default:
		return "Could not store the uploaded image."
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
