package pets

import (
	"strconv"
	"time"
)

// InventoryStatus is the shelter-facing availability label. It is a derived
// projection over the pet's adoption applications: nothing outside the
// adoptions recompute ever writes it.
type InventoryStatus string

const (
	StatusAvailable InventoryStatus = "Available"
	StatusPending   InventoryStatus = "Pending"
	StatusAdopted   InventoryStatus = "Adopted"
)

// Pet is a shelter inventory entity, created and edited by staff.
type Pet struct {
	ID string

	Name     string
	Species  string
	Breed    string
	Age      int
	Gender   string
	Size     string
	Location string

	Status InventoryStatus

	ImageURL    string
	Description string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Details renders the "Dog • 3 years • Male" line used on application cards.
func (p Pet) Details() string {
	return p.Species + " • " + strconv.Itoa(p.Age) + " years • " + p.Gender
}
