package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/medease/medease/internal/httpapi"
)

var ErrServiceNotFound = httpapi.NotFound("service not found")

// Service maps to the services table. Deletion is soft: inactive services are
// hidden from the public listing but stay referenced by history.
type Service struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	Duration    int       `db:"duration" json:"duration"`
	Price       float64   `db:"price" json:"price"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
