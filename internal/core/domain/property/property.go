package property

import (
	"time"

	"github.com/google/uuid"
)

type ListingType string

const (
	ListingTypeSale ListingType = "sale"
	ListingTypeRent ListingType = "rent"
)

func (t ListingType) IsValid() bool {
	switch t {
	case ListingTypeSale, ListingTypeRent:
		return true
	default:
		return false
	}
}

type Property struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	OwnerID     uuid.UUID   `json:"owner_id" db:"owner_id"`
	Title       string      `json:"title" db:"title"`
	Description string      `json:"description" db:"description"`
	ListingType ListingType `json:"listing_type" db:"listing_type"`
	PriceCents  int64       `json:"price_cents" db:"price_cents"`
	City        string      `json:"city" db:"city"`
	Address     string      `json:"address" db:"address"`
	Bedrooms    int         `json:"bedrooms" db:"bedrooms"`
	Bathrooms   int         `json:"bathrooms" db:"bathrooms"`
	AreaSqm     float64     `json:"area_sqm" db:"area_sqm"`
	IsPublished bool        `json:"is_published" db:"is_published"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}

// CreatePropertyRequest represents the request to create a listing
type CreatePropertyRequest struct {
	Title       string      `json:"title" validate:"required"`
	Description string      `json:"description"`
	ListingType ListingType `json:"listing_type" validate:"required,oneof=sale rent"`
	PriceCents  int64       `json:"price_cents" validate:"required,gt=0"`
	City        string      `json:"city" validate:"required"`
	Address     string      `json:"address" validate:"required"`
	Bedrooms    int         `json:"bedrooms" validate:"gte=0"`
	Bathrooms   int         `json:"bathrooms" validate:"gte=0"`
	AreaSqm     float64     `json:"area_sqm" validate:"gte=0"`
}

// UpdatePropertyRequest represents a partial listing update
type UpdatePropertyRequest struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	PriceCents  *int64   `json:"price_cents,omitempty" validate:"omitempty,gt=0"`
	City        *string  `json:"city,omitempty"`
	Address     *string  `json:"address,omitempty"`
	Bedrooms    *int     `json:"bedrooms,omitempty" validate:"omitempty,gte=0"`
	Bathrooms   *int     `json:"bathrooms,omitempty" validate:"omitempty,gte=0"`
	AreaSqm     *float64 `json:"area_sqm,omitempty" validate:"omitempty,gte=0"`
	IsPublished *bool    `json:"is_published,omitempty"`
}
