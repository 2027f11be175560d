package ports

import (
	"context"

	"github.com/casaflow/casaflow/internal/core/domain/property"
	"github.com/google/uuid"
)

// PropertyRepository abstracts listing persistence.
type PropertyRepository interface {
	Create(ctx context.Context, p *property.Property) error
	GetByID(ctx context.Context, id uuid.UUID) (*property.Property, error)
	Update(ctx context.Context, p *property.Property) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, city string, limit, offset int) ([]*property.Property, error)
	Count(ctx context.Context, city string) (int, error)
}

// PropertyService defines listing business operations.
type PropertyService interface {
	CreateProperty(ctx context.Context, ownerID uuid.UUID, req *property.CreatePropertyRequest) (*property.Property, error)
	GetProperty(ctx context.Context, id uuid.UUID) (*property.Property, error)
	UpdateProperty(ctx context.Context, id, actorID uuid.UUID, req *property.UpdatePropertyRequest) (*property.Property, error)
	DeleteProperty(ctx context.Context, id, actorID uuid.UUID) error
	ListProperties(ctx context.Context, city string, limit, offset int) ([]*property.Property, int, error)
}
