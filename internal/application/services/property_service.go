package services

import (
	"context"
	"fmt"
	"time"

	"github.com/casaflow/casaflow/internal/core/domain/property"
	"github.com/casaflow/casaflow/internal/core/ports"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrNotListingOwner rejects mutations by anyone but the listing's owner.
var ErrNotListingOwner = fmt.Errorf("only the listing owner may modify it")

type PropertyService struct {
	repo   ports.PropertyRepository
	logger *logrus.Logger
}

func NewPropertyService(repo ports.PropertyRepository, logger *logrus.Logger) ports.PropertyService {
	return &PropertyService{repo: repo, logger: logger}
}

func (s *PropertyService) CreateProperty(ctx context.Context, ownerID uuid.UUID, req *property.CreatePropertyRequest) (*property.Property, error) {
	if !req.ListingType.IsValid() {
		return nil, fmt.Errorf("invalid listing type: %s", req.ListingType)
	}

	p := &property.Property{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
		ListingType: req.ListingType,
		PriceCents:  req.PriceCents,
		City:        req.City,
		Address:     req.Address,
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		AreaSqm:     req.AreaSqm,
		IsPublished: true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create property: %w", err)
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"property_id": p.ID, "owner_id": ownerID}).Info("property listed")
	}
	return p, nil
}

func (s *PropertyService) GetProperty(ctx context.Context, id uuid.UUID) (*property.Property, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *PropertyService) UpdateProperty(ctx context.Context, id, actorID uuid.UUID, req *property.UpdatePropertyRequest) (*property.Property, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.OwnerID != actorID {
		return nil, ErrNotListingOwner
	}

	if req.Title != nil {
		existing.Title = *req.Title
	}
	if req.Description != nil {
		existing.Description = *req.Description
	}
	if req.PriceCents != nil {
		existing.PriceCents = *req.PriceCents
	}
	if req.City != nil {
		existing.City = *req.City
	}
	if req.Address != nil {
		existing.Address = *req.Address
	}
	if req.Bedrooms != nil {
		existing.Bedrooms = *req.Bedrooms
	}
	if req.Bathrooms != nil {
		existing.Bathrooms = *req.Bathrooms
	}
	if req.AreaSqm != nil {
		existing.AreaSqm = *req.AreaSqm
	}
	if req.IsPublished != nil {
		existing.IsPublished = *req.IsPublished
	}
	existing.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to update property: %w", err)
	}
	return existing, nil
}

func (s *PropertyService) DeleteProperty(ctx context.Context, id, actorID uuid.UUID) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.OwnerID != actorID {
		return ErrNotListingOwner
	}
	return s.repo.Delete(ctx, id)
}

func (s *PropertyService) ListProperties(ctx context.Context, city string, limit, offset int) ([]*property.Property, int, error) {
	properties, err := s.repo.List(ctx, city, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	count, err := s.repo.Count(ctx, city)
	if err != nil {
		return nil, 0, err
	}

	return properties, count, nil
}
