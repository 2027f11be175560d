package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/casaflow/casaflow/internal/core/domain/property"
	"github.com/casaflow/casaflow/internal/core/ports"
	"github.com/casaflow/casaflow/internal/infrastructure/db"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type PropertyRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

func NewPropertyRepository(database *db.Database, logger *logrus.Logger) ports.PropertyRepository {
	return &PropertyRepository{
		db:     database,
		logger: logger,
	}
}

func (r *PropertyRepository) Create(ctx context.Context, p *property.Property) error {
	query := `
		INSERT INTO properties
			(id, owner_id, title, description, listing_type, price_cents, city, address, bedrooms, bathrooms, area_sqm, is_published)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.DB.ExecContext(ctx, query,
		p.ID, p.OwnerID, p.Title, p.Description, p.ListingType, p.PriceCents,
		p.City, p.Address, p.Bedrooms, p.Bathrooms, p.AreaSqm, p.IsPublished)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"property_id": p.ID}).WithError(err).Error("db: failed to create property")
		}
		return fmt.Errorf("failed to create property: %w", err)
	}

	return nil
}

func (r *PropertyRepository) GetByID(ctx context.Context, id uuid.UUID) (*property.Property, error) {
	var p property.Property
	query := `
		SELECT id, owner_id, title, description, listing_type, price_cents, city, address,
		       bedrooms, bathrooms, area_sqm, is_published, created_at, updated_at
		FROM properties
		WHERE id = $1`

	err := r.db.DB.GetContext(ctx, &p, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("property with ID %s not found", id)
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"property_id": id}).WithError(err).Error("db: failed to get property")
		}
		return nil, fmt.Errorf("failed to get property: %w", err)
	}

	return &p, nil
}

func (r *PropertyRepository) Update(ctx context.Context, p *property.Property) error {
	query := `
		UPDATE properties
		SET title = $2, description = $3, price_cents = $4, city = $5, address = $6,
		    bedrooms = $7, bathrooms = $8, area_sqm = $9, is_published = $10, updated_at = now()
		WHERE id = $1`

	result, err := r.db.DB.ExecContext(ctx, query,
		p.ID, p.Title, p.Description, p.PriceCents, p.City, p.Address,
		p.Bedrooms, p.Bathrooms, p.AreaSqm, p.IsPublished)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"property_id": p.ID}).WithError(err).Error("db: failed to update property")
		}
		return fmt.Errorf("failed to update property: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("property with ID %s not found", p.ID)
	}

	return nil
}

func (r *PropertyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM properties WHERE id = $1`

	result, err := r.db.DB.ExecContext(ctx, query, id)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"property_id": id}).WithError(err).Error("db: failed to delete property")
		}
		return fmt.Errorf("failed to delete property: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("property with ID %s not found", id)
	}

	return nil
}

// List retrieves published properties, optionally filtered by city.
func (r *PropertyRepository) List(ctx context.Context, city string, limit, offset int) ([]*property.Property, error) {
	var properties []*property.Property
	query := `
		SELECT id, owner_id, title, description, listing_type, price_cents, city, address,
		       bedrooms, bathrooms, area_sqm, is_published, created_at, updated_at
		FROM properties
		WHERE is_published AND ($1 = '' OR city = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	err := r.db.DB.SelectContext(ctx, &properties, query, city, limit, offset)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"city": city}).WithError(err).Error("db: failed to list properties")
		}
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}

	return properties, nil
}

func (r *PropertyRepository) Count(ctx context.Context, city string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM properties WHERE is_published AND ($1 = '' OR city = $1)`

	err := r.db.DB.GetContext(ctx, &count, query, city)
	if err != nil {
		return 0, fmt.Errorf("failed to count properties: %w", err)
	}

	return count, nil
}
