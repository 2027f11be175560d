package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/casaflow/casaflow/internal/core/domain/property"
	"github.com/casaflow/casaflow/internal/core/domain/user"
	"github.com/casaflow/casaflow/internal/core/ports"
	"github.com/google/uuid"
)

// Utility helpers
func cacheSetSilently(c ports.Cache, ctx context.Context, key string, v any, ttl time.Duration) {
	if c == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.Set(ctx, key, b, ttl)
}

func cacheGet[T any](c ports.Cache, ctx context.Context, key string) (*T, bool) {
	if c == nil {
		return nil, false
	}
	b, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, false
	}
	return &v, true
}

// CachingUserRepository decorates a UserRepository with cache-aside.
// The verification flow reads accounts on every issue/verify call, so
// hot entries are kept by id and by email; any write invalidates both.
type CachingUserRepository struct {
	inner ports.UserRepository
	cache ports.Cache
	ttl   time.Duration
}

func NewCachingUserRepository(inner ports.UserRepository, cache ports.Cache, ttl time.Duration) ports.UserRepository {
	return &CachingUserRepository{inner: inner, cache: cache, ttl: ttl}
}

func (c *CachingUserRepository) invalidate(ctx context.Context, id uuid.UUID, email string) {
	if c.cache == nil {
		return
	}
	_ = c.cache.Delete(ctx, "user:id:"+id.String())
	if email != "" {
		_ = c.cache.Delete(ctx, "user:email:"+email)
	}
}

func (c *CachingUserRepository) Create(ctx context.Context, u *user.User) error {
	if err := c.inner.Create(ctx, u); err != nil {
		return err
	}
	cacheSetSilently(c.cache, ctx, "user:id:"+u.ID.String(), u, c.ttl)
	cacheSetSilently(c.cache, ctx, "user:email:"+u.Email, u, c.ttl)
	return nil
}

func (c *CachingUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	if v, ok := cacheGet[user.User](c.cache, ctx, "user:id:"+id.String()); ok {
		return v, nil
	}
	u, err := c.inner.GetByID(ctx, id)
	if err == nil {
		cacheSetSilently(c.cache, ctx, "user:id:"+id.String(), u, c.ttl)
		cacheSetSilently(c.cache, ctx, "user:email:"+u.Email, u, c.ttl)
	}
	return u, err
}

func (c *CachingUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if v, ok := cacheGet[user.User](c.cache, ctx, "user:email:"+email); ok {
		return v, nil
	}
	u, err := c.inner.GetByEmail(ctx, email)
	if err == nil {
		cacheSetSilently(c.cache, ctx, "user:id:"+u.ID.String(), u, c.ttl)
		cacheSetSilently(c.cache, ctx, "user:email:"+email, u, c.ttl)
	}
	return u, err
}

func (c *CachingUserRepository) Update(ctx context.Context, u *user.User) error {
	if err := c.inner.Update(ctx, u); err != nil {
		return err
	}
	c.invalidate(ctx, u.ID, u.Email)
	return nil
}

func (c *CachingUserRepository) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	// Need the email to drop both keys; look it up before the write.
	email := ""
	if u, err := c.inner.GetByID(ctx, id); err == nil {
		email = u.Email
	}
	if err := c.inner.MarkEmailVerified(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id, email)
	return nil
}

// CachingPropertyRepository decorates a PropertyRepository with cache-aside
// for single-listing reads. List queries always hit the database.
type CachingPropertyRepository struct {
	inner ports.PropertyRepository
	cache ports.Cache
	ttl   time.Duration
}

func NewCachingPropertyRepository(inner ports.PropertyRepository, cache ports.Cache, ttl time.Duration) ports.PropertyRepository {
	return &CachingPropertyRepository{inner: inner, cache: cache, ttl: ttl}
}

func (c *CachingPropertyRepository) Create(ctx context.Context, p *property.Property) error {
	if err := c.inner.Create(ctx, p); err != nil {
		return err
	}
	cacheSetSilently(c.cache, ctx, "property:id:"+p.ID.String(), p, c.ttl)
	return nil
}

func (c *CachingPropertyRepository) GetByID(ctx context.Context, id uuid.UUID) (*property.Property, error) {
	if v, ok := cacheGet[property.Property](c.cache, ctx, "property:id:"+id.String()); ok {
		return v, nil
	}
	p, err := c.inner.GetByID(ctx, id)
	if err == nil {
		cacheSetSilently(c.cache, ctx, "property:id:"+id.String(), p, c.ttl)
	}
	return p, err
}

func (c *CachingPropertyRepository) Update(ctx context.Context, p *property.Property) error {
	if err := c.inner.Update(ctx, p); err != nil {
		return err
	}
	if c.cache != nil {
		_ = c.cache.Delete(ctx, "property:id:"+p.ID.String())
	}
	return nil
}

func (c *CachingPropertyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.inner.Delete(ctx, id); err != nil {
		return err
	}
	if c.cache != nil {
		_ = c.cache.Delete(ctx, "property:id:"+id.String())
	}
	return nil
}

func (c *CachingPropertyRepository) List(ctx context.Context, city string, limit, offset int) ([]*property.Property, error) {
	return c.inner.List(ctx, city, limit, offset)
}

func (c *CachingPropertyRepository) Count(ctx context.Context, city string) (int, error) {
	return c.inner.Count(ctx, city)
}
