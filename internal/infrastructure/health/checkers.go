package health

import (
	"context"

	"github.com/casaflow/casaflow/internal/core/ports"
	infraDB "github.com/casaflow/casaflow/internal/infrastructure/db"
	"github.com/go-redis/redis/v8"
)

// postgresChecker reports whether the listings database answers a ping.
type postgresChecker struct{ db *infraDB.Database }

func (p *postgresChecker) Name() string                    { return "postgres" }
func (p *postgresChecker) Check(ctx context.Context) error { return p.db.DB.PingContext(ctx) }

// redisChecker reports whether the cache/rate-limit Redis answers a ping.
type redisChecker struct{ client *redis.Client }

func (r *redisChecker) Name() string                    { return "redis" }
func (r *redisChecker) Check(ctx context.Context) error { return r.client.Ping(ctx).Err() }

func NewDBHealthChecker(db *infraDB.Database) ports.HealthChecker { return &postgresChecker{db: db} }

func NewRedisHealthChecker(client *redis.Client) ports.HealthChecker {
	return &redisChecker{client: client}
}
